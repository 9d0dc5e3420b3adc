// Package extractor pulls product-image candidates out of page markup:
// schema.org metadata, Open Graph tags, and per-domain gallery
// selectors.
package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ogRejects are markers that make an og:image unusable as the product
// shot. Storefronts frequently point og:image at their brand logo.
var ogRejects = []string{"logo", "icon", "sprite"}

// FromOpenGraph returns the og:image URL unless it looks like site
// chrome rather than a product photo.
func FromOpenGraph(doc *goquery.Document) string {
	content, ok := doc.Find(`meta[property="og:image"]`).Attr("content")
	if !ok {
		return ""
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	lower := strings.ToLower(content)
	for _, bad := range ogRejects {
		if strings.Contains(lower, bad) {
			return ""
		}
	}
	return content
}

// imageExts mirrors the extensions the ranker accepts; used here only
// to decide whether a wrapping anchor's href is itself an image link.
var imageExts = []string{".jpg", ".jpeg", ".png", ".webp", ".gif", ".bmp", ".tif", ".tiff"}

func looksLikeImageURL(raw string) bool {
	lower := strings.ToLower(raw)
	for _, ext := range imageExts {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

// attrPriority is the order candidate attributes are harvested from a
// matched element. Lazy-load and zoom attributes usually hold the full
// resolution variant, so they come before src.
var attrPriority = []string{"data-zoom-image", "data-large-image", "data-original"}

// FromSelectors collects candidate URLs from every element matching the
// domain's selectors, in selector order. For each element the harvest
// order is: zoom/lazy attributes, the best srcset entry, an image-like
// parent anchor href, data-src, then plain src.
func FromSelectors(doc *goquery.Document, sels []string) []string {
	var candidates []string
	for _, sel := range sels {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			candidates = append(candidates, harvest(elementAttrs(s))...)
		})
	}
	return candidates
}

// elementAttrs snapshots the attributes the harvest order cares about,
// in the same shape the browser path produces.
func elementAttrs(s *goquery.Selection) map[string]string {
	attrs := make(map[string]string)
	for _, name := range attrPriority {
		if v, ok := s.Attr(name); ok {
			attrs[name] = v
		}
	}
	if v, ok := s.Attr("srcset"); ok {
		attrs["srcset"] = v
	}
	if v, ok := s.Attr("data-src"); ok {
		attrs["data-src"] = v
	}
	if v, ok := s.Attr("src"); ok {
		attrs["src"] = v
	}
	if href, ok := s.Parent().Filter("a").Attr("href"); ok {
		attrs["parent-href"] = href
	} else if href, ok := s.Closest("a").Attr("href"); ok {
		attrs["parent-href"] = href
	}
	return attrs
}

// CandidatesFromAttrs applies the static harvest order to an attribute
// map collected in the browser. Both paths share the same priority so a
// page resolves identically regardless of transport.
func CandidatesFromAttrs(attrs map[string]string) []string {
	return harvest(attrs)
}

func harvest(attrs map[string]string) []string {
	var out []string
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	for _, name := range attrPriority {
		add(attrs[name])
	}
	if srcset := attrs["srcset"]; srcset != "" {
		add(BestFromSrcset(srcset))
	}
	if href := attrs["parent-href"]; href != "" && looksLikeImageURL(href) {
		add(href)
	}
	add(attrs["data-src"])
	add(attrs["src"])
	return out
}
