// Package resolver turns a product page into a single image URL by
// running the extraction cascade: schema.org metadata, Open Graph, then
// domain-specific gallery selectors scored by the ranker.
package resolver

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"pixgrab/extractor"
	"pixgrab/fetch"
	"pixgrab/models"
	"pixgrab/ranker"
	"pixgrab/selectors"
)

const (
	// firstSelectorWait is the patience budget for the first gallery
	// selector on the browser path; later selectors get less because
	// the page is already rendered.
	firstSelectorWait = 7 * time.Second
	laterSelectorWait = 3 * time.Second
)

// Resolver holds the pieces the cascade needs. Safe for concurrent use.
type Resolver struct {
	profile *selectors.Profile
	rank    *ranker.Ranker
	status  models.StatusFunc
}

// New builds a Resolver. status may be nil.
func New(profile *selectors.Profile, rank *ranker.Ranker, status models.StatusFunc) *Resolver {
	return &Resolver{profile: profile, rank: rank, status: status}
}

// absolutize resolves a metadata URL against the page and drops
// anything that is not plain http(s).
func absolutize(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(strings.ToLower(raw), "data:") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if !u.IsAbs() {
		b, err := url.Parse(base)
		if err != nil {
			return ""
		}
		u = b.ResolveReference(u)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return ""
	}
	return u.String()
}

// ResolveStatic runs the full cascade over already-fetched HTML.
// Metadata winners (schema, og) are trusted as-is; only the selector
// candidate pool goes through ranking. Returns "" when the page yields
// nothing usable.
func (r *Resolver) ResolveStatic(page *models.Page) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		r.status.Emit("[Resolver] unparseable page: " + err.Error())
		return ""
	}

	if img := absolutize(extractor.FromSchema(doc), page.EffectiveURL); img != "" {
		r.status.Emit("[Resolver] ✓ schema.org image: " + img)
		return ranker.ImproveURL(img)
	}

	if img := absolutize(extractor.FromOpenGraph(doc), page.EffectiveURL); img != "" {
		r.status.Emit("[Resolver] ✓ og:image: " + img)
		return ranker.ImproveURL(img)
	}

	key := r.profile.KeyFor(page.EffectiveURL)
	sels := r.profile.ForDomain(key)
	if len(sels) == 0 {
		r.status.Emit("[Resolver] no selectors for domain " + key)
		return ""
	}

	candidates := extractor.FromSelectors(doc, sels)
	if winner := r.rank.SelectBest(candidates, page.EffectiveURL); winner != "" {
		r.status.Emit("[Resolver] ✓ selector image: " + winner)
		return winner
	}
	return ""
}

// ResolveFast fetches the page over plain HTTP and resolves statically.
func (r *Resolver) ResolveFast(ctx context.Context, fetcher fetch.Fetcher, pageURL string) (string, error) {
	page, err := fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		return "", err
	}
	if img := r.ResolveStatic(page); img != "" {
		return img, nil
	}
	return "", fmt.Errorf("no image found on %s", pageURL)
}

// ResolveBrowser drives a live browser session over the page. Each
// profile selector is tried in order with its own wait; the first
// selector whose harvested attributes rank to a winner stops the loop.
// When no selector produces anything, the rendered page source goes
// through the static cascade as a last resort.
func (r *Resolver) ResolveBrowser(ctx context.Context, session *fetch.BrowserSession, pageURL string) (string, error) {
	if err := session.Navigate(pageURL); err != nil {
		return "", err
	}

	effective, err := session.EffectiveURL()
	if err != nil || effective == "" {
		effective = pageURL
	}

	key := r.profile.KeyFor(effective)
	sels := r.profile.ForDomain(key)
	for i, sel := range sels {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		wait := laterSelectorWait
		if i == 0 {
			wait = firstSelectorWait
		}
		attrs, err := session.CollectCandidates(sel, wait)
		if err != nil {
			r.status.Emit("[Resolver] selector " + sel + " failed: " + err.Error())
			continue
		}
		candidates := extractor.CandidatesFromAttrs(attrs)
		if winner := r.rank.SelectBest(candidates, effective); winner != "" {
			r.status.Emit("[Resolver] ✓ browser selector image: " + winner)
			return winner, nil
		}
	}

	// Selector loop came up empty; the rendered DOM may still carry
	// usable metadata.
	html, err := session.PageSource()
	if err != nil {
		return "", err
	}
	page := &models.Page{HTML: html, EffectiveURL: effective}
	if img := r.ResolveStatic(page); img != "" {
		return img, nil
	}
	return "", fmt.Errorf("no image found on %s", pageURL)
}
