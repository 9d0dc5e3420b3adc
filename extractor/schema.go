package extractor

import (
	"encoding/json"
	"reflect"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlCommentRe = regexp.MustCompile(`(?s)<!--.*?-->`)

// cleanJSONLD undoes the escaping storefronts commonly leave inside
// their ld+json blocks. Many template engines double-escape the payload
// or wrap it in HTML comments, which the strict JSON parser rejects.
func cleanJSONLD(raw string) string {
	s := htmlCommentRe.ReplaceAllString(raw, "")
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\/`, `/`)
	s = strings.ReplaceAll(s, `\n`, " ")
	s = strings.ReplaceAll(s, `\r`, " ")
	s = strings.ReplaceAll(s, `\t`, " ")
	return strings.TrimSpace(s)
}

// FromSchema walks every ld+json script in the document looking for a
// schema.org Product node and returns its first image URL. The search is
// breadth-first so a Product close to the root wins over one buried in a
// @graph of related items.
func FromSchema(doc *goquery.Document) string {
	var winner string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := s.Text()
		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			if err = json.Unmarshal([]byte(cleanJSONLD(raw)), &data); err != nil {
				return true
			}
		}
		if img := productImage(data); img != "" {
			winner = img
			return false
		}
		return true
	})
	return winner
}

// productImage does a breadth-first search over decoded JSON for an
// object whose @type is "Product" and extracts its image field. A
// visited set keyed on container identity guards against documents that
// alias the same map from multiple places.
func productImage(root any) string {
	queue := []any{root}
	visited := make(map[uintptr]bool)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		switch v := node.(type) {
		case map[string]any:
			ptr := reflect.ValueOf(v).Pointer()
			if visited[ptr] {
				continue
			}
			visited[ptr] = true
			if t, _ := v["@type"].(string); t == "Product" {
				if img := imageField(v["image"]); img != "" {
					return img
				}
			}
			for _, child := range v {
				queue = append(queue, child)
			}
		case []any:
			ptr := reflect.ValueOf(v).Pointer()
			if visited[ptr] {
				continue
			}
			visited[ptr] = true
			queue = append(queue, v...)
		}
	}
	return ""
}

// imageField normalizes the schema.org image shapes: a plain URL, an
// ImageObject, or a list of either.
func imageField(img any) string {
	switch v := img.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if u, _ := v["contentUrl"].(string); u != "" {
			return strings.TrimSpace(u)
		}
		if u, _ := v["url"].(string); u != "" {
			return strings.TrimSpace(u)
		}
	case []any:
		for _, item := range v {
			if u := imageField(item); u != "" {
				return u
			}
		}
	}
	return ""
}
