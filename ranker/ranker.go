// Package ranker filters and scores image-URL candidates to pick the
// most likely full-resolution product shot.
package ranker

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"pixgrab/config"
	"pixgrab/models"
)

// blockedKeywords disqualify a URL outright. They cover tracking
// pixels, UI chrome and placeholder art that CDNs serve with image
// extensions.
var blockedKeywords = []string{
	"placeholder", "stub", "sprite", "logo", "icon", "loader",
	"spinner", "avatar", "dummy", "blank", "banner", "ads",
	"pixel", "track", "default", "/svg/",
}

// acceptedExts gate which URLs count as downloadable images. The
// extension may appear at the end, mid-path, or inside the query
// string (CDN resize parameters often embed it there).
var acceptedExts = []string{
	".jpg", ".jpeg", ".png", ".webp", ".gif", ".bmp", ".tif", ".tiff",
}

var (
	highResMarkers = []string{
		"/original/", "/source/", "/big/", "/large/",
		"_xl.", "_large.", "zoom", "full", "master", "hires", "maxres",
	}
	mediumResMarkers = []string{
		"/medium/", "/med/", "_medium.", "_m.", "/product/", "/catalog/",
	}
	lowResMarkers = []string{
		"/small/", "/thumb", "_small.", "_s.", "_thumb.",
		"preview", "mini", "icon", "logo",
		"/100x", "/200x", "/300x", "tile",
	}
)

var dimensionsRe = regexp.MustCompile(`(\d{3,})[xX](\d{3,})`)

// Ranker scores candidates with a fixed weight set. The zero value is
// not usable; construct with New.
type Ranker struct {
	weights config.ScoreWeights
	status  models.StatusFunc
}

// New builds a Ranker. status may be nil.
func New(weights config.ScoreWeights, status models.StatusFunc) *Ranker {
	return &Ranker{weights: weights, status: status}
}

// resolveCandidate makes the candidate absolute against the page URL
// and validates it. Returns "" for anything unusable.
func resolveCandidate(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "data:") {
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
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if u.Hostname() == "" {
		return ""
	}
	return u.String()
}

func isBlocked(u string) bool {
	lower := strings.ToLower(u)
	for _, kw := range blockedKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// hasImageExt accepts an extension anywhere in the path or query, not
// just as a suffix.
func hasImageExt(u string) bool {
	lower := strings.ToLower(u)
	for _, ext := range acceptedExts {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// Score computes the resolution heuristic for a single URL.
func (r *Ranker) Score(u string) int {
	lower := strings.ToLower(u)
	score := 0
	if containsAny(lower, highResMarkers) {
		score += r.weights.HighRes
	}
	if containsAny(lower, mediumResMarkers) {
		score += r.weights.MediumRes
	}
	if containsAny(lower, lowResMarkers) {
		score -= r.weights.LowRes
	}
	if m := dimensionsRe.FindStringSubmatch(u); m != nil {
		w := atoiSafe(m[1])
		h := atoiSafe(m[2])
		bonus := (w * h) / r.weights.AreaDivisor
		if bonus > r.weights.AreaBonusCap {
			bonus = r.weights.AreaBonusCap
		}
		score += bonus
	}
	if strings.Contains(lower, ".jpg") || strings.Contains(lower, ".jpeg") || strings.Contains(lower, ".png") {
		score += r.weights.RasterTieBreak
	}
	return score
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// SelectBest runs the full pipeline over raw candidates: resolve and
// validate against the page URL, drop blocked and non-image URLs,
// rewrite known CDN sizes, dedupe preserving order, then score and sort
// (score descending, URL length descending on ties). The winner gets
// one more rewrite pass before being returned. Returns "" when nothing
// survives.
func (r *Ranker) SelectBest(candidates []string, pageURL string) string {
	seen := make(map[string]bool)
	var kept []string
	for _, raw := range candidates {
		u := resolveCandidate(raw, pageURL)
		if u == "" {
			r.status.Emit("[Ranker] ✗ rejected (invalid url): " + raw)
			continue
		}
		if isBlocked(u) {
			r.status.Emit("[Ranker] ✗ rejected (blocked keyword): " + u)
			continue
		}
		if !hasImageExt(u) {
			r.status.Emit("[Ranker] ✗ rejected (no image extension): " + u)
			continue
		}
		u = ImproveURL(u)
		if seen[u] {
			r.status.Emit("[Ranker] ✗ rejected (duplicate): " + u)
			continue
		}
		seen[u] = true
		kept = append(kept, u)
	}
	if len(kept) == 0 {
		r.status.Emit("[Ranker] no usable candidates")
		return ""
	}
	sort.SliceStable(kept, func(i, j int) bool {
		si, sj := r.Score(kept[i]), r.Score(kept[j])
		if si != sj {
			return si > sj
		}
		return len(kept[i]) > len(kept[j])
	})
	for _, u := range kept {
		r.status.Emit(fmt.Sprintf("[Ranker] scored %d: %s", r.Score(u), u))
	}
	winner := ImproveURL(kept[0])
	r.status.Emit("[Ranker] ✓ selected " + winner)
	return winner
}
