package extractor

import (
	"strconv"
	"strings"
)

// BestFromSrcset picks the widest candidate out of a srcset attribute.
// Entries without a width descriptor (bare URLs or density descriptors
// like 2x) are ignored for the comparison; if nothing carries a width
// the first URL is returned as-is.
func BestFromSrcset(srcset string) string {
	var (
		bestURL   string
		bestWidth = -1
		firstURL  string
	)
	for _, entry := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(entry))
		if len(fields) == 0 {
			continue
		}
		u := fields[0]
		if firstURL == "" {
			firstURL = u
		}
		if len(fields) < 2 {
			continue
		}
		desc := fields[1]
		if !strings.HasSuffix(desc, "w") {
			continue
		}
		w, err := strconv.Atoi(strings.TrimSuffix(desc, "w"))
		if err != nil {
			continue
		}
		if w > bestWidth {
			bestWidth = w
			bestURL = u
		}
	}
	if bestURL != "" {
		return bestURL
	}
	return firstURL
}
