package ranker

import (
	"net/url"
	"regexp"
	"strings"
)

// rewriteRule bumps a known CDN's size parameter up to its largest
// variant. Rules must be idempotent; ImproveURL is applied both per
// candidate and again to the final winner.
type rewriteRule struct {
	hostSuffix string
	pattern    *regexp.Regexp
	replace    string
}

var rewriteRules = []rewriteRule{
	{
		hostSuffix: "citrus.world",
		pattern:    regexp.MustCompile(`size_\d+`),
		replace:    "size_800",
	},
}

// ImproveURL applies host-specific rewrites that swap a sized image
// path for its full resolution variant. URLs on hosts without a rule
// pass through untouched.
func ImproveURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	host := strings.ToLower(u.Hostname())
	for _, rule := range rewriteRules {
		if host == rule.hostSuffix || strings.HasSuffix(host, "."+rule.hostSuffix) {
			return rule.pattern.ReplaceAllString(raw, rule.replace)
		}
	}
	return raw
}
