// Package selectors maps storefront domains to the CSS selectors that
// locate their main product image, plus the list of domains that only
// work through a real browser.
package selectors

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed profile.yaml
var embeddedProfile []byte

// Profile is the parsed selector configuration.
type Profile struct {
	Version      int                 `yaml:"version"`
	ForceBrowser []string            `yaml:"force_browser"`
	Domains      map[string][]string `yaml:"domains"`

	forced map[string]bool
}

// Load reads a profile from path, or the embedded default when path is
// empty.
func Load(path string) (*Profile, error) {
	data := embeddedProfile
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading selector profile: %w", err)
		}
		data = b
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing selector profile: %w", err)
	}
	p.forced = make(map[string]bool, len(p.ForceBrowser))
	for _, d := range p.ForceBrowser {
		p.forced[strings.ToLower(d)] = true
	}
	return &p, nil
}

// secondLevelSuffixes are registry labels that appear one position in
// from the TLD, e.g. the "com" in "rozetka.com.ua".
var secondLevelSuffixes = map[string]bool{
	"com": true,
	"net": true,
	"org": true,
	"edu": true,
	"gov": true,
}

// KeyFor reduces a page URL to the domain key used for profile lookups.
// An exact host match in the profile always wins; otherwise the host is
// trimmed to its registrable part, keeping three labels when the second
// label from the end is a generic suffix like "com".
func (p *Profile) KeyFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if _, ok := p.Domains[host]; ok {
		return host
	}
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	if secondLevelSuffixes[labels[len(labels)-2]] {
		return strings.Join(labels[len(labels)-3:], ".")
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// ForDomain returns the selector list for a domain key, or nil when the
// domain has no profile entry.
func (p *Profile) ForDomain(key string) []string {
	return p.Domains[key]
}

// NeedsBrowser reports whether the domain is known to require the
// browser fallback from the start.
func (p *Profile) NeedsBrowser(key string) bool {
	return p.forced[key]
}
