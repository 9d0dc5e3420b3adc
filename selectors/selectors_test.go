package selectors

import "testing"

func TestLoadEmbedded(t *testing.T) {
	p, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(p.Domains) == 0 {
		t.Fatal("embedded profile has no domains")
	}
	if sels := p.ForDomain("rozetka.com.ua"); len(sels) == 0 {
		t.Error("expected selectors for rozetka.com.ua")
	}
	if !p.NeedsBrowser("rozetka.com.ua") {
		t.Error("rozetka.com.ua should require the browser")
	}
	if p.NeedsBrowser("prom.ua") {
		t.Error("prom.ua should not require the browser")
	}
}

func TestKeyFor(t *testing.T) {
	p, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cases := []struct {
		rawURL string
		want   string
	}{
		// Exact profile match beats trimming.
		{"https://bt.rozetka.com.ua/item/p123/", "bt.rozetka.com.ua"},
		{"https://www.ctrs.com.ua/product/1", "www.ctrs.com.ua"},
		// Generic second-level suffix keeps three labels.
		{"https://shop.example.com.ua/p/1", "example.com.ua"},
		// Plain country domain keeps two labels.
		{"https://m.stylus.ua/product", "stylus.ua"},
		{"https://prom.ua/p/1", "prom.ua"},
		// Unparseable input yields no key.
		{"://not a url", ""},
	}
	for _, c := range cases {
		if got := p.KeyFor(c.rawURL); got != c.want {
			t.Errorf("KeyFor(%q) = %q, want %q", c.rawURL, got, c.want)
		}
	}
}

func TestForDomainUnknown(t *testing.T) {
	p, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sels := p.ForDomain("unknown.example"); sels != nil {
		t.Errorf("expected nil selectors for unknown domain, got %v", sels)
	}
}
