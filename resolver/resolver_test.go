package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"pixgrab/config"
	"pixgrab/fetch"
	"pixgrab/models"
	"pixgrab/ranker"
	"pixgrab/selectors"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	profile, err := selectors.Load("")
	if err != nil {
		t.Fatalf("loading profile: %v", err)
	}
	return New(profile, ranker.New(config.DefaultScoreWeights(), nil), nil)
}

func TestResolveStaticSchemaBeatsOg(t *testing.T) {
	r := newTestResolver(t)
	page := &models.Page{
		EffectiveURL: "https://prom.ua/p/1",
		HTML: `<html><head>
			<script type="application/ld+json">{"@type":"Product","image":"https://cdn.prom.ua/big/item.jpg"}</script>
			<meta property="og:image" content="https://cdn.prom.ua/og/item.jpg">
		</head></html>`,
	}
	if got := r.ResolveStatic(page); got != "https://cdn.prom.ua/big/item.jpg" {
		t.Errorf("ResolveStatic = %q", got)
	}
}

func TestResolveStaticFallsBackToOg(t *testing.T) {
	r := newTestResolver(t)
	page := &models.Page{
		EffectiveURL: "https://prom.ua/p/1",
		HTML:         `<html><head><meta property="og:image" content="https://cdn.prom.ua/photo/item.jpg"></head></html>`,
	}
	if got := r.ResolveStatic(page); got != "https://cdn.prom.ua/photo/item.jpg" {
		t.Errorf("ResolveStatic = %q", got)
	}
}

func TestResolveStaticSelectorPool(t *testing.T) {
	r := newTestResolver(t)
	page := &models.Page{
		EffectiveURL: "https://prom.ua/p/1",
		HTML: `<html><body>
			<img data-qaid="image_block" src="/small/item_s.jpg" data-zoom-image="/large/item.jpg">
		</body></html>`,
	}
	if got := r.ResolveStatic(page); got != "https://prom.ua/large/item.jpg" {
		t.Errorf("ResolveStatic = %q", got)
	}
}

func TestResolveStaticRewritesWinner(t *testing.T) {
	r := newTestResolver(t)
	page := &models.Page{
		EffectiveURL: "https://shop.example.com/p/1",
		HTML: `<html><head>
			<script type="application/ld+json">{"@type":"Product","image":"https://i.citrus.world/imgcache/size_300/p.jpg"}</script>
		</head></html>`,
	}
	want := "https://i.citrus.world/imgcache/size_800/p.jpg"
	if got := r.ResolveStatic(page); got != want {
		t.Errorf("ResolveStatic = %q, want %q", got, want)
	}
}

func TestResolveStaticNothingUsable(t *testing.T) {
	r := newTestResolver(t)
	page := &models.Page{
		EffectiveURL: "https://unknown.example.com/p/1",
		HTML:         `<html><body><p>no images here</p></body></html>`,
	}
	if got := r.ResolveStatic(page); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}

func TestResolveFast(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://prom.ua/p/1",
		httpmock.NewStringResponder(200,
			`<html><head><meta property="og:image" content="https://cdn.prom.ua/photo/item.jpg"></head></html>`))

	r := newTestResolver(t)
	f := fetch.NewHTTPFetcher(5*time.Second, transport)
	got, err := r.ResolveFast(context.Background(), f, "https://prom.ua/p/1")
	if err != nil {
		t.Fatalf("ResolveFast: %v", err)
	}
	if got != "https://cdn.prom.ua/photo/item.jpg" {
		t.Errorf("ResolveFast = %q", got)
	}
}

func TestResolveFastNoImage(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://unknown.example.com/p/1",
		httpmock.NewStringResponder(200, `<html><body>empty</body></html>`))

	r := newTestResolver(t)
	f := fetch.NewHTTPFetcher(5*time.Second, transport)
	if _, err := r.ResolveFast(context.Background(), f, "https://unknown.example.com/p/1"); err == nil {
		t.Fatal("expected error when page yields no image")
	}
}
