package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// stealthScript hides the most common automation tells before any page
// script runs. Storefronts that fingerprint headless Chrome serve a
// stripped gallery otherwise.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', {get: () => undefined});
Object.defineProperty(navigator, 'languages', {get: () => ['uk-UA', 'uk', 'en-US', 'en']});
Object.defineProperty(navigator, 'plugins', {get: () => [1, 2, 3, 4, 5]});
window.chrome = window.chrome || {runtime: {}};
`

// BrowserSession drives a single Chrome instance for one product page.
// Sessions are not reused across rows; a fresh profile per row avoids
// cross-site state leaking into fingerprint checks.
type BrowserSession struct {
	ctx    context.Context
	cancel context.CancelFunc

	navTimeout time.Duration
	navigated  bool
}

// NewBrowserSession starts Chrome with the stealth flag set. Set
// headless=false to watch the session while debugging selectors.
func NewBrowserSession(ctx context.Context, headless bool, navTimeout time.Duration) (*BrowserSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(RandomUserAgent()),
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.Flag("incognito", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	session := &BrowserSession{
		ctx:        browserCtx,
		cancel:     func() { cancelBrowser(); cancelAlloc() },
		navTimeout: navTimeout,
	}

	// Install the stealth script so it runs on every document before
	// page scripts get a chance to fingerprint.
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	}))
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("installing stealth script: %w", err)
	}

	return session, nil
}

// Navigate loads the page and waits for the body plus a short random
// settle so lazy galleries have time to swap their placeholders out.
func (bs *BrowserSession) Navigate(pageURL string) error {
	ctx, cancel := context.WithTimeout(bs.ctx, bs.navTimeout)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		return fmt.Errorf("navigating to %s: %w", pageURL, err)
	}

	settle := time.Duration(1000+rand.Intn(2000)) * time.Millisecond
	log.Printf("[Browser] ✓ Page loaded, settling %v", settle)
	select {
	case <-time.After(settle):
	case <-bs.ctx.Done():
		return bs.ctx.Err()
	}

	bs.navigated = true
	return nil
}

// CollectCandidates waits up to wait for an element matching the
// selector and returns its candidate-bearing attributes plus the href
// of a wrapping anchor. A missing element yields an empty map, not an
// error.
func (bs *BrowserSession) CollectCandidates(selector string, wait time.Duration) (map[string]string, error) {
	if !bs.navigated {
		return nil, fmt.Errorf("collect before navigate")
	}

	sel, err := json.Marshal(selector)
	if err != nil {
		return nil, fmt.Errorf("encoding selector: %w", err)
	}

	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) return {};
		const out = {};
		for (const name of ['data-zoom-image', 'data-large-image', 'data-original', 'srcset', 'data-src', 'src']) {
			const v = el.getAttribute(name);
			if (v) out[name] = v;
		}
		const a = el.closest('a');
		if (a && a.getAttribute('href')) out['parent-href'] = a.getAttribute('href');
		return out;
	})()`, sel)

	deadline := time.Now().Add(wait)
	for {
		attrs := make(map[string]string)
		ctx, cancel := context.WithTimeout(bs.ctx, wait)
		err := chromedp.Run(ctx, chromedp.Evaluate(js, &attrs))
		cancel()
		if err != nil {
			return nil, fmt.Errorf("evaluating selector %s: %w", selector, err)
		}
		if len(attrs) > 0 {
			return attrs, nil
		}
		if time.Now().After(deadline) {
			return attrs, nil
		}
		select {
		case <-time.After(250 * time.Millisecond):
		case <-bs.ctx.Done():
			return nil, bs.ctx.Err()
		}
	}
}

// PageSource returns the rendered document for the static fallback.
func (bs *BrowserSession) PageSource() (string, error) {
	ctx, cancel := context.WithTimeout(bs.ctx, 10*time.Second)
	defer cancel()

	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("reading page source: %w", err)
	}
	return html, nil
}

// EffectiveURL returns the address the browser ended up on after
// redirects.
func (bs *BrowserSession) EffectiveURL() (string, error) {
	ctx, cancel := context.WithTimeout(bs.ctx, 5*time.Second)
	defer cancel()

	var loc string
	if err := chromedp.Run(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("reading location: %w", err)
	}
	return loc, nil
}

// Close tears the browser down. Safe to call more than once.
func (bs *BrowserSession) Close() {
	if bs.cancel != nil {
		bs.cancel()
		bs.cancel = nil
	}
}
