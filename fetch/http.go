// Package fetch retrieves product pages over two transports: a fast
// plain-HTTP path built on colly and a chromedp browser session for
// script-rendered storefronts.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gocolly/colly"
	"golang.org/x/net/html/charset"

	"pixgrab/models"
)

// HTTPFetcher is the fast path. One instance serves a single row; it
// carries no shared cookie jar and every visit picks a fresh user
// agent.
type HTTPFetcher struct {
	timeout   time.Duration
	transport http.RoundTripper
}

// NewHTTPFetcher builds a fetcher with the given page timeout.
// transport may be nil for the default; tests inject one.
func NewHTTPFetcher(timeout time.Duration, transport http.RoundTripper) *HTTPFetcher {
	return &HTTPFetcher{timeout: timeout, transport: transport}
}

// FetchPage downloads a page and returns its decoded HTML along with
// the URL the request actually landed on after redirects.
func (f *HTTPFetcher) FetchPage(ctx context.Context, pageURL string) (*models.Page, error) {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(f.timeout)
	if f.transport != nil {
		c.WithTransport(f.transport)
	}

	ua := RandomUserAgent()
	c.OnRequest(func(r *colly.Request) {
		if err := ctx.Err(); err != nil {
			r.Abort()
			return
		}
		r.Headers.Set("User-Agent", ua)
		for k, v := range baseHeaders {
			r.Headers.Set(k, v)
		}
	})

	var (
		page    *models.Page
		pageErr error
	)

	c.OnResponse(func(r *colly.Response) {
		body, inflated, err := Decompress(r.Body, r.Headers.Get("Content-Encoding"))
		if err != nil {
			pageErr = fmt.Errorf("decompressing response: %w", err)
			return
		}
		if inflated {
			log.Printf("[Fetcher] ✓ Decompressed response: %d → %d bytes", len(r.Body), len(body))
		}

		html, err := decodeCharset(body, r.Headers.Get("Content-Type"))
		if err != nil {
			pageErr = fmt.Errorf("decoding charset: %w", err)
			return
		}

		page = &models.Page{
			HTML:         html,
			EffectiveURL: r.Request.URL.String(),
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		pageErr = fmt.Errorf("fetching %s: %w", pageURL, err)
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	c.Wait()

	if pageErr != nil {
		return nil, pageErr
	}
	if page == nil {
		return nil, fmt.Errorf("fetching %s: no response received", pageURL)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return page, nil
}

// decodeCharset converts legacy encodings (windows-1251 is still common
// on the target storefronts) to UTF-8 based on the Content-Type header
// and the document's own meta declarations.
func decodeCharset(body []byte, contentType string) (string, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", err
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
