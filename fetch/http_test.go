package fetch

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
)

func TestFetchPage(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://shop.example.com/p/1",
		httpmock.NewStringResponder(200, "<html><body>ok</body></html>"))

	f := NewHTTPFetcher(5*time.Second, transport)
	page, err := f.FetchPage(context.Background(), "https://shop.example.com/p/1")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if page.HTML != "<html><body>ok</body></html>" {
		t.Errorf("HTML = %q", page.HTML)
	}
	if page.EffectiveURL != "https://shop.example.com/p/1" {
		t.Errorf("EffectiveURL = %q", page.EffectiveURL)
	}
}

func TestFetchPageSendsBrowserHeaders(t *testing.T) {
	transport := httpmock.NewMockTransport()
	var gotUA, gotReferer string
	transport.RegisterResponder("GET", "https://shop.example.com/p/2",
		func(req *http.Request) (*http.Response, error) {
			gotUA = req.Header.Get("User-Agent")
			gotReferer = req.Header.Get("Referer")
			return httpmock.NewStringResponse(200, "<html></html>"), nil
		})

	f := NewHTTPFetcher(5*time.Second, transport)
	if _, err := f.FetchPage(context.Background(), "https://shop.example.com/p/2"); err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if gotUA == "" {
		t.Error("request carried no User-Agent")
	}
	if gotReferer != "https://www.google.com/" {
		t.Errorf("Referer = %q", gotReferer)
	}
}

func TestFetchPageHTTPError(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://shop.example.com/missing",
		httpmock.NewStringResponder(404, "not found"))

	f := NewHTTPFetcher(5*time.Second, transport)
	if _, err := f.FetchPage(context.Background(), "https://shop.example.com/missing"); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestFetchPageConnectionError(t *testing.T) {
	// An unregistered URL makes the mock transport fail the dial.
	transport := httpmock.NewMockTransport()

	f := NewHTTPFetcher(5*time.Second, transport)
	if _, err := f.FetchPage(context.Background(), "https://unreachable.example.com/"); err == nil {
		t.Fatal("expected connection error")
	}
}
