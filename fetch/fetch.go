package fetch

import (
	"context"

	"pixgrab/models"
)

// Fetcher retrieves a product page. HTTPFetcher implements it for the
// fast path; tests substitute their own.
type Fetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*models.Page, error)
}

var _ Fetcher = (*HTTPFetcher)(nil)
