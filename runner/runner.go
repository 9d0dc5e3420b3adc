// Package runner coordinates a full run: CSV rows in, images on disk
// out, spread across a bounded worker pool.
package runner

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"pixgrab/config"
	"pixgrab/downloader"
	"pixgrab/fetch"
	"pixgrab/models"
	"pixgrab/ranker"
	"pixgrab/resolver"
	"pixgrab/selectors"
)

// Options configures a run. Rows, OutputDir and Profile are required;
// everything else has a sensible zero-value fallback.
type Options struct {
	Rows      []models.Row
	OutputDir string
	Profile   *selectors.Profile
	Weights   config.ScoreWeights

	Workers  int
	Headless bool

	// DisableBrowser turns the chromedp fallback off entirely. Rows
	// whose domain demands a browser then fail instead of hanging on
	// a machine without Chrome.
	DisableBrowser bool

	PageTimeout     time.Duration
	NavTimeout      time.Duration
	DownloadTimeout time.Duration
	ConvertTimeout  time.Duration

	// Transport overrides the HTTP transport for both page fetches
	// and image downloads. Tests inject a mock here.
	Transport http.RoundTripper

	Status   models.StatusFunc
	Progress models.ProgressFunc
	Metrics  *Metrics
}

func (o *Options) fillDefaults() {
	def := config.DefaultConfig()
	if o.Workers <= 0 {
		o.Workers = def.Workers
	}
	if o.PageTimeout <= 0 {
		o.PageTimeout = def.PageTimeout
	}
	if o.NavTimeout <= 0 {
		o.NavTimeout = def.NavTimeout
	}
	if o.DownloadTimeout <= 0 {
		o.DownloadTimeout = def.DownloadTimeout
	}
	if o.ConvertTimeout <= 0 {
		o.ConvertTimeout = def.ConvertTimeout
	}
	if (o.Weights == config.ScoreWeights{}) {
		o.Weights = def.Weights
	}
	if o.Metrics == nil {
		o.Metrics = NewMetrics()
	}
}

// Run processes every row and returns the tally. A cancelled context
// stops new rows from starting; rows already in flight finish, so a
// half-written image never gets abandoned mid-pipeline.
func Run(ctx context.Context, opts Options) (*models.RunSummary, error) {
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if opts.Profile == nil {
		return nil, fmt.Errorf("selector profile is required")
	}
	opts.fillDefaults()

	res := resolver.New(opts.Profile, ranker.New(opts.Weights, opts.Status), opts.Status)
	dl := downloader.New(
		&http.Client{Timeout: opts.DownloadTimeout, Transport: opts.Transport},
		opts.ConvertTimeout,
		opts.Status,
	)
	dl.OnConvert = opts.Metrics.Conversions.Inc

	total := len(opts.Rows)
	work := make(chan models.Row)
	results := make(chan models.RowResult, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for row := range work {
				results <- processRow(ctx, &opts, res, dl, row)
			}
		}(i)
	}

	go func() {
		defer close(work)
		for _, row := range opts.Rows {
			select {
			case work <- row:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	summary := &models.RunSummary{}
	for result := range results {
		summary.Processed++
		if result.Success {
			summary.Succeeded++
			opts.Status.Emit(fmt.Sprintf("[Runner] ✓ %s → %s", result.Row.FilenameBase, result.Path))
		} else {
			summary.Failed++
			opts.Status.Emit(fmt.Sprintf("[Runner] ✗ %s: %s", result.Row.FilenameBase, result.Message))
		}
		if opts.Progress != nil {
			opts.Progress(summary.Processed, total)
		}
	}

	log.Printf("[Runner] ==============================")
	log.Printf("[Runner] Run complete: %d processed", summary.Processed)
	log.Printf("[Runner]   succeeded: %d", summary.Succeeded)
	log.Printf("[Runner]   failed:    %d", summary.Failed)
	log.Printf("[Runner] ==============================")

	return summary, nil
}

// processRow runs the whole pipeline for one row. The fast transport is
// tried first unless the domain is known to need a browser; any failure
// along the fast pipeline (fetch, resolve, or download) hands the whole
// row to the browser for one more attempt.
func processRow(ctx context.Context, opts *Options, res *resolver.Resolver, dl *downloader.Downloader, row models.Row) models.RowResult {
	opts.Metrics.RowsProcessed.Inc()
	opts.Status.Emit("[Runner] processing " + row.ProductURL)

	key := opts.Profile.KeyFor(row.ProductURL)
	forceBrowser := opts.Profile.NeedsBrowser(key) && !opts.DisableBrowser

	var fastErr error
	if !forceBrowser {
		opts.Metrics.FastFetches.Inc()
		fetcher := fetch.NewHTTPFetcher(opts.PageTimeout, opts.Transport)
		imageURL, err := res.ResolveFast(ctx, fetcher, row.ProductURL)
		if err == nil {
			path, dlErr := dl.Download(ctx, imageURL, opts.OutputDir, row.FilenameBase)
			if dlErr == nil {
				opts.Metrics.Downloads.Inc()
				opts.Metrics.RowsSucceeded.Inc()
				return models.RowResult{Row: row, Success: true, Path: path}
			}
			opts.Metrics.ErrorsByStage.WithLabelValues("download").Inc()
			err = dlErr
		} else {
			opts.Metrics.ErrorsByStage.WithLabelValues("fast").Inc()
		}
		fastErr = err
	}

	if opts.DisableBrowser {
		opts.Metrics.RowsFailed.Inc()
		msg := "no image resolved"
		if fastErr != nil {
			msg = fastErr.Error()
		}
		return models.RowResult{Row: row, Success: false, Message: msg}
	}

	if !forceBrowser {
		opts.Metrics.Fallbacks.Inc()
		opts.Status.Emit("[Runner] fast path failed, switching to browser for " + row.ProductURL)
	}

	imageURL, err := resolveWithBrowser(ctx, opts, res, row.ProductURL)
	if err != nil {
		opts.Metrics.ErrorsByStage.WithLabelValues("browser").Inc()
		opts.Metrics.RowsFailed.Inc()
		return models.RowResult{Row: row, Success: false, Message: err.Error()}
	}

	path, err := dl.Download(ctx, imageURL, opts.OutputDir, row.FilenameBase)
	if err != nil {
		opts.Metrics.ErrorsByStage.WithLabelValues("download").Inc()
		opts.Metrics.RowsFailed.Inc()
		return models.RowResult{Row: row, Success: false, Message: err.Error()}
	}

	opts.Metrics.Downloads.Inc()
	opts.Metrics.RowsSucceeded.Inc()
	return models.RowResult{Row: row, Success: true, Path: path}
}

// resolveWithBrowser spins up a fresh Chrome for one page. Sessions
// are deliberately not pooled; storefront fingerprinting gets harder
// to trip when every page starts clean.
func resolveWithBrowser(ctx context.Context, opts *Options, res *resolver.Resolver, pageURL string) (string, error) {
	opts.Metrics.BrowserFetches.Inc()
	session, err := fetch.NewBrowserSession(ctx, opts.Headless, opts.NavTimeout)
	if err != nil {
		return "", fmt.Errorf("starting browser: %w", err)
	}
	defer session.Close()

	return res.ResolveBrowser(ctx, session, pageURL)
}
