package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pixgrab/config"
	"pixgrab/jobs"
	"pixgrab/models"
	"pixgrab/runner"
	"pixgrab/selectors"
)

func main() {
	cfg := config.DefaultConfig()
	var headful bool
	var noBrowser bool

	rootCmd := &cobra.Command{
		Use:   "pixgrab",
		Short: "Resolve and download product images from a CSV of store pages",
		Long: `pixgrab reads a CSV of (product page URL, filename) rows, finds the
best product image on each page, and saves a normalized copy to the
output directory.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Headless = !headful
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, noBrowser)
		},
	}

	rootCmd.Flags().StringVarP(&cfg.CSVPath, "csv", "c", "", "input CSV file (required)")
	rootCmd.Flags().StringVarP(&cfg.OutputDir, "out", "o", cfg.OutputDir, "output directory for images")
	rootCmd.Flags().IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "concurrent rows")
	rootCmd.Flags().StringVar(&cfg.SelectorFile, "selectors", "", "override the built-in selector profile")
	rootCmd.Flags().BoolVar(&headful, "headful", false, "show the browser window")
	rootCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "disable the browser fallback")
	rootCmd.MarkFlagRequired("csv")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, noBrowser bool) error {
	profile, err := selectors.Load(cfg.SelectorFile)
	if err != nil {
		return err
	}

	rows, rejected, err := runner.LoadRows(cfg.CSVPath)
	if err != nil {
		return err
	}
	for _, r := range rejected {
		log.Printf("[Main] skipping line %d: %s", r.Line, r.Reason)
	}
	if len(rows) == 0 {
		return fmt.Errorf("no valid rows in %s", cfg.CSVPath)
	}
	log.Printf("[Main] loaded %d rows (%d rejected)", len(rows), len(rejected))

	store := jobs.NewStore(64, cfg.JobTTL)
	job := store.Create(len(rows))

	summary, err := runner.Run(ctx, runner.Options{
		Rows:            rows,
		OutputDir:       cfg.OutputDir,
		Profile:         profile,
		Weights:         cfg.Weights,
		Workers:         cfg.Workers,
		Headless:        cfg.Headless,
		DisableBrowser:  noBrowser,
		PageTimeout:     cfg.PageTimeout,
		NavTimeout:      cfg.NavTimeout,
		DownloadTimeout: cfg.DownloadTimeout,
		ConvertTimeout:  cfg.ConvertTimeout,
		Status: models.StatusFunc(func(msg string) {
			log.Println(msg)
		}),
		Progress: func(done, total int) {
			store.Update(job.ID, func(j *jobs.Job) {
				j.Processed = done
			})
		},
	})
	if err != nil {
		store.Update(job.ID, func(j *jobs.Job) {
			j.Status = jobs.StatusFailed
			j.Message = err.Error()
		})
		return err
	}

	store.Update(job.ID, func(j *jobs.Job) {
		j.Status = jobs.StatusDone
		j.Processed = summary.Processed
		j.Succeeded = summary.Succeeded
		j.Failed = summary.Failed
	})

	fmt.Printf("Processed %d rows: %d succeeded, %d failed\n",
		summary.Processed, summary.Succeeded, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d rows failed", summary.Failed)
	}
	return nil
}
