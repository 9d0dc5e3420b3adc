package config

import (
	"fmt"
	"time"
)

// ScoreWeights drives the ranker's candidate scoring. The values are
// empirically tuned against real storefront galleries; treat them as a
// starting point, not ground truth.
type ScoreWeights struct {
	HighRes        int // Added once when any high-resolution marker matches
	MediumRes      int // Added once for medium-resolution markers
	LowRes         int // Subtracted once for thumbnail/icon markers
	AreaBonusCap   int // Upper bound on the WxH-derived bonus
	AreaDivisor    int // Pixel area divided by this yields the bonus
	RasterTieBreak int // Small nudge for jpg/jpeg/png over webp/gif
}

// Config holds everything a run needs. Build one with DefaultConfig and
// adjust; Validate before use.
type Config struct {
	CSVPath   string // Input table of (product URL, filename base) rows
	OutputDir string // Where normalized images land

	Workers  int  // Worker pool size
	Headless bool // Browser fallback visibility toggle

	PageTimeout     time.Duration // Fast-path fetch (connect+read)
	NavTimeout      time.Duration // Browser navigation + body wait
	DownloadTimeout time.Duration // Image download
	ConvertTimeout  time.Duration // External conversion tool

	SelectorFile string // Optional override for the embedded selector profile
	JobTTL       time.Duration // Retention of finished jobs in the registry

	Weights ScoreWeights
}

// DefaultConfig mirrors the behavior of the reference runs: four workers,
// headless browser, 15s page fetches.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:       "downloaded_images",
		Workers:         4,
		Headless:        true,
		PageTimeout:     15 * time.Second,
		NavTimeout:      20 * time.Second,
		DownloadTimeout: 20 * time.Second,
		ConvertTimeout:  60 * time.Second,
		JobTTL:          time.Hour,
		Weights:         DefaultScoreWeights(),
	}
}

// DefaultScoreWeights returns the tuned scoring constants.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		HighRes:        100,
		MediumRes:      10,
		LowRes:         50,
		AreaBonusCap:   40,
		AreaDivisor:    50000,
		RasterTieBreak: 1,
	}
}

// Validate ensures the configuration is coherent before a run starts.
func (c *Config) Validate() error {
	if c.CSVPath == "" {
		return fmt.Errorf("csv path cannot be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.PageTimeout <= 0 {
		return fmt.Errorf("page timeout must be positive")
	}
	if c.NavTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be positive")
	}
	if c.DownloadTimeout <= 0 {
		return fmt.Errorf("download timeout must be positive")
	}
	if c.ConvertTimeout <= 0 {
		return fmt.Errorf("convert timeout must be positive")
	}
	if c.Weights.AreaDivisor <= 0 {
		return fmt.Errorf("area divisor must be positive")
	}
	return nil
}
