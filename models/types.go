package models

// Row is one entry of the input table: the product page to visit and the
// base name (no extension) for the saved image. Rows are immutable once
// read; invalid ones never reach the worker pool.
type Row struct {
	ProductURL   string `json:"product_url"`   // Page to resolve the main image from
	FilenameBase string `json:"filename_base"` // Output name without extension
}

// RejectedRow records an input row that failed validation, together with
// the reason it was excluded. Rejections are reported but never abort a run.
type RejectedRow struct {
	Line   int    `json:"line"`   // 1-based line number in the input file
	Reason string `json:"reason"` // Why the row was dropped
}

// Page is the transport-independent representation of a fetched product
// page. Both the HTTP fast path and the browser fallback produce one.
type Page struct {
	HTML         string // Full page markup as rendered by the transport
	EffectiveURL string // URL after redirects; base for resolving candidates
}

// RowResult is the terminal outcome of processing one row.
type RowResult struct {
	Row     Row    `json:"row"`
	Success bool   `json:"success"`
	Message string `json:"message"`        // Human-readable outcome for the status log
	Path    string `json:"path,omitempty"` // Final file path when Success is true
}

// RunSummary aggregates per-row outcomes for a whole run.
type RunSummary struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// StatusFunc receives diagnostic messages from the pipeline. Messages are
// fire-and-forget and may interleave across rows.
type StatusFunc func(message string)

// ProgressFunc receives (completed, total) after each row finishes. The
// completed count is monotonic for the run as a whole, not per row.
type ProgressFunc func(completed, total int)

// Emit sends a message through the sink if one is attached.
func (f StatusFunc) Emit(message string) {
	if f != nil {
		f(message)
	}
}
