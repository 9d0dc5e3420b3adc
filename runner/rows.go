package runner

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"pixgrab/models"
)

// maxFilenameBase keeps filesystem limits comfortable even after the
// collision suffix and extension are appended.
const maxFilenameBase = 100

// LoadRows reads the input table: column one is the product page URL,
// column two the base filename for the saved image. Malformed rows are
// reported, never fatal; the run proceeds with whatever validates.
func LoadRows(path string) ([]models.Row, []models.RejectedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var (
		rows     []models.Row
		rejected []models.RejectedRow
		line     int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rejected = append(rejected, models.RejectedRow{Line: line, Reason: "unparseable: " + err.Error()})
			continue
		}
		if line == 1 && len(record) > 0 {
			// Excel exports prepend a BOM to the first cell.
			record[0] = strings.TrimPrefix(record[0], "\uFEFF")
		}
		if len(record) < 2 {
			rejected = append(rejected, models.RejectedRow{Line: line, Reason: "needs at least 2 columns"})
			continue
		}

		rawURL := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[1])

		if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
			rejected = append(rejected, models.RejectedRow{Line: line, Reason: "url must start with http:// or https://"})
			continue
		}
		if name == "" {
			rejected = append(rejected, models.RejectedRow{Line: line, Reason: "empty filename"})
			continue
		}
		if runes := []rune(name); len(runes) > maxFilenameBase {
			name = string(runes[:maxFilenameBase])
		}

		rows = append(rows, models.Row{ProductURL: rawURL, FilenameBase: name})
	}

	return rows, rejected, nil
}
