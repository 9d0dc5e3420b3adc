package runner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRows(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"https://prom.ua/p/1,item one",
		"https://rozetka.com.ua/p/2,item two,extra column ignored",
	}, "\n"))

	rows, rejected, err := LoadRows(path)
	if err != nil {
		t.Fatalf("LoadRows: %v", err)
	}
	if len(rejected) != 0 {
		t.Errorf("unexpected rejections: %v", rejected)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].ProductURL != "https://prom.ua/p/1" || rows[0].FilenameBase != "item one" {
		t.Errorf("row 0 = %+v", rows[0])
	}
}

func TestLoadRowsRejectsBadInput(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"ftp://prom.ua/p/1,bad scheme",
		"not-a-url,also bad",
		"onlyonecolumn",
		"https://prom.ua/p/2,",
		"https://prom.ua/p/3,good",
	}, "\n"))

	rows, rejected, err := LoadRows(path)
	if err != nil {
		t.Fatalf("LoadRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d valid rows, want 1", len(rows))
	}
	if len(rejected) != 4 {
		t.Errorf("got %d rejections, want 4: %v", len(rejected), rejected)
	}
	for _, r := range rejected {
		if r.Reason == "" {
			t.Errorf("rejection on line %d has no reason", r.Line)
		}
	}
}

func TestLoadRowsStripsBOM(t *testing.T) {
	path := writeCSV(t, "\uFEFFhttps://prom.ua/p/1,item")
	rows, rejected, err := LoadRows(path)
	if err != nil {
		t.Fatalf("LoadRows: %v", err)
	}
	if len(rejected) != 0 {
		t.Errorf("BOM row rejected: %v", rejected)
	}
	if len(rows) != 1 || rows[0].ProductURL != "https://prom.ua/p/1" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestLoadRowsTruncatesLongNames(t *testing.T) {
	long := strings.Repeat("я", 150)
	path := writeCSV(t, "https://prom.ua/p/1,"+long)
	rows, _, err := LoadRows(path)
	if err != nil {
		t.Fatalf("LoadRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows", len(rows))
	}
	if got := len([]rune(rows[0].FilenameBase)); got != maxFilenameBase {
		t.Errorf("name length = %d runes, want %d", got, maxFilenameBase)
	}
}

func TestLoadRowsMissingFile(t *testing.T) {
	if _, _, err := LoadRows(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
