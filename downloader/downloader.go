// Package downloader fetches a resolved image URL to disk and
// normalizes exotic formats to PNG.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pixgrab/models"
)

// mimeToExt maps the Content-Type of an image response to a file
// extension. The header wins over the URL because CDNs routinely serve
// webp from .jpg paths.
var mimeToExt = map[string]string{
	"image/jpeg":  ".jpg",
	"image/jpg":   ".jpg",
	"image/pjpeg": ".jpg",
	"image/png":   ".png",
	"image/webp":  ".webp",
	"image/gif":   ".gif",
	"image/bmp":   ".bmp",
	"image/tiff":  ".tif",
	"image/avif":  ".avif",
}

// standardExts keep their extension on disk; everything else is
// normalized to PNG.
var standardExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// knownURLExts are extensions trusted when read off the URL path.
var knownURLExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
	".gif": true, ".bmp": true, ".tif": true, ".tiff": true,
	".avif": true,
}

// maxCollisionSuffix caps the _<N> rename loop. A directory with a
// thousand same-named files signals a caller bug, not a real catalog.
const maxCollisionSuffix = 1000

// Downloader writes images below OutputDir. One instance is shared by
// all workers; it holds no per-row state.
type Downloader struct {
	client         *http.Client
	convertTimeout time.Duration
	status         models.StatusFunc

	// OnConvert, when set, is called once per successful format
	// normalization.
	OnConvert func()
}

// New builds a Downloader. client may be nil for http.DefaultClient;
// tests pass one with a mock transport.
func New(client *http.Client, convertTimeout time.Duration, status models.StatusFunc) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Downloader{client: client, convertTimeout: convertTimeout, status: status}
}

// trueExtension decides the image's real extension from the response
// Content-Type, falling back to the URL path and finally to .jpg.
func trueExtension(contentType, imageURL string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ext, ok := mimeToExt[ct]; ok {
		return ext
	}
	if u, err := url.Parse(imageURL); err == nil {
		ext := strings.ToLower(filepath.Ext(u.Path))
		if knownURLExts[ext] {
			return ext
		}
	}
	return ".jpg"
}

// availablePath returns dir/base+ext, appending _1, _2, ... when the
// name is taken.
func availablePath(dir, base, ext string) (string, error) {
	candidate := filepath.Join(dir, base+ext)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate, nil
	}
	for i := 1; i <= maxCollisionSuffix; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free filename for %q after %d attempts", base, maxCollisionSuffix)
}

// Download fetches imageURL and stores it under dir as base plus the
// appropriate extension. Standard raster formats keep their extension;
// anything else is converted to PNG. Returns the final path on disk.
func (d *Downloader) Download(ctx context.Context, imageURL, dir, base string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("building image request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Referer", "https://www.google.com/")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading image: unexpected status %d", resp.StatusCode)
	}

	trueExt := trueExtension(resp.Header.Get("Content-Type"), imageURL)
	finalExt := trueExt
	needsConvert := !standardExts[trueExt]
	if needsConvert {
		finalExt = ".png"
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	tempPath := filepath.Join(dir, base+"_temp"+trueExt)
	temp, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	written, err := io.Copy(temp, resp.Body)
	closeErr := temp.Close()
	if err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("writing image: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("writing image: %w", closeErr)
	}
	if written == 0 {
		os.Remove(tempPath)
		return "", fmt.Errorf("downloading image: empty body")
	}

	finalPath, err := availablePath(dir, base, finalExt)
	if err != nil {
		os.Remove(tempPath)
		return "", err
	}

	if needsConvert {
		d.status.Emit("[Downloader] converting " + trueExt + " → .png")
		if err := convertToPNG(ctx, tempPath, finalPath, d.convertTimeout); err != nil {
			// A failed encoder or tool can leave a partial target
			// behind; neither file may survive the error.
			os.Remove(tempPath)
			os.Remove(finalPath)
			return "", err
		}
		os.Remove(tempPath)
		if d.OnConvert != nil {
			d.OnConvert()
		}
		return finalPath, nil
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("moving image into place: %w", err)
	}
	return finalPath, nil
}
