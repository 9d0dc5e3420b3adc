package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"log"
	"os"
	"os/exec"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// detectImageFormat reads the magic bytes and returns the format name.
func detectImageFormat(data []byte) (string, error) {
	if len(data) < 12 {
		return "", errors.New("data too short to determine format")
	}

	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "jpeg", nil
	}
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "png", nil
	}
	if string(data[0:6]) == "GIF87a" || string(data[0:6]) == "GIF89a" {
		return "gif", nil
	}
	if string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP" {
		return "webp", nil
	}
	if string(data[0:2]) == "BM" {
		return "bmp", nil
	}
	if string(data[0:4]) == "II*\x00" || string(data[0:4]) == "MM\x00*" {
		return "tiff", nil
	}

	return "", errors.New("unknown image format")
}

// convertToPNG rewrites srcPath as a PNG at dstPath. Formats the
// in-process decoders understand are converted directly; anything else
// (avif, heic) goes through the external magick binary.
func convertToPNG(ctx context.Context, srcPath, dstPath string, toolTimeout time.Duration) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading image for conversion: %w", err)
	}

	format, ferr := detectImageFormat(data)
	if ferr == nil {
		var img image.Image
		var derr error
		reader := bytes.NewReader(data)

		switch format {
		case "webp":
			img, derr = webp.Decode(reader)
		case "bmp":
			img, derr = bmp.Decode(reader)
		case "tiff":
			img, derr = tiff.Decode(reader)
		case "gif":
			img, derr = gif.Decode(reader)
		case "jpeg", "png":
			img, derr = imaging.Decode(reader)
		default:
			derr = errors.New("no in-process decoder for " + format)
		}

		if derr == nil {
			if err := imaging.Save(img, dstPath); err != nil {
				return fmt.Errorf("encoding png: %w", err)
			}
			log.Printf("[Downloader] ✓ Converted %s image in-process", format)
			return nil
		}
		log.Printf("[Downloader] In-process decode failed (%v), trying external tool", derr)
	}

	return convertWithMagick(ctx, srcPath, dstPath, toolTimeout)
}

// convertWithMagick shells out to ImageMagick for formats the Go
// decoders cannot handle. Tool output is truncated so a chatty failure
// does not flood the status log.
func convertWithMagick(ctx context.Context, srcPath, dstPath string, timeout time.Duration) error {
	toolCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(toolCtx, "magick", srcPath, dstPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		diag := string(out)
		if len(diag) > 200 {
			diag = diag[:200]
		}
		return fmt.Errorf("magick conversion failed: %w: %s", err, diag)
	}
	log.Printf("[Downloader] ✓ Converted via external tool")
	return nil
}
