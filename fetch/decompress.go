package fetch

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/andybalholm/brotli"
)

// Decompress inflates a response body that arrived gzip or Brotli
// compressed. Detection is by magic bytes for gzip and by the
// Content-Encoding header (with a first-byte heuristic fallback) for
// Brotli. Returns the body, whether anything was inflated, and any
// decode error.
func Decompress(body []byte, contentEncoding string) ([]byte, bool, error) {
	if len(body) == 0 {
		return body, false, nil
	}

	if len(body) >= 2 && body[0] == 0x1f && body[1] == 0x8b {
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, false, err
		}
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, false, err
		}
		return decompressed, true, nil
	}

	// Brotli streams commonly open with a byte in 0x80-0x8f. The
	// heuristic can misfire on binary content, so a failed decode
	// falls back to the original bytes.
	if contentEncoding == "br" || (body[0] >= 0x80 && body[0] <= 0x8f) {
		reader := brotli.NewReader(bytes.NewReader(body))
		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return body, false, nil
		}
		return decompressed, true, nil
	}

	return body, false, nil
}
