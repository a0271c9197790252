// Package filex contains small file helpers shared across the client.
package filex

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

const defaultContentType = "application/octet-stream"

// ReadPhotoSource loads photo bytes from either a data: URL (as produced by
// a web capture surface) or a local file path, and reports the content type.
func ReadPhotoSource(src string) ([]byte, string, error) {
	if strings.HasPrefix(src, "data:") {
		return decodeDataURL(src)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read photo file: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(src))
	if contentType == "" {
		contentType = defaultContentType
	}
	return data, contentType, nil
}

// decodeDataURL handles the "data:<mediatype>;base64,<payload>" form.
func decodeDataURL(src string) ([]byte, string, error) {
	meta, payload, ok := strings.Cut(src, ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data url")
	}

	meta = strings.TrimPrefix(meta, "data:")
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", fmt.Errorf("unsupported data url encoding")
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		contentType = defaultContentType
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data url: %w", err)
	}
	return data, contentType, nil
}
