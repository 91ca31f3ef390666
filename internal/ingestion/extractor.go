package ingestion

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/yungbote/edumentor-backend/internal/pkg/errors"
)

// TextExtractor converts an uploaded file's bytes into plain text. Format
// conversion for binary formats lives behind this boundary; the built-in
// implementation accepts plain-text uploads only.
type TextExtractor interface {
	Extract(filename string, data []byte) (string, error)
}

type plainTextExtractor struct{}

func NewPlainTextExtractor() TextExtractor {
	return plainTextExtractor{}
}

var plainTextExts = map[string]bool{
	".txt": true,
	".md":  true,
	".csv": true,
	"":     true,
}

func (plainTextExtractor) Extract(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !plainTextExts[ext] {
		return "", fmt.Errorf("unsupported file type %q: %w", ext, errors.ErrExtractionFailure)
	}
	if bytes.IndexByte(data, 0x00) >= 0 {
		return "", fmt.Errorf("binary content in %q: %w", filename, errors.ErrExtractionFailure)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("invalid utf-8 in %q: %w", filename, errors.ErrExtractionFailure)
	}
	return string(data), nil
}
