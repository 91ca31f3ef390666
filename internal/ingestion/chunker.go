// Package ingestion turns raw uploaded text into indexable chunks.
package ingestion

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yungbote/edumentor-backend/internal/pkg/errors"
)

// Normalize collapses runs of whitespace to single spaces, trims the ends and
// drops invalid UTF-8 sequences. Chunk offsets are rune positions into the
// normalized text, so normalization happens exactly once, before chunking.
func Normalize(raw string) string {
	if !utf8.ValidString(raw) {
		raw = strings.ToValidUTF8(raw, "")
	}
	var b strings.Builder
	b.Grow(len(raw))
	inSpace := false
	for _, r := range raw {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// Piece is one window over the normalized text. Start and End are rune
// offsets; End is exclusive.
type Piece struct {
	Index int
	Start int
	End   int
	Text  string
}

// Chunk splits normalized text into overlapping rune windows. Every window
// except possibly the last holds exactly size runes, and consecutive windows
// share overlap runes. The final window is never empty and never a strict
// suffix of the previous one.
func Chunk(normalized string, size, overlap int) ([]Piece, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size %d: %w", size, errors.ErrInvalidConfiguration)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d for size %d: %w", overlap, size, errors.ErrInvalidConfiguration)
	}
	if normalized == "" {
		return nil, nil
	}

	runes := []rune(normalized)
	stride := size - overlap
	pieces := make([]Piece, 0, len(runes)/stride+1)
	for start := 0; start < len(runes); start += stride {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, Piece{
			Index: len(pieces),
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}
	return pieces, nil
}
