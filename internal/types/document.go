package types

import (
	"time"

	"github.com/google/uuid"
)

type IndexState string

const (
	IndexStatePending    IndexState = "pending"
	IndexStateProcessing IndexState = "processing"
	IndexStateCompleted  IndexState = "completed"
	IndexStateFailed     IndexState = "failed"
)

// Document is the ingested source. Immutable once indexed; deletion cascades
// to its chunks and vector index.
type Document struct {
	ID         uuid.UUID  `json:"id"`
	Filename   string     `json:"filename"`
	CharCount  int        `json:"char_count"`
	ChunkCount int        `json:"chunk_count"`
	IndexState IndexState `json:"index_state"`
	IndexError string     `json:"index_error,omitempty"`
	UploadedAt time.Time  `json:"uploaded_at"`
	IndexedAt  *time.Time `json:"indexed_at,omitempty"`
}

// Chunk is one span of a document's normalized text. Start/End are rune
// offsets into the normalized text; neighbors overlap by the configured
// stride.
type Chunk struct {
	DocumentID uuid.UUID `json:"document_id"`
	Index      int       `json:"index"`
	Start      int       `json:"start"`
	End        int       `json:"end"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding,omitempty"`
}
