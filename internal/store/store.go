// Package store is the injected persistence boundary: JSON documents keyed by
// (kind, id), with get/put/delete/list semantics and no cross-entity
// transactional guarantees. The core holds no other durable state.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a missing (kind, id) pair.
var ErrNotFound = errors.New("record not found")

// Kinds used by the repositories. Implementations treat kinds as opaque
// namespaces.
const (
	KindDocument   = "document"
	KindChunks     = "chunks"
	KindContent    = "content"
	KindTest       = "test"
	KindStudent    = "student"
	KindSubmission = "submission"
	KindEvaluation = "evaluation"
)

type KV interface {
	Get(ctx context.Context, kind, id string) ([]byte, error)
	Put(ctx context.Context, kind, id string, value []byte) error
	Delete(ctx context.Context, kind, id string) error
	// List returns every value of a kind, in unspecified order.
	List(ctx context.Context, kind string) ([][]byte, error)
	Close() error
}
