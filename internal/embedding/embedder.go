// Package embedding maps text to dense vectors. Callers depend on the
// Embedder interface; the provider behind it is a deployment choice.
package embedding

import "context"

type Embedder interface {
	// Embed returns one vector per input, in input order. A failed call
	// wraps ErrEmbeddingFailure; no partial results are returned.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}
