// Package vectorindex holds in-memory cosine similarity indexes, one per
// document, behind a manager that supports atomic rebuilds.
package vectorindex

import (
	"fmt"
	"math"
	"sort"
)

// Hit is one query result. ChunkIndex addresses the chunk within its
// document; Score is cosine similarity in [-1, 1].
type Hit struct {
	ChunkIndex int
	Score      float64
}

// Index is an immutable set of vectors. Build normalizes every vector once so
// queries reduce to dot products.
type Index struct {
	dim     int
	vectors [][]float32
}

// Build constructs an index over the given vectors, where position i holds
// the vector for chunk i. All vectors must share one dimension.
func Build(vectors [][]float32) (*Index, error) {
	idx := &Index{}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("vector %d is empty", i)
		}
		if idx.dim == 0 {
			idx.dim = len(v)
		} else if len(v) != idx.dim {
			return nil, fmt.Errorf("vector %d dimension %d, index dimension %d", i, len(v), idx.dim)
		}
		idx.vectors = append(idx.vectors, normalize(v))
	}
	return idx, nil
}

func (idx *Index) Len() int { return len(idx.vectors) }

// Query returns the k nearest chunks by cosine similarity, highest score
// first; equal scores order by ascending chunk index. An empty index returns
// an empty slice.
func (idx *Index) Query(query []float32, k int) ([]Hit, error) {
	if len(idx.vectors) == 0 || k <= 0 {
		return []Hit{}, nil
	}
	if len(query) != idx.dim {
		return nil, fmt.Errorf("query dimension %d, index dimension %d", len(query), idx.dim)
	}
	q := normalize(query)
	hits := make([]Hit, len(idx.vectors))
	for i, v := range idx.vectors {
		var dot float64
		for j := range v {
			dot += float64(v[j]) * float64(q[j])
		}
		hits[i] = Hit{ChunkIndex: i, Score: dot}
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].ChunkIndex < hits[b].ChunkIndex
	})
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if norm == 0 {
		copy(out, v)
		return out
	}
	inv := float32(1 / math.Sqrt(norm))
	for i, x := range v {
		out[i] = x * inv
	}
	return out
}
