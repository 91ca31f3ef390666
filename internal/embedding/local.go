package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

type localEmbedder struct {
	dim int
}

// NewLocal returns a deterministic bag-of-words hashing embedder. It needs no
// network or credentials, which makes it the offline and test provider. Texts
// sharing more tokens score higher under cosine similarity, and identical
// texts always produce identical vectors.
func NewLocal(dim int) Embedder {
	if dim <= 0 {
		dim = 256
	}
	return &localEmbedder{dim: dim}
}

func (e *localEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.embedOne(t)
	}
	return out, nil
}

func (e *localEmbedder) Dimension() int { return e.dim }

func (e *localEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, e.dim)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		sum := h.Sum32()
		bucket := int(sum % uint32(e.dim))
		// Half the tokens pull negative so vectors spread over the sphere
		// instead of crowding the positive orthant.
		sign := float32(1)
		if sum&(1<<31) != 0 {
			sign = -1
		}
		vec[bucket] += sign
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
