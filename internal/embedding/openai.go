package embedding

import (
	"context"
	"fmt"

	"github.com/yungbote/edumentor-backend/internal/pkg/errors"
	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/platform/openai"
)

type openAIEmbedder struct {
	client openai.Client
	log    *logger.Logger
}

// NewOpenAI wraps the OpenAI embeddings client behind the Embedder interface.
func NewOpenAI(client openai.Client, baseLog *logger.Logger) Embedder {
	return &openAIEmbedder{client: client, log: baseLog.With("embedder", "openai")}
}

func (e *openAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := e.client.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrEmbeddingFailure, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", errors.ErrEmbeddingFailure, len(vecs), len(texts))
	}
	return vecs, nil
}

func (e *openAIEmbedder) Dimension() int { return e.client.Dimension() }
