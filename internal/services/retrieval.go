package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/edumentor-backend/internal/config"
	"github.com/yungbote/edumentor-backend/internal/embedding"
	"github.com/yungbote/edumentor-backend/internal/pkg/errors"
	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/repos"
	"github.com/yungbote/edumentor-backend/internal/types"
	"github.com/yungbote/edumentor-backend/internal/vectorindex"
)

// RetrievedChunk pairs a chunk with its similarity to the query.
type RetrievedChunk struct {
	Chunk types.Chunk `json:"chunk"`
	Score float64     `json:"score"`
}

// DocumentHits groups one document's results for cross-document search.
type DocumentHits struct {
	DocumentID uuid.UUID        `json:"document_id"`
	Filename   string           `json:"filename"`
	Chunks     []RetrievedChunk `json:"chunks"`
}

type RetrievalService interface {
	// Retrieve returns the k most similar chunks of one document, best
	// first. k <= 0 falls back to the configured default; k above the
	// chunk count clamps.
	Retrieve(ctx context.Context, documentID uuid.UUID, query string, k int) ([]RetrievedChunk, error)

	// SearchAll queries every indexed document and returns per-document
	// hits ordered by each document's best score.
	SearchAll(ctx context.Context, query string, k int) ([]DocumentHits, error)
}

type retrievalService struct {
	docs     repos.DocumentRepo
	chunks   repos.ChunkRepo
	embedder embedding.Embedder
	indexes  *vectorindex.Manager
	cfg      config.Config
	log      *logger.Logger
}

func NewRetrievalService(
	docs repos.DocumentRepo,
	chunks repos.ChunkRepo,
	embedder embedding.Embedder,
	indexes *vectorindex.Manager,
	cfg config.Config,
	baseLog *logger.Logger,
) RetrievalService {
	return &retrievalService{
		docs:     docs,
		chunks:   chunks,
		embedder: embedder,
		indexes:  indexes,
		cfg:      cfg,
		log:      baseLog.With("service", "retrieval"),
	}
}

func (s *retrievalService) Retrieve(ctx context.Context, documentID uuid.UUID, query string, k int) ([]RetrievedChunk, error) {
	if k <= 0 {
		k = s.cfg.Retrieval.TopK
	}
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	chunks, err := s.chunks.GetByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	idx, err := s.indexFor(ctx, doc, chunks)
	if err != nil {
		return nil, err
	}
	if idx == nil || idx.Len() == 0 {
		return []RetrievedChunk{}, nil
	}

	qvecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := idx.Query(qvecs[0], k)
	if err != nil {
		return nil, err
	}
	out := make([]RetrievedChunk, 0, len(hits))
	for _, h := range hits {
		if h.ChunkIndex >= len(chunks) {
			continue
		}
		out = append(out, RetrievedChunk{Chunk: chunks[h.ChunkIndex], Score: h.Score})
	}
	return out, nil
}

func (s *retrievalService) SearchAll(ctx context.Context, query string, k int) ([]DocumentHits, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentHits, 0, len(docs))
	for _, doc := range docs {
		if doc.IndexState != types.IndexStateCompleted {
			continue
		}
		hits, err := s.Retrieve(ctx, doc.ID, query, k)
		if err != nil {
			return nil, err
		}
		if len(hits) == 0 {
			continue
		}
		out = append(out, DocumentHits{DocumentID: doc.ID, Filename: doc.Filename, Chunks: hits})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Chunks[0].Score > out[j].Chunks[0].Score
	})
	return out, nil
}

// indexFor returns the in-memory index, rebuilding it from persisted
// embeddings after a restart. A document that never finished indexing has no
// index to rebuild.
func (s *retrievalService) indexFor(ctx context.Context, doc *types.Document, chunks []types.Chunk) (*vectorindex.Index, error) {
	if idx := s.indexes.Get(doc.ID); idx != nil {
		return idx, nil
	}
	if doc.IndexState != types.IndexStateCompleted {
		return nil, fmt.Errorf("document %s is not indexed: %w", doc.ID, errors.ErrDocumentNotFound)
	}
	vectors := make([][]float32, len(chunks))
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return nil, fmt.Errorf("chunk %d of document %s has no embedding", i, doc.ID)
		}
		vectors[i] = c.Embedding
	}
	if err := s.indexes.Rebuild(doc.ID, vectors); err != nil {
		return nil, err
	}
	s.log.Info("Index restored from persisted embeddings", "document_id", doc.ID, "vectors", len(vectors))
	return s.indexes.Get(doc.ID), nil
}
