// Package services holds the application logic: ingestion, retrieval,
// study-content synthesis, test generation, evaluation and progress.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/edumentor-backend/internal/config"
	"github.com/yungbote/edumentor-backend/internal/embedding"
	"github.com/yungbote/edumentor-backend/internal/ingestion"
	"github.com/yungbote/edumentor-backend/internal/pkg/errors"
	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/repos"
	"github.com/yungbote/edumentor-backend/internal/types"
	"github.com/yungbote/edumentor-backend/internal/vectorindex"
)

type DocumentService interface {
	// Upload extracts, normalizes and chunks the file, persisting the
	// document in the pending state. Indexing happens separately.
	Upload(ctx context.Context, filename string, data []byte) (*types.Document, error)

	// Index embeds the document's chunks and installs its vector index.
	// Embeddings and chunk records commit together or not at all; a
	// cancelled context leaves the document pending and unmodified.
	Index(ctx context.Context, documentID uuid.UUID) error

	Get(ctx context.Context, documentID uuid.UUID) (*types.Document, error)
	List(ctx context.Context) ([]*types.Document, error)
	Chunks(ctx context.Context, documentID uuid.UUID) ([]types.Chunk, error)

	// Delete removes the document, its chunks and its vector index.
	// Generated content that references the document stays retrievable.
	Delete(ctx context.Context, documentID uuid.UUID) error
}

type documentService struct {
	docs      repos.DocumentRepo
	chunks    repos.ChunkRepo
	extractor ingestion.TextExtractor
	embedder  embedding.Embedder
	indexes   *vectorindex.Manager
	cfg       config.Config
	log       *logger.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewDocumentService(
	docs repos.DocumentRepo,
	chunks repos.ChunkRepo,
	extractor ingestion.TextExtractor,
	embedder embedding.Embedder,
	indexes *vectorindex.Manager,
	cfg config.Config,
	baseLog *logger.Logger,
) DocumentService {
	return &documentService{
		docs:      docs,
		chunks:    chunks,
		extractor: extractor,
		embedder:  embedder,
		indexes:   indexes,
		cfg:       cfg,
		log:       baseLog.With("service", "documents"),
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *documentService) Upload(ctx context.Context, filename string, data []byte) (*types.Document, error) {
	raw, err := s.extractor.Extract(filename, data)
	if err != nil {
		return nil, err
	}
	text := ingestion.Normalize(raw)
	if text == "" {
		return nil, fmt.Errorf("document %q has no text: %w", filename, errors.ErrInsufficientContent)
	}
	pieces, err := ingestion.Chunk(text, s.cfg.Chunking.Size, s.cfg.Chunking.Overlap)
	if err != nil {
		return nil, err
	}

	doc := &types.Document{
		ID:         uuid.New(),
		Filename:   filename,
		CharCount:  len([]rune(text)),
		ChunkCount: len(pieces),
		IndexState: types.IndexStatePending,
		UploadedAt: time.Now().UTC(),
	}
	chunks := make([]types.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = types.Chunk{
			DocumentID: doc.ID,
			Index:      p.Index,
			Start:      p.Start,
			End:        p.End,
			Text:       p.Text,
		}
	}
	if err := s.chunks.PutAll(ctx, doc.ID, chunks); err != nil {
		return nil, err
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	s.log.Info("Document uploaded", "document_id", doc.ID, "chunks", len(chunks), "chars", doc.CharCount)
	return doc, nil
}

func (s *documentService) Index(ctx context.Context, documentID uuid.UUID) error {
	// One writer per document: a duplicate enqueue waits and then sees the
	// completed state, and a delete cannot interleave with a rebuild.
	lock := s.documentLock(documentID)
	lock.Lock()
	defer lock.Unlock()

	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.IndexState == types.IndexStateCompleted {
		return nil
	}
	chunks, err := s.chunks.GetByDocument(ctx, documentID)
	if err != nil {
		return err
	}

	doc.IndexState = types.IndexStateProcessing
	doc.IndexError = ""
	if err := s.docs.Update(ctx, doc); err != nil {
		return err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := embedding.EmbedBatched(ctx, s.embedder, texts, s.cfg.Ingest.EmbedBatchSize, s.cfg.Ingest.Workers)
	if err != nil {
		if ctx.Err() != nil {
			// Cancellation is not a document failure; put it back in the
			// queueable state without persisting partial work.
			doc.IndexState = types.IndexStatePending
			_ = s.docs.Update(context.WithoutCancel(ctx), doc)
			return ctx.Err()
		}
		doc.IndexState = types.IndexStateFailed
		doc.IndexError = err.Error()
		_ = s.docs.Update(ctx, doc)
		return err
	}

	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}
	if err := s.chunks.PutAll(ctx, documentID, chunks); err != nil {
		doc.IndexState = types.IndexStateFailed
		doc.IndexError = err.Error()
		_ = s.docs.Update(ctx, doc)
		return err
	}
	if err := s.indexes.Rebuild(documentID, vectors); err != nil {
		doc.IndexState = types.IndexStateFailed
		doc.IndexError = err.Error()
		_ = s.docs.Update(ctx, doc)
		return err
	}

	now := time.Now().UTC()
	doc.IndexState = types.IndexStateCompleted
	doc.IndexedAt = &now
	if err := s.docs.Update(ctx, doc); err != nil {
		return err
	}
	s.log.Info("Document indexed", "document_id", documentID, "vectors", len(vectors))
	return nil
}

func (s *documentService) Get(ctx context.Context, documentID uuid.UUID) (*types.Document, error) {
	return s.docs.GetByID(ctx, documentID)
}

func (s *documentService) List(ctx context.Context) ([]*types.Document, error) {
	return s.docs.List(ctx)
}

func (s *documentService) Chunks(ctx context.Context, documentID uuid.UUID) ([]types.Chunk, error) {
	return s.chunks.GetByDocument(ctx, documentID)
}

func (s *documentService) Delete(ctx context.Context, documentID uuid.UUID) error {
	lock := s.documentLock(documentID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.docs.GetByID(ctx, documentID); err != nil {
		return err
	}
	s.indexes.Delete(documentID)
	if err := s.chunks.DeleteByDocument(ctx, documentID); err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, documentID); err != nil {
		return err
	}
	s.log.Info("Document deleted", "document_id", documentID)
	return nil
}

func (s *documentService) documentLock(documentID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[documentID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[documentID] = lock
	}
	return lock
}
