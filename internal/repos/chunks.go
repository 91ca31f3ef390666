package repos

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/edumentor-backend/internal/pkg/errors"
	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/store"
	"github.com/yungbote/edumentor-backend/internal/types"
)

// ChunkRepo stores a document's chunks as a single record so indexing commits
// all-or-nothing against one key.
type ChunkRepo interface {
	PutAll(ctx context.Context, documentID uuid.UUID, chunks []types.Chunk) error
	GetByDocument(ctx context.Context, documentID uuid.UUID) ([]types.Chunk, error)
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) error
}

type chunkRepo struct {
	kv  store.KV
	log *logger.Logger
}

func NewChunkRepo(kv store.KV, baseLog *logger.Logger) ChunkRepo {
	return &chunkRepo{kv: kv, log: baseLog.With("repo", "chunks")}
}

func (r *chunkRepo) PutAll(ctx context.Context, documentID uuid.UUID, chunks []types.Chunk) error {
	data, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}
	return r.kv.Put(ctx, store.KindChunks, documentID.String(), data)
}

func (r *chunkRepo) GetByDocument(ctx context.Context, documentID uuid.UUID) ([]types.Chunk, error) {
	data, err := r.kv.Get(ctx, store.KindChunks, documentID.String())
	if goerrors.Is(err, store.ErrNotFound) {
		return nil, errors.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	var chunks []types.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("unmarshal chunks %s: %w", documentID, err)
	}
	return chunks, nil
}

func (r *chunkRepo) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	return r.kv.Delete(ctx, store.KindChunks, documentID.String())
}
