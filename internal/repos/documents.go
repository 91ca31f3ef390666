// Package repos layers typed entity access over the raw key-value store.
// Repos own JSON encoding and the mapping from store misses to domain
// sentinels; they hold no business logic.
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

type DocumentRepo interface {
	Create(ctx context.Context, doc *types.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*types.Document, error)
	Update(ctx context.Context, doc *types.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*types.Document, error)
}

type documentRepo struct {
	kv  store.KV
	log *logger.Logger
}

func NewDocumentRepo(kv store.KV, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{kv: kv, log: baseLog.With("repo", "documents")}
}

func (r *documentRepo) Create(ctx context.Context, doc *types.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return r.kv.Put(ctx, store.KindDocument, doc.ID.String(), data)
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Document, error) {
	data, err := r.kv.Get(ctx, store.KindDocument, id.String())
	if goerrors.Is(err, store.ErrNotFound) {
		return nil, errors.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document %s: %w", id, err)
	}
	return &doc, nil
}

func (r *documentRepo) Update(ctx context.Context, doc *types.Document) error {
	return r.Create(ctx, doc)
}

func (r *documentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.kv.Delete(ctx, store.KindDocument, id.String())
}

func (r *documentRepo) List(ctx context.Context) ([]*types.Document, error) {
	raw, err := r.kv.List(ctx, store.KindDocument)
	if err != nil {
		return nil, err
	}
	docs := make([]*types.Document, 0, len(raw))
	for _, data := range raw {
		var doc types.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			r.log.Warn("Skipping undecodable document record", "error", err)
			continue
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}
