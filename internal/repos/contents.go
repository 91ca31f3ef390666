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

type ContentRepo interface {
	Create(ctx context.Context, content *types.Content) error
	GetByID(ctx context.Context, id uuid.UUID) (*types.Content, error)
	Update(ctx context.Context, content *types.Content) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*types.Content, error)
	List(ctx context.Context) ([]*types.Content, error)
}

type contentRepo struct {
	kv  store.KV
	log *logger.Logger
}

func NewContentRepo(kv store.KV, baseLog *logger.Logger) ContentRepo {
	return &contentRepo{kv: kv, log: baseLog.With("repo", "contents")}
}

func (r *contentRepo) Create(ctx context.Context, content *types.Content) error {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}
	return r.kv.Put(ctx, store.KindContent, content.ID.String(), data)
}

func (r *contentRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Content, error) {
	data, err := r.kv.Get(ctx, store.KindContent, id.String())
	if goerrors.Is(err, store.ErrNotFound) {
		return nil, errors.ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	var content types.Content
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("unmarshal content %s: %w", id, err)
	}
	return &content, nil
}

func (r *contentRepo) Update(ctx context.Context, content *types.Content) error {
	return r.Create(ctx, content)
}

func (r *contentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.kv.Delete(ctx, store.KindContent, id.String())
}

func (r *contentRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*types.Content, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*types.Content, 0, len(all))
	for _, c := range all {
		if c.DocumentID == documentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *contentRepo) List(ctx context.Context) ([]*types.Content, error) {
	raw, err := r.kv.List(ctx, store.KindContent)
	if err != nil {
		return nil, err
	}
	out := make([]*types.Content, 0, len(raw))
	for _, data := range raw {
		var c types.Content
		if err := json.Unmarshal(data, &c); err != nil {
			r.log.Warn("Skipping undecodable content record", "error", err)
			continue
		}
		out = append(out, &c)
	}
	return out, nil
}
