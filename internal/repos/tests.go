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

type TestRepo interface {
	Create(ctx context.Context, test *types.Test) error
	GetByID(ctx context.Context, id uuid.UUID) (*types.Test, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByContent(ctx context.Context, contentID uuid.UUID) ([]*types.Test, error)
}

type testRepo struct {
	kv  store.KV
	log *logger.Logger
}

func NewTestRepo(kv store.KV, baseLog *logger.Logger) TestRepo {
	return &testRepo{kv: kv, log: baseLog.With("repo", "tests")}
}

func (r *testRepo) Create(ctx context.Context, test *types.Test) error {
	data, err := json.Marshal(test)
	if err != nil {
		return fmt.Errorf("marshal test: %w", err)
	}
	return r.kv.Put(ctx, store.KindTest, test.ID.String(), data)
}

func (r *testRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Test, error) {
	data, err := r.kv.Get(ctx, store.KindTest, id.String())
	if goerrors.Is(err, store.ErrNotFound) {
		return nil, errors.ErrTestNotFound
	}
	if err != nil {
		return nil, err
	}
	var test types.Test
	if err := json.Unmarshal(data, &test); err != nil {
		return nil, fmt.Errorf("unmarshal test %s: %w", id, err)
	}
	return &test, nil
}

func (r *testRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.kv.Delete(ctx, store.KindTest, id.String())
}

func (r *testRepo) ListByContent(ctx context.Context, contentID uuid.UUID) ([]*types.Test, error) {
	raw, err := r.kv.List(ctx, store.KindTest)
	if err != nil {
		return nil, err
	}
	out := make([]*types.Test, 0, len(raw))
	for _, data := range raw {
		var t types.Test
		if err := json.Unmarshal(data, &t); err != nil {
			r.log.Warn("Skipping undecodable test record", "error", err)
			continue
		}
		if t.ContentID == contentID {
			out = append(out, &t)
		}
	}
	return out, nil
}
