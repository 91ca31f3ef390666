package repos

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/edumentor-backend/internal/pkg/errors"
	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/store"
	"github.com/yungbote/edumentor-backend/internal/types"
)

type StudentRepo interface {
	Create(ctx context.Context, student *types.Student) error
	GetByID(ctx context.Context, id uuid.UUID) (*types.Student, error)
	GetByEmail(ctx context.Context, email string) (*types.Student, error)
	List(ctx context.Context) ([]*types.Student, error)
}

type studentRepo struct {
	kv  store.KV
	log *logger.Logger
}

func NewStudentRepo(kv store.KV, baseLog *logger.Logger) StudentRepo {
	return &studentRepo{kv: kv, log: baseLog.With("repo", "students")}
}

func (r *studentRepo) Create(ctx context.Context, student *types.Student) error {
	data, err := json.Marshal(student)
	if err != nil {
		return fmt.Errorf("marshal student: %w", err)
	}
	return r.kv.Put(ctx, store.KindStudent, student.ID.String(), data)
}

func (r *studentRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Student, error) {
	data, err := r.kv.Get(ctx, store.KindStudent, id.String())
	if goerrors.Is(err, store.ErrNotFound) {
		return nil, errors.ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	var s types.Student
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal student %s: %w", id, err)
	}
	return &s, nil
}

// GetByEmail matches case-insensitively. Returns ErrStudentNotFound when no
// student carries the address.
func (r *studentRepo) GetByEmail(ctx context.Context, email string) (*types.Student, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, s := range all {
		if strings.ToLower(s.Email) == needle {
			return s, nil
		}
	}
	return nil, errors.ErrStudentNotFound
}

func (r *studentRepo) List(ctx context.Context) ([]*types.Student, error) {
	raw, err := r.kv.List(ctx, store.KindStudent)
	if err != nil {
		return nil, err
	}
	out := make([]*types.Student, 0, len(raw))
	for _, data := range raw {
		var s types.Student
		if err := json.Unmarshal(data, &s); err != nil {
			r.log.Warn("Skipping undecodable student record", "error", err)
			continue
		}
		out = append(out, &s)
	}
	return out, nil
}
