package repos

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/store"
	"github.com/yungbote/edumentor-backend/internal/types"
)

type SubmissionRepo interface {
	Create(ctx context.Context, sub *types.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*types.Submission, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Submission, error)
}

type submissionRepo struct {
	kv  store.KV
	log *logger.Logger
}

func NewSubmissionRepo(kv store.KV, baseLog *logger.Logger) SubmissionRepo {
	return &submissionRepo{kv: kv, log: baseLog.With("repo", "submissions")}
}

func (r *submissionRepo) Create(ctx context.Context, sub *types.Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}
	return r.kv.Put(ctx, store.KindSubmission, sub.ID.String(), data)
}

func (r *submissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Submission, error) {
	data, err := r.kv.Get(ctx, store.KindSubmission, id.String())
	if goerrors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("submission %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var sub types.Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("unmarshal submission %s: %w", id, err)
	}
	return &sub, nil
}

func (r *submissionRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Submission, error) {
	raw, err := r.kv.List(ctx, store.KindSubmission)
	if err != nil {
		return nil, err
	}
	out := make([]*types.Submission, 0, len(raw))
	for _, data := range raw {
		var s types.Submission
		if err := json.Unmarshal(data, &s); err != nil {
			r.log.Warn("Skipping undecodable submission record", "error", err)
			continue
		}
		if s.StudentID == studentID {
			out = append(out, &s)
		}
	}
	return out, nil
}
