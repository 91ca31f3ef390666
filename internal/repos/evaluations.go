package repos

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/store"
	"github.com/yungbote/edumentor-backend/internal/types"
)

type EvaluationRepo interface {
	Create(ctx context.Context, ev *types.Evaluation) error
	GetByID(ctx context.Context, id uuid.UUID) (*types.Evaluation, error)
	GetBySubmission(ctx context.Context, submissionID uuid.UUID) (*types.Evaluation, error)
	// ListByStudent returns evaluations ordered by EvaluatedAt ascending.
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Evaluation, error)
}

type evaluationRepo struct {
	kv  store.KV
	log *logger.Logger
}

func NewEvaluationRepo(kv store.KV, baseLog *logger.Logger) EvaluationRepo {
	return &evaluationRepo{kv: kv, log: baseLog.With("repo", "evaluations")}
}

func (r *evaluationRepo) Create(ctx context.Context, ev *types.Evaluation) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal evaluation: %w", err)
	}
	return r.kv.Put(ctx, store.KindEvaluation, ev.ID.String(), data)
}

func (r *evaluationRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Evaluation, error) {
	data, err := r.kv.Get(ctx, store.KindEvaluation, id.String())
	if goerrors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("evaluation %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var ev types.Evaluation
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal evaluation %s: %w", id, err)
	}
	return &ev, nil
}

func (r *evaluationRepo) GetBySubmission(ctx context.Context, submissionID uuid.UUID) (*types.Evaluation, error) {
	all, err := r.list(ctx)
	if err != nil {
		return nil, err
	}
	for _, ev := range all {
		if ev.SubmissionID == submissionID {
			return ev, nil
		}
	}
	return nil, fmt.Errorf("evaluation for submission %s: %w", submissionID, store.ErrNotFound)
}

func (r *evaluationRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Evaluation, error) {
	all, err := r.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*types.Evaluation, 0, len(all))
	for _, ev := range all {
		if ev.StudentID == studentID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EvaluatedAt.Before(out[j].EvaluatedAt)
	})
	return out, nil
}

func (r *evaluationRepo) list(ctx context.Context) ([]*types.Evaluation, error) {
	raw, err := r.kv.List(ctx, store.KindEvaluation)
	if err != nil {
		return nil, err
	}
	out := make([]*types.Evaluation, 0, len(raw))
	for _, data := range raw {
		var ev types.Evaluation
		if err := json.Unmarshal(data, &ev); err != nil {
			r.log.Warn("Skipping undecodable evaluation record", "error", err)
			continue
		}
		out = append(out, &ev)
	}
	return out, nil
}
