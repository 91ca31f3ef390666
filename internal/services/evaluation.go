package services

import (
	"context"
	goerrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/edumentor-backend/internal/config"
	"github.com/yungbote/edumentor-backend/internal/embedding"
	"github.com/yungbote/edumentor-backend/internal/pkg/errors"
	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/repos"
	"github.com/yungbote/edumentor-backend/internal/store"
	"github.com/yungbote/edumentor-backend/internal/types"
)

type EvaluationService interface {
	// Submit records a test attempt. Answers for unknown question ids are
	// kept but ignored at scoring time; unanswered questions score zero.
	Submit(ctx context.Context, studentID, testID uuid.UUID, answers []types.Answer) (*types.Submission, error)

	// Evaluate grades a submission exactly once. Concurrent and repeat
	// calls for the same submission return ErrAlreadyEvaluated; the stored
	// evaluation never changes after it is finalized.
	Evaluate(ctx context.Context, submissionID uuid.UUID) (*types.Evaluation, error)

	Get(ctx context.Context, evaluationID uuid.UUID) (*types.Evaluation, error)
	GetBySubmission(ctx context.Context, submissionID uuid.UUID) (*types.Evaluation, error)
}

type evaluationService struct {
	students    repos.StudentRepo
	tests       repos.TestRepo
	submissions repos.SubmissionRepo
	evaluations repos.EvaluationRepo
	scorer      *scorer
	log         *logger.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewEvaluationService(
	students repos.StudentRepo,
	tests repos.TestRepo,
	submissions repos.SubmissionRepo,
	evaluations repos.EvaluationRepo,
	embedder embedding.Embedder,
	cfg config.Config,
	baseLog *logger.Logger,
) EvaluationService {
	return &evaluationService{
		students:    students,
		tests:       tests,
		submissions: submissions,
		evaluations: evaluations,
		scorer:      newScorer(embedder, cfg.Scoring),
		log:         baseLog.With("service", "evaluation"),
		locks:       make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *evaluationService) Submit(ctx context.Context, studentID, testID uuid.UUID, answers []types.Answer) (*types.Submission, error) {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		return nil, err
	}
	if _, err := s.tests.GetByID(ctx, testID); err != nil {
		return nil, err
	}
	sub := &types.Submission{
		ID:          uuid.New(),
		StudentID:   studentID,
		TestID:      testID,
		Answers:     answers,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, err
	}
	s.log.Info("Submission received", "submission_id", sub.ID, "test_id", testID, "answers", len(answers))
	return sub, nil
}

func (s *evaluationService) Evaluate(ctx context.Context, submissionID uuid.UUID) (*types.Evaluation, error) {
	lock := s.submissionLock(submissionID)
	lock.Lock()
	defer lock.Unlock()

	// Re-check under the lock so a concurrent loser sees the winner's work.
	if _, err := s.evaluations.GetBySubmission(ctx, submissionID); err == nil {
		return nil, fmt.Errorf("submission %s: %w", submissionID, errors.ErrAlreadyEvaluated)
	} else if !goerrors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	test, err := s.tests.GetByID(ctx, sub.TestID)
	if err != nil {
		return nil, err
	}
	student, err := s.students.GetByID(ctx, sub.StudentID)
	if err != nil {
		return nil, err
	}

	ev := &types.Evaluation{
		ID:           uuid.New(),
		SubmissionID: submissionID,
		StudentID:    sub.StudentID,
		TestID:       test.ID,
		ContentID:    test.ContentID,
		State:        types.EvaluationReceived,
	}
	for _, q := range test.Questions {
		answer, answered := sub.AnswerFor(q.ID)
		res, err := s.scorer.score(ctx, q, answer, answered)
		if err != nil {
			return nil, err
		}
		ev.Results = append(ev.Results, res)
		ev.Score += res.Points
		ev.MaxScore += res.MaxPoints
	}
	ev.State = types.EvaluationScored
	if ev.MaxScore > 0 {
		ev.Percentage = round2(ev.Score / ev.MaxScore * 100)
	}
	ev.Feedback = overallFeedback(student.Name, ev.Percentage)
	ev.State = types.EvaluationFinalized
	ev.EvaluatedAt = time.Now().UTC()

	if err := s.evaluations.Create(ctx, ev); err != nil {
		return nil, err
	}
	s.log.Info("Submission evaluated", "submission_id", submissionID,
		"evaluation_id", ev.ID, "percentage", ev.Percentage)
	return ev, nil
}

func (s *evaluationService) Get(ctx context.Context, evaluationID uuid.UUID) (*types.Evaluation, error) {
	return s.evaluations.GetByID(ctx, evaluationID)
}

func (s *evaluationService) GetBySubmission(ctx context.Context, submissionID uuid.UUID) (*types.Evaluation, error) {
	return s.evaluations.GetBySubmission(ctx, submissionID)
}

func (s *evaluationService) submissionLock(submissionID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[submissionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[submissionID] = lock
	}
	return lock
}

func overallFeedback(name string, percentage float64) string {
	switch {
	case percentage >= 90:
		return fmt.Sprintf("Excellent work, %s! You've demonstrated a strong understanding of the material with a score of %.1f%%. Keep up the great work and consider exploring more advanced topics.", name, percentage)
	case percentage >= 80:
		return fmt.Sprintf("Great job, %s! You scored %.1f%%, showing a good grasp of the material. Review the questions you missed to solidify your understanding.", name, percentage)
	case percentage >= 70:
		return fmt.Sprintf("Good effort, %s! You scored %.1f%%, which shows you understand many of the key concepts. Focus on the areas where you lost points.", name, percentage)
	case percentage >= 60:
		return fmt.Sprintf("You're on the right track, %s, with a score of %.1f%%. Spend more time studying the material, particularly the topics where you struggled.", name, percentage)
	default:
		return fmt.Sprintf("You scored %.1f%%, %s. This suggests you need to review the material more thoroughly. Consider going back to the source material and seeking help on challenging topics.", percentage, name)
	}
}
