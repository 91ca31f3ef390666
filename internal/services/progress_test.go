package services

import (
	"context"
	goerrors "errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/edumentor-backend/internal/pkg/errors"
	"github.com/yungbote/edumentor-backend/internal/types"
)

// seedEvaluations stores one finalized evaluation per percentage, spaced a
// minute apart so history order is unambiguous.
func seedEvaluations(t *testing.T, env *testEnv, studentID uuid.UUID, percentages []float64) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i, p := range percentages {
		ev := &types.Evaluation{
			ID:           uuid.New(),
			SubmissionID: uuid.New(),
			StudentID:    studentID,
			TestID:       uuid.New(),
			ContentID:    uuid.New(),
			State:        types.EvaluationFinalized,
			Score:        p,
			MaxScore:     100,
			Percentage:   p,
			EvaluatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := env.evaluationRepo.Create(ctx, ev); err != nil {
			t.Fatalf("seed evaluation %d: %v", i, err)
		}
	}
}

func seedTopicEvaluation(t *testing.T, env *testEnv, studentID uuid.UUID, ratios map[string]float64) {
	t.Helper()
	ev := &types.Evaluation{
		ID:           uuid.New(),
		SubmissionID: uuid.New(),
		StudentID:    studentID,
		TestID:       uuid.New(),
		ContentID:    uuid.New(),
		State:        types.EvaluationFinalized,
		MaxScore:     float64(len(ratios) * 10),
		EvaluatedAt:  time.Now().UTC(),
	}
	for topic, ratio := range ratios {
		ev.Results = append(ev.Results, types.QuestionResult{
			QuestionID: uuid.New(),
			Type:       types.QuestionShortAnswer,
			Topic:      topic,
			Points:     ratio * 10,
			MaxPoints:  10,
		})
		ev.Score += ratio * 10
	}
	ev.Percentage = ev.Score / ev.MaxScore * 100
	if err := env.evaluationRepo.Create(context.Background(), ev); err != nil {
		t.Fatalf("seed topic evaluation: %v", err)
	}
}

func TestProgressTrends(t *testing.T) {
	cases := []struct {
		name        string
		percentages []float64
		want        types.Trend
	}{
		{"improving", []float64{50, 55, 52, 80, 85, 90}, types.TrendImproving},
		{"declining", []float64{90, 85, 80, 52, 55, 50}, types.TrendDeclining},
		{"stable", []float64{70, 70, 70, 70, 70, 70}, types.TrendStable},
		{"within delta", []float64{70, 72, 71, 73, 72, 74}, types.TrendStable},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := newTestEnv(t)
			studentID := mustRegister(t, env, "Ada Lovelace", "ada@example.com")
			seedEvaluations(t, env, studentID, c.percentages)

			record, err := env.progress.Progress(context.Background(), studentID)
			if err != nil {
				t.Fatalf("progress: %v", err)
			}
			if record.Tests.Trend != c.want {
				t.Fatalf("trend: want=%s got=%s", c.want, record.Tests.Trend)
			}
		})
	}
}

func TestProgressTestStats(t *testing.T) {
	env := newTestEnv(t)
	studentID := mustRegister(t, env, "Ada Lovelace", "ada@example.com")
	seedEvaluations(t, env, studentID, []float64{60, 90, 75})

	record, err := env.progress.Progress(context.Background(), studentID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	stats := record.Tests
	if stats.TotalTests != 3 {
		t.Fatalf("total tests: want=3 got=%d", stats.TotalTests)
	}
	if stats.AverageScore != 75 {
		t.Fatalf("average: want=75 got=%v", stats.AverageScore)
	}
	if stats.HighestScore != 90 || stats.LowestScore != 60 {
		t.Fatalf("extremes: want=90/60 got=%v/%v", stats.HighestScore, stats.LowestScore)
	}
}

func TestProgressNoTests(t *testing.T) {
	env := newTestEnv(t)
	studentID := mustRegister(t, env, "Ada Lovelace", "ada@example.com")

	record, err := env.progress.Progress(context.Background(), studentID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if record.Tests.Trend != types.TrendNoTests {
		t.Fatalf("trend: want=no_tests got=%s", record.Tests.Trend)
	}
	if record.Tests.TotalTests != 0 {
		t.Fatalf("total tests: want=0 got=%d", record.Tests.TotalTests)
	}
	if record.LearningPath != nil {
		t.Fatalf("learning path without history: got=%+v", record.LearningPath)
	}
}

func TestProgressUnknownStudent(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.progress.Progress(context.Background(), uuid.New()); !goerrors.Is(err, errors.ErrStudentNotFound) {
		t.Fatalf("unknown student: want=ErrStudentNotFound got=%v", err)
	}
}

func TestProgressStrengthsAndWeaknessesByQuantile(t *testing.T) {
	env := newTestEnv(t)
	studentID := mustRegister(t, env, "Ada Lovelace", "ada@example.com")
	seedTopicEvaluation(t, env, studentID, map[string]float64{
		"Photosynthesis": 1.0,
		"Respiration":    0.9,
		"Enzymes":        0.5,
		"Glucose":        0.2,
	})

	record, err := env.progress.Progress(context.Background(), studentID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(record.Strengths) != 1 || record.Strengths[0].Topic != "Photosynthesis" {
		t.Fatalf("strengths: want=[Photosynthesis] got=%+v", record.Strengths)
	}
	if len(record.Weaknesses) != 1 || record.Weaknesses[0].Topic != "Glucose" {
		t.Fatalf("weaknesses: want=[Glucose] got=%+v", record.Weaknesses)
	}

	if record.LearningPath == nil || len(record.LearningPath.Milestones) != 1 {
		t.Fatalf("learning path: got=%+v", record.LearningPath)
	}
	m := record.LearningPath.Milestones[0]
	if m.Topic != "Glucose" || m.Completed {
		t.Fatalf("milestone: got=%+v", m)
	}
	if m.Target != env.cfg.Progress.MasteryThreshold {
		t.Fatalf("milestone target: want=%v got=%v", env.cfg.Progress.MasteryThreshold, m.Target)
	}
}

func TestProgressFlatProfileHasNoExtremes(t *testing.T) {
	env := newTestEnv(t)
	studentID := mustRegister(t, env, "Ada Lovelace", "ada@example.com")
	seedTopicEvaluation(t, env, studentID, map[string]float64{
		"Photosynthesis": 0.7,
		"Respiration":    0.7,
		"Enzymes":        0.7,
		"Glucose":        0.7,
	})

	record, err := env.progress.Progress(context.Background(), studentID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(record.Strengths) != 0 {
		t.Fatalf("flat profile strengths: want none got=%+v", record.Strengths)
	}
	if len(record.Weaknesses) != 0 {
		t.Fatalf("flat profile weaknesses: want none got=%+v", record.Weaknesses)
	}
}

func TestProgressMilestonesWeakestFirst(t *testing.T) {
	env := newTestEnv(t)
	studentID := mustRegister(t, env, "Ada Lovelace", "ada@example.com")
	// Half the topics land in the bottom quantile.
	seedTopicEvaluation(t, env, studentID, map[string]float64{
		"Photosynthesis": 1.0,
		"Respiration":    0.9,
		"Membranes":      0.8,
		"Mitochondria":   0.7,
		"Thylakoids":     0.6,
		"Enzymes":        0.3,
		"Chlorophyll":    0.25,
		"Glucose":        0.1,
	})

	record, err := env.progress.Progress(context.Background(), studentID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(record.Weaknesses) != 2 {
		t.Fatalf("weakness count: want=2 got=%d", len(record.Weaknesses))
	}
	if record.Weaknesses[0].Topic != "Glucose" || record.Weaknesses[1].Topic != "Chlorophyll" {
		t.Fatalf("weakest first: got=%+v", record.Weaknesses)
	}
	for i, m := range record.LearningPath.Milestones {
		if m.Number != i+1 {
			t.Fatalf("milestone %d number: want=%d got=%d", i, i+1, m.Number)
		}
	}
	if record.LearningPath.Milestones[0].Topic != "Glucose" {
		t.Fatalf("first milestone: want=Glucose got=%s", record.LearningPath.Milestones[0].Topic)
	}
}

func TestProgressCompletionRate(t *testing.T) {
	env := newTestEnv(t)
	studentID := mustRegister(t, env, "Ada Lovelace", "ada@example.com")
	ctx := context.Background()

	// Two study guides exist; the student's evaluations touch only one.
	contentA := &types.Content{ID: uuid.New(), DocumentID: uuid.New(), Title: "A", CreatedAt: time.Now().UTC()}
	contentB := &types.Content{ID: uuid.New(), DocumentID: uuid.New(), Title: "B", CreatedAt: time.Now().UTC()}
	if err := env.contentRepo.Create(ctx, contentA); err != nil {
		t.Fatalf("create content: %v", err)
	}
	if err := env.contentRepo.Create(ctx, contentB); err != nil {
		t.Fatalf("create content: %v", err)
	}
	ev := &types.Evaluation{
		ID:           uuid.New(),
		SubmissionID: uuid.New(),
		StudentID:    studentID,
		TestID:       uuid.New(),
		ContentID:    contentA.ID,
		State:        types.EvaluationFinalized,
		Score:        80,
		MaxScore:     100,
		Percentage:   80,
		EvaluatedAt:  time.Now().UTC(),
	}
	if err := env.evaluationRepo.Create(ctx, ev); err != nil {
		t.Fatalf("seed evaluation: %v", err)
	}

	record, err := env.progress.Progress(ctx, studentID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if record.TotalContent != 2 || record.EngagedContent != 1 {
		t.Fatalf("engagement: want=1/2 got=%d/%d", record.EngagedContent, record.TotalContent)
	}
	if record.CompletionRate != 0.5 {
		t.Fatalf("completion rate: want=0.5 got=%v", record.CompletionRate)
	}
}
