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

func countByType(test *types.Test) map[types.QuestionType]int {
	counts := make(map[types.QuestionType]int)
	for _, q := range test.Questions {
		counts[q.Type]++
	}
	return counts
}

func TestGenerateTestDifficultyMix(t *testing.T) {
	env := newTestEnv(t)
	content := buildContent(t, env)
	ctx := context.Background()

	cases := []struct {
		difficulty types.Difficulty
		mcq, sa, e int
	}{
		{types.DifficultyEasy, 6, 3, 1},
		{types.DifficultyMedium, 4, 4, 2},
		{types.DifficultyHard, 2, 4, 4},
	}
	for _, c := range cases {
		test, err := env.tests.Generate(ctx, content.ID, c.difficulty, 10)
		if err != nil {
			t.Fatalf("generate %s: %v", c.difficulty, err)
		}
		counts := countByType(test)
		if counts[types.QuestionMultipleChoice] != c.mcq ||
			counts[types.QuestionShortAnswer] != c.sa ||
			counts[types.QuestionEssay] != c.e {
			t.Fatalf("%s mix: want=%d/%d/%d got=%d/%d/%d", c.difficulty, c.mcq, c.sa, c.e,
				counts[types.QuestionMultipleChoice], counts[types.QuestionShortAnswer], counts[types.QuestionEssay])
		}
	}
}

func TestGenerateTestShape(t *testing.T) {
	env := newTestEnv(t)
	content := buildContent(t, env)

	test, err := env.tests.Generate(context.Background(), content.ID, types.DifficultyMedium, 10)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(test.Questions) != 10 {
		t.Fatalf("question count: want=10 got=%d", len(test.Questions))
	}

	var sum float64
	for i, q := range test.Questions {
		sum += q.MaxPoints
		if q.Topic == "" || q.Prompt == "" || q.MaxPoints <= 0 {
			t.Fatalf("question %d incomplete: %+v", i, q)
		}
		switch q.Type {
		case types.QuestionMultipleChoice:
			if len(q.Options) != 4 {
				t.Fatalf("question %d options: want=4 got=%d", i, len(q.Options))
			}
			if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
				t.Fatalf("question %d correct index out of range: %d", i, q.CorrectIndex)
			}
		case types.QuestionShortAnswer:
			if q.ReferenceAnswer == "" {
				t.Fatalf("question %d has no reference answer", i)
			}
			if len(q.Keywords) == 0 {
				t.Fatalf("question %d has no keywords", i)
			}
		case types.QuestionEssay:
			if q.RubricTopic == "" || len(q.Guidelines) == 0 {
				t.Fatalf("question %d rubric incomplete", i)
			}
		}
	}
	if test.TotalPoints != sum {
		t.Fatalf("total points: want=%v got=%v", sum, test.TotalPoints)
	}
	if test.TimeLimitMinutes < 10 {
		t.Fatalf("time limit below floor: %d", test.TimeLimitMinutes)
	}
}

func TestGenerateTestGroundsDistinctSectionsFirst(t *testing.T) {
	env := newTestEnv(t)
	content := buildContent(t, env)

	n := len(content.Outline.Sections)
	test, err := env.tests.Generate(context.Background(), content.ID, types.DifficultyMedium, n)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	seen := make(map[string]bool)
	for _, q := range test.Questions {
		if seen[q.Topic] {
			t.Fatalf("topic %q reused before all sections were grounded", q.Topic)
		}
		seen[q.Topic] = true
	}
}

func TestGenerateTestInsufficientContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Content with an empty outline has nothing to ground questions in.
	bare := &types.Content{
		ID:         uuid.New(),
		DocumentID: uuid.New(),
		Title:      "Bare",
		CreatedAt:  time.Now().UTC(),
	}
	if err := env.contentRepo.Create(ctx, bare); err != nil {
		t.Fatalf("create content: %v", err)
	}
	if _, err := env.tests.Generate(ctx, bare.ID, types.DifficultyEasy, 5); !goerrors.Is(err, errors.ErrInsufficientContent) {
		t.Fatalf("bare content: want=ErrInsufficientContent got=%v", err)
	}
}

func TestGenerateTestUnknownContent(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.tests.Generate(context.Background(), uuid.New(), types.DifficultyEasy, 5); !goerrors.Is(err, errors.ErrContentNotFound) {
		t.Fatalf("unknown content: want=ErrContentNotFound got=%v", err)
	}
}

func TestDeleteTest(t *testing.T) {
	env := newTestEnv(t)
	content := buildContent(t, env)
	ctx := context.Background()

	test, err := env.tests.Generate(ctx, content.ID, types.DifficultyEasy, 5)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := env.tests.Delete(ctx, test.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.tests.Get(ctx, test.ID); !goerrors.Is(err, errors.ErrTestNotFound) {
		t.Fatalf("test after delete: want=ErrTestNotFound got=%v", err)
	}
	if err := env.tests.Delete(ctx, test.ID); !goerrors.Is(err, errors.ErrTestNotFound) {
		t.Fatalf("double delete: want=ErrTestNotFound got=%v", err)
	}
}

func TestQuestionCountsDegenerateMixRow(t *testing.T) {
	mix := map[string]map[string]float64{
		"easy": {"multiple_choice": 0, "short_answer": 0, "essay": 0},
	}
	done := make(chan map[types.QuestionType]int, 1)
	go func() { done <- questionCounts(mix, types.DifficultyEasy, 10) }()
	select {
	case counts := <-done:
		total := 0
		for _, c := range counts {
			total += c
		}
		if total != 10 {
			t.Fatalf("zero-weight row: counts sum to %d", total)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("questionCounts did not return for a zero-weight mix row")
	}
}

func TestQuestionCountsAlwaysSum(t *testing.T) {
	env := newTestEnv(t)
	for _, d := range []types.Difficulty{types.DifficultyEasy, types.DifficultyMedium, types.DifficultyHard} {
		for n := 1; n <= 17; n++ {
			counts := questionCounts(env.cfg.Synthesis.TypeMix, d, n)
			total := 0
			for _, c := range counts {
				total += c
			}
			if total != n {
				t.Fatalf("%s n=%d: counts sum to %d", d, n, total)
			}
		}
	}
}
