package types

import (
	"time"

	"github.com/google/uuid"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionShortAnswer    QuestionType = "short_answer"
	QuestionEssay          QuestionType = "essay"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s), true
	default:
		return "", false
	}
}

// Question is a tagged variant. Exactly the fields for its Type are set:
// Options/CorrectIndex for multiple choice, ReferenceAnswer/Keywords for short
// answer, RubricTopic for essay.
type Question struct {
	ID         uuid.UUID    `json:"id"`
	Type       QuestionType `json:"type"`
	Topic      string       `json:"topic"`
	Difficulty Difficulty   `json:"difficulty"`
	Prompt     string       `json:"prompt"`
	MaxPoints  float64      `json:"max_points"`

	Options      []string `json:"options,omitempty"`
	CorrectIndex int      `json:"correct_index,omitempty"`

	ReferenceAnswer string   `json:"reference_answer,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`

	RubricTopic string   `json:"rubric_topic,omitempty"`
	Guidelines  []string `json:"guidelines,omitempty"`
}

// Test owns its questions; TotalPoints is the sum of question max points.
type Test struct {
	ID               uuid.UUID  `json:"id"`
	ContentID        uuid.UUID  `json:"content_id"`
	Title            string     `json:"title"`
	Difficulty       Difficulty `json:"difficulty"`
	Questions        []Question `json:"questions"`
	TotalPoints      float64    `json:"total_points"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	CreatedAt        time.Time  `json:"created_at"`
}
