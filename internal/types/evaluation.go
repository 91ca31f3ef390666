package types

import (
	"time"

	"github.com/google/uuid"
)

type EvaluationState string

const (
	EvaluationReceived  EvaluationState = "received"
	EvaluationScored    EvaluationState = "scored"
	EvaluationFinalized EvaluationState = "finalized"
)

type QuestionResult struct {
	QuestionID uuid.UUID    `json:"question_id"`
	Type       QuestionType `json:"type"`
	Topic      string       `json:"topic"`
	Points     float64      `json:"points"`
	MaxPoints  float64      `json:"max_points"`
	Correct    bool         `json:"correct"`
	Similarity float64      `json:"similarity,omitempty"`
	Feedback   string       `json:"feedback"`
}

// Evaluation is immutable once finalized; a second evaluation of the same
// submission is an error, never an overwrite.
type Evaluation struct {
	ID           uuid.UUID        `json:"id"`
	SubmissionID uuid.UUID        `json:"submission_id"`
	StudentID    uuid.UUID        `json:"student_id"`
	TestID       uuid.UUID        `json:"test_id"`
	ContentID    uuid.UUID        `json:"content_id"`
	State        EvaluationState  `json:"state"`
	Results      []QuestionResult `json:"results"`
	Score        float64          `json:"score"`
	MaxScore     float64          `json:"max_score"`
	Percentage   float64          `json:"percentage"`
	Feedback     string           `json:"feedback"`
	EvaluatedAt  time.Time        `json:"evaluated_at"`
}
