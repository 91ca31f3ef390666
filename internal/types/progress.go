package types

import (
	"time"

	"github.com/google/uuid"
)

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
	TrendNoTests   Trend = "no_tests"
)

type TestStats struct {
	TotalTests   int     `json:"total_tests"`
	AverageScore float64 `json:"average_score"`
	HighestScore float64 `json:"highest_score"`
	LowestScore  float64 `json:"lowest_score"`
	Trend        Trend   `json:"trend"`
}

type TopicScore struct {
	Topic   string  `json:"topic"`
	Average float64 `json:"average"`
	Samples int     `json:"samples"`
}

// ProgressRecord is recomputed on demand from the full evaluation history;
// it is never mutated independently.
type ProgressRecord struct {
	StudentID       uuid.UUID     `json:"student_id"`
	CompletionRate  float64       `json:"completion_rate"`
	EngagedContent  int           `json:"engaged_content"`
	TotalContent    int           `json:"total_content"`
	Tests           TestStats     `json:"tests"`
	Strengths       []TopicScore  `json:"strengths"`
	Weaknesses      []TopicScore  `json:"weaknesses"`
	Recommendations []string      `json:"recommendations"`
	LearningPath    *LearningPath `json:"learning_path,omitempty"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

type LearningPath struct {
	StudentID  uuid.UUID   `json:"student_id"`
	Milestones []Milestone `json:"milestones"`
}

// Milestone tracks mastery of one weak topic; weakest topics come first.
type Milestone struct {
	Number    int     `json:"number"`
	Topic     string  `json:"topic"`
	Target    float64 `json:"target"`
	Completed bool    `json:"completed"`
}
