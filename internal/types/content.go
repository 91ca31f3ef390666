package types

import (
	"time"

	"github.com/google/uuid"
)

// Content is a generated study guide. It references its source document
// without owning it: deleting the document leaves the content retrievable.
type Content struct {
	ID         uuid.UUID   `json:"id"`
	DocumentID uuid.UUID   `json:"document_id"`
	Title      string      `json:"title"`
	Topics     []string    `json:"topics"`
	Outline    Outline     `json:"outline"`
	LessonPlan *LessonPlan `json:"lesson_plan,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

type Outline struct {
	Introduction Introduction `json:"introduction"`
	Sections     []Section    `json:"sections"`
	Conclusion   Conclusion   `json:"conclusion"`
}

type Introduction struct {
	Overview   string   `json:"overview"`
	Objectives []string `json:"objectives"`
}

type Section struct {
	Number         int      `json:"number"`
	Title          string   `json:"title"`
	KeyPoints      []string `json:"key_points"`
	Summary        string   `json:"summary"`
	StudyQuestions []string `json:"study_questions"`

	// ChunkIndexes records which chunks grounded this section.
	ChunkIndexes []int `json:"chunk_indexes,omitempty"`
}

type Conclusion struct {
	Summary   string   `json:"summary"`
	NextSteps []string `json:"next_steps"`
}

type LessonPlan struct {
	ID           uuid.UUID `json:"id"`
	ContentID    uuid.UUID `json:"content_id"`
	Title        string    `json:"title"`
	DurationDays int       `json:"duration_days"`
	Days         []PlanDay `json:"days"`
	CreatedAt    time.Time `json:"created_at"`
}

type PlanDay struct {
	Day           int      `json:"day"`
	Topics        []string `json:"topics"`
	Activities    []string `json:"activities"`
	EstimatedTime string   `json:"estimated_time"`
	Assessment    bool     `json:"assessment,omitempty"`
}
