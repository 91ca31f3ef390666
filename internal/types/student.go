package types

import (
	"time"

	"github.com/google/uuid"
)

type Student struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Answer is either a selected option index (multiple choice) or free text.
type Answer struct {
	QuestionID    uuid.UUID `json:"question_id"`
	SelectedIndex *int      `json:"selected_index,omitempty"`
	Text          string    `json:"text,omitempty"`
}

// Submission is one test attempt. Answers are keyed by question id; missing
// answers score zero, extraneous ids are ignored.
type Submission struct {
	ID          uuid.UUID `json:"id"`
	StudentID   uuid.UUID `json:"student_id"`
	TestID      uuid.UUID `json:"test_id"`
	Answers     []Answer  `json:"answers"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (s Submission) AnswerFor(questionID uuid.UUID) (Answer, bool) {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return a, true
		}
	}
	return Answer{}, false
}
