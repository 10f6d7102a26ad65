package submission

import (
	"time"

	"formflow/internal/form/review"
	"formflow/internal/form/validation"
	"formflow/pkg/domain"
)

// Answer is the latest accepted payload for one question of an application.
// Payload is kept verbatim as submitted.
type Answer struct {
	ApplicationID domain.ApplicationID `json:"application_id"`
	QuestionID    domain.QuestionID    `json:"question_id"`
	Payload       string               `json:"payload"`
	UpdatedAt     time.Time            `json:"updated_at"`
	UpdatedBy     string               `json:"updated_by,omitempty"`
}

// SubmitResult is the outcome of a submission that could be validated.
// Errors is empty when the answer was accepted and stored.
type SubmitResult struct {
	Errors []validation.ErrorItem
}

// Valid reports whether the answer was accepted.
func (r *SubmitResult) Valid() bool {
	return r != nil && len(r.Errors) == 0
}

// QuestionReview is the review of one question of a task.
type QuestionReview struct {
	QuestionID domain.QuestionID `json:"questionId"`
	Slug       string            `json:"slug"`
	Heading    string            `json:"heading,omitempty"`
	Sections   []review.Section  `json:"sections"`
}

// TaskReview is the check-your-answers view of a task.
type TaskReview struct {
	TaskID    domain.TaskID    `json:"taskId"`
	TaskName  string           `json:"taskName"`
	Questions []QuestionReview `json:"questions"`
}
