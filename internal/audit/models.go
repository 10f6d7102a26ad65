package audit

import (
	"time"

	"formflow/pkg/domain"
)

// Action names what happened.
type Action string

const (
	ActionAnswerSubmitted    Action = "answer_submitted"
	ActionAnswerRejected     Action = "answer_rejected"
	ActionTaskStatusChanged  Action = "task_status_changed"
	ActionStageStatusChanged Action = "stage_status_changed"
)

// Event is emitted from services to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Action        Action               `json:"action"`
	ApplicationID domain.ApplicationID `json:"application_id"`
	// Subject is the question, task or stage the action concerns.
	Subject   string    `json:"subject"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
