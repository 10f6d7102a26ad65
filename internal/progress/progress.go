// Package progress derives task and stage completion from answered questions.
//
// Status is never stored as a transition: every answer submission or explicit
// status update recomputes the status from the scope's question set and
// persists it only when it differs from the stored one.
package progress

import (
	"time"

	"formflow/pkg/domain"
)

// Status is the completion state of a task or stage.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Scope names what a Record tracks.
type Scope string

const (
	ScopeTask  Scope = "task"
	ScopeStage Scope = "stage"
)

// QuestionSet is a set of question IDs.
type QuestionSet map[domain.QuestionID]struct{}

// NewQuestionSet builds a set from ids.
func NewQuestionSet(ids ...domain.QuestionID) QuestionSet {
	s := make(QuestionSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s QuestionSet) Has(id domain.QuestionID) bool {
	_, ok := s[id]
	return ok
}

// DeriveStatus applies the counting rule: Completed when total is non-empty
// and fully answered, NotStarted when nothing in total is answered (including
// an empty total), InProgress otherwise.
func DeriveStatus(total, answered QuestionSet) Status {
	matched := 0
	for id := range total {
		if answered.Has(id) {
			matched++
		}
	}
	switch {
	case matched == 0:
		return StatusNotStarted
	case matched == len(total):
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// Record is the stored status of one task or stage of an application.
type Record struct {
	ApplicationID domain.ApplicationID `json:"application_id"`
	Scope         Scope                `json:"scope"`
	ScopeID       string               `json:"scope_id"`
	Status        Status               `json:"status"`
	StartedAt     time.Time            `json:"started_at"`
	CompletedAt   *time.Time           `json:"completed_at,omitempty"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// Transition computes the record to persist when next is derived at now.
// It returns false when the stored record already holds next, in which case
// nothing should be written. StartedAt is captured on first creation and
// CompletedAt only when moving into Completed; leaving Completed clears it.
func Transition(prev *Record, key Record, next Status, now time.Time) (Record, bool) {
	if prev != nil && prev.Status == next {
		return *prev, false
	}
	rec := key
	rec.Status = next
	rec.UpdatedAt = now
	rec.CompletedAt = nil
	if prev == nil {
		rec.StartedAt = now
	} else {
		rec.StartedAt = prev.StartedAt
	}
	if next == StatusCompleted {
		completed := now
		rec.CompletedAt = &completed
	}
	return rec, true
}
