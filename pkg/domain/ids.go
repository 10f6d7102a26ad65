package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "formflow/pkg/domain-errors"
)

// Typed identifiers keep applications, questions, tasks and stages from being
// passed where another kind of ID is expected. All are UUIDs underneath.
type (
	ApplicationID uuid.UUID
	QuestionID    uuid.UUID
	TaskID        uuid.UUID
	StageID       uuid.UUID
)

// maxIDLength bounds input before it reaches the UUID parser.
const maxIDLength = 64

func parseID[T ~[16]byte](s, kind string) (T, error) {
	var zero T
	if s == "" {
		return zero, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > maxIDLength || strings.ContainsAny(s, "\x00") {
		return zero, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return zero, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return zero, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return T(u), nil
}

// ParseApplicationID parses an application ID at a trust boundary.
func ParseApplicationID(s string) (ApplicationID, error) {
	return parseID[ApplicationID](s, "application id")
}

// ParseQuestionID parses a question ID at a trust boundary.
func ParseQuestionID(s string) (QuestionID, error) {
	return parseID[QuestionID](s, "question id")
}

// ParseTaskID parses a task ID at a trust boundary.
func ParseTaskID(s string) (TaskID, error) {
	return parseID[TaskID](s, "task id")
}

// ParseStageID parses a stage ID at a trust boundary.
func ParseStageID(s string) (StageID, error) {
	return parseID[StageID](s, "stage id")
}

func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id QuestionID) String() string    { return uuid.UUID(id).String() }
func (id TaskID) String() string        { return uuid.UUID(id).String() }
func (id StageID) String() string       { return uuid.UUID(id).String() }

func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id QuestionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id TaskID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id StageID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }

// Text marshaling lets the IDs travel through JSON, YAML and SQL scans as
// canonical UUID strings.

func (id ApplicationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id QuestionID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id TaskID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id StageID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }

func (id *ApplicationID) UnmarshalText(b []byte) error { return unmarshalID(b, (*[16]byte)(id)) }
func (id *QuestionID) UnmarshalText(b []byte) error    { return unmarshalID(b, (*[16]byte)(id)) }
func (id *TaskID) UnmarshalText(b []byte) error        { return unmarshalID(b, (*[16]byte)(id)) }
func (id *StageID) UnmarshalText(b []byte) error       { return unmarshalID(b, (*[16]byte)(id)) }

func unmarshalID(b []byte, dst *[16]byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid id")
	}
	*dst = u
	return nil
}
