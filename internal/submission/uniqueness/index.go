// Package uniqueness records which application owns each value of a field
// whose rule is Unique, scoped per question.
package uniqueness

import (
	"context"

	"formflow/pkg/domain"
	textutil "formflow/pkg/platform/strings"
)

// Index maps folded field values to their owning application. Claim returns
// sentinel.ErrConflict when another application already owns the value.
type Index interface {
	Owner(ctx context.Context, questionID domain.QuestionID, field, value string) (domain.ApplicationID, bool, error)
	Claim(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID, field, value string) error
	Release(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID, field, value string) error
}

// Checker answers uniqueness questions on behalf of one application, so that
// resubmitting an unchanged answer is not reported as a duplicate.
type Checker struct {
	index         Index
	applicationID domain.ApplicationID
}

func ForApplication(index Index, applicationID domain.ApplicationID) *Checker {
	return &Checker{index: index, applicationID: applicationID}
}

// Exists reports whether another application already recorded value.
func (c *Checker) Exists(ctx context.Context, questionID domain.QuestionID, field, value string) (bool, error) {
	owner, ok, err := c.index.Owner(ctx, questionID, field, value)
	if err != nil {
		return false, err
	}
	return ok && owner != c.applicationID, nil
}

// Key is the Redis hash holding one field's values.
func Key(questionID domain.QuestionID, field string) string {
	return "uniq:" + questionID.String() + ":" + textutil.Fold(field)
}
