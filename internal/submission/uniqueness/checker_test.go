package uniqueness

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formflow/pkg/domain"
	"formflow/pkg/testutil"
)

func TestCheckerIgnoresOwnValues(t *testing.T) {
	ctx := context.Background()
	index := NewInMemory()
	q := domain.QuestionID(uuid.New())
	owner := domain.ApplicationID(uuid.New())
	other := domain.ApplicationID(uuid.New())

	testutil.Given(t, "an application that claimed an email", func(t *testing.T) {
		require.NoError(t, index.Claim(ctx, owner, q, "email", "ada@example.com"))
	})
	testutil.When(t, "the same application resubmits the value", func(t *testing.T) {
		exists, err := ForApplication(index, owner).Exists(ctx, q, "email", " ADA@example.com ")
		require.NoError(t, err)
		testutil.Then(t, "it is not a duplicate", func(t *testing.T) {
			assert.False(t, exists)
		})
	})
	testutil.When(t, "another application submits the value", func(t *testing.T) {
		exists, err := ForApplication(index, other).Exists(ctx, q, "email", "ada@example.com")
		require.NoError(t, err)
		testutil.Then(t, "it is a duplicate", func(t *testing.T) {
			assert.True(t, exists)
		})
	})
	testutil.And(t, "values on other questions are independent", func(t *testing.T) {
		exists, err := ForApplication(index, other).Exists(ctx, domain.QuestionID(uuid.New()), "email", "ada@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
