package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formflow/internal/submission"
	"formflow/pkg/domain"
	"formflow/pkg/platform/sentinel"
)

func TestInMemoryFindAndSave(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	appID := domain.ApplicationID(uuid.New())
	qID := domain.QuestionID(uuid.New())

	_, err := s.Find(ctx, appID, qID)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(ctx, &submission.Answer{ApplicationID: appID, QuestionID: qID, Payload: `{"a":"1"}`, UpdatedAt: now}))
	require.NoError(t, s.Save(ctx, &submission.Answer{ApplicationID: appID, QuestionID: qID, Payload: `{"a":"2"}`, UpdatedAt: now.Add(time.Minute)}))

	got, err := s.Find(ctx, appID, qID)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"2"}`, got.Payload)
	assert.Equal(t, now.Add(time.Minute), got.UpdatedAt)

	_, err = s.Find(ctx, domain.ApplicationID(uuid.New()), qID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryAnsweredQuestions(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	appID := domain.ApplicationID(uuid.New())
	answered := domain.QuestionID(uuid.New())
	emptyObject := domain.QuestionID(uuid.New())
	null := domain.QuestionID(uuid.New())
	missing := domain.QuestionID(uuid.New())

	for id, payload := range map[domain.QuestionID]string{
		answered:    `{"name":"Ada"}`,
		emptyObject: `{}`,
		null:        `null`,
	} {
		require.NoError(t, s.Save(ctx, &submission.Answer{ApplicationID: appID, QuestionID: id, Payload: payload}))
	}

	got, err := s.AnsweredQuestions(ctx, appID, []domain.QuestionID{answered, emptyObject, null, missing})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.True(t, got.Has(answered))
}
