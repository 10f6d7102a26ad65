package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"formflow/internal/progress"
	"formflow/internal/submission"
	"formflow/pkg/domain"
	"formflow/pkg/platform/sentinel"
	txcontext "formflow/pkg/platform/tx"
)

// PostgresStore persists answers in the answers table. The payload column is
// JSON rather than JSONB so the submitted text, including key order, is kept.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID) (*submission.Answer, error) {
	a := submission.Answer{ApplicationID: applicationID, QuestionID: questionID}
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT payload::text, updated_at, updated_by
		FROM answers
		WHERE application_id = $1 AND question_id = $2
	`, applicationID.String(), questionID.String()).Scan(&a.Payload, &a.UpdatedAt, &a.UpdatedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find answer: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) Save(ctx context.Context, a *submission.Answer) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO answers (application_id, question_id, payload, updated_at, updated_by)
		VALUES ($1, $2, $3::json, $4, $5)
		ON CONFLICT (application_id, question_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
	`, a.ApplicationID.String(), a.QuestionID.String(), a.Payload, a.UpdatedAt, a.UpdatedBy)
	if err != nil {
		return fmt.Errorf("save answer: %w", err)
	}
	return nil
}

// AnsweredQuestions matches answer.IsAnswered in SQL: a stored payload counts
// unless it is null or an empty object.
func (s *PostgresStore) AnsweredQuestions(ctx context.Context, applicationID domain.ApplicationID, questionIDs []domain.QuestionID) (progress.QuestionSet, error) {
	out := progress.NewQuestionSet()
	if len(questionIDs) == 0 {
		return out, nil
	}
	ids := make([]string, len(questionIDs))
	for i, id := range questionIDs {
		ids[i] = id.String()
	}
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT question_id
		FROM answers
		WHERE application_id = $1
		  AND question_id = ANY($2::uuid[])
		  AND payload::jsonb NOT IN ('null'::jsonb, '{}'::jsonb)
	`, applicationID.String(), pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query answered questions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan answered question: %w", err)
		}
		id, err := domain.ParseQuestionID(raw)
		if err != nil {
			return nil, fmt.Errorf("parse question id %q: %w", raw, err)
		}
		out[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answered questions: %w", err)
	}
	return out, nil
}
