package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"formflow/internal/progress"
	"formflow/pkg/domain"
	"formflow/pkg/platform/sentinel"
	txcontext "formflow/pkg/platform/tx"
)

// PostgresStore persists status records in the progress table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, applicationID domain.ApplicationID, scope progress.Scope, scopeID string) (*progress.Record, error) {
	rec := progress.Record{ApplicationID: applicationID, Scope: scope, ScopeID: scopeID}
	var status string
	var completedAt sql.NullTime
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT status, started_at, completed_at, updated_at
		FROM progress
		WHERE application_id = $1 AND scope = $2 AND scope_id = $3
	`, applicationID.String(), string(scope), scopeID).Scan(&status, &rec.StartedAt, &completedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find progress: %w", err)
	}
	rec.Status = progress.Status(status)
	if completedAt.Valid {
		t := completedAt.Time
		rec.CompletedAt = &t
	}
	return &rec, nil
}

func (s *PostgresStore) Save(ctx context.Context, rec *progress.Record) error {
	var completedAt sql.NullTime
	if rec.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *rec.CompletedAt, Valid: true}
	}
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO progress (application_id, scope, scope_id, status, started_at, completed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (application_id, scope, scope_id) DO UPDATE SET
			status = EXCLUDED.status,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at
	`, rec.ApplicationID.String(), string(rec.Scope), rec.ScopeID, string(rec.Status),
		rec.StartedAt, completedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}
