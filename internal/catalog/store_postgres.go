package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"formflow/internal/platform/postgres"
	"formflow/pkg/domain"
	"formflow/pkg/platform/sentinel"
	txcontext "formflow/pkg/platform/tx"
)

// PostgresStore persists the catalog in the stages, tasks and questions
// tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SaveStage(ctx context.Context, stage *Stage) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO stages (id, name, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, position = EXCLUDED.position
	`, stage.ID.String(), stage.Name, stage.Order)
	if err != nil {
		return fmt.Errorf("save stage: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveTask(ctx context.Context, task *Task) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO tasks (id, stage_id, name, position)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET stage_id = EXCLUDED.stage_id, name = EXCLUDED.name, position = EXCLUDED.position
	`, task.ID.String(), task.StageID.String(), task.Name, task.Order)
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveQuestion(ctx context.Context, q *Question) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO questions (id, task_id, slug, position, content)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			task_id = EXCLUDED.task_id,
			slug = EXCLUDED.slug,
			position = EXCLUDED.position,
			content = EXCLUDED.content
	`, q.ID.String(), q.TaskID.String(), q.Slug, q.Order, q.Content)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("question slug %q: %w", q.Slug, sentinel.ErrConflict)
		}
		return fmt.Errorf("save question: %w", err)
	}
	return nil
}

func (s *PostgresStore) StageByID(ctx context.Context, id domain.StageID) (*Stage, error) {
	var st Stage
	var rawID string
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, name, position FROM stages WHERE id = $1`, id.String(),
	).Scan(&rawID, &st.Name, &st.Order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find stage: %w", err)
	}
	if st.ID, err = domain.ParseStageID(rawID); err != nil {
		return nil, fmt.Errorf("scan stage id: %w", err)
	}
	return &st, nil
}

func (s *PostgresStore) TaskByID(ctx context.Context, id domain.TaskID) (*Task, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, stage_id, name, position FROM tasks WHERE id = $1`, id.String())
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) QuestionByID(ctx context.Context, id domain.QuestionID) (*Question, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, task_id, slug, position, content FROM questions WHERE id = $1`, id.String())
	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find question: %w", err)
	}
	return q, nil
}

func (s *PostgresStore) TasksByStage(ctx context.Context, stageID domain.StageID) ([]*Task, error) {
	if _, err := s.StageByID(ctx, stageID); err != nil {
		return nil, err
	}
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT id, stage_id, name, position FROM tasks WHERE stage_id = $1 ORDER BY position, id`, stageID.String())
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	var out []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) QuestionsByTask(ctx context.Context, taskID domain.TaskID) ([]*Question, error) {
	if _, err := s.TaskByID(ctx, taskID); err != nil {
		return nil, err
	}
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT id, task_id, slug, position, content FROM questions WHERE task_id = $1 ORDER BY position, id`, taskID.String())
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()
	var out []*Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*Task, error) {
	var t Task
	var id, stageID string
	if err := row.Scan(&id, &stageID, &t.Name, &t.Order); err != nil {
		return nil, err
	}
	var err error
	if t.ID, err = domain.ParseTaskID(id); err != nil {
		return nil, err
	}
	if t.StageID, err = domain.ParseStageID(stageID); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanQuestion(row scanner) (*Question, error) {
	var q Question
	var id, taskID string
	if err := row.Scan(&id, &taskID, &q.Slug, &q.Order, &q.Content); err != nil {
		return nil, err
	}
	var err error
	if q.ID, err = domain.ParseQuestionID(id); err != nil {
		return nil, err
	}
	if q.TaskID, err = domain.ParseTaskID(taskID); err != nil {
		return nil, err
	}
	return &q, nil
}
