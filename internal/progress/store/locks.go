package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"formflow/pkg/domain"
	"formflow/pkg/platform/keylock"
	txcontext "formflow/pkg/platform/tx"
)

// ErrNoTransaction is returned when an advisory lock is requested outside a
// transaction; the lock would be released as soon as it was taken.
var ErrNoTransaction = errors.New("advisory lock requires a transaction")

// ApplicationLocks serializes status recomputation per application within
// this process.
type ApplicationLocks struct {
	keys *keylock.Map[domain.ApplicationID]
}

func NewApplicationLocks() *ApplicationLocks {
	return &ApplicationLocks{keys: keylock.New[domain.ApplicationID]()}
}

func (l *ApplicationLocks) Lock(ctx context.Context, applicationID domain.ApplicationID) (func(), error) {
	return l.keys.Lock(ctx, applicationID)
}

// AdvisoryLocks serializes recomputation per application across processes
// with a transaction-scoped Postgres advisory lock. The lock is released at
// commit or rollback, so the returned func does nothing.
type AdvisoryLocks struct {
	db *sql.DB
}

func NewAdvisoryLocks(db *sql.DB) *AdvisoryLocks {
	return &AdvisoryLocks{db: db}
}

func (l *AdvisoryLocks) Lock(ctx context.Context, applicationID domain.ApplicationID) (func(), error) {
	if _, ok := txcontext.From(ctx); !ok {
		return nil, ErrNoTransaction
	}
	_, err := txcontext.Executor(ctx, l.db).ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, "progress:"+applicationID.String())
	if err != nil {
		return nil, fmt.Errorf("advisory lock: %w", err)
	}
	return func() {}, nil
}
