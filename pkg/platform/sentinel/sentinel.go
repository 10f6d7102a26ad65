package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these, optionally
// wrapped, and services translate them into coded domain errors:
//   - ErrNotFound: no row or key for the requested question, answer or status
//   - ErrConflict: a unique value is already claimed by another application
//   - ErrUnavailable: a backing service (Postgres, Redis, Kafka) is unreachable
//
// Field-level answer problems are never sentinels; they are validation results.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
