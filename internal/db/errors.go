package db

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonathan/resume-builder/internal/store"
)

// SQLSTATE codes the store translates into domain errors
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
)

// target names the row an operation was about; parent is used when a
// foreign key violation shows the referenced row vanished.
type target struct {
	kind       store.Kind
	id         uuid.UUID
	parentKind store.Kind
	parentID   uuid.UUID
}

// mapError converts pgx errors into store errors. Unknown errors pass
// through unchanged.
func mapError(err error, t target) error {
	if err == nil {
		return nil
	}
	if store.IsNotFound(err) || store.IsConflict(err) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &store.NotFoundError{Kind: t.kind, ID: t.id}
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected:
		return &store.ConflictError{Kind: t.kind, ID: t.id, Message: "concurrent update", Cause: err}
	case codeUniqueViolation:
		return &store.ConflictError{Kind: t.kind, ID: t.id, Message: "violates " + pgErr.ConstraintName, Cause: err}
	case codeForeignKeyViolation:
		if t.parentKind != "" {
			return &store.NotFoundError{Kind: t.parentKind, ID: t.parentID}
		}
		return &store.NotFoundError{Kind: t.kind, ID: t.id}
	}
	return err
}
