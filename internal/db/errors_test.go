package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	id := uuid.New()
	parentID := uuid.New()
	tgt := target{kind: store.KindSection, id: id, parentKind: store.KindResume, parentID: parentID}

	tests := []struct {
		name     string
		err      error
		notFound bool
		conflict bool
		kind     store.Kind
	}{
		{name: "no rows", err: pgx.ErrNoRows, notFound: true, kind: store.KindSection},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", pgx.ErrNoRows), notFound: true, kind: store.KindSection},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, conflict: true},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, conflict: true},
		{name: "unique", err: &pgconn.PgError{Code: "23505", ConstraintName: "sections_order_unique"}, conflict: true},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503"}, notFound: true, kind: store.KindResume},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, tgt)
			assert.Equal(t, tt.notFound, store.IsNotFound(got))
			assert.Equal(t, tt.conflict, store.IsConflict(got))
			if tt.notFound {
				var nf *store.NotFoundError
				require.ErrorAs(t, got, &nf)
				assert.Equal(t, tt.kind, nf.Kind)
			}
		})
	}
}

func TestMapError_ConflictKeepsCause(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "sub_items_order_unique"}
	got := mapError(pgErr, target{kind: store.KindSubItem, id: uuid.New()})

	var ce *store.ConflictError
	require.ErrorAs(t, got, &ce)
	assert.Contains(t, ce.Error(), "sub_items_order_unique")
	assert.True(t, errors.Is(got, pgErr))
}

func TestMapError_PassThrough(t *testing.T) {
	assert.Nil(t, mapError(nil, target{}))

	other := errors.New("connection reset")
	assert.Equal(t, other, mapError(other, target{kind: store.KindResume}))

	check := &pgconn.PgError{Code: "23514"}
	assert.Equal(t, error(check), mapError(check, target{kind: store.KindResume}))

	nf := &store.NotFoundError{Kind: store.KindItem, ID: uuid.New()}
	assert.Equal(t, error(nf), mapError(nf, target{kind: store.KindResume}))
}

func TestChildTableFor(t *testing.T) {
	ct, err := childTableFor(store.KindSection)
	require.NoError(t, err)
	assert.Equal(t, "section_items", ct.table)
	assert.Equal(t, store.KindItem, ct.kind)

	_, err = childTableFor(store.KindSubItem)
	assert.Error(t, err)
}
