package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// -----------------------------------------------------------------------------
// Resume Methods
// -----------------------------------------------------------------------------

// CreateResume inserts a resume and fills its ID and timestamps
func (db *DB) CreateResume(ctx context.Context, r *types.Resume) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO resumes (id, title, is_active)
		 VALUES ($1, $2, $3)
		 RETURNING created_at, updated_at`,
		r.ID, r.Title, r.IsActive,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	return mapError(err, target{kind: store.KindResume, id: r.ID})
}

// GetResume retrieves a resume without its sections
func (db *DB) GetResume(ctx context.Context, id uuid.UUID) (*types.Resume, error) {
	var r types.Resume
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, is_active, created_at, updated_at FROM resumes WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Title, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, mapError(err, target{kind: store.KindResume, id: id})
	}
	return &r, nil
}

// ListResumes returns every resume, oldest first
func (db *DB) ListResumes(ctx context.Context) ([]types.Resume, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, title, is_active, created_at, updated_at
		 FROM resumes ORDER BY created_at, id::text`)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	resumes := []types.Resume{}
	for rows.Next() {
		var r types.Resume
		if err := rows.Scan(&r.ID, &r.Title, &r.IsActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		resumes = append(resumes, r)
	}
	return resumes, rows.Err()
}

// UpdateResume writes the scalar fields of a resume
func (db *DB) UpdateResume(ctx context.Context, r *types.Resume) error {
	err := db.pool.QueryRow(ctx,
		`UPDATE resumes SET title = $2, is_active = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING created_at, updated_at`,
		r.ID, r.Title, r.IsActive,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	return mapError(err, target{kind: store.KindResume, id: r.ID})
}

// DeleteResume removes a resume; sections, items, sub-items and matches
// go with it through ON DELETE CASCADE.
func (db *DB) DeleteResume(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &store.NotFoundError{Kind: store.KindResume, ID: id}
	}
	return nil
}

// Snapshot loads the resume tree inside a single REPEATABLE READ transaction
// so a concurrent reorder is seen either entirely or not at all.
func (db *DB) Snapshot(ctx context.Context, resumeID uuid.UUID) (*types.Resume, error) {
	var out *types.Resume
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := db.withTx(ctx, opts, func(tx pgx.Tx) error {
		var r types.Resume
		err := tx.QueryRow(ctx,
			`SELECT id, title, is_active, created_at, updated_at FROM resumes WHERE id = $1`,
			resumeID,
		).Scan(&r.ID, &r.Title, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return mapError(err, target{kind: store.KindResume, id: resumeID})
		}

		sections, err := querySections(ctx, tx, resumeID)
		if err != nil {
			return err
		}
		items, err := queryItemsByResume(ctx, tx, resumeID)
		if err != nil {
			return err
		}
		subItems, err := querySubItemsByResume(ctx, tx, resumeID)
		if err != nil {
			return err
		}

		subsByItem := make(map[uuid.UUID][]types.SubItem)
		for _, sub := range subItems {
			subsByItem[sub.ItemID] = append(subsByItem[sub.ItemID], sub)
		}
		itemsBySection := make(map[uuid.UUID][]types.Item)
		for _, it := range items {
			it.SubItems = subsByItem[it.ID]
			itemsBySection[it.SectionID] = append(itemsBySection[it.SectionID], it)
		}
		for i := range sections {
			sections[i].Items = itemsBySection[sections[i].ID]
		}
		r.Sections = sections
		out = r.Sorted()
		return nil
	})
	if err != nil {
		return nil, mapError(err, target{kind: store.KindResume, id: resumeID})
	}
	return out, nil
}
