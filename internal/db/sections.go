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
// Section Methods
// -----------------------------------------------------------------------------

const sectionColumns = `id, resume_id, title, section_type, variant_name, sort_order, is_enabled`

func scanSection(row pgx.Row, s *types.Section) error {
	var sectionType string
	if err := row.Scan(&s.ID, &s.ResumeID, &s.Title, &sectionType, &s.VariantName, &s.Order, &s.IsEnabled); err != nil {
		return err
	}
	s.SectionType = types.SectionType(sectionType)
	return nil
}

func querySections(ctx context.Context, q querier, resumeID uuid.UUID) ([]types.Section, error) {
	rows, err := q.Query(ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE resume_id = $1 ORDER BY sort_order, id::text`,
		resumeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	sections := []types.Section{}
	for rows.Next() {
		var s types.Section
		if err := scanSection(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// CreateSection appends a section to its resume
func (db *DB) CreateSection(ctx context.Context, s *types.Section) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	err := db.withTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := lockParent(ctx, tx, store.KindResume, s.ResumeID); err != nil {
			return err
		}
		order, err := nextOrder(ctx, tx, store.KindResume, s.ResumeID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO sections (`+sectionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			s.ID, s.ResumeID, s.Title, string(s.SectionType), s.VariantName, order, s.IsEnabled,
		)
		if err != nil {
			return err
		}
		s.Order = order
		return touchFrom(ctx, tx, store.KindResume, s.ResumeID)
	})
	return mapError(err, target{kind: store.KindSection, id: s.ID, parentKind: store.KindResume, parentID: s.ResumeID})
}

// GetSection retrieves a section without its items
func (db *DB) GetSection(ctx context.Context, id uuid.UUID) (*types.Section, error) {
	var s types.Section
	row := db.pool.QueryRow(ctx, `SELECT `+sectionColumns+` FROM sections WHERE id = $1`, id)
	if err := scanSection(row, &s); err != nil {
		return nil, mapError(err, target{kind: store.KindSection, id: id})
	}
	return &s, nil
}

// ListSections returns the sections of a resume in order
func (db *DB) ListSections(ctx context.Context, resumeID uuid.UUID) ([]types.Section, error) {
	if _, err := db.GetResume(ctx, resumeID); err != nil {
		return nil, err
	}
	return querySections(ctx, db.pool, resumeID)
}

// UpdateSection writes the scalar fields of a section. Order is untouched.
func (db *DB) UpdateSection(ctx context.Context, s *types.Section) error {
	err := db.withTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`UPDATE sections SET title = $2, section_type = $3, variant_name = $4, is_enabled = $5
			 WHERE id = $1
			 RETURNING resume_id, sort_order`,
			s.ID, s.Title, string(s.SectionType), s.VariantName, s.IsEnabled,
		).Scan(&s.ResumeID, &s.Order)
		if err != nil {
			return err
		}
		return touchFrom(ctx, tx, store.KindResume, s.ResumeID)
	})
	return mapError(err, target{kind: store.KindSection, id: s.ID})
}

// DeleteSection removes a section with its items and compacts the
// remaining sections of the resume.
func (db *DB) DeleteSection(ctx context.Context, id uuid.UUID) error {
	err := db.withTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var resumeID uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT resume_id FROM sections WHERE id = $1`, id).Scan(&resumeID); err != nil {
			return err
		}
		if err := lockParent(ctx, tx, store.KindResume, resumeID); err != nil {
			return err
		}
		result, err := tx.Exec(ctx, `DELETE FROM sections WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete section: %w", err)
		}
		if result.RowsAffected() == 0 {
			return &store.NotFoundError{Kind: store.KindSection, ID: id}
		}
		if err := compact(ctx, tx, store.KindResume, resumeID); err != nil {
			return err
		}
		return touchFrom(ctx, tx, store.KindResume, resumeID)
	})
	return mapError(err, target{kind: store.KindSection, id: id})
}
