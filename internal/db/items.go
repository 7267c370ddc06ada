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
// Item Methods
// -----------------------------------------------------------------------------

const itemColumns = `id, section_id, content, subtitle, date_range, location, sort_order, is_included`

func scanItem(row pgx.Row, it *types.Item) error {
	return row.Scan(&it.ID, &it.SectionID, &it.Content, &it.Subtitle, &it.DateRange, &it.Location, &it.Order, &it.IsIncluded)
}

func collectItems(rows pgx.Rows) ([]types.Item, error) {
	defer rows.Close()
	items := []types.Item{}
	for rows.Next() {
		var it types.Item
		if err := scanItem(rows, &it); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func queryItemsByResume(ctx context.Context, q querier, resumeID uuid.UUID) ([]types.Item, error) {
	rows, err := q.Query(ctx,
		`SELECT i.id, i.section_id, i.content, i.subtitle, i.date_range, i.location, i.sort_order, i.is_included
		 FROM section_items i JOIN sections s ON s.id = i.section_id
		 WHERE s.resume_id = $1
		 ORDER BY i.section_id, i.sort_order, i.id::text`,
		resumeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	return collectItems(rows)
}

// CreateItem appends an item to its section
func (db *DB) CreateItem(ctx context.Context, it *types.Item) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	err := db.withTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := lockParent(ctx, tx, store.KindSection, it.SectionID); err != nil {
			return err
		}
		order, err := nextOrder(ctx, tx, store.KindSection, it.SectionID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO section_items (`+itemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.ID, it.SectionID, it.Content, it.Subtitle, it.DateRange, it.Location, order, it.IsIncluded,
		)
		if err != nil {
			return err
		}
		it.Order = order
		return touchFrom(ctx, tx, store.KindSection, it.SectionID)
	})
	return mapError(err, target{kind: store.KindItem, id: it.ID, parentKind: store.KindSection, parentID: it.SectionID})
}

// GetItem retrieves an item without its sub-items
func (db *DB) GetItem(ctx context.Context, id uuid.UUID) (*types.Item, error) {
	var it types.Item
	row := db.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM section_items WHERE id = $1`, id)
	if err := scanItem(row, &it); err != nil {
		return nil, mapError(err, target{kind: store.KindItem, id: id})
	}
	return &it, nil
}

// ListItems returns the items of a section in order
func (db *DB) ListItems(ctx context.Context, sectionID uuid.UUID) ([]types.Item, error) {
	if _, err := db.GetSection(ctx, sectionID); err != nil {
		return nil, err
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM section_items WHERE section_id = $1 ORDER BY sort_order, id::text`,
		sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return collectItems(rows)
}

// UpdateItem writes the scalar fields of an item. Order is untouched.
func (db *DB) UpdateItem(ctx context.Context, it *types.Item) error {
	err := db.withTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`UPDATE section_items
			 SET content = $2, subtitle = $3, date_range = $4, location = $5, is_included = $6
			 WHERE id = $1
			 RETURNING section_id, sort_order`,
			it.ID, it.Content, it.Subtitle, it.DateRange, it.Location, it.IsIncluded,
		).Scan(&it.SectionID, &it.Order)
		if err != nil {
			return err
		}
		return touchFrom(ctx, tx, store.KindSection, it.SectionID)
	})
	return mapError(err, target{kind: store.KindItem, id: it.ID})
}

// DeleteItem removes an item with its sub-items and compacts the section
func (db *DB) DeleteItem(ctx context.Context, id uuid.UUID) error {
	err := db.withTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var sectionID uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT section_id FROM section_items WHERE id = $1`, id).Scan(&sectionID); err != nil {
			return err
		}
		if err := lockParent(ctx, tx, store.KindSection, sectionID); err != nil {
			return err
		}
		result, err := tx.Exec(ctx, `DELETE FROM section_items WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		if result.RowsAffected() == 0 {
			return &store.NotFoundError{Kind: store.KindItem, ID: id}
		}
		if err := compact(ctx, tx, store.KindSection, sectionID); err != nil {
			return err
		}
		return touchFrom(ctx, tx, store.KindSection, sectionID)
	})
	return mapError(err, target{kind: store.KindItem, id: id})
}

// -----------------------------------------------------------------------------
// Sub-item Methods
// -----------------------------------------------------------------------------

const subItemColumns = `id, item_id, content, sort_order, is_included`

func scanSubItem(row pgx.Row, sub *types.SubItem) error {
	return row.Scan(&sub.ID, &sub.ItemID, &sub.Content, &sub.Order, &sub.IsIncluded)
}

func collectSubItems(rows pgx.Rows) ([]types.SubItem, error) {
	defer rows.Close()
	subs := []types.SubItem{}
	for rows.Next() {
		var sub types.SubItem
		if err := scanSubItem(rows, &sub); err != nil {
			return nil, fmt.Errorf("failed to scan sub-item: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func querySubItemsByResume(ctx context.Context, q querier, resumeID uuid.UUID) ([]types.SubItem, error) {
	rows, err := q.Query(ctx,
		`SELECT b.id, b.item_id, b.content, b.sort_order, b.is_included
		 FROM sub_items b
		 JOIN section_items i ON i.id = b.item_id
		 JOIN sections s ON s.id = i.section_id
		 WHERE s.resume_id = $1
		 ORDER BY b.item_id, b.sort_order, b.id::text`,
		resumeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sub-items: %w", err)
	}
	return collectSubItems(rows)
}

// CreateSubItem appends a sub-item to its item
func (db *DB) CreateSubItem(ctx context.Context, sub *types.SubItem) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	err := db.withTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := lockParent(ctx, tx, store.KindItem, sub.ItemID); err != nil {
			return err
		}
		order, err := nextOrder(ctx, tx, store.KindItem, sub.ItemID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO sub_items (`+subItemColumns+`) VALUES ($1, $2, $3, $4, $5)`,
			sub.ID, sub.ItemID, sub.Content, order, sub.IsIncluded,
		)
		if err != nil {
			return err
		}
		sub.Order = order
		return touchFrom(ctx, tx, store.KindItem, sub.ItemID)
	})
	return mapError(err, target{kind: store.KindSubItem, id: sub.ID, parentKind: store.KindItem, parentID: sub.ItemID})
}

// GetSubItem retrieves one sub-item
func (db *DB) GetSubItem(ctx context.Context, id uuid.UUID) (*types.SubItem, error) {
	var sub types.SubItem
	row := db.pool.QueryRow(ctx, `SELECT `+subItemColumns+` FROM sub_items WHERE id = $1`, id)
	if err := scanSubItem(row, &sub); err != nil {
		return nil, mapError(err, target{kind: store.KindSubItem, id: id})
	}
	return &sub, nil
}

// ListSubItems returns the sub-items of an item in order
func (db *DB) ListSubItems(ctx context.Context, itemID uuid.UUID) ([]types.SubItem, error) {
	if _, err := db.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+subItemColumns+` FROM sub_items WHERE item_id = $1 ORDER BY sort_order, id::text`,
		itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-items: %w", err)
	}
	return collectSubItems(rows)
}

// UpdateSubItem writes content and inclusion. Order is untouched.
func (db *DB) UpdateSubItem(ctx context.Context, sub *types.SubItem) error {
	err := db.withTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`UPDATE sub_items SET content = $2, is_included = $3
			 WHERE id = $1
			 RETURNING item_id, sort_order`,
			sub.ID, sub.Content, sub.IsIncluded,
		).Scan(&sub.ItemID, &sub.Order)
		if err != nil {
			return err
		}
		return touchFrom(ctx, tx, store.KindItem, sub.ItemID)
	})
	return mapError(err, target{kind: store.KindSubItem, id: sub.ID})
}

// DeleteSubItem removes a sub-item and compacts its siblings
func (db *DB) DeleteSubItem(ctx context.Context, id uuid.UUID) error {
	err := db.withTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var itemID uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT item_id FROM sub_items WHERE id = $1`, id).Scan(&itemID); err != nil {
			return err
		}
		if err := lockParent(ctx, tx, store.KindItem, itemID); err != nil {
			return err
		}
		result, err := tx.Exec(ctx, `DELETE FROM sub_items WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete sub-item: %w", err)
		}
		if result.RowsAffected() == 0 {
			return &store.NotFoundError{Kind: store.KindSubItem, ID: id}
		}
		if err := compact(ctx, tx, store.KindItem, itemID); err != nil {
			return err
		}
		return touchFrom(ctx, tx, store.KindItem, itemID)
	})
	return mapError(err, target{kind: store.KindSubItem, id: id})
}
