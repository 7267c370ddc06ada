package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/resume-builder/internal/store"
)

// childTable describes the table holding the ordered children of a parent kind.
// Names are constants, never user input, so they are safe to format into SQL.
type childTable struct {
	kind        store.Kind
	table       string
	parentCol   string
	parentTable string
}

var childTables = map[store.Kind]childTable{
	store.KindResume:  {kind: store.KindSection, table: "sections", parentCol: "resume_id", parentTable: "resumes"},
	store.KindSection: {kind: store.KindItem, table: "section_items", parentCol: "section_id", parentTable: "sections"},
	store.KindItem:    {kind: store.KindSubItem, table: "sub_items", parentCol: "item_id", parentTable: "section_items"},
}

func childTableFor(parent store.Kind) (childTable, error) {
	ct, ok := childTables[parent]
	if !ok {
		return childTable{}, fmt.Errorf("%s cannot have ordered children", parent)
	}
	return ct, nil
}

// lockParent takes a row lock on the parent so appends, deletes and
// reorders of the same sibling list serialize.
func lockParent(ctx context.Context, tx pgx.Tx, parent store.Kind, parentID uuid.UUID) error {
	ct, err := childTableFor(parent)
	if err != nil {
		return err
	}
	var id uuid.UUID
	err = tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, ct.parentTable),
		parentID,
	).Scan(&id)
	if err != nil {
		return mapError(err, target{kind: parent, id: parentID})
	}
	return nil
}

// nextOrder returns the append position under parent: the sibling count.
func nextOrder(ctx context.Context, tx pgx.Tx, parent store.Kind, parentID uuid.UUID) (int, error) {
	ct, err := childTableFor(parent)
	if err != nil {
		return 0, err
	}
	var n int
	err = tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, ct.table, ct.parentCol),
		parentID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", ct.table, err)
	}
	return n, nil
}

// compact rewrites sibling orders to 0..n-1 keeping the (order, id) sequence.
func compact(ctx context.Context, tx pgx.Tx, parent store.Kind, parentID uuid.UUID) error {
	ct, err := childTableFor(parent)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, fmt.Sprintf(
		`UPDATE %[1]s AS c SET sort_order = r.rn - 1
		 FROM (SELECT id, ROW_NUMBER() OVER (ORDER BY sort_order, id::text) AS rn
		       FROM %[1]s WHERE %[2]s = $1) AS r
		 WHERE c.id = r.id AND c.sort_order <> r.rn - 1`,
		ct.table, ct.parentCol),
		parentID,
	)
	if err != nil {
		return fmt.Errorf("failed to compact %s: %w", ct.table, err)
	}
	return nil
}

// UpdateOrders applies a batch of order assignments in one transaction.
// A missing or foreign child aborts the whole batch; duplicate orders are
// caught by the deferred unique constraint at commit.
func (db *DB) UpdateOrders(ctx context.Context, parent store.Kind, parentID uuid.UUID, updates []store.OrderUpdate) error {
	ct, err := childTableFor(parent)
	if err != nil {
		return err
	}
	for _, u := range updates {
		if u.Order < 0 {
			return &store.ConflictError{Kind: ct.kind, ID: u.ID, Message: fmt.Sprintf("negative order %d", u.Order)}
		}
	}

	err = db.withTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := lockParent(ctx, tx, parent, parentID); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		query := fmt.Sprintf(`UPDATE %s SET sort_order = $1 WHERE id = $2 AND %s = $3`, ct.table, ct.parentCol)
		for _, u := range updates {
			batch.Queue(query, u.Order, u.ID, parentID)
		}
		results := tx.SendBatch(ctx, batch)
		for _, u := range updates {
			tag, err := results.Exec()
			if err != nil {
				_ = results.Close()
				return mapError(err, target{kind: ct.kind, id: u.ID})
			}
			if tag.RowsAffected() == 0 {
				_ = results.Close()
				return &store.NotFoundError{Kind: ct.kind, ID: u.ID}
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to close order batch: %w", err)
		}
		return touchFrom(ctx, tx, parent, parentID)
	})
	return mapError(err, target{kind: parent, id: parentID})
}

// touchFrom bumps updated_at on the resume owning the given node.
func touchFrom(ctx context.Context, tx pgx.Tx, kind store.Kind, id uuid.UUID) error {
	var query string
	switch kind {
	case store.KindResume:
		query = `UPDATE resumes SET updated_at = NOW() WHERE id = $1`
	case store.KindSection:
		query = `UPDATE resumes SET updated_at = NOW()
		         WHERE id = (SELECT resume_id FROM sections WHERE id = $1)`
	case store.KindItem:
		query = `UPDATE resumes SET updated_at = NOW()
		         WHERE id = (SELECT s.resume_id FROM sections s
		                     JOIN section_items i ON i.section_id = s.id WHERE i.id = $1)`
	default:
		return nil
	}
	if _, err := tx.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to touch resume: %w", err)
	}
	return nil
}
