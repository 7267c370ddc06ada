// Package ordering assigns dense sibling order for reorder requests and
// persists it as one atomic batch.
package ordering

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// Engine reorders the children of one parent at a time.
type Engine struct {
	store   store.Store
	log     *logrus.Entry
	metrics *observability.Metrics
}

// NewEngine creates an Engine. log and m may be nil.
func NewEngine(s store.Store, log *logrus.Entry, m *observability.Metrics) *Engine {
	if log == nil {
		log = observability.Discard()
	}
	return &Engine{store: s, log: log, metrics: m}
}

// child is the order-relevant view of any sibling.
type child struct {
	id    uuid.UUID
	order int
}

// Reorder sets the children of parentID to the order given by childIDs,
// which must be exactly a permutation of the current children. Orders
// become 0..n-1 in that sequence. On any error nothing has been changed.
func (e *Engine) Reorder(ctx context.Context, parent store.Kind, parentID uuid.UUID, childIDs []uuid.UUID) (err error) {
	start := time.Now()
	defer func() {
		e.metrics.ObserveReorder(string(parent), err)
		entry := e.log.WithFields(logrus.Fields{
			"parent_kind": parent,
			"parent_id":   parentID,
			"children":    len(childIDs),
			"elapsed_ms":  time.Since(start).Milliseconds(),
		})
		if err != nil {
			entry.WithError(err).Warn("reorder rejected")
			return
		}
		entry.Debug("reorder applied")
	}()

	current, err := e.children(ctx, parent, parentID)
	if err != nil {
		return err
	}
	if err := checkPermutation(current, childIDs); err != nil {
		return err
	}

	updates := make([]store.OrderUpdate, len(childIDs))
	for i, id := range childIDs {
		updates[i] = store.OrderUpdate{ID: id, Order: i}
	}
	return e.store.UpdateOrders(ctx, parent, parentID, updates)
}

// Normalize rewrites the children of parentID to dense 0..n-1 order,
// keeping their current relative order (ties broken by id). It is a no-op
// when the order is already dense.
func (e *Engine) Normalize(ctx context.Context, parent store.Kind, parentID uuid.UUID) error {
	current, err := e.children(ctx, parent, parentID)
	if err != nil {
		return err
	}
	sort.SliceStable(current, func(i, j int) bool {
		if current[i].order != current[j].order {
			return current[i].order < current[j].order
		}
		return current[i].id.String() < current[j].id.String()
	})

	dense := true
	ids := make([]uuid.UUID, len(current))
	for i, c := range current {
		ids[i] = c.id
		if c.order != i {
			dense = false
		}
	}
	if dense {
		return nil
	}
	return e.Reorder(ctx, parent, parentID, ids)
}

func (e *Engine) children(ctx context.Context, parent store.Kind, parentID uuid.UUID) ([]child, error) {
	switch parent {
	case store.KindResume:
		sections, err := e.store.ListSections(ctx, parentID)
		if err != nil {
			return nil, err
		}
		out := make([]child, len(sections))
		for i, s := range sections {
			out[i] = child{id: s.ID, order: s.Order}
		}
		return out, nil
	case store.KindSection:
		items, err := e.store.ListItems(ctx, parentID)
		if err != nil {
			return nil, err
		}
		out := make([]child, len(items))
		for i, it := range items {
			out[i] = child{id: it.ID, order: it.Order}
		}
		return out, nil
	case store.KindItem:
		subs, err := e.store.ListSubItems(ctx, parentID)
		if err != nil {
			return nil, err
		}
		out := make([]child, len(subs))
		for i, s := range subs {
			out[i] = child{id: s.ID, order: s.Order}
		}
		return out, nil
	default:
		return nil, &types.ValidationError{Field: "parent_kind", Message: fmt.Sprintf("%q has no orderable children", parent)}
	}
}

// checkPermutation requires ids to name every current child exactly once.
func checkPermutation(current []child, ids []uuid.UUID) error {
	known := make(map[uuid.UUID]bool, len(current))
	for _, c := range current {
		known[c.id] = true
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	for i, id := range ids {
		if !known[id] {
			return &types.ValidationError{Field: fmt.Sprintf("ids[%d]", i), Message: fmt.Sprintf("%s is not a child of this parent", id)}
		}
		if seen[id] {
			return &types.ValidationError{Field: fmt.Sprintf("ids[%d]", i), Message: fmt.Sprintf("%s appears more than once", id)}
		}
		seen[id] = true
	}
	if len(ids) != len(current) {
		return &types.ValidationError{
			Field:   "ids",
			Message: fmt.Sprintf("expected all %d children, got %d", len(current), len(ids)),
		}
	}
	return nil
}

// ParseKind maps a parent kind name to a store.Kind.
func ParseKind(raw string) (store.Kind, error) {
	k := store.Kind(raw)
	if _, ok := k.ChildKind(); !ok {
		return "", &types.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown parent kind %q (want resume, section or item)", raw)}
	}
	return k, nil
}
