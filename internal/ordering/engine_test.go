package ordering

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// seedSections creates a resume with three sections c1, c2, c3.
func seedSections(t *testing.T, s store.Store) (uuid.UUID, []uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	r := &types.Resume{Title: "R"}
	require.NoError(t, s.CreateResume(ctx, r))
	var ids []uuid.UUID
	for _, title := range []string{"c1", "c2", "c3"} {
		sec := &types.Section{ResumeID: r.ID, Title: title, SectionType: types.SectionCustom, IsEnabled: true}
		require.NoError(t, s.CreateSection(ctx, sec))
		ids = append(ids, sec.ID)
	}
	return r.ID, ids
}

func orders(t *testing.T, s store.Store, resumeID uuid.UUID) map[uuid.UUID]int {
	t.Helper()
	sections, err := s.ListSections(context.Background(), resumeID)
	require.NoError(t, err)
	out := make(map[uuid.UUID]int, len(sections))
	for _, sec := range sections {
		out[sec.ID] = sec.Order
	}
	return out
}

func TestReorder_AssignsDenseOrder(t *testing.T) {
	m := store.NewMemory()
	e := NewEngine(m, nil, observability.NewMetrics())
	resumeID, ids := seedSections(t, m)
	c1, c2, c3 := ids[0], ids[1], ids[2]

	require.NoError(t, e.Reorder(context.Background(), store.KindResume, resumeID, []uuid.UUID{c3, c1, c2}))

	got := orders(t, m, resumeID)
	assert.Equal(t, 0, got[c3])
	assert.Equal(t, 1, got[c1])
	assert.Equal(t, 2, got[c2])

	snap, err := m.Snapshot(context.Background(), resumeID)
	require.NoError(t, err)
	assert.Equal(t, "c3", snap.Sections[0].Title)
	assert.Equal(t, "c1", snap.Sections[1].Title)
	assert.Equal(t, "c2", snap.Sections[2].Title)
}

func TestReorder_ItemsAndSubItems(t *testing.T) {
	m := store.NewMemory()
	e := NewEngine(m, nil, nil)
	ctx := context.Background()
	_, sections := seedSections(t, m)

	var items []uuid.UUID
	for i := 0; i < 3; i++ {
		it := &types.Item{SectionID: sections[0], Content: "x", IsIncluded: true}
		require.NoError(t, m.CreateItem(ctx, it))
		items = append(items, it.ID)
	}
	require.NoError(t, e.Reorder(ctx, store.KindSection, sections[0], []uuid.UUID{items[2], items[0], items[1]}))
	got, err := m.GetItem(ctx, items[2])
	require.NoError(t, err)
	assert.Equal(t, 0, got.Order)

	var subs []uuid.UUID
	for i := 0; i < 2; i++ {
		sub := &types.SubItem{ItemID: items[0], Content: "b", IsIncluded: true}
		require.NoError(t, m.CreateSubItem(ctx, sub))
		subs = append(subs, sub.ID)
	}
	require.NoError(t, e.Reorder(ctx, store.KindItem, items[0], []uuid.UUID{subs[1], subs[0]}))
	list, err := m.ListSubItems(ctx, items[0])
	require.NoError(t, err)
	assert.Equal(t, subs[1], list[0].ID)
}

func TestReorder_RejectsNonPermutation(t *testing.T) {
	m := store.NewMemory()
	e := NewEngine(m, nil, nil)
	resumeID, ids := seedSections(t, m)
	before := orders(t, m, resumeID)

	tests := []struct {
		name string
		ids  []uuid.UUID
	}{
		{"missing child", []uuid.UUID{ids[0], ids[1]}},
		{"duplicate", []uuid.UUID{ids[0], ids[0], ids[1]}},
		{"foreign id", []uuid.UUID{ids[0], ids[1], uuid.New()}},
		{"extra id", []uuid.UUID{ids[0], ids[1], ids[2], uuid.New()}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Reorder(context.Background(), store.KindResume, resumeID, tt.ids)
			require.Error(t, err)
			assert.True(t, types.IsValidation(err))
			assert.Equal(t, before, orders(t, m, resumeID))
		})
	}
}

func TestReorder_UnknownParent(t *testing.T) {
	e := NewEngine(store.NewMemory(), nil, nil)

	err := e.Reorder(context.Background(), store.KindResume, uuid.New(), nil)
	assert.True(t, store.IsNotFound(err))

	err = e.Reorder(context.Background(), store.KindJobPosting, uuid.New(), nil)
	assert.True(t, types.IsValidation(err))
}

// conflictStore fails every batch the way a store does when a concurrent
// structural change wins.
type conflictStore struct {
	*store.Memory
}

func (conflictStore) UpdateOrders(_ context.Context, parent store.Kind, parentID uuid.UUID, _ []store.OrderUpdate) error {
	return &store.ConflictError{Kind: parent, ID: parentID, Message: "concurrent update"}
}

func TestReorder_FailedBatchLeavesOrderIntact(t *testing.T) {
	m := store.NewMemory()
	e := NewEngine(conflictStore{m}, nil, nil)
	resumeID, ids := seedSections(t, m)
	before := orders(t, m, resumeID)

	err := e.Reorder(context.Background(), store.KindResume, resumeID, []uuid.UUID{ids[2], ids[0], ids[1]})
	require.Error(t, err)
	assert.True(t, store.IsConflict(err), "store error surfaced unchanged")
	assert.Equal(t, before, orders(t, m, resumeID))
}

// racingStore deletes a child after validation and before the batch lands.
type racingStore struct {
	*store.Memory
	victim uuid.UUID
}

func (s racingStore) UpdateOrders(ctx context.Context, parent store.Kind, parentID uuid.UUID, updates []store.OrderUpdate) error {
	if err := s.Memory.DeleteSection(ctx, s.victim); err != nil {
		return err
	}
	return s.Memory.UpdateOrders(ctx, parent, parentID, updates)
}

func TestReorder_ConcurrentDeleteRollsBack(t *testing.T) {
	m := store.NewMemory()
	resumeID, ids := seedSections(t, m)
	e := NewEngine(racingStore{Memory: m, victim: ids[1]}, nil, nil)

	err := e.Reorder(context.Background(), store.KindResume, resumeID, []uuid.UUID{ids[2], ids[1], ids[0]})
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))

	// Survivors keep their compacted order from the delete, untouched by the batch.
	got := orders(t, m, resumeID)
	assert.Equal(t, map[uuid.UUID]int{ids[0]: 0, ids[2]: 1}, got)
}

func TestNormalize(t *testing.T) {
	m := store.NewMemory()
	e := NewEngine(m, nil, nil)
	ctx := context.Background()
	resumeID, ids := seedSections(t, m)

	// Sparse but ordered values collapse to 0..n-1 keeping relative order.
	require.NoError(t, m.UpdateOrders(ctx, store.KindResume, resumeID, []store.OrderUpdate{
		{ID: ids[0], Order: 10}, {ID: ids[1], Order: 4}, {ID: ids[2], Order: 7},
	}))
	require.NoError(t, e.Normalize(ctx, store.KindResume, resumeID))

	got := orders(t, m, resumeID)
	assert.Equal(t, 0, got[ids[1]])
	assert.Equal(t, 1, got[ids[2]])
	assert.Equal(t, 2, got[ids[0]])

	require.NoError(t, e.Normalize(ctx, store.KindResume, resumeID), "already dense")
}

func TestParseKind(t *testing.T) {
	for _, raw := range []string{"resume", "section", "item"} {
		k, err := ParseKind(raw)
		require.NoError(t, err)
		assert.Equal(t, store.Kind(raw), k)
	}
	_, err := ParseKind("subitem")
	assert.True(t, types.IsValidation(err))
}
