//go:build integration

package db

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Store Integration Tests
// =============================================================================

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func createTestResume(t *testing.T, db *DB, sections ...string) (*types.Resume, []types.Section) {
	t.Helper()
	ctx := context.Background()

	r := &types.Resume{Title: "Integration " + uuid.NewString(), IsActive: true}
	require.NoError(t, db.CreateResume(ctx, r))
	t.Cleanup(func() { _ = db.DeleteResume(context.Background(), r.ID) })

	var out []types.Section
	for _, title := range sections {
		s := &types.Section{ResumeID: r.ID, Title: title, SectionType: types.SectionCustom, IsEnabled: true}
		require.NoError(t, db.CreateSection(ctx, s))
		out = append(out, *s)
	}
	return r, out
}

func TestIntegration_CreateAppends(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	_, sections := createTestResume(t, db, "Experience", "Education", "Skills")
	for i, s := range sections {
		assert.Equal(t, i, s.Order)
	}
}

func TestIntegration_UpdateOrders(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	r, s := createTestResume(t, db, "A", "B", "C")

	err := db.UpdateOrders(ctx, store.KindResume, r.ID, []store.OrderUpdate{
		{ID: s[2].ID, Order: 0},
		{ID: s[0].ID, Order: 1},
		{ID: s[1].ID, Order: 2},
	})
	require.NoError(t, err)

	snap, err := db.Snapshot(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, snap.Sections, 3)
	assert.Equal(t, "C", snap.Sections[0].Title)
	assert.Equal(t, "A", snap.Sections[1].Title)
	assert.Equal(t, "B", snap.Sections[2].Title)
}

func TestIntegration_UpdateOrders_RollsBack(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	r, s := createTestResume(t, db, "A", "B", "C")

	err := db.UpdateOrders(ctx, store.KindResume, r.ID, []store.OrderUpdate{
		{ID: s[2].ID, Order: 0},
		{ID: uuid.New(), Order: 1},
	})
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))

	err = db.UpdateOrders(ctx, store.KindResume, r.ID, []store.OrderUpdate{
		{ID: s[0].ID, Order: 1},
	})
	require.Error(t, err)
	assert.True(t, store.IsConflict(err), "duplicate order must fail at commit: %v", err)

	list, err := db.ListSections(ctx, r.ID)
	require.NoError(t, err)
	for i, sec := range list {
		assert.Equal(t, s[i].ID, sec.ID)
		assert.Equal(t, i, sec.Order)
	}
}

func TestIntegration_DeleteCascadesAndCompacts(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	r, s := createTestResume(t, db, "A", "B", "C")
	it := &types.Item{SectionID: s[0].ID, Content: "job", IsIncluded: true}
	require.NoError(t, db.CreateItem(ctx, it))
	sub := &types.SubItem{ItemID: it.ID, Content: "bullet", IsIncluded: true}
	require.NoError(t, db.CreateSubItem(ctx, sub))

	require.NoError(t, db.DeleteSection(ctx, s[0].ID))

	_, err := db.GetItem(ctx, it.ID)
	assert.True(t, store.IsNotFound(err))
	_, err = db.GetSubItem(ctx, sub.ID)
	assert.True(t, store.IsNotFound(err))

	list, err := db.ListSections(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 0, list[0].Order)
	assert.Equal(t, 1, list[1].Order)
}

func TestIntegration_CreateUnderMissingParent(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	err := db.CreateItem(context.Background(), &types.Item{SectionID: uuid.New(), Content: "x"})
	assert.True(t, store.IsNotFound(err))
}

func TestIntegration_ConcurrentAppendsStayDense(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	r, _ := createTestResume(t, db)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = db.CreateSection(ctx, &types.Section{ResumeID: r.ID, Title: "s", SectionType: types.SectionCustom})
		}()
	}
	wg.Wait()

	list, err := db.ListSections(ctx, r.ID)
	require.NoError(t, err)
	for i, sec := range list {
		assert.Equal(t, i, sec.Order)
	}
}

func TestIntegration_SaveMatchUpserts(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	r, _ := createTestResume(t, db)
	p := &types.JobPosting{Title: "Engineer", Description: "Go and Postgres"}
	require.NoError(t, db.CreateJobPosting(ctx, p))
	defer func() { _ = db.DeleteJobPosting(ctx, p.ID) }()

	m := &types.Match{ResumeID: r.ID, JobPostingID: p.ID, MatchScore: 40, FoundKeywords: []string{"go"},
		SuggestedSections: []types.SectionType{types.SectionProjects}}
	require.NoError(t, db.SaveMatch(ctx, m))
	require.NoError(t, db.SaveMatch(ctx, &types.Match{ResumeID: r.ID, JobPostingID: p.ID, MatchScore: 75}))

	matches, err := db.ListMatches(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 75.0, matches[0].MatchScore)
	assert.Equal(t, m.ID, matches[0].ID)

	err = db.SaveMatch(ctx, &types.Match{ResumeID: r.ID, JobPostingID: uuid.New()})
	var nf *store.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, store.KindJobPosting, nf.Kind)
}
