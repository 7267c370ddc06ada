package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/types"
)

// Memory is an in-process Store. Entities live in per-kind arenas indexed by
// id; every node keeps its parent id for lookup and each parent owns the list
// of its children's ids. A single RWMutex serializes writers, so snapshots are
// never torn.
type Memory struct {
	mu       sync.RWMutex
	now      func() time.Time
	resumes  map[uuid.UUID]*resumeNode
	sections map[uuid.UUID]*sectionNode
	items    map[uuid.UUID]*itemNode
	subItems map[uuid.UUID]*types.SubItem
	postings map[uuid.UUID]*types.JobPosting
	matches  map[matchKey]*types.Match
}

type resumeNode struct {
	rec      types.Resume
	children []uuid.UUID
}

type sectionNode struct {
	rec      types.Section
	children []uuid.UUID
}

type itemNode struct {
	rec      types.Item
	children []uuid.UUID
}

type matchKey struct {
	resumeID  uuid.UUID
	postingID uuid.UUID
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		now:      time.Now,
		resumes:  make(map[uuid.UUID]*resumeNode),
		sections: make(map[uuid.UUID]*sectionNode),
		items:    make(map[uuid.UUID]*itemNode),
		subItems: make(map[uuid.UUID]*types.SubItem),
		postings: make(map[uuid.UUID]*types.JobPosting),
		matches:  make(map[matchKey]*types.Match),
	}
}

// -----------------------------------------------------------------------------
// Resumes
// -----------------------------------------------------------------------------

func (m *Memory) CreateResume(_ context.Context, r *types.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if _, exists := m.resumes[r.ID]; exists {
		return &ConflictError{Kind: KindResume, ID: r.ID, Message: "already exists"}
	}
	now := m.now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	rec := *r
	rec.Sections = nil
	m.resumes[r.ID] = &resumeNode{rec: rec}
	return nil
}

func (m *Memory) GetResume(_ context.Context, id uuid.UUID) (*types.Resume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.resumes[id]
	if !ok {
		return nil, &NotFoundError{Kind: KindResume, ID: id}
	}
	rec := node.rec
	return &rec, nil
}

func (m *Memory) ListResumes(_ context.Context) ([]types.Resume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Resume, 0, len(m.resumes))
	for _, node := range m.resumes {
		out = append(out, node.rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (m *Memory) UpdateResume(_ context.Context, r *types.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.resumes[r.ID]
	if !ok {
		return &NotFoundError{Kind: KindResume, ID: r.ID}
	}
	node.rec.Title = r.Title
	node.rec.IsActive = r.IsActive
	node.rec.UpdatedAt = m.now().UTC()
	r.CreatedAt = node.rec.CreatedAt
	r.UpdatedAt = node.rec.UpdatedAt
	return nil
}

func (m *Memory) DeleteResume(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.resumes[id]
	if !ok {
		return &NotFoundError{Kind: KindResume, ID: id}
	}
	for _, sectionID := range node.children {
		m.dropSection(sectionID)
	}
	for key := range m.matches {
		if key.resumeID == id {
			delete(m.matches, key)
		}
	}
	delete(m.resumes, id)
	return nil
}

// -----------------------------------------------------------------------------
// Sections
// -----------------------------------------------------------------------------

func (m *Memory) CreateSection(_ context.Context, s *types.Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	parent, ok := m.resumes[s.ResumeID]
	if !ok {
		return &NotFoundError{Kind: KindResume, ID: s.ResumeID}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if _, exists := m.sections[s.ID]; exists {
		return &ConflictError{Kind: KindSection, ID: s.ID, Message: "already exists"}
	}
	s.Order = len(parent.children)

	rec := *s
	rec.Items = nil
	m.sections[s.ID] = &sectionNode{rec: rec}
	parent.children = append(parent.children, s.ID)
	m.touch(s.ResumeID)
	return nil
}

func (m *Memory) GetSection(_ context.Context, id uuid.UUID) (*types.Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.sections[id]
	if !ok {
		return nil, &NotFoundError{Kind: KindSection, ID: id}
	}
	rec := node.rec
	return &rec, nil
}

func (m *Memory) ListSections(_ context.Context, resumeID uuid.UUID) ([]types.Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	parent, ok := m.resumes[resumeID]
	if !ok {
		return nil, &NotFoundError{Kind: KindResume, ID: resumeID}
	}
	out := make([]types.Section, 0, len(parent.children))
	for _, id := range parent.children {
		out = append(out, m.sections[id].rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i].Order, out[i].ID, out[j].Order, out[j].ID) })
	return out, nil
}

func (m *Memory) UpdateSection(_ context.Context, s *types.Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.sections[s.ID]
	if !ok {
		return &NotFoundError{Kind: KindSection, ID: s.ID}
	}
	node.rec.Title = s.Title
	node.rec.SectionType = s.SectionType
	node.rec.VariantName = s.VariantName
	node.rec.IsEnabled = s.IsEnabled
	s.Order = node.rec.Order
	s.ResumeID = node.rec.ResumeID
	m.touch(node.rec.ResumeID)
	return nil
}

func (m *Memory) DeleteSection(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.sections[id]
	if !ok {
		return &NotFoundError{Kind: KindSection, ID: id}
	}
	resumeID := node.rec.ResumeID
	parent := m.resumes[resumeID]
	parent.children = without(parent.children, id)
	m.dropSection(id)
	m.compactSections(parent)
	m.touch(resumeID)
	return nil
}

// -----------------------------------------------------------------------------
// Items
// -----------------------------------------------------------------------------

func (m *Memory) CreateItem(_ context.Context, it *types.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	parent, ok := m.sections[it.SectionID]
	if !ok {
		return &NotFoundError{Kind: KindSection, ID: it.SectionID}
	}
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	if _, exists := m.items[it.ID]; exists {
		return &ConflictError{Kind: KindItem, ID: it.ID, Message: "already exists"}
	}
	it.Order = len(parent.children)

	rec := *it
	rec.SubItems = nil
	m.items[it.ID] = &itemNode{rec: rec}
	parent.children = append(parent.children, it.ID)
	m.touch(parent.rec.ResumeID)
	return nil
}

func (m *Memory) GetItem(_ context.Context, id uuid.UUID) (*types.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.items[id]
	if !ok {
		return nil, &NotFoundError{Kind: KindItem, ID: id}
	}
	rec := node.rec
	return &rec, nil
}

func (m *Memory) ListItems(_ context.Context, sectionID uuid.UUID) ([]types.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	parent, ok := m.sections[sectionID]
	if !ok {
		return nil, &NotFoundError{Kind: KindSection, ID: sectionID}
	}
	out := make([]types.Item, 0, len(parent.children))
	for _, id := range parent.children {
		out = append(out, m.items[id].rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i].Order, out[i].ID, out[j].Order, out[j].ID) })
	return out, nil
}

func (m *Memory) UpdateItem(_ context.Context, it *types.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.items[it.ID]
	if !ok {
		return &NotFoundError{Kind: KindItem, ID: it.ID}
	}
	node.rec.Content = it.Content
	node.rec.Subtitle = it.Subtitle
	node.rec.DateRange = it.DateRange
	node.rec.Location = it.Location
	node.rec.IsIncluded = it.IsIncluded
	it.Order = node.rec.Order
	it.SectionID = node.rec.SectionID
	m.touchSection(node.rec.SectionID)
	return nil
}

func (m *Memory) DeleteItem(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.items[id]
	if !ok {
		return &NotFoundError{Kind: KindItem, ID: id}
	}
	parent := m.sections[node.rec.SectionID]
	parent.children = without(parent.children, id)
	m.dropItem(id)
	m.compactItems(parent)
	m.touch(parent.rec.ResumeID)
	return nil
}

// -----------------------------------------------------------------------------
// Sub-items
// -----------------------------------------------------------------------------

func (m *Memory) CreateSubItem(_ context.Context, sub *types.SubItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	parent, ok := m.items[sub.ItemID]
	if !ok {
		return &NotFoundError{Kind: KindItem, ID: sub.ItemID}
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if _, exists := m.subItems[sub.ID]; exists {
		return &ConflictError{Kind: KindSubItem, ID: sub.ID, Message: "already exists"}
	}
	sub.Order = len(parent.children)

	rec := *sub
	m.subItems[sub.ID] = &rec
	parent.children = append(parent.children, sub.ID)
	m.touchSection(parent.rec.SectionID)
	return nil
}

func (m *Memory) GetSubItem(_ context.Context, id uuid.UUID) (*types.SubItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.subItems[id]
	if !ok {
		return nil, &NotFoundError{Kind: KindSubItem, ID: id}
	}
	rec := *sub
	return &rec, nil
}

func (m *Memory) ListSubItems(_ context.Context, itemID uuid.UUID) ([]types.SubItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	parent, ok := m.items[itemID]
	if !ok {
		return nil, &NotFoundError{Kind: KindItem, ID: itemID}
	}
	return m.sortedSubItems(parent), nil
}

func (m *Memory) UpdateSubItem(_ context.Context, sub *types.SubItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.subItems[sub.ID]
	if !ok {
		return &NotFoundError{Kind: KindSubItem, ID: sub.ID}
	}
	rec.Content = sub.Content
	rec.IsIncluded = sub.IsIncluded
	sub.Order = rec.Order
	sub.ItemID = rec.ItemID
	if parent, ok := m.items[rec.ItemID]; ok {
		m.touchSection(parent.rec.SectionID)
	}
	return nil
}

func (m *Memory) DeleteSubItem(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.subItems[id]
	if !ok {
		return &NotFoundError{Kind: KindSubItem, ID: id}
	}
	parent := m.items[rec.ItemID]
	parent.children = without(parent.children, id)
	delete(m.subItems, id)
	for i, sub := range m.sortedSubItems(parent) {
		m.subItems[sub.ID].Order = i
	}
	m.touchSection(parent.rec.SectionID)
	return nil
}

// -----------------------------------------------------------------------------
// Tree and ordering
// -----------------------------------------------------------------------------

func (m *Memory) Snapshot(_ context.Context, resumeID uuid.UUID) (*types.Resume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.resumes[resumeID]
	if !ok {
		return nil, &NotFoundError{Kind: KindResume, ID: resumeID}
	}
	out := node.rec
	out.Sections = make([]types.Section, 0, len(node.children))
	for _, sectionID := range node.children {
		sn := m.sections[sectionID]
		section := sn.rec
		section.Items = make([]types.Item, 0, len(sn.children))
		for _, itemID := range sn.children {
			in := m.items[itemID]
			item := in.rec
			item.SubItems = m.sortedSubItems(in)
			section.Items = append(section.Items, item)
		}
		out.Sections = append(out.Sections, section)
	}
	return out.Sorted(), nil
}

func (m *Memory) UpdateOrders(_ context.Context, parent Kind, parentID uuid.UUID, updates []OrderUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	children, err := m.childrenOf(parent, parentID)
	if err != nil {
		return err
	}
	childKind, _ := parent.ChildKind()

	// Validate the whole batch before touching anything.
	final := make(map[uuid.UUID]int, len(children))
	for _, id := range children {
		final[id] = m.orderOf(childKind, id)
	}
	for _, u := range updates {
		if _, ok := final[u.ID]; !ok {
			return &NotFoundError{Kind: childKind, ID: u.ID}
		}
		if u.Order < 0 {
			return &ConflictError{Kind: childKind, ID: u.ID, Message: fmt.Sprintf("negative order %d", u.Order)}
		}
		final[u.ID] = u.Order
	}
	seen := make(map[int]uuid.UUID, len(final))
	for id, order := range final {
		if other, dup := seen[order]; dup {
			return &ConflictError{Kind: childKind, ID: id, Message: fmt.Sprintf("order %d already used by %s", order, other)}
		}
		seen[order] = id
	}

	for id, order := range final {
		m.setOrder(childKind, id, order)
	}
	m.touchParent(parent, parentID)
	return nil
}

// -----------------------------------------------------------------------------
// Job postings and matches
// -----------------------------------------------------------------------------

func (m *Memory) CreateJobPosting(_ context.Context, p *types.JobPosting) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if _, exists := m.postings[p.ID]; exists {
		return &ConflictError{Kind: KindJobPosting, ID: p.ID, Message: "already exists"}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now().UTC()
	}
	rec := *p
	m.postings[p.ID] = &rec
	return nil
}

func (m *Memory) GetJobPosting(_ context.Context, id uuid.UUID) (*types.JobPosting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.postings[id]
	if !ok {
		return nil, &NotFoundError{Kind: KindJobPosting, ID: id}
	}
	rec := *p
	return &rec, nil
}

func (m *Memory) ListJobPostings(_ context.Context) ([]types.JobPosting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.JobPosting, 0, len(m.postings))
	for _, p := range m.postings {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (m *Memory) UpdateJobPosting(_ context.Context, p *types.JobPosting) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.postings[p.ID]
	if !ok {
		return &NotFoundError{Kind: KindJobPosting, ID: p.ID}
	}
	rec.Title = p.Title
	rec.Company = p.Company
	rec.Description = p.Description
	rec.Requirements = p.Requirements
	p.CreatedAt = rec.CreatedAt
	return nil
}

func (m *Memory) DeleteJobPosting(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.postings[id]; !ok {
		return &NotFoundError{Kind: KindJobPosting, ID: id}
	}
	for key := range m.matches {
		if key.postingID == id {
			delete(m.matches, key)
		}
	}
	delete(m.postings, id)
	return nil
}

func (m *Memory) SaveMatch(_ context.Context, match *types.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.resumes[match.ResumeID]; !ok {
		return &NotFoundError{Kind: KindResume, ID: match.ResumeID}
	}
	if _, ok := m.postings[match.JobPostingID]; !ok {
		return &NotFoundError{Kind: KindJobPosting, ID: match.JobPostingID}
	}
	key := matchKey{resumeID: match.ResumeID, postingID: match.JobPostingID}
	if existing, ok := m.matches[key]; ok {
		match.ID = existing.ID
	} else if match.ID == uuid.Nil {
		match.ID = uuid.New()
	}
	match.CreatedAt = m.now().UTC()

	rec := *match
	rec.FoundKeywords = append([]string(nil), match.FoundKeywords...)
	rec.SuggestedSections = append([]types.SectionType(nil), match.SuggestedSections...)
	m.matches[key] = &rec
	return nil
}

func (m *Memory) ListMatches(_ context.Context, resumeID uuid.UUID) ([]types.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.resumes[resumeID]; !ok {
		return nil, &NotFoundError{Kind: KindResume, ID: resumeID}
	}
	out := []types.Match{}
	for key, match := range m.matches {
		if key.resumeID == resumeID {
			out = append(out, *match)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchScore != out[j].MatchScore {
			return out[i].MatchScore > out[j].MatchScore
		}
		return out[i].JobPostingID.String() < out[j].JobPostingID.String()
	})
	return out, nil
}

// -----------------------------------------------------------------------------
// Helpers (callers hold m.mu)
// -----------------------------------------------------------------------------

func (m *Memory) dropSection(id uuid.UUID) {
	node, ok := m.sections[id]
	if !ok {
		return
	}
	for _, itemID := range node.children {
		m.dropItem(itemID)
	}
	delete(m.sections, id)
}

func (m *Memory) dropItem(id uuid.UUID) {
	node, ok := m.items[id]
	if !ok {
		return
	}
	for _, subID := range node.children {
		delete(m.subItems, subID)
	}
	delete(m.items, id)
}

func (m *Memory) compactSections(parent *resumeNode) {
	recs := make([]*types.Section, 0, len(parent.children))
	for _, id := range parent.children {
		recs = append(recs, &m.sections[id].rec)
	}
	sort.SliceStable(recs, func(i, j int) bool { return less(recs[i].Order, recs[i].ID, recs[j].Order, recs[j].ID) })
	for i, rec := range recs {
		rec.Order = i
	}
}

func (m *Memory) compactItems(parent *sectionNode) {
	recs := make([]*types.Item, 0, len(parent.children))
	for _, id := range parent.children {
		recs = append(recs, &m.items[id].rec)
	}
	sort.SliceStable(recs, func(i, j int) bool { return less(recs[i].Order, recs[i].ID, recs[j].Order, recs[j].ID) })
	for i, rec := range recs {
		rec.Order = i
	}
}

func (m *Memory) sortedSubItems(parent *itemNode) []types.SubItem {
	out := make([]types.SubItem, 0, len(parent.children))
	for _, id := range parent.children {
		out = append(out, *m.subItems[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i].Order, out[i].ID, out[j].Order, out[j].ID) })
	return out
}

func (m *Memory) childrenOf(parent Kind, parentID uuid.UUID) ([]uuid.UUID, error) {
	switch parent {
	case KindResume:
		if node, ok := m.resumes[parentID]; ok {
			return node.children, nil
		}
	case KindSection:
		if node, ok := m.sections[parentID]; ok {
			return node.children, nil
		}
	case KindItem:
		if node, ok := m.items[parentID]; ok {
			return node.children, nil
		}
	default:
		return nil, fmt.Errorf("%s cannot have ordered children", parent)
	}
	return nil, &NotFoundError{Kind: parent, ID: parentID}
}

func (m *Memory) orderOf(kind Kind, id uuid.UUID) int {
	switch kind {
	case KindSection:
		return m.sections[id].rec.Order
	case KindItem:
		return m.items[id].rec.Order
	default:
		return m.subItems[id].Order
	}
}

func (m *Memory) setOrder(kind Kind, id uuid.UUID, order int) {
	switch kind {
	case KindSection:
		m.sections[id].rec.Order = order
	case KindItem:
		m.items[id].rec.Order = order
	default:
		m.subItems[id].Order = order
	}
}

func (m *Memory) touchParent(parent Kind, parentID uuid.UUID) {
	switch parent {
	case KindResume:
		m.touch(parentID)
	case KindSection:
		m.touchSection(parentID)
	case KindItem:
		if node, ok := m.items[parentID]; ok {
			m.touchSection(node.rec.SectionID)
		}
	}
}

func (m *Memory) touchSection(sectionID uuid.UUID) {
	if node, ok := m.sections[sectionID]; ok {
		m.touch(node.rec.ResumeID)
	}
}

func (m *Memory) touch(resumeID uuid.UUID) {
	if node, ok := m.resumes[resumeID]; ok {
		node.rec.UpdatedAt = m.now().UTC()
	}
}

func without(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, other := range ids {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}

func less(oi int, idi uuid.UUID, oj int, idj uuid.UUID) bool {
	if oi != oj {
		return oi < oj
	}
	return idi.String() < idj.String()
}
