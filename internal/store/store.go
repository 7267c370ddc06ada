// Package store defines the persistence boundary for resume content and job postings.
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/types"
)

// Kind names an entity kind. Resume, Section and Item double as parent kinds
// for ordering: a Resume orders its sections, a Section its items, an Item
// its sub-items.
type Kind string

// Entity kinds
const (
	KindResume     Kind = "resume"
	KindSection    Kind = "section"
	KindItem       Kind = "item"
	KindSubItem    Kind = "subitem"
	KindJobPosting Kind = "job_posting"
	KindMatch      Kind = "match"
)

// ChildKind returns the kind of the children ordered under a parent kind.
func (k Kind) ChildKind() (Kind, bool) {
	switch k {
	case KindResume:
		return KindSection, true
	case KindSection:
		return KindItem, true
	case KindItem:
		return KindSubItem, true
	default:
		return "", false
	}
}

// OrderUpdate assigns a new order to one child
type OrderUpdate struct {
	ID    uuid.UUID
	Order int
}

// Store is the create/read/update/delete capability the core consumes.
//
// Create methods append: the store assigns Order = number of existing
// siblings, and fills ID and timestamps when they are zero. Update methods
// merge scalar fields only; Order and parent ids are never changed by an
// update. Delete methods cascade to the whole subtree and compact the
// remaining siblings so order stays dense.
type Store interface {
	CreateResume(ctx context.Context, r *types.Resume) error
	GetResume(ctx context.Context, id uuid.UUID) (*types.Resume, error)
	ListResumes(ctx context.Context) ([]types.Resume, error)
	UpdateResume(ctx context.Context, r *types.Resume) error
	DeleteResume(ctx context.Context, id uuid.UUID) error

	CreateSection(ctx context.Context, s *types.Section) error
	GetSection(ctx context.Context, id uuid.UUID) (*types.Section, error)
	ListSections(ctx context.Context, resumeID uuid.UUID) ([]types.Section, error)
	UpdateSection(ctx context.Context, s *types.Section) error
	DeleteSection(ctx context.Context, id uuid.UUID) error

	CreateItem(ctx context.Context, it *types.Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*types.Item, error)
	ListItems(ctx context.Context, sectionID uuid.UUID) ([]types.Item, error)
	UpdateItem(ctx context.Context, it *types.Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error

	CreateSubItem(ctx context.Context, sub *types.SubItem) error
	GetSubItem(ctx context.Context, id uuid.UUID) (*types.SubItem, error)
	ListSubItems(ctx context.Context, itemID uuid.UUID) ([]types.SubItem, error)
	UpdateSubItem(ctx context.Context, sub *types.SubItem) error
	DeleteSubItem(ctx context.Context, id uuid.UUID) error

	// Snapshot reads a resume with its whole subtree as one consistent view,
	// children sorted by order.
	Snapshot(ctx context.Context, resumeID uuid.UUID) (*types.Resume, error)

	// UpdateOrders applies every update or none of them.
	UpdateOrders(ctx context.Context, parent Kind, parentID uuid.UUID, updates []OrderUpdate) error

	CreateJobPosting(ctx context.Context, p *types.JobPosting) error
	GetJobPosting(ctx context.Context, id uuid.UUID) (*types.JobPosting, error)
	ListJobPostings(ctx context.Context) ([]types.JobPosting, error)
	UpdateJobPosting(ctx context.Context, p *types.JobPosting) error
	DeleteJobPosting(ctx context.Context, id uuid.UUID) error

	// SaveMatch inserts or replaces the match for (ResumeID, JobPostingID).
	SaveMatch(ctx context.Context, m *types.Match) error
	ListMatches(ctx context.Context, resumeID uuid.UUID) ([]types.Match, error)
}
