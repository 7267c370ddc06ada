// Package content is the resume editing surface: validated create, update,
// toggle and delete operations over the store.
package content

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// Service validates requests before they reach the store. Store errors are
// returned unchanged.
type Service struct {
	store store.Store
	log   *logrus.Entry
}

// NewService creates a Service. A nil log discards output.
func NewService(s store.Store, log *logrus.Entry) *Service {
	if log == nil {
		log = observability.Discard()
	}
	return &Service{store: s, log: log}
}

// Store returns the underlying store.
func (s *Service) Store() store.Store {
	return s.store
}

func (s *Service) CreateResume(ctx context.Context, req *types.CreateResumeRequest) (*types.Resume, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r := &types.Resume{
		Title:    req.Title,
		IsActive: types.BoolOr(req.IsActive, true),
		Sections: []types.Section{},
	}
	if err := s.store.CreateResume(ctx, r); err != nil {
		return nil, err
	}
	s.log.WithField("resume_id", r.ID).Info("resume created")
	return r, nil
}

func (s *Service) GetResume(ctx context.Context, id uuid.UUID) (*types.Resume, error) {
	return s.store.GetResume(ctx, id)
}

func (s *Service) ListResumes(ctx context.Context) ([]types.Resume, error) {
	return s.store.ListResumes(ctx)
}

func (s *Service) UpdateResume(ctx context.Context, id uuid.UUID, patch *types.ResumePatch) (*types.Resume, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	r, err := s.store.GetResume(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(r)
	if err := s.store.UpdateResume(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) DeleteResume(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteResume(ctx, id); err != nil {
		return err
	}
	s.log.WithField("resume_id", id).Info("resume deleted")
	return nil
}

// Tree returns the resume with its whole subtree, children sorted by order.
func (s *Service) Tree(ctx context.Context, resumeID uuid.UUID) (*types.Resume, error) {
	return s.store.Snapshot(ctx, resumeID)
}

// AddSection appends a section to the end of the resume.
func (s *Service) AddSection(ctx context.Context, resumeID uuid.UUID, req *types.CreateSectionRequest) (*types.Section, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	st, err := types.ParseSectionType(req.SectionType)
	if err != nil {
		return nil, err
	}
	sec := &types.Section{
		ResumeID:    resumeID,
		Title:       req.Title,
		SectionType: st,
		VariantName: strings.TrimSpace(req.VariantName),
		IsEnabled:   types.BoolOr(req.IsEnabled, true),
		Items:       []types.Item{},
	}
	if err := s.store.CreateSection(ctx, sec); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"resume_id": resumeID, "section_id": sec.ID, "order": sec.Order}).Debug("section added")
	return sec, nil
}

func (s *Service) UpdateSection(ctx context.Context, id uuid.UUID, patch *types.SectionPatch) (*types.Section, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	sec, err := s.store.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(sec)
	if err := s.store.UpdateSection(ctx, sec); err != nil {
		return nil, err
	}
	return sec, nil
}

// ToggleSection flips IsEnabled.
func (s *Service) ToggleSection(ctx context.Context, id uuid.UUID) (*types.Section, error) {
	sec, err := s.store.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}
	enabled := !sec.IsEnabled
	return s.UpdateSection(ctx, id, &types.SectionPatch{IsEnabled: &enabled})
}

func (s *Service) DeleteSection(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteSection(ctx, id)
}

// AddItem appends an item to the end of the section.
func (s *Service) AddItem(ctx context.Context, sectionID uuid.UUID, req *types.CreateItemRequest) (*types.Item, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	it := &types.Item{
		SectionID:  sectionID,
		Content:    req.Content,
		Subtitle:   strings.TrimSpace(req.Subtitle),
		DateRange:  strings.TrimSpace(req.DateRange),
		Location:   strings.TrimSpace(req.Location),
		IsIncluded: types.BoolOr(req.IsIncluded, true),
		SubItems:   []types.SubItem{},
	}
	if err := s.store.CreateItem(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Service) UpdateItem(ctx context.Context, id uuid.UUID, patch *types.ItemPatch) (*types.Item, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	it, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(it)
	if err := s.store.UpdateItem(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// ToggleItem flips IsIncluded.
func (s *Service) ToggleItem(ctx context.Context, id uuid.UUID) (*types.Item, error) {
	it, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	included := !it.IsIncluded
	return s.UpdateItem(ctx, id, &types.ItemPatch{IsIncluded: &included})
}

func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteItem(ctx, id)
}

// AddSubItem appends a bullet to the end of the item.
func (s *Service) AddSubItem(ctx context.Context, itemID uuid.UUID, req *types.CreateSubItemRequest) (*types.SubItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sub := &types.SubItem{
		ItemID:     itemID,
		Content:    req.Content,
		IsIncluded: types.BoolOr(req.IsIncluded, true),
	}
	if err := s.store.CreateSubItem(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) UpdateSubItem(ctx context.Context, id uuid.UUID, patch *types.SubItemPatch) (*types.SubItem, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	sub, err := s.store.GetSubItem(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(sub)
	if err := s.store.UpdateSubItem(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ToggleSubItem flips IsIncluded.
func (s *Service) ToggleSubItem(ctx context.Context, id uuid.UUID) (*types.SubItem, error) {
	sub, err := s.store.GetSubItem(ctx, id)
	if err != nil {
		return nil, err
	}
	included := !sub.IsIncluded
	return s.UpdateSubItem(ctx, id, &types.SubItemPatch{IsIncluded: &included})
}

func (s *Service) DeleteSubItem(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteSubItem(ctx, id)
}
