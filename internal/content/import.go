package content

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// ImportResume creates a resume with its full tree from a JSON document.
// Every node goes through the normal append path, so orders follow array
// positions. If any node fails the partially created resume is removed.
func (s *Service) ImportResume(ctx context.Context, data []byte) (*types.Resume, error) {
	if err := schemas.ValidateResumeJSON(data); err != nil {
		return nil, err
	}
	var doc types.ResumeImport
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &types.ValidationError{Field: "(root)", Message: err.Error()}
	}

	r, err := s.CreateResume(ctx, &doc.CreateResumeRequest)
	if err != nil {
		return nil, err
	}
	if err := s.importSections(ctx, r, doc.Sections); err != nil {
		if delErr := s.store.DeleteResume(ctx, r.ID); delErr != nil {
			s.log.WithError(delErr).WithField("resume_id", r.ID).Error("failed to remove partial import")
		}
		return nil, err
	}

	sections, items, subItems := doc.CountNodes()
	s.log.WithFields(logrus.Fields{
		"resume_id": r.ID,
		"sections":  sections,
		"items":     items,
		"subitems":  subItems,
	}).Info("resume imported")
	return s.store.Snapshot(ctx, r.ID)
}

func (s *Service) importSections(ctx context.Context, r *types.Resume, sections []types.SectionImport) error {
	for si := range sections {
		sec, err := s.AddSection(ctx, r.ID, &sections[si].CreateSectionRequest)
		if err != nil {
			return fmt.Errorf("sections[%d]: %w", si, err)
		}
		for ii := range sections[si].Items {
			in := &sections[si].Items[ii]
			it, err := s.AddItem(ctx, sec.ID, &in.CreateItemRequest)
			if err != nil {
				return fmt.Errorf("sections[%d].items[%d]: %w", si, ii, err)
			}
			for bi := range in.SubItems {
				if _, err := s.AddSubItem(ctx, it.ID, &in.SubItems[bi]); err != nil {
					return fmt.Errorf("sections[%d].items[%d].subitems[%d]: %w", si, ii, bi, err)
				}
			}
		}
	}
	return nil
}
