package content

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/types"
)

// CreateJobPosting stores a posting with its pasted text normalized.
func (s *Service) CreateJobPosting(ctx context.Context, req *types.CreateJobPostingRequest) (*types.JobPosting, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p := &types.JobPosting{
		Title:        req.Title,
		Company:      req.Company,
		Description:  ingestion.CleanPosting(req.Description),
		Requirements: ingestion.CleanPosting(req.Requirements),
	}
	if err := s.store.CreateJobPosting(ctx, p); err != nil {
		return nil, err
	}
	s.log.WithField("job_posting_id", p.ID).Info("job posting created")
	return p, nil
}

func (s *Service) GetJobPosting(ctx context.Context, id uuid.UUID) (*types.JobPosting, error) {
	return s.store.GetJobPosting(ctx, id)
}

func (s *Service) ListJobPostings(ctx context.Context) ([]types.JobPosting, error) {
	return s.store.ListJobPostings(ctx)
}

func (s *Service) UpdateJobPosting(ctx context.Context, id uuid.UUID, patch *types.JobPostingPatch) (*types.JobPosting, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	p, err := s.store.GetJobPosting(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(p)
	p.Description = ingestion.CleanPosting(p.Description)
	p.Requirements = ingestion.CleanPosting(p.Requirements)
	if err := s.store.UpdateJobPosting(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeleteJobPosting(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteJobPosting(ctx, id)
}

// ListMatches returns the stored analyses of a resume, best score first.
func (s *Service) ListMatches(ctx context.Context, resumeID uuid.UUID) ([]types.Match, error) {
	if _, err := s.store.GetResume(ctx, resumeID); err != nil {
		return nil, err
	}
	return s.store.ListMatches(ctx, resumeID)
}

// RecordMatch persists an analysis as the current match of resume and posting.
func (s *Service) RecordMatch(ctx context.Context, resumeID, postingID uuid.UUID, a types.Analysis) (*types.Match, error) {
	m := &types.Match{
		ResumeID:          resumeID,
		JobPostingID:      postingID,
		MatchScore:        a.MatchScore,
		FoundKeywords:     a.FoundKeywords,
		SuggestedSections: a.RecommendedSections,
	}
	if err := s.store.SaveMatch(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
