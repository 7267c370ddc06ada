package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// -----------------------------------------------------------------------------
// Job Posting Methods
// -----------------------------------------------------------------------------

const jobPostingColumns = `id, title, company, description, requirements, created_at`

// CreateJobPosting inserts a job posting
func (db *DB) CreateJobPosting(ctx context.Context, p *types.JobPosting) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO job_postings (id, title, company, description, requirements)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		p.ID, p.Title, p.Company, p.Description, p.Requirements,
	).Scan(&p.CreatedAt)
	return mapError(err, target{kind: store.KindJobPosting, id: p.ID})
}

// GetJobPosting retrieves a job posting by its ID
func (db *DB) GetJobPosting(ctx context.Context, id uuid.UUID) (*types.JobPosting, error) {
	var p types.JobPosting
	err := db.pool.QueryRow(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE id = $1`, id,
	).Scan(&p.ID, &p.Title, &p.Company, &p.Description, &p.Requirements, &p.CreatedAt)
	if err != nil {
		return nil, mapError(err, target{kind: store.KindJobPosting, id: id})
	}
	return &p, nil
}

// ListJobPostings returns every posting, newest first
func (db *DB) ListJobPostings(ctx context.Context) ([]types.JobPosting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings ORDER BY created_at DESC, id::text`)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	postings := []types.JobPosting{}
	for rows.Next() {
		var p types.JobPosting
		if err := rows.Scan(&p.ID, &p.Title, &p.Company, &p.Description, &p.Requirements, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

// UpdateJobPosting writes the editable fields of a posting
func (db *DB) UpdateJobPosting(ctx context.Context, p *types.JobPosting) error {
	err := db.pool.QueryRow(ctx,
		`UPDATE job_postings SET title = $2, company = $3, description = $4, requirements = $5
		 WHERE id = $1
		 RETURNING created_at`,
		p.ID, p.Title, p.Company, p.Description, p.Requirements,
	).Scan(&p.CreatedAt)
	return mapError(err, target{kind: store.KindJobPosting, id: p.ID})
}

// DeleteJobPosting removes a posting and its match results
func (db *DB) DeleteJobPosting(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM job_postings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job posting: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &store.NotFoundError{Kind: store.KindJobPosting, ID: id}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Match Methods
// -----------------------------------------------------------------------------

// SaveMatch upserts the match row for (resume, posting)
func (db *DB) SaveMatch(ctx context.Context, m *types.Match) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	suggested := make([]string, len(m.SuggestedSections))
	for i, st := range m.SuggestedSections {
		suggested[i] = string(st)
	}
	keywords := m.FoundKeywords
	if keywords == nil {
		keywords = []string{}
	}

	err := db.pool.QueryRow(ctx,
		`INSERT INTO resume_job_matches (id, resume_id, job_posting_id, match_score, found_keywords, suggested_sections)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (resume_id, job_posting_id) DO UPDATE SET
		     match_score = EXCLUDED.match_score,
		     found_keywords = EXCLUDED.found_keywords,
		     suggested_sections = EXCLUDED.suggested_sections,
		     created_at = NOW()
		 RETURNING id, created_at`,
		m.ID, m.ResumeID, m.JobPostingID, m.MatchScore, keywords, suggested,
	).Scan(&m.ID, &m.CreatedAt)
	if err == nil {
		return nil
	}
	mapped := mapError(err, target{kind: store.KindMatch, id: m.ID})
	if !store.IsNotFound(mapped) {
		return mapped
	}
	// Either side of the pair may be missing; report the resume first.
	if _, gErr := db.GetResume(ctx, m.ResumeID); gErr != nil {
		return gErr
	}
	return &store.NotFoundError{Kind: store.KindJobPosting, ID: m.JobPostingID}
}

// ListMatches returns the stored matches of a resume, best first
func (db *DB) ListMatches(ctx context.Context, resumeID uuid.UUID) ([]types.Match, error) {
	if _, err := db.GetResume(ctx, resumeID); err != nil {
		return nil, err
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, resume_id, job_posting_id, match_score, found_keywords, suggested_sections, created_at
		 FROM resume_job_matches WHERE resume_id = $1
		 ORDER BY match_score DESC, job_posting_id::text`,
		resumeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := []types.Match{}
	for rows.Next() {
		var m types.Match
		var suggested []string
		if err := rows.Scan(&m.ID, &m.ResumeID, &m.JobPostingID, &m.MatchScore, &m.FoundKeywords, &suggested, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		m.SuggestedSections = make([]types.SectionType, len(suggested))
		for i, s := range suggested {
			m.SuggestedSections[i] = types.SectionType(s)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
