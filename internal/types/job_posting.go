//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// JobPosting is a pasted job advertisement, independent of any resume
type JobPosting struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Text returns the description and requirements joined for keyword extraction.
func (p *JobPosting) Text() string {
	if p == nil {
		return ""
	}
	if p.Requirements == "" {
		return p.Description
	}
	return p.Description + "\n" + p.Requirements
}

// Analysis is the advisory result of comparing a resume against a job posting
type Analysis struct {
	FoundKeywords       []string      `json:"found_keywords"`
	RecommendedSections []SectionType `json:"recommended_sections"`
	MatchScore          float64       `json:"match_score"`
}

// Match records the last analysis of a resume against a posting.
// There is at most one Match per (resume, posting) pair.
type Match struct {
	ID                uuid.UUID     `json:"id"`
	ResumeID          uuid.UUID     `json:"resume_id"`
	JobPostingID      uuid.UUID     `json:"job_posting_id"`
	MatchScore        float64       `json:"match_score"`
	FoundKeywords     []string      `json:"found_keywords"`
	SuggestedSections []SectionType `json:"suggested_sections"`
	CreatedAt         time.Time     `json:"created_at"`
}
