package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintResumeOutline(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	r := &types.Resume{
		Title: "Jane Doe",
		Sections: []types.Section{
			{Title: "Skills", SectionType: types.SectionSkills, Order: 1, IsEnabled: false},
			{
				Title: "Experience", SectionType: types.SectionExperience, Order: 0, IsEnabled: true,
				Items: []types.Item{
					{Subtitle: "Engineer at Acme", IsIncluded: true},
					{Content: "Intern", IsIncluded: false},
				},
			},
		},
	}

	p.PrintResumeOutline(r)
	output := buf.String()

	assert.Contains(t, output, "RESUME OUTLINE")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "• Experience [experience]")
	assert.Contains(t, output, "○ Skills [skills]")
	assert.Contains(t, output, "- Engineer at Acme")
	assert.Contains(t, output, "x Intern")
	assert.Less(t, strings.Index(output, "Experience"), strings.Index(output, "Skills"))
}

func TestPrintResumeOutline_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintResumeOutline(nil)
	assert.Empty(t, buf.String())
}

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	posting := &types.JobPosting{Title: "Backend Engineer", Company: "Acme"}
	a := &types.Analysis{
		FoundKeywords:       []string{"python", "docker"},
		RecommendedSections: []types.SectionType{types.SectionProjects},
		MatchScore:          66.7,
	}

	p.PrintAnalysis(posting, a)
	output := buf.String()

	assert.Contains(t, output, "KEYWORD MATCH")
	assert.Contains(t, output, "Backend Engineer")
	assert.Contains(t, output, "66.7%")
	assert.Contains(t, output, "python, docker")
	assert.Contains(t, output, "• projects")
}

func TestPrintAnalysis_NoKeywords(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintAnalysis(nil, &types.Analysis{})

	assert.Contains(t, buf.String(), "No matching keywords")
	assert.Contains(t, buf.String(), "0.0%")
}

func TestPrintMatches(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	id := uuid.New()
	p.PrintMatches([]types.Match{{JobPostingID: id, MatchScore: 42.5}}, map[string]string{id.String(): "SRE"})

	assert.Contains(t, buf.String(), "JOB MATCHES")
	assert.Contains(t, buf.String(), "42.5%")
	assert.Contains(t, buf.String(), "SRE")
}

func TestPrintMatches_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintMatches(nil, nil)
	assert.Contains(t, buf.String(), "NO MATCHES RECORDED")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TEST", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}
