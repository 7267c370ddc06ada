package matching

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-builder/internal/types"
)

// sectionTriggers associates each section type with posting keywords that
// suggest the section is worth adding or strengthening.
var sectionTriggers = map[types.SectionType]map[string]bool{
	types.SectionPersonal: toSet(
		"contact", "email", "phone", "linkedin", "relocate", "relocation",
		"citizenship", "visa", "clearance",
	),
	types.SectionSummary: toSet(
		"summary", "profile", "objective", "communication", "leadership",
		"passionate", "motivated", "collaborative",
	),
	types.SectionExperience: toSet(
		"senior", "lead", "led", "managed", "management", "mentor", "mentoring",
		"production", "ownership", "professional", "industry", "delivered",
		"stakeholders",
	),
	types.SectionEducation: toSet(
		"degree", "bachelor", "master", "masters", "phd", "university",
		"college", "graduate", "computer", "science", "mathematics", "diploma",
	),
	types.SectionSkills: toSet(
		"python", "java", "javascript", "typescript", "golang", "rust", "ruby",
		"c++", "c#", "sql", "postgresql", "mysql", "mongodb", "redis", "docker",
		"kubernetes", "aws", "gcp", "azure", "terraform", "linux", "git",
		"react", "angular", "vue", "django", "flask", "spring", "node.js",
		"api", "apis", "rest", "graphql", "kafka", "spark", "excel", "tableau",
	),
	types.SectionProjects: toSet(
		"project", "projects", "portfolio", "github", "open", "source",
		"prototype", "prototypes", "hackathon", "side",
	),
	types.SectionCertifications: toSet(
		"certification", "certifications", "certified", "certificate",
		"license", "licensed", "pmp", "cissp", "cka", "ckad", "scrum",
	),
	types.SectionCustom: toSet(
		"volunteer", "volunteering", "publications", "publication", "awards",
		"languages", "patents",
	),
}

// Analyze compares resumeText against posting. present lists the section
// types the resume already has with included content; they are never
// recommended. Empty or unparseable postings score 0.
func Analyze(resumeText string, posting *types.JobPosting, present []types.SectionType) types.Analysis {
	candidates := Keywords(posting.Text())
	resumeKW := KeywordSet(resumeText)

	found := make([]string, 0, len(candidates))
	for _, kw := range candidates {
		if resumeKW[kw] {
			found = append(found, kw)
		}
	}

	return types.Analysis{
		FoundKeywords:       found,
		RecommendedSections: recommend(candidates, present),
		MatchScore:          score(len(found), len(candidates)),
	}
}

// AnalyzeResume analyzes the included content of resume against posting.
func AnalyzeResume(resume *types.Resume, posting *types.JobPosting) types.Analysis {
	filtered := resume.Filtered()
	return Analyze(filtered.PlainText(), posting, filtered.PresentSections())
}

// AnalyzeAll scores resume against every posting with at most limit
// analyses in flight. Results are in posting order.
func AnalyzeAll(ctx context.Context, resume *types.Resume, postings []*types.JobPosting, limit int) ([]types.Analysis, error) {
	filtered := resume.Filtered()
	text := filtered.PlainText()
	present := filtered.PresentSections()

	results := make([]types.Analysis, len(postings))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, p := range postings {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Analyze(text, p, present)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func recommend(candidates []string, present []types.SectionType) []types.SectionType {
	have := make(map[types.SectionType]bool, len(present))
	for _, t := range present {
		have[t] = true
	}
	out := make([]types.SectionType, 0)
	for _, t := range types.AllSectionTypes() {
		if have[t] {
			continue
		}
		triggers := sectionTriggers[t]
		for _, kw := range candidates {
			if triggers[kw] {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// score is 100*found/total rounded to one decimal, 0 when total is 0.
func score(found, total int) float64 {
	if total == 0 {
		return 0
	}
	raw := 100 * float64(found) / float64(total)
	return math.Min(100, math.Max(0, math.Round(raw*10)/10))
}
