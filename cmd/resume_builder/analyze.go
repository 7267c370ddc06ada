package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/matching"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/types"
)

var (
	analyzeFile     string
	analyzeResumeID string
	analyzeJobs     []string
	analyzeOutline  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a resume against job posting text files",
	Long: "Extracts keywords from each job posting, reports which appear in the resume's included content, " +
		"and suggests section types to add. Results are printed, not stored.",
	RunE: runAnalyze,
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List stored match scores for a resume",
	RunE:  runMatches,
}

var matchesResumeID string

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "Path to a resume import JSON document")
	analyzeCmd.Flags().StringVar(&analyzeResumeID, "resume-id", "", "Resume ID to load from the database")
	analyzeCmd.Flags().StringSliceVarP(&analyzeJobs, "job", "j", nil, "Job posting text or HTML file (repeatable)")
	analyzeCmd.Flags().BoolVar(&analyzeOutline, "outline", false, "Print the resume outline before the results")
	_ = analyzeCmd.MarkFlagRequired("job")

	matchesCmd.Flags().StringVar(&matchesResumeID, "resume-id", "", "Resume ID (required)")
	_ = matchesCmd.MarkFlagRequired("resume-id")

	rootCmd.AddCommand(analyzeCmd, matchesCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	resume, err := a.loadResume(cmd.Context(), analyzeFile, analyzeResumeID)
	if err != nil {
		return err
	}
	postings, err := readPostings(analyzeJobs)
	if err != nil {
		return err
	}

	analyses, err := matching.AnalyzeAll(cmd.Context(), resume, postings, a.cfg.Match.Concurrency)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	if analyzeOutline {
		printer.PrintResumeOutline(resume)
	}
	for i := range analyses {
		printer.PrintAnalysis(postings[i], &analyses[i])
	}
	return nil
}

// readPostings loads each file as a posting titled by its base name.
func readPostings(paths []string) ([]*types.JobPosting, error) {
	postings := make([]*types.JobPosting, 0, len(paths))
	for _, p := range paths {
		text, err := ingestion.ReadPostingFile(p)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("job posting file is empty: %s", p)
		}
		postings = append(postings, &types.JobPosting{
			Title:       strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)),
			Description: text,
		})
	}
	return postings, nil
}

func runMatches(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	id, err := uuid.Parse(matchesResumeID)
	if err != nil {
		return fmt.Errorf("invalid resume id %q: %w", matchesResumeID, err)
	}
	ctx := cmd.Context()
	database, err := a.requireDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	matches, err := database.ListMatches(ctx, id)
	if err != nil {
		return err
	}
	titles := make(map[string]string, len(matches))
	for _, m := range matches {
		if p, err := database.GetJobPosting(ctx, m.JobPostingID); err == nil {
			titles[m.JobPostingID.String()] = p.Title
		}
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintMatches(matches, titles)
	return nil
}
