package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/content"
	"github.com/jonathan/resume-builder/internal/observability"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a resume document into the database",
	Long:  "Validates a resume JSON document against the resume schema and stores it as a new resume.",
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Path to a resume import JSON document (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	data, err := os.ReadFile(importFile)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}

	ctx := cmd.Context()
	database, err := a.requireDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	resume, err := content.NewService(database, a.log("content")).ImportResume(ctx, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported resume %s\n", resume.ID)
	observability.NewPrinter(cmd.OutOrStdout()).PrintResumeOutline(resume)
	return nil
}
