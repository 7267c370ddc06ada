package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	compileFile     string
	compileResumeID string
	compileTemplate string
	compileOut      string
	renderOut       string
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a resume to LaTeX source",
	Long: "Compiles the enabled sections and included items of a resume into LaTeX. " +
		"The resume comes from an import document (--file) or the database (--resume-id).",
	RunE: runCompile,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Compile a resume and typeset it to PDF",
	Long:  "Compiles the resume to LaTeX and runs the configured engine (pdflatex by default) to produce a PDF.",
	RunE:  runRender,
}

func init() {
	for _, c := range []*cobra.Command{compileCmd, renderCmd} {
		c.Flags().StringVarP(&compileFile, "file", "f", "", "Path to a resume import JSON document")
		c.Flags().StringVar(&compileResumeID, "resume-id", "", "Resume ID to load from the database")
		c.Flags().StringVarP(&compileTemplate, "template", "t", "", "Path to a LaTeX template (overrides config)")
	}
	compileCmd.Flags().StringVarP(&compileOut, "out", "o", "", "Output .tex path (stdout when empty)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "resume.pdf", "Output .pdf path")

	rootCmd.AddCommand(compileCmd, renderCmd)
}

func runCompile(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	source, err := compileSource(cmd, a)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), compileOut, []byte(source))
}

func runRender(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	source, err := compileSource(cmd, a)
	if err != nil {
		return err
	}

	renderer, closeCache := a.renderer(cmd.Context())
	defer closeCache()
	pdf, err := renderer.Render(cmd.Context(), source)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), renderOut, pdf); err != nil {
		return err
	}
	if renderOut != "" && renderOut != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", len(pdf), renderOut)
	}
	return nil
}

func compileSource(cmd *cobra.Command, a *app) (string, error) {
	compiler, err := a.compiler(compileTemplate)
	if err != nil {
		return "", err
	}
	resume, err := a.loadResume(cmd.Context(), compileFile, compileResumeID)
	if err != nil {
		return "", err
	}
	return compiler.Compile(resume)
}
