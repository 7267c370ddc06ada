// Package main provides the resume_builder CLI: the HTTP API server plus
// offline compile, render, analyze, import and reorder commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "resume_builder",
	Short: "Resume Builder API server and CLI",
	Long: "Resume Builder composes resumes from ordered, toggle-able sections, compiles them to LaTeX and PDF, " +
		"and scores them against job postings.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (json, yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
