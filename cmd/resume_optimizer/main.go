// Package main provides the resume optimizer CLI and API server entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_optimizer",
	Short: "Resume optimizer CLI and HTTP API server",
	Long:  "Resume optimizer extracts text from a PDF resume, rewrites it for a target job description via the resume-analyzer pipeline, and reports a word-level diff against the original.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
