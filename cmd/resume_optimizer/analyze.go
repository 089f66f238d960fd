package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-optimizer/internal/analysis"
	"github.com/jonathan/resume-optimizer/internal/config"
	"github.com/jonathan/resume-optimizer/internal/extraction"
	"github.com/jonathan/resume-optimizer/internal/optimizer"
)

var (
	analyzeResume string
	analyzeJob    string
	analyzeJobURL string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a PDF resume against a job description",
	Long:  `Extract text from a PDF resume and print a structured JSON match report for a job description.`,
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeResume, "resume", "", "Path to the resume, PDF or plain text (required)")
	analyzeCmd.Flags().StringVar(&analyzeJob, "job", "", "Path to a job description text file")
	analyzeCmd.Flags().StringVar(&analyzeJobURL, "job-url", "", "URL of the job posting")
	_ = analyzeCmd.MarkFlagRequired("resume")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if (analyzeJob == "") == (analyzeJobURL == "") {
		return fmt.Errorf("exactly one of --job or --job-url is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	resumeData, err := os.ReadFile(analyzeResume)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	resumeText, err := extraction.FromUpload(resumeMime(analyzeResume), resumeData)
	if err != nil {
		return err
	}

	jobDescription, err := loadJobDescription(ctx, analyzeJob, analyzeJobURL)
	if err != nil {
		return err
	}

	client, err := optimizer.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return fmt.Errorf("failed to create optimizer client: %w", err)
	}
	defer func() { _ = client.Close() }()

	report, err := analysis.Analyze(ctx, client, resumeText, jobDescription)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// resumeMime maps the resume file extension to its declared MIME type.
func resumeMime(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text":
		return extraction.MimeText
	default:
		return extraction.MimePDF
	}
}
