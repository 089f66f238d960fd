package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-optimizer/internal/config"
	"github.com/jonathan/resume-optimizer/internal/diff"
	"github.com/jonathan/resume-optimizer/internal/fetch"
	"github.com/jonathan/resume-optimizer/internal/logger"
	"github.com/jonathan/resume-optimizer/internal/optimizer"
	"github.com/jonathan/resume-optimizer/internal/workflow"
)

var (
	optimizeResume   string
	optimizeJob      string
	optimizeJobURL   string
	optimizeShowDiff bool
	optimizeOutput   string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize a PDF resume for a job description",
	Long: `Extract text from a PDF resume, send it with a job description to the
resume-analyzer pipeline, and print the optimized resume. The job description
comes from a text file (--job) or is fetched from a posting URL (--job-url).`,
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVar(&optimizeResume, "resume", "", "Path to the PDF resume (required)")
	optimizeCmd.Flags().StringVar(&optimizeJob, "job", "", "Path to a job description text file")
	optimizeCmd.Flags().StringVar(&optimizeJobURL, "job-url", "", "URL of the job posting")
	optimizeCmd.Flags().BoolVar(&optimizeShowDiff, "show-diff", false, "Print a word-level diff against the original")
	optimizeCmd.Flags().StringVarP(&optimizeOutput, "output", "o", "", "Write the optimized resume to a file instead of stdout")
	_ = optimizeCmd.MarkFlagRequired("resume")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	if (optimizeJob == "") == (optimizeJobURL == "") {
		return fmt.Errorf("exactly one of --job or --job-url is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// The resume read and job description fetch are independent.
	var resumeData []byte
	var jobDescription string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resumeData, err = os.ReadFile(optimizeResume)
		if err != nil {
			return fmt.Errorf("failed to read resume: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		jobDescription, err = loadJobDescription(gctx, optimizeJob, optimizeJobURL)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	client, err := optimizer.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return fmt.Errorf("failed to create optimizer client: %w", err)
	}
	defer func() { _ = client.Close() }()

	machine := workflow.New(optimizer.NewSession(client, log), nil, log)
	upload, err := machine.Upload(filepath.Base(optimizeResume), extractionMime, resumeData)
	if err != nil {
		return err
	}
	if upload.ExtractionFailed {
		return fmt.Errorf("failed to extract text from %s", optimizeResume)
	}

	result, err := machine.Submit(ctx, jobDescription)
	if err != nil {
		return err
	}

	if optimizeOutput != "" {
		if err := os.WriteFile(optimizeOutput, []byte(result.OptimizedText), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Printf("Optimized resume written to %s\n", optimizeOutput)
	} else {
		fmt.Println(result.OptimizedText)
	}

	if optimizeShowDiff {
		fmt.Println("\n--- word diff (original vs optimized) ---")
		fmt.Println(renderDiff(result.Segments))
	}
	return nil
}

const extractionMime = "application/pdf"

func loadJobDescription(ctx context.Context, jobPath, jobURL string) (string, error) {
	if jobPath != "" {
		data, err := os.ReadFile(jobPath)
		if err != nil {
			return "", fmt.Errorf("failed to read job description: %w", err)
		}
		return string(data), nil
	}
	return fetch.New(nil).JobPosting(ctx, jobURL)
}

// renderDiff prints segments one per line prefixed with their kind marker.
func renderDiff(segments []diff.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case diff.Added:
			b.WriteString("+ ")
		case diff.Removed:
			b.WriteString("- ")
		default:
			b.WriteString("  ")
		}
		b.WriteString(seg.Text)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
