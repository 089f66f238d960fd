// Package analysis produces a structured resume-vs-job match report.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/resume-optimizer/internal/optimizer"
)

// Report is the structured result of matching a resume against a job
// description.
type Report struct {
	MatchScore     int      `json:"match_score"`
	RelevantSkills []string `json:"relevant_skills"`
	MissingSkills  []string `json:"missing_skills"`
	Summary        string   `json:"summary"`
	Recommendation string   `json:"recommendation"`
}

// reportSchema validates the model's JSON output before unmarshaling.
const reportSchema = `{
  "type": "object",
  "required": ["match_score", "relevant_skills", "missing_skills", "summary", "recommendation"],
  "properties": {
    "match_score": {"type": "integer", "minimum": 0, "maximum": 100},
    "relevant_skills": {"type": "array", "items": {"type": "string"}},
    "missing_skills": {"type": "array", "items": {"type": "string"}},
    "summary": {"type": "string"},
    "recommendation": {"type": "string"}
  },
  "additionalProperties": false
}`

// Analyze asks the model how well the resume matches the job description and
// returns the validated report.
func Analyze(ctx context.Context, client optimizer.Client, resumeText, jobDescription string) (*Report, error) {
	if resumeText == "" {
		return nil, fmt.Errorf("resume text is required")
	}
	if jobDescription == "" {
		return nil, fmt.Errorf("job description is required")
	}

	raw, err := client.GenerateJSON(ctx, buildPrompt(resumeText, jobDescription))
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}

	cleaned := optimizer.CleanJSONBlock(raw)
	if err := validateReport(cleaned); err != nil {
		return nil, err
	}

	var report Report
	if err := json.Unmarshal([]byte(cleaned), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// validateReport checks the raw JSON against the report schema.
func validateReport(raw string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(reportSchema),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("report is not valid JSON: %w", err)
	}
	if !result.Valid() {
		return fmt.Errorf("report failed schema validation: %v", result.Errors())
	}
	return nil
}

func buildPrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(`You are an expert career assistant evaluating how well a resume matches a job description.

Compare the resume and the job description below. Identify relevant skills, missing skills, and assign a match score from 0 to 100.

Return a single JSON object with exactly these fields:
{"match_score": number, "relevant_skills": [string], "missing_skills": [string], "summary": string, "recommendation": string}

Base all reasoning only on the provided text. Do not invent experience. Return only valid JSON with no markdown or surrounding text.

Resume:
%s

Job description:
%s`, resumeText, jobDescription)
}
