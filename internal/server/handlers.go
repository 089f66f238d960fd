package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/analysis"
	"github.com/jonathan/resume-optimizer/internal/diff"
	"github.com/jonathan/resume-optimizer/internal/store"
	"github.com/jonathan/resume-optimizer/internal/workflow"
)

// maxUploadBytes bounds the in-memory multipart parse.
const maxUploadBytes = 20 << 20

// UploadResponse is the response for POST /documents.
type UploadResponse struct {
	FileName         string `json:"file_name"`
	ExtractedChars   int    `json:"extracted_chars"`
	ExtractionFailed bool   `json:"extraction_failed,omitempty"`
}

// OptimizeRequest is the request body for POST /optimize and POST /analyze.
// Exactly one of job_description or job_url should be set; a URL is fetched
// and reduced to text before submission.
type OptimizeRequest struct {
	JobDescription string `json:"job_description,omitempty"`
	JobURL         string `json:"job_url,omitempty"`
}

// OptimizeResponse is the response for POST /optimize.
type OptimizeResponse struct {
	OptimizedText string         `json:"optimized_text"`
	ViewMode      string         `json:"view_mode"`
	Segments      []diff.Segment `json:"segments"`
}

// ResultResponse is the response for GET /result.
type ResultResponse struct {
	State         string         `json:"state"`
	FileName      string         `json:"file_name,omitempty"`
	ExtractedText string         `json:"extracted_text"`
	OptimizedText string         `json:"optimized_text"`
	ViewMode      string         `json:"view_mode"`
	Segments      []diff.Segment `json:"segments"`
	ThreadID      string         `json:"thread_id,omitempty"`
}

// ViewRequest is the request body for PUT /view.
type ViewRequest struct {
	View string `json:"view"`
}

// handleUploadDocument accepts a multipart PDF upload and extracts its text.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form: " + err.Error()})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "file field is required"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "failed to read file: " + err.Error()})
		return
	}

	result, err := s.machine.Upload(header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, UploadResponse{
		FileName:         result.FileName,
		ExtractedChars:   result.ExtractedChars,
		ExtractionFailed: result.ExtractionFailed,
	})
}

// handleOptimize submits the extracted resume and a job description to the
// optimizer and returns the optimized text with its diff.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeOptimizeRequest(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	jobDescription, err := s.resolveJobDescription(r, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	result, err := s.machine.Submit(r.Context(), jobDescription)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.persistRun(r, result)
	s.jsonResponse(w, http.StatusOK, OptimizeResponse{
		OptimizedText: result.OptimizedText,
		ViewMode:      string(result.ViewMode),
		Segments:      result.Segments,
	})
}

// handleOptimizeStream runs the same submission but reports progress and the
// result as Server-Sent Events.
func (s *Server) handleOptimizeStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeOptimizeRequest(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	jobDescription, err := s.resolveJobDescription(r, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	sse.WriteStatus(workflow.StateSubmitting)

	result, err := s.machine.Submit(r.Context(), jobDescription)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}

	s.persistRun(r, result)
	sse.WriteResult(OptimizeResponse{
		OptimizedText: result.OptimizedText,
		ViewMode:      string(result.ViewMode),
		Segments:      result.Segments,
	})
	sse.WriteComplete("completed")
}

// handleAnalyze returns a structured match report for the extracted resume
// against a job description.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeOptimizeRequest(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	jobDescription, err := s.resolveJobDescription(r, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	snap := s.machine.Snapshot()
	if snap.ExtractedText == "" {
		s.errorResponse(w, &workflow.ValidationError{Field: "resume_text", Message: "no resume text extracted"})
		return
	}
	if jobDescription == "" {
		s.errorResponse(w, &workflow.ValidationError{Field: "job_description", Message: "job description must not be blank"})
		return
	}

	report, err := analysis.Analyze(r.Context(), s.client, snap.ExtractedText, jobDescription)
	if err != nil {
		s.jsonResponse(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}

// handleResult returns the machine's current visible state.
func (s *Server) handleResult(w http.ResponseWriter, _ *http.Request) {
	snap := s.machine.Snapshot()
	s.jsonResponse(w, http.StatusOK, ResultResponse{
		State:         string(snap.State),
		FileName:      snap.FileName,
		ExtractedText: snap.ExtractedText,
		OptimizedText: snap.OptimizedText,
		ViewMode:      string(snap.ViewMode),
		Segments:      snap.Segments,
		ThreadID:      snap.ThreadID,
	})
}

// handleSetView switches the presented view mode.
func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req ViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}

	if err := s.machine.SetViewMode(workflow.ViewMode(req.View)); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"view": req.View})
}

// handleDownload serves the optimized resume as a plain-text attachment.
func (s *Server) handleDownload(w http.ResponseWriter, _ *http.Request) {
	name, content, err := s.machine.Download()
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write([]byte(content))
}

// handleReset clears the current document, results and conversation.
func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.machine.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// handleListRuns lists persisted optimization runs.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"error": "run history is not enabled"})
		return
	}

	runs, err := s.store.ListRuns(r.Context(), 50)
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	s.jsonResponse(w, http.StatusOK, runs)
}

// handleGetRun fetches one persisted run.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"error": "run history is not enabled"})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid run ID format"})
		return
	}

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if run == nil {
		s.jsonResponse(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

func (s *Server) decodeOptimizeRequest(r *http.Request) (*OptimizeRequest, error) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, &workflow.ValidationError{Field: "body", Message: "invalid request body"}
	}
	return &req, nil
}

// resolveJobDescription fetches the job posting when a URL was supplied.
func (s *Server) resolveJobDescription(r *http.Request, req *OptimizeRequest) (string, error) {
	if req.JobURL == "" {
		return req.JobDescription, nil
	}
	return s.fetcher.JobPosting(r.Context(), req.JobURL)
}

// persistRun records a successful optimization when a store is configured.
func (s *Server) persistRun(r *http.Request, result *workflow.SubmitResult) {
	if s.store == nil {
		return
	}

	snap := s.machine.Snapshot()
	id, err := s.store.CreateRun(r.Context(), &store.Run{
		FileName:      snap.FileName,
		ThreadID:      snap.ThreadID,
		ExtractedText: snap.ExtractedText,
		OptimizedText: result.OptimizedText,
	})
	if err != nil {
		s.log.Warn("failed to persist run", zap.Error(err))
		return
	}
	s.log.Info("run persisted", zap.String("run_id", id.String()))
}
