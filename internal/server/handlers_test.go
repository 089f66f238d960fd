package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/optimizer"
	"github.com/jonathan/resume-optimizer/internal/workflow"
)

// fakeClient is a canned optimizer.Client for handler tests.
type fakeClient struct {
	reply    string
	jsonResp string
	err      error
	calls    int
}

func (f *fakeClient) StreamMessage(context.Context, []optimizer.Message, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeClient) GenerateJSON(context.Context, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.jsonResp, nil
}

func (f *fakeClient) Close() error { return nil }

// newTestServer builds a server whose machine treats uploaded bytes as the
// extracted text.
func newTestServer(client optimizer.Client) *Server {
	s := New(Config{Port: 0, Client: client})
	s.machine = workflow.New(optimizer.NewSession(client, nil), func(_ string, data []byte) (string, error) {
		return string(data), nil
	}, nil)
	return s
}

func uploadBody(t *testing.T, fileName, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func doUpload(t *testing.T, s *Server, fileName, contentType, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, formType := uploadBody(t, fileName, contentType, content)
	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", formType)
	rec := httptest.NewRecorder()
	s.handleUploadDocument(rec, req)
	return rec
}

func doJSON(s *Server, handler http.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleUploadDocument_Success(t *testing.T) {
	s := newTestServer(&fakeClient{})

	rec := doUpload(t, s, "resume.pdf", "application/pdf", "extracted resume text")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "resume.pdf", resp.FileName)
	assert.Equal(t, len("extracted resume text"), resp.ExtractedChars)
	assert.False(t, resp.ExtractionFailed)
}

func TestHandleUploadDocument_RejectsNonPDF(t *testing.T) {
	s := newTestServer(&fakeClient{})

	rec := doUpload(t, s, "resume.docx", "application/msword", "doc content")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Contains(t, rec.Body.String(), "application/pdf")
}

func TestHandleUploadDocument_MissingFile(t *testing.T) {
	s := newTestServer(&fakeClient{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("other", "value"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	s.handleUploadDocument(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleOptimize_Success(t *testing.T) {
	client := &fakeClient{reply: "Led a team of five engineers"}
	s := newTestServer(client)
	doUpload(t, s, "resume.pdf", "application/pdf", "Managed team of 5")

	rec := doJSON(s, s.handleOptimize, http.MethodPost, "/optimize", `{"job_description":"Engineering lead role"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp OptimizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Led a team of five engineers", resp.OptimizedText)
	assert.Equal(t, string(workflow.ViewOptimized), resp.ViewMode)
	assert.NotEmpty(t, resp.Segments)
}

func TestHandleOptimize_WithoutDocument(t *testing.T) {
	client := &fakeClient{reply: "optimized"}
	s := newTestServer(client)

	rec := doJSON(s, s.handleOptimize, http.MethodPost, "/optimize", `{"job_description":"role"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, client.calls)
}

func TestHandleOptimize_BlankJobDescription(t *testing.T) {
	client := &fakeClient{reply: "optimized"}
	s := newTestServer(client)
	doUpload(t, s, "resume.pdf", "application/pdf", "resume text")

	rec := doJSON(s, s.handleOptimize, http.MethodPost, "/optimize", `{"job_description":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, client.calls)
}

func TestHandleOptimize_OptimizerFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("service down")}
	s := newTestServer(client)
	doUpload(t, s, "resume.pdf", "application/pdf", "resume text")

	rec := doJSON(s, s.handleOptimize, http.MethodPost, "/optimize", `{"job_description":"role"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	// State rolled back: the result endpoint still shows the original only.
	result := doJSON(s, s.handleResult, http.MethodGet, "/result", "")
	var resp ResultResponse
	require.NoError(t, json.Unmarshal(result.Body.Bytes(), &resp))
	assert.Empty(t, resp.OptimizedText)
	assert.Equal(t, string(workflow.ViewOriginal), resp.ViewMode)
}

func TestHandleOptimize_InvalidBody(t *testing.T) {
	s := newTestServer(&fakeClient{})

	rec := doJSON(s, s.handleOptimize, http.MethodPost, "/optimize", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyze_Success(t *testing.T) {
	client := &fakeClient{jsonResp: `{"match_score": 65, "relevant_skills": ["Go"], "missing_skills": [], "summary": "ok", "recommendation": "apply"}`}
	s := newTestServer(client)
	doUpload(t, s, "resume.pdf", "application/pdf", "resume text")

	rec := doJSON(s, s.handleAnalyze, http.MethodPost, "/analyze", `{"job_description":"Go role"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"match_score":65`)
}

func TestHandleAnalyze_WithoutDocument(t *testing.T) {
	s := newTestServer(&fakeClient{})

	rec := doJSON(s, s.handleAnalyze, http.MethodPost, "/analyze", `{"job_description":"role"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSetView_RequiresResult(t *testing.T) {
	s := newTestServer(&fakeClient{reply: "optimized"})
	doUpload(t, s, "resume.pdf", "application/pdf", "resume text")

	rec := doJSON(s, s.handleSetView, http.MethodPut, "/view", `{"view":"diff"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	doJSON(s, s.handleOptimize, http.MethodPost, "/optimize", `{"job_description":"role"}`)

	rec = doJSON(s, s.handleSetView, http.MethodPut, "/view", `{"view":"diff"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleSetView_UnknownMode(t *testing.T) {
	s := newTestServer(&fakeClient{})

	rec := doJSON(s, s.handleSetView, http.MethodPut, "/view", `{"view":"split"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDownload_Success(t *testing.T) {
	s := newTestServer(&fakeClient{reply: "optimized content"})
	doUpload(t, s, "jane-cv.pdf", "application/pdf", "resume text")
	doJSON(s, s.handleOptimize, http.MethodPost, "/optimize", `{"job_description":"role"}`)

	req := httptest.NewRequest(http.MethodGet, "/download", nil)
	rec := httptest.NewRecorder()
	s.handleDownload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "optimized content", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "optimized-jane-cv.txt")
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestHandleDownload_NoResult(t *testing.T) {
	s := newTestServer(&fakeClient{})

	req := httptest.NewRequest(http.MethodGet, "/download", nil)
	rec := httptest.NewRecorder()
	s.handleDownload(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleReset(t *testing.T) {
	s := newTestServer(&fakeClient{reply: "optimized"})
	doUpload(t, s, "resume.pdf", "application/pdf", "resume text")
	doJSON(s, s.handleOptimize, http.MethodPost, "/optimize", `{"job_description":"role"}`)

	req := httptest.NewRequest(http.MethodPost, "/reset", nil)
	rec := httptest.NewRecorder()
	s.handleReset(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	result := doJSON(s, s.handleResult, http.MethodGet, "/result", "")
	var resp ResultResponse
	require.NoError(t, json.Unmarshal(result.Body.Bytes(), &resp))
	assert.Equal(t, string(workflow.StateEmpty), resp.State)
	assert.Empty(t, resp.ExtractedText)
	assert.Empty(t, resp.OptimizedText)
}

func TestHandleListRuns_StoreDisabled(t *testing.T) {
	s := newTestServer(&fakeClient{})

	req := httptest.NewRequest(http.MethodGet, "/runs", nil)
	rec := httptest.NewRecorder()
	s.handleListRuns(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&fakeClient{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestHandleOptimizeStream_EmitsResultEvents(t *testing.T) {
	s := newTestServer(&fakeClient{reply: "optimized"})
	doUpload(t, s, "resume.pdf", "application/pdf", "resume text")

	rec := doJSON(s, s.handleOptimizeStream, http.MethodPost, "/optimize/stream", `{"job_description":"role"}`)
	body := rec.Body.String()

	assert.Contains(t, body, "event: status")
	assert.Contains(t, body, "event: result")
	assert.Contains(t, body, "event: complete")
	assert.Contains(t, body, "optimized")
}

func TestHandleOptimizeStream_ValidationFailureIsErrorEvent(t *testing.T) {
	s := newTestServer(&fakeClient{})

	rec := doJSON(s, s.handleOptimizeStream, http.MethodPost, "/optimize/stream", `{"job_description":"role"}`)
	assert.Contains(t, rec.Body.String(), "event: error")
	assert.NotContains(t, rec.Body.String(), "event: result")
}
