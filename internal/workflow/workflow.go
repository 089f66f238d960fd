// Package workflow orchestrates the upload, extract, submit, diff and view
// steps of a resume optimization as an explicit state machine.
package workflow

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/diff"
	"github.com/jonathan/resume-optimizer/internal/extraction"
	"github.com/jonathan/resume-optimizer/internal/optimizer"
)

// State identifies the machine's current phase.
type State string

// Machine states.
const (
	StateEmpty      State = "empty"
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateSubmitting State = "submitting"
)

// ViewMode selects which rendition of the resume is presented.
type ViewMode string

// View modes.
const (
	ViewOriginal  ViewMode = "original"
	ViewOptimized ViewMode = "optimized"
	ViewDiff      ViewMode = "diff"
)

// FallbackDownloadName is used when the uploaded file has no usable base name.
const FallbackDownloadName = "optimized-resume.txt"

// Document is an uploaded resume file.
type Document struct {
	Name string
	Data []byte
}

// UploadResult describes the outcome of a completed upload.
type UploadResult struct {
	FileName         string
	ExtractedChars   int
	ExtractionFailed bool
}

// SubmitResult describes the outcome of a successful submission.
type SubmitResult struct {
	OptimizedText string
	Segments      []diff.Segment
	ViewMode      ViewMode
}

// Snapshot is a consistent read of the machine's visible state.
type Snapshot struct {
	State         State
	FileName      string
	ExtractedText string
	OptimizedText string
	ViewMode      ViewMode
	Segments      []diff.Segment
	ThreadID      string
}

// ExtractFunc converts an uploaded document into plain text based on its
// declared MIME type.
type ExtractFunc func(mime string, data []byte) (string, error)

// Machine is the upload/view state machine. One document, one extraction and
// one submission are in flight at most; concurrent operations get ErrBusy.
// The diff segments are valid only as a function of the current
// (extracted, optimized) pair and are regenerated whenever either changes.
type Machine struct {
	mu      sync.Mutex
	log     *zap.Logger
	session *optimizer.Session
	extract ExtractFunc

	// gen invalidates in-flight work when the document is replaced or the
	// machine is reset while an operation runs.
	gen int

	state     State
	doc       *Document
	extracted string
	optimized string
	segments  []diff.Segment
	view      ViewMode
}

// New creates a machine in the Empty state bound to an optimizer session.
// A nil extract falls back to MIME-dispatched document extraction.
func New(session *optimizer.Session, extract ExtractFunc, log *zap.Logger) *Machine {
	if extract == nil {
		extract = extraction.FromUpload
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{
		log:     log.Named("workflow"),
		session: session,
		extract: extract,
		state:   StateEmpty,
		view:    ViewOriginal,
	}
}

// Upload replaces the current document with a new one and extracts its text.
//
// A non-PDF declared type is rejected with *FileTypeError and leaves the
// state untouched. Prior results are cleared before extraction. Extraction
// failure is degraded, not fatal: the machine logs it and enters Ready with
// empty extracted text, so a later submission fails validation.
func (m *Machine) Upload(name, mime string, data []byte) (*UploadResult, error) {
	m.mu.Lock()
	if m.state == StateLoading || m.state == StateSubmitting {
		m.mu.Unlock()
		return nil, ErrBusy
	}
	if mime != extraction.MimePDF {
		m.mu.Unlock()
		return nil, &FileTypeError{Mime: mime}
	}

	doc := &Document{Name: name, Data: append([]byte(nil), data...)}
	m.doc = doc
	m.clearResultsLocked()
	m.state = StateLoading
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	text, err := m.extract(mime, doc.Data)
	failed := err != nil
	if failed {
		m.log.Warn("text extraction failed, continuing with empty text",
			zap.String("file", name), zap.Error(err))
		text = ""
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		// The machine was reset mid-extraction; drop the result.
		return nil, ErrAborted
	}
	m.extracted = text
	m.state = StateReady

	return &UploadResult{
		FileName:         name,
		ExtractedChars:   len(text),
		ExtractionFailed: failed,
	}, nil
}

// Submit sends the extracted text and job description to the optimizer.
//
// Validation rejects an empty extracted text or a blank job description
// before any optimizer call. On success the optimized text is stored, the
// diff segments are regenerated from the current pair, and the view switches
// to optimized. On failure the machine rolls back to its pre-submission
// Ready state.
func (m *Machine) Submit(ctx context.Context, jobDescription string) (*SubmitResult, error) {
	m.mu.Lock()
	if m.state == StateLoading || m.state == StateSubmitting {
		m.mu.Unlock()
		return nil, ErrBusy
	}
	if m.extracted == "" {
		m.mu.Unlock()
		return nil, &ValidationError{Field: "resume_text", Message: "no resume text extracted"}
	}
	if strings.TrimSpace(jobDescription) == "" {
		m.mu.Unlock()
		return nil, &ValidationError{Field: "job_description", Message: "job description must not be blank"}
	}
	resumeText := m.extracted
	m.state = StateSubmitting
	gen := m.gen
	m.mu.Unlock()

	optimized, err := m.session.Optimize(ctx, resumeText, jobDescription)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return nil, ErrAborted
	}
	m.state = StateReady
	if err != nil {
		m.log.Warn("optimization failed", zap.Error(err))
		return nil, err
	}

	m.optimized = optimized
	m.segments = diff.Words(m.extracted, m.optimized)
	m.view = ViewOptimized
	m.log.Info("optimization complete",
		zap.String("thread_id", m.session.ThreadID()),
		zap.Int("optimized_chars", len(optimized)),
		zap.Int("diff_segments", len(m.segments)))

	return &SubmitResult{
		OptimizedText: optimized,
		Segments:      m.copySegmentsLocked(),
		ViewMode:      m.view,
	}, nil
}

// SetViewMode switches the presented rendition. Optimized and diff views are
// available only once an optimization result exists; selecting them earlier
// is a no-op error.
func (m *Machine) SetViewMode(mode ViewMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch mode {
	case ViewOriginal:
		m.view = ViewOriginal
		return nil
	case ViewOptimized, ViewDiff:
		if m.optimized == "" {
			return ErrNoResult
		}
		m.view = mode
		return nil
	default:
		return &ValidationError{Field: "view", Message: fmt.Sprintf("unknown view mode %q", mode)}
	}
}

// Reset returns the machine to Empty from any state, clearing the document,
// both texts, the diff segments and the view mode. The optimizer
// conversation is discarded with it.
func (m *Machine) Reset() {
	m.mu.Lock()
	m.gen++
	m.doc = nil
	m.state = StateEmpty
	m.clearResultsLocked()
	session := m.session
	m.mu.Unlock()

	// The session has its own lock; release ours first so a reset can
	// never wait behind an in-flight exchange.
	if session != nil {
		session.Reset()
	}
}

// Snapshot returns a consistent copy of the machine's visible state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		State:         m.state,
		ExtractedText: m.extracted,
		OptimizedText: m.optimized,
		ViewMode:      m.view,
		Segments:      m.copySegmentsLocked(),
	}
	if m.doc != nil {
		snap.FileName = m.doc.Name
	}
	if m.session != nil {
		snap.ThreadID = m.session.ThreadID()
	}
	return snap
}

// Download returns the optimized resume and its download file name,
// optimized-<originalBaseName>.txt, or the fallback name when the base name
// is empty.
func (m *Machine) Download() (name, content string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.optimized == "" {
		return "", "", ErrNoResult
	}
	fileName := ""
	if m.doc != nil {
		fileName = m.doc.Name
	}
	return DownloadName(fileName), m.optimized, nil
}

// DownloadName derives the optimized-text download name from the uploaded
// file name.
func DownloadName(fileName string) string {
	base := strings.TrimSuffix(path.Base(fileName), path.Ext(fileName))
	if base == "" || base == "." || base == "/" {
		return FallbackDownloadName
	}
	return "optimized-" + base + ".txt"
}

func (m *Machine) clearResultsLocked() {
	m.extracted = ""
	m.optimized = ""
	m.segments = nil
	m.view = ViewOriginal
}

func (m *Machine) copySegmentsLocked() []diff.Segment {
	if m.segments == nil {
		return nil
	}
	out := make([]diff.Segment, len(m.segments))
	copy(out, m.segments)
	return out
}
