package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-optimizer/internal/workflow"
)

// Event names emitted on the optimize stream.
const (
	eventStatus   = "status"
	eventResult   = "result"
	eventError    = "error"
	eventComplete = "complete"
)

type statusPayload struct {
	State string `json:"state"`
}

type errorPayload struct {
	Error string `json:"error"`
}

type completePayload struct {
	Status string `json:"status"`
}

// SSEWriter writes the optimize stream as Server-Sent Events. Each event is
// a named frame with a one-line JSON payload, flushed immediately.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter prepares the response for event streaming.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteStatus reports the workflow phase the submission is in.
func (s *SSEWriter) WriteStatus(state workflow.State) {
	s.writeEvent(eventStatus, statusPayload{State: string(state)})
}

// WriteResult sends the optimization outcome.
func (s *SSEWriter) WriteResult(result OptimizeResponse) {
	s.writeEvent(eventResult, result)
}

// WriteError reports a failed submission. The stream ends after it.
func (s *SSEWriter) WriteError(message string) {
	s.writeEvent(eventError, errorPayload{Error: message})
}

// WriteComplete closes the stream with a final status.
func (s *SSEWriter) WriteComplete(status string) {
	s.writeEvent(eventComplete, completePayload{Status: status})
}

// writeEvent emits one frame as a single write so events never interleave.
func (s *SSEWriter) writeEvent(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	var frame bytes.Buffer
	fmt.Fprintf(&frame, "event: %s\ndata: %s\n\n", event, data)
	if _, err := s.w.Write(frame.Bytes()); err != nil {
		return
	}
	s.flusher.Flush()
}
