package optimizer

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/logger"
)

// Session owns one conversation with the optimizer pipeline. It replaces the
// process-wide conversation log of earlier designs with an explicit object:
// the caller creates it, every exchange appends to it, and Reset or Close
// discards it.
type Session struct {
	mu     sync.Mutex
	client Client
	log    *zap.Logger

	// epoch invalidates an in-flight exchange when the conversation is
	// reset underneath it.
	epoch    int
	threadID string
	messages []Message
}

// NewSession creates a session bound to the given client. The client's
// lifetime is managed by the caller.
func NewSession(client Client, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{client: client, log: log.Named("optimizer")}
}

// Optimize sends the resume text and job description to the pipeline and
// returns the accumulated optimized resume.
//
// The two inputs are concatenated into a single user message with no
// delimiter, matching the pipeline's expected input shape. The user message
// is appended to the conversation before the exchange; the assistant reply
// is appended only on success. The thread identifier is assigned on the
// first successful exchange and reused for the session's lifetime.
func (s *Session) Optimize(ctx context.Context, resumeText, jobDescription string) (string, error) {
	message := resumeText + jobDescription

	s.mu.Lock()
	epoch := s.epoch
	s.messages = append(s.messages, Message{Role: RoleUser, Content: message})
	history := make([]Message, len(s.messages)-1)
	copy(history, s.messages[:len(s.messages)-1])
	s.mu.Unlock()

	// The lock is not held across the exchange; Reset and the read
	// accessors must stay responsive while the remote call runs.
	reply, err := s.client.StreamMessage(ctx, history, message)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Error("optimizer exchange failed", zap.String("thread_id", s.threadID), zap.Error(err))
		return "", &Error{Cause: err}
	}
	if s.epoch != epoch {
		// The conversation was reset mid-exchange; the caller still gets
		// the reply but the fresh conversation does not record it.
		return reply, nil
	}

	if s.threadID == "" {
		s.threadID = uuid.NewString()
		s.log.Info("conversation thread started",
			zap.String("pipeline", PipelineName),
			zap.String("thread_id", s.threadID))
	}
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: reply})
	s.log.Debug("optimizer reply recorded",
		zap.String("thread_id", s.threadID),
		zap.Int("messages", len(s.messages)),
		zap.String("preview", logger.Truncate(reply, 120)))

	return reply, nil
}

// ThreadID returns the conversation thread identifier, empty before the
// first successful exchange.
func (s *Session) ThreadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threadID
}

// Messages returns a copy of the conversation log.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Reset discards the conversation log and thread identifier. The next
// exchange starts a fresh thread.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.threadID = ""
	s.messages = nil
}

// Close discards the conversation. The underlying client is left open for
// the owner to close.
func (s *Session) Close() {
	s.Reset()
}
