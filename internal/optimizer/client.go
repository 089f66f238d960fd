// Package optimizer talks to the Gemini-backed resume-analyzer pipeline.
package optimizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Role tags a conversation message.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in an optimizer conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client is an abstraction over the remote text-generation service.
type Client interface {
	// StreamMessage sends a message with the given conversation history to
	// the pipeline, accumulates the streamed response and returns it whole.
	StreamMessage(ctx context.Context, history []Message, message string) (string, error)
	// GenerateJSON runs a standalone prompt expecting a JSON response.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed client. A missing API key is a
// configuration error; there is no fallback.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// StreamMessage replays the conversation history into a chat session, sends
// the message, and concatenates every streamed content chunk until the
// stream ends. There is no retry and no timeout beyond ctx.
func (c *GeminiClient) StreamMessage(ctx context.Context, history []Message, message string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(pipelinePrompt)},
	}

	chat := model.StartChat()
	for _, m := range history {
		chat.History = append(chat.History, &genai.Content{
			Role:  geminiRole(m.Role),
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	iter := chat.SendMessageStream(ctx, genai.Text(message))
	var builder strings.Builder
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", fmt.Errorf("stream failed: %w", err)
		}
		builder.WriteString(responseText(resp))
	}

	return builder.String(), nil
}

// GenerateJSON runs a standalone prompt with a JSON response MIME type and
// strips any markdown fences from the result.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return CleanJSONBlock(responseText(resp)), nil
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// responseText collects the text parts of a response's first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	return strings.Join(parts, "")
}

func geminiRole(role Role) string {
	if role == RoleAssistant {
		return "model"
	}
	return "user"
}

// CleanJSONBlock removes markdown code block wrappers from JSON output.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
