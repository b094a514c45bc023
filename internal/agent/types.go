// Package agent implements the portfolio assistant: agent definition,
// model dispatch over stored sessions, and the chat HTTP surface.
package agent

import (
	"errors"
	"time"

	"github.com/ashureev/portfolio-assistant/internal/domain"
	"github.com/ashureev/portfolio-assistant/internal/shared"
)

// MaxMessageLength is the longest accepted chat message, in characters.
const MaxMessageLength = 2000

// CompatDelimiter separates the frontend's system prefix from the visitor text.
const CompatDelimiter = "\n\nUser: "

var (
	// ErrMalformedResponse is returned when the model replies without usable text.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrModelTimeout is returned when the model call exceeds its deadline.
	ErrModelTimeout = errors.New("model call timed out")
)

// RunResult is the outcome of one agent run.
type RunResult struct {
	RunID    string
	Reply    string
	Model    string
	Duration time.Duration
}

// ChatRequest is the JSON body accepted by the chat endpoints.
type ChatRequest struct {
	Message             string        `json:"message"`
	SessionID           string        `json:"session_id,omitempty"`
	ConversationHistory []domain.Turn `json:"conversation_history,omitempty"`
}

// ChatResponse is returned by the chat endpoints.
type ChatResponse struct {
	Success   bool   `json:"success"`
	Response  string `json:"response"`
	SessionID string `json:"session_id,omitempty"`
	Model     string `json:"model"`
}

func executionError(err error) error {
	return shared.Dependency("agent run", "agent execution failed", err)
}
