package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ashureev/portfolio-assistant/internal/domain"
	"github.com/ashureev/portfolio-assistant/internal/shared"
)

// ChatInput is one inbound chat message.
type ChatInput struct {
	Message   string
	SessionID string
	// History, when non-nil, is replayed instead of the stored session log.
	History []domain.Turn
}

// ChatOutput is the reply to one chat message.
type ChatOutput struct {
	Response  string
	SessionID string
	Model     string
	RunID     string
}

// ChatService validates chat input, resolves the session and hands the
// message to the dispatcher.
type ChatService struct {
	agents     *Provider
	dispatcher *Dispatcher
	sessions   SessionStore
}

// NewChatService creates a chat service.
func NewChatService(agents *Provider, dispatcher *Dispatcher, sessions SessionStore) *ChatService {
	return &ChatService{agents: agents, dispatcher: dispatcher, sessions: sessions}
}

// ValidateMessage returns the trimmed message, or a validation error when it
// is blank or longer than MaxMessageLength characters.
func ValidateMessage(message string) (string, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "", shared.Validation("message cannot be empty")
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return "", shared.Validationf("message cannot exceed %d characters", MaxMessageLength)
	}
	return trimmed, nil
}

// ExtractUserMessage returns the text after the last CompatDelimiter, or
// message unchanged when the delimiter is absent.
func ExtractUserMessage(message string) string {
	idx := strings.LastIndex(message, CompatDelimiter)
	if idx < 0 {
		return message
	}
	return message[idx+len(CompatDelimiter):]
}

// Chat handles one message and blocks until the reply is stored.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	return s.chat(ctx, in, s.dispatcher.Run)
}

// ChatSync is the blocking variant used by compatibility callers. It runs
// the same pipeline as Chat without inheriting request cancellation.
func (s *ChatService) ChatSync(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	return s.chat(context.WithoutCancel(ctx), in, func(_ context.Context, def *Definition, input string, session Session) (*RunResult, error) {
		return s.dispatcher.RunSync(def, input, session)
	})
}

// ChatCompat strips the frontend's system prefix before delegating to Chat.
func (s *ChatService) ChatCompat(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	in.Message = ExtractUserMessage(in.Message)
	return s.Chat(ctx, in)
}

type runFunc func(ctx context.Context, def *Definition, input string, session Session) (*RunResult, error)

func (s *ChatService) chat(ctx context.Context, in ChatInput, run runFunc) (*ChatOutput, error) {
	message, err := ValidateMessage(in.Message)
	if err != nil {
		return nil, err
	}

	sessionID := domain.ResolveSessionID(in.SessionID)

	def, err := s.agents.Get()
	if err != nil {
		return nil, shared.Unexpected("get agent", err)
	}

	session, err := s.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", sessionID, err)
	}

	slog.Info("Chat request", "session_id", sessionID, "message_length", len(message))

	var result *RunResult
	if in.History != nil {
		result, err = s.dispatcher.RunWithHistory(ctx, def, message, session, in.History)
	} else {
		result, err = run(ctx, def, message, session)
	}
	if err != nil {
		return nil, err
	}

	return &ChatOutput{
		Response:  result.Reply,
		SessionID: sessionID,
		Model:     result.Model,
		RunID:     result.RunID,
	}, nil
}
