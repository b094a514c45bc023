package agent

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/ashureev/portfolio-assistant/internal/domain"
	"github.com/ashureev/portfolio-assistant/internal/store"
)

// Session is the part of a stored conversation the dispatcher needs.
type Session interface {
	Append(ctx context.Context, turns ...domain.Turn) error
	History(ctx context.Context) ([]domain.Turn, error)
}

// SessionStore resolves session handles by id.
type SessionStore interface {
	GetOrCreate(ctx context.Context, sessionID string) (store.Session, error)
}

// ModelRunner sends one input plus prior turns to the model bound in def and
// returns the complete reply text.
type ModelRunner interface {
	Run(ctx context.Context, def *Definition, input string, history []domain.Turn) (string, error)
}

// ChatCompleter is the slice of the OpenAI-compatible client a Definition binds to.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// TokenCounter estimates the prompt size of a run of turns.
type TokenCounter interface {
	Count(turns []domain.Turn) (int, error)
}

// Ensure implementations satisfy their interfaces.
var (
	_ ModelRunner   = (*OpenAIRunner)(nil)
	_ ChatCompleter = (*openai.Client)(nil)
	_ TokenCounter  = (*TiktokenCounter)(nil)
	_ SessionStore  = (store.Repository)(nil)
)
