package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ashureev/portfolio-assistant/internal/domain"
)

// OpenAIRunner runs definitions against an OpenAI-compatible chat
// completions endpoint.
type OpenAIRunner struct{}

// NewOpenAIRunner creates a runner.
func NewOpenAIRunner() *OpenAIRunner {
	return &OpenAIRunner{}
}

// Run sends the instructions, history and input as one completion request.
func (r *OpenAIRunner) Run(ctx context.Context, def *Definition, input string, history []domain.Turn) (string, error) {
	if def == nil || def.Client() == nil {
		return "", fmt.Errorf("agent definition has no model client")
	}

	req := openai.ChatCompletionRequest{
		Model:    def.Model(),
		Messages: buildMessages(def.Instructions(), history, input),
	}

	resp, err := def.Client().CreateChatCompletion(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %w", ErrModelTimeout, err)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("%w: empty content (finish reason %q)", ErrMalformedResponse, resp.Choices[0].FinishReason)
	}
	return reply, nil
}

func buildMessages(instructions string, history []domain.Turn, input string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if instructions != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: instructions,
		})
	}
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    roleFor(turn.Role),
			Content: turn.Content,
		})
	}
	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input,
	})
}

func roleFor(role domain.Role) string {
	if role == domain.RoleAssistant {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}
