package agent

import (
	"context"

	"github.com/ashureev/portfolio-assistant/internal/shared"
)

const refineInstructions = `You are a professional writing assistant. Refine this rough project idea into a clear, professional project inquiry for a full-stack developer portfolio.

Guidelines:
- Keep the refined message concise (2-4 sentences)
- Maintain a professional but friendly tone
- Preserve the original intent and key details
- Make it suitable for a contact form submission
- Do not add placeholder information the user didn't provide
- Return ONLY the refined message, no explanations or quotation marks`

// Refiner rewrites a rough contact message in one model call. It keeps no
// session.
type Refiner struct {
	agents *Provider
	runner ModelRunner
}

// NewRefiner creates a refiner that reuses the portfolio agent's model binding.
func NewRefiner(agents *Provider, runner ModelRunner) *Refiner {
	return &Refiner{agents: agents, runner: runner}
}

// Refine returns the rewritten message.
func (r *Refiner) Refine(ctx context.Context, message string) (string, error) {
	message, err := ValidateMessage(message)
	if err != nil {
		return "", err
	}
	base, err := r.agents.Get()
	if err != nil {
		return "", shared.Unexpected("get agent", err)
	}
	def := base.WithInstructions("MessageRefiner", refineInstructions)
	reply, err := r.runner.Run(ctx, def, "Rough message to refine:\n"+message, nil)
	if err != nil {
		return "", executionError(err)
	}
	return reply, nil
}
