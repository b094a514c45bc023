package agent

import (
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"

	"github.com/ashureev/portfolio-assistant/internal/config"
)

// AssistantName is the name of the portfolio agent.
const AssistantName = "PortfolioAssistant"

//go:embed profile.md
var portfolioProfile string

const instructionsTemplate = `You are a professional portfolio assistant agent. Your role is to help visitors
learn about the portfolio owner in a friendly, concise, and professional manner.

%s

## Your Responsibilities:
1. Provide accurate information about the portfolio owner
2. Discuss skills, projects, and experience when asked
3. Be friendly, professional, and concise
4. Decline requests for private/sensitive information (addresses, phone numbers, secrets)
5. If unsure about something, admit it rather than guessing
6. Use the portfolio information provided above to answer questions accurately

## Guidelines:
- Keep responses clear and engaging
- Highlight relevant projects and skills when appropriate
- Encourage visitors to explore the portfolio
- Maintain a professional yet approachable tone
`

// Definition binds instructions to one model endpoint. It is never
// mutated after construction.
type Definition struct {
	name         string
	instructions string
	model        string
	client       ChatCompleter
}

// NewDefinition returns a definition bound to client.
func NewDefinition(name, instructions, model string, client ChatCompleter) *Definition {
	return &Definition{name: name, instructions: instructions, model: model, client: client}
}

// Name returns the agent name.
func (d *Definition) Name() string { return d.name }

// Instructions returns the system instructions.
func (d *Definition) Instructions() string { return d.instructions }

// Model returns the model identifier.
func (d *Definition) Model() string { return d.model }

// Client returns the bound model client.
func (d *Definition) Client() ChatCompleter { return d.client }

// WithInstructions returns a new definition sharing d's model binding.
func (d *Definition) WithInstructions(name, instructions string) *Definition {
	return NewDefinition(name, instructions, d.model, d.client)
}

// PortfolioInstructions renders the assistant instructions with the embedded profile.
func PortfolioInstructions() string {
	return fmt.Sprintf(instructionsTemplate, strings.TrimSpace(portfolioProfile))
}

// NewClient builds an OpenAI-compatible client from the model settings.
func NewClient(cfg config.ModelConfig) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return openai.NewClientWithConfig(clientConfig)
}

// NewPortfolioDefinition builds the portfolio assistant from cfg.
func NewPortfolioDefinition(cfg config.ModelConfig) (*Definition, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("model API key is not configured")
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("model name is not configured")
	}
	def := NewDefinition(AssistantName, PortfolioInstructions(), cfg.Name, NewClient(cfg))
	slog.Info("Portfolio agent created", "name", def.Name(), "model", def.Model())
	return def, nil
}

// Provider lazily builds exactly one Definition per process. Concurrent
// first calls block until the single construction finishes.
type Provider struct {
	get func() (*Definition, error)
}

// NewProvider returns a provider that calls build at most once.
func NewProvider(build func() (*Definition, error)) *Provider {
	return &Provider{get: sync.OnceValues(build)}
}

// NewConfigProvider captures cfg now; later configuration changes are not observed.
func NewConfigProvider(cfg config.ModelConfig) *Provider {
	return NewProvider(func() (*Definition, error) {
		return NewPortfolioDefinition(cfg)
	})
}

// Get returns the cached definition, building it on first use.
func (p *Provider) Get() (*Definition, error) {
	return p.get()
}
