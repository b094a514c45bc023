package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ashureev/portfolio-assistant/internal/domain"
)

// Dispatcher runs an agent definition against a stored session: it replays
// the session history, calls the model once, and appends the exchange.
// Nothing is retried; every failure is returned to the caller once.
type Dispatcher struct {
	runner  ModelRunner
	window  HistoryWindow
	timeout time.Duration
	logger  *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithHistoryWindow limits replayed history.
func WithHistoryWindow(w HistoryWindow) DispatcherOption {
	return func(d *Dispatcher) { d.window = w }
}

// WithTimeout bounds each model call; zero leaves it to the caller's context.
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

// NewDispatcher creates a dispatcher around runner.
func NewDispatcher(runner ModelRunner, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{runner: runner, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run replays session into the model with input and blocks until the reply
// is complete or ctx ends. On success the user and assistant turns are
// appended to session in that order.
func (d *Dispatcher) Run(ctx context.Context, def *Definition, input string, session Session) (*RunResult, error) {
	return d.run(ctx, def, input, session, nil)
}

// RunWithHistory behaves like Run but replays history instead of the stored
// log. The exchange is still appended to session.
func (d *Dispatcher) RunWithHistory(ctx context.Context, def *Definition, input string, session Session, history []domain.Turn) (*RunResult, error) {
	if history == nil {
		history = []domain.Turn{}
	}
	return d.run(ctx, def, input, session, history)
}

// RunSync is Run for callers that have no context to carry. It produces the
// same result as Run for the same input.
func (d *Dispatcher) RunSync(def *Definition, input string, session Session) (*RunResult, error) {
	return d.Run(context.Background(), def, input, session)
}

func (d *Dispatcher) run(ctx context.Context, def *Definition, input string, session Session, override []domain.Turn) (*RunResult, error) {
	if def == nil {
		return nil, executionError(fmt.Errorf("agent definition is nil"))
	}
	if session == nil {
		return nil, executionError(fmt.Errorf("session is nil"))
	}

	runID := uuid.NewString()
	start := time.Now()

	history := override
	if history == nil {
		stored, err := session.History(ctx)
		if err != nil {
			return nil, fmt.Errorf("load session history: %w", err)
		}
		history = stored
	}
	replay := d.window.Apply(history)

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	d.logger.Debug("Agent run started",
		"run_id", runID,
		"agent", def.Name(),
		"model", def.Model(),
		"history_turns", len(history),
		"replayed_turns", len(replay),
	)

	reply, err := d.runner.Run(callCtx, def, input, replay)
	if err != nil {
		d.logger.Error("Agent run failed", "run_id", runID, "model", def.Model(), "error", err)
		return nil, executionError(err)
	}

	userTurn := domain.NewTurn(domain.RoleUser, input)
	assistantTurn := domain.NewTurn(domain.RoleAssistant, reply)
	if err := session.Append(ctx, userTurn, assistantTurn); err != nil {
		return nil, fmt.Errorf("append exchange: %w", err)
	}

	result := &RunResult{
		RunID:    runID,
		Reply:    reply,
		Model:    def.Model(),
		Duration: time.Since(start),
	}
	d.logger.Debug("Agent run completed", "run_id", runID, "duration", result.Duration, "reply_length", len(reply))
	return result, nil
}
