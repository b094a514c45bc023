package agent

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/portfolio-assistant/internal/domain"
	"github.com/ashureev/portfolio-assistant/internal/store"
)

// fakeRunner records every call and answers with reply(input).
type fakeRunner struct {
	mu        sync.Mutex
	calls     int
	inputs    []string
	histories [][]domain.Turn
	defs      []*Definition
	reply     func(input string) string
	err       error
	block     bool
}

func (f *fakeRunner) Run(ctx context.Context, def *Definition, input string, history []domain.Turn) (string, error) {
	f.mu.Lock()
	f.calls++
	f.inputs = append(f.inputs, input)
	f.histories = append(f.histories, append([]domain.Turn(nil), history...))
	f.defs = append(f.defs, def)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	if f.reply != nil {
		return f.reply(input), nil
	}
	return "reply to " + input, nil
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeCompleter returns a canned completion and records the last request.
type fakeCompleter struct {
	last openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.last = req
	return f.resp, f.err
}

func completion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: openai.FinishReasonStop,
		}},
	}
}

func newTestSessions(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "conversations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// countingProvider returns a provider over a test definition and the number
// of times it was built.
func countingProvider() (*Provider, *atomic.Int32) {
	var builds atomic.Int32
	p := NewProvider(func() (*Definition, error) {
		builds.Add(1)
		return NewDefinition(AssistantName, "be helpful", "test-model", &fakeCompleter{}), nil
	})
	return p, &builds
}

func historyOf(t *testing.T, sessions *store.SQLiteStore, id string) []domain.Turn {
	t.Helper()
	sess, err := sessions.GetOrCreate(context.Background(), id)
	require.NoError(t, err)
	turns, err := sess.History(context.Background())
	require.NoError(t, err)
	return turns
}
