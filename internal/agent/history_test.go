package agent

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/portfolio-assistant/internal/domain"
)

// perTurnCounter charges a flat cost per turn.
type perTurnCounter struct {
	cost int
	err  error
}

func (c perTurnCounter) Count(turns []domain.Turn) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	return len(turns) * c.cost, nil
}

func exchanges(n int) []domain.Turn {
	turns := make([]domain.Turn, 0, n*2)
	for i := range n {
		turns = append(turns,
			domain.NewTurn(domain.RoleUser, fmt.Sprintf("q%d", i)),
			domain.NewTurn(domain.RoleAssistant, fmt.Sprintf("a%d", i)),
		)
	}
	return turns
}

func TestHistoryWindowZeroIsUnbounded(t *testing.T) {
	turns := exchanges(50)
	assert.Len(t, HistoryWindow{}.Apply(turns), 100)
}

func TestHistoryWindowMaxTurns(t *testing.T) {
	got := HistoryWindow{MaxTurns: 4}.Apply(exchanges(5))
	require.Len(t, got, 4)
	assert.Equal(t, "q3", got[0].Content)
	assert.Equal(t, "a4", got[3].Content)
}

func TestHistoryWindowDropsLeadingAssistantAfterTrim(t *testing.T) {
	got := HistoryWindow{MaxTurns: 3}.Apply(exchanges(3))
	require.Len(t, got, 2)
	assert.Equal(t, domain.RoleUser, got[0].Role)
	assert.Equal(t, "q2", got[0].Content)
}

func TestHistoryWindowKeepsUntrimmedLeadingAssistant(t *testing.T) {
	turns := []domain.Turn{domain.NewTurn(domain.RoleAssistant, "greeting")}
	assert.Len(t, HistoryWindow{MaxTurns: 5}.Apply(turns), 1)
}

func TestHistoryWindowMaxTokens(t *testing.T) {
	w := HistoryWindow{MaxTokens: 40, Counter: perTurnCounter{cost: 10}}
	got := w.Apply(exchanges(4))
	require.Len(t, got, 4)
	assert.Equal(t, "q2", got[0].Content)
}

func TestHistoryWindowCounterErrorShrinksToEmpty(t *testing.T) {
	w := HistoryWindow{MaxTokens: 10, Counter: perTurnCounter{err: errors.New("bad encoding")}}
	assert.Empty(t, w.Apply(exchanges(2)))
}

func TestTiktokenCounter(t *testing.T) {
	counter, err := NewTiktokenCounter("gemini-2.5-flash")
	if err != nil {
		t.Skipf("token encoding unavailable: %v", err)
	}
	n, err := counter.Count(exchanges(1))
	require.NoError(t, err)
	assert.Greater(t, n, 2*tokensPerMessage)
}
