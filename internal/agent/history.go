package agent

import (
	"fmt"
	"log/slog"

	"github.com/pkoukk/tiktoken-go"

	"github.com/ashureev/portfolio-assistant/internal/domain"
)

// tokensPerMessage approximates the chat-format overhead of one message.
const tokensPerMessage = 4

// HistoryWindow limits how much of a stored session is replayed to the
// model. The stored log itself is never truncated. Zero limits disable
// the corresponding cap.
type HistoryWindow struct {
	MaxTurns  int
	MaxTokens int
	Counter   TokenCounter
}

// Apply returns the newest suffix of turns that fits the window.
func (w HistoryWindow) Apply(turns []domain.Turn) []domain.Turn {
	full := len(turns)

	if w.MaxTurns > 0 && len(turns) > w.MaxTurns {
		turns = turns[len(turns)-w.MaxTurns:]
	}

	if w.MaxTokens > 0 && w.Counter != nil {
		for len(turns) > 0 {
			n, err := w.Counter.Count(turns)
			if err != nil {
				slog.Warn("count history tokens failed, dropping oldest turn", "error", err)
				turns = turns[1:]
				continue
			}
			if n <= w.MaxTokens {
				break
			}
			turns = turns[1:]
		}
	}

	// A trimmed replay should not open with a reply to a question it no longer shows.
	if len(turns) < full {
		for len(turns) > 0 && turns[0].Role == domain.RoleAssistant {
			turns = turns[1:]
		}
	}
	return turns
}

// TiktokenCounter counts tokens with a BPE encoding.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter resolves the encoding for model, falling back to
// cl100k_base for models tiktoken does not know.
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("load token encoding: %w", err)
		}
	}
	return &TiktokenCounter{enc: enc}, nil
}

// Count returns the approximate prompt tokens for turns.
func (c *TiktokenCounter) Count(turns []domain.Turn) (int, error) {
	total := 0
	for _, turn := range turns {
		total += tokensPerMessage
		total += len(c.enc.Encode(string(turn.Role), nil, nil))
		total += len(c.enc.Encode(turn.Content, nil, nil))
	}
	return total, nil
}
