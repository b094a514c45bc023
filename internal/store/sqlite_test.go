package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/portfolio-assistant/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "sessions", "conversations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetOrCreateNewSessionIsEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess, err := s.GetOrCreate(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", sess.ID())

	history, err := sess.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAppendPreservesOrderAcrossHandles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.GetOrCreate(ctx, "abc")
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx,
		domain.NewTurn(domain.RoleUser, "hi"),
		domain.NewTurn(domain.RoleAssistant, "hello"),
	))

	second, err := s.GetOrCreate(ctx, "abc")
	require.NoError(t, err)
	require.NoError(t, second.Append(ctx,
		domain.NewTurn(domain.RoleUser, "what do you build?"),
		domain.NewTurn(domain.RoleAssistant, "web apps"),
	))

	history, err := second.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, []string{"hi", "hello", "what do you build?", "web apps"}, contents(history))
	assert.Equal(t, domain.RoleUser, history[2].Role)
	assert.Equal(t, domain.RoleAssistant, history[3].Role)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.GetOrCreate(ctx, "a")
	require.NoError(t, err)
	b, err := s.GetOrCreate(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, a.Append(ctx, domain.NewTurn(domain.RoleUser, "only a")))

	history, err := b.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAppendRejectsUnknownRole(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess, err := s.GetOrCreate(ctx, "roles")
	require.NoError(t, err)

	err = sess.Append(ctx,
		domain.NewTurn(domain.RoleUser, "kept?"),
		domain.Turn{Role: "system", Content: "nope"},
	)
	require.Error(t, err)

	history, err := sess.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history, "failed append must not leave partial turns")
}

func TestConcurrentAppendsKeepPairsContiguous(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := s.GetOrCreate(ctx, "shared")
			if !assert.NoError(t, err) {
				return
			}
			assert.NoError(t, sess.Append(ctx,
				domain.NewTurn(domain.RoleUser, "q"),
				domain.NewTurn(domain.RoleAssistant, "a"),
			))
		}()
	}
	wg.Wait()

	sess, err := s.GetOrCreate(ctx, "shared")
	require.NoError(t, err)
	history, err := sess.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 16)
	for i := 0; i < len(history); i += 2 {
		assert.Equal(t, domain.RoleUser, history[i].Role)
		assert.Equal(t, domain.RoleAssistant, history[i+1].Role)
	}
}

func TestPingAndReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))
	sess, err := s.GetOrCreate(ctx, "durable")
	require.NoError(t, err)
	require.NoError(t, sess.Append(ctx, domain.NewTurn(domain.RoleUser, "remember me")))
	require.NoError(t, s.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	sess, err = reopened.GetOrCreate(ctx, "durable")
	require.NoError(t, err)
	history, err := sess.History(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"remember me"}, contents(history))
}

func contents(turns []domain.Turn) []string {
	out := make([]string, 0, len(turns))
	for _, t := range turns {
		out = append(out, t.Content)
	}
	return out
}
