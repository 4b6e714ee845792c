package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bodul/crosswordmaster/internal/crossword"
	"github.com/bodul/crosswordmaster/internal/puzzle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPuzzle(t *testing.T) *puzzle.Puzzle {
	t.Helper()
	p, err := puzzle.New(puzzle.SampleDraft(), crossword.New(crossword.DefaultOptions()))
	require.NoError(t, err)
	return p
}

// testPuzzleStore runs the behaviour every PuzzleStore must have.
func testPuzzleStore(t *testing.T, s PuzzleStore) {
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		p, err := s.SavePuzzle(ctx, newTestPuzzle(t))
		require.NoError(t, err)
		require.NotEmpty(t, p.ID, "expected puzzle to have an ID")
		assert.False(t, p.CreatedAt.IsZero())

		got, err := s.GetPuzzle(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Title, got.Title)
		assert.Equal(t, p.Grid, got.Grid)
		assert.Equal(t, p.Words, got.Words)

		_, err = s.GetPuzzle(ctx, "nonexistent")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		_, err := s.SavePuzzle(ctx, newTestPuzzle(t))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
		_, err = s.SavePuzzle(ctx, newTestPuzzle(t))
		require.NoError(t, err)

		list, err := s.ListPuzzles(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(list), 2)
		for i := 1; i < len(list); i++ {
			assert.False(t, list[i-1].CreatedAt.Before(list[i].CreatedAt),
				"expected puzzles sorted by descending creation time")
		}
	})

	t.Run("completion replaces earlier one", func(t *testing.T) {
		p, err := s.SavePuzzle(ctx, newTestPuzzle(t))
		require.NoError(t, err)

		first := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, s.SaveCompletion(ctx, puzzle.Completion{PuzzleID: p.ID, SessionID: "a", Score: 500, CompletedAt: first}))
		require.NoError(t, s.SaveCompletion(ctx, puzzle.Completion{PuzzleID: p.ID, SessionID: "b", Score: 900, CompletedAt: first.Add(time.Minute)}))

		list, err := s.ListCompletions(ctx)
		require.NoError(t, err)

		var found []puzzle.Completion
		for _, c := range list {
			if c.PuzzleID == p.ID {
				found = append(found, c)
			}
		}
		require.Len(t, found, 1)
		assert.Equal(t, 900, found[0].Score)
		assert.Equal(t, "b", found[0].SessionID)
	})
}

func TestMemoryStore(t *testing.T) {
	testPuzzleStore(t, NewMemory())
}

func TestSessions(t *testing.T) {
	sessions := NewSessions()
	p := newTestPuzzle(t)
	p.ID = "p1"

	sess := sessions.Create(p)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "p1", sess.PuzzleID)
	assert.Same(t, sess, sessions.Get(sess.ID))
	assert.Nil(t, sessions.Get("unknown"))

	state := sess.GetState()
	require.Len(t, state, p.Size)
	assert.Len(t, state[0], p.Size)
}

func TestSessionsConcurrentCreate(t *testing.T) {
	sessions := NewSessions()
	p := newTestPuzzle(t)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := sessions.Create(p)
			sessions.Get(s.ID)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, sessions.Len())
}
