package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bodul/crosswordmaster/internal/puzzle"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a puzzle or session does not exist.
var ErrNotFound = errors.New("not found")

// PuzzleStore persists puzzles and the record of completed puzzles.
type PuzzleStore interface {
	SavePuzzle(ctx context.Context, p *puzzle.Puzzle) (*puzzle.Puzzle, error)
	GetPuzzle(ctx context.Context, id string) (*puzzle.Puzzle, error)
	ListPuzzles(ctx context.Context) ([]*puzzle.Puzzle, error)
	SaveCompletion(ctx context.Context, c puzzle.Completion) error
	ListCompletions(ctx context.Context) ([]puzzle.Completion, error)
	Close() error
}

// Memory holds puzzles and completions in memory.
type Memory struct {
	mu          sync.RWMutex
	puzzles     map[string]*puzzle.Puzzle
	completions map[string]puzzle.Completion // by puzzle ID
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		puzzles:     make(map[string]*puzzle.Puzzle),
		completions: make(map[string]puzzle.Completion),
	}
}

// SavePuzzle stores a puzzle and returns it with a generated ID.
func (s *Memory) SavePuzzle(_ context.Context, p *puzzle.Puzzle) (*puzzle.Puzzle, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()

	s.mu.Lock()
	s.puzzles[p.ID] = p
	s.mu.Unlock()

	return p, nil
}

// GetPuzzle returns a puzzle by ID.
func (s *Memory) GetPuzzle(_ context.Context, id string) (*puzzle.Puzzle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.puzzles[id]
	if !ok {
		return nil, fmt.Errorf("puzzle %s: %w", id, ErrNotFound)
	}
	return p, nil
}

// ListPuzzles returns all puzzles, most recent first.
func (s *Memory) ListPuzzles(_ context.Context) ([]*puzzle.Puzzle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*puzzle.Puzzle, 0, len(s.puzzles))
	for _, p := range s.puzzles {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// SaveCompletion records a solved puzzle, replacing any earlier record for
// the same puzzle.
func (s *Memory) SaveCompletion(_ context.Context, c puzzle.Completion) error {
	s.mu.Lock()
	s.completions[c.PuzzleID] = c
	s.mu.Unlock()
	return nil
}

// ListCompletions returns completions, most recent first.
func (s *Memory) ListCompletions(_ context.Context) ([]puzzle.Completion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]puzzle.Completion, 0, len(s.completions))
	for _, c := range s.completions {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CompletedAt.After(list[j].CompletedAt)
	})
	return list, nil
}

// Close is a no-op for the memory store.
func (s *Memory) Close() error { return nil }

// Sessions holds live solving sessions. Sessions are transient and always
// live in memory, whatever backs the puzzles.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*puzzle.Session
}

// NewSessions creates an empty session registry.
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]*puzzle.Session)}
}

// Create starts a new session for a puzzle.
func (s *Sessions) Create(p *puzzle.Puzzle) *puzzle.Session {
	sess := puzzle.NewSession(uuid.NewString(), p, time.Now())

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get returns a session by ID, or nil if not found.
func (s *Sessions) Get(id string) *puzzle.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
