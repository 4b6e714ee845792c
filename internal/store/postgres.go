package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bodul/crosswordmaster/internal/puzzle"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const queryTimeout = 10 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS puzzles (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	theme      TEXT NOT NULL,
	size       INTEGER NOT NULL,
	words      JSONB NOT NULL,
	grid       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS completions (
	puzzle_id    TEXT PRIMARY KEY REFERENCES puzzles(id) ON DELETE CASCADE,
	session_id   TEXT NOT NULL,
	score        INTEGER NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL
);`

// ErrConflict is returned when a puzzle ID is already taken.
var ErrConflict = errors.New("conflict")

// Postgres stores puzzles and completions in PostgreSQL.
type Postgres struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgres connects to dsn and creates the tables if needed.
func NewPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	logger.Info("Checked/created tables puzzles and completions")
	return &Postgres{db: db, log: logger}, nil
}

// SavePuzzle inserts a puzzle with a generated ID.
func (s *Postgres) SavePuzzle(ctx context.Context, p *puzzle.Puzzle) (*puzzle.Puzzle, error) {
	words, err := json.Marshal(p.Words)
	if err != nil {
		return nil, fmt.Errorf("encode words: %w", err)
	}
	grid, err := json.Marshal(p.Grid)
	if err != nil {
		return nil, fmt.Errorf("encode grid: %w", err)
	}

	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO puzzles (id, title, theme, size, words, grid, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Title, p.Theme, p.Size, words, grid, p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("puzzle %s: %w", p.ID, ErrConflict)
		}
		return nil, fmt.Errorf("insert puzzle: %w", err)
	}
	return p, nil
}

// GetPuzzle loads a puzzle and checks that its stored grid is consistent.
func (s *Postgres) GetPuzzle(ctx context.Context, id string) (*puzzle.Puzzle, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, theme, size, words, grid, created_at FROM puzzles WHERE id = $1`, id)
	p, err := scanPuzzle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("puzzle %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := p.Layout().Verify(); err != nil {
		return nil, fmt.Errorf("puzzle %s: %w", id, err)
	}
	return p, nil
}

// ListPuzzles returns all puzzles, most recent first.
func (s *Postgres) ListPuzzles(ctx context.Context) ([]*puzzle.Puzzle, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, theme, size, words, grid, created_at FROM puzzles ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query puzzles: %w", err)
	}
	defer rows.Close()

	var list []*puzzle.Puzzle
	for rows.Next() {
		p, err := scanPuzzle(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return list, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPuzzle(row scanner) (*puzzle.Puzzle, error) {
	var (
		p           puzzle.Puzzle
		words, grid []byte
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Theme, &p.Size, &words, &grid, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan puzzle: %w", err)
	}
	if err := json.Unmarshal(words, &p.Words); err != nil {
		return nil, fmt.Errorf("decode words of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(grid, &p.Grid); err != nil {
		return nil, fmt.Errorf("decode grid of %s: %w", p.ID, err)
	}
	return &p, nil
}

// SaveCompletion upserts the completion record of a puzzle.
func (s *Postgres) SaveCompletion(ctx context.Context, c puzzle.Completion) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO completions (puzzle_id, session_id, score, completed_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (puzzle_id) DO UPDATE
		 SET session_id = EXCLUDED.session_id, score = EXCLUDED.score, completed_at = EXCLUDED.completed_at`,
		c.PuzzleID, c.SessionID, c.Score, c.CompletedAt)
	if err != nil {
		return fmt.Errorf("upsert completion: %w", err)
	}
	return nil
}

// ListCompletions returns completions, most recent first.
func (s *Postgres) ListCompletions(ctx context.Context) ([]puzzle.Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT puzzle_id, session_id, score, completed_at FROM completions ORDER BY completed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	var list []puzzle.Completion
	for rows.Next() {
		var c puzzle.Completion
		if err := rows.Scan(&c.PuzzleID, &c.SessionID, &c.Score, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return list, nil
}

// Close closes the connection pool.
func (s *Postgres) Close() error {
	return s.db.Close()
}
