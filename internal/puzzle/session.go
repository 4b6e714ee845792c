package puzzle

import (
	"errors"
	"math"
	"sync"
	"time"
)

var (
	ErrOutOfBounds   = errors.New("position out of bounds")
	ErrBlockedCell   = errors.New("blocked cell")
	ErrInvalidLetter = errors.New("invalid letter")
)

// Player represents a connected solver.
type Player struct {
	Pseudo   string    `json:"pseudo"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"joined_at"`
}

// Session is one solving attempt of a puzzle. It owns the solver's letters
// and never writes to the puzzle itself.
type Session struct {
	ID        string             `json:"id"`
	PuzzleID  string             `json:"puzzle_id"`
	Players   map[string]*Player `json:"players"`
	State     [][]string         `json:"state"` // solver letters [row][col]
	StartedAt time.Time          `json:"started_at"`
	SolvedAt  *time.Time         `json:"solved_at,omitempty"`
	open      [][]bool
	mu        sync.Mutex
}

// playerColors is the palette assigned to players in order.
var playerColors = []string{
	"#2563eb", "#dc2626", "#16a34a", "#9333ea",
	"#ea580c", "#0891b2", "#c026d3", "#ca8a04",
}

// NewSession starts a fresh attempt at p with an empty solver grid.
func NewSession(id string, p *Puzzle, now time.Time) *Session {
	state := make([][]string, len(p.Grid))
	open := make([][]bool, len(p.Grid))
	for r, row := range p.Grid {
		state[r] = make([]string, len(row))
		open[r] = make([]bool, len(row))
		for c, cell := range row {
			open[r][c] = !cell.Blocked()
		}
	}
	return &Session{
		ID:        id,
		PuzzleID:  p.ID,
		Players:   make(map[string]*Player),
		State:     state,
		StartedAt: now,
		open:      open,
	}
}

// AddPlayer adds a player to the session and returns the player.
func (s *Session) AddPlayer(pseudo string) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.Players[pseudo]; ok {
		return p
	}

	p := &Player{
		Pseudo:   pseudo,
		Color:    playerColors[len(s.Players)%len(playerColors)],
		JoinedAt: time.Now(),
	}
	s.Players[pseudo] = p
	return p
}

// RemovePlayer removes a player from the session.
func (s *Session) RemovePlayer(pseudo string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Players, pseudo)
}

// SetCell writes a letter, or erases the cell when value is empty.
// It returns the normalised letter that was stored.
func (s *Session) SetCell(row, col int, value string) (string, error) {
	letter, err := NormalizeLetter(value)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if row < 0 || row >= len(s.State) || col < 0 || col >= len(s.State[row]) {
		return "", ErrOutOfBounds
	}
	if !s.open[row][col] {
		return "", ErrBlockedCell
	}
	s.State[row][col] = letter
	return letter, nil
}

// GetState returns a copy of the solver's letters.
func (s *Session) GetState() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyState()
}

func (s *Session) copyState() [][]string {
	cp := make([][]string, len(s.State))
	for i, row := range s.State {
		cp[i] = make([]string, len(row))
		copy(cp[i], row)
	}
	return cp
}

// Snapshot is a consistent copy of a session, safe to encode.
type Snapshot struct {
	ID        string             `json:"id"`
	PuzzleID  string             `json:"puzzle_id"`
	Players   map[string]*Player `json:"players"`
	State     [][]string         `json:"state"`
	StartedAt time.Time          `json:"started_at"`
	SolvedAt  *time.Time         `json:"solved_at,omitempty"`
}

// Snapshot copies the session under its lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := make(map[string]*Player, len(s.Players))
	for k, p := range s.Players {
		cp := *p
		players[k] = &cp
	}
	return Snapshot{
		ID:        s.ID,
		PuzzleID:  s.PuzzleID,
		Players:   players,
		State:     s.copyState(),
		StartedAt: s.StartedAt,
		SolvedAt:  s.SolvedAt,
	}
}

// CellCheck is the outcome of checking one cell.
type CellCheck string

const (
	CellBlocked CellCheck = ""
	CellCorrect CellCheck = "correct"
	CellWrong   CellCheck = "wrong"
	CellEmpty   CellCheck = "empty"
)

// CheckResult is the graded state of a session.
type CheckResult struct {
	Correct int  `json:"correct"`
	Total   int  `json:"total"`
	Score   int  `json:"score"`
	Solved  bool `json:"solved"`
	// FirstSolve is set only by the check that marked the session solved.
	FirstSolve bool          `json:"first_solve"`
	Cells      [][]CellCheck `json:"cells"`
}

// Check compares every letter cell with the puzzle's answer and scores the
// attempt. The first fully correct check marks the session solved.
func (s *Session) Check(p *Puzzle, now time.Time) CheckResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := CheckResult{Cells: make([][]CellCheck, len(p.Grid))}
	for r, row := range p.Grid {
		res.Cells[r] = make([]CellCheck, len(row))
		for c, cell := range row {
			if cell.Blocked() {
				continue
			}
			res.Total++
			got := ""
			if r < len(s.State) && c < len(s.State[r]) {
				got = s.State[r][c]
			}
			switch {
			case got == cell.Letter:
				res.Correct++
				res.Cells[r][c] = CellCorrect
			case got == "":
				res.Cells[r][c] = CellEmpty
			default:
				res.Cells[r][c] = CellWrong
			}
		}
	}

	res.Score = Score(res.Correct, res.Total, now.Sub(s.StartedAt))
	res.Solved = res.Total > 0 && res.Correct == res.Total
	if res.Solved && s.SolvedAt == nil {
		t := now
		s.SolvedAt = &t
		res.FirstSolve = true
	}
	return res
}

const (
	completionWeight = 10  // points per percent of correct cells
	timeBonusSeconds = 300 // bonus decreases by one point per second
)

// Score rewards completion and speed: ten points per percent of correct
// cells plus one point per second left of a five minute bonus window.
func Score(correct, total int, elapsed time.Duration) int {
	if total == 0 {
		return 0
	}
	completion := float64(correct) / float64(total) * 100
	bonus := max(0, timeBonusSeconds-int(elapsed/time.Second))
	return int(math.Round(completion*completionWeight + float64(bonus)))
}

// Completion records a solved puzzle.
type Completion struct {
	PuzzleID    string    `json:"puzzle_id"`
	SessionID   string    `json:"session_id"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}
