package puzzle

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bodul/crosswordmaster/internal/crossword"
	"github.com/google/uuid"
)

// MaxWords bounds the size of a single puzzle.
const MaxWords = 50

var (
	ErrTitleRequired      = errors.New("title and theme are required")
	ErrNoWords            = errors.New("a puzzle needs at least one word")
	ErrTooManyWords       = errors.New("too many words")
	ErrInvalidWord        = errors.New("invalid word")
	ErrDefinitionRequired = errors.New("every word needs a definition")
)

// WordInput is a word/definition pair as typed by an author.
type WordInput struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
}

// Draft is the author's input before a grid exists.
type Draft struct {
	Title string      `json:"title"`
	Theme string      `json:"theme"`
	Words []WordInput `json:"words"`
}

// Puzzle is a generated crossword with its clues. It is the canonical
// definition shared by every solving session and is never modified by them.
type Puzzle struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Theme     string                `json:"theme"`
	Size      int                   `json:"size"`
	Words     []crossword.WordEntry `json:"words"`
	Grid      crossword.Grid        `json:"grid"`
	CreatedAt time.Time             `json:"created_at"`
}

// New validates a draft, normalises its answers and lays them out with gen.
// ID and CreatedAt are left for the store to fill in.
func New(d Draft, gen *crossword.Generator) (*Puzzle, error) {
	title := strings.TrimSpace(d.Title)
	theme := strings.TrimSpace(d.Theme)
	if title == "" || theme == "" {
		return nil, ErrTitleRequired
	}
	if len(d.Words) == 0 {
		return nil, ErrNoWords
	}
	if len(d.Words) > MaxWords {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManyWords, len(d.Words), MaxWords)
	}

	words := make([]crossword.WordEntry, 0, len(d.Words))
	for _, in := range d.Words {
		answer, err := NormalizeAnswer(in.Word)
		if err != nil {
			return nil, err
		}
		def := strings.TrimSpace(in.Definition)
		if def == "" {
			return nil, fmt.Errorf("%w: %s", ErrDefinitionRequired, answer)
		}
		words = append(words, crossword.WordEntry{
			ID:         uuid.NewString(),
			Text:       answer,
			Definition: def,
		})
	}

	layout := gen.Generate(words)
	return &Puzzle{
		Title: title,
		Theme: theme,
		Size:  layout.Size,
		Words: layout.Words,
		Grid:  layout.Grid,
	}, nil
}

// Layout returns the puzzle's grid and words as a generator layout.
func (p *Puzzle) Layout() *crossword.Layout {
	return &crossword.Layout{Size: p.Size, Grid: p.Grid, Words: p.Words}
}

// Unplaced lists the words the generator could not fit, so the author can
// rework them.
func (p *Puzzle) Unplaced() []crossword.WordEntry {
	return p.Layout().Unplaced()
}

// Clue is one numbered definition in the across or down list.
type Clue struct {
	Number     int    `json:"number"`
	Definition string `json:"definition"`
	Length     int    `json:"length"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
}

// Clues returns the across and down clue lists sorted by number.
func (p *Puzzle) Clues() (across, down []Clue) {
	for _, w := range p.Words {
		if !w.Placed() {
			continue
		}
		c := Clue{
			Number:     w.Placement.Number,
			Definition: w.Definition,
			Length:     len([]rune(w.Text)),
			Row:        w.Placement.Row,
			Col:        w.Placement.Col,
		}
		if w.Placement.Direction == crossword.Horizontal {
			across = append(across, c)
		} else {
			down = append(down, c)
		}
	}
	byNumber := func(cs []Clue) func(i, j int) bool {
		return func(i, j int) bool { return cs[i].Number < cs[j].Number }
	}
	sort.SliceStable(across, byNumber(across))
	sort.SliceStable(down, byNumber(down))
	return across, down
}

// SolverCell is a grid cell as shown to a solver: no answer, only whether a
// letter goes there and its clue number.
type SolverCell struct {
	Open   bool `json:"open"`
	Number int  `json:"number,omitempty"`
}

// SolverView is the puzzle without its answers.
type SolverView struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Theme  string         `json:"theme"`
	Size   int            `json:"size"`
	Cells  [][]SolverCell `json:"cells"`
	Across []Clue         `json:"across"`
	Down   []Clue         `json:"down"`
}

// SolverView hides the answers of the puzzle.
func (p *Puzzle) SolverView() SolverView {
	cells := make([][]SolverCell, len(p.Grid))
	for r, row := range p.Grid {
		cells[r] = make([]SolverCell, len(row))
		for c, cell := range row {
			cells[r][c] = SolverCell{Open: !cell.Blocked(), Number: cell.Number}
		}
	}
	across, down := p.Clues()
	return SolverView{
		ID:     p.ID,
		Title:  p.Title,
		Theme:  p.Theme,
		Size:   p.Size,
		Cells:  cells,
		Across: across,
		Down:   down,
	}
}

// SampleDraft is the demonstration puzzle offered on an empty installation.
func SampleDraft() Draft {
	return Draft{
		Title: "Puzzle de Démonstration",
		Theme: "Informatique",
		Words: []WordInput{
			{Word: "ORDINATEUR", Definition: "Machine électronique de traitement de données"},
			{Word: "INTERNET", Definition: "Réseau mondial de communication"},
			{Word: "LOGICIEL", Definition: "Programme informatique"},
		},
	}
}
