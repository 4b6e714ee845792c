package crossword

// Direction is the orientation of a placed word.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// step returns the row and column increments for walking a word.
func (d Direction) step() (dr, dc int) {
	if d == Vertical {
		return 1, 0
	}
	return 0, 1
}

// Placement records where a word sits on the grid.
type Placement struct {
	Direction Direction `json:"direction"`
	Row       int       `json:"start_row"`
	Col       int       `json:"start_col"`
	Number    int       `json:"number"`
}

// WordEntry is one answer with its clue.
// Placement is nil until the generator has put the word on a grid, and stays
// nil for words it could not connect to the layout.
type WordEntry struct {
	ID         string     `json:"id"`
	Text       string     `json:"word"`
	Definition string     `json:"definition"`
	Placement  *Placement `json:"placement,omitempty"`
}

// Placed reports whether the word has a position on the grid.
func (w WordEntry) Placed() bool { return w.Placement != nil }

// Cells returns the grid coordinates covered by a placed word, or nil.
func (w WordEntry) Cells() [][2]int {
	if w.Placement == nil {
		return nil
	}
	dr, dc := w.Placement.Direction.step()
	n := len([]rune(w.Text))
	cells := make([][2]int, n)
	for k := range n {
		cells[k] = [2]int{w.Placement.Row + dr*k, w.Placement.Col + dc*k}
	}
	return cells
}

// Cell is a single grid position.
// A cell without a letter is unused and rendered as a blocked cell.
type Cell struct {
	Letter string `json:"letter,omitempty"`
	Number int    `json:"number,omitempty"`
}

// Blocked reports whether no word runs through the cell.
func (c Cell) Blocked() bool { return c.Letter == "" }

// Grid is a square matrix of cells indexed [row][col].
type Grid [][]Cell

// NewGrid returns an empty size×size grid.
func NewGrid(size int) Grid {
	g := make(Grid, size)
	for i := range g {
		g[i] = make([]Cell, size)
	}
	return g
}

// Size returns the side length of the grid.
func (g Grid) Size() int { return len(g) }

// InBounds reports whether (row, col) is a valid index.
func (g Grid) InBounds(row, col int) bool {
	return row >= 0 && row < len(g) && col >= 0 && col < len(g)
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	cp := make(Grid, len(g))
	for i, row := range g {
		cp[i] = make([]Cell, len(row))
		copy(cp[i], row)
	}
	return cp
}

// Layout is the result of one generation: the filled grid and the input
// words, in input order, annotated with their placements.
type Layout struct {
	Size  int         `json:"size"`
	Grid  Grid        `json:"grid"`
	Words []WordEntry `json:"words"`
}

// Placed returns the words that made it onto the grid.
func (l *Layout) Placed() []WordEntry {
	var out []WordEntry
	for _, w := range l.Words {
		if w.Placed() {
			out = append(out, w)
		}
	}
	return out
}

// Unplaced returns the words the generator could not connect to the layout.
func (l *Layout) Unplaced() []WordEntry {
	var out []WordEntry
	for _, w := range l.Words {
		if !w.Placed() {
			out = append(out, w)
		}
	}
	return out
}
