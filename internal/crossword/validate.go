package crossword

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLayout is returned by Verify when a layout breaks a grid rule.
var ErrInvalidLayout = errors.New("invalid crossword layout")

// Verify checks that the grid and the word placements agree: every placed
// word spells its text on the grid as a complete run, every run of two or
// more letters is a placed word, every letter belongs to a word and clue
// numbers are 1..N in reading order with one number per start cell.
func (l *Layout) Verify() error {
	size := l.Grid.Size()
	if size != l.Size {
		return fmt.Errorf("%w: grid is %d wide, expected %d", ErrInvalidLayout, size, l.Size)
	}
	for r, row := range l.Grid {
		if len(row) != size {
			return fmt.Errorf("%w: row %d has %d cells", ErrInvalidLayout, r, len(row))
		}
	}

	covered := make(map[[2]int]bool)
	runs := make(map[runKey]bool)
	startNumbers := make(map[[2]int]int)
	for _, w := range l.Words {
		if !w.Placed() {
			continue
		}
		p := w.Placement
		letters := []rune(strings.ToUpper(w.Text))
		dr, dc := p.Direction.step()
		for k, c := range w.Cells() {
			if !l.Grid.InBounds(c[0], c[1]) {
				return fmt.Errorf("%w: %s leaves the grid", ErrInvalidLayout, w.Text)
			}
			if l.Grid[c[0]][c[1]].Letter != string(letters[k]) {
				return fmt.Errorf("%w: %s does not match the grid at (%d,%d)", ErrInvalidLayout, w.Text, c[0], c[1])
			}
			covered[c] = true
		}
		if l.letterAt(p.Row-dr, p.Col-dc) || l.letterAt(p.Row+dr*len(letters), p.Col+dc*len(letters)) {
			return fmt.Errorf("%w: %s touches another word end to end", ErrInvalidLayout, w.Text)
		}
		runs[runKey{p.Row, p.Col, p.Direction, len(letters)}] = true

		start := [2]int{p.Row, p.Col}
		if n, ok := startNumbers[start]; ok && n != p.Number {
			return fmt.Errorf("%w: words starting at (%d,%d) have numbers %d and %d", ErrInvalidLayout, p.Row, p.Col, n, p.Number)
		}
		startNumbers[start] = p.Number
	}

	next := 1
	for r := range size {
		for c := range size {
			cell := l.Grid[r][c]
			if !cell.Blocked() && !covered[[2]int{r, c}] {
				return fmt.Errorf("%w: letter at (%d,%d) belongs to no word", ErrInvalidLayout, r, c)
			}
			n, isStart := startNumbers[[2]int{r, c}]
			switch {
			case isStart && (n != next || cell.Number != n):
				return fmt.Errorf("%w: expected number %d at (%d,%d), got %d", ErrInvalidLayout, next, r, c, cell.Number)
			case !isStart && cell.Number != 0:
				return fmt.Errorf("%w: stray number %d at (%d,%d)", ErrInvalidLayout, cell.Number, r, c)
			}
			if isStart {
				next++
			}
		}
	}

	for _, run := range l.runs() {
		if !runs[run] {
			return fmt.Errorf("%w: %s run at (%d,%d) is not a placed word", ErrInvalidLayout, run.dir, run.row, run.col)
		}
	}
	return nil
}

type runKey struct {
	row, col int
	dir      Direction
	length   int
}

// runs lists every maximal horizontal and vertical run of two or more letters.
func (l *Layout) runs() []runKey {
	var out []runKey
	size := l.Grid.Size()
	for _, dir := range []Direction{Horizontal, Vertical} {
		dr, dc := dir.step()
		for r := range size {
			for c := range size {
				if !l.letterAt(r, c) || l.letterAt(r-dr, c-dc) {
					continue
				}
				n := 0
				for l.letterAt(r+dr*n, c+dc*n) {
					n++
				}
				if n >= 2 {
					out = append(out, runKey{r, c, dir, n})
				}
			}
		}
	}
	return out
}

func (l *Layout) letterAt(row, col int) bool {
	return l.Grid.InBounds(row, col) && !l.Grid[row][col].Blocked()
}
