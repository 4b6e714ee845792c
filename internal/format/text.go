package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/bodul/crosswordmaster/internal/puzzle"
)

// Text writes the grid, cropped to its letters, followed by the across and
// down clue lists. Clue numbers are highlighted when colour is enabled.
func Text(w io.Writer, p *puzzle.Puzzle) error {
	numbered := color.New(color.FgYellow, color.Bold)

	minRow, minCol, maxRow, maxCol, ok := bounds(p)
	if ok {
		for r := minRow; r <= maxRow; r++ {
			var b strings.Builder
			for c := minCol; c <= maxCol; c++ {
				cell := p.Grid[r][c]
				switch {
				case cell.Blocked():
					b.WriteString(" ##")
				case cell.Number > 0:
					b.WriteString(" " + numbered.Sprint(cell.Letter) + " ")
				default:
					b.WriteString(" " + cell.Letter + " ")
				}
			}
			if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
				return err
			}
		}
	}

	across, down := p.Clues()
	for _, section := range []struct {
		name  string
		clues []puzzle.Clue
	}{{"Horizontal", across}, {"Vertical", down}} {
		if len(section.clues) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n%s\n", section.name); err != nil {
			return err
		}
		for _, c := range section.clues {
			if _, err := fmt.Fprintf(w, "%s. %s (%d)\n", numbered.Sprint(c.Number), c.Definition, c.Length); err != nil {
				return err
			}
		}
	}
	return nil
}

// bounds returns the smallest rectangle holding every letter of the grid.
func bounds(p *puzzle.Puzzle) (minRow, minCol, maxRow, maxCol int, ok bool) {
	minRow, minCol = len(p.Grid), len(p.Grid)
	maxRow, maxCol = -1, -1
	for r, row := range p.Grid {
		for c, cell := range row {
			if cell.Blocked() {
				continue
			}
			minRow, maxRow = min(minRow, r), max(maxRow, r)
			minCol, maxCol = min(minCol, c), max(maxCol, c)
		}
	}
	return minRow, minCol, maxRow, maxCol, maxRow >= 0
}
