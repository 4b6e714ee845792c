package format

import (
	"encoding/xml"
	"errors"
	"strings"

	"github.com/bodul/crosswordmaster/internal/crossword"
	"github.com/bodul/crosswordmaster/internal/puzzle"
)

const blockedCell = "."

type xpfClue struct {
	Row       int    `xml:"Row,attr"`
	Col       int    `xml:"Col,attr"`
	Number    int    `xml:"Num,attr"`
	Direction string `xml:"Dir,attr"`
	Answer    string `xml:"Ans,attr"`
	Text      string `xml:",chardata"`
}

type xpfPuzzle struct {
	Type    string
	Title   string
	Author  string `xml:",omitempty"`
	Notepad string `xml:",omitempty"`

	Width  int `xml:"Size>Cols"`
	Height int `xml:"Size>Rows"`

	Grid  []string  `xml:"Grid>Row"`
	Clues []xpfClue `xml:"Clues>Clue"`
}

type xpfDocument struct {
	XMLName xml.Name    `xml:"Puzzles"`
	Version string      `xml:"Version,attr"`
	Puzzles []xpfPuzzle `xml:"Puzzle"`
}

// XPF encodes a puzzle in the XPF crossword exchange format. Rows and
// columns in clues are 1-based; blocked cells are written as '.'.
// The theme goes into the notepad.
func XPF(p *puzzle.Puzzle) ([]byte, error) {
	doc := xpfDocument{
		Version: "1.0",
		Puzzles: []xpfPuzzle{{
			Type:    "normal",
			Title:   p.Title,
			Notepad: p.Theme,
			Width:   p.Size,
			Height:  p.Size,
		}},
	}
	xp := &doc.Puzzles[0]

	for _, row := range p.Grid {
		var b strings.Builder
		for _, cell := range row {
			if cell.Blocked() {
				b.WriteString(blockedCell)
			} else {
				b.WriteString(cell.Letter)
			}
		}
		xp.Grid = append(xp.Grid, b.String())
	}

	across, down := p.Clues()
	answers := make(map[[3]int]string)
	for _, w := range p.Words {
		if w.Placed() {
			dir := 0
			if w.Placement.Direction == crossword.Vertical {
				dir = 1
			}
			answers[[3]int{w.Placement.Row, w.Placement.Col, dir}] = w.Text
		}
	}
	for dir, clues := range [][]puzzle.Clue{across, down} {
		name := "Across"
		if dir == 1 {
			name = "Down"
		}
		for _, c := range clues {
			xp.Clues = append(xp.Clues, xpfClue{
				Row:       c.Row + 1,
				Col:       c.Col + 1,
				Number:    c.Number,
				Direction: name,
				Answer:    answers[[3]int{c.Row, c.Col, dir}],
				Text:      c.Definition,
			})
		}
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// ParseXPF reads the clues of the first puzzle of an XPF document back into
// a draft. The grid is not kept: the draft is laid out again by the generator.
func ParseXPF(data []byte) (*puzzle.Draft, error) {
	var doc xpfDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Puzzles) < 1 {
		return nil, errors.New("no puzzles found")
	}
	xp := doc.Puzzles[0]

	d := &puzzle.Draft{Title: strings.TrimSpace(xp.Title), Theme: strings.TrimSpace(xp.Notepad)}
	for _, c := range xp.Clues {
		if c.Answer == "" {
			continue
		}
		d.Words = append(d.Words, puzzle.WordInput{Word: c.Answer, Definition: strings.TrimSpace(c.Text)})
	}
	if len(d.Words) == 0 {
		return nil, errors.New("no clues with answers found")
	}
	return d, nil
}
