package crossword

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(words ...string) []WordEntry {
	out := make([]WordEntry, len(words))
	for i, w := range words {
		out[i] = WordEntry{ID: fmt.Sprintf("w%d", i+1), Text: w, Definition: "def " + w}
	}
	return out
}

func findWord(t *testing.T, l *Layout, text string) WordEntry {
	t.Helper()
	for _, w := range l.Words {
		if w.Text == text {
			return w
		}
	}
	t.Fatalf("word %s not in layout", text)
	return WordEntry{}
}

// connected reports whether the placed words form a single cluster through
// shared cells.
func connected(l *Layout) bool {
	placed := l.Placed()
	if len(placed) <= 1 {
		return true
	}
	owner := make(map[[2]int][]int)
	for i, w := range placed {
		for _, c := range w.Cells() {
			owner[c] = append(owner[c], i)
		}
	}
	seen := map[int]bool{0: true}
	queue := []int{0}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range placed[cur].Cells() {
			for _, o := range owner[c] {
				if !seen[o] {
					seen[o] = true
					queue = append(queue, o)
				}
			}
		}
	}
	return len(seen) == len(placed)
}

func TestGenerateEmpty(t *testing.T) {
	l := Generate(nil)

	require.Equal(t, DefaultSize, l.Grid.Size())
	assert.Empty(t, l.Words)
	for _, row := range l.Grid {
		for _, cell := range row {
			assert.True(t, cell.Blocked())
			assert.Zero(t, cell.Number)
		}
	}
}

func TestGenerateSingleWord(t *testing.T) {
	l := Generate(entries("CAT"))

	require.Len(t, l.Words, 1)
	p := l.Words[0].Placement
	require.NotNil(t, p, "CAT should be placed")
	assert.Equal(t, Horizontal, p.Direction)
	assert.Equal(t, 10, p.Row)
	assert.Equal(t, 8, p.Col)
	assert.Equal(t, 1, p.Number)

	assert.Equal(t, "C", l.Grid[10][8].Letter)
	assert.Equal(t, "A", l.Grid[10][9].Letter)
	assert.Equal(t, "T", l.Grid[10][10].Letter)
	assert.Equal(t, 1, l.Grid[10][8].Number)
	assert.NoError(t, l.Verify())
}

func TestGenerateDoesNotModifyInput(t *testing.T) {
	in := entries("cat", "tac")
	Generate(in)

	assert.Nil(t, in[0].Placement)
	assert.Equal(t, "cat", in[0].Text)
}

func TestGenerateScenario(t *testing.T) {
	l := Generate(entries("FIREWALL", "VIRUS", "SECURITE"))
	require.NoError(t, l.Verify())
	require.Empty(t, l.Unplaced())

	firewall := findWord(t, l, "FIREWALL")
	assert.Equal(t, Placement{Direction: Horizontal, Row: 10, Col: 6, Number: 3}, *firewall.Placement)

	securite := findWord(t, l, "SECURITE")
	assert.Equal(t, Placement{Direction: Vertical, Row: 9, Col: 9, Number: 2}, *securite.Placement)

	virus := findWord(t, l, "VIRUS")
	assert.Equal(t, Placement{Direction: Vertical, Row: 9, Col: 7, Number: 1}, *virus.Placement)

	assert.True(t, connected(l))
}

func TestGenerateDeterministic(t *testing.T) {
	words := entries("ORDINATEUR", "INTERNET", "LOGICIEL", "CLAVIER", "SOURIS", "ECRAN", "RESEAU")

	first := Generate(words)
	second := Generate(words)

	assert.Equal(t, first.Grid, second.Grid)
	assert.Equal(t, first.Words, second.Words)
}

func TestGenerateInvariants(t *testing.T) {
	cases := map[string][]string{
		"informatique": {"ORDINATEUR", "INTERNET", "LOGICIEL"},
		"animaux":      {"ELEPHANT", "GIRAFE", "TIGRE", "LION", "ZEBRE", "PANTHERE", "OURS"},
		"cuisine":      {"CASSEROLE", "FOUR", "POELE", "CUILLERE", "FOURCHETTE", "COUTEAU", "ASSIETTE", "VERRE"},
		"short":        {"A", "AB", "BA", "ABC"},
		"duplicates":   {"MAISON", "MAISON", "SON"},
	}
	for name, words := range cases {
		t.Run(name, func(t *testing.T) {
			l := Generate(entries(words...))

			require.NoError(t, l.Verify())
			assert.True(t, connected(l), "placed words should form one cluster")
			assert.NotEmpty(t, l.Placed())

			numbers := map[int][2]int{}
			for _, w := range l.Placed() {
				start := [2]int{w.Placement.Row, w.Placement.Col}
				if prev, ok := numbers[w.Placement.Number]; ok {
					assert.Equal(t, prev, start, "shared number implies shared start cell")
				}
				numbers[w.Placement.Number] = start
			}
			for n := 1; n <= len(numbers); n++ {
				assert.Contains(t, numbers, n, "numbers should be dense")
			}
		})
	}
}

func TestGenerateNoIllegalAdjacency(t *testing.T) {
	l := Generate(entries("CASSEROLE", "FOUR", "POELE", "CUILLERE", "FOURCHETTE", "COUTEAU", "ASSIETTE", "VERRE"))

	across := map[[2]int]string{}
	down := map[[2]int]string{}
	for _, w := range l.Placed() {
		for _, c := range w.Cells() {
			if w.Placement.Direction == Horizontal {
				across[c] = w.ID
			} else {
				down[c] = w.ID
			}
		}
	}

	size := l.Grid.Size()
	for r := 0; r+1 < size; r++ {
		for c := range size {
			if l.Grid[r][c].Blocked() || l.Grid[r+1][c].Blocked() {
				continue
			}
			a, b := [2]int{r, c}, [2]int{r + 1, c}
			require.NotEmpty(t, down[a], "vertically adjacent letters at %v must be in a vertical word", a)
			assert.Equal(t, down[a], down[b])
		}
	}
	for r := range size {
		for c := 0; c+1 < size; c++ {
			if l.Grid[r][c].Blocked() || l.Grid[r][c+1].Blocked() {
				continue
			}
			a, b := [2]int{r, c}, [2]int{r, c + 1}
			require.NotEmpty(t, across[a], "horizontally adjacent letters at %v must be in a horizontal word", a)
			assert.Equal(t, across[a], across[b])
		}
	}
}

func TestGenerateUnplaceable(t *testing.T) {
	l := Generate(entries("CHAT", "TACHE", "BOB"))

	bob := findWord(t, l, "BOB")
	assert.False(t, bob.Placed())
	assert.Len(t, l.Unplaced(), 1)
	assert.Len(t, l.Placed(), 2)
	require.NoError(t, l.Verify())
}

func TestGenerateSharedStartNumber(t *testing.T) {
	// SEL crosses SOU on their first letter, so both start on one cell.
	l := Generate(entries("SOU", "SEL"))
	require.NoError(t, l.Verify())

	sou := findWord(t, l, "SOU")
	sel := findWord(t, l, "SEL")
	require.True(t, sou.Placed())
	require.True(t, sel.Placed())
	assert.Equal(t, sou.Placement.Number, sel.Placement.Number)
	assert.Equal(t, 1, sou.Placement.Number)
	assert.NotEqual(t, sou.Placement.Direction, sel.Placement.Direction)
}

func TestGenerateWordTooLong(t *testing.T) {
	g := New(Options{Size: 10})
	l := g.Generate(entries(strings.Repeat("A", 11), "ABRI"))

	assert.False(t, l.Words[0].Placed())
	assert.True(t, l.Words[1].Placed(), "the next word anchors the layout")
	assert.Equal(t, 1, l.Words[1].Placement.Number)
}

func TestCanPlaceBounds(t *testing.T) {
	word := strings.Repeat("X", DefaultSize)
	b := newBuilder(DefaultSize, entries(word))

	assert.True(t, b.canPlace(0, 0, 0, Horizontal))
	assert.False(t, b.canPlace(0, 0, 1, Horizontal))
	assert.True(t, b.canPlace(0, 0, 5, Vertical))
	assert.False(t, b.canPlace(0, 1, 5, Vertical))
	assert.False(t, b.canPlace(0, -1, 0, Vertical))
}

func TestCanPlaceRejectsParallelNeighbours(t *testing.T) {
	b := newBuilder(DefaultSize, entries("MOTS", "TOMS", "MOTS"))
	b.place(0, 10, 5, Horizontal)

	// Directly below MOTS, sharing no cell.
	assert.False(t, b.canPlace(1, 11, 5, Horizontal))
	// Right after MOTS on the same row.
	assert.False(t, b.canPlace(1, 10, 9, Horizontal))
	// Overlaying MOTS with an identical word.
	assert.False(t, b.canPlace(2, 10, 5, Horizontal))
	// Crossing the T of MOTS.
	assert.True(t, b.canPlace(1, 10, 7, Vertical))
}

func TestPlacementScore(t *testing.T) {
	b := newBuilder(DefaultSize, entries("MOTS", "TOMS"))
	b.place(0, 10, 8, Horizontal)

	_, ok := b.placementScore(1, 2, 2, Vertical)
	assert.False(t, ok, "a placement without crossing is disqualified")

	// TOMS down through the T of MOTS at (10,10): T is letter 0.
	score, ok := b.placementScore(1, 10, 10, Vertical)
	require.True(t, ok)
	// One crossing, one letter below it touching nothing but the T above.
	assert.Equal(t, 150+1-(0+0), score)
}

func TestIntersectionsCacheIsMirrored(t *testing.T) {
	b := newBuilder(DefaultSize, entries("ABC", "CAB"))
	b.precomputeIntersections()

	fwd := b.cache[wordPair{0, 1}]
	rev := b.cache[wordPair{1, 0}]
	require.Len(t, fwd, 3)
	require.Len(t, rev, 3)
	for k := range fwd {
		assert.Equal(t, fwd[k].i, rev[k].j)
		assert.Equal(t, fwd[k].j, rev[k].i)
		assert.Equal(t, fwd[k].letter, rev[k].letter)
	}
}

func TestGenerateConcurrent(t *testing.T) {
	g := New(DefaultOptions())
	words := entries("ORDINATEUR", "INTERNET", "LOGICIEL", "CLAVIER", "SOURIS")
	want := g.Generate(words)

	var wg sync.WaitGroup
	results := make([]*Layout, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = g.Generate(words)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want.Grid, got.Grid)
	}
}
