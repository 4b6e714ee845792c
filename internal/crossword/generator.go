package crossword

import (
	"log/slog"
	"sort"
	"strings"
)

const (
	DefaultSize          = 20
	DefaultAttemptFactor = 2
)

// Options configures a Generator.
type Options struct {
	Size          int // side length of the square grid
	AttemptFactor int // placement rounds allowed per input word
	Logger        *slog.Logger
}

// DefaultOptions returns the standard 20×20 configuration.
func DefaultOptions() Options {
	return Options{
		Size:          DefaultSize,
		AttemptFactor: DefaultAttemptFactor,
	}
}

// Generator arranges word lists into crossword layouts.
// A Generator only holds configuration; every Generate call builds its grid
// and intersection cache from scratch, so one Generator may serve concurrent
// callers.
type Generator struct {
	size          int
	attemptFactor int
	log           *slog.Logger
}

// New creates a generator. Zero fields in opts fall back to the defaults.
func New(opts Options) *Generator {
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.AttemptFactor <= 0 {
		opts.AttemptFactor = DefaultAttemptFactor
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Generator{
		size:          opts.Size,
		attemptFactor: opts.AttemptFactor,
		log:           opts.Logger,
	}
}

// Generate arranges words with the default options.
func Generate(words []WordEntry) *Layout {
	return New(DefaultOptions()).Generate(words)
}

// Size returns the grid side length used by the generator.
func (g *Generator) Size() int { return g.size }

// Generate places as many words as it can on a fresh grid, each one after the
// first crossing at least one word already on the grid.
// The input slice is not modified. The returned layout lists the words in
// input order; words that could not be placed keep a nil Placement.
// For a given input order the result is always the same.
func (g *Generator) Generate(words []WordEntry) *Layout {
	layout := &Layout{Size: g.size, Words: make([]WordEntry, len(words))}
	for i, w := range words {
		w.Placement = nil
		layout.Words[i] = w
	}

	b := newBuilder(g.size, words)
	if len(b.words) == 0 {
		layout.Grid = NewGrid(g.size)
		return layout
	}

	b.precomputeIntersections()
	if b.placeFirst() {
		b.placeRemaining(g.attemptFactor*len(b.words), g.log)
		b.renumber()
	}

	layout.Grid = b.grid()
	for _, p := range b.placed {
		src := b.words[p.word].index
		layout.Words[src].Text = string(b.words[p.word].letters)
		layout.Words[src].Placement = &Placement{
			Direction: p.dir,
			Row:       p.row,
			Col:       p.col,
			Number:    p.number,
		}
	}

	if n := len(words) - len(b.placed); n > 0 {
		g.log.Warn("words left unplaced",
			slog.Int("placed", len(b.placed)),
			slog.Int("unplaced", n))
	}
	return layout
}

type sortedWord struct {
	index   int // position in the caller's list
	letters []rune
}

type placedWord struct {
	word     int // index into builder.words
	row, col int
	dir      Direction
	number   int
}

// builder holds the state of a single Generate call.
type builder struct {
	size    int
	words   []sortedWord
	cells   [][]rune
	across  [][]bool // cell belongs to a horizontal word
	down    [][]bool // cell belongs to a vertical word
	cache   map[wordPair][]crossing
	isSet   []bool
	placed  []placedWord
	numbers map[[2]int]int
	next    int
}

func newBuilder(size int, words []WordEntry) *builder {
	b := &builder{
		size:    size,
		numbers: make(map[[2]int]int),
	}
	for i, w := range words {
		letters := []rune(strings.ToUpper(strings.TrimSpace(w.Text)))
		if len(letters) == 0 {
			continue
		}
		b.words = append(b.words, sortedWord{index: i, letters: letters})
	}
	// Long words anchor the layout; ties keep input order.
	sort.SliceStable(b.words, func(i, j int) bool {
		return len(b.words[i].letters) > len(b.words[j].letters)
	})

	b.cells = make([][]rune, size)
	b.across = make([][]bool, size)
	b.down = make([][]bool, size)
	for r := range size {
		b.cells[r] = make([]rune, size)
		b.across[r] = make([]bool, size)
		b.down[r] = make([]bool, size)
	}
	b.isSet = make([]bool, len(b.words))
	return b
}

// placeFirst puts the longest word that fits horizontally at the centre.
func (b *builder) placeFirst() bool {
	for w, sw := range b.words {
		row := b.size / 2
		col := (b.size - len(sw.letters)) / 2
		if b.canPlace(w, row, col, Horizontal) {
			b.place(w, row, col, Horizontal)
			return true
		}
	}
	return false
}

// placeRemaining runs the greedy rounds: each round places the single best
// candidate among all unplaced words, until every word is placed, no
// candidate exists or the budget is spent.
func (b *builder) placeRemaining(budget int, log *slog.Logger) {
	for attempt := 0; attempt < budget && len(b.placed) < len(b.words); attempt++ {
		c, ok := b.bestCandidate()
		if !ok {
			log.Warn("no crossing left for remaining words",
				slog.Int("round", attempt),
				slog.Int("remaining", len(b.words)-len(b.placed)))
			return
		}
		b.place(c.word, c.row, c.col, c.dir)
		log.Debug("word placed",
			slog.String("word", string(b.words[c.word].letters)),
			slog.String("direction", string(c.dir)),
			slog.Int("row", c.row),
			slog.Int("col", c.col),
			slog.Int("score", c.score))
	}
}

func (b *builder) place(w, row, col int, dir Direction) {
	dr, dc := dir.step()
	for k, r := range b.words[w].letters {
		rr, cc := row+dr*k, col+dc*k
		b.cells[rr][cc] = r
		if dir == Horizontal {
			b.across[rr][cc] = true
		} else {
			b.down[rr][cc] = true
		}
	}

	// Two words starting on the same cell share its number.
	start := [2]int{row, col}
	n, ok := b.numbers[start]
	if !ok {
		b.next++
		n = b.next
		b.numbers[start] = n
	}

	b.isSet[w] = true
	b.placed = append(b.placed, placedWord{word: w, row: row, col: col, dir: dir, number: n})
}

// grid converts the working buffer to the public representation.
func (b *builder) grid() Grid {
	g := NewGrid(b.size)
	for r, row := range b.cells {
		for c, letter := range row {
			if letter != 0 {
				g[r][c].Letter = string(letter)
			}
		}
	}
	for _, p := range b.placed {
		g[p.row][p.col].Number = p.number
	}
	return g
}
