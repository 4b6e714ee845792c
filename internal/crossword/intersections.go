package crossword

// wordPair is an ordered pair of indices into builder.words.
type wordPair struct{ a, b int }

// crossing is a shared letter between two words: letter i of the first word
// equals letter j of the second.
type crossing struct {
	i, j   int
	letter rune
}

// precomputeIntersections fills the cache for every pair of distinct words,
// storing each list under both (a, b) and the mirrored (b, a).
func (b *builder) precomputeIntersections() {
	b.cache = make(map[wordPair][]crossing)
	for x := range b.words {
		for y := x + 1; y < len(b.words); y++ {
			fwd := intersections(b.words[x].letters, b.words[y].letters)
			if len(fwd) == 0 {
				continue
			}
			rev := make([]crossing, len(fwd))
			for k, c := range fwd {
				rev[k] = crossing{i: c.j, j: c.i, letter: c.letter}
			}
			b.cache[wordPair{x, y}] = fwd
			b.cache[wordPair{y, x}] = rev
		}
	}
}

func intersections(w1, w2 []rune) []crossing {
	var out []crossing
	for i, r1 := range w1 {
		for j, r2 := range w2 {
			if r1 == r2 {
				out = append(out, crossing{i: i, j: j, letter: r1})
			}
		}
	}
	return out
}

// crossingStart returns the start cell and direction of a word that crosses
// the placed word p through c, where c.i indexes p and c.j the new word.
func crossingStart(p placedWord, c crossing) (row, col int, dir Direction) {
	if p.dir == Horizontal {
		return p.row - c.j, p.col + c.i, Vertical
	}
	return p.row + c.i, p.col - c.j, Horizontal
}
