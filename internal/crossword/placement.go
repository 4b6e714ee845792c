package crossword

const (
	intersectionScore = 50
	densityBonus      = 100
)

type candidate struct {
	word     int
	row, col int
	dir      Direction
	score    int
}

// bestCandidate scans every unplaced word against every placed word and
// returns the highest scoring valid placement. Ties go to the first one
// found, which keeps the search deterministic.
func (b *builder) bestCandidate() (candidate, bool) {
	var best candidate
	found := false
	for w := range b.words {
		if b.isSet[w] {
			continue
		}
		for _, p := range b.placed {
			for _, c := range b.cache[wordPair{p.word, w}] {
				row, col, dir := crossingStart(p, c)
				if !b.canPlace(w, row, col, dir) {
					continue
				}
				score, ok := b.placementScore(w, row, col, dir)
				if !ok {
					continue
				}
				if !found || score > best.score {
					best = candidate{word: w, row: row, col: col, dir: dir, score: score}
					found = true
				}
			}
		}
	}
	return best, found
}

// canPlace reports whether word w fits at (row, col) in direction dir.
//
// The word must lie inside the grid, the cells just before its first letter
// and just after its last must be empty, every occupied cell it covers must
// hold the same letter and belong only to a word of the other direction, and
// every empty cell it covers must have empty neighbours on both sides across
// the word.
func (b *builder) canPlace(w, row, col int, dir Direction) bool {
	letters := b.words[w].letters
	dr, dc := dir.step()
	endRow, endCol := row+dr*(len(letters)-1), col+dc*(len(letters)-1)
	if !b.inBounds(row, col) || !b.inBounds(endRow, endCol) {
		return false
	}
	if b.filled(row-dr, col-dc) || b.filled(endRow+dr, endCol+dc) {
		return false
	}

	for k, r := range letters {
		rr, cc := row+dr*k, col+dc*k
		if cur := b.cells[rr][cc]; cur != 0 {
			if cur != r || b.occupied(rr, cc, dir) {
				return false
			}
			continue
		}
		if b.filled(rr+dc, cc+dr) || b.filled(rr-dc, cc-dr) {
			return false
		}
	}
	return true
}

// placementScore ranks a valid placement. The second result is false when
// the word would not cross anything on the grid.
func (b *builder) placementScore(w, row, col int, dir Direction) (int, bool) {
	dr, dc := dir.step()
	crossings, adjacent := 0, 0
	for k := range b.words[w].letters {
		rr, cc := row+dr*k, col+dc*k
		if b.cells[rr][cc] != 0 {
			crossings++
			continue
		}
		for _, n := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			if b.filled(rr+n[0], cc+n[1]) {
				adjacent++
			}
		}
	}
	if crossings == 0 {
		return 0, false
	}

	center := b.size / 2
	score := crossings*intersectionScore + crossings*densityBonus + adjacent
	score -= abs(row-center) + abs(col-center)
	return score, true
}

func (b *builder) inBounds(row, col int) bool {
	return row >= 0 && row < b.size && col >= 0 && col < b.size
}

// filled reports whether (row, col) holds a letter. Out of bounds is empty.
func (b *builder) filled(row, col int) bool {
	return b.inBounds(row, col) && b.cells[row][col] != 0
}

// occupied reports whether (row, col) already belongs to a word running in dir.
func (b *builder) occupied(row, col int, dir Direction) bool {
	if dir == Horizontal {
		return b.across[row][col]
	}
	return b.down[row][col]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
