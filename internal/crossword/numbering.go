package crossword

import "sort"

// renumber reassigns clue numbers 1..N in reading order (top to bottom, then
// left to right) of the start cells. Words sharing a start cell share a number.
func (b *builder) renumber() {
	starts := make([][2]int, 0, len(b.placed))
	seen := make(map[[2]int]bool, len(b.placed))
	for _, p := range b.placed {
		s := [2]int{p.row, p.col}
		if !seen[s] {
			seen[s] = true
			starts = append(starts, s)
		}
	}
	sort.Slice(starts, func(i, j int) bool {
		if starts[i][0] != starts[j][0] {
			return starts[i][0] < starts[j][0]
		}
		return starts[i][1] < starts[j][1]
	})

	b.numbers = make(map[[2]int]int, len(starts))
	for i, s := range starts {
		b.numbers[s] = i + 1
	}
	b.next = len(starts)
	for k := range b.placed {
		b.placed[k].number = b.numbers[[2]int{b.placed[k].row, b.placed[k].col}]
	}
}
