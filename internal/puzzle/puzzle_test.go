package puzzle

import (
	"strings"
	"testing"

	"github.com/bodul/crosswordmaster/internal/crossword"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGenerator() *crossword.Generator {
	return crossword.New(crossword.DefaultOptions())
}

func TestNormalizeAnswer(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"chat", "CHAT"},
		{"  Été ", "ETE"},
		{"arc-en-ciel", "ARCENCIEL"},
		{"Noël 2024", "NOEL"},
		{"garçon", "GARCON"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := NormalizeAnswer(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}

	t.Run("rejects empty", func(t *testing.T) {
		_, err := NormalizeAnswer(" 123 ")
		assert.ErrorIs(t, err, ErrInvalidWord)
	})

	t.Run("rejects too long", func(t *testing.T) {
		_, err := NormalizeAnswer(strings.Repeat("a", MaxWordLength+1))
		assert.ErrorIs(t, err, ErrInvalidWord)
	})

	t.Run("accepts max length", func(t *testing.T) {
		got, err := NormalizeAnswer(strings.Repeat("a", MaxWordLength))
		require.NoError(t, err)
		assert.Len(t, got, MaxWordLength)
	})
}

func TestNormalizeLetter(t *testing.T) {
	got, err := NormalizeLetter("é")
	require.NoError(t, err)
	assert.Equal(t, "E", got)

	got, err = NormalizeLetter(" ")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = NormalizeLetter("ab")
	assert.ErrorIs(t, err, ErrInvalidLetter)

	_, err = NormalizeLetter("7")
	assert.ErrorIs(t, err, ErrInvalidLetter)
}

func TestNewValidation(t *testing.T) {
	gen := newGenerator()

	t.Run("title required", func(t *testing.T) {
		_, err := New(Draft{Theme: "x", Words: []WordInput{{"CHAT", "animal"}}}, gen)
		assert.ErrorIs(t, err, ErrTitleRequired)
	})

	t.Run("theme required", func(t *testing.T) {
		_, err := New(Draft{Title: "x", Theme: "  ", Words: []WordInput{{"CHAT", "animal"}}}, gen)
		assert.ErrorIs(t, err, ErrTitleRequired)
	})

	t.Run("words required", func(t *testing.T) {
		_, err := New(Draft{Title: "x", Theme: "y"}, gen)
		assert.ErrorIs(t, err, ErrNoWords)
	})

	t.Run("definition required", func(t *testing.T) {
		_, err := New(Draft{Title: "x", Theme: "y", Words: []WordInput{{"CHAT", " "}}}, gen)
		assert.ErrorIs(t, err, ErrDefinitionRequired)
	})

	t.Run("invalid word", func(t *testing.T) {
		_, err := New(Draft{Title: "x", Theme: "y", Words: []WordInput{{"42", "nombre"}}}, gen)
		assert.ErrorIs(t, err, ErrInvalidWord)
	})

	t.Run("too many words", func(t *testing.T) {
		words := make([]WordInput, MaxWords+1)
		for i := range words {
			words[i] = WordInput{"MOT", "def"}
		}
		_, err := New(Draft{Title: "x", Theme: "y", Words: words}, gen)
		assert.ErrorIs(t, err, ErrTooManyWords)
	})
}

func TestNewSample(t *testing.T) {
	p, err := New(SampleDraft(), newGenerator())
	require.NoError(t, err)

	assert.Equal(t, "Puzzle de Démonstration", p.Title)
	assert.Equal(t, crossword.DefaultSize, p.Size)
	require.Len(t, p.Words, 3)
	for _, w := range p.Words {
		assert.NotEmpty(t, w.ID)
	}
	assert.Empty(t, p.ID, "the store assigns the puzzle ID")
	assert.True(t, p.CreatedAt.IsZero(), "the store stamps CreatedAt")
	require.NoError(t, p.Layout().Verify())

	across, down := p.Clues()
	assert.Equal(t, len(p.Words)-len(p.Unplaced()), len(across)+len(down))
	for i := 1; i < len(across); i++ {
		assert.Less(t, across[i-1].Number, across[i].Number)
	}
}

func TestUnplacedSurfaced(t *testing.T) {
	p, err := New(Draft{
		Title: "Animaux",
		Theme: "Nature",
		Words: []WordInput{{"chat", "Félin"}, {"tache", "Marque"}, {"bob", "Chapeau"}},
	}, newGenerator())
	require.NoError(t, err)

	unplaced := p.Unplaced()
	require.Len(t, unplaced, 1)
	assert.Equal(t, "BOB", unplaced[0].Text)
}

func TestSolverViewHidesAnswers(t *testing.T) {
	p, err := New(SampleDraft(), newGenerator())
	require.NoError(t, err)

	view := p.SolverView()
	require.Len(t, view.Cells, p.Size)
	for r, row := range p.Grid {
		for c, cell := range row {
			assert.Equal(t, !cell.Blocked(), view.Cells[r][c].Open)
			assert.Equal(t, cell.Number, view.Cells[r][c].Number)
		}
	}
	assert.NotEmpty(t, view.Across)
}
