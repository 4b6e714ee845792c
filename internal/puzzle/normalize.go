package puzzle

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxWordLength is the longest answer accepted.
const MaxWordLength = 15

// foldAccents strips combining marks: "Été" becomes "Ete".
// Transformers are stateful, so a new chain is built per call.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeAnswer folds accents, drops everything that is not a letter and
// upper-cases the rest. The result must hold 1 to MaxWordLength letters.
func NormalizeAnswer(s string) (string, error) {
	var b strings.Builder
	for _, r := range foldAccents(s) {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	out := b.String()
	n := utf8.RuneCountInString(out)
	if n == 0 {
		return "", fmt.Errorf("%w: %q has no letters", ErrInvalidWord, s)
	}
	if n > MaxWordLength {
		return "", fmt.Errorf("%w: %q is longer than %d letters", ErrInvalidWord, s, MaxWordLength)
	}
	return out, nil
}

// NormalizeLetter turns a solver's keystroke into a grid letter. An empty or
// blank value erases the cell.
func NormalizeLetter(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	folded := []rune(strings.ToUpper(foldAccents(s)))
	if len(folded) != 1 || !unicode.IsLetter(folded[0]) {
		return "", fmt.Errorf("%w: %q", ErrInvalidLetter, s)
	}
	return string(folded), nil
}
