package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bodul/crosswordmaster/internal/crossword"
	"github.com/bodul/crosswordmaster/internal/format"
	"github.com/bodul/crosswordmaster/internal/puzzle"
)

var (
	gridSize      int
	attemptFactor int
	outputFormat  string
	title         string
	theme         string
)

func init() {
	genCmd := &cobra.Command{
		Use:   "gen [file]",
		Short: "Lay out a word list as a crossword",
		Long: `Lay out a word list as a crossword grid.

The input holds one "WORD: definition" pair per line; blank lines and lines
starting with # are skipped. An .xpf file is read as an XPF puzzle instead.
Without a file, the list is read from standard input. Words that could not be
placed are reported on standard error.

Examples:
  crossword gen words.txt
  crossword gen --size 15 --format xpf words.txt > puzzle.xpf
  printf 'CHAT: Félin\nCHIEN: Canidé\n' | crossword gen --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGen,
	}

	genCmd.Flags().IntVarP(&gridSize, "size", "s", crossword.DefaultSize, "Grid side length")
	genCmd.Flags().IntVarP(&attemptFactor, "attempts", "a", crossword.DefaultAttemptFactor, "Placement rounds per word")
	genCmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text, json or xpf")
	genCmd.Flags().StringVar(&title, "title", "Mots croisés", "Puzzle title")
	genCmd.Flags().StringVar(&theme, "theme", "Général", "Puzzle theme")

	rootCmd.AddCommand(genCmd)
}

// parseWordList reads "WORD: definition" lines.
func parseWordList(r io.Reader) ([]puzzle.WordInput, error) {
	var words []puzzle.WordInput
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word, def, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: expected \"WORD: definition\", got %q", n, line)
		}
		words = append(words, puzzle.WordInput{
			Word:       strings.TrimSpace(word),
			Definition: strings.TrimSpace(def),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

func readDraft(args []string) (puzzle.Draft, error) {
	d := puzzle.Draft{Title: title, Theme: theme}

	in := io.Reader(os.Stdin)
	if len(args) == 1 {
		if strings.EqualFold(filepath.Ext(args[0]), ".xpf") {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return d, err
			}
			parsed, err := format.ParseXPF(data)
			if err != nil {
				return d, fmt.Errorf("read %s: %w", args[0], err)
			}
			if parsed.Title == "" {
				parsed.Title = title
			}
			if parsed.Theme == "" {
				parsed.Theme = theme
			}
			return *parsed, nil
		}

		f, err := os.Open(args[0])
		if err != nil {
			return d, err
		}
		defer f.Close()
		in = f
	}

	words, err := parseWordList(in)
	if err != nil {
		return d, err
	}
	d.Words = words
	return d, nil
}

func runGen(cmd *cobra.Command, args []string) error {
	if gridSize < 1 {
		return fmt.Errorf("size must be positive, got %d", gridSize)
	}
	if attemptFactor < 1 {
		return fmt.Errorf("attempts must be at least 1, got %d", attemptFactor)
	}

	d, err := readDraft(args)
	if err != nil {
		return err
	}

	gen := crossword.New(crossword.Options{Size: gridSize, AttemptFactor: attemptFactor})
	p, err := puzzle.New(d, gen)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch outputFormat {
	case "text":
		err = format.Text(out, p)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(p)
	case "xpf":
		var data []byte
		data, err = format.XPF(p)
		if err == nil {
			_, err = out.Write(data)
		}
	default:
		return fmt.Errorf("unknown format %q (use text, json or xpf)", outputFormat)
	}
	if err != nil {
		return err
	}

	warn := color.New(color.FgRed)
	for _, w := range p.Unplaced() {
		warn.Fprintf(cmd.ErrOrStderr(), "not placed: %s\n", w.Text)
	}
	return nil
}
