package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bodul/crosswordmaster/internal/puzzle"
)

// ErrEmptyWordList is returned when the worksheet yields no usable pair.
var ErrEmptyWordList = errors.New("no word found on the worksheet")

const extractPrompt = `Analyse cette photo d'une fiche de vocabulaire.

Extrais chaque mot et sa définition au format JSON suivant :
{
  "title": "<titre de la fiche, ou vide>",
  "theme": "<thème de la fiche, ou vide>",
  "words": [
    {"word": "MOT", "definition": "Définition du mot"},
    ...
  ]
}

Règles :
- Un mot par entrée, sans espace ni tiret, en majuscules.
- Recopie la définition telle qu'elle est écrite, sans l'inventer.
- Ignore les lignes sans définition.
- Réponds UNIQUEMENT avec le JSON, sans commentaire ni markdown.`

// ExtractWords sends a worksheet photo to Gemini and returns the word and
// definition pairs it reads, as a draft for the author to review.
func (c *Client) ExtractWords(ctx context.Context, imageData []byte, mimeType string) (*puzzle.Draft, error) {
	resp, err := c.models.GenerateContent(ctx, c.model,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: extractPrompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageData}},
			},
		}},
		c.gen,
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.New("empty gemini response")
	}
	return parseDraft(text)
}

// parseDraft decodes the model's JSON answer and drops incomplete pairs.
func parseDraft(text string) (*puzzle.Draft, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var d puzzle.Draft
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return nil, fmt.Errorf("parse word list JSON: %w\nraw response: %s", err, text)
	}

	words := d.Words[:0]
	for _, w := range d.Words {
		w.Word = strings.TrimSpace(w.Word)
		w.Definition = strings.TrimSpace(w.Definition)
		if w.Word == "" || w.Definition == "" {
			continue
		}
		words = append(words, w)
	}
	if len(words) == 0 {
		return nil, ErrEmptyWordList
	}
	d.Words = words
	d.Title = strings.TrimSpace(d.Title)
	d.Theme = strings.TrimSpace(d.Theme)
	return &d, nil
}
