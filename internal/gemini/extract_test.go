package gemini

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestParseDraft(t *testing.T) {
	t.Run("plain JSON", func(t *testing.T) {
		d, err := parseDraft(`{"title":"Fiche 3","theme":"Animaux","words":[
			{"word":"CHAT","definition":"Félin domestique"},
			{"word":" ","definition":"ignoré"},
			{"word":"CHIEN","definition":""}
		]}`)
		require.NoError(t, err)
		assert.Equal(t, "Fiche 3", d.Title)
		assert.Equal(t, "Animaux", d.Theme)
		require.Len(t, d.Words, 1)
		assert.Equal(t, "CHAT", d.Words[0].Word)
	})

	t.Run("fenced JSON", func(t *testing.T) {
		d, err := parseDraft("```json\n{\"words\":[{\"word\":\"LION\",\"definition\":\"Roi\"}]}\n```")
		require.NoError(t, err)
		require.Len(t, d.Words, 1)
	})

	t.Run("no words", func(t *testing.T) {
		_, err := parseDraft(`{"words":[]}`)
		assert.ErrorIs(t, err, ErrEmptyWordList)
	})

	t.Run("not JSON", func(t *testing.T) {
		_, err := parseDraft("désolé")
		assert.ErrorContains(t, err, "parse word list JSON")
	})
}

type fakeModels struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	answer   string
	err      error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.contents, f.config = model, contents, config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.answer}}},
		}},
	}, nil
}

func TestNewClientRequiresProject(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNoProject)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{ProjectID: "p"}.withDefaults()
	assert.Equal(t, defaultRegion, cfg.Region)
	assert.Equal(t, defaultModel, cfg.Model)
	assert.Equal(t, float32(defaultTemperature), cfg.Temperature)

	cfg = Config{Model: "gemini-pro", Temperature: 0.5}.withDefaults()
	assert.Equal(t, "gemini-pro", cfg.Model)
	assert.Equal(t, float32(0.5), cfg.Temperature)
}

func TestExtractWordsRequest(t *testing.T) {
	fake := &fakeModels{answer: `{"title":"Fiche 1","words":[{"word":"CHAT","definition":"Félin"}]}`}
	c := newClient(fake, Config{Model: "gemini-pro"}.withDefaults())
	assert.Equal(t, "gemini-pro", c.Model())

	d, err := c.ExtractWords(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "Fiche 1", d.Title)
	require.Len(t, d.Words, 1)

	assert.Equal(t, "gemini-pro", fake.model)
	require.Len(t, fake.contents, 1)
	parts := fake.contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, extractPrompt, parts[0].Text)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
	assert.Equal(t, "application/json", fake.config.ResponseMIMEType)
	assert.Equal(t, float32(defaultTemperature), *fake.config.Temperature)
}

func TestExtractWordsErrors(t *testing.T) {
	ctx := context.Background()

	c := newClient(&fakeModels{err: errors.New("quota")}, Config{}.withDefaults())
	_, err := c.ExtractWords(ctx, nil, "image/png")
	assert.ErrorContains(t, err, "quota")

	c = newClient(&fakeModels{}, Config{}.withDefaults())
	_, err = c.ExtractWords(ctx, nil, "image/png")
	assert.ErrorContains(t, err, "empty gemini response")
}

func TestExtractWords(t *testing.T) {
	projectID := os.Getenv("GCP_PROJECT_ID")
	if projectID == "" {
		t.Skip("GCP_PROJECT_ID not set, skipping integration test")
	}

	ctx := context.Background()
	client, err := NewClient(ctx, Config{ProjectID: projectID})
	require.NoError(t, err, "create client")

	imageData, err := os.ReadFile("testdata/worksheet.png")
	if err != nil {
		t.Skipf("no worksheet sample: %v", err)
	}

	d, err := client.ExtractWords(ctx, imageData, "image/png")
	require.NoError(t, err, "extract words")
	assert.NotEmpty(t, d.Words)

	t.Logf("Extracted %d words", len(d.Words))
}
