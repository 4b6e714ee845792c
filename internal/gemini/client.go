package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const (
	defaultRegion      = "europe-west1"
	defaultModel       = "gemini-2.5-flash"
	defaultTemperature = 0.1
)

// ErrNoProject is returned when no GCP project is configured.
var ErrNoProject = errors.New("gemini: GCP project required")

// Config selects the Vertex AI project and model used for worksheet import.
type Config struct {
	ProjectID   string
	Region      string  // defaults to europe-west1
	Model       string  // defaults to gemini-2.5-flash
	Temperature float32 // defaults to 0.1, low so the model copies rather than invents
}

func (c Config) withDefaults() Config {
	if c.Region == "" {
		c.Region = defaultRegion
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	return c
}

// contentGenerator is the part of genai.Models the importer calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client reads vocabulary worksheets with a Gemini model.
type Client struct {
	models contentGenerator
	model  string
	gen    *genai.GenerateContentConfig
}

// NewClient connects to Vertex AI using Application Default Credentials
// (GOOGLE_APPLICATION_CREDENTIALS or the metadata server).
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, ErrNoProject
	}
	cfg = cfg.withDefaults()

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: cfg.Region,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newClient(gc.Models, cfg), nil
}

func newClient(models contentGenerator, cfg Config) *Client {
	return &Client{
		models: models,
		model:  cfg.Model,
		gen: &genai.GenerateContentConfig{
			Temperature:      genai.Ptr(cfg.Temperature),
			TopP:             genai.Ptr(float32(1)),
			ResponseMIMEType: "application/json",
		},
	}
}

// Model names the Gemini model in use.
func (c *Client) Model() string { return c.model }
