package gemini

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"echoscript/internal/app/api/prompts"
	"echoscript/internal/app/credential"
	"echoscript/internal/app/model"
)

const (
	DefaultModel = "gemini-3-flash-preview"

	TranscriptionTemperature float32 = 0.3
	SummaryTemperature       float32 = 0.5

	// SummaryFallback replaces the summary when the summary call fails
	SummaryFallback = "Failed to generate summary."
	// NoSummary is used when the model answers with empty text
	NoSummary = "No summary available."

	validationPrompt = "Test connection"
)

// Generator is the slice of the genai Models service this client uses
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeneratorFactory builds a Generator bound to one API key
type GeneratorFactory func(ctx context.Context, apiKey string) (Generator, error)

// NewGenAIGenerator creates a Gemini Developer API generator
func NewGenAIGenerator(ctx context.Context, apiKey string) (Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return client.Models, nil
}

// Config configures the inference client
type Config struct {
	Model          string
	RequestTimeout time.Duration
}

// Client wraps one remote call per chunk and one per summary. It keeps no
// state between calls apart from a per-credential generator cache.
type Client struct {
	config  Config
	factory GeneratorFactory
	logger  *zap.Logger

	mu         sync.Mutex
	generators map[string]Generator
}

// NewClient creates a client. A nil factory uses NewGenAIGenerator.
func NewClient(config Config, factory GeneratorFactory, logger *zap.Logger) *Client {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if factory == nil {
		factory = NewGenAIGenerator
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config:     config,
		factory:    factory,
		logger:     logger.Named("gemini"),
		generators: make(map[string]Generator),
	}
}

// Model returns the model id requests are sent to
func (c *Client) Model() string {
	return c.config.Model
}

func (c *Client) generator(ctx context.Context, apiKey string) (Generator, error) {
	ns := credential.Namespace(apiKey)

	c.mu.Lock()
	defer c.mu.Unlock()

	if g, ok := c.generators[ns]; ok {
		return g, nil
	}
	g, err := c.factory(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	c.generators[ns] = g
	return g, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.config.RequestTimeout)
}

// TranscribeChunk sends one audio payload and returns the parsed segments.
// It fails only on transport or API errors; an unparseable answer yields
// an empty segment list.
func (c *Client) TranscribeChunk(ctx context.Context, apiKey string, payload []byte, mimeType string, previousContext string) ([]model.TranscriptionSegment, error) {
	g, err := c.generator(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(payload, mimeType),
			genai.NewPartFromText(prompts.TranscriptionWithContext(previousContext)),
		}, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(TranscriptionTemperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   segmentsSchema(),
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := g.GenerateContent(ctx, c.config.Model, contents, config)
	if err != nil {
		c.logger.Warn("chunk transcription request failed",
			zap.Int("payloadBytes", len(payload)),
			zap.Error(err))
		return nil, err
	}

	segments := ParseSegments(responseText(resp), c.logger)
	c.logger.Debug("chunk transcribed",
		zap.Int("segments", len(segments)),
		zap.Duration("latency", time.Since(start)))
	return segments, nil
}

// GenerateSummary summarizes the transcript. It never returns an error:
// failures produce SummaryFallback.
func (c *Client) GenerateSummary(ctx context.Context, apiKey string, fullText string) string {
	g, err := c.generator(ctx, apiKey)
	if err != nil {
		c.logger.Error("summary generation failed", zap.Error(err))
		return SummaryFallback
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := g.GenerateContent(ctx, c.config.Model, genai.Text(prompts.SummaryRequest(fullText)), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(SummaryTemperature),
	})
	if err != nil {
		c.logger.Error("summary generation failed", zap.Error(err))
		return SummaryFallback
	}

	text := responseText(resp)
	if text == "" {
		return NoSummary
	}
	return text
}

// ValidateCredential performs a minimal live round trip with apiKey
func (c *Client) ValidateCredential(ctx context.Context, apiKey string) bool {
	g, err := c.factory(ctx, apiKey)
	if err != nil {
		c.logger.Info("API key validation failed", zap.Error(err))
		return false
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if _, err := g.GenerateContent(ctx, c.config.Model, genai.Text(validationPrompt), nil); err != nil {
		c.logger.Info("API key validation failed", zap.Error(err))
		return false
	}

	c.mu.Lock()
	c.generators[credential.Namespace(apiKey)] = g
	c.mu.Unlock()
	return true
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	return resp.Text()
}

func segmentsSchema() *genai.Schema {
	emotions := make([]string, len(model.Emotions))
	for i, e := range model.Emotions {
		emotions[i] = string(e)
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"segments": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"speaker":             {Type: genai.TypeString},
						"timestamp":           {Type: genai.TypeString},
						"original_transcript": {Type: genai.TypeString},
						"semantic_correction": {Type: genai.TypeString},
						"emotion":             {Type: genai.TypeString, Enum: emotions},
					},
					Required: []string{"speaker", "timestamp", "original_transcript", "semantic_correction", "emotion"},
				},
			},
		},
		Required: []string{"segments"},
	}
}
