package chat

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"echoscript/internal/app/api/gemini"
	"echoscript/internal/app/api/prompts"
)

// Summarizer produces executive summaries with an OpenAI chat model. It is
// bound to the server-side OpenAI key, so the per-request credential is
// ignored.
type Summarizer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewSummarizer creates a summarizer. An empty model selects gpt-4o-mini.
func NewSummarizer(client *openai.Client, model string, logger *zap.Logger) *Summarizer {
	if model == "" {
		model = openai.GPT4oMini
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{client: client, model: model, logger: logger.Named("openai")}
}

// GenerateSummary never fails; errors produce the same fallback text as the
// Gemini backend.
func (s *Summarizer) GenerateSummary(ctx context.Context, _ string, fullText string) string {
	request := openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: gemini.SummaryTemperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompts.SummaryRequest(fullText),
			},
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, request)
	if err != nil {
		s.logger.Error("summary generation failed", zap.Error(err))
		return gemini.SummaryFallback
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return gemini.NoSummary
	}
	return resp.Choices[0].Message.Content
}
