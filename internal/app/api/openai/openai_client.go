package openai

import (
	"github.com/sashabaranov/go-openai"
)

// NewClient creates an OpenAI client. baseURL overrides the API endpoint
// (proxies, compatible servers, tests); empty keeps the default.
func NewClient(token string, baseURL string) *openai.Client {
	config := openai.DefaultConfig(token)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config)
}
