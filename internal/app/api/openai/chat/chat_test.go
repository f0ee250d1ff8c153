package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echoscript/internal/app/api/gemini"
	openai2 "echoscript/internal/app/api/openai"
	"echoscript/internal/app/api/prompts"
)

func newTestServer(t *testing.T, status int, content string, seen *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
}

func TestSummarizer_GenerateSummary(t *testing.T) {
	var seen openai.ChatCompletionRequest
	srv := newTestServer(t, http.StatusOK, "Two people planned a trip.", &seen)
	defer srv.Close()

	s := NewSummarizer(openai2.NewClient("sk-test", srv.URL+"/v1"), "", nil)
	got := s.GenerateSummary(context.Background(), "ignored", "A: hi\nB: hello")

	assert.Equal(t, "Two people planned a trip.", got)
	assert.Equal(t, openai.GPT4oMini, seen.Model)
	require.Len(t, seen.Messages, 1)
	assert.Equal(t, prompts.SummaryRequest("A: hi\nB: hello"), seen.Messages[0].Content)
}

func TestSummarizer_Fallbacks(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := newTestServer(t, http.StatusInternalServerError, "", nil)
		defer srv.Close()

		s := NewSummarizer(openai2.NewClient("sk-test", srv.URL+"/v1"), "gpt-4o", nil)
		assert.Equal(t, gemini.SummaryFallback, s.GenerateSummary(context.Background(), "", "A: hi"))
	})

	t.Run("empty answer", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK, "  ", nil)
		defer srv.Close()

		s := NewSummarizer(openai2.NewClient("sk-test", srv.URL+"/v1"), "gpt-4o", nil)
		assert.Equal(t, gemini.NoSummary, s.GenerateSummary(context.Background(), "", "A: hi"))
	})
}
