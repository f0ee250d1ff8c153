package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"echoscript/internal/app/api/prompts"
	"echoscript/internal/app/model"
)

type recordedCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeGenerator struct {
	responses []string
	errs      []error
	calls     []recordedCall
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, m string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	i := len(f.calls)
	f.calls = append(f.calls, recordedCall{model: m, contents: contents, config: config})
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	text := ""
	if i < len(f.responses) {
		text = f.responses[i]
	}
	return textResponse(text), nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func factoryFor(g Generator, created *int) GeneratorFactory {
	return func(ctx context.Context, apiKey string) (Generator, error) {
		if created != nil {
			*created++
		}
		return g, nil
	}
}

func TestParseSegments(t *testing.T) {
	const obj = `{"segments":[{"speaker":"Speaker 1","timestamp":"00:01 - 00:04","original_transcript":"uh hi","semantic_correction":"Hi.","emotion":"Happy"}]}`

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "plain", text: obj, want: 1},
		{name: "fenced", text: "```json\n" + obj + "\n```", want: 1},
		{name: "trailing prose", text: obj + "\nHope this helps!", want: 1},
		{name: "stray brace after object", text: obj + " and then } trailing", want: 1},
		{name: "second object after", text: obj + "\n{\"segments\": []}", want: 1},
		{name: "leading prose", text: "Here you go: " + obj, want: 1},
		{name: "no braces", text: "I could not hear anything.", want: 0},
		{name: "empty", text: "", want: 0},
		{name: "broken json", text: `{"segments": [ {"speaker": }`, want: 0},
		{name: "no segments key", text: `{"other": 1}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSegments(tt.text, nil)
			require.NotNil(t, got)
			assert.Len(t, got, tt.want)
			if tt.want == 1 {
				assert.Equal(t, model.TranscriptionSegment{
					Speaker:            "Speaker 1",
					Timestamp:          "00:01 - 00:04",
					OriginalTranscript: "uh hi",
					SemanticCorrection: "Hi.",
					Emotion:            model.EmotionHappy,
				}, got[0])
			}
		})
	}
}

func TestParseSegments_BracesInStrings(t *testing.T) {
	text := `{"segments":[{"speaker":"A","timestamp":"00:00","original_transcript":"a } b { \" c","semantic_correction":"x","emotion":"Neutral"}]} trailing }`

	got := ParseSegments(text, nil)
	require.Len(t, got, 1)
	assert.Equal(t, `a } b { " c`, got[0].OriginalTranscript)
}

func TestClient_TranscribeChunk(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"```json\n{\"segments\":[{\"speaker\":\"A\",\"timestamp\":\"00:00 - 00:02\",\"original_transcript\":\"hello\",\"semantic_correction\":\"Hello.\",\"emotion\":\"Neutral\"}]}\n```"}}
	c := NewClient(Config{}, factoryFor(gen, nil), nil)

	segs, err := c.TranscribeChunk(context.Background(), "AIzaTestKey", []byte("RIFF"), "audio/wav", "previous line")
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "hello", segs[0].OriginalTranscript)

	require.Len(t, gen.calls, 1)
	call := gen.calls[0]
	assert.Equal(t, DefaultModel, call.model)
	require.Len(t, call.contents, 1)
	parts := call.contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "audio/wav", parts[0].InlineData.MIMEType)
	assert.Equal(t, []byte("RIFF"), parts[0].InlineData.Data)
	assert.True(t, strings.HasSuffix(parts[1].Text, prompts.ContextPrefix+`"previous line"`))

	require.NotNil(t, call.config)
	assert.Equal(t, TranscriptionTemperature, *call.config.Temperature)
	assert.Equal(t, "application/json", call.config.ResponseMIMEType)
	require.NotNil(t, call.config.ResponseSchema)
	assert.Equal(t, []string{"segments"}, call.config.ResponseSchema.Required)
	item := call.config.ResponseSchema.Properties["segments"].Items
	assert.ElementsMatch(t, []string{"speaker", "timestamp", "original_transcript", "semantic_correction", "emotion"}, item.Required)
	assert.Equal(t, []string{"Happy", "Sad", "Angry", "Neutral"}, item.Properties["emotion"].Enum)
}

func TestClient_TranscribeChunk_NoContextHint(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"nothing useful"}}
	c := NewClient(Config{}, factoryFor(gen, nil), nil)

	segs, err := c.TranscribeChunk(context.Background(), "AIzaTestKey", nil, "audio/wav", "")
	require.NoError(t, err)
	assert.Empty(t, segs)
	assert.Equal(t, prompts.Transcription, gen.calls[0].contents[0].Parts[1].Text)
}

func TestClient_TranscribeChunk_APIError(t *testing.T) {
	gen := &fakeGenerator{errs: []error{errors.New("503 unavailable")}}
	c := NewClient(Config{}, factoryFor(gen, nil), nil)

	_, err := c.TranscribeChunk(context.Background(), "AIzaTestKey", nil, "audio/wav", "")
	assert.EqualError(t, err, "503 unavailable")
}

func TestClient_CachesGeneratorPerCredential(t *testing.T) {
	gen := &fakeGenerator{}
	created := 0
	c := NewClient(Config{Model: "custom-model"}, factoryFor(gen, &created), nil)
	ctx := context.Background()

	_, _ = c.TranscribeChunk(ctx, "AIzaKeyOne", nil, "audio/wav", "")
	_, _ = c.TranscribeChunk(ctx, "AIzaKeyOne", nil, "audio/wav", "")
	_, _ = c.TranscribeChunk(ctx, "AIzaKeyTwo", nil, "audio/wav", "")

	assert.Equal(t, 2, created)
	assert.Equal(t, "custom-model", gen.calls[0].model)
}

func TestClient_GenerateSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		gen := &fakeGenerator{responses: []string{"A short meeting."}}
		c := NewClient(Config{}, factoryFor(gen, nil), nil)

		assert.Equal(t, "A short meeting.", c.GenerateSummary(ctx, "AIzaTestKey", "A: hi"))
		call := gen.calls[0]
		assert.Equal(t, SummaryTemperature, *call.config.Temperature)
		assert.Equal(t, prompts.SummaryRequest("A: hi"), call.contents[0].Parts[0].Text)
	})

	t.Run("api failure falls back", func(t *testing.T) {
		gen := &fakeGenerator{errs: []error{errors.New("quota exceeded")}}
		c := NewClient(Config{}, factoryFor(gen, nil), nil)

		assert.Equal(t, SummaryFallback, c.GenerateSummary(ctx, "AIzaTestKey", "A: hi"))
	})

	t.Run("empty answer", func(t *testing.T) {
		gen := &fakeGenerator{responses: []string{""}}
		c := NewClient(Config{}, factoryFor(gen, nil), nil)

		assert.Equal(t, NoSummary, c.GenerateSummary(ctx, "AIzaTestKey", "A: hi"))
	})

	t.Run("factory failure falls back", func(t *testing.T) {
		c := NewClient(Config{}, func(ctx context.Context, apiKey string) (Generator, error) {
			return nil, errors.New("bad key")
		}, nil)

		assert.Equal(t, SummaryFallback, c.GenerateSummary(ctx, "AIzaTestKey", "A: hi"))
	})
}

func TestClient_ValidateCredential(t *testing.T) {
	ctx := context.Background()

	ok := &fakeGenerator{responses: []string{"hello"}}
	c := NewClient(Config{}, factoryFor(ok, nil), nil)
	assert.True(t, c.ValidateCredential(ctx, "AIzaGood"))
	assert.Equal(t, validationPrompt, ok.calls[0].contents[0].Parts[0].Text)

	bad := &fakeGenerator{errs: []error{errors.New("API key not valid")}}
	c = NewClient(Config{}, factoryFor(bad, nil), nil)
	assert.False(t, c.ValidateCredential(ctx, "AIzaBad"))
}
