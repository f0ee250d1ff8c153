package gemini

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"echoscript/internal/app/model"
)

type segmentsEnvelope struct {
	Segments []model.TranscriptionSegment `json:"segments"`
}

// ParseSegments extracts the segment list from a model answer. The answer
// may be fenced or surrounded by prose; only the outermost object opened by
// the first '{' is decoded. Anything unparseable yields an empty list.
func ParseSegments(text string, logger *zap.Logger) []model.TranscriptionSegment {
	if logger == nil {
		logger = zap.NewNop()
	}

	body := strings.TrimSpace(text)
	obj, ok := outerObject(body)
	if !ok {
		if body != "" {
			logger.Warn("model response contains no JSON object", zap.Int("length", len(body)))
		}
		return []model.TranscriptionSegment{}
	}

	var env segmentsEnvelope
	if err := json.Unmarshal([]byte(obj), &env); err != nil {
		logger.Warn("failed to parse model response", zap.Error(err))
		return []model.TranscriptionSegment{}
	}
	if env.Segments == nil {
		return []model.TranscriptionSegment{}
	}
	return env.Segments
}

// outerObject returns the brace-balanced span starting at the first '{'.
// Braces inside JSON strings are not counted.
func outerObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString:
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
