package model

// Emotion is the detected tone of a speaker turn
type Emotion string

const (
	EmotionHappy   Emotion = "Happy"
	EmotionSad     Emotion = "Sad"
	EmotionAngry   Emotion = "Angry"
	EmotionNeutral Emotion = "Neutral"
)

// Emotions lists every emotion the model may report, in schema order
var Emotions = []Emotion{EmotionHappy, EmotionSad, EmotionAngry, EmotionNeutral}

// TranscriptionSegment is one speaker turn
type TranscriptionSegment struct {
	Speaker            string  `json:"speaker"`
	Timestamp          string  `json:"timestamp"` // "MM:SS - MM:SS", whole-recording relative once corrected
	OriginalTranscript string  `json:"original_transcript"`
	SemanticCorrection string  `json:"semantic_correction"`
	Emotion            Emotion `json:"emotion,omitempty"`
	Language           string  `json:"language,omitempty"`
}

// TranscriptionResponse is the aggregate result of a job.
// An empty Summary means the summary is still pending.
type TranscriptionResponse struct {
	Summary  string                 `json:"summary"`
	Segments []TranscriptionSegment `json:"segments"`
}

// CleanSegment is a segment without the verbatim transcript
type CleanSegment struct {
	Speaker            string  `json:"speaker"`
	Timestamp          string  `json:"timestamp"`
	SemanticCorrection string  `json:"semantic_correction"`
	Emotion            Emotion `json:"emotion,omitempty"`
	Language           string  `json:"language,omitempty"`
}

// CleanTranscription is the "clean" export shape
type CleanTranscription struct {
	Summary  string         `json:"summary"`
	Segments []CleanSegment `json:"segments"`
}
