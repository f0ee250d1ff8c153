package testutil

import (
	"time"

	"echoscript/internal/app/audio"
	"echoscript/internal/app/model"
)

// TestAPIKey passes the credential format check
const TestAPIKey = "AIzaSyTestKeyThatIsLongEnough1234"

// FixedTime is the creation time of fixture jobs
var FixedTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// SampleResult is a two-segment transcription with a summary
func SampleResult() *model.TranscriptionResponse {
	return &model.TranscriptionResponse{
		Summary: "Two people greet each other.",
		Segments: []model.TranscriptionSegment{
			{Speaker: "Speaker 1", Timestamp: "00:00 - 00:02", OriginalTranscript: "uh hi there", SemanticCorrection: "Hi there.", Emotion: model.EmotionHappy},
			{Speaker: "Speaker 2", Timestamp: "00:02 - 00:05", OriginalTranscript: "hello hello", SemanticCorrection: "Hello.", Emotion: model.EmotionNeutral},
		},
	}
}

// SampleJob is a finished job carrying SampleResult
func SampleJob(id string) *model.Job {
	d := 5.0
	return &model.Job{
		ID:        id,
		FileName:  "meeting.wav",
		CreatedAt: FixedTime,
		Status:    model.JobStatusSuccess,
		Duration:  &d,
		Result:    SampleResult(),
	}
}

// SilentWAV encodes seconds of silence at the pipeline sample rate
func SilentWAV(seconds int) []byte {
	return audio.EncodeWAV(&audio.Buffer{
		Samples:    make([]float32, seconds*audio.SampleRate),
		SampleRate: audio.SampleRate,
	})
}
