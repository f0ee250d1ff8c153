// Package prompts holds the instructions sent to the inference backends.
package prompts

// MaxSummaryInputChars bounds the transcript excerpt sent for summarization
const MaxSummaryInputChars = 50000

// Transcription is the system instruction for one audio chunk
const Transcription = `
You are an expert audio transcription assistant, fluent in Mandarin, Taiwanese Hokkien and English, including regional accents.
Process the provided audio chunk and produce a structured transcription.

Rules:
1. Identify distinct speakers (e.g., Speaker 1, Speaker 2).
2. Provide timestamps as MM:SS - MM:SS relative to the start of this audio chunk.
3. Output BOTH "original_transcript" (verbatim, including fillers and false starts) and "semantic_correction" (polished for readability: fix grammar and stuttering, keep meaning).
4. Detect the emotion of each turn (Happy, Sad, Angry, Neutral).
5. Output JSON only.
`

// ContextPrefix introduces the last line of the previous chunk
const ContextPrefix = "\n\nCONTEXT FROM PREVIOUS SEGMENT (Use this to maintain speaker consistency): "

// Summary is the instruction placed before the transcript excerpt
const Summary = `
Please provide a comprehensive executive summary of the following conversation.

Language Rules:
- If the content is primarily in Chinese (Traditional) or Taiwanese, the summary MUST be in Traditional Chinese.
- If it's in English, provide the summary in English.

TRANSCRIPT:
`

// TranscriptionWithContext appends the previous-context hint when present
func TranscriptionWithContext(previousContext string) string {
	if previousContext == "" {
		return Transcription
	}
	return Transcription + ContextPrefix + `"` + previousContext + `"`
}

// SummaryRequest builds the summary prompt over a bounded excerpt
func SummaryRequest(fullText string) string {
	return Summary + Truncate(fullText, MaxSummaryInputChars)
}

// Truncate cuts s to at most n characters without splitting a rune
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
