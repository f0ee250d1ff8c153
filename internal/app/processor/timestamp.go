package processor

import (
	"fmt"
	"strings"

	"echoscript/internal/app/model"
)

// CorrectTimestamp shifts a chunk-relative "MM:SS - MM:SS" (or a bare
// "MM:SS") by offsetSeconds. Minutes are not wrapped into hours.
func CorrectTimestamp(ts string, offsetSeconds int) string {
	if !strings.Contains(ts, "-") {
		ts = ts + " - " + ts
	}
	parts := strings.Split(ts, "-")
	start := shiftClock(parts[0], offsetSeconds)
	end := shiftClock(parts[1], offsetSeconds)
	return start + " - " + end
}

// CorrectTimestamps returns a copy of segs with every timestamp shifted
func CorrectTimestamps(segs []model.TranscriptionSegment, offsetSeconds int) []model.TranscriptionSegment {
	out := make([]model.TranscriptionSegment, len(segs))
	for i, seg := range segs {
		seg.Timestamp = CorrectTimestamp(seg.Timestamp, offsetSeconds)
		out[i] = seg
	}
	return out
}

func shiftClock(clock string, offsetSeconds int) string {
	fields := strings.Split(strings.TrimSpace(clock), ":")
	mins := leadingInt(fields[0])
	secs := 0
	if len(fields) > 1 {
		secs = leadingInt(fields[1])
	}

	total := max(mins*60+secs+offsetSeconds, 0)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// leadingInt parses the leading decimal digits of s, 0 when there are none
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}
