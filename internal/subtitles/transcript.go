package subtitles

import (
	"strings"
	"time"
)

// Segment is one timed piece of recognized speech.
type Segment struct {
	ID    int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Transcript is the format-independent result of a transcription run or a
// parsed subtitle file.
type Transcript struct {
	Language string
	Text     string
	Segments []Segment
}

// PlainText returns the transcript text, joining segments when Text is unset.
func (t Transcript) PlainText() string {
	if text := strings.TrimSpace(t.Text); text != "" {
		return text
	}
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Duration returns the end of the last segment.
func (t Transcript) Duration() time.Duration {
	var last time.Duration
	for _, seg := range t.Segments {
		if seg.End > last {
			last = seg.End
		}
	}
	return last
}

// SecondsToDuration converts fractional seconds from engine JSON output.
func SecondsToDuration(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second)).Round(time.Millisecond)
}
