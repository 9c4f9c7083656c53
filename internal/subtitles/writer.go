package subtitles

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Render encodes the transcript in the requested format.
func Render(format Format, t Transcript) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, format, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes the transcript to w using the writer selected by format.
func Write(w io.Writer, format Format, t Transcript) error {
	switch format {
	case FormatTXT:
		return writeTXT(w, t)
	case FormatVTT:
		return writeVTT(w, t)
	case FormatSRT:
		return writeSRT(w, t)
	case FormatTSV:
		return writeTSV(w, t)
	case FormatJSON:
		return writeJSON(w, t)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func writeTXT(w io.Writer, t Transcript) error {
	if len(t.Segments) == 0 {
		if text := strings.TrimSpace(t.Text); text != "" {
			_, err := fmt.Fprintln(w, text)
			return err
		}
		return nil
	}
	for _, seg := range t.Segments {
		if _, err := fmt.Fprintln(w, strings.TrimSpace(seg.Text)); err != nil {
			return err
		}
	}
	return nil
}

func writeVTT(w io.Writer, t Transcript) error {
	if _, err := io.WriteString(w, "WEBVTT\n\n"); err != nil {
		return err
	}
	for _, seg := range t.Segments {
		if _, err := fmt.Fprintf(w, "%s --> %s\n%s\n\n",
			formatTimestamp(seg.Start, '.', false), formatTimestamp(seg.End, '.', false), cueText(seg.Text)); err != nil {
			return err
		}
	}
	return nil
}

func writeSRT(w io.Writer, t Transcript) error {
	for i, seg := range t.Segments {
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			i+1, formatTimestamp(seg.Start, ',', true), formatTimestamp(seg.End, ',', true), cueText(seg.Text)); err != nil {
			return err
		}
	}
	return nil
}

func writeTSV(w io.Writer, t Transcript) error {
	if _, err := io.WriteString(w, "start\tend\ttext\n"); err != nil {
		return err
	}
	for _, seg := range t.Segments {
		text := strings.ReplaceAll(strings.TrimSpace(seg.Text), "\t", " ")
		if _, err := fmt.Fprintf(w, "%d\t%d\t%s\n", seg.Start.Milliseconds(), seg.End.Milliseconds(), text); err != nil {
			return err
		}
	}
	return nil
}

type jsonSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type jsonTranscript struct {
	Text     string        `json:"text"`
	Language string        `json:"language,omitempty"`
	Segments []jsonSegment `json:"segments"`
}

func writeJSON(w io.Writer, t Transcript) error {
	payload := jsonTranscript{
		Text:     t.PlainText(),
		Language: t.Language,
		Segments: make([]jsonSegment, 0, len(t.Segments)),
	}
	for i, seg := range t.Segments {
		payload.Segments = append(payload.Segments, jsonSegment{
			ID:    i,
			Start: seg.Start.Seconds(),
			End:   seg.End.Seconds(),
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(payload)
}

// cueText keeps the cue arrow out of caption bodies.
func cueText(text string) string {
	return strings.ReplaceAll(strings.TrimSpace(text), "-->", "->")
}

// formatTimestamp renders HH:MM:SS<sep>mmm. Without alwaysHours a zero hour
// field is left out (MM:SS.mmm), matching whisper's own VTT output.
func formatTimestamp(d time.Duration, sep byte, alwaysHours bool) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	if h == 0 && !alwaysHours {
		return fmt.Sprintf("%02d:%02d%c%03d", m, s, sep, ms)
	}
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms)
}
