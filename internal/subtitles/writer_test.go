package subtitles

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func sampleTranscript() Transcript {
	return Transcript{
		Language: "en",
		Segments: []Segment{
			{Start: 0, End: 2500 * time.Millisecond, Text: " Hello there. "},
			{Start: 2500 * time.Millisecond, End: time.Hour + 2*time.Minute + 3*time.Second + 45*time.Millisecond, Text: "A --> B\tC"},
		},
	}
}

func TestRenderTXT(t *testing.T) {
	out, err := Render(FormatTXT, sampleTranscript())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	want := "Hello there.\nA --> B\tC\n"
	if string(out) != want {
		t.Fatalf("txt = %q, want %q", out, want)
	}
}

func TestRenderTXTFallsBackToText(t *testing.T) {
	out, err := Render(FormatTXT, Transcript{Text: "  just text "})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if string(out) != "just text\n" {
		t.Fatalf("unexpected txt %q", out)
	}
}

func TestRenderSRT(t *testing.T) {
	out, err := Render(FormatSRT, sampleTranscript())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:02,500\nHello there.\n\n" +
		"2\n00:00:02,500 --> 01:02:03,045\nA -> B\tC\n\n"
	if string(out) != want {
		t.Fatalf("srt = %q, want %q", out, want)
	}
}

func TestRenderVTT(t *testing.T) {
	out, err := Render(FormatVTT, sampleTranscript())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	content := string(out)
	if !strings.HasPrefix(content, "WEBVTT\n\n") {
		t.Fatalf("missing WEBVTT header: %q", content)
	}
	if !strings.Contains(content, "00:00.000 --> 00:02.500\nHello there.\n") {
		t.Fatalf("expected short timestamps below one hour: %q", content)
	}
	if !strings.Contains(content, "00:02.500 --> 01:02:03.045\nA -> B\tC\n") {
		t.Fatalf("unexpected vtt body: %q", content)
	}
}

func TestRenderTSV(t *testing.T) {
	out, err := Render(FormatTSV, sampleTranscript())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %q", out)
	}
	if lines[0] != "start\tend\ttext" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[2] != "2500\t3723045\tA --> B C" {
		t.Fatalf("unexpected row %q", lines[2])
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := Render(FormatJSON, sampleTranscript())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	var payload struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Segments []struct {
			ID    int     `json:"id"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if payload.Language != "en" || len(payload.Segments) != 2 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.Segments[0].End != 2.5 || payload.Segments[1].ID != 1 {
		t.Fatalf("unexpected segments %+v", payload.Segments)
	}
	if !strings.HasPrefix(payload.Text, "Hello there.") {
		t.Fatalf("unexpected text %q", payload.Text)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if _, err := Render(Format("docx"), sampleTranscript()); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseFormat(t *testing.T) {
	for _, value := range []string{"txt", "VTT", ".srt", " tsv ", "json"} {
		if _, err := ParseFormat(value); err != nil {
			t.Fatalf("ParseFormat(%q) returned error: %v", value, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatal("expected error for pdf")
	}
	if FormatSRT.Ext() != ".srt" {
		t.Fatalf("unexpected ext %q", FormatSRT.Ext())
	}
}
