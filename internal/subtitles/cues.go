package subtitles

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseCues reads an SRT or WebVTT document into a Transcript. Cue numbers,
// the WEBVTT header, NOTE/STYLE blocks, and cue settings are ignored; inline
// tags such as <c> or <00:00:01.000> are stripped from the text.
func ParseCues(data []byte) (Transcript, error) {
	var (
		transcript Transcript
		current    *Segment
		lines      []string
	)
	flush := func() {
		if current != nil {
			current.Text = strings.TrimSpace(strings.Join(lines, " "))
			if current.Text != "" {
				current.ID = len(transcript.Segments)
				transcript.Segments = append(transcript.Segments, *current)
			}
		}
		current = nil
		lines = lines[:0]
	}

	scanner := bufio.NewScanner(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	skipBlock := false
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			skipBlock = false
			continue
		}
		if skipBlock {
			continue
		}
		if current == nil && isHeaderBlock(trimmed) {
			skipBlock = true
			continue
		}
		if strings.Contains(trimmed, "-->") {
			flush()
			start, end, err := parseCueTiming(trimmed)
			if err != nil {
				return Transcript{}, err
			}
			current = &Segment{Start: start, End: end}
			continue
		}
		if current == nil {
			// cue identifier line (SRT index or VTT cue id)
			continue
		}
		if text := stripInlineTags(trimmed); text != "" {
			lines = append(lines, text)
		}
	}
	if err := scanner.Err(); err != nil {
		return Transcript{}, fmt.Errorf("read cues: %w", err)
	}
	flush()
	return transcript, nil
}

func isHeaderBlock(line string) bool {
	for _, prefix := range []string{"WEBVTT", "NOTE", "STYLE", "REGION"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func parseCueTiming(line string) (time.Duration, time.Duration, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid cue timing %q", line)
	}
	startText := strings.TrimSpace(parts[0])
	endFields := strings.Fields(parts[1])
	if len(endFields) == 0 {
		return 0, 0, fmt.Errorf("invalid cue timing %q", line)
	}
	start, err := parseCueTimestamp(startText)
	if err != nil {
		return 0, 0, err
	}
	end, err := parseCueTimestamp(endFields[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseCueTimestamp accepts HH:MM:SS,mmm, HH:MM:SS.mmm and the VTT short form MM:SS.mmm.
func parseCueTimestamp(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ",", ".")
	timeParts := strings.Split(value, ".")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) == 2 {
		hms = append([]string{"0"}, hms...)
	}
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
	return total, nil
}

func stripInlineTags(text string) string {
	if !strings.Contains(text, "<") {
		return strings.TrimSpace(text)
	}
	var b strings.Builder
	inTag := false
	for _, r := range text {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
