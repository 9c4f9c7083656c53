package audio

import (
	"fmt"
	"strings"

	"video2sub/internal/language"
	"video2sub/internal/media/ffprobe"
)

// Selection identifies the audio stream to extract.
type Selection struct {
	Stream ffprobe.Stream
	// Ordinal is the position among audio streams, as used by ffmpeg's -map 0:a:N.
	Ordinal int
	// Total is the number of audio streams in the container.
	Total int
}

// Found reports whether any audio stream exists.
func (s Selection) Found() bool {
	return s.Total > 0 && s.Ordinal >= 0
}

// NeedsMap reports whether ffmpeg must be told which audio stream to use.
func (s Selection) NeedsMap() bool {
	return s.Total > 1 && s.Ordinal >= 0
}

// Label returns a human-readable summary of the selected stream.
func (s Selection) Label() string {
	if !s.Found() {
		return ""
	}
	return formatStreamSummary(s.Stream)
}

// Select returns the best stream for speech recognition in lang. An empty
// lang or "auto" skips the language preference.
func Select(streams []ffprobe.Stream, lang string) Selection {
	candidates := buildCandidates(streams, lang)
	if len(candidates) == 0 {
		return Selection{Ordinal: -1}
	}
	best := candidates[0]
	bestScore := score(best)
	for _, cand := range candidates[1:] {
		if s := score(cand); s > bestScore {
			best = cand
			bestScore = s
		}
	}
	return Selection{Stream: best.stream, Ordinal: best.ordinal, Total: len(candidates)}
}

type candidate struct {
	stream         ffprobe.Stream
	ordinal        int
	languageMatch  bool
	untagged       bool
	commentary     bool
	defaultFlagged bool
	channels       int
}

func buildCandidates(streams []ffprobe.Stream, lang string) []candidate {
	result := make([]candidate, 0, len(streams))
	wantLang := language.ToISO2(lang)
	ordinal := 0
	for _, stream := range streams {
		if !stream.IsAudio() {
			continue
		}
		tag := streamLanguage(stream.Tags)
		cand := candidate{
			stream:         stream,
			ordinal:        ordinal,
			untagged:       tag == "" || tag == "und",
			commentary:     isCommentary(stream),
			defaultFlagged: stream.Disposition["default"] == 1,
			channels:       stream.Channels,
		}
		if wantLang != "" && !cand.untagged {
			cand.languageMatch = language.SameBase(tag, wantLang)
		}
		result = append(result, cand)
		ordinal++
	}
	return result
}

func score(c candidate) float64 {
	s := 0.0
	switch {
	case c.languageMatch:
		s += 1000
	case c.untagged:
		s += 500
	}
	if c.commentary {
		s -= 800
	}
	if c.defaultFlagged {
		s += 50
	}
	// Speech models downmix anyway; a stereo or 5.1 track is as good as 7.1.
	if c.channels >= 2 {
		s += 10
	}
	s -= float64(c.ordinal) * 0.1
	return s
}

func streamLanguage(tags map[string]string) string {
	for _, key := range []string{"language", "LANGUAGE", "Language", "language_ietf", "LANG"} {
		if value, ok := tags[key]; ok {
			return strings.ToLower(strings.TrimSpace(value))
		}
	}
	return ""
}

func streamTitle(tags map[string]string) string {
	for _, key := range []string{"title", "TITLE", "handler_name", "HANDLER_NAME"} {
		if value, ok := tags[key]; ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func isCommentary(stream ffprobe.Stream) bool {
	if stream.Disposition["comment"] == 1 || stream.Disposition["visual_impaired"] == 1 {
		return true
	}
	title := strings.ToLower(streamTitle(stream.Tags))
	for _, keyword := range []string{"commentary", "director", "audio description", "descriptive"} {
		if strings.Contains(title, keyword) {
			return true
		}
	}
	return false
}

func formatStreamSummary(stream ffprobe.Stream) string {
	parts := make([]string, 0, 4)
	if lang := streamLanguage(stream.Tags); lang != "" {
		parts = append(parts, lang)
	}
	if codec := strings.TrimSpace(stream.CodecName); codec != "" {
		parts = append(parts, codec)
	}
	if stream.Channels > 0 {
		parts = append(parts, fmt.Sprintf("%dch", stream.Channels))
	}
	if title := streamTitle(stream.Tags); title != "" {
		parts = append(parts, fmt.Sprintf("%q", title))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("stream %d", stream.Index)
	}
	return strings.Join(parts, " ")
}
