package input

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"video2sub/internal/services"
)

// Kind is the classified category of an input.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
	KindURL   Kind = "url"
)

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".avi":  {},
	".flv":  {},
	".mkv":  {},
	".webm": {},
}

var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".flac": {},
	".aac":  {},
	".m4a":  {},
	".ogg":  {},
	".opus": {},
}

// Classified is an input string tagged with its kind. It is built once by
// Classify and never modified.
type Classified struct {
	Kind Kind
	Path string
}

// Classify determines the kind of raw. URLs are checked before extensions so
// every http(s) string is a URL regardless of what it ends with.
func Classify(raw string) (Classified, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Classified{}, services.Wrap(services.ErrUnsupportedInput, "classify", "input", "empty input", nil)
	}
	if IsURL(value) {
		return Classified{Kind: KindURL, Path: value}, nil
	}
	ext := strings.ToLower(filepath.Ext(value))
	if _, ok := videoExtensions[ext]; ok {
		return Classified{Kind: KindVideo, Path: value}, nil
	}
	if _, ok := audioExtensions[ext]; ok {
		return Classified{Kind: KindAudio, Path: value}, nil
	}
	return Classified{}, services.Wrap(services.ErrUnsupportedInput, "classify", "input",
		"unsupported input "+value+" (expected a video, an audio file, or an http(s) URL)", nil)
}

// IsURL reports whether value starts with an http:// or https:// scheme,
// compared case-insensitively.
func IsURL(value string) bool {
	lower := strings.ToLower(value)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// VideoExtensions returns the recognized video extensions.
func VideoExtensions() []string { return sortedKeys(videoExtensions) }

// AudioExtensions returns the recognized audio extensions.
func AudioExtensions() []string { return sortedKeys(audioExtensions) }

func sortedKeys(set map[string]struct{}) []string {
	return slices.Sorted(maps.Keys(set))
}
