package ytdlp

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"video2sub/internal/language"
)

// SubtitleFormat is one downloadable rendition of a subtitle track.
type SubtitleFormat struct {
	Ext  string `json:"ext"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Info is the subset of yt-dlp's --dump-single-json output the pipeline uses.
type Info struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Filename    string  `json:"_filename"`
	Extractor   string  `json:"extractor_key"`
	WebpageURL  string  `json:"webpage_url"`
	Duration    float64 `json:"duration"`
	IsLive      bool    `json:"is_live"`
	Uploader    string  `json:"uploader"`

	// RequestedSubtitles holds the tracks yt-dlp selected for --sub-langs.
	RequestedSubtitles map[string]SubtitleFormat   `json:"requested_subtitles"`
	Subtitles          map[string][]SubtitleFormat `json:"subtitles"`
	AutomaticCaptions  map[string][]SubtitleFormat `json:"automatic_captions"`
}

// ParseInfo decodes yt-dlp JSON metadata.
func ParseInfo(data []byte) (Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return Info{}, fmt.Errorf("parse yt-dlp metadata: %w", err)
	}
	return info, nil
}

// FileBase returns the output base name yt-dlp would use (its _filename without
// directory or extension). ok is false when the metadata carries no filename.
func (i Info) FileBase() (string, bool) {
	name := filepath.Base(strings.TrimSpace(i.Filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", false
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if strings.TrimSpace(base) == "" {
		return "", false
	}
	return base, true
}

// Track describes a subtitle track for display.
type Track struct {
	Key       string
	Name      string
	Formats   []string
	Automatic bool
}

// Tracks lists manual tracks followed by automatic captions, each group
// sorted by key. live_chat pseudo-tracks are omitted.
func (i Info) Tracks() []Track {
	var out []Track
	appendGroup := func(group map[string][]SubtitleFormat, automatic bool) {
		keys := make([]string, 0, len(group))
		for key := range group {
			if isChatTrack(key) {
				continue
			}
			keys = append(keys, key)
		}
		slices.Sort(keys)
		for _, key := range keys {
			track := Track{Key: key, Automatic: automatic}
			for _, f := range group[key] {
				if track.Name == "" {
					track.Name = f.Name
				}
				if f.Ext != "" && !slices.Contains(track.Formats, f.Ext) {
					track.Formats = append(track.Formats, f.Ext)
				}
			}
			out = append(out, track)
		}
	}
	appendGroup(i.Subtitles, false)
	appendGroup(i.AutomaticCaptions, true)
	return out
}

// MatchSubtitle returns the subtitle key to download for lang. An exact key
// among the requested subtitles wins; otherwise any manual track with the same
// base language matches. Automatic captions are never used, and "auto" never
// matches.
func MatchSubtitle(info Info, lang string) (string, bool) {
	lang = strings.TrimSpace(lang)
	if lang == "" || strings.EqualFold(lang, language.Auto) {
		return "", false
	}
	if _, ok := info.RequestedSubtitles[lang]; ok && !isChatTrack(lang) {
		return lang, true
	}
	if key, ok := sameBaseKey(keysOf(info.RequestedSubtitles), lang); ok {
		return key, true
	}
	manual := make([]string, 0, len(info.Subtitles))
	for key, formats := range info.Subtitles {
		if len(formats) > 0 {
			manual = append(manual, key)
		}
	}
	return sameBaseKey(manual, lang)
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for key := range m {
		out = append(out, key)
	}
	return out
}

// sameBaseKey picks the shortest key (then lexically first) whose base
// language equals lang, so "en" beats "en-GB" and "en-orig".
func sameBaseKey(keys []string, lang string) (string, bool) {
	var candidates []string
	for _, key := range keys {
		if isChatTrack(key) {
			continue
		}
		if language.SameBase(key, lang) {
			candidates = append(candidates, key)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	slices.SortFunc(candidates, func(a, b string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(a, b)
	})
	return candidates[0], true
}

func isChatTrack(key string) bool {
	return strings.Contains(strings.ToLower(key), "live_chat")
}
