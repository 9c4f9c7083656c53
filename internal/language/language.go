package language

import (
	"fmt"
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Auto requests language detection by the transcription engine.
const Auto = "auto"

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}},
	{"es", "spa", "", "Spanish", []string{"spanish"}},
	{"fr", "fra", "fre", "French", []string{"french"}},
	{"de", "deu", "ger", "German", []string{"german"}},
	{"it", "ita", "", "Italian", []string{"italian"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese"}},
	{"ko", "kor", "", "Korean", []string{"korean"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese", "mandarin"}},
	{"ru", "rus", "", "Russian", []string{"russian"}},
	{"ar", "ara", "", "Arabic", []string{"arabic"}},
	{"hi", "hin", "", "Hindi", []string{"hindi"}},
	{"nl", "nld", "dut", "Dutch", []string{"dutch"}},
	{"pl", "pol", "", "Polish", []string{"polish"}},
	{"sv", "swe", "", "Swedish", []string{"swedish"}},
	{"tr", "tur", "", "Turkish", []string{"turkish"}},
	{"uk", "ukr", "", "Ukrainian", []string{"ukrainian"}},
	{"vi", "vie", "", "Vietnamese", []string{"vietnamese"}},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// primarySubtag returns the first subtag of a code such as "en-US" or "pt_BR".
func primarySubtag(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if idx := strings.IndexAny(code, "-_"); idx >= 0 {
		code = code[:idx]
	}
	return code
}

// ToISO2 converts a language code, word, or BCP 47 tag to ISO 639-1, or to
// the shortest ISO 639 code when the language has no 2-letter form.
// Returns an empty string when the code cannot be resolved.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || code == Auto {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	primary := primarySubtag(code)
	if e := lookup(primary); e != nil {
		return e.code2
	}
	if base, err := xlang.ParseBase(primary); err == nil {
		return base.String()
	}
	return ""
}

// Normalize validates a user supplied language and returns its canonical form:
// an ISO 639-1 code, or Auto.
func Normalize(code string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(code))
	if trimmed == "" {
		return "", fmt.Errorf("language code is empty")
	}
	if trimmed == Auto {
		return Auto, nil
	}
	if iso := ToISO2(trimmed); iso != "" {
		return iso, nil
	}
	return "", fmt.Errorf("unknown language %q", code)
}

// SameBase reports whether two codes name the same base language, so that
// "en", "en-US", "en-orig" and "eng" all match each other.
func SameBase(a, b string) bool {
	left, right := ToISO2(a), ToISO2(b)
	return left != "" && left == right
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	if strings.EqualFold(trimmed, Auto) {
		return "Auto-detect"
	}
	if e := lookup(trimmed); e != nil {
		return e.display
	}
	if tag, err := xlang.Parse(trimmed); err == nil {
		if name := display.English.Tags().Name(tag); name != "" {
			return name
		}
	}
	return strings.ToUpper(trimmed)
}
