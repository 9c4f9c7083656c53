package textutil

import (
	"strings"
	"unicode/utf8"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"\x00", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// TruncateBytes shortens s to at most maxBytes bytes without splitting a
// UTF-8 sequence. A non-positive limit returns s unchanged.
func TruncateBytes(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// TitleFileBase turns a media title into a file base name the way the
// downloader names its output: unsafe characters replaced, then truncated.
func TitleFileBase(title string, maxBytes int) string {
	base := TruncateBytes(SanitizeFileName(title), maxBytes)
	base = strings.TrimSpace(strings.TrimRight(base, "."))
	if base == "" {
		return "untitled"
	}
	return base
}
