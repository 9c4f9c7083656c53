package subtitles

import (
	"fmt"
	"strings"
)

// Format names an output subtitle/text format.
type Format string

const (
	FormatTXT  Format = "txt"
	FormatVTT  Format = "vtt"
	FormatSRT  Format = "srt"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
)

var allFormats = []Format{FormatTXT, FormatVTT, FormatSRT, FormatTSV, FormatJSON}

// Formats lists every supported format in display order.
func Formats() []Format {
	out := make([]Format, len(allFormats))
	copy(out, allFormats)
	return out
}

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(value string) (Format, error) {
	normalized := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), ".")
	for _, f := range allFormats {
		if string(f) == normalized {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q (want one of %s)", value, formatList())
}

// Ext returns the file extension including the leading dot.
func (f Format) Ext() string {
	return "." + string(f)
}

func formatList() string {
	names := make([]string, 0, len(allFormats))
	for _, f := range allFormats {
		names = append(names, string(f))
	}
	return strings.Join(names, "|")
}
