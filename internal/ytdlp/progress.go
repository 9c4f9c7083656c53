package ytdlp

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"sync"
)

const progressMarker = "video2sub-progress"

// progressTemplate makes yt-dlp print one machine-readable line per update.
const progressTemplate = "download:" + progressMarker +
	" %(progress.downloaded_bytes)s %(progress.total_bytes)s %(progress.total_bytes_estimate)s"

// Progress is one download update. Total is zero when yt-dlp does not know
// the size.
type Progress struct {
	Downloaded int64
	Total      int64
}

// ParseProgressLine decodes a line produced by progressTemplate.
func ParseProgressLine(line string) (Progress, bool) {
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[0] != progressMarker {
		return Progress{}, false
	}
	downloaded, ok := parseBytes(fields[1])
	if !ok {
		return Progress{}, false
	}
	total, ok := parseBytes(fields[2])
	if !ok || total == 0 {
		total, _ = parseBytes(fields[3])
	}
	return Progress{Downloaded: downloaded, Total: total}, true
}

// yt-dlp renders missing fields as "NA" and estimates as floats.
func parseBytes(value string) (int64, bool) {
	if value == "" || value == "NA" || value == "None" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return int64(f), true
}

// progressWriter splits one yt-dlp output stream into lines, reports progress
// lines to fn and forwards everything else to passthrough. Writers for stdout
// and stderr share mu, so fn and passthrough see one line at a time even
// though the streams are copied concurrently.
type progressWriter struct {
	fn          func(Progress)
	passthrough io.Writer
	mu          *sync.Mutex
	buf         bytes.Buffer
}

func newProgressWriter(fn func(Progress), passthrough io.Writer, mu *sync.Mutex) *progressWriter {
	return &progressWriter{fn: fn, passthrough: passthrough, mu: mu}
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		idx := bytes.IndexAny(w.buf.Bytes(), "\r\n")
		if idx < 0 {
			break
		}
		line := string(w.buf.Next(idx + 1))
		w.handle(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

// Flush handles a trailing line without a newline.
func (w *progressWriter) Flush() {
	if w.buf.Len() == 0 {
		return
	}
	line := w.buf.String()
	w.buf.Reset()
	w.handle(strings.TrimSpace(line))
}

func (w *progressWriter) handle(line string) {
	if line == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if update, ok := ParseProgressLine(line); ok {
		w.fn(update)
		return
	}
	if w.passthrough != nil {
		_, _ = io.WriteString(w.passthrough, line+"\n")
	}
}
