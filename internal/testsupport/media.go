package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mediaMagic holds the leading bytes written for known fixture extensions so
// that sniffing tools see a plausible container.
var mediaMagic = map[string][]byte{
	".mp3":  []byte("ID3\x04\x00\x00"),
	".wav":  []byte("RIFF\x00\x00\x00\x00WAVE"),
	".flac": []byte("fLaC"),
	".ogg":  []byte("OggS"),
	".mp4":  []byte("\x00\x00\x00\x18ftypisom"),
	".mov":  []byte("\x00\x00\x00\x14ftypqt  "),
	".mkv":  []byte("\x1a\x45\xdf\xa3"),
	".webm": []byte("\x1a\x45\xdf\xa3"),
}

// WriteMedia creates a fake media file of size bytes at path, creating parent
// directories as needed. The content starts with the container signature for
// the extension, when known, and is padded with zeros.
func WriteMedia(t testing.TB, path string, size int) {
	t.Helper()

	magic := mediaMagic[strings.ToLower(filepath.Ext(path))]
	if size < len(magic) {
		size = len(magic)
	}
	if size <= 0 {
		size = 1
	}
	data := make([]byte, size)
	copy(data, magic)
	writeFixture(t, path, data)
}

// WriteText writes content to path, creating parent directories as needed.
func WriteText(t testing.TB, path, content string) {
	t.Helper()
	writeFixture(t, path, []byte(content))
}

// ReadText returns the content of path, failing the test when it is missing.
func ReadText(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func writeFixture(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
