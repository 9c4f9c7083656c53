package input

import (
	"fmt"
	"path/filepath"
	"strings"

	"video2sub/internal/services"
)

// DerivePath replaces the extension of path with ext (".mp3", ".srt", ...).
// A path without an extension is rejected rather than producing a malformed name.
func DerivePath(path, ext string) (string, error) {
	current := filepath.Ext(path)
	if current == "" || current == path || strings.HasSuffix(path, string(filepath.Separator)) {
		return "", services.Wrap(services.ErrValidation, "derive", "path",
			fmt.Sprintf("input %q has no file extension", path), nil)
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(path, current) + ext, nil
}

// DeriveInDir behaves like DerivePath but places the result in dir when dir
// is non-empty.
func DeriveInDir(path, ext, dir string) (string, error) {
	derived, err := DerivePath(path, ext)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(dir) == "" {
		return derived, nil
	}
	return filepath.Join(dir, filepath.Base(derived)), nil
}
