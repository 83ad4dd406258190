package safeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideBase is returned when a path resolves outside of the allowed base directory.
var ErrOutsideBase = errors.New("path is outside base directory")

// Contain resolves filePath and verifies it lies within baseDir.
// The returned path is absolute.
func Contain(baseDir, filePath string) (string, error) {
	baseAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("resolve base directory %s: %w", baseDir, err)
	}
	fileAbs, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", filePath, err)
	}

	rel, err := filepath.Rel(baseAbs, fileAbs)
	if err != nil {
		return "", fmt.Errorf("relate %s to %s: %w", filePath, baseDir, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", filePath, ErrOutsideBase)
	}
	return fileAbs, nil
}

// ReadFileContained reads a file only if it is contained within baseDir.
func ReadFileContained(baseDir, filePath string) ([]byte, error) {
	abs, err := Contain(baseDir, filePath)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- abs has been verified to be contained within baseDir
	return os.ReadFile(abs)
}

// WriteFilePreservePerms writes data to path preserving existing file mode when possible.
// When the file does not exist, it uses a sane default of 0644.
func WriteFilePreservePerms(path string, data []byte) error {
	var mode os.FileMode = 0o644
	if st, err := os.Stat(path); err == nil {
		if perm := st.Mode().Perm(); perm != 0 {
			mode = perm
		}
	}
	return os.WriteFile(path, data, mode)
}
