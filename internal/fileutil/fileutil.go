package fileutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WriteFile writes data to path with default permissions (0o644), creating
// any missing parent directories.
func WriteFile(path string, data []byte) error {
	return WriteFileMode(path, data, 0o644)
}

// WriteFileMode streams data to path, setting the given file mode.
func WriteFileMode(path string, data []byte, mode os.FileMode) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, bytes.NewReader(data)); err != nil {
		return err
	}
	return out.Close()
}

// EnsureDir creates dir and its parents.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// ResetDir removes dir with all contents and recreates it empty.
func ResetDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("reset dir: empty path")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return EnsureDir(dir)
}

// SafeJoin joins a slash-separated archive name onto root and rejects names
// that would land outside root.
func SafeJoin(root, name string) (string, error) {
	clean := filepath.FromSlash(strings.TrimRight(name, "/"))
	if clean == "" || filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("unsafe entry path %q", name)
	}
	joined := filepath.Join(root, clean)
	rel, err := filepath.Rel(root, joined)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("unsafe entry path %q", name)
	}
	return joined, nil
}

// Contains reports whether path is root itself or lies below it. Both paths
// must be absolute.
func Contains(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
