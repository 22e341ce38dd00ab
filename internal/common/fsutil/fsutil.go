package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/models/llm
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists checks if the given path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// FileInfo is the result of a successful model file resolution.
type FileInfo struct {
	Path string
	Size int64
}

// ResolveModelPath joins filename onto root and checks that the result is a
// non-empty regular file the process can open. filename must not escape root.
func ResolveModelPath(root, filename string) (FileInfo, error) {
	if strings.TrimSpace(filename) == "" {
		return FileInfo{}, fmt.Errorf("empty model filename")
	}
	if filepath.IsAbs(filename) || strings.Contains(filepath.ToSlash(filename), "..") {
		return FileInfo{}, fmt.Errorf("model filename %q must be relative to the models dir", filename)
	}
	base, err := ExpandHome(root)
	if err != nil {
		return FileInfo{}, err
	}
	abs, err := filepath.Abs(filepath.Join(base, filename))
	if err != nil {
		return FileInfo{}, fmt.Errorf("abs path: %w", err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return FileInfo{}, err
	}
	if fi.IsDir() {
		return FileInfo{}, fmt.Errorf("%s: is a directory", abs)
	}
	if fi.Size() == 0 {
		return FileInfo{}, fmt.Errorf("%s: empty file", abs)
	}
	f, err := os.Open(abs)
	if err != nil {
		return FileInfo{}, err
	}
	defer f.Close()
	var one [1]byte
	if _, err := f.Read(one[:]); err != nil && !errors.Is(err, io.EOF) {
		return FileInfo{}, fmt.Errorf("%s: unreadable: %w", abs, err)
	}
	return FileInfo{Path: abs, Size: fi.Size()}, nil
}
