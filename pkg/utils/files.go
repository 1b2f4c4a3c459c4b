package utils

import (
	"fmt"
	"os"
)

// MakeDir creates path and any missing parents.
func MakeDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// DeleteFile removes a file. The os error is returned unwrapped so callers
// can test it with os.IsNotExist.
func DeleteFile(path string) error {
	return os.Remove(path)
}

// MoveFile renames src to dst, replacing dst if it exists.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move file from %s to %s: %w", src, dst, err)
	}
	return nil
}
