package utils

import (
	"path/filepath"

	"github.com/google/uuid"
)

// TempPath returns a collision-free path in dir for a temporary file that
// keeps ext (e.g. ".webm"), so tools that sniff the extension still work.
func TempPath(dir, prefix, ext string) string {
	return filepath.Join(dir, prefix+uuid.NewString()+ext)
}
