package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/himanishpuri/revsearch/pkg/utils"
)

// DirStore keeps one record per file in a flat directory.
type DirStore struct {
	root string
}

// NewDirStore returns a store rooted at dir. The directory is not touched
// until the first call.
func NewDirStore(dir string) *DirStore {
	return &DirStore{root: dir}
}

// Root returns the directory backing the store.
func (s *DirStore) Root() string {
	return s.root
}

func (s *DirStore) String() string { return "dir:" + s.root }

// List returns the regular files in the root directory. Subdirectories are ignored.
func (s *DirStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading corpus dir %s: %w", s.root, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (s *DirStore) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Put writes the record through a temp file so a concurrent scan never sees
// a partial record.
func (s *DirStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := utils.MakeDir(s.root); err != nil {
		return fmt.Errorf("creating corpus dir: %w", err)
	}

	tmp := filepath.Join(s.root, "."+name+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing record %s: %w", name, err)
	}
	if err := utils.MoveFile(tmp, path); err != nil {
		utils.DeleteFile(tmp)
		return err
	}
	return nil
}

// Delete removes a record. Deleting a missing record is not an error.
func (s *DirStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := utils.DeleteFile(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting record %s: %w", name, err)
	}
	return nil
}

// path rejects names that would escape the root directory.
func (s *DirStore) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid record name %q", name)
	}
	return filepath.Join(s.root, name), nil
}
