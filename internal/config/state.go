package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

type savedFile struct {
	Images []savedImage `toml:"images"`
}

type savedImage struct {
	Ref string `toml:"ref"`
}

// SavedStore persists the saved-images list as TOML. It satisfies
// models.SavedStore.
type SavedStore struct {
	path string
}

func NewSavedStore(path string) *SavedStore {
	return &SavedStore{path: path}
}

// Load returns the stored references; a missing file is an empty list
func (s *SavedStore) Load() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var f savedFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}

	refs := make([]string, 0, len(f.Images))
	for _, img := range f.Images {
		refs = append(refs, img.Ref)
	}
	return refs, nil
}

// Save rewrites the file atomically
func (s *SavedStore) Save(refs []string) error {
	f := savedFile{Images: make([]savedImage, 0, len(refs))}
	for _, r := range refs {
		f.Images = append(f.Images, savedImage{Ref: r})
	}

	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode saved images: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
