package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// AssetExtension is implied for every relative reference.
	AssetExtension = ".jpeg"
	// CopyPrefix is prepended to the stem of copied images.
	CopyPrefix = "copied_"
)

// Item-level failure taxonomy. Batch operations wrap these with %w.
var (
	ErrSourceNotFound   = errors.New("source image not found")
	ErrWriteFailure     = errors.New("destination not writable")
	ErrInvalidReference = errors.New("invalid image reference")
)

// ImageReference identifies an image either by a bare name inside the assets
// directory or by an absolute filesystem path. The zero value is invalid.
type ImageReference struct {
	name string
	path string
}

// NewNamedReference creates a reference to <assets>/<name>.jpeg
func NewNamedReference(name string) (ImageReference, error) {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, AssetExtension)
	if name == "" || name == "." || name == ".." {
		return ImageReference{}, fmt.Errorf("%w: empty name", ErrInvalidReference)
	}
	if strings.ContainsAny(name, `/\`) {
		return ImageReference{}, fmt.Errorf("%w: name %q contains a path separator", ErrInvalidReference, name)
	}
	return ImageReference{name: name}, nil
}

// NewPathReference creates a reference to an absolute filesystem path
func NewPathReference(path string) (ImageReference, error) {
	path = strings.TrimSpace(path)
	if path == "" || !filepath.IsAbs(path) {
		return ImageReference{}, fmt.Errorf("%w: %q is not an absolute path", ErrInvalidReference, path)
	}
	cleaned := filepath.Clean(path)
	if filepath.Base(cleaned) == string(filepath.Separator) {
		return ImageReference{}, fmt.Errorf("%w: %q has no file name", ErrInvalidReference, path)
	}
	return ImageReference{path: cleaned}, nil
}

// ParseReference classifies s as an absolute path or a bare asset name
func ParseReference(s string) (ImageReference, error) {
	if filepath.IsAbs(strings.TrimSpace(s)) {
		return NewPathReference(s)
	}
	return NewNamedReference(s)
}

// MustReference is ParseReference for literals known to be valid
func MustReference(s string) ImageReference {
	ref, err := ParseReference(s)
	if err != nil {
		panic(err)
	}
	return ref
}

// IsZero reports whether the reference was never initialised
func (r ImageReference) IsZero() bool {
	return r.name == "" && r.path == ""
}

// IsAbsolute reports whether the reference carries a filesystem path
func (r ImageReference) IsAbsolute() bool {
	return r.path != ""
}

// Path returns the absolute path, or "" for named references
func (r ImageReference) Path() string {
	return r.path
}

// BaseName returns the file name without directory and extension
func (r ImageReference) BaseName() string {
	if r.IsAbsolute() {
		base := filepath.Base(r.path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return r.name
}

// DisplayName is the label shown under a thumbnail
func (r ImageReference) DisplayName() string {
	if r.IsAbsolute() {
		return filepath.Base(r.path)
	}
	return r.name
}

// Key returns a stable identity string, usable as a map key outside this package
func (r ImageReference) Key() string {
	if r.IsAbsolute() {
		return "path:" + r.path
	}
	return "name:" + r.name
}

// String returns the form accepted by ParseReference
func (r ImageReference) String() string {
	if r.IsAbsolute() {
		return r.path
	}
	return r.name
}

// Source returns the file a copy reads from: the absolute path as-is, or
// <assetsDir>/<name>.jpeg
func (r ImageReference) Source(assetsDir string) string {
	if r.IsAbsolute() {
		return r.path
	}
	return r.RelativeGuess(assetsDir)
}

// RelativeGuess returns <assetsDir>/<stem>.jpeg regardless of reference kind
func (r ImageReference) RelativeGuess(assetsDir string) string {
	return filepath.Join(assetsDir, r.BaseName()+AssetExtension)
}

// CopyDestination returns <assetsDir>/copied_<stem>.jpeg
func (r ImageReference) CopyDestination(assetsDir string) string {
	return filepath.Join(assetsDir, CopyPrefix+r.BaseName()+AssetExtension)
}

// SavedStore persists the saved-images list between runs
type SavedStore interface {
	Load() ([]string, error)
	Save(refs []string) error
}

// ImageRepository holds the runtime-accumulated list of saved or imported images
type ImageRepository struct {
	mu    sync.RWMutex
	saved []ImageReference
	store SavedStore
}

// NewImageRepository creates a repository backed by store. A nil store keeps
// the list in memory only.
func NewImageRepository(store SavedStore) *ImageRepository {
	return &ImageRepository{
		saved: make([]ImageReference, 0),
		store: store,
	}
}

// LoadSaved replaces the in-memory list with the store's contents. Entries that
// no longer parse are dropped and returned as skipped.
func (r *ImageRepository) LoadSaved() (skipped []string, err error) {
	if r.store == nil {
		return nil, nil
	}

	raw, err := r.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load saved images: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.saved = r.saved[:0]
	for _, s := range raw {
		ref, perr := ParseReference(s)
		if perr != nil {
			skipped = append(skipped, s)
			continue
		}
		if r.indexOf(ref) < 0 {
			r.saved = append(r.saved, ref)
		}
	}
	return skipped, nil
}

// Add appends ref if it is not already present. Reports whether the list changed.
func (r *ImageRepository) Add(ref ImageReference) (bool, error) {
	if ref.IsZero() {
		return false, ErrInvalidReference
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(ref) >= 0 {
		return false, nil
	}
	r.saved = append(r.saved, ref)
	return true, r.persist()
}

// Remove drops ref from the list. Reports whether it was present.
func (r *ImageRepository) Remove(ref ImageReference) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(ref)
	if idx < 0 {
		return false, nil
	}
	r.saved = append(r.saved[:idx], r.saved[idx+1:]...)
	return true, r.persist()
}

// Saved returns a copy of the saved list in insertion order
func (r *ImageRepository) Saved() []ImageReference {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ImageReference, len(r.saved))
	copy(out, r.saved)
	return out
}

// Contains reports whether ref is in the saved list
func (r *ImageRepository) Contains(ref ImageReference) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(ref) >= 0
}

// GetImageStats returns statistics about the saved list
func (r *ImageRepository) GetImageStats() ImageStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := ImageStats{SavedCount: len(r.saved)}
	for _, ref := range r.saved {
		if ref.IsAbsolute() {
			stats.AbsoluteCount++
		}
	}
	return stats
}

// ImageStats contains statistics about the image repository
type ImageStats struct {
	SavedCount    int
	AbsoluteCount int
}

func (r *ImageRepository) indexOf(ref ImageReference) int {
	for i, existing := range r.saved {
		if existing == ref {
			return i
		}
	}
	return -1
}

// persist must be called with r.mu held
func (r *ImageRepository) persist() error {
	if r.store == nil {
		return nil
	}
	raw := make([]string, len(r.saved))
	for i, ref := range r.saved {
		raw[i] = ref.String()
	}
	if err := r.store.Save(raw); err != nil {
		return fmt.Errorf("failed to persist saved images: %w", err)
	}
	return nil
}
