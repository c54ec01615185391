package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"image-selector/internal/logger"
	"image-selector/internal/models"
)

const imageComponent = "ImageService"

// probeSide bounds the decode performed when validating an import
const probeSide = 64

// Decoder turns an image file into a bounded thumbnail
type Decoder interface {
	Decode(ctx context.Context, path string, maxSide int) (image.Image, error)
}

// ImageService handles importing external images and loading previews
type ImageService struct {
	decoder    Decoder
	repository *models.ImageRepository
	assetsDir  string
	logger     logger.Logger
}

// NewImageService creates a new image service
func NewImageService(decoder Decoder, repo *models.ImageRepository, assetsDir string, log logger.Logger) *ImageService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ImageService{
		decoder:    decoder,
		repository: repo,
		assetsDir:  assetsDir,
		logger:     log,
	}
}

// Import validates an absolute path from the file picker and appends it to the
// saved-images list
func (is *ImageService) Import(ctx context.Context, path string) (models.ImageReference, error) {
	select {
	case <-ctx.Done():
		return models.ImageReference{}, ctx.Err()
	default:
	}

	ref, err := models.NewPathReference(path)
	if err != nil {
		return models.ImageReference{}, err
	}

	info, err := os.Stat(ref.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.ImageReference{}, fmt.Errorf("%w: %s", models.ErrSourceNotFound, ref.Path())
		}
		return models.ImageReference{}, fmt.Errorf("failed to stat %s: %w", ref.Path(), err)
	}
	if !info.Mode().IsRegular() {
		return models.ImageReference{}, fmt.Errorf("%w: %s is not a regular file", models.ErrInvalidReference, ref.Path())
	}
	if !is.ValidateImageFormat(filepath.Ext(ref.Path())) {
		return models.ImageReference{}, fmt.Errorf("%w: unsupported format %q", models.ErrInvalidReference, filepath.Ext(ref.Path()))
	}

	if is.decoder != nil {
		if _, err := is.decoder.Decode(ctx, ref.Path(), probeSide); err != nil {
			return models.ImageReference{}, fmt.Errorf("%w: %s does not decode: %w", models.ErrInvalidReference, ref.Path(), err)
		}
	}

	added, err := is.repository.Add(ref)
	if err != nil {
		return models.ImageReference{}, err
	}

	is.logger.Info(imageComponent, "image imported", map[string]interface{}{
		"path":  ref.Path(),
		"added": added,
		"size":  info.Size(),
	})
	return ref, nil
}

// Preview decodes a thumbnail no larger than maxSide on either axis
func (is *ImageService) Preview(ctx context.Context, ref models.ImageReference, maxSide int) (image.Image, error) {
	if is.decoder == nil {
		return nil, fmt.Errorf("no image decoder configured")
	}
	start := time.Now()
	path := is.Resolve(ref)

	img, err := is.decoder.Decode(ctx, path, maxSide)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	is.logger.Debug(imageComponent, "preview decoded", map[string]interface{}{
		"path":        path,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return img, nil
}

// Resolve returns the file a reference reads from
func (is *ImageService) Resolve(ref models.ImageReference) string {
	return ref.Source(is.assetsDir)
}

// Exists reports whether the reference currently resolves to a file
func (is *ImageService) Exists(ref models.ImageReference) bool {
	info, err := os.Stat(is.Resolve(ref))
	return err == nil && info.Mode().IsRegular()
}

// ValidateImageFormat checks if a file extension is supported
func (is *ImageService) ValidateImageFormat(ext string) bool {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	for _, f := range is.GetSupportedFormats() {
		if f == ext {
			return true
		}
	}
	return false
}

// GetSupportedFormats returns list of supported image formats
func (is *ImageService) GetSupportedFormats() []string {
	return []string{"jpeg", "jpg", "png", "bmp", "tiff", "tif", "webp"}
}
