// Package preview decodes image files into bounded thumbnails with OpenCV.
package preview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"

	"image-selector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Decoder implements services.Decoder on top of gocv
type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// OpenMats reports native Mats that have not been released yet
func (d *Decoder) OpenMats() int64 {
	return safe.OpenMats()
}

// Decode reads path and scales it down, preserving aspect ratio, so neither side
// exceeds maxSide. A non-positive maxSide returns the full image.
func (d *Decoder) Decode(ctx context.Context, path string, maxSide int) (image.Image, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// IMRead reports missing files as an empty Mat, so stat first to keep
	// fs.ErrNotExist in the chain.
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	src, err := safe.Wrap(gocv.IMRead(path, gocv.IMReadColor))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	defer src.Close()

	scaled, err := scaleToFit(src, maxSide)
	if err != nil {
		return nil, err
	}
	if scaled != src {
		defer scaled.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img, err := scaled.GetMat().ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s to image: %w", path, err)
	}
	return img, nil
}

func scaleToFit(src *safe.Mat, maxSide int) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "thumbnail resize"); err != nil {
		return nil, err
	}

	w, h := src.Cols(), src.Rows()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return src, nil
	}

	newW, newH := fitWithin(w, h, maxSide)
	dst := gocv.NewMat()
	gocv.Resize(src.GetMat(), &dst, image.Pt(newW, newH), 0, 0, gocv.InterpolationArea)

	resized, err := safe.Wrap(dst)
	if err != nil {
		return nil, fmt.Errorf("resize to %dx%d failed: %w", newW, newH, err)
	}
	return resized, nil
}

// fitWithin returns dimensions no larger than maxSide on either axis, keeping
// the aspect ratio and never collapsing below one pixel.
func fitWithin(w, h, maxSide int) (int, int) {
	if w >= h {
		nh := h * maxSide / w
		if nh < 1 {
			nh = 1
		}
		return maxSide, nh
	}
	nw := w * maxSide / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxSide
}
