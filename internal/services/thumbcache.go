package services

import (
	"context"
	"fmt"
	"image"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedDecoder memoises thumbnails keyed by path, size and file identity so a
// modified or replaced file is decoded again.
type CachedDecoder struct {
	inner Decoder
	cache *lru.Cache[string, image.Image]
}

func NewCachedDecoder(inner Decoder, size int) (*CachedDecoder, error) {
	cache, err := lru.New[string, image.Image](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create thumbnail cache: %w", err)
	}
	return &CachedDecoder{inner: inner, cache: cache}, nil
}

func (c *CachedDecoder) Decode(ctx context.Context, path string, maxSide int) (image.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s|%d|%d|%d", path, maxSide, info.Size(), info.ModTime().UnixNano())

	if img, ok := c.cache.Get(key); ok {
		return img, nil
	}
	img, err := c.inner.Decode(ctx, path, maxSide)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, img)
	return img, nil
}

// Purge drops every cached thumbnail
func (c *CachedDecoder) Purge() {
	c.cache.Purge()
}

func (c *CachedDecoder) Len() int {
	return c.cache.Len()
}
