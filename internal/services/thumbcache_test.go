package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedDecoderReusesUntilFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img1.jpeg")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	inner := &fakeDecoder{}
	cached, err := NewCachedDecoder(inner, 8)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = cached.Decode(ctx, path, 64)
	require.NoError(t, err)
	_, err = cached.Decode(ctx, path, 64)
	require.NoError(t, err)
	assert.Len(t, inner.calls, 1)

	_, err = cached.Decode(ctx, path, 128)
	require.NoError(t, err)
	assert.Len(t, inner.calls, 2, "different size is a different entry")

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.WriteFile(path, []byte("version two"), 0o644))
	require.NoError(t, os.Chtimes(path, later, later))
	_, err = cached.Decode(ctx, path, 64)
	require.NoError(t, err)
	assert.Len(t, inner.calls, 3)

	cached.Purge()
	assert.Zero(t, cached.Len())
}

func TestCachedDecoderMissingFile(t *testing.T) {
	cached, err := NewCachedDecoder(&fakeDecoder{}, 4)
	require.NoError(t, err)

	_, err = cached.Decode(context.Background(), filepath.Join(t.TempDir(), "nope.jpeg"), 64)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
