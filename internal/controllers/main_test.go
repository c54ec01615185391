package controllers

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"image-selector/internal/models"
	"image-selector/internal/services"
	"image-selector/internal/views/components"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDecoder struct{}

func (stubDecoder) Decode(ctx context.Context, path string, maxSide int) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return image.NewRGBA(image.Rect(0, 0, maxSide, maxSide)), nil
}

type confirmCall struct {
	title       string
	message     string
	destructive bool
	callback    func(bool)
}

type fakeView struct {
	candidates []models.ImageReference
	preview    image.Image
	caption    string
	status     string
	busy       bool
	items      []components.SelectorItem
	handlers   components.SelectorHandlers
	closed     int
	confirms   []confirmCall
	summaries  []models.BatchResult
	errors     []error
	pickPath   string
}

func (f *fakeView) SetCandidates(refs []models.ImageReference) { f.candidates = refs }
func (f *fakeView) SetPreview(img image.Image, caption string) {
	f.preview, f.caption = img, caption
}
func (f *fakeView) UpdateStatus(status string) { f.status = status }
func (f *fakeView) SetBusy(busy bool)          { f.busy = busy }
func (f *fakeView) ShowSelector(items []components.SelectorItem, h components.SelectorHandlers) {
	f.items, f.handlers = items, h
}
func (f *fakeView) CloseSelector() { f.closed++ }
func (f *fakeView) ShowConfirm(title, message string, destructive bool, cb func(bool)) {
	f.confirms = append(f.confirms, confirmCall{title, message, destructive, cb})
}
func (f *fakeView) ShowSummary(r models.BatchResult)    { f.summaries = append(f.summaries, r) }
func (f *fakeView) ShowError(title string, err error)   { f.errors = append(f.errors, err) }
func (f *fakeView) ShowFileOpen(cb func(string, error)) { cb(f.pickPath, nil) }

func (f *fakeView) lastConfirm(t *testing.T) confirmCall {
	t.Helper()
	require.NotEmpty(t, f.confirms)
	return f.confirms[len(f.confirms)-1]
}

func newController(t *testing.T) (*MainController, *fakeView, string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"img1", "img2", "img3"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".jpeg"), []byte(name), 0o644))
	}
	repo := models.NewImageRepository(nil)
	op, err := services.NewBatchOperator(dir, []string{"img1", "img2", "img3"}, repo, nil)
	require.NoError(t, err)
	images := services.NewImageService(stubDecoder{}, repo, dir, nil)

	mc := NewMainController(op, images, nil, Options{ThumbnailSize: 16, PreviewSize: 64})
	view := &fakeView{}
	mc.SetView(view)
	return mc, view, dir
}

func TestOpenSelectorStartsEmpty(t *testing.T) {
	mc, view, _ := newController(t)

	mc.OpenSelector()

	require.Len(t, view.items, 3)
	for _, item := range view.items {
		assert.NotNil(t, item.Thumbnail)
	}
	require.NotNil(t, mc.Selection())
	assert.Zero(t, mc.Selection().IncludedCount())
}

func TestDeleteFlowRemovesCheckedImage(t *testing.T) {
	mc, view, dir := newController(t)
	var finished []models.BatchResult
	mc.OnEvent(EventBatchFinished, func(data interface{}) {
		finished = append(finished, data.(models.BatchResult))
	})

	mc.OpenSelector()
	view.handlers.OnToggle(models.MustReference("img2"), true)
	view.handlers.OnDelete()

	call := view.lastConfirm(t)
	assert.True(t, call.destructive)
	assert.Equal(t, "Delete Images", call.title)
	assert.True(t, view.busy)
	assert.NoFileExists(t, filepath.Join(dir, "copied_img2.jpeg"))
	assert.FileExists(t, filepath.Join(dir, "img2.jpeg"), "nothing happens before confirmation")

	call.callback(true)

	assert.NoFileExists(t, filepath.Join(dir, "img2.jpeg"))
	assert.FileExists(t, filepath.Join(dir, "img1.jpeg"))
	assert.FileExists(t, filepath.Join(dir, "img3.jpeg"))
	require.Len(t, view.summaries, 1)
	assert.Equal(t, 1, view.summaries[0].Succeeded)
	assert.Equal(t, 1, view.closed)
	assert.False(t, view.busy)
	assert.Len(t, finished, 1)
	assert.Empty(t, view.errors)
}

func TestCopyFlowCancelled(t *testing.T) {
	mc, view, dir := newController(t)

	mc.OpenSelector()
	view.handlers.OnToggle(models.MustReference("img1"), true)
	view.handlers.OnCopy()

	call := view.lastConfirm(t)
	assert.False(t, call.destructive)
	assert.Equal(t, "Copy 1 image?", call.message)

	call.callback(false)

	assert.NoFileExists(t, filepath.Join(dir, "copied_img1.jpeg"))
	assert.Empty(t, view.summaries)
	assert.Equal(t, "Copy cancelled", view.status)
	assert.False(t, view.busy)

	// The selection survives a cancel so the user can try again.
	view.handlers.OnCopy()
	view.lastConfirm(t).callback(true)
	assert.FileExists(t, filepath.Join(dir, "copied_img1.jpeg"))
}

func TestSecondRequestWhileConfirmingShowsError(t *testing.T) {
	mc, view, _ := newController(t)

	mc.OpenSelector()
	view.handlers.OnCopy()
	view.handlers.OnDelete()

	assert.Len(t, view.confirms, 1)
	require.Len(t, view.errors, 1)
	assert.ErrorIs(t, view.errors[0], services.ErrActionPending)
}

func TestClosedSelectorRequestsNothing(t *testing.T) {
	mc, view, dir := newController(t)

	mc.OpenSelector()
	view.handlers.OnToggle(models.MustReference("img1"), true)
	view.handlers.OnClosed()
	assert.Nil(t, mc.Selection())

	mc.RequestDelete()
	view.lastConfirm(t).callback(true)

	require.Len(t, view.summaries, 1)
	assert.Zero(t, view.summaries[0].Total())
	assert.FileExists(t, filepath.Join(dir, "img1.jpeg"))
}

func TestImportAddsCandidate(t *testing.T) {
	mc, view, _ := newController(t)
	external := filepath.Join(t.TempDir(), "pet.png")
	require.NoError(t, os.WriteFile(external, []byte("png"), 0o644))

	view.pickPath = external
	mc.ImportImage()

	require.Len(t, view.candidates, 4)
	assert.Equal(t, models.MustReference(external), view.candidates[3])
	assert.Equal(t, "Imported pet.png", view.status)
}

func TestImportRejectsMissingFile(t *testing.T) {
	mc, view, _ := newController(t)

	mc.ImportPath(filepath.Join(t.TempDir(), "missing.png"))

	require.Len(t, view.errors, 1)
	assert.ErrorIs(t, view.errors[0], models.ErrSourceNotFound)
	assert.Nil(t, view.candidates)
}

func TestPreview(t *testing.T) {
	mc, view, _ := newController(t)

	mc.Preview(models.MustReference("img1"))
	require.NotNil(t, view.preview)
	assert.Equal(t, 64, view.preview.Bounds().Dx())
	assert.Equal(t, "img1", view.caption)

	mc.Preview(models.MustReference("nope"))
	assert.Nil(t, view.preview)
	assert.Equal(t, "nope (unavailable)", view.caption)
}
