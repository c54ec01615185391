package components

import (
	"image"

	"image-selector/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	GalleryWidth       = 240
	ImageDisplayWidth  = 640
	ImageDisplayHeight = 480
)

// ImageDisplay lists the candidate images and previews the highlighted one
type ImageDisplay struct {
	container    *fyne.Container
	gallery      *widget.List
	previewImage *canvas.Image
	caption      *widget.Label
	split        *container.Split

	candidates    []models.ImageReference
	selectHandler func(models.ImageReference)
}

// NewImageDisplay creates the gallery and preview pane
func NewImageDisplay() *ImageDisplay {
	id := &ImageDisplay{}
	id.createComponents()
	id.buildLayout()
	return id
}

func (id *ImageDisplay) createComponents() {
	id.gallery = widget.NewList(
		func() int { return len(id.candidates) },
		func() fyne.CanvasObject {
			label := widget.NewLabel("image")
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			if i < 0 || i >= len(id.candidates) {
				return
			}
			obj.(*widget.Label).SetText(id.candidates[i].DisplayName())
		},
	)
	id.gallery.OnSelected = func(i widget.ListItemID) {
		if i < 0 || i >= len(id.candidates) || id.selectHandler == nil {
			return
		}
		id.selectHandler(id.candidates[i])
	}

	id.previewImage = canvas.NewImageFromImage(nil)
	id.previewImage.FillMode = canvas.ImageFillContain
	id.previewImage.ScaleMode = canvas.ImageScaleSmooth
	id.previewImage.SetMinSize(fyne.NewSize(ImageDisplayWidth, ImageDisplayHeight))

	id.caption = widget.NewLabel("Select an image to preview")
	id.caption.Alignment = fyne.TextAlignCenter
}

func (id *ImageDisplay) buildLayout() {
	galleryPane := container.NewBorder(
		widget.NewRichTextFromMarkdown("**Images**"),
		nil, nil, nil,
		id.gallery,
	)

	previewPane := container.NewBorder(
		nil,
		id.caption,
		nil, nil,
		id.previewImage,
	)

	id.split = container.NewHSplit(galleryPane, previewPane)
	id.split.SetOffset(float64(GalleryWidth) / float64(GalleryWidth+ImageDisplayWidth))

	id.container = container.NewStack(id.split)
}

// GetContainer returns the display container
func (id *ImageDisplay) GetContainer() *fyne.Container {
	return id.container
}

// SetSelectHandler sets the handler for gallery selection
func (id *ImageDisplay) SetSelectHandler(handler func(models.ImageReference)) {
	id.selectHandler = handler
}

// SetCandidates replaces the gallery contents
func (id *ImageDisplay) SetCandidates(refs []models.ImageReference) {
	refs = append([]models.ImageReference(nil), refs...)
	fyne.Do(func() {
		id.candidates = refs
		id.gallery.UnselectAll()
		id.gallery.Refresh()
	})
}

// SetPreview shows img with a caption under it
func (id *ImageDisplay) SetPreview(img image.Image, caption string) {
	fyne.Do(func() {
		id.previewImage.Image = img
		id.previewImage.Refresh()
		id.caption.SetText(caption)
	})
}

// ClearPreview removes the current preview
func (id *ImageDisplay) ClearPreview() {
	id.SetPreview(nil, "Select an image to preview")
}
