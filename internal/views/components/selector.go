package components

import (
	"image"

	"image-selector/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	ThumbnailSize    = 120
	SelectorWidth    = 560
	SelectorHeight   = 460
	selectorColumns  = 3
	missingThumbText = "Unavailable"
)

// SelectorItem is one candidate shown in the selector with its thumbnail.
// Thumbnail is nil when the image could not be decoded.
type SelectorItem struct {
	Ref       models.ImageReference
	Thumbnail image.Image
}

// SelectorHandlers receives the selector's events
type SelectorHandlers struct {
	OnToggle func(ref models.ImageReference, included bool)
	OnCopy   func()
	OnDelete func()
	OnClosed func()
}

// Selector is the popup listing every candidate with an include checkbox and
// the bulk copy and delete actions
type Selector struct {
	content      *fyne.Container
	grid         *fyne.Container
	selectAll    *widget.Check
	copyButton   *widget.Button
	deleteButton *widget.Button
	countLabel   *widget.Label
	dialog       dialog.Dialog

	items    []SelectorItem
	checks   map[string]*widget.Check
	included map[string]bool
	handlers SelectorHandlers

	// bulk is set while Select all fans out, syncing suppresses that fan-out
	// when the box only mirrors the individual checkboxes
	bulk    bool
	syncing bool
}

// NewSelector builds the selector content for items. Nothing is included
// initially.
func NewSelector(items []SelectorItem, handlers SelectorHandlers) *Selector {
	s := &Selector{
		items:    append([]SelectorItem(nil), items...),
		checks:   make(map[string]*widget.Check, len(items)),
		included: make(map[string]bool, len(items)),
		handlers: handlers,
	}
	s.createComponents()
	s.buildLayout()
	s.updateCount()
	return s
}

func (s *Selector) createComponents() {
	tiles := make([]fyne.CanvasObject, 0, len(s.items))
	for _, item := range s.items {
		tiles = append(tiles, s.newTile(item))
	}
	s.grid = container.NewGridWithColumns(selectorColumns, tiles...)

	s.selectAll = widget.NewCheck("Select all", func(checked bool) {
		if s.syncing {
			return
		}
		s.bulk = true
		for _, item := range s.items {
			s.checks[item.Ref.Key()].SetChecked(checked)
		}
		s.bulk = false
		s.updateCount()
	})

	s.copyButton = widget.NewButtonWithIcon("Copy Selected", theme.ContentCopyIcon(), func() {
		if s.handlers.OnCopy != nil {
			s.handlers.OnCopy()
		}
	})
	s.copyButton.Importance = widget.HighImportance

	s.deleteButton = widget.NewButtonWithIcon("Delete Selected", theme.DeleteIcon(), func() {
		if s.handlers.OnDelete != nil {
			s.handlers.OnDelete()
		}
	})
	s.deleteButton.Importance = widget.DangerImportance

	s.countLabel = widget.NewLabel("")
}

// newTile takes item by value so each checkbox reports its own reference
func (s *Selector) newTile(item SelectorItem) fyne.CanvasObject {
	ref := item.Ref
	check := widget.NewCheck(ref.DisplayName(), func(checked bool) {
		s.included[ref.Key()] = checked
		s.updateCount()
		if s.handlers.OnToggle != nil {
			s.handlers.OnToggle(ref, checked)
		}
	})
	s.checks[ref.Key()] = check

	var thumb fyne.CanvasObject
	if item.Thumbnail != nil {
		img := canvas.NewImageFromImage(item.Thumbnail)
		img.FillMode = canvas.ImageFillContain
		img.ScaleMode = canvas.ImageScaleFastest
		img.SetMinSize(fyne.NewSize(ThumbnailSize, ThumbnailSize))
		thumb = img
	} else {
		placeholder := widget.NewLabel(missingThumbText)
		placeholder.Alignment = fyne.TextAlignCenter
		thumb = container.NewGridWrap(fyne.NewSize(ThumbnailSize, ThumbnailSize), container.NewCenter(placeholder))
	}

	return container.NewVBox(thumb, check)
}

func (s *Selector) buildLayout() {
	scroll := container.NewVScroll(s.grid)
	scroll.SetMinSize(fyne.NewSize(SelectorWidth, SelectorHeight))

	actions := container.NewHBox(s.copyButton, s.deleteButton)

	s.content = container.NewBorder(
		container.NewBorder(nil, nil, s.selectAll, s.countLabel),
		actions,
		nil, nil,
		scroll,
	)
}

func (s *Selector) updateCount() {
	n := 0
	for _, included := range s.included {
		if included {
			n++
		}
	}
	s.countLabel.SetText(pluralImages(n) + " selected")

	if s.bulk || s.selectAll == nil {
		return
	}
	all := len(s.items) > 0 && n == len(s.items)
	if s.selectAll.Checked != all {
		s.syncing = true
		s.selectAll.SetChecked(all)
		s.syncing = false
	}
}

// Content returns the selector body
func (s *Selector) Content() fyne.CanvasObject {
	return s.content
}

// IsChecked reports whether the checkbox for ref is ticked
func (s *Selector) IsChecked(ref models.ImageReference) bool {
	check, ok := s.checks[ref.Key()]
	return ok && check.Checked
}

// Show opens the selector as a popup over parent
func (s *Selector) Show(parent fyne.Window) {
	d := dialog.NewCustom("Select Images", "Close", s.content, parent)
	d.SetOnClosed(func() {
		if s.handlers.OnClosed != nil {
			s.handlers.OnClosed()
		}
	})
	s.dialog = d
	d.Show()
}

// Hide dismisses the popup if it is showing
func (s *Selector) Hide() {
	if s.dialog != nil {
		s.dialog.Hide()
	}
}
