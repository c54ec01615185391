package views

import (
	"fmt"
	"image"
	"strings"

	"image-selector/internal/models"
	"image-selector/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// MainView represents the main application window using MVC pattern
type MainView struct {
	window        fyne.Window
	mainContainer *fyne.Container
	toolbar       *components.Toolbar
	imageDisplay  *components.ImageDisplay
	statusBar     *components.StatusBar
	selector      *components.Selector

	importExtensions []string

	// Event handlers - connected to controller
	selectImagesHandler func()
	importImageHandler  func()
	refreshHandler      func()
	previewHandler      func(models.ImageReference)
}

// NewMainView creates a new main view
func NewMainView(window fyne.Window) *MainView {
	view := &MainView{
		window: window,
	}

	view.initializeComponents()
	view.buildLayout()
	view.setupEventHandlers()

	return view
}

func (mv *MainView) initializeComponents() {
	mv.toolbar = components.NewToolbar()
	mv.imageDisplay = components.NewImageDisplay()
	mv.statusBar = components.NewStatusBar()
}

func (mv *MainView) buildLayout() {
	mv.mainContainer = container.NewBorder(
		mv.toolbar.GetContainer(),
		mv.statusBar.GetContainer(),
		nil,
		nil,
		mv.imageDisplay.GetContainer(),
	)

	mv.window.SetContent(mv.mainContainer)
}

func (mv *MainView) setupEventHandlers() {
	mv.toolbar.SetSelectHandler(func() {
		if mv.selectImagesHandler != nil {
			mv.selectImagesHandler()
		}
	})

	mv.toolbar.SetImportHandler(func() {
		if mv.importImageHandler != nil {
			mv.importImageHandler()
		}
	})

	mv.toolbar.SetRefreshHandler(func() {
		if mv.refreshHandler != nil {
			mv.refreshHandler()
		}
	})

	mv.imageDisplay.SetSelectHandler(func(ref models.ImageReference) {
		if mv.previewHandler != nil {
			mv.previewHandler(ref)
		}
	})
}

// Event handler setters - called by controller

// SetSelectImagesHandler sets the handler for opening the selector
func (mv *MainView) SetSelectImagesHandler(handler func()) {
	mv.selectImagesHandler = handler
}

// SetImportImageHandler sets the handler for importing an external image
func (mv *MainView) SetImportImageHandler(handler func()) {
	mv.importImageHandler = handler
}

// SetRefreshHandler sets the handler for reloading the candidate list
func (mv *MainView) SetRefreshHandler(handler func()) {
	mv.refreshHandler = handler
}

// SetPreviewHandler sets the handler for gallery selection
func (mv *MainView) SetPreviewHandler(handler func(models.ImageReference)) {
	mv.previewHandler = handler
}

// SetImportExtensions restricts the file picker to the given extensions
func (mv *MainView) SetImportExtensions(formats []string) {
	exts := make([]string, 0, len(formats))
	for _, f := range formats {
		exts = append(exts, "."+strings.TrimPrefix(f, "."))
	}
	mv.importExtensions = exts
}

// View update methods - called by controller

// SetCandidates refreshes the gallery and the image count
func (mv *MainView) SetCandidates(refs []models.ImageReference) {
	mv.imageDisplay.SetCandidates(refs)
	mv.toolbar.SetCandidateCount(len(refs))
}

// SetPreview shows a decoded image in the preview pane
func (mv *MainView) SetPreview(img image.Image, caption string) {
	mv.imageDisplay.SetPreview(img, caption)
}

// UpdateStatus updates the status bar message
func (mv *MainView) UpdateStatus(status string) {
	mv.statusBar.SetStatus(status)
}

// SetAssetsDir shows the assets directory in the status bar
func (mv *MainView) SetAssetsDir(dir string) {
	mv.statusBar.SetAssetsDir(dir)
}

// SetBusy locks the toolbar while a confirmation is outstanding
func (mv *MainView) SetBusy(busy bool) {
	mv.toolbar.SetBusy(busy)
}

// ShowSelector opens the image selector popup, replacing any open one
func (mv *MainView) ShowSelector(items []components.SelectorItem, handlers components.SelectorHandlers) {
	fyne.Do(func() {
		if mv.selector != nil {
			mv.selector.Hide()
		}
		mv.selector = components.NewSelector(items, handlers)
		mv.selector.Show(mv.window)
	})
}

// CloseSelector dismisses the selector popup
func (mv *MainView) CloseSelector() {
	fyne.Do(func() {
		if mv.selector != nil {
			mv.selector.Hide()
			mv.selector = nil
		}
	})
}

// ShowConfirm asks a yes/no question. Destructive prompts get a danger styled
// confirm button.
func (mv *MainView) ShowConfirm(title, message string, destructive bool, callback func(bool)) {
	fyne.Do(func() {
		confirmText := "Yes"
		if destructive {
			confirmText = "Delete"
		}
		d := dialog.NewConfirm(title, message, callback, mv.window)
		d.SetConfirmText(confirmText)
		d.SetDismissText("Cancel")
		if destructive {
			d.SetConfirmImportance(widget.DangerImportance)
		}
		d.Show()
	})
}

// ShowSummary reports the outcome of a batch as a single notification
func (mv *MainView) ShowSummary(result models.BatchResult) {
	title, message := summaryDialog(result)
	mv.statusBar.SetLastResult(result.Summary())
	fyne.Do(func() {
		dialog.ShowInformation(title, message, mv.window)
	})
}

// summaryDialog holds only the aggregate; per-item failures go to the log
func summaryDialog(result models.BatchResult) (title, message string) {
	if result.Failed == 0 {
		return result.Kind.Title() + " Complete", result.Summary()
	}
	return result.Kind.Title() + " Finished With Errors", result.Summary() + "\nSee the log for the skipped images."
}

// ShowError displays an error dialog
func (mv *MainView) ShowError(title string, err error) {
	fyne.Do(func() {
		dialog.ShowError(fmt.Errorf("%s: %w", title, err), mv.window)
	})
}

// ShowInfo displays an information dialog
func (mv *MainView) ShowInfo(title, message string) {
	fyne.Do(func() {
		dialog.ShowInformation(title, message, mv.window)
	})
}

// ShowFileOpen shows the file picker. callback receives the chosen absolute
// path, or an empty path when the user cancels.
func (mv *MainView) ShowFileOpen(callback func(path string, err error)) {
	fyne.Do(func() {
		fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil {
				callback("", err)
				return
			}
			if reader == nil {
				callback("", nil)
				return
			}
			path := reader.URI().Path()
			reader.Close()
			callback(path, nil)
		}, mv.window)
		if len(mv.importExtensions) > 0 {
			fd.SetFilter(storage.NewExtensionFileFilter(mv.importExtensions))
		}
		fd.Resize(fyne.NewSize(800, 600))
		fd.Show()
	})
}

// GetWindow returns the main window
func (mv *MainView) GetWindow() fyne.Window {
	return mv.window
}
