package controllers

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"image-selector/internal/logger"
	"image-selector/internal/models"
	"image-selector/internal/services"
	"image-selector/internal/views"
	"image-selector/internal/views/components"
)

const (
	controllerComponent = "MainController"

	decodeTimeout = 10 * time.Second
	batchTimeout  = 2 * time.Minute
)

// Events emitted to subscribers
const (
	EventBatchFinished = "batch_finished"
	EventImageImported = "image_imported"
	EventRefreshed     = "candidates_refreshed"
)

// View is the part of the main window the controller drives
type View interface {
	SetCandidates(refs []models.ImageReference)
	SetPreview(img image.Image, caption string)
	UpdateStatus(status string)
	SetBusy(busy bool)
	ShowSelector(items []components.SelectorItem, handlers components.SelectorHandlers)
	CloseSelector()
	ShowConfirm(title, message string, destructive bool, callback func(bool))
	ShowSummary(result models.BatchResult)
	ShowError(title string, err error)
	ShowFileOpen(callback func(path string, err error))
}

// Options sizes the decoded images
type Options struct {
	ThumbnailSize int
	PreviewSize   int
}

// EventHandler represents a function that handles application events
type EventHandler func(data interface{})

// MainController orchestrates the selector, batch operations and imports
type MainController struct {
	operator *services.BatchOperator
	images   *services.ImageService
	logger   logger.Logger
	options  Options

	view View

	mu        sync.Mutex
	selection *models.SelectionSet

	eventHandlers map[string][]EventHandler
	eventMu       sync.RWMutex
}

// NewMainController creates a new main controller
func NewMainController(operator *services.BatchOperator, images *services.ImageService, log logger.Logger, opts Options) *MainController {
	if log == nil {
		log = logger.NewNop()
	}
	if opts.ThumbnailSize <= 0 {
		opts.ThumbnailSize = components.ThumbnailSize
	}
	if opts.PreviewSize <= 0 {
		opts.PreviewSize = components.ImageDisplayWidth
	}
	return &MainController{
		operator:      operator,
		images:        images,
		logger:        log,
		options:       opts,
		eventHandlers: make(map[string][]EventHandler),
	}
}

// SetMainView associates the main window with this controller and connects
// its events
func (mc *MainController) SetMainView(view *views.MainView) {
	mc.SetView(view)

	view.SetSelectImagesHandler(mc.OpenSelector)
	view.SetImportImageHandler(mc.ImportImage)
	view.SetRefreshHandler(mc.Refresh)
	view.SetPreviewHandler(mc.Preview)
	view.SetImportExtensions(mc.images.GetSupportedFormats())
	view.SetAssetsDir(mc.operator.AssetsDir())
}

// SetView sets the view without connecting events
func (mc *MainController) SetView(view View) {
	mc.view = view
}

// OpenSelector shows the selector popup over a fresh selection with nothing
// included
func (mc *MainController) OpenSelector() {
	if pending, ok := mc.operator.Pending(); ok {
		mc.handleError("Select Images", fmt.Errorf("%w: %s", services.ErrActionPending, pending.Kind))
		return
	}

	sel := mc.operator.NewSelection()
	mc.mu.Lock()
	mc.selection = sel
	mc.mu.Unlock()

	mc.view.ShowSelector(mc.selectorItems(sel.Candidates()), components.SelectorHandlers{
		OnToggle: mc.Toggle,
		OnCopy:   mc.RequestCopy,
		OnDelete: mc.RequestDelete,
		OnClosed: mc.selectorClosed,
	})
	mc.view.UpdateStatus(fmt.Sprintf("Choose images (%d available)", sel.Len()))
}

// Toggle records a checkbox change in the open selection
func (mc *MainController) Toggle(ref models.ImageReference, included bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.selection == nil {
		return
	}
	mc.selection.Toggle(ref, included)
}

// RequestCopy asks the user to confirm copying the included images
func (mc *MainController) RequestCopy() {
	mc.request(models.ActionCopy)
}

// RequestDelete asks the user to confirm deleting the included images
func (mc *MainController) RequestDelete() {
	mc.request(models.ActionDelete)
}

func (mc *MainController) request(kind models.ActionKind) {
	mc.mu.Lock()
	sel := mc.selection
	mc.mu.Unlock()
	if sel == nil {
		sel = models.NewSelectionSet(nil)
	}

	var (
		action models.PendingAction
		err    error
	)
	switch kind {
	case models.ActionCopy:
		action, err = mc.operator.RequestCopy(sel)
	case models.ActionDelete:
		action, err = mc.operator.RequestDelete(sel)
	default:
		err = fmt.Errorf("unsupported action %s", kind)
	}
	if err != nil {
		mc.handleError(kind.Title()+" failed", err)
		return
	}

	mc.view.SetBusy(true)
	mc.view.ShowConfirm(kind.Title()+" Images", action.ConfirmMessage(), kind.Destructive(), func(ok bool) {
		if ok {
			mc.confirm(action)
			return
		}
		mc.cancel(action)
	})
}

func (mc *MainController) confirm(action models.PendingAction) {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	result, err := mc.operator.Confirm(ctx, action)
	mc.view.SetBusy(false)
	if err != nil {
		mc.handleError(action.Kind.Title()+" failed", err)
		return
	}

	mc.view.CloseSelector()
	mc.view.ShowSummary(result)
	mc.view.UpdateStatus(result.Summary())
	mc.Refresh()
	mc.emitEvent(EventBatchFinished, result)
}

func (mc *MainController) cancel(action models.PendingAction) {
	mc.view.SetBusy(false)
	if err := mc.operator.Cancel(action); err != nil {
		mc.handleError("Cancel failed", err)
		return
	}
	mc.view.UpdateStatus(action.Kind.Title() + " cancelled")
}

func (mc *MainController) selectorClosed() {
	mc.mu.Lock()
	mc.selection = nil
	mc.mu.Unlock()
}

// Selection returns the open selection, or nil when the selector is closed
func (mc *MainController) Selection() *models.SelectionSet {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.selection
}

// ImportImage lets the user pick an external image and saves its path
func (mc *MainController) ImportImage() {
	mc.view.ShowFileOpen(func(path string, err error) {
		if err != nil {
			mc.handleError("File selection failed", err)
			return
		}
		if path == "" {
			return
		}
		mc.ImportPath(path)
	})
}

// ImportPath validates path and adds it to the saved images
func (mc *MainController) ImportPath(path string) {
	ctx, cancel := context.WithTimeout(context.Background(), decodeTimeout)
	defer cancel()

	mc.view.UpdateStatus("Importing image...")
	ref, err := mc.images.Import(ctx, path)
	if err != nil {
		mc.view.UpdateStatus("Ready")
		mc.handleError("Import failed", err)
		return
	}

	mc.view.UpdateStatus("Imported " + ref.DisplayName())
	mc.Refresh()
	mc.emitEvent(EventImageImported, ref)
}

// Refresh reloads the candidate list into the gallery
func (mc *MainController) Refresh() {
	refs := mc.operator.ListCandidates()
	mc.view.SetCandidates(refs)
	mc.emitEvent(EventRefreshed, len(refs))
}

// Preview decodes ref into the preview pane
func (mc *MainController) Preview(ref models.ImageReference) {
	ctx, cancel := context.WithTimeout(context.Background(), decodeTimeout)
	defer cancel()

	img, err := mc.images.Preview(ctx, ref, mc.options.PreviewSize)
	if err != nil {
		mc.logger.Warning(controllerComponent, "preview unavailable", map[string]interface{}{
			"ref":   ref.String(),
			"error": err.Error(),
		})
		mc.view.SetPreview(nil, ref.DisplayName()+" (unavailable)")
		return
	}
	mc.view.SetPreview(img, ref.DisplayName())
}

func (mc *MainController) selectorItems(refs []models.ImageReference) []components.SelectorItem {
	ctx, cancel := context.WithTimeout(context.Background(), decodeTimeout)
	defer cancel()

	items := make([]components.SelectorItem, 0, len(refs))
	for _, ref := range refs {
		item := components.SelectorItem{Ref: ref}
		if img, err := mc.images.Preview(ctx, ref, mc.options.ThumbnailSize); err == nil {
			item.Thumbnail = img
		} else {
			mc.logger.Debug(controllerComponent, "thumbnail unavailable", map[string]interface{}{
				"ref":   ref.String(),
				"error": err.Error(),
			})
		}
		items = append(items, item)
	}
	return items
}

// OnEvent subscribes handler to an event
func (mc *MainController) OnEvent(event string, handler EventHandler) {
	mc.eventMu.Lock()
	defer mc.eventMu.Unlock()
	mc.eventHandlers[event] = append(mc.eventHandlers[event], handler)
}

func (mc *MainController) emitEvent(event string, data interface{}) {
	mc.eventMu.RLock()
	handlers := append([]EventHandler(nil), mc.eventHandlers[event]...)
	mc.eventMu.RUnlock()

	for _, handler := range handlers {
		handler(data)
	}
}

func (mc *MainController) handleError(title string, err error) {
	mc.logger.Error(controllerComponent, err, map[string]interface{}{"context": title})
	if mc.view != nil {
		mc.view.ShowError(title, err)
	}
}
