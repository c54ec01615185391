package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Toolbar represents the main application toolbar
type Toolbar struct {
	container     *fyne.Container
	selectButton  *widget.Button
	importButton  *widget.Button
	refreshButton *widget.Button
	countLabel    *widget.Label

	// Event handlers
	selectHandler  func()
	importHandler  func()
	refreshHandler func()
}

// NewToolbar creates a new toolbar component
func NewToolbar() *Toolbar {
	toolbar := &Toolbar{}
	toolbar.createComponents()
	toolbar.buildLayout()
	toolbar.setupEventHandlers()
	return toolbar
}

func (t *Toolbar) createComponents() {
	t.selectButton = widget.NewButtonWithIcon("Select Images", theme.ListIcon(), nil)
	t.selectButton.Importance = widget.HighImportance

	t.importButton = widget.NewButtonWithIcon("Import Image", theme.FolderOpenIcon(), nil)
	t.importButton.Importance = widget.MediumImportance

	t.refreshButton = widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), nil)

	t.countLabel = widget.NewLabel("No images")
}

func (t *Toolbar) buildLayout() {
	actionSection := container.NewHBox(
		t.selectButton,
		widget.NewSeparator(),
		t.importButton,
		t.refreshButton,
	)

	t.container = container.NewBorder(
		nil, nil,
		actionSection,
		t.countLabel,
	)
}

func (t *Toolbar) setupEventHandlers() {
	t.selectButton.OnTapped = func() {
		if t.selectHandler != nil {
			t.selectHandler()
		}
	}

	t.importButton.OnTapped = func() {
		if t.importHandler != nil {
			t.importHandler()
		}
	}

	t.refreshButton.OnTapped = func() {
		if t.refreshHandler != nil {
			t.refreshHandler()
		}
	}
}

// GetContainer returns the toolbar container
func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}

// SetSelectHandler sets the handler for the image selector button
func (t *Toolbar) SetSelectHandler(handler func()) {
	t.selectHandler = handler
}

// SetImportHandler sets the handler for the import button
func (t *Toolbar) SetImportHandler(handler func()) {
	t.importHandler = handler
}

// SetRefreshHandler sets the handler for the refresh button
func (t *Toolbar) SetRefreshHandler(handler func()) {
	t.refreshHandler = handler
}

// SetCandidateCount updates the image count shown on the right
func (t *Toolbar) SetCandidateCount(count int) {
	fyne.Do(func() {
		t.countLabel.SetText(pluralImages(count))
		if count == 0 {
			t.selectButton.Disable()
		} else {
			t.selectButton.Enable()
		}
	})
}

// SetBusy disables the toolbar while a confirmation is outstanding
func (t *Toolbar) SetBusy(busy bool) {
	fyne.Do(func() {
		if busy {
			t.selectButton.Disable()
			t.importButton.Disable()
			return
		}
		t.selectButton.Enable()
		t.importButton.Enable()
	})
}
