package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// StatusBar displays application status and information
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	resultLabel *widget.Label
	assetsLabel *widget.Label
}

// NewStatusBar creates a new status bar component
func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel("Ready")
	sb.resultLabel = widget.NewLabel("")
	sb.assetsLabel = widget.NewLabel("")
	sb.assetsLabel.Truncation = fyne.TextTruncateEllipsis
}

func (sb *StatusBar) buildLayout() {
	sb.container = container.NewHBox(
		sb.statusLabel,
		widget.NewSeparator(),
		sb.resultLabel,
		layout.NewSpacer(),
		sb.assetsLabel,
	)
}

// SetStatus updates the main status message
func (sb *StatusBar) SetStatus(status string) {
	fyne.Do(func() {
		sb.statusLabel.SetText(status)
	})
}

// GetStatus returns the current status message
func (sb *StatusBar) GetStatus() string {
	return sb.statusLabel.Text
}

// SetLastResult shows the summary of the most recent batch
func (sb *StatusBar) SetLastResult(summary string) {
	fyne.Do(func() {
		sb.resultLabel.SetText(summary)
	})
}

// SetAssetsDir shows where relative references resolve
func (sb *StatusBar) SetAssetsDir(dir string) {
	fyne.Do(func() {
		sb.assetsLabel.SetText(fmt.Sprintf("Assets: %s", dir))
	})
}

// GetContainer returns the status bar container
func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}

func pluralImages(n int) string {
	switch n {
	case 0:
		return "No images"
	case 1:
		return "1 image"
	default:
		return fmt.Sprintf("%d images", n)
	}
}
