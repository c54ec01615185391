package app

import (
	"fmt"

	"image-selector/internal/controllers"
	"image-selector/internal/core"
	"image-selector/internal/views"
	"image-selector/internal/watcher"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

const (
	AppName         = "Image Selector"
	AppID           = "com.imageselector.desktop"
	AppVersion      = "1.0.0"
	MinWindowWidth  = 960
	MinWindowHeight = 640
)

// Application owns the window, the controller and the assets watcher
type Application struct {
	fyneApp    fyne.App
	window     fyne.Window
	services   *core.Services
	view       *views.MainView
	controller *controllers.MainController
	watcher    *watcher.AssetsWatcher
	lifecycle  *Lifecycle
}

// NewApplication builds the desktop application over already wired services
func NewApplication(svc *core.Services) (*Application, error) {
	if svc == nil {
		return nil, fmt.Errorf("services are required")
	}
	log := svc.Logger

	fyneApp := app.NewWithID(AppID)
	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(MinWindowWidth, MinWindowHeight))
	window.CenterOnScreen()
	window.SetMaster()

	log.Info("Application", "starting application", map[string]interface{}{
		"version":    AppVersion,
		"assets_dir": svc.AssetsDir,
	})

	view := views.NewMainView(window)
	controller := controllers.NewMainController(svc.Operator, svc.Images, log, controllers.Options{
		ThumbnailSize: svc.Config.ThumbnailSize,
		PreviewSize:   svc.Config.PreviewSize,
	})
	controller.SetMainView(view)
	controller.OnEvent(controllers.EventBatchFinished, func(data interface{}) {
		log.Debug("Application", "batch event", map[string]interface{}{"result": fmt.Sprint(data)})
	})

	a := &Application{
		fyneApp:    fyneApp,
		window:     window,
		services:   svc,
		view:       view,
		controller: controller,
	}

	if svc.Config.WatchAssets {
		w, err := watcher.New(svc.AssetsDir, watcher.DefaultDebounce, log, controller.Refresh)
		if err != nil {
			log.Warning("Application", "assets watcher disabled", map[string]interface{}{"error": err.Error()})
		} else {
			a.watcher = w
		}
	}

	a.lifecycle = NewLifecycle(svc, a.watcher)
	controller.Refresh()

	log.Info("Application", "initialization complete", nil)
	return a, nil
}

// Run shows the window and blocks until it closes
func (a *Application) Run() error {
	log := a.services.Logger

	a.window.SetCloseIntercept(func() {
		log.Info("Application", "shutdown requested", nil)
		a.lifecycle.RequestClose(a.view, a.services.Operator, func() {
			a.lifecycle.Shutdown()
			a.window.Close()
		})
	})

	a.lifecycle.ListenForSignals(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	a.window.Show()
	log.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	a.lifecycle.Shutdown()
	return nil
}

// Run builds and runs the desktop application
func Run(svc *core.Services) error {
	a, err := NewApplication(svc)
	if err != nil {
		return err
	}
	return a.Run()
}
