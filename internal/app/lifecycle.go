package app

import (
	"image-selector/internal/core"
	"image-selector/internal/logger"
	"image-selector/internal/models"
	"image-selector/internal/shutdown"
	"image-selector/internal/watcher"
)

type closeConfirmer interface {
	ShowConfirm(title, message string, destructive bool, callback func(bool))
}

type pendingSource interface {
	Pending() (models.PendingAction, bool)
	Cancel(action models.PendingAction) error
}

// Lifecycle stops background work when the window closes
type Lifecycle struct {
	shutdown *shutdown.Manager
	logger   logger.Logger
}

func NewLifecycle(svc *core.Services, w *watcher.AssetsWatcher) *Lifecycle {
	m := shutdown.NewManager(svc.Logger)
	m.Register("services", func() error {
		svc.Close()
		return nil
	})
	if w != nil {
		m.Register("assets watcher", w.Close)
	}
	return &Lifecycle{
		shutdown: m,
		logger:   svc.Logger,
	}
}

// ListenForSignals quits via quit on SIGINT or SIGTERM
func (l *Lifecycle) ListenForSignals(quit func()) {
	l.shutdown.Listen(quit)
}

// RequestClose closes immediately when nothing awaits confirmation. Otherwise
// it asks first and discards the pending action if the user agrees.
func (l *Lifecycle) RequestClose(view closeConfirmer, ops pendingSource, closeFn func()) {
	pending, ok := ops.Pending()
	if !ok {
		closeFn()
		return
	}

	message := "A " + pending.Kind.String() + " is waiting for confirmation. Quit without running it?"
	view.ShowConfirm("Quit", message, false, func(quit bool) {
		if !quit {
			return
		}
		if err := ops.Cancel(pending); err != nil {
			l.logger.Warning("Lifecycle", "pending action already resolved", map[string]interface{}{"error": err.Error()})
		}
		closeFn()
	})
}

// Shutdown is safe to call more than once
func (l *Lifecycle) Shutdown() {
	l.shutdown.Shutdown()
}
