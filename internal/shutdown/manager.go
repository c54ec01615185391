// Package shutdown runs registered cleanup steps once, in reverse order, when
// the window closes or the process is signalled.
package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"image-selector/internal/logger"
)

const component = "ShutdownManager"

// DefaultStepTimeout bounds each cleanup step
const DefaultStepTimeout = 5 * time.Second

type step struct {
	name string
	fn   func() error
}

// Manager collects cleanup steps and runs them once
type Manager struct {
	logger      logger.Logger
	stepTimeout time.Duration

	mu    sync.Mutex
	steps []step
	done  chan struct{}
	stop  func()
}

func NewManager(log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	return &Manager{
		logger:      log,
		stepTimeout: DefaultStepTimeout,
		done:        make(chan struct{}),
	}
}

// Register adds a cleanup step. Steps run last registered first.
func (m *Manager) Register(name string, fn func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, step{name: name, fn: fn})
}

// Listen calls onSignal the first time SIGINT or SIGTERM arrives
func (m *Manager) Listen(onSignal func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	m.mu.Lock()
	m.stop = func() { signal.Stop(sigChan) }
	m.mu.Unlock()

	go func() {
		select {
		case sig := <-sigChan:
			m.logger.Info(component, "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			if onSignal != nil {
				onSignal()
			}
		case <-m.done:
		}
	}()
}

// Shutdown runs every step once. Later calls return immediately.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	select {
	case <-m.done:
		m.mu.Unlock()
		return
	default:
		close(m.done)
	}
	steps := m.steps
	m.steps = nil
	if m.stop != nil {
		m.stop()
	}
	m.mu.Unlock()

	m.logger.Info(component, "shutdown sequence initiated", map[string]interface{}{
		"steps": len(steps),
	})

	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		result := make(chan error, 1)
		go func() {
			result <- s.fn()
		}()

		select {
		case err := <-result:
			if err != nil {
				m.logger.Error(component, err, map[string]interface{}{"step": s.name})
				continue
			}
			m.logger.Debug(component, "step completed", map[string]interface{}{"step": s.name})
		case <-time.After(m.stepTimeout):
			m.logger.Warning(component, "step timed out", map[string]interface{}{
				"step":    s.name,
				"timeout": m.stepTimeout.String(),
			})
		}
	}

	m.logger.Info(component, "shutdown sequence completed", nil)
}

// Done is closed once Shutdown starts
func (m *Manager) Done() <-chan struct{} {
	return m.done
}
