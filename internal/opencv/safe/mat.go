package safe

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// Mat owns a gocv.Mat and guarantees it is closed exactly once, either by
// Close or by the finalizer.
type Mat struct {
	mat     gocv.Mat
	isValid int32
	mu      sync.RWMutex
}

var openMats int64

// Wrap takes ownership of mat. Empty Mats are closed and rejected.
func Wrap(mat gocv.Mat) (*Mat, error) {
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("source Mat is empty")
	}
	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		mat.Close()
		return nil, fmt.Errorf("source Mat has invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}

	safeMat := &Mat{
		mat:     mat,
		isValid: 1,
	}
	atomic.AddInt64(&openMats, 1)

	runtime.SetFinalizer(safeMat, (*Mat).finalize)
	return safeMat, nil
}

// OpenMats reports how many wrapped Mats have not been closed yet
func OpenMats() int64 {
	return atomic.LoadInt64(&openMats)
}

func (sm *Mat) IsValid() bool {
	return atomic.LoadInt32(&sm.isValid) == 1
}

func (sm *Mat) Empty() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return true
	}
	return sm.mat.Empty()
}

func (sm *Mat) Rows() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}
	return sm.mat.Rows()
}

func (sm *Mat) Cols() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}
	return sm.mat.Cols()
}

func (sm *Mat) GetMat() gocv.Mat {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.mat
}

func (sm *Mat) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if atomic.CompareAndSwapInt32(&sm.isValid, 1, 0) {
		if !sm.mat.Empty() {
			sm.mat.Close()
		}
		atomic.AddInt64(&openMats, -1)
		runtime.SetFinalizer(sm, nil)
	}
}

// finalize is called by Go's garbage collector as last resort cleanup
func (sm *Mat) finalize() {
	if atomic.LoadInt32(&sm.isValid) == 1 {
		sm.Close()
	}
}
