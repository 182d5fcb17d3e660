package prism

import "sync/atomic"

// Disposable is an idempotent cancellation handle. Disposing releases
// whatever resources the handle was created to guard; subsequent calls are
// no-ops.
type Disposable struct {
	disposed atomic.Bool
	action   func()
}

// NewDisposable creates a handle that runs action on the first Dispose.
// A nil action yields a handle that only tracks its disposed state.
func NewDisposable(action func()) *Disposable {
	return &Disposable{action: action}
}

// disposedHandle returns a handle that is already disposed.
func disposedHandle() *Disposable {
	d := &Disposable{}
	d.disposed.Store(true)
	return d
}

// Dispose runs the action exactly once.
func (d *Disposable) Dispose() {
	if d.disposed.CompareAndSwap(false, true) {
		if d.action != nil {
			d.action()
			d.action = nil
		}
	}
}

// IsDisposed reports whether Dispose has been called.
func (d *Disposable) IsDisposed() bool {
	return d.disposed.Load()
}
