package prism

import "testing"

func TestDisposable_RunsActionOnce(t *testing.T) {
	count := 0
	d := NewDisposable(func() { count++ })

	if d.IsDisposed() {
		t.Error("expected not disposed")
	}
	d.Dispose()
	d.Dispose()

	if count != 1 {
		t.Errorf("expected action to run once, ran %d times", count)
	}
	if !d.IsDisposed() {
		t.Error("expected disposed")
	}
}

func TestLifetime_OnEndedFiresOnTokenEnd(t *testing.T) {
	l, token := NewLifetime()

	fired := false
	l.OnEnded(func() { fired = true })

	if l.HasEnded() {
		t.Error("expected lifetime not ended")
	}
	token.End()

	if !fired {
		t.Error("expected OnEnded callback")
	}
	if !l.HasEnded() {
		t.Error("expected lifetime ended")
	}
}

func TestLifetime_OnEndedFiresImmediatelyWhenAlreadyEnded(t *testing.T) {
	l, token := NewLifetime()
	token.End()

	fired := false
	l.OnEnded(func() { fired = true })

	if !fired {
		t.Error("expected immediate OnEnded callback")
	}
}

func TestLifetime_TokenEndIdempotent(t *testing.T) {
	l, token := NewLifetime()

	count := 0
	l.OnEnded(func() { count++ })

	token.End()
	token.End()
	token.Dispose()

	if count != 1 {
		t.Errorf("expected 1 callback, got %d", count)
	}
}
