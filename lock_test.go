package prism

import (
	"sync"
	"testing"
)

func TestRecursiveMutex_Reentrant(t *testing.T) {
	m := newRecursiveMutex()

	m.Lock()
	m.Lock()
	m.Lock()
	m.Unlock()
	m.Unlock()
	m.Unlock()
}

func TestRecursiveMutex_MutualExclusion(t *testing.T) {
	m := newRecursiveMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Lock()
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()

	if counter != 8000 {
		t.Errorf("expected 8000, got %d", counter)
	}
}

func TestRecursiveMutex_ReleasedAtOutermostUnlock(t *testing.T) {
	m := newRecursiveMutex()
	m.Lock()
	m.Lock()
	m.Unlock()

	acquired := make(chan struct{})
	go func() {
		m.Lock()
		close(acquired)
		m.Unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("lock acquired while still held by outer acquisition")
	default:
	}

	m.Unlock()
	<-acquired
}

func TestRecursiveMutex_UnlockByNonOwnerPanics(t *testing.T) {
	m := newRecursiveMutex()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unlock of unheld mutex")
		}
	}()
	m.Unlock()
}
