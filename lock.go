package prism

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// goid returns the id of the calling goroutine.
//
// The runtime does not expose goroutine ids directly; the header line of a
// stack dump is the only stable way to recover one. The cost is a small
// fixed-size stack capture per acquisition, acceptable for a lock guarding
// value mutation rather than a hot data path.
func goid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// Header line: "goroutine 123 [running]:"
	fields := bytes.Fields(buf[:n])
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		panic("prism: cannot parse goroutine id: " + err.Error())
	}
	return id
}

// recursiveMutex is a mutual-exclusion lock that may be re-acquired by the
// goroutine already holding it. Each Lock must be paired with an Unlock; the
// lock is released when the outermost acquisition unlocks.
//
// Broadcasts run observer callbacks while the broadcasting goroutine holds
// the value lock, so reads of the same observable from inside a callback
// re-enter here instead of deadlocking.
type recursiveMutex struct {
	mu    sync.Mutex
	cond  *sync.Cond
	owner uint64 // 0 when unowned; goroutine ids start at 1
	depth int
}

func newRecursiveMutex() *recursiveMutex {
	m := &recursiveMutex{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Lock acquires the mutex, blocking while another goroutine holds it.
func (m *recursiveMutex) Lock() {
	id := goid()
	m.mu.Lock()
	for m.owner != 0 && m.owner != id {
		m.cond.Wait()
	}
	m.owner = id
	m.depth++
	m.mu.Unlock()
}

// Unlock releases one acquisition. Unlocking a mutex the caller does not
// hold is a programmer error and panics.
func (m *recursiveMutex) Unlock() {
	id := goid()
	m.mu.Lock()
	if m.owner != id || m.depth == 0 {
		m.mu.Unlock()
		panic("prism: unlock of recursiveMutex not held by caller")
	}
	m.depth--
	if m.depth == 0 {
		m.owner = 0
		m.cond.Signal()
	}
	m.mu.Unlock()
}
