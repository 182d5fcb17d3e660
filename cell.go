package prism

import (
	"context"

	"github.com/zoobzio/capitan"
)

// Fatal diagnostics for broken invariants. These are programmer errors: the
// package panics with a fixed message and never recovers them itself.
const (
	panicNestedModify = "prism: nested modifications violate exclusivity of access"
	panicEscapedTxn   = "prism: transaction handle used outside its begin section"
)

// cell is the synchronized storage slot underneath every observable: one
// value, a re-entrant lock, and a flag marking an open mutation window.
type cell[T any] struct {
	lock     *recursiveMutex
	mutating bool // guarded by lock
	value    T    // guarded by lock
}

func newCell[T any](initial T) *cell[T] {
	return &cell[T]{lock: newRecursiveMutex(), value: initial}
}

// read returns a copy of the current value. Safe to call from observer
// callbacks of the same observable: the lock is re-entrant for reads.
func (c *cell[T]) read() T {
	c.lock.Lock()
	v := c.value
	c.lock.Unlock()
	return v
}

// begin runs section under the cell's lock with a transaction handle bound
// to this cell. If the section opens a mutation window via txn.modify, the
// window stays open until begin returns, so a broadcast issued from the
// section is still covered by the exclusivity check. The handle is
// invalidated when begin returns; it must not escape the section.
func (c *cell[T]) begin(section func(*txn[T])) {
	c.lock.Lock()
	tx := &txn[T]{cell: c}
	defer func() {
		if tx.opened {
			c.mutating = false
		}
		tx.cell = nil
		c.lock.Unlock()
	}()
	section(tx)
}

// txn is the exclusive-access handle passed to a begin section. It is valid
// only for the duration of that section.
type txn[T any] struct {
	cell   *cell[T]
	opened bool
}

// modify opens the cell's mutation window and applies action to the value
// in place. At most one window may be open per cell: a second modify while
// one is open means the caller's own mutation closure, or an observer it
// notified, tried to mutate the cell again, and panics.
//
// If action panics, the panic propagates and the value retains whatever the
// action had already applied. Mutation is not rolled back on failure.
func (tx *txn[T]) modify(action func(*T)) {
	c := tx.cell
	if c == nil {
		panic(panicEscapedTxn)
	}
	if c.mutating {
		capitan.Emit(context.Background(), ExclusivityViolated)
		panic(panicNestedModify)
	}
	c.mutating = true
	tx.opened = true
	action(&c.value)
}

// current returns the value as of this point in the section.
func (tx *txn[T]) current() T {
	if tx.cell == nil {
		panic(panicEscapedTxn)
	}
	return tx.cell.value
}
