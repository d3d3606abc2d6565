package fmmap

import (
	"context"
	"sync"
	"sync/atomic"
)

// slot holds the backend of one facade. Every call takes the read lock for
// its duration; calls that replace or resize the backend take the write lock
// and bump gen so outstanding readers and writers can tell.
//
// Readers and Writers hold the slot rather than the facade, so the finalizer
// lives here: the slot is collected only when neither is reachable.
type slot struct {
	mu    sync.RWMutex
	be    backend
	gen   uint64
	dirty *dirtyPages
	env   env

	removeOnDrop atomic.Bool
	deleted      atomic.Bool
}

func newSlot(be backend, e env, trackDirty bool) *slot {
	s := &slot{be: be, env: e}
	if trackDirty && be.kind() == BackendDisk {
		s.dirty = newDirtyPages()
	}
	return s
}

// emptySlot backs zero-value facades.
func emptySlot() *slot {
	return &slot{be: emptyBackend{}, env: DefaultOptions().env()}
}

// take swaps in the empty backend and returns the previous one.
func (s *slot) take() backend {
	be, _ := s.takeTracked()
	return be
}

// takeTracked is take that also hands back the dirty-page tracker, so a
// failed transition can restore both with put.
func (s *slot) takeTracked() (backend, *dirtyPages) {
	s.mu.Lock()
	defer s.mu.Unlock()
	be, dirty := s.be, s.dirty
	s.be = emptyBackend{}
	s.gen++
	s.dirty = nil
	return be, dirty
}

// put installs be and its tracker into a slot emptied by take.
func (s *slot) put(be backend, dirty *dirtyPages) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.be = be
	s.gen++
	s.dirty = dirty
}

// data returns the current bytes. The caller holds the lock.
func (s *slot) data() ([]byte, error) {
	if s.be.kind() == BackendEmpty {
		return nil, ErrEmptyMmap
	}
	return s.be.bytes(), nil
}

// finalize runs for a slot collected without Close.
func (s *slot) finalize() {
	s.abandon(s.removeOnDrop.Load() && !s.deleted.Swap(true))
}

// abandon empties the slot without unmapping. Slices taken from the mapping
// do not keep the slot alive and may still be in use.
func (s *slot) abandon(unlink bool) {
	be := s.take()
	if be.kind() == BackendEmpty {
		return
	}
	size := len(be.bytes())
	err := be.abandon(unlink)
	if be.kind() == BackendDisk {
		s.env.logger.LogLeak(context.Background(), be.path(), size, unlink && err == nil, err)
	}
}
