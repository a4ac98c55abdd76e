package topology

import (
	"sync"

	"controlplane/southbound"
)

// Store owns the current topology snapshot and the active routing mode.
// Discipline: only the rule lifecycle manager calls Rebuild and SetMode
// (single writer); every other party reads through Snapshot, which hands
// out an immutable value that stays valid while a rebuild runs.
type Store struct {
	mu        sync.RWMutex
	mode      RoutingMode
	bandwidth *BandwidthTable
	strategy  HostPortStrategy
	snap      *Snapshot
}

// NewStore returns a store with an empty snapshot so readers never see nil.
func NewStore(bandwidth *BandwidthTable, strategy HostPortStrategy) *Store {
	if strategy == nil {
		strategy = SubtractLinkPorts
	}
	return &Store{
		mode:      ModeHops,
		bandwidth: bandwidth,
		strategy:  strategy,
		snap:      emptySnapshot(ModeHops),
	}
}

// Mode returns the active routing mode.
func (s *Store) Mode() RoutingMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode switches the routing mode and reports whether it changed. The
// caller is responsible for triggering the rebuild cycle on a change.
func (s *Store) SetMode(mode RoutingMode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == s.mode {
		return false
	}
	s.mode = mode
	return true
}

// Snapshot returns the current immutable topology snapshot.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Rebuild fetches the provider's current view, builds a fresh snapshot
// under the active mode, deduces host ports, and swaps the snapshot in.
// The previous snapshot is discarded wholesale, never merged.
func (s *Store) Rebuild(p southbound.TopologyProvider) *Snapshot {
	s.mu.RLock()
	mode := s.mode
	s.mu.RUnlock()

	snap := buildSnapshot(p, mode, s.bandwidth)
	snap.deduceHostPorts(s.strategy)

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return snap
}
