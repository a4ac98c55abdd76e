package stats

import (
	"sync"
	"time"

	"controlplane/southbound"
)

// PortSample is one port's cumulative counters with its capture time.
type PortSample struct {
	RxPackets uint64
	TxPackets uint64
	RxBytes   uint64
	TxBytes   uint64
	RxDropped uint64
	TxDropped uint64
	RxErrors  uint64
	TxErrors  uint64
	Timestamp time.Time
}

// SampleStore retains, per (switch, port), the latest counter sample and
// the immediately preceding one, plus the last flow-stats reply per switch.
// The poll-reply path is the only writer; readers copy what they need under
// the read lock.
type SampleStore struct {
	mu       sync.RWMutex
	current  map[int]map[int]PortSample
	previous map[int]map[int]PortSample
	flows    map[int][]southbound.FlowCounterEntry
}

func NewSampleStore() *SampleStore {
	return &SampleStore{
		current:  make(map[int]map[int]PortSample),
		previous: make(map[int]map[int]PortSample),
		flows:    make(map[int][]southbound.FlowCounterEntry),
	}
}

// RecordPortCounters ingests a port-stats reply: for each port the existing
// current sample (if any) becomes the previous one, and the reply becomes
// current.
func (s *SampleStore) RecordPortCounters(switchID int, counters []southbound.PortCounters, ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.current[switchID]
	if !ok {
		cur = make(map[int]PortSample)
		s.current[switchID] = cur
		s.previous[switchID] = make(map[int]PortSample)
	}

	for _, c := range counters {
		if old, exists := cur[c.Port]; exists {
			s.previous[switchID][c.Port] = old
		}
		cur[c.Port] = PortSample{
			RxPackets: c.RxPackets,
			TxPackets: c.TxPackets,
			RxBytes:   c.RxBytes,
			TxBytes:   c.TxBytes,
			RxDropped: c.RxDropped,
			TxDropped: c.TxDropped,
			RxErrors:  c.RxErrors,
			TxErrors:  c.TxErrors,
			Timestamp: ts,
		}
	}
}

// RecordFlowCounters caches the latest flow-stats reply for a switch.
func (s *SampleStore) RecordFlowCounters(switchID int, entries []southbound.FlowCounterEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[switchID] = append([]southbound.FlowCounterEntry(nil), entries...)
}

// PortSamples returns the current and previous samples of a port. hasPrev
// is false until the second reply for that port has arrived.
func (s *SampleStore) PortSamples(switchID, port int) (cur, prev PortSample, hasCur, hasPrev bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur, hasCur = s.current[switchID][port]
	prev, hasPrev = s.previous[switchID][port]
	return cur, prev, hasCur, hasPrev
}

// CurrentPorts returns a copy of the current samples of every port of a
// switch.
func (s *SampleStore) CurrentPorts(switchID int) map[int]PortSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]PortSample, len(s.current[switchID]))
	for port, sample := range s.current[switchID] {
		out[port] = sample
	}
	return out
}

// Flows returns a copy of the last flow-stats reply of a switch.
func (s *SampleStore) Flows(switchID int) []southbound.FlowCounterEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]southbound.FlowCounterEntry(nil), s.flows[switchID]...)
}

// FlowCount returns the number of installed rules last reported by a switch.
func (s *SampleStore) FlowCount(switchID int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.flows[switchID])
}

// FlowSwitches returns the switch ids with a cached flow-stats reply.
func (s *SampleStore) FlowSwitches() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, 0, len(s.flows))
	for id := range s.flows {
		out = append(out, id)
	}
	return out
}
