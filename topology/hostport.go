package topology

import (
	"sort"

	log "github.com/sirupsen/logrus"
)

// HostPortStrategy infers which port of a switch leads to its locally
// attached host. It runs after the graph build, which fills LinkPorts.
// Replacing it with an explicit-configuration lookup does not touch the
// route installer.
type HostPortStrategy func(sw *Switch) int

// SubtractLinkPorts is the default strategy: candidates are the usable
// ports minus the ports carrying inter-switch links. A single candidate is
// taken as-is; no candidate falls back to port 1 (likely misconfiguration);
// several candidates pick the numerically smallest (a stale port cannot be
// told apart from a genuine multi-host switch).
func SubtractLinkPorts(sw *Switch) int {
	candidates := make([]int, 0, len(sw.AllPorts))
	for port := range sw.AllPorts {
		if !sw.LinkPorts[port] {
			candidates = append(candidates, port)
		}
	}
	sort.Ints(candidates)

	switch len(candidates) {
	case 1:
		return candidates[0]
	case 0:
		log.Warnf("s%d: no host-port candidate, assuming port 1", sw.ID)
		return 1
	default:
		log.Warnf("s%d: multiple host-port candidates %v, using %d", sw.ID, candidates, candidates[0])
		return candidates[0]
	}
}

// deduceHostPorts resolves the host port of every switch in the snapshot.
func (s *Snapshot) deduceHostPorts(strategy HostPortStrategy) {
	for _, id := range s.Nodes() {
		sw := s.switches[id]
		port := strategy(sw)
		sw.HostPort = port
		s.hostPorts[id] = port
		log.Infof("s%d: host-port = %d", id, port)
	}
}
