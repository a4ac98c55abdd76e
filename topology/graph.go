package topology

import (
	"math"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/graph/simple"

	"controlplane/southbound"
)

// Switch is one forwarding device in a snapshot, with its port
// classification. LinkPorts is filled during the graph build; HostPort by
// the deduction pass that follows it.
type Switch struct {
	ID        int
	AllPorts  map[int]bool
	LinkPorts map[int]bool
	HostPort  int
}

// portPair addresses the directional egress-port map: the port on Src that
// leads toward Dst.
type portPair struct{ Src, Dst int }

// Edge is one undirected link of a snapshot as exposed to readers.
type Edge struct {
	U         int     `json:"u"`
	V         int     `json:"v"`
	Bandwidth float64 `json:"bw"`
	Weight    float64 `json:"weight"`
}

// Snapshot is the immutable product of one graph rebuild. It is never
// patched in place: the rebuild path constructs a fresh Snapshot from the
// provider's current view and swaps it into the store, so readers always
// see either the old or the new topology, never a mix.
type Snapshot struct {
	Mode      RoutingMode
	BuiltAt   time.Time
	graph     *simple.WeightedUndirectedGraph
	switches  map[int]*Switch
	egress    map[portPair]int
	bandwidth map[linkKey]float64
	hostPorts map[int]int
}

func emptySnapshot(mode RoutingMode) *Snapshot {
	return &Snapshot{
		Mode:      mode,
		BuiltAt:   time.Now(),
		graph:     simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		switches:  make(map[int]*Switch),
		egress:    make(map[portPair]int),
		bandwidth: make(map[linkKey]float64),
		hostPorts: make(map[int]int),
	}
}

// buildSnapshot converts the provider's current switch/link view into a
// fresh weighted graph under the given mode, registering directional egress
// ports and marking each endpoint's link-port set along the way.
func buildSnapshot(p southbound.TopologyProvider, mode RoutingMode, bw *BandwidthTable) *Snapshot {
	snap := emptySnapshot(mode)

	for _, info := range p.Switches() {
		sw := snap.ensureSwitch(info.ID)
		for _, port := range info.Ports {
			sw.AllPorts[port] = true
		}
	}

	for _, lk := range p.Links() {
		if lk.Src == lk.Dst {
			log.Warnf("ignoring self link on s%d", lk.Src)
			continue
		}
		snap.egress[portPair{lk.Src, lk.Dst}] = lk.SrcPort
		snap.egress[portPair{lk.Dst, lk.Src}] = lk.DstPort

		snap.ensureSwitch(lk.Src).LinkPorts[lk.SrcPort] = true
		snap.ensureSwitch(lk.Dst).LinkPorts[lk.DstPort] = true

		capacity := bw.Lookup(lk.Src, lk.Dst)
		snap.bandwidth[keyOf(lk.Src, lk.Dst)] = capacity
		snap.graph.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(lk.Src),
			T: simple.Node(lk.Dst),
			W: mode.Weight(capacity),
		})
	}

	log.Infof("graph rebuilt: %d nodes, %d links (mode=%s)",
		snap.NodeCount(), len(snap.bandwidth), mode)
	return snap
}

func (s *Snapshot) ensureSwitch(id int) *Switch {
	sw, ok := s.switches[id]
	if !ok {
		sw = &Switch{ID: id, AllPorts: make(map[int]bool), LinkPorts: make(map[int]bool)}
		s.switches[id] = sw
		if s.graph.Node(int64(id)) == nil {
			s.graph.AddNode(simple.Node(id))
		}
	}
	return sw
}

// NodeCount reports the number of switches in the snapshot.
func (s *Snapshot) NodeCount() int {
	return s.graph.Nodes().Len()
}

// HasNode reports whether the switch is part of the snapshot.
func (s *Snapshot) HasNode(id int) bool {
	return s.graph.Node(int64(id)) != nil
}

// Nodes returns the switch ids in ascending order.
func (s *Snapshot) Nodes() []int {
	ids := make([]int, 0, len(s.switches))
	it := s.graph.Nodes()
	for it.Next() {
		ids = append(ids, int(it.Node().ID()))
	}
	sort.Ints(ids)
	return ids
}

// Edges returns the undirected links, canonical direction (lower id first),
// sorted for stable output.
func (s *Snapshot) Edges() []Edge {
	edges := make([]Edge, 0, len(s.bandwidth))
	it := s.graph.WeightedEdges()
	for it.Next() {
		we := it.WeightedEdge()
		u, v := int(we.From().ID()), int(we.To().ID())
		if u > v {
			u, v = v, u
		}
		edges = append(edges, Edge{
			U:         u,
			V:         v,
			Bandwidth: s.bandwidth[keyOf(u, v)],
			Weight:    we.Weight(),
		})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].U != edges[j].U {
			return edges[i].U < edges[j].U
		}
		return edges[i].V < edges[j].V
	})
	return edges
}

// EgressPort returns the port on u that leads toward its neighbor v.
func (s *Snapshot) EgressPort(u, v int) (int, bool) {
	port, ok := s.egress[portPair{u, v}]
	return port, ok
}

// Bandwidth returns the capacity recorded for the link between a and b,
// or 0 if the snapshot holds no such link.
func (s *Snapshot) Bandwidth(a, b int) float64 {
	return s.bandwidth[keyOf(a, b)]
}

// HostPort returns the deduced host port of the switch.
func (s *Snapshot) HostPort(id int) (int, bool) {
	port, ok := s.hostPorts[id]
	return port, ok
}
