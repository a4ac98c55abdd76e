// Package southbound defines the boundary to the external OpenFlow protocol
// engine: the typed events it delivers, the topology it reports, and the
// primitives the control plane sends back (flow programming, counter
// requests). The wire encoding itself lives outside this module.
package southbound

import "context"

// SwitchInfo describes one connected switch as reported by the protocol
// engine: its datapath id and the usable (non-reserved) port numbers from
// the port-description reply.
type SwitchInfo struct {
	ID    int
	Ports []int
}

// LinkInfo describes one directed inter-switch link discovered via LLDP.
// The reverse direction is reported as its own LinkInfo.
type LinkInfo struct {
	Src     int
	Dst     int
	SrcPort int
	DstPort int
}

// TopologyProvider exposes the protocol engine's current view of the
// network. The control plane reads it wholesale on every rebuild and never
// patches a previous result.
type TopologyProvider interface {
	Switches() []SwitchInfo
	Links() []LinkInfo
}

// EventKind enumerates the topology events that trigger a rebuild cycle.
type EventKind int

const (
	EventSwitchEnter EventKind = iota
	EventSwitchLeave
	EventLinkAdd
	EventPortDesc
)

func (k EventKind) String() string {
	switch k {
	case EventSwitchEnter:
		return "switch-enter"
	case EventSwitchLeave:
		return "switch-leave"
	case EventLinkAdd:
		return "link-add"
	case EventPortDesc:
		return "port-desc"
	}
	return "unknown"
}

// Event is delivered by the protocol engine when its topology view changes.
type Event struct {
	Kind   EventKind
	Switch int
}

// FlowProgrammer sends flow-table mutations to a switch. Calls are
// asynchronous from the switch's point of view; an error means the request
// could not be issued, not that the switch rejected it.
type FlowProgrammer interface {
	InstallFlow(ctx context.Context, flow FlowMod) error
	// WipeFlows deletes every installed rule on the switch (wildcard match,
	// wildcard output target).
	WipeFlows(ctx context.Context, switchID int) error
}

// StatsRequester issues counter queries. Replies arrive later through the
// engine's event path and are handed to stats.Monitor.
type StatsRequester interface {
	RequestPortCounters(ctx context.Context, switchID int) error
	RequestFlowCounters(ctx context.Context, switchID int) error
}

// PortCounters is one port's cumulative counters from a port-stats reply.
type PortCounters struct {
	Port      int
	RxPackets uint64
	TxPackets uint64
	RxBytes   uint64
	TxBytes   uint64
	RxDropped uint64
	TxDropped uint64
	RxErrors  uint64
	TxErrors  uint64
}

// FlowCounterEntry is one installed rule's counters from a flow-stats reply.
type FlowCounterEntry struct {
	Priority    int    `json:"priority"`
	Match       string `json:"match"`
	DurationSec uint64 `json:"duration_sec"`
	PacketCount uint64 `json:"packet_count"`
	ByteCount   uint64 `json:"byte_count"`
}
