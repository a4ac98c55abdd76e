package southbound

import "fmt"

// Ethernet types matched by the installed rules.
const (
	EthTypeIPv4 uint16 = 0x0800
	EthTypeARP  uint16 = 0x0806
	EthTypeLLDP uint16 = 0x88cc
)

// Rule priorities. Destination rules sit above the base rules so exact-match
// forwarding always wins over the table-miss drop.
const (
	PriorityLLDP        = 500
	PriorityDestination = 100
	PriorityTableMiss   = 0
)

// Sentinel output ports. Real switch ports are numbered from 1.
const (
	// PortDrop means the rule carries no output action (packets are dropped).
	PortDrop = 0
	// PortController punts matching packets to the controller.
	PortController = -1
)

// FlowMatch is the match portion of a rule. IPv4Dst applies with
// EthTypeIPv4, ArpTPA with EthTypeARP. A zero EthType matches everything.
type FlowMatch struct {
	EthType uint16 `json:"eth_type"`
	IPv4Dst string `json:"ipv4_dst,omitempty"`
	ArpTPA  string `json:"arp_tpa,omitempty"`
}

func (m FlowMatch) String() string {
	switch {
	case m.IPv4Dst != "":
		return fmt.Sprintf("eth_type=0x%04x,ipv4_dst=%s", m.EthType, m.IPv4Dst)
	case m.ArpTPA != "":
		return fmt.Sprintf("eth_type=0x%04x,arp_tpa=%s", m.EthType, m.ArpTPA)
	case m.EthType != 0:
		return fmt.Sprintf("eth_type=0x%04x", m.EthType)
	}
	return "any"
}

// FlowMod is one "install rule" instruction directed at a switch.
type FlowMod struct {
	Switch   int       `json:"switch"`
	Priority int       `json:"priority"`
	Match    FlowMatch `json:"match"`
	OutPort  int       `json:"out_port"`
}
