package routing

import (
	"fmt"

	"controlplane/southbound"
)

// BaseFlows returns the two always-present rules reinstalled on a switch
// after every wipe: LLDP probes punted to the controller so link discovery
// keeps working, and a table-miss drop so unmatched traffic never floods.
func BaseFlows(switchID int) []southbound.FlowMod {
	return []southbound.FlowMod{
		{
			Switch:   switchID,
			Priority: southbound.PriorityLLDP,
			Match:    southbound.FlowMatch{EthType: southbound.EthTypeLLDP},
			OutPort:  southbound.PortController,
		},
		{
			Switch:   switchID,
			Priority: southbound.PriorityTableMiss,
			Match:    southbound.FlowMatch{},
			OutPort:  southbound.PortDrop,
		},
	}
}

// HostAddress derives host i's address from the network prefix: host i is
// always attached to switch i.
func HostAddress(prefix string, i int) string {
	return fmt.Sprintf("%s.%d", prefix, i)
}

// destinationFlows returns the IP and ARP exact-match rules forwarding
// traffic for dstIP out of outPort on the given switch.
func destinationFlows(switchID int, dstIP string, outPort int) []southbound.FlowMod {
	return []southbound.FlowMod{
		{
			Switch:   switchID,
			Priority: southbound.PriorityDestination,
			Match:    southbound.FlowMatch{EthType: southbound.EthTypeIPv4, IPv4Dst: dstIP},
			OutPort:  outPort,
		},
		{
			Switch:   switchID,
			Priority: southbound.PriorityDestination,
			Match:    southbound.FlowMatch{EthType: southbound.EthTypeARP, ArpTPA: dstIP},
			OutPort:  outPort,
		},
	}
}
