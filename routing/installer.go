package routing

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"controlplane/southbound"
	"controlplane/topology"
)

// Installer computes the full proactive rule set for a topology snapshot:
// for every destination host and every switch, the egress port toward the
// destination's shortest-path first hop, expressed as one IPv4 and one ARP
// exact-match rule. No label or group indirection, pure destination
// forwarding.
type Installer struct {
	NumHosts   int
	HostPrefix string
}

// ComputeFlows walks destinations 1..NumHosts in order and switches in
// ascending id order, so the result is deterministic for a given snapshot:
// two invocations over the same snapshot produce identical rule sets.
//
// Topology inconsistencies (unreachable destination, missing egress-port
// mapping) skip the single (switch, destination) pair with a warning;
// every other pair still proceeds.
func (ins *Installer) ComputeFlows(snap *topology.Snapshot) []southbound.FlowMod {
	nodes := snap.Nodes()
	flows := make([]southbound.FlowMod, 0, 2*len(nodes)*ins.NumHosts)

	for dst := 1; dst <= ins.NumHosts; dst++ {
		dstIP := HostAddress(ins.HostPrefix, dst)
		if !snap.HasNode(dst) {
			log.Warnf("s%d (destination of %s) is not in the graph", dst, dstIP)
			continue
		}
		flows = append(flows, ins.treeToDestination(snap, nodes, dst, dstIP)...)
	}
	log.Infof("computed %d proactive flows for %d destinations", len(flows), ins.NumHosts)
	return flows
}

// treeToDestination emits, for each switch u, the pair of rules forwarding
// dstIP toward dst. On dst itself the egress is the deduced host port.
func (ins *Installer) treeToDestination(snap *topology.Snapshot, nodes []int, dst int, dstIP string) []southbound.FlowMod {
	var flows []southbound.FlowMod

	for _, u := range nodes {
		var outPort int
		if u == dst {
			port, ok := snap.HostPort(dst)
			if !ok {
				port = 1
			}
			outPort = port
		} else {
			path, err := snap.ShortestPath(u, dst)
			if err != nil {
				if errors.Is(err, topology.ErrNoPath) {
					log.Warnf("no route s%d -> s%d for %s", u, dst, dstIP)
				} else {
					log.Warnf("path s%d -> s%d for %s: %v", u, dst, dstIP, err)
				}
				continue
			}
			next := path.FirstHop()
			port, ok := snap.EgressPort(u, next)
			if !ok {
				log.Warnf("unknown egress port s%d -> s%d (dst %s)", u, next, dstIP)
				continue
			}
			outPort = port
		}

		flows = append(flows, destinationFlows(u, dstIP, outPort)...)
	}
	return flows
}
