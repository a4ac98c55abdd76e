package routing

import (
	"reflect"
	"testing"

	"controlplane/southbound"
	"controlplane/topology"
)

type fakeProvider struct {
	switches []southbound.SwitchInfo
	links    []southbound.LinkInfo
}

func (f *fakeProvider) Switches() []southbound.SwitchInfo { return f.switches }
func (f *fakeProvider) Links() []southbound.LinkInfo      { return f.links }

// triangleProvider: thin direct link 1-2, fat detour via 3. Port 3 is the
// host port on every switch.
func triangleProvider() (*fakeProvider, *topology.BandwidthTable) {
	bw := topology.NewBandwidthTable(10)
	bw.Override(1, 2, 5)
	bw.Override(1, 3, 100)
	bw.Override(2, 3, 100)
	p := &fakeProvider{
		switches: []southbound.SwitchInfo{
			{ID: 1, Ports: []int{1, 2, 3}},
			{ID: 2, Ports: []int{1, 2, 3}},
			{ID: 3, Ports: []int{1, 2, 3}},
		},
		links: []southbound.LinkInfo{
			{Src: 1, Dst: 2, SrcPort: 1, DstPort: 1},
			{Src: 1, Dst: 3, SrcPort: 2, DstPort: 1},
			{Src: 2, Dst: 3, SrcPort: 2, DstPort: 2},
		},
	}
	return p, bw
}

func findFlow(flows []southbound.FlowMod, sw int, match southbound.FlowMatch) (southbound.FlowMod, bool) {
	for _, f := range flows {
		if f.Switch == sw && f.Match == match {
			return f, true
		}
	}
	return southbound.FlowMod{}, false
}

func TestComputeFlowsFirstHopMatchesShortestPath(t *testing.T) {
	provider, bw := triangleProvider()
	store := topology.NewStore(bw, topology.SubtractLinkPorts)
	snap := store.Rebuild(provider)

	installer := &Installer{NumHosts: 3, HostPrefix: "10.0.0"}
	flows := installer.ComputeFlows(snap)

	// 3 destinations x 3 switches x 2 rules.
	if len(flows) != 18 {
		t.Fatalf("flow count = %d, want 18", len(flows))
	}

	for dst := 1; dst <= 3; dst++ {
		dstIP := HostAddress("10.0.0", dst)
		for _, u := range snap.Nodes() {
			ipMatch := southbound.FlowMatch{EthType: southbound.EthTypeIPv4, IPv4Dst: dstIP}
			arpMatch := southbound.FlowMatch{EthType: southbound.EthTypeARP, ArpTPA: dstIP}

			ipFlow, ok := findFlow(flows, u, ipMatch)
			if !ok {
				t.Fatalf("missing IPv4 flow on s%d for %s", u, dstIP)
			}
			arpFlow, ok := findFlow(flows, u, arpMatch)
			if !ok {
				t.Fatalf("missing ARP flow on s%d for %s", u, dstIP)
			}
			if ipFlow.OutPort != arpFlow.OutPort {
				t.Fatalf("s%d dst %s: IP and ARP flows disagree on port (%d vs %d)",
					u, dstIP, ipFlow.OutPort, arpFlow.OutPort)
			}
			if ipFlow.Priority != southbound.PriorityDestination {
				t.Fatalf("s%d dst %s: priority = %d, want %d",
					u, dstIP, ipFlow.Priority, southbound.PriorityDestination)
			}

			var wantPort int
			if u == dst {
				wantPort, _ = snap.HostPort(dst)
			} else {
				path, err := snap.ShortestPath(u, dst)
				if err != nil {
					t.Fatalf("ShortestPath(%d,%d): %v", u, dst, err)
				}
				wantPort, _ = snap.EgressPort(u, path.FirstHop())
			}
			if ipFlow.OutPort != wantPort {
				t.Fatalf("s%d dst %s: out port = %d, want first hop port %d",
					u, dstIP, ipFlow.OutPort, wantPort)
			}
		}
	}
}

func TestComputeFlowsIsIdempotent(t *testing.T) {
	provider, bw := triangleProvider()
	store := topology.NewStore(bw, topology.SubtractLinkPorts)
	installer := &Installer{NumHosts: 3, HostPrefix: "10.0.0"}

	first := installer.ComputeFlows(store.Rebuild(provider))
	second := installer.ComputeFlows(store.Rebuild(provider))

	if !reflect.DeepEqual(first, second) {
		t.Fatal("two reinstalls over an unchanged topology produced different rule sets")
	}
}

func TestComputeFlowsChangesWithMode(t *testing.T) {
	provider, bw := triangleProvider()
	store := topology.NewStore(bw, topology.SubtractLinkPorts)
	installer := &Installer{NumHosts: 3, HostPrefix: "10.0.0"}

	hopsFlows := installer.ComputeFlows(store.Rebuild(provider))
	store.SetMode(topology.ModeBandwidth)
	bwFlows := installer.ComputeFlows(store.Rebuild(provider))

	// In hops mode s1 reaches host 2 via the direct thin link (port 1);
	// in bandwidth mode it detours via s3 (port 2).
	match := southbound.FlowMatch{EthType: southbound.EthTypeIPv4, IPv4Dst: "10.0.0.2"}
	hopsFlow, ok := findFlow(hopsFlows, 1, match)
	if !ok {
		t.Fatal("missing s1 flow for 10.0.0.2 in hops mode")
	}
	bwFlow, ok := findFlow(bwFlows, 1, match)
	if !ok {
		t.Fatal("missing s1 flow for 10.0.0.2 in bandwidth mode")
	}
	if hopsFlow.OutPort != 1 || bwFlow.OutPort != 2 {
		t.Fatalf("mode change did not move the egress port: hops=%d bandwidth=%d",
			hopsFlow.OutPort, bwFlow.OutPort)
	}
}

func TestComputeFlowsSkipsUnreachablePairs(t *testing.T) {
	// s1-s2 connected, s3 isolated.
	store := topology.NewStore(topology.NewBandwidthTable(10), topology.SubtractLinkPorts)
	snap := store.Rebuild(&fakeProvider{
		switches: []southbound.SwitchInfo{
			{ID: 1, Ports: []int{1, 2}},
			{ID: 2, Ports: []int{1, 2}},
			{ID: 3, Ports: []int{1}},
		},
		links: []southbound.LinkInfo{{Src: 1, Dst: 2, SrcPort: 1, DstPort: 1}},
	})

	installer := &Installer{NumHosts: 3, HostPrefix: "10.0.0"}
	flows := installer.ComputeFlows(snap)

	// No rules pointing s1/s2 at host 3 or s3 at hosts 1/2, but s3 still
	// gets its own local delivery rules and the s1<->s2 pairs are intact.
	for _, f := range flows {
		if f.Switch == 3 && f.Match.IPv4Dst != "10.0.0.3" && f.Match.ArpTPA != "10.0.0.3" {
			t.Fatalf("s3 received a rule for an unreachable destination: %+v", f)
		}
		if f.Switch != 3 && (f.Match.IPv4Dst == "10.0.0.3" || f.Match.ArpTPA == "10.0.0.3") {
			t.Fatalf("unreachable host 3 got a rule on s%d: %+v", f.Switch, f)
		}
	}

	// 2 destinations x 2 switches x 2 rules + local rules on s3.
	if len(flows) != 10 {
		t.Fatalf("flow count = %d, want 10", len(flows))
	}
}

func TestComputeFlowsSkipsMissingDestinationSwitch(t *testing.T) {
	store := topology.NewStore(topology.NewBandwidthTable(10), topology.SubtractLinkPorts)
	snap := store.Rebuild(&fakeProvider{
		switches: []southbound.SwitchInfo{
			{ID: 1, Ports: []int{1, 2}},
			{ID: 2, Ports: []int{1, 2}},
		},
		links: []southbound.LinkInfo{{Src: 1, Dst: 2, SrcPort: 1, DstPort: 1}},
	})

	// Hosts 3 and 4 have no switch in the graph yet.
	installer := &Installer{NumHosts: 4, HostPrefix: "10.0.0"}
	flows := installer.ComputeFlows(snap)

	if len(flows) != 8 {
		t.Fatalf("flow count = %d, want 8 (2 destinations x 2 switches x 2 rules)", len(flows))
	}
}

func TestBaseFlows(t *testing.T) {
	flows := BaseFlows(5)
	if len(flows) != 2 {
		t.Fatalf("base flow count = %d, want 2", len(flows))
	}

	lldp := flows[0]
	if lldp.Priority != southbound.PriorityLLDP ||
		lldp.Match.EthType != southbound.EthTypeLLDP ||
		lldp.OutPort != southbound.PortController {
		t.Errorf("LLDP punt rule = %+v", lldp)
	}

	miss := flows[1]
	if miss.Priority != southbound.PriorityTableMiss ||
		miss.Match != (southbound.FlowMatch{}) ||
		miss.OutPort != southbound.PortDrop {
		t.Errorf("table-miss rule = %+v", miss)
	}
}
