package topology

import (
	"testing"

	"controlplane/southbound"
)

type fakeProvider struct {
	switches []southbound.SwitchInfo
	links    []southbound.LinkInfo
}

func (f *fakeProvider) Switches() []southbound.SwitchInfo { return f.switches }
func (f *fakeProvider) Links() []southbound.LinkInfo      { return f.links }

// lineProvider builds s1 -2/1- s2 -2/1- s3 with port 3 free for the host
// on every switch.
func lineProvider() *fakeProvider {
	return &fakeProvider{
		switches: []southbound.SwitchInfo{
			{ID: 1, Ports: []int{1, 2, 3}},
			{ID: 2, Ports: []int{1, 2, 3}},
			{ID: 3, Ports: []int{1, 2, 3}},
		},
		links: []southbound.LinkInfo{
			{Src: 1, Dst: 2, SrcPort: 2, DstPort: 1},
			{Src: 2, Dst: 3, SrcPort: 2, DstPort: 1},
		},
	}
}

func TestRebuildGraph(t *testing.T) {
	bw := NewBandwidthTable(10)
	store := NewStore(bw, SubtractLinkPorts)
	snap := store.Rebuild(lineProvider())

	if got := snap.NodeCount(); got != 3 {
		t.Fatalf("node count = %d, want 3", got)
	}

	edges := snap.Edges()
	if len(edges) != 2 {
		t.Fatalf("edge count = %d, want 2", len(edges))
	}
	// (1,2) is in the NSFNET table at 50 Mbps, (2,3) at 20 Mbps.
	if edges[0].U != 1 || edges[0].V != 2 || edges[0].Bandwidth != 50 {
		t.Errorf("edge[0] = %+v, want 1-2 @ 50", edges[0])
	}
	if edges[1].U != 2 || edges[1].V != 3 || edges[1].Bandwidth != 20 {
		t.Errorf("edge[1] = %+v, want 2-3 @ 20", edges[1])
	}
	// Hop-count mode weighs every edge 1.
	for _, e := range edges {
		if e.Weight != 1.0 {
			t.Errorf("edge %d-%d weight = %v, want 1.0 in hops mode", e.U, e.V, e.Weight)
		}
	}

	for _, tc := range []struct{ u, v, port int }{
		{1, 2, 2}, {2, 1, 1}, {2, 3, 2}, {3, 2, 1},
	} {
		port, ok := snap.EgressPort(tc.u, tc.v)
		if !ok || port != tc.port {
			t.Errorf("EgressPort(%d,%d) = %d,%v, want %d", tc.u, tc.v, port, ok, tc.port)
		}
	}
}

func TestRebuildUsesDefaultBandwidth(t *testing.T) {
	store := NewStore(NewBandwidthTable(10), SubtractLinkPorts)
	snap := store.Rebuild(&fakeProvider{
		switches: []southbound.SwitchInfo{
			{ID: 2, Ports: []int{1, 2}},
			{ID: 5, Ports: []int{1, 2}},
		},
		// (2,5) is not a backbone link, so it gets the default capacity.
		links: []southbound.LinkInfo{{Src: 2, Dst: 5, SrcPort: 2, DstPort: 2}},
	})

	if got := snap.Bandwidth(2, 5); got != 10 {
		t.Fatalf("Bandwidth(2,5) = %v, want default 10", got)
	}
}

func TestBandwidthOverride(t *testing.T) {
	bw := NewBandwidthTable(10)
	bw.Override(1, 2, 100)
	if got := bw.Lookup(2, 1); got != 100 {
		t.Fatalf("Lookup(2,1) after override = %v, want 100", got)
	}
}

func TestRebuildReplacesSnapshotWholesale(t *testing.T) {
	store := NewStore(NewBandwidthTable(10), SubtractLinkPorts)
	first := store.Rebuild(lineProvider())
	if first.NodeCount() != 3 {
		t.Fatalf("first rebuild node count = %d, want 3", first.NodeCount())
	}

	// The provider now reports nothing; the new snapshot must be empty,
	// not a merge with the previous one.
	second := store.Rebuild(&fakeProvider{})
	if second.NodeCount() != 0 {
		t.Fatalf("second rebuild node count = %d, want 0", second.NodeCount())
	}
	if len(second.Edges()) != 0 {
		t.Fatalf("second rebuild still has edges: %v", second.Edges())
	}

	// The old snapshot handed to earlier readers is untouched.
	if first.NodeCount() != 3 {
		t.Fatalf("previous snapshot mutated by rebuild")
	}
}

func TestRebuildAppliesBandwidthMode(t *testing.T) {
	store := NewStore(NewBandwidthTable(10), SubtractLinkPorts)
	if changed := store.SetMode(ModeBandwidth); !changed {
		t.Fatal("SetMode(ModeBandwidth) reported no change")
	}
	if changed := store.SetMode(ModeBandwidth); changed {
		t.Fatal("repeated SetMode reported a change")
	}

	snap := store.Rebuild(lineProvider())
	edges := snap.Edges()
	if len(edges) != 2 {
		t.Fatalf("edge count = %d, want 2", len(edges))
	}
	if edges[0].Weight != 1.0/50 {
		t.Errorf("edge 1-2 weight = %v, want %v", edges[0].Weight, 1.0/50)
	}
	if edges[1].Weight != 1.0/20 {
		t.Errorf("edge 2-3 weight = %v, want %v", edges[1].Weight, 1.0/20)
	}
}

func TestRebuildDeducesHostPorts(t *testing.T) {
	store := NewStore(NewBandwidthTable(10), SubtractLinkPorts)
	snap := store.Rebuild(lineProvider())

	for id, want := range map[int]int{1: 1, 2: 3, 3: 2} {
		got, ok := snap.HostPort(id)
		if !ok || got != want {
			t.Errorf("HostPort(%d) = %d,%v, want %d", id, got, ok, want)
		}
	}
}
