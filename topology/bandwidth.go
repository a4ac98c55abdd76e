package topology

// linkKey identifies an undirected link by its endpoints, lower id first.
type linkKey struct{ a, b int }

func keyOf(a, b int) linkKey {
	if a < b {
		return linkKey{a, b}
	}
	return linkKey{b, a}
}

// nsfnetBandwidth is the static capacity table (Mbps) for the 21 NSFNET
// backbone links, matching the emulator topology.
var nsfnetBandwidth = map[linkKey]float64{
	{1, 2}: 50, {1, 5}: 30,
	{2, 3}: 20, {2, 6}: 40,
	{3, 4}: 25, {3, 7}: 35,
	{4, 8}: 45, {5, 6}: 10,
	{5, 9}: 20, {6, 7}: 50,
	{6, 10}: 8, {7, 11}: 40,
	{8, 11}: 20, {8, 12}: 30,
	{9, 10}: 40, {9, 13}: 35,
	{10, 11}: 20, {10, 14}: 30,
	{11, 12}: 45, {12, 14}: 25,
	{13, 14}: 15,
}

// BandwidthTable resolves the static capacity of an undirected link,
// falling back to a default for links that appear without a mapping.
type BandwidthTable struct {
	capacity    map[linkKey]float64
	defaultMbps float64
}

// NewBandwidthTable returns a table preloaded with the NSFNET capacities.
func NewBandwidthTable(defaultMbps float64) *BandwidthTable {
	capacity := make(map[linkKey]float64, len(nsfnetBandwidth))
	for k, v := range nsfnetBandwidth {
		capacity[k] = v
	}
	return &BandwidthTable{capacity: capacity, defaultMbps: defaultMbps}
}

// Override replaces (or adds) the capacity of one link.
func (t *BandwidthTable) Override(a, b int, mbps float64) {
	t.capacity[keyOf(a, b)] = mbps
}

// Lookup returns the capacity of the link between a and b in Mbps.
func (t *BandwidthTable) Lookup(a, b int) float64 {
	if bw, ok := t.capacity[keyOf(a, b)]; ok {
		return bw
	}
	return t.defaultMbps
}
