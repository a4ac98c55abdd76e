package topology

import "fmt"

// RoutingMode selects the edge-weight policy for path computation.
type RoutingMode int

const (
	// ModeHops weighs every link 1.0, minimizing hop count.
	ModeHops RoutingMode = iota
	// ModeBandwidth weighs a link 1/capacity, preferring fat pipes.
	ModeBandwidth
)

// Wire names kept compatible with the management plane.
const (
	modeHopsName      = "hops"
	modeBandwidthName = "distrak"
)

func (m RoutingMode) String() string {
	if m == ModeBandwidth {
		return modeBandwidthName
	}
	return modeHopsName
}

// Weight returns the edge weight of a link with the given capacity.
func (m RoutingMode) Weight(bandwidthMbps float64) float64 {
	if m == ModeBandwidth && bandwidthMbps > 0 {
		return 1.0 / bandwidthMbps
	}
	return 1.0
}

// ParseMode maps a wire name to a RoutingMode.
func ParseMode(s string) (RoutingMode, error) {
	switch s {
	case modeHopsName:
		return ModeHops, nil
	case modeBandwidthName:
		return ModeBandwidth, nil
	}
	return ModeHops, fmt.Errorf("mode must be %s|%s, got %q", modeHopsName, modeBandwidthName, s)
}
