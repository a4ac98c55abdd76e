package southbound

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// NullEngine is the stand-in used until a real protocol engine is wired in.
// It reports an empty topology and logs every outbound primitive at debug
// level, so the control plane can run (and serve its REST surface) without
// a switch connection.
type NullEngine struct{}

var _ TopologyProvider = NullEngine{}
var _ FlowProgrammer = NullEngine{}
var _ StatsRequester = NullEngine{}

func (NullEngine) Switches() []SwitchInfo { return nil }
func (NullEngine) Links() []LinkInfo      { return nil }

func (NullEngine) InstallFlow(_ context.Context, flow FlowMod) error {
	log.Debugf("null southbound: drop install s%d prio=%d match=%s out=%d",
		flow.Switch, flow.Priority, flow.Match, flow.OutPort)
	return nil
}

func (NullEngine) WipeFlows(_ context.Context, switchID int) error {
	log.Debugf("null southbound: drop wipe s%d", switchID)
	return nil
}

func (NullEngine) RequestPortCounters(_ context.Context, switchID int) error {
	log.Debugf("null southbound: drop port-counter request s%d", switchID)
	return nil
}

func (NullEngine) RequestFlowCounters(_ context.Context, switchID int) error {
	log.Debugf("null southbound: drop flow-counter request s%d", switchID)
	return nil
}
