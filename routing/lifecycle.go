package routing

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"controlplane/goroutine_pool"
	"controlplane/southbound"
	"controlplane/topology"
)

// TriggerReason labels what started a reinstall cycle, for the logs.
type TriggerReason string

const (
	TriggerSwitchEnter TriggerReason = "switch-enter"
	TriggerSwitchLeave TriggerReason = "switch-leave"
	TriggerLinkAdd     TriggerReason = "link-add"
	TriggerPortDesc    TriggerReason = "port-desc"
	TriggerModeChange  TriggerReason = "mode-change"
	TriggerReinstall   TriggerReason = "reinstall"
)

// Manager orchestrates the wipe-and-reinstall cycle. All topology mutation
// goes through its single consumer goroutine: events and API requests only
// enqueue a trigger, Run is the one place that rebuilds the snapshot and
// reprograms switches, so rebuilds never interleave.
type Manager struct {
	store      *topology.Store
	provider   southbound.TopologyProvider
	programmer southbound.FlowProgrammer
	installer  *Installer
	triggers   chan TriggerReason
}

func NewManager(store *topology.Store, provider southbound.TopologyProvider,
	programmer southbound.FlowProgrammer, installer *Installer) *Manager {
	return &Manager{
		store:      store,
		provider:   provider,
		programmer: programmer,
		installer:  installer,
		triggers:   make(chan TriggerReason, 16),
	}
}

// InitFlowPushPool sizes the worker pool used to fan per-switch programming
// out. Without it the manager programs switches inline.
func InitFlowPushPool(size int) {
	goroutine_pool.InitPool(goroutine_pool.FlowPushPool, size, executeFlowPush)
}

// Trigger enqueues a reinstall cycle. A full queue drops the trigger: the
// cycles are idempotent and a queued one supersedes it anyway.
func (m *Manager) Trigger(reason TriggerReason) {
	select {
	case m.triggers <- reason:
	default:
		log.Debugf("trigger queue full, %s coalesced into pending cycle", reason)
	}
}

// HandleEvent maps a southbound topology event to a reinstall trigger.
func (m *Manager) HandleEvent(ev southbound.Event) {
	switch ev.Kind {
	case southbound.EventSwitchEnter:
		m.Trigger(TriggerSwitchEnter)
	case southbound.EventSwitchLeave:
		m.Trigger(TriggerSwitchLeave)
	case southbound.EventLinkAdd:
		m.Trigger(TriggerLinkAdd)
	case southbound.EventPortDesc:
		m.Trigger(TriggerPortDesc)
	}
}

// SetMode switches the routing mode and, on a change, triggers a rebuild.
func (m *Manager) SetMode(mode topology.RoutingMode) {
	if m.store.SetMode(mode) {
		log.Infof("routing mode changed to %s", mode)
		m.Trigger(TriggerModeChange)
	}
}

// Run consumes triggers until the context is canceled.
func (m *Manager) Run(ctx context.Context) {
	log.Info("rule lifecycle manager started")
	for {
		select {
		case <-ctx.Done():
			log.Info("rule lifecycle manager stopping")
			return
		case reason := <-m.triggers:
			m.Reinstall(ctx, reason)
		}
	}
}

// Reinstall executes one full cycle: rebuild the graph, re-deduce host
// ports, wipe every switch back to the base rules, then repopulate the
// destination rules. Between wipe and repopulate the network forwards
// nothing beyond the base rules; that transient window is the price of
// correctness-by-full-recomputation.
func (m *Manager) Reinstall(ctx context.Context, reason TriggerReason) {
	log.Infof("%s -> rebuilding graph and reinstalling flows", reason)

	snap := m.store.Rebuild(m.provider)
	if snap.NodeCount() == 0 {
		log.Warn("graph is empty after rebuild, leaving installed rules untouched")
		return
	}

	flows := m.installer.ComputeFlows(snap)
	bySwitch := make(map[int][]southbound.FlowMod)
	for _, f := range flows {
		bySwitch[f.Switch] = append(bySwitch[f.Switch], f)
	}

	// Phase 1: wildcard delete plus base rules, every known switch.
	var wg sync.WaitGroup
	for _, id := range snap.Nodes() {
		id := id
		m.dispatch(&wg, func() { m.wipeSwitch(ctx, id) })
	}
	wg.Wait()

	// Phase 2: destination rules.
	for _, id := range snap.Nodes() {
		id := id
		batch := bySwitch[id]
		m.dispatch(&wg, func() { m.pushFlows(ctx, id, batch) })
	}
	wg.Wait()

	log.Infof("reinstall cycle done: %d flows across %d switches", len(flows), snap.NodeCount())
}

func (m *Manager) wipeSwitch(ctx context.Context, id int) {
	if err := m.programmer.WipeFlows(ctx, id); err != nil {
		log.Errorf("wipe flows on s%d: %v", id, err)
		return
	}
	for _, f := range BaseFlows(id) {
		if err := m.programmer.InstallFlow(ctx, f); err != nil {
			log.Errorf("install base flow on s%d: %v", id, err)
		}
	}
}

func (m *Manager) pushFlows(ctx context.Context, id int, batch []southbound.FlowMod) {
	for _, f := range batch {
		if err := m.programmer.InstallFlow(ctx, f); err != nil {
			log.Errorf("install flow on s%d (%s): %v", id, f.Match, err)
		}
	}
}

// flowPushTask is the unit of work submitted to the flow-push pool.
type flowPushTask struct {
	run func()
	wg  *sync.WaitGroup
}

func executeFlowPush(arg interface{}) {
	task, ok := arg.(*flowPushTask)
	if !ok {
		log.Errorf("flow push pool received unexpected payload %T", arg)
		return
	}
	defer task.wg.Done()
	task.run()
}

// dispatch runs fn on the flow-push pool, falling back to inline execution
// when the pool is not initialized or saturated.
func (m *Manager) dispatch(wg *sync.WaitGroup, fn func()) {
	wg.Add(1)
	if pool := goroutine_pool.GetPool(goroutine_pool.FlowPushPool); pool != nil {
		if err := pool.Invoke(&flowPushTask{run: fn, wg: wg}); err == nil {
			return
		}
	}
	fn()
	wg.Done()
}
