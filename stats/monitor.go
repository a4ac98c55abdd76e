package stats

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"controlplane/goroutine_pool"
	"controlplane/southbound"
	"controlplane/topology"
)

// Monitor drives the statistics engine: on a fixed interval it asks every
// switch in the current snapshot for its port and flow counters. Replies
// come back through the protocol engine's event path and land in
// HandlePortCounters / HandleFlowCounters, the only writers of the sample
// store. A switch that never replies simply never contributes fresh
// samples; no timeout is applied to outstanding queries.
type Monitor struct {
	store     *topology.Store
	samples   *SampleStore
	requester southbound.StatsRequester
	interval  time.Duration
}

func NewMonitor(store *topology.Store, samples *SampleStore,
	requester southbound.StatsRequester, interval time.Duration) *Monitor {
	return &Monitor{
		store:     store,
		samples:   samples,
		requester: requester,
		interval:  interval,
	}
}

// InitStatsPollPool sizes the worker pool used for the per-switch counter
// requests. Without it the monitor issues requests inline.
func InitStatsPollPool(size int) {
	goroutine_pool.InitPool(goroutine_pool.StatsPollPool, size, executeStatsPoll)
}

// Run polls until the context is canceled. The first round fires
// immediately so the facade has data one interval after startup.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	log.Infof("stats monitor started, interval %v", m.interval)
	m.pollAll(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info("stats monitor stopping")
			return
		case <-ticker.C:
			m.pollAll(ctx)
		}
	}
}

func (m *Monitor) pollAll(ctx context.Context) {
	snap := m.store.Snapshot()
	var wg sync.WaitGroup
	for _, id := range snap.Nodes() {
		id := id
		m.dispatch(&wg, func() { m.pollSwitch(ctx, id) })
	}
	wg.Wait()
}

func (m *Monitor) pollSwitch(ctx context.Context, id int) {
	if err := m.requester.RequestPortCounters(ctx, id); err != nil {
		log.Errorf("request port counters s%d: %v", id, err)
	}
	if err := m.requester.RequestFlowCounters(ctx, id); err != nil {
		log.Errorf("request flow counters s%d: %v", id, err)
	}
}

// HandlePortCounters ingests a port-stats reply from the protocol engine.
func (m *Monitor) HandlePortCounters(switchID int, counters []southbound.PortCounters) {
	m.samples.RecordPortCounters(switchID, counters, time.Now())
}

// HandleFlowCounters ingests a flow-stats reply from the protocol engine.
func (m *Monitor) HandleFlowCounters(switchID int, entries []southbound.FlowCounterEntry) {
	m.samples.RecordFlowCounters(switchID, entries)
}

type statsPollTask struct {
	run func()
	wg  *sync.WaitGroup
}

func executeStatsPoll(arg interface{}) {
	task, ok := arg.(*statsPollTask)
	if !ok {
		log.Errorf("stats poll pool received unexpected payload %T", arg)
		return
	}
	defer task.wg.Done()
	task.run()
}

func (m *Monitor) dispatch(wg *sync.WaitGroup, fn func()) {
	wg.Add(1)
	if pool := goroutine_pool.GetPool(goroutine_pool.StatsPollPool); pool != nil {
		if err := pool.Invoke(&statsPollTask{run: fn, wg: wg}); err == nil {
			return
		}
	}
	fn()
	wg.Done()
}
