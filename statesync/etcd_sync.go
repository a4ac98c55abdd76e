// Package statesync publishes the controller's derived state to etcd so
// the management plane (or any external consumer) can watch it without
// hitting the REST facade. It is optional: with no endpoints configured the
// controller runs without it.
package statesync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"

	"controlplane/stats"
	"controlplane/topology"
)

const (
	topologyKey  = "controlplane/topology"
	linkStatsKey = "controlplane/stats/links"

	putTimeout = 5 * time.Second
)

// Publisher pushes JSON snapshots of the topology and the derived link
// stats to etcd on a fixed interval.
type Publisher struct {
	client   *clientv3.Client
	store    *topology.Store
	samples  *stats.SampleStore
	interval time.Duration
}

func NewPublisher(endpoints []string, store *topology.Store,
	samples *stats.SampleStore, interval time.Duration) (*Publisher, error) {

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to etcd: %w", err)
	}

	log.Infof("statesync publisher connected to etcd %v", endpoints)
	return &Publisher{
		client:   client,
		store:    store,
		samples:  samples,
		interval: interval,
	}, nil
}

// Run publishes until the context is canceled. Publish failures are logged
// and retried on the next tick; they never stop the control loop.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("statesync publisher stopping")
			return
		case <-ticker.C:
			if err := p.publish(ctx); err != nil {
				log.Errorf("statesync publish: %v", err)
			}
		}
	}
}

func (p *Publisher) publish(ctx context.Context) error {
	snap := p.store.Snapshot()

	topo := map[string]interface{}{
		"mode":  snap.Mode.String(),
		"nodes": snap.Nodes(),
		"links": snap.Edges(),
	}
	if err := p.put(ctx, topologyKey, topo); err != nil {
		return err
	}
	return p.put(ctx, linkStatsKey, stats.DeriveLinkStats(snap, p.samples))
}

func (p *Publisher) put(ctx context.Context, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}

	putCtx, cancel := context.WithTimeout(ctx, putTimeout)
	defer cancel()

	if _, err := p.client.Put(putCtx, key, string(data)); err != nil {
		return fmt.Errorf("writing %s to etcd: %w", key, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if err := p.client.Close(); err != nil {
		log.Errorf("closing etcd client: %v", err)
	}
}
