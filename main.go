package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"controlplane/api"
	"controlplane/goroutine_pool"
	"controlplane/routing"
	"controlplane/southbound"
	"controlplane/statesync"
	"controlplane/stats"
	"controlplane/structs"
	"controlplane/topology"
)

// log init
func init() {
	logDir := "./logs"
	os.MkdirAll(logDir, 0755)

	// Configure log rotation with lumberjack
	fileLogger := &lumberjack.Logger{
		Filename:   logDir + "/controlplane.log",
		MaxSize:    100,  // MB
		MaxBackups: 7,    // Keep 7 old log files
		MaxAge:     30,   // Days
		Compress:   true, // Compress old log files
	}

	multiWriter := io.MultiWriter(os.Stdout, fileLogger)
	log.SetOutput(multiWriter)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	log.Infof("Logging initialized: file=%s/controlplane.log, stdout=enabled", logDir)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	go func() {
		<-shutdownSignal
		log.Infof("Received shutdown signal. Initiating graceful shutdown...")
		cancel()
	}()

	configPath := os.Getenv("CONTROLPLANE_CONFIG")
	if configPath == "" {
		configPath = "controlplane_config.toml"
	}

	cfg, err := structs.LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load configuration from %s (%v), using defaults", configPath, err)
		cfg = structs.DefaultConfig()
	}

	bandwidth := topology.NewBandwidthTable(cfg.Network.DefaultBandwidthMbps)
	for _, entry := range cfg.Bandwidth {
		bandwidth.Override(entry.A, entry.B, entry.Mbps)
	}

	store := topology.NewStore(bandwidth, topology.SubtractLinkPorts)
	samples := stats.NewSampleStore()

	// The OpenFlow protocol engine attaches here: it implements the
	// southbound interfaces, feeds Manager.HandleEvent with topology
	// events, and hands counter replies to Monitor.HandlePortCounters /
	// HandleFlowCounters. NullEngine keeps the controller runnable (and
	// the REST facade serving an empty topology) until one is wired in.
	var engine southbound.NullEngine

	installer := &routing.Installer{
		NumHosts:   cfg.Network.NumHosts,
		HostPrefix: cfg.Network.HostPrefix,
	}
	manager := routing.NewManager(store, engine, engine, installer)
	monitor := stats.NewMonitor(store, samples, engine,
		time.Duration(cfg.Monitor.IntervalSeconds)*time.Second)

	routing.InitFlowPushPool(cfg.Pool.FlowPushSize)
	stats.InitStatsPollPool(cfg.Pool.StatsPollSize)
	defer goroutine_pool.ReleaseAllPools()

	wg.Add(1)
	go func() {
		defer wg.Done()
		manager.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		monitor.Run(ctx)
	}()

	if len(cfg.Etcd.Endpoints) > 0 {
		publisher, err := statesync.NewPublisher(cfg.Etcd.Endpoints, store, samples,
			time.Duration(cfg.Etcd.SyncIntervalSeconds)*time.Second)
		if err != nil {
			log.Errorf("statesync disabled: %v", err)
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer publisher.Close()
				publisher.Run(ctx)
			}()
		}
	}

	handlers := &api.Handlers{
		Store:      store,
		Samples:    samples,
		Manager:    manager,
		HostPrefix: cfg.Network.HostPrefix,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		api.RunServerWithContext(ctx, cfg.Api.Port, handlers)
	}()

	// Kick off an initial cycle so the base rules land even before the
	// first topology event arrives.
	manager.Trigger(routing.TriggerReinstall)

	wg.Wait()
	log.Info("All services stopped. Exiting.")
}
