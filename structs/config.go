package structs

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

// Config holds the overall configuration structure mapping to controlplane_config.toml
type Config struct {
	Api       ApiConfig        `toml:"api"`
	Monitor   MonitorConfig    `toml:"monitor"`
	Network   NetworkConfig    `toml:"network"`
	Pool      PoolConfig       `toml:"pool"`
	Etcd      EtcdConfig       `toml:"etcd"`
	Bandwidth []BandwidthEntry `toml:"bandwidth"`
}

// ApiConfig holds the REST facade listen parameters
type ApiConfig struct {
	Port int `toml:"port"`
}

// MonitorConfig controls the statistics poll loop
type MonitorConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

// NetworkConfig describes the fixed host population
type NetworkConfig struct {
	NumHosts             int     `toml:"num_hosts"`
	HostPrefix           string  `toml:"host_prefix"`
	DefaultBandwidthMbps float64 `toml:"default_bandwidth_mbps"`
}

// PoolConfig sizes the goroutine pools used for southbound fan-out
type PoolConfig struct {
	FlowPushSize  int `toml:"flow_push_size"`
	StatsPollSize int `toml:"stats_poll_size"`
}

// EtcdConfig enables the optional state publisher when Endpoints is non-empty
type EtcdConfig struct {
	Endpoints           []string `toml:"endpoints"`
	SyncIntervalSeconds int      `toml:"sync_interval_seconds"`
}

// BandwidthEntry maps to one [[bandwidth]] override item in TOML
type BandwidthEntry struct {
	A    int     `toml:"a"`
	B    int     `toml:"b"`
	Mbps float64 `toml:"mbps"`
}

// DefaultConfig returns the built-in defaults matching the NSFNET lab setup.
func DefaultConfig() *Config {
	return &Config{
		Api:     ApiConfig{Port: 8080},
		Monitor: MonitorConfig{IntervalSeconds: 5},
		Network: NetworkConfig{
			NumHosts:             14,
			HostPrefix:           "10.0.0",
			DefaultBandwidthMbps: 10,
		},
		Pool: PoolConfig{FlowPushSize: 32, StatsPollSize: 16},
		Etcd: EtcdConfig{SyncIntervalSeconds: 10},
	}
}

// LoadConfig reads the TOML configuration file, layering it over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error getting absolute path for %s: %w", path, err)
	}

	log.Infof("Attempting to load configuration from: %s", absPath)

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("error decoding TOML file %s: %w", path, err)
	}
	return cfg, nil
}
