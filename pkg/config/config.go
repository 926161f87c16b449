// Package config loads the storage engine's runtime configuration from
// the environment, with an optional YAML file providing defaults the
// environment can still override.
//
// Example Usage:
//
//	cfg, err := config.LoadFromEnv(nil)
//	if err != nil {
//		log.Fatalf("invalid config: %v", err)
//	}
//
//	fmt.Printf("data dir: %s\n", cfg.DataDirectory)
//
// Environment Variables:
//
//   - MEMGRAPH_DATA_DIRECTORY: directory for WAL and durability files.
//   - MEMGRAPH_WORKER_ID: this process's worker id (0 on the master).
//   - MEMGRAPH_RPC_ADDRESS: address the master listens on, or the
//     address a worker dials.
//   - MEMGRAPH_DURABILITY_ENABLED: "true"/"false", enables the WAL.
//   - MEMGRAPH_STATSD_ADDRESS: StatsD collector address, or empty to
//     disable metric emission.
//   - MEMGRAPH_IS_MASTER: "true"/"false", whether this process issues
//     transaction ids itself or proxies to a master.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the settings a memgraphd process needs to start.
type Config struct {
	DataDirectory      string `yaml:"data_directory"`
	WorkerID           uint64 `yaml:"worker_id"`
	RPCAddress         string `yaml:"rpc_address"`
	DurabilityEnabled  bool   `yaml:"durability_enabled"`
	StatsdAddress      string `yaml:"statsd_address"`
	IsMaster           bool   `yaml:"is_master"`
}

// Defaults returns the configuration used when neither a file nor the
// environment sets a field.
func Defaults() *Config {
	return &Config{
		DataDirectory:     "./data",
		WorkerID:          0,
		RPCAddress:        "127.0.0.1:9031",
		DurabilityEnabled: true,
		StatsdAddress:     "",
		IsMaster:          true,
	}
}

// LoadFromFile reads a YAML file and overlays it on Defaults(). It is
// meant to be called before LoadFromEnv so that environment variables
// remain the final word.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv builds a Config from base (or Defaults() if base is nil)
// and overrides every field with its MEMGRAPH_* environment variable
// when present.
func LoadFromEnv(base *Config) (*Config, error) {
	cfg := base
	if cfg == nil {
		cfg = Defaults()
	} else {
		clone := *cfg
		cfg = &clone
	}

	cfg.DataDirectory = getEnv("MEMGRAPH_DATA_DIRECTORY", cfg.DataDirectory)
	cfg.RPCAddress = getEnv("MEMGRAPH_RPC_ADDRESS", cfg.RPCAddress)
	cfg.StatsdAddress = getEnv("MEMGRAPH_STATSD_ADDRESS", cfg.StatsdAddress)
	cfg.DurabilityEnabled = getEnvBool("MEMGRAPH_DURABILITY_ENABLED", cfg.DurabilityEnabled)
	cfg.IsMaster = getEnvBool("MEMGRAPH_IS_MASTER", cfg.IsMaster)

	if raw, ok := os.LookupEnv("MEMGRAPH_WORKER_ID"); ok {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: MEMGRAPH_WORKER_ID: %w", err)
		}
		cfg.WorkerID = id
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports whether cfg is internally consistent enough to
// start a process with: a worker (non-master) needs somewhere to dial,
// and every process needs a data directory even if durability is off,
// since snapshot-dump and recovery both read it.
func (c *Config) Validate() error {
	if c.DataDirectory == "" {
		return fmt.Errorf("config: data directory must not be empty")
	}
	if !c.IsMaster && c.RPCAddress == "" {
		return fmt.Errorf("config: worker requires MEMGRAPH_RPC_ADDRESS")
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{DataDirectory:%s WorkerID:%d RPCAddress:%s DurabilityEnabled:%v StatsdAddress:%s IsMaster:%v}",
		c.DataDirectory, c.WorkerID, c.RPCAddress, c.DurabilityEnabled, c.StatsdAddress, c.IsMaster,
	)
}

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return defaultVal
	}
}
