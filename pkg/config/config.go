// Package config loads node configuration from a YAML file, environment
// variables, and defaults, the same precedence order and viper/mapstructure
// wiring the corpus's own pkg/config uses for its server config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config is a node's full static configuration.
//
// Precedence, highest to lowest:
//  1. Environment variables (FABRICDB_*), for keys the configuration file sets
//  2. Configuration file (YAML)
//  3. Defaults
//
// When no configuration file is found, the defaults are used as they are and
// the environment is not read.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Syncer  SyncerConfig  `mapstructure:"syncer" yaml:"syncer"`
	DHT     DHTConfig     `mapstructure:"dht" yaml:"dht"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Admin   AdminConfig   `mapstructure:"admin" yaml:"admin"`
	Fabric  FabricConfig  `mapstructure:"fabric" yaml:"fabric"`
	NodeID  uint64        `mapstructure:"node_id" yaml:"node_id"`
	VNodes  []uint16      `mapstructure:"vnodes" yaml:"vnodes"`
	// Peers lists the static peers the syncer and DHT loops run rounds
	// against. The list is fixed for the life of the process; DHT gossip
	// does not add peers to it.
	Peers []string `mapstructure:"peers" yaml:"peers"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// StorageConfig controls the embedded engine.
type StorageConfig struct {
	Path                   string        `mapstructure:"path" yaml:"path"`
	BlockCacheSize         int64         `mapstructure:"block_cache_size" yaml:"block_cache_size"`
	MemTableSize           int64         `mapstructure:"mem_table_size" yaml:"mem_table_size"`
	NumMemtables           int           `mapstructure:"num_memtables" yaml:"num_memtables"`
	NumCompactors          int           `mapstructure:"num_compactors" yaml:"num_compactors"`
	SyncWrites             bool          `mapstructure:"sync_writes" yaml:"sync_writes"`
	ValueLogGCInterval     time.Duration `mapstructure:"value_log_gc_interval" yaml:"value_log_gc_interval"`
	ValueLogGCDiscardRatio float64       `mapstructure:"value_log_gc_discard_ratio" yaml:"value_log_gc_discard_ratio"`
}

// SyncerConfig controls the anti-entropy driver.
type SyncerConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// DHTConfig controls the gossip loop.
type DHTConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// MetricsConfig holds settings for a Prometheus metrics endpoint. fabricnode
// does not read them: it serves /metrics on the admin address.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// AdminConfig controls the admin/health HTTP surface.
type AdminConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// FabricConfig controls the inbound fabric message HTTP surface peers send
// CRUD, sync, and DHT messages to.
type FabricConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Default returns a Config with the node's baked-in defaults.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "INFO", Format: "text", Output: "stdout"},
		Storage: StorageConfig{
			Path:                   "./data",
			BlockCacheSize:         128 << 20,
			MemTableSize:           32 << 20,
			NumMemtables:           4,
			NumCompactors:          4,
			SyncWrites:             false,
			ValueLogGCInterval:     5 * time.Minute,
			ValueLogGCDiscardRatio: 0.5,
		},
		Syncer:  SyncerConfig{Interval: 30 * time.Second},
		DHT:     DHTConfig{Interval: 10 * time.Second},
		Metrics: MetricsConfig{Enabled: true, Addr: ":9090"},
		Admin:   AdminConfig{Addr: ":8080"},
		Fabric:  FabricConfig{Addr: ":7070"},
	}
}

// Load reads configuration from configPath (if non-empty and present),
// fills in defaults for anything the file leaves unset, and lets environment
// variables override the keys the file sets. If no file is found it returns
// Default() without reading the environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if !found {
		return cfg, nil
	}

	if err := v.Unmarshal(cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("FABRICDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(".")
	v.SetConfigName("fabricnode")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("config: read: %w", err)
	}
	return true, nil
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// Save writes cfg to path as YAML.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}

	data, err := marshalYAML(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}
