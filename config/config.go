// Package config contains statesync node configuration definitions.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/clustermesh/statesync/p2p"
	"github.com/clustermesh/statesync/syncer"
)

// Config defines the top level configuration for a statesync node.
type Config struct {
	BaseConfig `mapstructure:"main"`
	Syncer     syncer.Config `mapstructure:"syncer"`
	P2P        p2p.Config    `mapstructure:"p2p"`
	Logging    LoggerConfig  `mapstructure:"logging"`
}

// BaseConfig defines process-wide options.
type BaseConfig struct {
	ConfigFile string `mapstructure:"config"`

	CollectMetrics bool `mapstructure:"metrics"`
	MetricsPort    int  `mapstructure:"metrics-port"`
}

// DefaultConfig returns the default configuration for a statesync node.
func DefaultConfig() Config {
	return Config{
		BaseConfig: BaseConfig{
			MetricsPort: 9090,
		},
		Syncer:  syncer.DefaultConfig(),
		P2P:     p2p.DefaultConfig(),
		Logging: defaultLoggingConfig(),
	}
}

// LoadConfig reads the config file into conf, leaving defaults in place
// for anything the file does not set.
func LoadConfig(path string, vip *viper.Viper, conf *Config) error {
	vip.SetConfigFile(path)
	if err := vip.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := vip.Unmarshal(conf, hook); err != nil {
		return fmt.Errorf("unmarshal config file %s: %w", path, err)
	}
	return nil
}
