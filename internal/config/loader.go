package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the syncer config at path. ${VAR} references anywhere in the
// file, typically database.postgres.password or database.driver, are
// replaced from the environment before parsing; unset variables become "".
// No defaults are applied.
func Load(path string) (*SyncerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg SyncerConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadWithDefaults is Load followed by ApplyDefaults, so an empty api,
// sync or scheduler section yields the Naver/KRX sources, a 100-page cap
// and a 17:00 daily run.
func LoadWithDefaults(path string) (*SyncerConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// LoadAndValidate is what the commands use: defaults, then Validate. The
// returned config names a usable store driver and a parseable anchor time.
func LoadAndValidate(path string) (*SyncerConfig, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
