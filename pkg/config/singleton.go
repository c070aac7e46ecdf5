package config

import "sync"

var (
	globalConfig *Config
	configMutex  sync.RWMutex
)

// Initialize loads configuration from path with environment overrides and
// installs it as the process-wide configuration. Calling it again replaces
// the previous value only when loading succeeds.
func Initialize(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return err
	}
	SetConfig(cfg)
	return nil
}

// GetConfig returns the process-wide configuration, or nil before Initialize.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig replaces the process-wide configuration. Intended for tests and
// for Initialize.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}
