package supervisor

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the generated configuration in ConfigDir.
const ConfigFileName = "paracord-livekit.yaml"

// RuntimeConfig is the subset of the signaling server's configuration the
// gateway generates.
type RuntimeConfig struct {
	Port    int               `yaml:"port"`
	RTC     RTCConfig         `yaml:"rtc"`
	Keys    map[string]string `yaml:"keys"`
	TURN    *TURNConfig       `yaml:"turn,omitempty"`
	Logging LoggingConfig     `yaml:"logging"`
}

// RTCConfig configures media transport. The TCP fallback uses port+1 and UDP
// media uses port+2 through port+12.
type RTCConfig struct {
	UseExternalIP  bool   `yaml:"use_external_ip"`
	NodeIP         string `yaml:"node_ip,omitempty"`
	PortRangeStart int    `yaml:"port_range_start"`
	PortRangeEnd   int    `yaml:"port_range_end"`
	TCPPort        int    `yaml:"tcp_port"`
}

// TURNConfig enables the embedded TURN relay. It is only emitted when the
// public address is known, so clients behind strict NATs can relay media
// without STUN discovery.
type TURNConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Domain      string `yaml:"domain"`
	TLSPort     int    `yaml:"tls_port"`
	UDPPort     int    `yaml:"udp_port"`
	ExternalTLS bool   `yaml:"external_tls"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// BuildConfig derives the runtime configuration from opts.
func BuildConfig(opts Options) RuntimeConfig {
	turnPort := opts.Port + 1

	cfg := RuntimeConfig{
		Port: opts.Port,
		RTC: RTCConfig{
			UseExternalIP:  true,
			NodeIP:         opts.ExternalIP,
			PortRangeStart: opts.Port + 2,
			PortRangeEnd:   opts.Port + 12,
			TCPPort:        turnPort,
		},
		Keys:    map[string]string{opts.APIKey: opts.APISecret},
		Logging: LoggingConfig{Level: "info"},
	}

	if opts.ExternalIP != "" {
		cfg.TURN = &TURNConfig{
			Enabled: true,
			Domain:  opts.ExternalIP,
			UDPPort: turnPort,
		}
	}

	return cfg
}

// RenderConfig marshals the runtime configuration as YAML.
func RenderConfig(opts Options) ([]byte, error) {
	data, err := yaml.Marshal(BuildConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to render signaling config: %w", err)
	}
	return data, nil
}

// WriteConfig renders the configuration into dir and returns its path. The
// file holds the API secret and is written 0600.
func WriteConfig(dir string, opts Options) (string, error) {
	data, err := RenderConfig(opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write signaling config: %w", err)
	}
	return path, nil
}
