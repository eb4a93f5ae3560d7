package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// InputKind selects where MIDI bytes come from.
type InputKind string

const (
	InputSerial InputKind = "serial"
	InputBridge InputKind = "bridge"
)

// SerialConfig defines the serial MIDI link.
type SerialConfig struct {
	Device string `json:"device,omitempty"`
	Baud   int    `json:"baud,omitempty"` // 0 means the MIDI rate, 31250
}

// BridgeConfig defines the host MIDI port bridge.
type BridgeConfig struct {
	InPort  string `json:"inPort,omitempty"` // substring match, empty = first port
	OutPort string `json:"outPort,omitempty"`
}

// TempoConfig tunes the clock recovery path.
type TempoConfig struct {
	AverageWindow   int `json:"averageWindow,omitempty"`
	PllFilterK      int `json:"pllFilterK,omitempty"`
	PllGain         int `json:"pllGain,omitempty"`
	PllTrackingGain int `json:"pllTrackingGain,omitempty"`
}

// TransmitConfig tunes the running-status encoder.
type TransmitConfig struct {
	RunningStatus   bool `json:"runningStatus"`
	StatusTimeoutMs int  `json:"statusTimeoutMs,omitempty"`
	StatusMaxRun    int  `json:"statusMaxRun,omitempty"`
}

// HeartRateConfig controls the heart-rate input.
type HeartRateConfig struct {
	Simulate    bool  `json:"simulate,omitempty"`
	SimulateLow uint8 `json:"simulateLow,omitempty"`
	SimulateHi  uint8 `json:"simulateHi,omitempty"`
}

// UIConfig stores UI preferences.
type UIConfig struct {
	MaxLines int    `json:"maxLines,omitempty"`
	Debug    bool   `json:"debug,omitempty"`
	Palette  string `json:"palette,omitempty"` // .gpl file path, empty = built-in
}

// Config is the main configuration structure.
type Config struct {
	Input     InputKind       `json:"input,omitempty"`
	Serial    SerialConfig    `json:"serial,omitempty"`
	Bridge    BridgeConfig    `json:"bridge,omitempty"`
	Tempo     TempoConfig     `json:"tempo,omitempty"`
	Transmit  TransmitConfig  `json:"transmit,omitempty"`
	HeartRate HeartRateConfig `json:"heartRate,omitempty"`
	UI        UIConfig        `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputBridge,
		Serial: SerialConfig{
			Device: "/dev/ttyUSB0",
		},
		Tempo: TempoConfig{
			AverageWindow: 48,
		},
		Transmit: TransmitConfig{
			RunningStatus:   true,
			StatusTimeoutMs: 300,
			StatusMaxRun:    16,
		},
		HeartRate: HeartRateConfig{
			SimulateLow: 60,
			SimulateHi:  90,
		},
		UI: UIConfig{
			MaxLines: 8,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "midi-humanclock"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
