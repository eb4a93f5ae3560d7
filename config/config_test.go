package config

import (
	"encoding/json"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Input != InputBridge {
		t.Errorf("Input = %q, want bridge", cfg.Input)
	}
	if cfg.Tempo.AverageWindow != 48 {
		t.Errorf("AverageWindow = %d, want 48", cfg.Tempo.AverageWindow)
	}
	if !cfg.Transmit.RunningStatus {
		t.Error("running status disabled by default")
	}
	if cfg.Transmit.StatusTimeoutMs != 300 || cfg.Transmit.StatusMaxRun != 16 {
		t.Errorf("transmit defaults = %+v", cfg.Transmit)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input = InputSerial
	cfg.Serial.Device = "/dev/ttyAMA0"
	cfg.Tempo.PllFilterK = 8
	cfg.UI.Palette = "/tmp/plasma.gpl"

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var got Config
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Input != InputSerial || got.Serial.Device != "/dev/ttyAMA0" {
		t.Errorf("got %+v", got)
	}
	if got.Tempo.PllFilterK != 8 {
		t.Errorf("PllFilterK = %d, want 8", got.Tempo.PllFilterK)
	}
	if got.UI.Palette != "/tmp/plasma.gpl" {
		t.Errorf("Palette = %q, want /tmp/plasma.gpl", got.UI.Palette)
	}
}
