package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"midi-humanclock/config"
	"midi-humanclock/debug"
	"midi-humanclock/engine"
	"midi-humanclock/hr"
	"midi-humanclock/midi1"
	"midi-humanclock/midibridge"
	"midi-humanclock/model"
	"midi-humanclock/serialmidi"
	"midi-humanclock/tempo"
	"midi-humanclock/theme"
	"midi-humanclock/tick"
	"midi-humanclock/tui"
)

// applyTransmit configures an encoder from the transmit settings. Running
// status only makes sense on a raw wire; message-framed transports always
// get the status byte since the driver assembles whole messages.
func applyTransmit(enc *midi1.Encoder, t config.TransmitConfig, wire bool) {
	enc.SetRunningStatus(wire && t.RunningStatus)
	if t.StatusTimeoutMs > 0 {
		enc.SetStatusTimeout(time.Duration(t.StatusTimeoutMs) * time.Millisecond)
	}
	if t.StatusMaxRun > 0 {
		enc.SetStatusMaxRun(t.StatusMaxRun)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.UI.Debug {
		debug.Enable()
		defer debug.Disable()
	}

	pal := theme.Default()
	if cfg.UI.Palette != "" {
		if p, err := theme.LoadGPL(cfg.UI.Palette); err != nil {
			debug.Log("theme", "palette %s: %v, using built-in", cfg.UI.Palette, err)
		} else {
			pal = p
		}
	}
	th := theme.New(pal)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Clock recovery chain: counter source -> measurer -> PLL.
	src := tick.NewSystemSource()
	meas, err := tempo.NewMeasurer(src, cfg.Tempo.AverageWindow)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	pll := tempo.NewPLL()
	pll.SetGains(cfg.Tempo.PllFilterK, cfg.Tempo.PllGain, cfg.Tempo.PllTrackingGain)
	pll.Init(src.Frequency())

	shared := model.New()

	// MIDI input: a serial UART or a host MIDI port via the bridge.
	var byteSrc engine.ByteSource
	var serialPort *serialmidi.Port
	switch cfg.Input {
	case config.InputSerial:
		port, err := serialmidi.Open(cfg.Serial.Device, cfg.Serial.Baud)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()
		serialPort = port
		byteSrc = port
	default:
		mgr := midibridge.NewManager(cfg.Bridge.InPort)
		go mgr.Run(ctx)
		go func() {
			for ev := range mgr.Events() {
				switch ev.Type {
				case midibridge.PortConnected:
					debug.Log("midi", "input connected: %s", ev.Name)
				case midibridge.PortDisconnected:
					debug.Log("midi", "input disconnected: %s", ev.Name)
				}
			}
		}()
		byteSrc = midibridge.NewSource(ctx, mgr)
	}

	eng, err := engine.New(byteSrc, meas, pll, shared)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	go func() {
		if err := eng.Run(ctx); err != nil && ctx.Err() == nil {
			debug.Log("engine", "stopped: %v", err)
		}
	}()

	// Heart-rate input. Only the simulator for now; a real BLE strap would
	// feed the same channel.
	if cfg.HeartRate.Simulate {
		hrChan := make(chan hr.Measurement, 8)
		go hr.Simulate(ctx, cfg.HeartRate.SimulateLow, cfg.HeartRate.SimulateHi, hrChan)
		go hr.Monitor(ctx, hrChan, shared)
	}

	// Clock output at the heart-rate tempo: back down the serial wire when
	// that is the link, otherwise to a configured host MIDI port.
	switch {
	case serialPort != nil:
		enc := midi1.NewEncoder(serialPort)
		applyTransmit(enc, cfg.Transmit, true)
		go engine.RunClockGen(ctx, enc, shared)
	case cfg.Bridge.OutPort != "":
		out, err := midibridge.OpenOut(cfg.Bridge.OutPort)
		if err != nil {
			fmt.Printf("Error opening MIDI out: %v\n", err)
			os.Exit(1)
		}
		enc := midi1.NewEncoder(out)
		applyTransmit(enc, cfg.Transmit, false)
		go engine.RunClockGen(ctx, enc, shared)
	}

	m := tui.NewModel(shared, eng, th, cfg.UI.MaxLines)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
