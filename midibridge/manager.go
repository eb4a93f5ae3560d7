package midibridge

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// PortEvent is emitted when the watched input port appears or goes away.
type PortEvent struct {
	Type PortEventType
	Name string
	In   *InPort
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

// Manager watches the host MIDI inputs for a port whose name contains the
// match string and emits connect/disconnect events as it comes and goes.
type Manager struct {
	match    string
	mu       sync.RWMutex
	current  *InPort
	events   chan PortEvent
	pollRate time.Duration
}

// NewManager creates a manager watching for the named port. An empty match
// accepts the first input port found.
func NewManager(match string) *Manager {
	return &Manager{
		match:    strings.ToLower(match),
		events:   make(chan PortEvent, 16),
		pollRate: time.Second,
	}
}

// Events returns the connect/disconnect event channel.
func (m *Manager) Events() <-chan PortEvent {
	return m.events
}

// Current returns the connected input port, or nil.
func (m *Manager) Current() *InPort {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Run starts the polling loop (blocking - run in goroutine).
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.pollRate)
	defer ticker.Stop()

	// Initial scan
	m.scan()

	for {
		select {
		case <-ctx.Done():
			m.disconnect()
			close(m.events)
			return
		case <-ticker.C:
			m.scan()
		}
	}
}

func (m *Manager) scan() {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	var inPorts []drivers.In
	select {
	case inPorts = <-ch:
	case <-time.After(3 * time.Second):
		// CoreMIDI is hung - skip this scan
		return
	}

	var found drivers.In
	for i, port := range inPorts {
		if m.match == "" || strings.Contains(strings.ToLower(port.String()), m.match) {
			found = inPorts[i]
			break
		}
	}

	m.mu.RLock()
	current := m.current
	m.mu.RUnlock()

	if found == nil {
		if current != nil {
			m.disconnect()
		}
		return
	}
	if current != nil && current.Name() == found.String() {
		return
	}
	if current != nil {
		m.disconnect()
	}

	in, err := newInPort(found)
	if err != nil {
		return
	}
	m.mu.Lock()
	m.current = in
	m.mu.Unlock()
	m.publish(PortEvent{Type: PortConnected, Name: in.Name(), In: in})
}

// publish never blocks the poll loop; events nobody drains are shed.
func (m *Manager) publish(ev PortEvent) {
	select {
	case m.events <- ev:
	default:
	}
}

func (m *Manager) disconnect() {
	m.mu.Lock()
	current := m.current
	m.current = nil
	m.mu.Unlock()
	if current == nil {
		return
	}
	current.Close()
	m.publish(PortEvent{Type: PortDisconnected, Name: current.Name()})
}
