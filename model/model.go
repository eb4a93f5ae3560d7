// Package model holds the shared tempo model: the one structure
// intentionally shared across the producer goroutines (MIDI clock
// recovery, heart-rate updates) and the rendering consumer. Everything
// else in the core is single-owner; this is the serialization point.
package model

import (
	"sync"
	"time"

	"midi-humanclock/tempo"
)

// LedStatus is the beat LED phase driven by the clock producer.
type LedStatus int

const (
	LedUndef LedStatus = iota
	LedOff
	LedOn
)

// Snapshot is a consistent copy of the model at one instant.
type Snapshot struct {
	HRConnected   bool
	HRBpm         uint16
	MeasSbpm      tempo.ScaledBpm
	PllSbpm       tempo.ScaledBpm
	LedIntervalMs uint32
	LedStatus     LedStatus
	LastUpdate    time.Time
}

// Model is the mutex-guarded tempo model. Get never observes a partially
// applied Set.
type Model struct {
	mu sync.Mutex
	s  Snapshot
}

// New returns an empty model: disconnected, no estimates.
func New() *Model {
	return &Model{}
}

// Set updates the model. A zero (or false) argument means "no new data for
// this field", not "clear it", so producers with disjoint fields never
// clobber each other. The update timestamp is always refreshed.
func (m *Model) Set(hrConnected bool, hrBpm uint16, measSbpm, pllSbpm tempo.ScaledBpm, ledIntervalMs uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hrConnected {
		m.s.HRConnected = true
	}
	if hrBpm != 0 {
		m.s.HRBpm = hrBpm
	}
	if measSbpm != 0 {
		m.s.MeasSbpm = measSbpm
	}
	if pllSbpm != 0 {
		m.s.PllSbpm = pllSbpm
	}
	if ledIntervalMs != 0 {
		m.s.LedIntervalMs = ledIntervalMs
	}
	m.s.LastUpdate = time.Now()
}

// SetHeartRateConnected records connect state explicitly. Disconnect
// cannot ride through Set, where false means "no news".
func (m *Model) SetHeartRateConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.HRConnected = connected
	m.s.LastUpdate = time.Now()
}

// Get returns a full, internally consistent copy of the model.
func (m *Model) Get() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s
}

// LedStatus returns the current beat LED phase.
func (m *Model) LedStatus() LedStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.LedStatus
}

// SetLedStatus sets the beat LED phase.
func (m *Model) SetLedStatus(s LedStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.LedStatus = s
}
