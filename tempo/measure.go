package tempo

import (
	"errors"

	"midi-humanclock/tick"
)

// Measurer timestamps external MIDI clock pulses against a free-running
// tick counter and derives a scaled-BPM estimate from the block-averaged
// inter-pulse interval. Call OnPulse exactly once per received timing clock
// byte (0xF8).
//
// Validity is sticky: once the averaging window has filled, Valid stays
// true until an explicit Reset, so a transient gap in the clock stream
// shows as a stale estimate rather than flapping back to "unknown".
//
// A Measurer is owned by a single goroutine.
type Measurer struct {
	src tick.Source
	avg *BlockAverage

	lastTS       uint32
	primed       bool
	lastInterval uint32
	accepted     bool
	sbpm         ScaledBpm
	valid        bool
}

// ErrNoTickSource is returned when the measurer is constructed without a
// usable counter.
var ErrNoTickSource = errors.New("tempo: tick source missing or has zero frequency")

// NewMeasurer returns a measurer over src with the given averaging window
// (values below 1 use DefaultWindow). The source must report a non-zero
// frequency; a dead counter fails construction rather than corrupting
// every later measurement.
func NewMeasurer(src tick.Source, window int) (*Measurer, error) {
	if src == nil || src.Frequency() == 0 {
		return nil, ErrNoTickSource
	}
	return &Measurer{
		src: src,
		avg: NewBlockAverage(window),
	}, nil
}

// Reset returns the measurer to its initial state: no prior timestamp,
// empty window, estimate invalid.
func (m *Measurer) Reset() {
	m.avg.Reset()
	m.lastTS = 0
	m.primed = false
	m.lastInterval = 0
	m.accepted = false
	m.sbpm = 0
	m.valid = false
}

// OnPulse records one external clock pulse. It returns the current tempo
// estimate and whether it is valid yet; the estimate only becomes valid
// once the averaging window has filled.
func (m *Measurer) OnPulse() (ScaledBpm, bool) {
	now := m.src.Now()
	m.accepted = false

	// First pulse after (re)initialization: no previous timestamp yet.
	if !m.primed {
		m.primed = true
		m.lastTS = now
		return m.estimate()
	}

	interval := tick.Elapsed(m.src, m.lastTS, now)
	m.lastTS = now

	// Reject zero intervals so the BPM math cannot divide by zero.
	if interval == 0 {
		return m.estimate()
	}
	m.lastInterval = interval

	if tick.TicksToUs(m.src, interval) == 0 {
		return m.estimate()
	}

	m.avg.Add(interval)
	m.accepted = true

	if m.avg.Count() == m.avg.Cap() {
		avgUs := tick.TicksToUs(m.src, m.avg.Average())
		if avgUs != 0 {
			m.sbpm = UsIntervalToSbpm(avgUs)
			m.valid = true
		}
	}
	return m.estimate()
}

func (m *Measurer) estimate() (ScaledBpm, bool) {
	if !m.valid {
		return 0, false
	}
	return m.sbpm, true
}

// Sbpm returns the current estimate, or 0 while not yet valid.
func (m *Measurer) Sbpm() ScaledBpm {
	sbpm, _ := m.estimate()
	return sbpm
}

// Valid reports whether a full averaging window has been accumulated.
func (m *Measurer) Valid() bool { return m.valid }

// IntervalAccepted reports whether the most recent OnPulse yielded a fresh
// usable interval. The first pulse only primes the timestamp and zero
// intervals are rejected, in which cases LastIntervalTicks still holds the
// previous value; check this before reusing it downstream.
func (m *Measurer) IntervalAccepted() bool { return m.accepted }

// LastIntervalTicks returns the most recent accepted inter-pulse interval
// in counter ticks, 0 before the second pulse.
func (m *Measurer) LastIntervalTicks() uint32 { return m.lastInterval }

// LastIntervalUs returns the most recent accepted interval in microseconds.
func (m *Measurer) LastIntervalUs() uint32 {
	return tick.TicksToUs(m.src, m.lastInterval)
}

// ClockFrequency returns the underlying counter's tick rate in Hz.
func (m *Measurer) ClockFrequency() uint32 { return m.src.Frequency() }
