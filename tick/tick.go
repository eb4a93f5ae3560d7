// Package tick abstracts the free-running monotonic counter the clock
// recovery pipeline timestamps pulses with. Hardware counters come in both
// count-up and count-down flavors and wrap at 32 bits; consumers must do
// wraparound-safe unsigned subtraction in the direction the counter runs.
package tick

import "time"

// Source is a free-running monotonic tick counter.
type Source interface {
	// Now returns the current counter value. The value wraps at 32 bits.
	Now() uint32
	// Frequency returns the counter's tick rate in Hz.
	Frequency() uint32
	// CountsUp reports the counting direction. Some hardware timers count
	// down and cannot be changed.
	CountsUp() bool
}

// Elapsed returns the wrap-safe tick count between two counter readings,
// honoring the source's counting direction.
func Elapsed(src Source, prev, now uint32) uint32 {
	if src.CountsUp() {
		return now - prev
	}
	return prev - now
}

// TicksToUs converts a tick count on src to microseconds, with a 64-bit
// intermediate so large intervals don't overflow. Returns 0 for an
// uninitialized (zero-frequency) source.
func TicksToUs(src Source, ticks uint32) uint32 {
	freq := src.Frequency()
	if freq == 0 {
		return 0
	}
	return uint32(uint64(ticks) * 1_000_000 / uint64(freq))
}

// SystemSource is a Source backed by the Go runtime's monotonic clock,
// ticking at 1 MHz and counting up. It stands in for a hardware timer when
// the clock core runs on a host OS.
type SystemSource struct {
	start time.Time
}

// NewSystemSource returns a running system tick source.
func NewSystemSource() *SystemSource {
	return &SystemSource{start: time.Now()}
}

func (s *SystemSource) Now() uint32 {
	return uint32(time.Since(s.start).Microseconds())
}

func (s *SystemSource) Frequency() uint32 { return 1_000_000 }

func (s *SystemSource) CountsUp() bool { return true }
