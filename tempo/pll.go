package tempo

// PLL loop filter defaults. Keep the low-pass strength high enough to damp
// per-pulse jitter while still following deliberate tempo changes; keep the
// correction gain low so the fast loop moves toward the measurement without
// overshooting. The tracking gain is the slow loop: a much larger divisor
// so bursts of jitter do not permanently shift the baseline tempo.
const (
	DefaultFilterK      = 4
	DefaultGain         = 4
	DefaultTrackingGain = 32

	// defaultNominalTicks is an arbitrary mid-tempo starting interval; the
	// slow loop pulls it toward the real tempo within a few beats.
	defaultNominalTicks = 503000
)

// PLL is a second-order discrete tracking loop over measured 24-PPQN tick
// intervals. Unlike the block average, it produces a continuously updated
// estimate suitable for driving an output clock generator tick by tick.
//
// All divisions truncate toward zero; the loop's settling time and
// steady-state ripple depend on that, so the arithmetic must not be
// "improved" with rounding.
//
// A PLL is owned by a single goroutine.
type PLL struct {
	k            int32
	gain         int32
	trackingGain int32

	nominal   int32 // slow loop: long-term interval estimate
	internal  int32 // fast loop: phase-corrected interval
	filtered  int32 // low-pass-filtered interval error
	clockFreq uint32
}

// NewPLL returns a PLL with the default loop gains. Call Init before
// processing intervals.
func NewPLL() *PLL {
	return &PLL{
		k:            DefaultFilterK,
		gain:         DefaultGain,
		trackingGain: DefaultTrackingGain,
	}
}

// SetGains overrides the loop constants. Zero values keep the current
// setting.
func (p *PLL) SetGains(filterK, gain, trackingGain int) {
	if filterK > 0 {
		p.k = int32(filterK)
	}
	if gain > 0 {
		p.gain = int32(gain)
	}
	if trackingGain > 0 {
		p.trackingGain = int32(trackingGain)
	}
}

// Init arms the loop: nominal and internal intervals start at the default
// mid-tempo value, the filtered error at zero. clockFreq is the tick rate
// of the counter the measured intervals come from.
func (p *PLL) Init(clockFreq uint32) {
	p.nominal = defaultNominalTicks
	p.internal = defaultNominalTicks
	p.filtered = 0
	p.clockFreq = clockFreq
}

// ProcessInterval feeds one measured inter-pulse interval in counter
// ticks. Zero intervals are bogus measurements and are ignored.
func (p *PLL) ProcessInterval(measuredTicks uint32) {
	if measuredTicks == 0 {
		return
	}

	// 1. Interval error: measured - internal
	err := int32(measuredTicks) - p.internal

	// 2. Low-pass filter the error
	p.filtered += (err - p.filtered) / p.k

	// 3. Adjust the fast loop around the nominal interval
	p.internal = p.nominal + p.filtered/p.gain

	// 4. Slow tracking: let the nominal interval follow the long-term
	// average by a small fraction of the filtered error each pulse.
	p.nominal += p.filtered / p.trackingGain
}

// IntervalTicks returns the nominal 24-PPQN interval in counter ticks.
func (p *PLL) IntervalTicks() int32 { return p.nominal }

// IntervalUs returns the nominal interval in microseconds, or 0 when the
// loop was never initialized with a clock frequency.
func (p *PLL) IntervalUs() uint32 {
	if p.clockFreq == 0 {
		return 0
	}
	return uint32(int64(p.nominal) * UsPerSecond / int64(p.clockFreq))
}

// Sbpm returns the loop's tempo estimate as scaled BPM, 0 when
// uninitialized.
func (p *PLL) Sbpm() ScaledBpm {
	return UsIntervalToSbpm(p.IntervalUs())
}
