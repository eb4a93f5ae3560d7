// Package tempo implements the clock-recovery pipeline: scaled-BPM
// fixed-point arithmetic, the sliding block average, the clock pulse
// measurer, and the integer PLL that turns jittery MIDI clock intervals
// into a stable tempo estimate.
//
// All arithmetic is integer-only. Tempo is carried as BPM x 100 in a uint16
// so the same code runs on targets without an FPU; 123.10 BPM is 12310 and
// the ceiling is 655.35 BPM.
package tempo

import "fmt"

// ScaledBpm is a tempo in hundredths of a BPM. Zero means "no valid
// estimate".
type ScaledBpm uint16

const (
	BpmScale    = 100
	UsPerSecond = 1_000_000
	// PPQN is the MIDI clock rate: 24 pulses per quarter note.
	PPQN = 24
)

// pulseNumerator is (60 * 1e6 * 100) / 24: dividing it by a per-pulse
// interval in microseconds yields scaled BPM, and vice versa.
const pulseNumerator = 60 * UsPerSecond * BpmScale / PPQN

// String formats the tempo as "NNN.NN".
func (b ScaledBpm) String() string {
	return fmt.Sprintf("%d.%02d", b/BpmScale, b%BpmScale)
}

// SbpmToUsInterval returns the 24-PPQN pulse interval in microseconds for a
// tempo, or 0 for an unknown tempo.
func SbpmToUsInterval(sbpm ScaledBpm) uint32 {
	if sbpm == 0 {
		return 0
	}
	return pulseNumerator / uint32(sbpm)
}

// UsIntervalToSbpm converts a measured 24-PPQN pulse interval to scaled
// BPM, saturating at the uint16 ceiling. A zero interval yields 0.
func UsIntervalToSbpm(intervalUs uint32) ScaledBpm {
	if intervalUs == 0 {
		return 0
	}
	sbpm := pulseNumerator / intervalUs
	if sbpm > 0xFFFF {
		sbpm = 0xFFFF
	}
	return ScaledBpm(sbpm)
}

// SbpmToTicks returns the 24-PPQN pulse interval in hardware clock ticks
// for a tempo on a counter running at clockHz.
func SbpmToTicks(sbpm ScaledBpm, clockHz uint32) uint32 {
	return uint32(uint64(SbpmToUsInterval(sbpm)) * uint64(clockHz) / UsPerSecond)
}

// UsIntervalTo24PQN converts a pulse interval to the quarter-note period in
// microseconds (24 pulses per quarter note).
func UsIntervalTo24PQN(intervalUs uint32) uint32 {
	return intervalUs * PPQN
}

// PQN24ToUsInterval converts a quarter-note period in microseconds to the
// per-pulse interval.
func PQN24ToUsInterval(pqn24 uint32) uint32 {
	return pqn24 / PPQN
}

// SbpmTo24PQN returns the quarter-note period in microseconds for a tempo,
// saturating at the uint32 ceiling for absurdly slow tempos.
func SbpmTo24PQN(sbpm ScaledBpm) uint32 {
	if sbpm == 0 {
		return 0
	}
	pqn := uint64(60) * UsPerSecond * BpmScale / uint64(sbpm)
	if pqn > 0xFFFFFFFF {
		pqn = 0xFFFFFFFF
	}
	return uint32(pqn)
}

// PQN24ToSbpm converts a quarter-note period in microseconds to scaled BPM.
func PQN24ToSbpm(pqn24 uint32) ScaledBpm {
	if pqn24 == 0 {
		return 0
	}
	sbpm := uint64(60) * UsPerSecond * BpmScale / uint64(pqn24)
	if sbpm > 0xFFFF {
		sbpm = 0xFFFF
	}
	return ScaledBpm(sbpm)
}
