package engine

import (
	"context"
	"time"

	"midi-humanclock/midi1"
	"midi-humanclock/model"
	"midi-humanclock/tempo"
)

// RunClockGen emits MIDI timing clock at the heart-rate tempo: 24 pulses
// per quarter note at the last BPM seen in the model. With no heart rate
// yet it stays silent and checks again every second.
func RunClockGen(ctx context.Context, enc *midi1.Encoder, mdl *model.Model) error {
	started := false
	for {
		s := mdl.Get()
		sbpm := tempo.ScaledBpm(s.HRBpm) * tempo.BpmScale
		if sbpm == 0 {
			if started {
				enc.Stop()
				started = false
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		if !started {
			enc.Start()
			started = true
		}
		enc.TimingClock()

		interval := time.Duration(tempo.SbpmToUsInterval(sbpm)) * time.Microsecond
		select {
		case <-ctx.Done():
			if started {
				enc.Stop()
			}
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
