// Package hr is the heart-rate boundary. Measurements arrive as small
// (flags, bpm) notifications from whatever transport delivers them; this
// package decodes them and feeds the shared model.
package hr

import (
	"context"
	"errors"

	"midi-humanclock/model"
)

// Measurement is one decoded heart-rate notification.
type Measurement struct {
	Flags uint8
	Bpm   uint8
}

// ErrShortNotification is returned for payloads under two bytes.
var ErrShortNotification = errors.New("hr: notification too short")

// ParseNotification decodes a raw notification payload. The first byte is
// the flags field, the second the rate in BPM. Trailing bytes (RR
// intervals, energy expended) are ignored.
func ParseNotification(p []byte) (Measurement, error) {
	if len(p) < 2 {
		return Measurement{}, ErrShortNotification
	}
	return Measurement{Flags: p[0], Bpm: p[1]}, nil
}

// Monitor consumes measurements until the channel closes or the context is
// cancelled, marking the model connected on the first measurement and
// disconnected on the way out.
func Monitor(ctx context.Context, in <-chan Measurement, m *model.Model) {
	defer m.SetHeartRateConnected(false)
	for {
		select {
		case <-ctx.Done():
			return
		case meas, ok := <-in:
			if !ok {
				return
			}
			m.Set(true, uint16(meas.Bpm), 0, 0, 0)
		}
	}
}
