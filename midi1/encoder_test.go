package midi1

import (
	"bytes"
	"testing"
	"time"
)

// fakeClock is an adjustable time source for the encoder's status timeout.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestEncoder() (*Encoder, *bytes.Buffer, *fakeClock) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	clk := &fakeClock{t: time.Unix(1000, 0)}
	e.now = clk.now
	// First message must always carry status.
	e.lastStatusAt = clk.t.Add(-time.Hour)
	return e, &buf, clk
}

func countStatus(data []byte, status byte) int {
	n := 0
	for _, c := range data {
		if c == status {
			n++
		}
	}
	return n
}

func TestEncoderRunningStatusElision(t *testing.T) {
	e, buf, _ := newTestEncoder()

	e.NoteOn(0, 60, 100)
	e.NoteOn(0, 62, 100)
	e.NoteOn(0, 64, 100)

	want := []byte{0x90, 60, 100, 62, 100, 64, 100}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("expected % X, got % X", want, buf.Bytes())
	}
}

func TestEncoderRunLengthLimit(t *testing.T) {
	e, buf, _ := newTestEncoder()
	e.SetStatusMaxRun(3)

	for i := 0; i < 4; i++ {
		e.ControlChange(0, 1, uint8(i))
	}
	// Status on the first call, elided for two more, re-sent on the fourth.
	if n := countStatus(buf.Bytes(), 0xB0); n != 2 {
		t.Errorf("expected 2 status bytes, got %d (% X)", n, buf.Bytes())
	}
}

func TestEncoderDefaultRunLength(t *testing.T) {
	e, buf, _ := newTestEncoder()

	for i := 0; i < 17; i++ {
		e.ControlChange(0, 1, 10)
	}
	if n := countStatus(buf.Bytes(), 0xB0); n != 2 {
		t.Errorf("expected status resend after %d messages, got %d status bytes", DefaultStatusMaxRun, n)
	}
}

func TestEncoderStatusTimeout(t *testing.T) {
	e, buf, clk := newTestEncoder()

	e.NoteOn(0, 60, 100)
	clk.advance(301 * time.Millisecond)
	e.NoteOn(0, 62, 100)

	if n := countStatus(buf.Bytes(), 0x90); n != 2 {
		t.Errorf("expected status resend after timeout, got %d status bytes (% X)", n, buf.Bytes())
	}
}

func TestEncoderStatusChange(t *testing.T) {
	e, buf, _ := newTestEncoder()

	e.NoteOn(0, 60, 100)
	e.NoteOff(0, 60, 0)

	want := []byte{0x90, 60, 100, 0x80, 60, 0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("expected % X, got % X", want, buf.Bytes())
	}
}

func TestEncoderRunningStatusDisabled(t *testing.T) {
	e, buf, _ := newTestEncoder()
	e.SetRunningStatus(false)

	e.NoteOn(0, 60, 100)
	e.NoteOn(0, 62, 100)

	if n := countStatus(buf.Bytes(), 0x90); n != 2 {
		t.Errorf("expected a status byte per message, got %d", n)
	}
}

func TestEncoderDropsOutOfRange(t *testing.T) {
	e, buf, _ := newTestEncoder()

	e.NoteOn(0, 128, 100)
	e.NoteOn(0, 60, 200)
	e.ControlChange(0, 200, 1)
	e.PitchWheel(0, PitchWheelMax+1)

	if buf.Len() != 0 {
		t.Errorf("bogus values must emit nothing, got % X", buf.Bytes())
	}
}

func TestEncoderChannelMask(t *testing.T) {
	e, buf, _ := newTestEncoder()

	e.NoteOn(0x1F, 60, 100)
	if buf.Bytes()[0] != 0x9F {
		t.Errorf("channel must be masked to 4 bits, got status %02X", buf.Bytes()[0])
	}
}

func TestEncoderPitchWheelByteOrder(t *testing.T) {
	e, buf, _ := newTestEncoder()

	e.PitchWheel(2, PitchWheelCenter)
	want := []byte{0xE2, 0x00, 0x40} // LSB first, then MSB
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("expected % X, got % X", want, buf.Bytes())
	}
}

func TestEncoderModWheel(t *testing.T) {
	e, buf, _ := newTestEncoder()

	e.ModWheel(0, 0x2003) // MSB 0x40, LSB 0x03
	// Second control change shares running status with the first.
	want := []byte{0xB0, CtlModWheelMSB, 0x40, CtlModWheelLSB, 0x03}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("expected % X, got % X", want, buf.Bytes())
	}
}

func TestEncoderRealtime(t *testing.T) {
	e, buf, _ := newTestEncoder()

	e.NoteOn(0, 60, 100)
	e.TimingClock()
	// Realtime must not disturb running status.
	e.NoteOn(0, 62, 100)

	want := []byte{0x90, 60, 100, 0xF8, 62, 100}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("expected % X, got % X", want, buf.Bytes())
	}
}

func TestEncoderSysexFiltersStatusBytes(t *testing.T) {
	e, buf, _ := newTestEncoder()

	e.SysexStart()
	e.SysexBytes([]byte{0x01, 0x81, 0x02})
	e.SysexStop()

	want := []byte{0xF0, 0x01, 0x02, 0xF7}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("expected % X, got % X", want, buf.Bytes())
	}
}
