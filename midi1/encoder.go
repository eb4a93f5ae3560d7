package midi1

import (
	"io"
	"time"
)

// Running-status transmit defaults. Even with running status active the
// status byte is retransmitted every maxRun'th message so a receiver that
// joins mid-stream or drops a byte resynchronizes, and after the timeout so
// long idle gaps do the same. MIDI recommendations suggest ~300 ms.
const (
	DefaultStatusTimeout = 300 * time.Millisecond
	DefaultStatusMaxRun  = 16
)

// Encoder emits MIDI1.0 bytes to a byte sink, eliding the status byte when
// running-status rules allow. The underlying transport carries no
// acknowledgment, so the send methods return nothing; write errors are the
// sink's problem. An Encoder is owned by a single goroutine.
type Encoder struct {
	w             io.ByteWriter
	runningStatus byte
	count         int
	lastStatusAt  time.Time

	timeout              time.Duration
	maxRun               int
	runningStatusEnabled bool

	now func() time.Time // injectable for tests
}

// NewEncoder returns an encoder writing to w with running status enabled
// and the default timeout and run length. The timeout clock starts in the
// past so the very first message always carries its status byte.
func NewEncoder(w io.ByteWriter) *Encoder {
	e := &Encoder{
		w:                    w,
		timeout:              DefaultStatusTimeout,
		maxRun:               DefaultStatusMaxRun,
		runningStatusEnabled: true,
		now:                  time.Now,
	}
	e.lastStatusAt = e.now().Add(-e.timeout - time.Second)
	return e
}

// SetRunningStatus switches transmit-side running status on or off. Some
// non-standard MIDI1.0 gear cannot follow elided status bytes.
func (e *Encoder) SetRunningStatus(enabled bool) {
	e.runningStatusEnabled = enabled
}

// SetStatusTimeout overrides the retransmission timeout. Zero or negative
// values keep the default.
func (e *Encoder) SetStatusTimeout(d time.Duration) {
	if d > 0 {
		e.timeout = d
	}
}

// SetStatusMaxRun overrides how many messages may share one status byte.
func (e *Encoder) SetStatusMaxRun(n int) {
	if n > 0 {
		e.maxRun = n
	}
}

// needStatus decides whether the status byte must be (re)transmitted before
// the next data bytes.
func (e *Encoder) needStatus(status byte) bool {
	if !e.runningStatusEnabled {
		return true
	}
	return e.now().Sub(e.lastStatusAt) > e.timeout ||
		status != e.runningStatus ||
		e.count >= e.maxRun
}

// channelVoice writes one channel voice message, eliding status when
// allowed. data holds the one or two data bytes, already validated.
func (e *Encoder) channelVoice(status byte, data ...byte) {
	if e.needStatus(status) {
		e.w.WriteByte(status)
		e.runningStatus = status
		e.count = 0
		e.lastStatusAt = e.now()
	}
	for _, c := range data {
		e.w.WriteByte(c)
	}
	e.count++
}

// NoteOn sends a note on. Channel is masked to 4 bits; out-of-range key or
// velocity values are silently dropped.
func (e *Encoder) NoteOn(channel, key, velocity uint8) {
	if key > 127 || velocity > 127 {
		return
	}
	e.channelVoice(NoteOn|channel&0x0F, key, velocity)
}

// NoteOff sends a note off. The note-off velocity may alter the timbre of
// the release on synths that support it.
func (e *Encoder) NoteOff(channel, key, velocity uint8) {
	if key > 127 || velocity > 127 {
		return
	}
	e.channelVoice(NoteOff|channel&0x0F, key, velocity)
}

// ControlChange sends a controller value. Running status matters most here:
// smooth control sweeps are the dense case on a 31250-baud link.
func (e *Encoder) ControlChange(channel, controller, value uint8) {
	if controller > 127 || value > 127 {
		return
	}
	e.channelVoice(ControlChange|channel&0x0F, controller, value)
}

// ProgramChange sends a program change (single data byte).
func (e *Encoder) ProgramChange(channel, program uint8) {
	if program > 127 {
		return
	}
	e.channelVoice(ProgramChange|channel&0x0F, program)
}

// ChannelAftertouch sends channel pressure (single data byte).
func (e *Encoder) ChannelAftertouch(channel, pressure uint8) {
	if pressure > 127 {
		return
	}
	e.channelVoice(ChannelAftertouch|channel&0x0F, pressure)
}

// PolyAftertouch sends per-key pressure.
func (e *Encoder) PolyAftertouch(channel, key, pressure uint8) {
	if key > 127 || pressure > 127 {
		return
	}
	e.channelVoice(PolyAftertouch|channel&0x0F, key, pressure)
}

// PitchWheel sends a 14-bit pitch bend value, LSB first then MSB.
func (e *Encoder) PitchWheel(channel uint8, value uint16) {
	if value > PitchWheelMax {
		return
	}
	e.channelVoice(PitchWheel|channel&0x0F, byte(value&0x7F), byte(value>>7&0x7F))
}

// ModWheel sends a 14-bit modulation value as two control changes, MSB
// controller then LSB controller.
func (e *Encoder) ModWheel(channel uint8, value uint16) {
	if value > PitchWheelMax {
		return
	}
	e.ControlChange(channel, CtlModWheelMSB, byte(value>>7&0x7F))
	e.ControlChange(channel, CtlModWheelLSB, byte(value&0x7F))
}

// System realtime messages are single bytes and leave running status
// untouched, as they may interleave anywhere in the stream.

func (e *Encoder) TimingClock()   { e.w.WriteByte(TimingClock) }
func (e *Encoder) Start()         { e.w.WriteByte(Start) }
func (e *Encoder) Continue()      { e.w.WriteByte(Continue) }
func (e *Encoder) Stop()          { e.w.WriteByte(Stop) }
func (e *Encoder) ActiveSensing() { e.w.WriteByte(ActiveSensing) }
func (e *Encoder) Reset()         { e.w.WriteByte(Reset) }

// SysexStart opens a system exclusive message.
func (e *Encoder) SysexStart() { e.w.WriteByte(SysexStart) }

// SysexByte writes one sysex payload byte. Bytes with bit 7 set are not
// valid sysex payload and are ignored.
func (e *Encoder) SysexByte(c byte) {
	if c&StatusMask == 0 {
		e.w.WriteByte(c)
	}
}

// SysexBytes writes a sysex payload in bulk.
func (e *Encoder) SysexBytes(data []byte) {
	for _, c := range data {
		e.SysexByte(c)
	}
}

// SysexStop closes a system exclusive message.
func (e *Encoder) SysexStop() { e.w.WriteByte(SysexEnd) }
