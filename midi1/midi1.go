// Package midi1 implements the MIDI1.0 serial wire protocol: a
// byte-at-a-time receive parser and a transmit encoder, both honoring the
// running-status convention of the MIDI1.0 specification. Running status is
// mandatory on receive; on transmit it is an optional bandwidth optimization
// for 31250-baud serial links and can be switched off for non-conforming
// gear.
package midi1

// Status byte masks. A byte with bit 7 set is a status byte, everything
// else is data.
const (
	StatusMask   byte = 0x80
	DataMax      byte = 0x7F
	RealtimeMask byte = 0xF8
	CommonMask   byte = 0xF0
)

// Channel voice status bytes (high nibble, channel in the low nibble).
const (
	NoteOff           byte = 0x80
	NoteOn            byte = 0x90
	PolyAftertouch    byte = 0xA0
	ControlChange     byte = 0xB0
	ProgramChange     byte = 0xC0
	ChannelAftertouch byte = 0xD0
	PitchWheel        byte = 0xE0
)

// System common status bytes.
const (
	SysexStart  byte = 0xF0
	TuneRequest byte = 0xF6
	SysexEnd    byte = 0xF7
)

// System realtime status bytes. These may interleave anywhere in the
// stream, including inside sysex.
const (
	TimingClock   byte = 0xF8
	Start         byte = 0xFA
	Continue      byte = 0xFB
	Stop          byte = 0xFC
	ActiveSensing byte = 0xFE
	Reset         byte = 0xFF
)

// Controller numbers used by the encoder.
const (
	CtlModWheelMSB byte = 0x01
	CtlModWheelLSB byte = 0x21
)

// Pitch wheel range. 16384 is 2^14, the maximum 14-bit bend value.
const (
	PitchWheelCenter = 8192
	PitchWheelMax    = 16383
)
