package midi1

// Parser reconstructs MIDI messages from a raw serial byte stream. It is a
// strict state machine: feed it one byte at a time and it emits at most one
// event per byte. Running status is honored, system realtime bytes pass
// through any state (including sysex) untouched, and malformed sequences
// are absorbed silently. The contract is "never crash, never misattribute a
// byte to the wrong channel", not "detect all malformations" — real-world
// MIDI links are lossy.
//
// A Parser is owned by a single goroutine; it does no locking of its own.
type Parser struct {
	runningStatus byte
	data1         byte
	awaitingThird bool
	inSysex       bool
}

// NewParser returns a parser with no established running status.
func NewParser() *Parser {
	return &Parser{}
}

// Reset drops all parser state, returning to "no running status". Use for
// explicit re-initialization; construction already starts clean.
func (p *Parser) Reset() {
	p.runningStatus = 0
	p.data1 = 0
	p.awaitingThird = false
	p.inSysex = false
}

// Feed consumes one byte from the stream. It returns the decoded event and
// true when the byte completes a message; otherwise ok is false and the
// byte has only advanced internal state (or been discarded).
func (p *Parser) Feed(c byte) (ev Event, ok bool) {
	if c&StatusMask != 0 {
		return p.feedStatus(c)
	}
	return p.feedData(c)
}

func (p *Parser) feedStatus(c byte) (Event, bool) {
	// Realtime bytes (0xF8-0xFF) may interleave inside any other message,
	// including sysex, and alter no state.
	if c >= RealtimeMask {
		return Event{Type: EventRealtime, Status: c}, true
	}

	// Any new status byte inside sysex ends the sysex (start received but
	// no stop).
	p.inSysex = false
	p.runningStatus = c
	p.awaitingThird = false

	switch c {
	case TuneRequest:
		return Event{Type: EventTuneRequest}, true
	case SysexStart:
		p.inSysex = true
		return Event{Type: EventSysexStart}, true
	case SysexEnd:
		return Event{Type: EventSysexStop}, true
	}
	// Channel voice status or an unsupported system common (0xF1-0xF5):
	// accepted as running status, no event until data follows.
	return Event{}, false
}

func (p *Parser) feedData(c byte) (Event, bool) {
	if p.inSysex {
		return Event{Type: EventSysexData, Data1: c}, true
	}

	if p.awaitingThird {
		p.awaitingThird = false
		command := p.runningStatus & CommonMask
		channel := p.runningStatus & ^CommonMask

		switch command {
		case NoteOn:
			if c == 0 {
				// Velocity-zero note on is a note off by convention
				// (MIDI1.0 spec page A2), which is what lets senders keep
				// running status across on/off pairs.
				return Event{Type: EventNoteOff, Channel: channel, Data1: p.data1, Data2: c}, true
			}
			return Event{Type: EventNoteOn, Channel: channel, Data1: p.data1, Data2: c}, true
		case NoteOff:
			return Event{Type: EventNoteOff, Channel: channel, Data1: p.data1, Data2: c}, true
		case ControlChange:
			return Event{Type: EventControlChange, Channel: channel, Data1: p.data1, Data2: c}, true
		case PolyAftertouch:
			return Event{Type: EventPolyAftertouch, Channel: channel, Data1: p.data1, Data2: c}, true
		case PitchWheel:
			return Event{Type: EventPitchWheel, Channel: channel, Data1: p.data1, Data2: c}, true
		}
		// Ignore unknown
		return Event{}, false
	}

	switch {
	case p.runningStatus == 0:
		// Data byte with no established running status is discarded.
		return Event{}, false
	case p.runningStatus < ProgramChange:
		// 0x80-0xBF: first of two data bytes.
		p.data1 = c
		p.awaitingThird = true
		return Event{}, false
	case p.runningStatus < PitchWheel:
		// 0xC0-0xDF: single data byte, message complete.
		channel := p.runningStatus & ^CommonMask
		if p.runningStatus&CommonMask == ProgramChange {
			return Event{Type: EventProgramChange, Channel: channel, Data1: c}, true
		}
		return Event{Type: EventChannelAftertouch, Channel: channel, Data1: c}, true
	case p.runningStatus < SysexStart:
		// 0xE0-0xEF: pitch wheel, first of two data bytes (LSB).
		p.data1 = c
		p.awaitingThird = true
		return Event{}, false
	default:
		// Data following an unsupported system common status (0xF1-0xF5):
		// drop the byte and clear running status.
		p.runningStatus = 0
		return Event{}, false
	}
}
