package midi1

// EventType identifies a parsed MIDI event
type EventType int

const (
	EventNone EventType = iota
	EventNoteOn
	EventNoteOff
	EventControlChange
	EventProgramChange
	EventChannelAftertouch
	EventPolyAftertouch
	EventPitchWheel
	EventRealtime
	EventTuneRequest
	EventSysexStart
	EventSysexData
	EventSysexStop
)

// Event is a decoded MIDI message. Which fields are meaningful depends on
// Type: channel voice events use Channel plus Data1/Data2, realtime events
// carry the raw status byte in Status, sysex data carries one byte in Data1.
type Event struct {
	Type    EventType
	Channel uint8 // 0-15, so channel 1 is 0
	Data1   uint8
	Data2   uint8
	Status  uint8 // raw byte for EventRealtime
}

// Wheel returns the 14-bit pitch wheel value centered on zero. Only
// meaningful for EventPitchWheel.
func (e Event) Wheel() int16 {
	return int16(uint16(e.Data2)<<7|uint16(e.Data1)) - PitchWheelCenter
}

func (t EventType) String() string {
	switch t {
	case EventNoteOn:
		return "note on"
	case EventNoteOff:
		return "note off"
	case EventControlChange:
		return "control change"
	case EventProgramChange:
		return "program change"
	case EventChannelAftertouch:
		return "channel aftertouch"
	case EventPolyAftertouch:
		return "poly aftertouch"
	case EventPitchWheel:
		return "pitchwheel"
	case EventRealtime:
		return "realtime"
	case EventTuneRequest:
		return "tune request"
	case EventSysexStart:
		return "sysex start"
	case EventSysexData:
		return "sysex data"
	case EventSysexStop:
		return "sysex stop"
	default:
		return "none"
	}
}
