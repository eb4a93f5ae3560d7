package midi1

import "testing"

// feedAll feeds a byte sequence and collects the emitted events.
func feedAll(p *Parser, bytes []byte) []Event {
	var events []Event
	for _, c := range bytes {
		if ev, ok := p.Feed(c); ok {
			events = append(events, ev)
		}
	}
	return events
}

func TestParserNoteOn(t *testing.T) {
	p := NewParser()
	events := feedAll(p, []byte{0x90, 0x40, 0x7F})
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Type != EventNoteOn || ev.Channel != 0 || ev.Data1 != 64 || ev.Data2 != 127 {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestParserRunningStatusZeroVelocity(t *testing.T) {
	p := NewParser()
	feedAll(p, []byte{0x90, 0x40, 0x7F})

	// Running status: no status byte, velocity zero means note off.
	events := feedAll(p, []byte{0x50, 0x00})
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Type != EventNoteOff || ev.Channel != 0 || ev.Data1 != 80 || ev.Data2 != 0 {
		t.Errorf("expected note off ch0 key80 vel0, got %+v", ev)
	}
}

func TestParserDataByteWithoutStatus(t *testing.T) {
	p := NewParser()
	if events := feedAll(p, []byte{0x40, 0x7F, 0x12}); len(events) != 0 {
		t.Fatalf("orphan data bytes must be discarded, got %d events", len(events))
	}
	// State must be unchanged: a full message still parses.
	events := feedAll(p, []byte{0x91, 0x30, 0x60})
	if len(events) != 1 || events[0].Type != EventNoteOn || events[0].Channel != 1 {
		t.Errorf("parser state corrupted by orphan data: %+v", events)
	}
}

func TestParserRealtimeInterleaved(t *testing.T) {
	p := NewParser()
	// Timing clock arrives between the data bytes of a note on.
	events := feedAll(p, []byte{0x90, 0x40, 0xF8, 0x7F})
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventRealtime || events[0].Status != TimingClock {
		t.Errorf("expected realtime clock first, got %+v", events[0])
	}
	if events[1].Type != EventNoteOn || events[1].Data1 != 64 || events[1].Data2 != 127 {
		t.Errorf("note on must survive interleaved realtime, got %+v", events[1])
	}
}

func TestParserSysex(t *testing.T) {
	p := NewParser()
	events := feedAll(p, []byte{0xF0, 0x01, 0x02, 0xFE, 0x03, 0xF7})
	want := []EventType{
		EventSysexStart, EventSysexData, EventSysexData,
		EventRealtime, EventSysexData, EventSysexStop,
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d: %+v", len(want), len(events), events)
	}
	for i, typ := range want {
		if events[i].Type != typ {
			t.Errorf("event %d: expected %v, got %v", i, typ, events[i].Type)
		}
	}
	if events[4].Data1 != 0x03 {
		t.Errorf("sysex data byte lost: %+v", events[4])
	}
}

func TestParserStatusInsideSysex(t *testing.T) {
	p := NewParser()
	// A new status byte inside sysex resets the sysex flag.
	events := feedAll(p, []byte{0xF0, 0x01, 0x92, 0x40, 0x10})
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	last := events[2]
	if last.Type != EventNoteOn || last.Channel != 2 {
		t.Errorf("message after aborted sysex must parse, got %+v", last)
	}
}

func TestParserProgramChange(t *testing.T) {
	p := NewParser()
	events := feedAll(p, []byte{0xC3, 0x05, 0x06})
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventProgramChange || events[0].Channel != 3 || events[0].Data1 != 5 {
		t.Errorf("unexpected first program change: %+v", events[0])
	}
	// Second data byte is a running-status program change.
	if events[1].Type != EventProgramChange || events[1].Data1 != 6 {
		t.Errorf("running-status program change lost: %+v", events[1])
	}
}

func TestParserChannelAftertouch(t *testing.T) {
	p := NewParser()
	events := feedAll(p, []byte{0xD1, 0x33})
	if len(events) != 1 || events[0].Type != EventChannelAftertouch ||
		events[0].Channel != 1 || events[0].Data1 != 0x33 {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestParserPitchWheel(t *testing.T) {
	p := NewParser()
	events := feedAll(p, []byte{0xE0, 0x00, 0x40}) // center
	if len(events) != 1 || events[0].Type != EventPitchWheel {
		t.Fatalf("unexpected events: %+v", events)
	}
	if w := events[0].Wheel(); w != 0 {
		t.Errorf("center pitch wheel should be 0, got %d", w)
	}
}

func TestParserUnsupportedSystemCommon(t *testing.T) {
	p := NewParser()
	// 0xF2 is accepted as running status but produces no terminal event;
	// the data byte that follows clears running status.
	if events := feedAll(p, []byte{0xF2, 0x10, 0x20}); len(events) != 0 {
		t.Fatalf("0xF2 must be silent, got %+v", events)
	}
	// Running status is now cleared: lone data bytes stay discarded.
	if events := feedAll(p, []byte{0x55}); len(events) != 0 {
		t.Fatalf("data after cleared running status must be discarded, got %+v", events)
	}
}

func TestParserTuneRequest(t *testing.T) {
	p := NewParser()
	events := feedAll(p, []byte{0xF6})
	if len(events) != 1 || events[0].Type != EventTuneRequest {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestParserReset(t *testing.T) {
	p := NewParser()
	feedAll(p, []byte{0x90, 0x40})
	p.Reset()
	// The pending message must not complete after a reset.
	if events := feedAll(p, []byte{0x7F}); len(events) != 0 {
		t.Errorf("reset must drop pending state, got %+v", events)
	}
}
