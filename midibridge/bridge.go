// Package midibridge adapts host MIDI ports (via gomidi/rtmidi) to the raw
// byte-stream interfaces the rest of the core speaks: an input port becomes
// a blocking byte source, an output port becomes a byte writer that
// reassembles complete messages before handing them to the driver.
package midibridge

import (
	"errors"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"midi-humanclock/midi1"
)

// ErrPortClosed is returned from ReadByte after Close.
var ErrPortClosed = errors.New("midibridge: port closed")

const inputQueueSize = 1024

// InPort turns a gomidi input into a blocking byte stream. The driver
// callback is the producer and must never block, so overflow drops bytes
// and counts them.
type InPort struct {
	name    string
	stop    func()
	bytes   chan byte
	done    chan struct{}
	dropped atomic.Uint64
}

func newInPort(port drivers.In) (*InPort, error) {
	p := &InPort{
		name:  port.String(),
		bytes: make(chan byte, inputQueueSize),
		done:  make(chan struct{}),
	}
	stop, err := gomidi.ListenTo(port, func(msg gomidi.Message, timestampms int32) {
		for _, b := range msg.Bytes() {
			select {
			case p.bytes <- b:
			default:
				p.dropped.Add(1)
			}
		}
	}, gomidi.UseSysEx(), gomidi.UseTimeCode(), gomidi.UseActiveSense())
	if err != nil {
		return nil, err
	}
	p.stop = stop
	return p, nil
}

// Name returns the port name as reported by the driver.
func (p *InPort) Name() string { return p.name }

// ReadByte blocks until a byte arrives or the port is closed.
func (p *InPort) ReadByte() (byte, error) {
	select {
	case b := <-p.bytes:
		return b, nil
	case <-p.done:
		return 0, ErrPortClosed
	}
}

// Dropped reports bytes lost to a full input queue.
func (p *InPort) Dropped() uint64 {
	return p.dropped.Load()
}

// Close stops listening. A blocked ReadByte returns ErrPortClosed.
func (p *InPort) Close() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	if p.stop != nil {
		p.stop()
	}
	close(p.done)
	return nil
}

// OutPort writes encoder output to a gomidi output. Host drivers want
// whole messages, not a byte stream, so bytes are buffered until a message
// completes. Feed it from an encoder with running status disabled.
type OutPort struct {
	send func(msg gomidi.Message) error
	asm  assembler
}

// OpenOut opens the named output port (substring match, case-insensitive).
func OpenOut(name string) (*OutPort, error) {
	port, err := gomidi.FindOutPort(name)
	if err != nil {
		return nil, err
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, err
	}
	return &OutPort{send: send}, nil
}

// WriteByte feeds one byte; a completed message is sent to the driver.
func (o *OutPort) WriteByte(b byte) error {
	msg, ok := o.asm.feed(b)
	if !ok {
		return nil
	}
	return o.send(gomidi.Message(msg))
}

// assembler regroups a raw byte stream into complete MIDI messages.
// Realtime bytes pass through immediately, even mid-message.
type assembler struct {
	buf  []byte
	need int
}

func (a *assembler) feed(b byte) ([]byte, bool) {
	if b >= midi1.TimingClock {
		return []byte{b}, true
	}
	if b&midi1.StatusMask != 0 {
		if b == midi1.SysexEnd && len(a.buf) > 0 && a.buf[0] == midi1.SysexStart {
			msg := append(a.buf, b)
			a.buf = nil
			return msg, true
		}
		a.buf = []byte{b}
		a.need = messageLength(b)
		if a.need == 1 {
			a.buf = nil
			return []byte{b}, true
		}
		return nil, false
	}
	if len(a.buf) == 0 {
		// Data byte with no pending status: nothing to frame.
		return nil, false
	}
	a.buf = append(a.buf, b)
	if a.buf[0] == midi1.SysexStart {
		return nil, false
	}
	if len(a.buf) == a.need {
		msg := a.buf
		a.buf = nil
		return msg, true
	}
	return nil, false
}

// messageLength is the total byte count for a status, 0 for variable
// length (sysex).
func messageLength(status byte) int {
	if status < midi1.SysexStart {
		switch status & 0xF0 {
		case midi1.ProgramChange, midi1.ChannelAftertouch:
			return 2
		default:
			return 3
		}
	}
	switch status {
	case midi1.SysexStart:
		return 0
	case 0xF1, 0xF3:
		return 2
	case 0xF2:
		return 3
	default:
		return 1
	}
}
