// Package engine ties the receive side together: a byte pump feeding the
// MIDI parser through a bounded queue, the clock recovery path (measurer
// plus PLL) driven by timing-clock bytes, and a line queue of human-readable
// event descriptions for the display to drain.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"midi-humanclock/debug"
	"midi-humanclock/midi1"
	"midi-humanclock/model"
	"midi-humanclock/tempo"
)

// ByteSource delivers raw MIDI bytes one at a time. Implementations block
// until a byte is available or return an error when the link is gone.
type ByteSource interface {
	ReadByte() (byte, error)
}

// Queue capacities. Producers never block on a full queue; the newest item
// is dropped and counted instead, because buffering MIDI adds audible lag.
const (
	DefaultByteQueueSize = 256
	DefaultLineQueueSize = 64
)

// Engine owns the parser, measurer and PLL. All of their state is touched
// only from the Run goroutine; the shared model is the one hand-off point.
type Engine struct {
	src    ByteSource
	parser *midi1.Parser
	meas   *tempo.Measurer
	pll    *tempo.PLL
	mdl    *model.Model

	bytes chan byte
	lines chan string

	droppedBytes atomic.Uint64
	droppedLines atomic.Uint64

	// OnEvent, when set before Run, sees every decoded event. Called from
	// the parse goroutine; must not block.
	OnEvent func(midi1.Event)
}

// New wires an engine. All dependencies are required.
func New(src ByteSource, meas *tempo.Measurer, pll *tempo.PLL, mdl *model.Model) (*Engine, error) {
	if src == nil {
		return nil, errors.New("engine: nil byte source")
	}
	if meas == nil || pll == nil {
		return nil, errors.New("engine: nil tempo stage")
	}
	if mdl == nil {
		return nil, errors.New("engine: nil model")
	}
	return &Engine{
		src:    src,
		parser: midi1.NewParser(),
		meas:   meas,
		pll:    pll,
		mdl:    mdl,
		bytes:  make(chan byte, DefaultByteQueueSize),
		lines:  make(chan string, DefaultLineQueueSize),
	}, nil
}

// Lines is the display queue. The consumer drains it with zero-wait polls
// or a select; the engine never blocks producing into it.
func (e *Engine) Lines() <-chan string {
	return e.lines
}

// DroppedBytes reports how many incoming bytes were lost to a full queue.
func (e *Engine) DroppedBytes() uint64 {
	return e.droppedBytes.Load()
}

// DroppedLines reports how many display lines were lost to a full queue.
func (e *Engine) DroppedLines() uint64 {
	return e.droppedLines.Load()
}

// Run pumps bytes from the source and parses them until the source fails
// or the context is cancelled. The pump goroutine is the producer side of
// the byte queue; this goroutine is the single consumer and the only one
// touching parser, measurer and PLL state.
func (e *Engine) Run(ctx context.Context) error {
	readErr := make(chan error, 1)
	go func() {
		for {
			b, err := e.src.ReadByte()
			if err != nil {
				readErr <- err
				return
			}
			e.pushByte(b)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			e.drain()
			return fmt.Errorf("engine: byte source: %w", err)
		case b := <-e.bytes:
			if ev, ok := e.parser.Feed(b); ok {
				e.handle(ev)
			}
		}
	}
}

// drain parses whatever is still queued when the source goes away.
func (e *Engine) drain() {
	for {
		select {
		case b := <-e.bytes:
			if ev, ok := e.parser.Feed(b); ok {
				e.handle(ev)
			}
		default:
			return
		}
	}
}

func (e *Engine) handle(ev midi1.Event) {
	if e.OnEvent != nil {
		e.OnEvent(ev)
	}
	switch ev.Type {
	case midi1.EventRealtime:
		e.handleRealtime(ev.Status)
	case midi1.EventNoteOn:
		e.pushLine(fmt.Sprintf("CH: %d -> Note   on: %s %03d %03d",
			ev.Channel+1, midi1.NoteName(ev.Data1), ev.Data1, ev.Data2))
	case midi1.EventNoteOff:
		e.pushLine(fmt.Sprintf("CH: %d -> Note  off: %s %03d %03d",
			ev.Channel+1, midi1.NoteName(ev.Data1), ev.Data1, ev.Data2))
	case midi1.EventControlChange:
		e.pushLine(fmt.Sprintf("CH: %d -> CC: %d value: %d",
			ev.Channel+1, ev.Data1, ev.Data2))
	case midi1.EventPitchWheel:
		e.pushLine(fmt.Sprintf("CH: %d -> Pitchwheel: %d",
			ev.Channel+1, ev.Wheel()))
	case midi1.EventProgramChange:
		e.pushLine(fmt.Sprintf("CH: %d -> Program: %d",
			ev.Channel+1, ev.Data1))
	case midi1.EventChannelAftertouch:
		e.pushLine(fmt.Sprintf("CH: %d -> Aftertouch: %d",
			ev.Channel+1, ev.Data1))
	case midi1.EventPolyAftertouch:
		e.pushLine(fmt.Sprintf("CH: %d -> Poly AT: %03d %03d",
			ev.Channel+1, ev.Data1, ev.Data2))
	case midi1.EventSysexStart:
		debug.Log("midi", "sysex start")
	case midi1.EventSysexData:
		debug.LogEvery(64, "midi", "sysex data %02x", ev.Data1)
	case midi1.EventSysexStop:
		debug.Log("midi", "sysex stop")
	}
}

// handleRealtime runs the clock recovery path. Every timing-clock byte
// advances the measurer; once its window is full, the averaged interval
// drives the PLL and the model gets fresh estimates.
func (e *Engine) handleRealtime(status byte) {
	switch status {
	case midi1.TimingClock:
		sbpm, valid := e.meas.OnPulse()
		// The PLL tracks every raw measured interval; only the averaged
		// estimate waits for the window to fill. Priming and rejected
		// pulses produce no fresh interval and feed nothing.
		if !e.meas.IntervalAccepted() {
			return
		}
		e.pll.ProcessInterval(e.meas.LastIntervalTicks())
		// Beat LED period: 24 pulses per quarter note, in milliseconds.
		ledMs := uint32(uint64(e.pll.IntervalUs()) * tempo.PPQN / 1000)
		var measSbpm tempo.ScaledBpm
		if valid {
			measSbpm = sbpm
		}
		e.mdl.Set(false, 0, measSbpm, e.pll.Sbpm(), ledMs)
	case midi1.Start, midi1.Continue:
		e.mdl.SetLedStatus(model.LedOn)
		e.pushLine("Clock: start")
	case midi1.Stop:
		e.mdl.SetLedStatus(model.LedOff)
		e.pushLine("Clock: stop")
	case midi1.ActiveSensing:
		// Keep-alives are frequent and carry no information worth showing.
	case midi1.Reset:
		e.parser.Reset()
		e.meas.Reset()
		e.pushLine("Clock: reset")
	}
}

func (e *Engine) pushByte(b byte) {
	select {
	case e.bytes <- b:
	default:
		e.droppedBytes.Add(1)
	}
}

func (e *Engine) pushLine(s string) {
	select {
	case e.lines <- s:
	default:
		e.droppedLines.Add(1)
	}
}
