// Package serialmidi opens a UART as a raw MIDI byte stream. DIN MIDI runs
// at 31250 baud, 8N1; USB-serial adapters usually accept that rate too.
package serialmidi

import (
	"bufio"
	"fmt"

	"go.bug.st/serial"
)

// MidiBaudRate is the MIDI 1.0 DIN transmission rate.
const MidiBaudRate = 31250

// Port is an open serial MIDI connection. ReadByte satisfies the engine's
// byte source; WriteByte satisfies the encoder's io.ByteWriter.
type Port struct {
	port serial.Port
	r    *bufio.Reader
}

// Open opens the named serial device. A baud of 0 selects the MIDI rate.
func Open(device string, baud int) (*Port, error) {
	if baud == 0 {
		baud = MidiBaudRate
	}
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("serialmidi: open %s: %w", device, err)
	}
	return &Port{port: p, r: bufio.NewReader(p)}, nil
}

// ReadByte blocks until the next byte arrives on the wire.
func (p *Port) ReadByte() (byte, error) {
	return p.r.ReadByte()
}

// WriteByte sends one byte. The UART itself paces the output.
func (p *Port) WriteByte(b byte) error {
	_, err := p.port.Write([]byte{b})
	return err
}

// Close closes the underlying serial port.
func (p *Port) Close() error {
	return p.port.Close()
}

// ListPorts returns the serial device names visible on this host.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
