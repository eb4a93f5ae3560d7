package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"midi-humanclock/midi1"
	"midi-humanclock/midibridge"
	"midi-humanclock/serialmidi"
	"midi-humanclock/tempo"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "sweep":
		testSweep(os.Args[2:])
	case "dump":
		dumpEvents(os.Args[2:])
	case "clock":
		sendClock(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list               - List all MIDI and serial ports")
	fmt.Println("  sweep <port>       - Send the CC/note test pattern")
	fmt.Println("  dump [port]        - Print parsed events from an input")
	fmt.Println("  clock <port> <bpm> - Send MIDI clock at a tempo")
	fmt.Println("")
	fmt.Println("A port starting with /dev is opened as a serial MIDI device.")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := gomidi.GetInPorts()
		outs := gomidi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}

	ports, err := serialmidi.ListPorts()
	if err == nil && len(ports) > 0 {
		fmt.Println("\n=== Serial Ports ===")
		for _, p := range ports {
			fmt.Printf("  %s\n", p)
		}
	}
}

// openWriter opens either a serial device or a host MIDI output.
func openWriter(name string) (io.ByteWriter, func(), bool) {
	if strings.HasPrefix(name, "/dev") {
		port, err := serialmidi.Open(name, 0)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return port, func() { port.Close() }, true
	}
	out, err := midibridge.OpenOut(name)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	return out, func() {}, false
}

func testSweep(args []string) {
	if len(args) < 1 {
		usage()
		return
	}
	w, closeFn, isSerial := openWriter(args[0])
	defer closeFn()

	enc := midi1.NewEncoder(w)
	// Only a real wire carries running status; host drivers want whole
	// messages.
	enc.SetRunningStatus(isSerial)

	fmt.Println("CC1 sweep on channel 16 (inside the running status window)")
	for value := uint8(0); value < 16; value++ {
		enc.ControlChange(15, 1, value)
		time.Sleep(290 * time.Millisecond)
	}

	fmt.Println("Note sweep on channel 7 (status timeout elapses)")
	for note := uint8(60); note < 66; note++ {
		enc.NoteOn(6, note, 100)
		time.Sleep(310 * time.Millisecond)
	}

	fmt.Println("Note off sweep, as fast as the port allows")
	for note := uint8(60); note < 66; note++ {
		enc.NoteOff(6, note, 100)
	}
	fmt.Println("Done")
}

func dumpEvents(args []string) {
	match := ""
	if len(args) > 0 {
		match = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mgr := midibridge.NewManager(match)
	go mgr.Run(ctx)
	src := midibridge.NewSource(ctx, mgr)

	fmt.Println("Dumping events, ctrl+c to stop...")
	parser := midi1.NewParser()
	clocks := 0
	for {
		b, err := src.ReadByte()
		if err != nil {
			return
		}
		ev, ok := parser.Feed(b)
		if !ok {
			continue
		}
		if ev.Type == midi1.EventRealtime && ev.Status == midi1.TimingClock {
			// A running clock would drown everything else out.
			clocks++
			if clocks%24 == 0 {
				fmt.Printf("timing clock x%d\n", clocks)
			}
			continue
		}
		switch ev.Type {
		case midi1.EventNoteOn, midi1.EventNoteOff:
			fmt.Printf("%s ch %d %s vel %d\n",
				ev.Type, ev.Channel+1, midi1.NoteName(ev.Data1), ev.Data2)
		case midi1.EventPitchWheel:
			fmt.Printf("%s ch %d %d\n", ev.Type, ev.Channel+1, ev.Wheel())
		case midi1.EventRealtime:
			fmt.Printf("%s %#x\n", ev.Type, ev.Status)
		default:
			fmt.Printf("%s ch %d %d %d\n", ev.Type, ev.Channel+1, ev.Data1, ev.Data2)
		}
	}
}

func sendClock(args []string) {
	if len(args) < 2 {
		usage()
		return
	}
	bpm, err := strconv.Atoi(args[1])
	if err != nil || bpm <= 0 || bpm > 600 {
		fmt.Println("bpm must be 1-600")
		return
	}
	w, closeFn, _ := openWriter(args[0])
	defer closeFn()

	enc := midi1.NewEncoder(w)
	interval := time.Duration(tempo.SbpmToUsInterval(tempo.ScaledBpm(bpm)*tempo.BpmScale)) * time.Microsecond
	fmt.Printf("Sending clock at %d BPM (pulse every %v), ctrl+c to stop...\n", bpm, interval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	enc.Start()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			enc.Stop()
			return
		case <-ticker.C:
			enc.TimingClock()
		}
	}
}
