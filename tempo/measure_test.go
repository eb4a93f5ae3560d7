package tempo

import "testing"

// fakeSource is a scriptable tick counter: each Now call returns the next
// queued reading.
type fakeSource struct {
	readings []uint32
	pos      int
	freq     uint32
	up       bool
}

func (f *fakeSource) Now() uint32 {
	r := f.readings[f.pos]
	if f.pos < len(f.readings)-1 {
		f.pos++
	}
	return r
}

func (f *fakeSource) Frequency() uint32 { return f.freq }
func (f *fakeSource) CountsUp() bool    { return f.up }

// upSource returns a 1 MHz count-up source pulsing every step ticks.
func upSource(n int, start, step uint32) *fakeSource {
	readings := make([]uint32, n)
	for i := range readings {
		readings[i] = start + uint32(i)*step
	}
	return &fakeSource{readings: readings, freq: 1_000_000, up: true}
}

func TestMeasurerRejectsDeadSource(t *testing.T) {
	if _, err := NewMeasurer(nil, 48); err == nil {
		t.Error("nil source must fail construction")
	}
	if _, err := NewMeasurer(&fakeSource{readings: []uint32{0}}, 48); err == nil {
		t.Error("zero-frequency source must fail construction")
	}
}

func TestMeasurerFirstPulseOnlyPrimes(t *testing.T) {
	m, err := NewMeasurer(upSource(2, 100, 20833), 4)
	if err != nil {
		t.Fatal(err)
	}
	if sbpm, ok := m.OnPulse(); ok || sbpm != 0 {
		t.Errorf("first pulse must not produce an estimate, got %d/%v", sbpm, ok)
	}
	if m.LastIntervalTicks() != 0 {
		t.Errorf("no interval before the second pulse, got %d", m.LastIntervalTicks())
	}
}

func TestMeasurerFullWindow(t *testing.T) {
	// 120.00 BPM at 1 MHz: 20833 ticks per pulse. Window of 48 needs 49
	// pulses (first only primes).
	m, err := NewMeasurer(upSource(49, 0, 20833), 48)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 48; i++ {
		if _, ok := m.OnPulse(); ok {
			t.Fatalf("estimate valid after %d pulses, window not full yet", i+1)
		}
	}
	sbpm, ok := m.OnPulse()
	if !ok {
		t.Fatal("estimate must be valid once the window fills")
	}
	if sbpm != 12000 {
		t.Errorf("sbpm = %d, want 12000", sbpm)
	}
	if m.LastIntervalUs() != 20833 {
		t.Errorf("last interval = %d us, want 20833", m.LastIntervalUs())
	}
}

func TestMeasurerCountDownWraparound(t *testing.T) {
	// Down-counter wrapping through zero: 5 -> 0xFFFFFFF0 elapses 21 ticks.
	src := &fakeSource{
		readings: []uint32{5, 0xFFFFFFF0},
		freq:     1_000_000,
		up:       false,
	}
	m, err := NewMeasurer(src, 4)
	if err != nil {
		t.Fatal(err)
	}
	m.OnPulse()
	m.OnPulse()
	if got := m.LastIntervalTicks(); got != 21 {
		t.Errorf("wrapped down-count interval = %d, want 21", got)
	}
}

func TestMeasurerRejectsZeroInterval(t *testing.T) {
	src := &fakeSource{
		readings: []uint32{100, 100, 150},
		freq:     1_000_000,
		up:       true,
	}
	m, err := NewMeasurer(src, 4)
	if err != nil {
		t.Fatal(err)
	}
	m.OnPulse() // primes at 100
	m.OnPulse() // same reading: zero interval, rejected
	if m.LastIntervalTicks() != 0 {
		t.Errorf("zero interval must not be recorded, got %d", m.LastIntervalTicks())
	}
	m.OnPulse()
	if m.LastIntervalTicks() != 50 {
		t.Errorf("interval after rejection = %d, want 50", m.LastIntervalTicks())
	}
}

func TestMeasurerIntervalAccepted(t *testing.T) {
	src := &fakeSource{
		readings: []uint32{100, 20933, 20933, 41766},
		freq:     1_000_000,
		up:       true,
	}
	m, err := NewMeasurer(src, 4)
	if err != nil {
		t.Fatal(err)
	}

	m.OnPulse() // primes only
	if m.IntervalAccepted() {
		t.Error("priming pulse must not count as an accepted interval")
	}
	m.OnPulse()
	if !m.IntervalAccepted() {
		t.Error("steady pulse must yield an accepted interval")
	}
	m.OnPulse() // same reading: zero interval
	if m.IntervalAccepted() {
		t.Error("rejected zero interval must clear the accepted flag")
	}
	m.OnPulse()
	if !m.IntervalAccepted() {
		t.Error("good pulse after a rejection must accept again")
	}

	m.Reset()
	if m.IntervalAccepted() {
		t.Error("reset must clear the accepted flag")
	}
}

func TestMeasurerStickyValidity(t *testing.T) {
	// Fill a small window, then deliver a stall (zero intervals): the
	// estimate must stay valid and keep its last value.
	src := &fakeSource{
		readings: []uint32{0, 20833, 41666, 62499, 83332, 83332, 83332},
		freq:     1_000_000,
		up:       true,
	}
	m, err := NewMeasurer(src, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		m.OnPulse()
	}
	if !m.Valid() {
		t.Fatal("window filled, expected valid")
	}
	was := m.Sbpm()

	m.OnPulse()
	m.OnPulse()
	if !m.Valid() {
		t.Error("validity must be sticky across bogus pulses")
	}
	if m.Sbpm() != was {
		t.Errorf("estimate changed across rejected pulses: %d -> %d", was, m.Sbpm())
	}

	m.Reset()
	if m.Valid() || m.Sbpm() != 0 {
		t.Error("reset must clear validity")
	}
}
