package tempo

// DefaultWindow is the block-average window: 48 samples is two quarter
// notes of MIDI clock at 24 PPQN. Per-pulse BPM from real gear jitters too
// much to display; averaging over two beats balances responsiveness
// against smoothness.
const DefaultWindow = 48

// BlockAverage keeps a running arithmetic mean over the most recent N
// samples using a fixed-capacity ring. Once full, every insertion evicts
// the oldest sample.
type BlockAverage struct {
	buf   []uint32
	sum   uint64
	index int
	count int
}

// NewBlockAverage returns an averager over a window of the given size.
// Sizes below 1 fall back to DefaultWindow.
func NewBlockAverage(size int) *BlockAverage {
	if size < 1 {
		size = DefaultWindow
	}
	return &BlockAverage{buf: make([]uint32, size)}
}

// Reset empties the window.
func (a *BlockAverage) Reset() {
	for i := range a.buf {
		a.buf[i] = 0
	}
	a.sum = 0
	a.index = 0
	a.count = 0
}

// Add inserts a sample, evicting the oldest once the window is full.
func (a *BlockAverage) Add(sample uint32) {
	if a.count < len(a.buf) {
		// Still filling the buffer
		a.buf[a.count] = sample
		a.sum += uint64(sample)
		a.count++
		return
	}
	a.sum -= uint64(a.buf[a.index])
	a.buf[a.index] = sample
	a.sum += uint64(sample)

	a.index++
	if a.index >= len(a.buf) {
		a.index = 0
	}
}

// Average returns the mean of the samples currently in the window, or 0
// when empty.
func (a *BlockAverage) Average() uint32 {
	if a.count == 0 {
		return 0
	}
	return uint32(a.sum / uint64(a.count))
}

// Count returns how many samples the window currently holds.
func (a *BlockAverage) Count() int { return a.count }

// Cap returns the window size.
func (a *BlockAverage) Cap() int { return len(a.buf) }
