package hr

import (
	"context"
	"time"
)

// Simulate emits synthetic measurements once a second, wandering between
// lo and hi BPM. Handy for exercising the display path without a strap.
func Simulate(ctx context.Context, lo, hi uint8, out chan<- Measurement) {
	if hi <= lo {
		hi = lo + 1
	}
	bpm := lo
	up := true
	t := time.NewTicker(time.Second)
	defer t.Stop()
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		if up {
			bpm++
			if bpm >= hi {
				up = false
			}
		} else {
			bpm--
			if bpm <= lo {
				up = true
			}
		}
		select {
		case out <- Measurement{Bpm: bpm}:
		case <-ctx.Done():
			return
		}
	}
}
