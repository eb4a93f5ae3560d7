package midibridge

import (
	"context"
	"errors"
	"time"
)

// Source presents the manager's current input port as one continuous byte
// stream. While no port is connected, ReadByte waits; a port going away
// mid-read is absorbed and the next port picks up the stream.
type Source struct {
	ctx context.Context
	mgr *Manager
}

func NewSource(ctx context.Context, mgr *Manager) *Source {
	return &Source{ctx: ctx, mgr: mgr}
}

func (s *Source) ReadByte() (byte, error) {
	for {
		in := s.mgr.Current()
		if in == nil {
			select {
			case <-s.ctx.Done():
				return 0, s.ctx.Err()
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		b, err := in.ReadByte()
		if errors.Is(err, ErrPortClosed) {
			continue
		}
		return b, err
	}
}
