// Package token issues monotonically increasing request tokens so that a
// response can be matched against the latest request issued.
package token

import (
	"context"
	"sync/atomic"
)

// Sequencer issues strictly increasing tokens. Latest reports the highest
// token issued so far by any holder of the sequence.
type Sequencer interface {
	Next(ctx context.Context) (uint64, error)
	Latest(ctx context.Context) (uint64, error)
}

// Local is an in-process Sequencer.
type Local struct {
	n atomic.Uint64
}

// NewLocal returns a Sequencer starting at 1.
func NewLocal() *Local {
	return &Local{}
}

// Next returns the next token. It never fails.
func (l *Local) Next(ctx context.Context) (uint64, error) {
	return l.n.Add(1), nil
}

// Latest returns the last token issued, or 0. It never fails.
func (l *Local) Latest(ctx context.Context) (uint64, error) {
	return l.n.Load(), nil
}

// Guard decides whether a response still answers the newest request. Two
// guards over one shared sequence see each other's requests.
type Guard struct {
	seq Sequencer
}

// NewGuard wraps a Sequencer. A nil seq uses a Local sequencer.
func NewGuard(seq Sequencer) *Guard {
	if seq == nil {
		seq = NewLocal()
	}
	return &Guard{seq: seq}
}

// Issue draws a new token.
func (g *Guard) Issue(ctx context.Context) (uint64, error) {
	return g.seq.Next(ctx)
}

// IsLatest reports whether tok is still the most recent token in the
// sequence.
func (g *Guard) IsLatest(ctx context.Context, tok uint64) (bool, error) {
	latest, err := g.seq.Latest(ctx)
	if err != nil {
		return false, err
	}
	return tok == latest, nil
}

// Latest returns the most recent token in the sequence, or 0 before the
// first Issue.
func (g *Guard) Latest(ctx context.Context) (uint64, error) {
	return g.seq.Latest(ctx)
}
