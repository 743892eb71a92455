// Package storage provides sinks that archive harvested items.
//
// A sink consumes the enveloped item stream produced by a backend. Three
// implementations are included: a JSON Lines writer for piping into other
// tools, a SQLite archive for standalone use, and a MongoDB archive for
// shared deployments. Sinks never deduplicate; re-harvested items are
// appended as new rows.
package storage

import (
	"context"

	"github.com/sduenas/perceval-mozilla/pkg/backend"
)

// Sink consumes enveloped items.
type Sink interface {
	// Store archives one item.
	Store(ctx context.Context, env backend.Envelope) error

	// Close flushes and releases the sink.
	Close() error
}

// Multi fans one item out to several sinks, stopping at the first failure.
type Multi []Sink

func (m Multi) Store(ctx context.Context, env backend.Envelope) error {
	for _, s := range m {
		if err := s.Store(ctx, env); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink, returning the first error encountered.
func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
