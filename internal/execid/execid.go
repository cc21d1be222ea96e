// Package execid threads a per-execution identifier through context so
// telemetry subscribers can correlate start and finish events.
package execid

import (
	"context"
	"math/rand/v2"
)

// ID identifies one execution within this process.
type ID int64

type key struct{}

// NewContext returns a copy of parent carrying a fresh random execution ID,
// and the ID itself.
func NewContext(parent context.Context) (context.Context, ID) {
	id := ID(rand.Int64())
	return context.WithValue(parent, key{}, id), id
}

// FromContext extracts the execution ID from ctx.
func FromContext(ctx context.Context) (ID, bool) {
	id, ok := ctx.Value(key{}).(ID)
	return id, ok
}
