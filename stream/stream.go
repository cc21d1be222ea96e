// Package stream provides the cold, context-cancellable value streams the
// executor composes: constructors for single values and errors, a keyed
// latest-value combinator, and switch-style remapping. Streams are plain
// channel producers; there is no scheduler beyond the Go runtime.
package stream

import "context"

// Event is a single emission of a Stream. A non-nil Err is terminal: no
// further events follow it on the same subscription.
type Event struct {
	Value any
	Err   error
}

// Stream is a cold sequence of values. Every call to Subscribe starts an
// independent run of the stream. The returned channel is closed when the
// stream completes, fails, or the subscription context is cancelled;
// cancellation reaches every producer goroutine upstream.
type Stream interface {
	Subscribe(ctx context.Context) <-chan Event
}

// Func adapts a plain subscribe function to a Stream.
type Func func(ctx context.Context) <-chan Event

// Subscribe implements Stream.
func (f Func) Subscribe(ctx context.Context) <-chan Event { return f(ctx) }

// New builds a Stream from a producer function. The producer runs in its own
// goroutine once per subscription. next reports false when the subscriber is
// gone; the producer should return promptly after that. A non-nil return
// error is delivered as a terminal Err event.
func New(producer func(ctx context.Context, next func(any) bool) error) Stream {
	return Func(func(ctx context.Context) <-chan Event {
		out := make(chan Event)
		go func() {
			defer close(out)
			next := func(v any) bool {
				select {
				case out <- Event{Value: v}:
					return true
				case <-ctx.Done():
					return false
				}
			}
			if err := producer(ctx, next); err != nil {
				select {
				case out <- Event{Err: err}:
				case <-ctx.Done():
				}
			}
		}()
		return out
	})
}

// Just emits v once and completes.
func Just(v any) Stream {
	return New(func(ctx context.Context, next func(any) bool) error {
		next(v)
		return nil
	})
}

// Error fails immediately with err.
func Error(err error) Stream {
	return New(func(ctx context.Context, next func(any) bool) error {
		return err
	})
}

// Empty completes without emitting.
func Empty() Stream {
	return New(func(ctx context.Context, next func(any) bool) error {
		return nil
	})
}

// Defer builds the underlying stream lazily, once per subscription. The
// factory runs in its own goroutine and receives the subscription context,
// so a blocking factory never stalls sibling subscriptions.
func Defer(factory func(ctx context.Context) Stream) Stream {
	return Func(func(ctx context.Context) <-chan Event {
		out := make(chan Event)
		go func() {
			defer close(out)
			for ev := range factory(ctx).Subscribe(ctx) {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
				if ev.Err != nil {
					return
				}
			}
		}()
		return out
	})
}

// FromChannel emits every value received from ch until ch is closed or the
// subscription ends. The channel is shared: a second subscription competes
// for the same values.
func FromChannel(ch <-chan any) Stream {
	return New(func(ctx context.Context, next func(any) bool) error {
		for {
			select {
			case v, ok := <-ch:
				if !ok {
					return nil
				}
				if !next(v) {
					return nil
				}
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// First subscribes to s and returns its first event. ok is false when the
// stream completed (or ctx ended) before emitting anything. The subscription
// is cancelled as soon as the first event arrives.
func First(ctx context.Context, s Stream) (Event, bool) {
	fctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for ev := range s.Subscribe(fctx) {
		return ev, true
	}
	return Event{}, false
}
