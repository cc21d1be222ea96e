package stream

import "context"

// Keyed pairs a response key with the stream producing that key's value.
type Keyed struct {
	Key    string
	Source Stream
}

// CombineLatestKeyed combines the latest value of every source into a
// map[string]any snapshot. The first snapshot is emitted once every source
// has emitted at least once; afterwards a new snapshot is emitted on every
// change from any source. The combined stream completes when all sources
// have completed, and fails on the first source error. With no sources it
// emits a single empty map and completes.
func CombineLatestKeyed(sources []Keyed) Stream {
	inner := make([]Stream, len(sources))
	for i, s := range sources {
		inner[i] = s.Source
	}
	return combineLatest(inner, func(latest []any) any {
		snap := make(map[string]any, len(sources))
		for i, s := range sources {
			snap[s.Key] = latest[i]
		}
		return snap
	})
}

// CombineLatestSlice is the positional variant of CombineLatestKeyed: the
// combined value is a []any holding each source's latest value by index.
func CombineLatestSlice(sources []Stream) Stream {
	return combineLatest(sources, func(latest []any) any {
		snap := make([]any, len(latest))
		copy(snap, latest)
		return snap
	})
}

// combineLatest is the shared N-ary latest-value combinator. assemble is
// called with the latest per-source values each time a snapshot is due and
// must not retain the slice.
func combineLatest(sources []Stream, assemble func(latest []any) any) Stream {
	return Func(func(ctx context.Context) <-chan Event {
		out := make(chan Event)
		go func() {
			defer close(out)
			if len(sources) == 0 {
				select {
				case out <- Event{Value: assemble(nil)}:
				case <-ctx.Done():
				}
				return
			}

			cctx, cancel := context.WithCancel(ctx)
			defer cancel()

			type update struct {
				idx  int
				ev   Event
				done bool
			}
			updates := make(chan update)
			for i, s := range sources {
				go func(i int, ch <-chan Event) {
					for ev := range ch {
						select {
						case updates <- update{idx: i, ev: ev}:
						case <-cctx.Done():
							return
						}
					}
					select {
					case updates <- update{idx: i, done: true}:
					case <-cctx.Done():
					}
				}(i, s.Subscribe(cctx))
			}

			latest := make([]any, len(sources))
			seen := make([]bool, len(sources))
			seenCount, doneCount := 0, 0
			for doneCount < len(sources) {
				var u update
				select {
				case u = <-updates:
				case <-ctx.Done():
					return
				}
				if u.done {
					doneCount++
					continue
				}
				if u.ev.Err != nil {
					select {
					case out <- Event{Err: u.ev.Err}:
					case <-ctx.Done():
					}
					return
				}
				latest[u.idx] = u.ev.Value
				if !seen[u.idx] {
					seen[u.idx] = true
					seenCount++
				}
				if seenCount < len(sources) {
					continue
				}
				select {
				case out <- Event{Value: assemble(latest)}:
				case <-ctx.Done():
					return
				}
			}
		}()
		return out
	})
}
