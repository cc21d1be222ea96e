package stream

import "context"

// Map transforms every value emitted by src with f. Errors and completion
// pass through unchanged.
func Map(src Stream, f func(any) any) Stream {
	return Func(func(ctx context.Context) <-chan Event {
		out := make(chan Event)
		go func() {
			defer close(out)
			for ev := range src.Subscribe(ctx) {
				if ev.Err == nil {
					ev = Event{Value: f(ev.Value)}
				}
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

// Recover replaces a terminal error with one final value produced by handle,
// then completes. Values emitted before the error pass through unchanged.
func Recover(src Stream, handle func(error) any) Stream {
	return Func(func(ctx context.Context) <-chan Event {
		out := make(chan Event)
		go func() {
			defer close(out)
			for ev := range src.Subscribe(ctx) {
				if ev.Err != nil {
					select {
					case out <- Event{Value: handle(ev.Err)}:
					case <-ctx.Done():
					}
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}()
		return out
	})
}

// SwitchMap projects every source value to an inner stream and forwards the
// inner emissions, cancelling the previous inner stream whenever the source
// emits again. It completes once the source and the last inner stream have
// both completed; an error on either side is terminal.
func SwitchMap(src Stream, f func(any) Stream) Stream {
	return Func(func(ctx context.Context) <-chan Event {
		out := make(chan Event)
		go func() {
			defer close(out)

			emit := func(ev Event) bool {
				select {
				case out <- ev:
					return true
				case <-ctx.Done():
					return false
				}
			}

			srcCh := src.Subscribe(ctx)
			var (
				innerCh     <-chan Event
				innerCancel context.CancelFunc
			)
			defer func() {
				if innerCancel != nil {
					innerCancel()
				}
			}()

			for srcCh != nil || innerCh != nil {
				select {
				case <-ctx.Done():
					return

				case ev, ok := <-srcCh:
					if !ok {
						srcCh = nil
						continue
					}
					if ev.Err != nil {
						emit(ev)
						return
					}
					if innerCancel != nil {
						innerCancel()
					}
					var ictx context.Context
					ictx, innerCancel = context.WithCancel(ctx)
					innerCh = f(ev.Value).Subscribe(ictx)

				case ev, ok := <-innerCh:
					if !ok {
						innerCh = nil
						if innerCancel != nil {
							innerCancel()
							innerCancel = nil
						}
						continue
					}
					if !emit(ev) || ev.Err != nil {
						return
					}
				}
			}
		}()
		return out
	})
}
