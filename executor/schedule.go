package executor

import (
	"context"

	"github.com/livegql/livegql/stream"
)

// runConcurrent schedules read-operation roots: every root field stream is
// subscribed immediately and combined with the same latest-value policy as
// nested object fields, so the result re-emits on every root field change
// for as long as any resolver stream stays live.
func (st *execState) runConcurrent(plans []*fieldPlan) stream.Stream {
	return st.combineFields(plans, st.rootValue, Path{})
}

// runSequential schedules mutation roots: each root field's stream is built,
// subscribed, and awaited to its first settled value before the next root
// field's resolver is invoked, so a later field observes every side effect
// of the fields before it. One combined object is emitted after the last
// field settles.
func (st *execState) runSequential(plans []*fieldPlan) stream.Stream {
	return stream.New(func(ctx context.Context, next func(any) bool) error {
		result := make(map[string]any, len(plans))
		for _, p := range plans {
			s := st.fieldStream(p, st.rootValue, Path{}.Child(p.responseKey))
			ev, ok := stream.First(ctx, s)
			if ctx.Err() != nil {
				return nil
			}
			if !ok {
				result[p.responseKey] = nil
				continue
			}
			result[p.responseKey] = ev.Value
		}
		next(result)
		return nil
	})
}
