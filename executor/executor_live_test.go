package executor

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	schema "github.com/livegql/livegql/schema"
	"github.com/livegql/livegql/stream"
)

// nextResult reads one result emission with a deadline.
func nextResult(t *testing.T, ch <-chan stream.Event) *ExecutionResult {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("execution completed before expected result")
		}
		return ev.Value.(*ExecutionResult)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for result")
		return nil
	}
}

func expectDone(t *testing.T, ch <-chan stream.Event) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("expected completion, got %+v", ev.Value)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for completion")
	}
}

// Pattern: Result comparison
func TestLive_LeafReEmission_Result(t *testing.T) {
	gate := make(chan struct{})
	sch := schema.MustFromSDL(`type Query { ticks: Int static: String }`, schema.ResolverMap{
		"Query": {
			"ticks": func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
				return stream.New(func(ctx context.Context, next func(any) bool) error {
					if !next(1) {
						return nil
					}
					select {
					case <-gate:
					case <-ctx.Done():
						return nil
					}
					next(2)
					return nil
				}), nil
			},
			"static": func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
				return "s", nil
			},
		},
	})
	exec := NewExecutor(sch)
	doc := mustParseQuery(t, "{ ticks static }")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := exec.ExecuteRequest(doc, "", nil, nil, nil).Subscribe(ctx)

	first := nextResult(t, out)
	want := &ExecutionResult{Data: map[string]any{"ticks": 1, "static": "s"}}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("first result mismatch (-want +got):\n%s", diff)
	}

	close(gate)
	second := nextResult(t, out)
	want = &ExecutionResult{Data: map[string]any{"ticks": 2, "static": "s"}}
	if diff := cmp.Diff(want, second); diff != "" {
		t.Fatalf("second result mismatch (-want +got):\n%s", diff)
	}

	expectDone(t, out)
}

// Pattern: Result comparison
func TestLive_ObjectRebuildsChildren_Result(t *testing.T) {
	gate := make(chan struct{})
	sch := schema.MustFromSDL(`
		type Query { obj: Obj }
		type Obj { v: Int }
	`, schema.ResolverMap{
		"Query": {
			"obj": func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
				return stream.New(func(ctx context.Context, next func(any) bool) error {
					if !next(map[string]any{"v": 1}) {
						return nil
					}
					select {
					case <-gate:
					case <-ctx.Done():
						return nil
					}
					next(map[string]any{"v": 2})
					return nil
				}), nil
			},
		},
	})
	exec := NewExecutor(sch)
	doc := mustParseQuery(t, "{ obj { v } }")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := exec.ExecuteRequest(doc, "", nil, nil, nil).Subscribe(ctx)

	first := nextResult(t, out)
	want := &ExecutionResult{Data: map[string]any{"obj": map[string]any{"v": 1}}}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("first result mismatch (-want +got):\n%s", diff)
	}

	close(gate)
	second := nextResult(t, out)
	want = &ExecutionResult{Data: map[string]any{"obj": map[string]any{"v": 2}}}
	if diff := cmp.Diff(want, second); diff != "" {
		t.Fatalf("second result mismatch (-want +got):\n%s", diff)
	}

	expectDone(t, out)
}

func TestLive_CancellationTearsDownResolvers(t *testing.T) {
	resolverDone := make(chan struct{})
	sch := schema.MustFromSDL(`type Query { forever: Int }`, schema.ResolverMap{
		"Query": {
			"forever": func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
				return stream.New(func(ctx context.Context, next func(any) bool) error {
					next(1)
					<-ctx.Done()
					close(resolverDone)
					return nil
				}), nil
			},
		},
	})
	exec := NewExecutor(sch)
	doc := mustParseQuery(t, "{ forever }")

	ctx, cancel := context.WithCancel(context.Background())
	out := exec.ExecuteRequest(doc, "", nil, nil, nil).Subscribe(ctx)

	first := nextResult(t, out)
	if diff := cmp.Diff(&ExecutionResult{Data: map[string]any{"forever": 1}}, first); diff != "" {
		t.Fatalf("first result mismatch (-want +got):\n%s", diff)
	}

	cancel()
	expectDone(t, out)
	select {
	case <-resolverDone:
	case <-time.After(5 * time.Second):
		t.Fatal("resolver stream was not cancelled")
	}
}

// Pattern: Result comparison
func TestLive_IndependentSubscriptions_Result(t *testing.T) {
	sch := schema.MustFromSDL(`type Query { n: Int }`, schema.ResolverMap{
		"Query": {
			"n": newCountingResolver(),
		},
	})
	exec := NewExecutor(sch)
	doc := mustParseQuery(t, "{ n }")
	s := exec.ExecuteRequest(doc, "", nil, nil, nil)

	first := runToCompletion(t, s)
	second := runToCompletion(t, s)

	if diff := cmp.Diff(&ExecutionResult{Data: map[string]any{"n": 1}}, first); diff != "" {
		t.Fatalf("first subscription mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(&ExecutionResult{Data: map[string]any{"n": 2}}, second); diff != "" {
		t.Fatalf("second subscription mismatch (-want +got):\n%s", diff)
	}
}

// newCountingResolver returns a resolver invoked once per subscription, so
// each subscription observes its own invocation count.
func newCountingResolver() schema.Resolver {
	n := 0
	return func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
		n++
		return n, nil
	}
}

// Pattern: Result comparison
func TestLive_ContextVisibility_Result(t *testing.T) {
	sch := schema.MustFromSDL(`
		type Query { parent: Child }
		type Child { token: String }
	`, schema.ResolverMap{
		"Query": {
			"parent": func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
				gctx.(map[string]any)["token"] = "abc"
				return map[string]any{}, nil
			},
		},
		"Child": {
			"token": func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
				return gctx.(map[string]any)["token"], nil
			},
		},
	})
	exec := NewExecutor(sch)
	doc := mustParseQuery(t, "{ parent { token } }")

	gotRes := runToCompletion(t, exec.ExecuteRequest(doc, "", nil, nil, map[string]any{}))

	wantRes := &ExecutionResult{Data: map[string]any{"parent": map[string]any{"token": "abc"}}}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}
