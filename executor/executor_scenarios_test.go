package executor

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	schema "github.com/livegql/livegql/schema"
)

const shuttleSDL = `
type Query {
  launched(name: String): [Shuttle!]!
}
type Shuttle {
  name: String
}
`

// Pattern: Result comparison
func TestScenarios_ReadOperations_Result(t *testing.T) {
	t.Run("List of objects", func(t *testing.T) {
		sch := schema.MustFromSDL(shuttleSDL, schema.ResolverMap{
			"Query": {
				"launched": func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
					return []any{map[string]any{"name": "discovery"}}, nil
				},
			},
		})
		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ launched { name } }")

		gotRes := runToCompletion(t, exec.ExecuteRequest(doc, "", nil, nil, nil))

		wantRes := &ExecutionResult{
			Data: map[string]any{"launched": []any{map[string]any{"name": "discovery"}}},
		}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Filtering resolver with literal argument", func(t *testing.T) {
		sch := schema.MustFromSDL(shuttleSDL, schema.ResolverMap{
			"Query": {"launched": filteringLaunchedResolver},
		})
		exec := NewExecutor(sch)
		doc := mustParseQuery(t, `{ launched(name: "apollo13") { name } }`)

		gotRes := runToCompletion(t, exec.ExecuteRequest(doc, "", nil, nil, nil))

		wantRes := &ExecutionResult{
			Data: map[string]any{"launched": []any{map[string]any{"name": "apollo13"}}},
		}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Filtering resolver with variable argument", func(t *testing.T) {
		sch := schema.MustFromSDL(shuttleSDL, schema.ResolverMap{
			"Query": {"launched": filteringLaunchedResolver},
		})
		exec := NewExecutor(sch)
		doc := mustParseQuery(t, `query($n: String) { launched(name: $n) { name } }`)

		gotRes := runToCompletion(t, exec.ExecuteRequest(doc, "", map[string]any{"n": "challenger"}, nil, nil))

		wantRes := &ExecutionResult{
			Data: map[string]any{"launched": []any{map[string]any{"name": "challenger"}}},
		}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Resolver returning nothing yields null", func(t *testing.T) {
		sch := schema.MustFromSDL(`
			type Query { plain: Plain }
			type Plain { fieldResolvesUndefined: String }
		`, schema.ResolverMap{
			"Query": {
				"plain": func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
					return map[string]any{}, nil
				},
			},
			"Plain": {
				"fieldResolvesUndefined": func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
					return nil, nil
				},
			},
		})
		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ plain { fieldResolvesUndefined } }")

		gotRes := runToCompletion(t, exec.ExecuteRequest(doc, "", nil, nil, nil))

		wantRes := &ExecutionResult{
			Data: map[string]any{"plain": map[string]any{"fieldResolvesUndefined": nil}},
		}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Null composite skips children", func(t *testing.T) {
		childCalled := false
		sch := schema.MustFromSDL(`
			type Query { plain: Plain }
			type Plain { a: String }
		`, schema.ResolverMap{
			"Query": {
				"plain": func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
					return nil, nil
				},
			},
			"Plain": {
				"a": func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
					childCalled = true
					return "A", nil
				},
			},
		})
		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ plain { a } }")

		gotRes := runToCompletion(t, exec.ExecuteRequest(doc, "", nil, nil, nil))

		wantRes := &ExecutionResult{Data: map[string]any{"plain": nil}}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
		if childCalled {
			t.Fatal("child resolver ran under a null parent")
		}
	})
}

func filteringLaunchedResolver(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
	source := []any{
		map[string]any{"name": "apollo13"},
		map[string]any{"name": "challenger"},
	}
	name, _ := args["name"].(string)
	if name == "" {
		return source, nil
	}
	var filtered []any
	for _, s := range source {
		if s.(map[string]any)["name"] == name {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}

// Pattern: Result comparison
func TestScenarios_MutationSequencing_Result(t *testing.T) {
	sch := schema.MustFromSDL(`
		type Query { counter: Int }
		type Mutation { increment: Int }
	`, schema.ResolverMap{
		"Mutation": {"increment": newIncrementResolver()},
	})
	exec := NewExecutor(sch)
	doc := mustParseQuery(t, "mutation { first: increment second: increment third: increment }")

	gotRes := runToCompletion(t, exec.ExecuteRequest(doc, "", nil, nil, nil))

	wantRes := &ExecutionResult{
		Data: map[string]any{"first": 1, "second": 2, "third": 3},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

// newIncrementResolver reads, waits, then writes a shared counter. Without
// strict root-field sequencing the three invocations would all observe 0.
func newIncrementResolver() schema.Resolver {
	counter := 0
	return func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
		v := counter
		time.Sleep(5 * time.Millisecond)
		counter = v + 1
		return counter, nil
	}
}
