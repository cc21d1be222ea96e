package executor

import (
	"context"
	"testing"
	"time"

	language "github.com/livegql/livegql/internal/language"
	"github.com/livegql/livegql/stream"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

// runToCompletion subscribes to a result stream whose resolvers all
// terminate, drains it, and returns the final emission.
func runToCompletion(t *testing.T, s stream.Stream) *ExecutionResult {
	t.Helper()
	results := drain(t, s)
	if len(results) == 0 {
		t.Fatal("execution completed without emitting a result")
	}
	return results[len(results)-1]
}

// drain collects every emitted result until the stream completes.
func drain(t *testing.T, s stream.Stream) []*ExecutionResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var out []*ExecutionResult
	for ev := range s.Subscribe(ctx) {
		if ev.Err != nil {
			t.Fatalf("unexpected stream error: %v", ev.Err)
		}
		res, ok := ev.Value.(*ExecutionResult)
		if !ok {
			t.Fatalf("unexpected emission type %T", ev.Value)
		}
		out = append(out, res)
	}
	if ctx.Err() != nil {
		t.Fatal("execution did not complete in time")
	}
	return out
}
