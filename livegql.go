// Package livegql executes GraphQL operations against resolvers that may
// return reactive value streams, producing a live stream of {data, errors}
// results: the result re-emits whenever any contributing resolver stream
// emits. Query root fields run concurrently with latest-value combination;
// mutation root fields run strictly in declaration order.
package livegql

import (
	"context"
	"time"

	eventbus "github.com/livegql/livegql/internal/eventbus"
	events "github.com/livegql/livegql/internal/events"
	execid "github.com/livegql/livegql/internal/execid"
	language "github.com/livegql/livegql/internal/language"

	"github.com/livegql/livegql/executor"
	"github.com/livegql/livegql/schema"
	"github.com/livegql/livegql/stream"
)

// Result is one emission of a live execution.
type Result = executor.ExecutionResult

// Error is a located execution error.
type Error = executor.GraphQLError

// Path locates a failing field in the response tree.
type Path = executor.Path

// Document is a parsed operation document, for callers that parse once and
// execute many times.
type Document = language.QueryDocument

// ParseQuery parses an operation document without validating it.
func ParseQuery(source string) (*Document, error) {
	return language.ParseQuery(source)
}

// Params describes one execution request.
type Params struct {
	// Schema is the executable schema to run against. Required.
	Schema *schema.Schema

	// Source is the operation document text. Ignored when Document is set.
	Source string

	// Document is an already-parsed operation document. Optional.
	Document *language.QueryDocument

	// OperationName selects the operation when the document has several.
	OperationName string

	// RootValue is the parent value handed to root field resolution.
	RootValue any

	// ContextValue is shared by reference with every resolver invocation of
	// one execution; resolvers may write to it. Parent writes are visible to
	// children, sibling-to-sibling visibility is undefined.
	ContextValue any

	// VariableValues binds the operation's variables.
	VariableValues map[string]any
}

// Execute is the positional entry point: parse, validate, and execute
// source against sch. The execution itself starts when the returned stream
// is subscribed.
func Execute(sch *schema.Schema, source string, rootValue, contextValue any, variableValues map[string]any) *ResultStream {
	return Do(Params{
		Schema:         sch,
		Source:         source,
		RootValue:      rootValue,
		ContextValue:   contextValue,
		VariableValues: variableValues,
	})
}

// Do is the options entry point. Validation errors (and parse errors) yield
// a stream with a single errors-only result; no field resolution runs.
func Do(p Params) *ResultStream {
	doc := p.Document
	if doc == nil {
		parsed, err := language.ParseQuery(p.Source)
		if err != nil {
			return requestError(p, messageOf(err))
		}
		doc = parsed
	}

	if compiled := p.Schema.Compiled(); compiled != nil {
		if errs := language.Validate(compiled, doc); len(errs) > 0 {
			msgs := make([]string, len(errs))
			for i, e := range errs {
				msgs[i] = e.Message
			}
			return requestError(p, msgs...)
		}
	}

	src := executor.NewExecutor(p.Schema).ExecuteRequest(
		doc, p.OperationName, p.VariableValues, p.RootValue, p.ContextValue)

	opName, opType := operationInfo(doc, p.OperationName)
	return &ResultStream{src: src, query: p.Source, opName: opName, opType: opType}
}

// ResultStream is a live stream of execution results. Each Subscribe runs an
// independent execution; cancelling the subscription context tears down
// every resolver stream of that run.
type ResultStream struct {
	src    stream.Stream
	query  string
	opName string
	opType string
}

// Subscribe starts the execution and returns its result channel. The channel
// closes when every resolver stream has completed or when ctx is cancelled;
// live queries may never terminate on their own.
func (r *ResultStream) Subscribe(ctx context.Context) <-chan *Result {
	out := make(chan *Result)
	go func() {
		defer close(out)
		// Keep an inherited execution ID so telemetry can correlate this
		// execution with the HTTP request that started it.
		if _, ok := execid.FromContext(ctx); !ok {
			ctx, _ = execid.NewContext(ctx)
		}
		start := time.Now()
		eventbus.Publish(ctx, events.ExecutionStart{
			Query:         r.query,
			OperationName: r.opName,
			OperationType: r.opType,
		})
		emissions, errCount := 0, 0
		for ev := range r.src.Subscribe(ctx) {
			res, ok := ev.Value.(*Result)
			if !ok {
				continue
			}
			select {
			case out <- res:
				emissions++
				errCount = len(res.Errors)
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}
		eventbus.Publish(ctx, events.ExecutionFinish{
			Query:         r.query,
			OperationName: r.opName,
			OperationType: r.opType,
			Emissions:     emissions,
			ErrorCount:    errCount,
			Duration:      time.Since(start),
		})
	}()
	return out
}

// Stream exposes the untyped stream for composition with stream operators.
// Emissions are *Result values.
func (r *ResultStream) Stream() stream.Stream { return r.src }

// First subscribes, waits for the first result, and cancels the
// subscription. ok is false when the execution completed without emitting.
func (r *ResultStream) First(ctx context.Context) (*Result, bool) {
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for res := range r.Subscribe(sctx) {
		return res, true
	}
	return nil, false
}

func requestError(p Params, messages ...string) *ResultStream {
	errs := make([]Error, len(messages))
	for i, m := range messages {
		errs[i] = Error{Message: m}
	}
	opName, opType := "", ""
	if p.Document != nil {
		opName, opType = operationInfo(p.Document, p.OperationName)
	}
	return &ResultStream{
		src:    stream.Just(&Result{Data: nil, Errors: errs}),
		query:  p.Source,
		opName: opName,
		opType: opType,
	}
}

func operationInfo(doc *language.QueryDocument, operationName string) (name, opType string) {
	op := doc.Operations.ForName(operationName)
	if op == nil && operationName == "" && len(doc.Operations) == 1 {
		op = doc.Operations[0]
	}
	if op == nil {
		return operationName, ""
	}
	return op.Name, string(op.Operation)
}

func messageOf(err error) string {
	if ge, ok := err.(*language.Error); ok {
		return ge.Message
	}
	return err.Error()
}
