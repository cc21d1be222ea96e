package executor

import (
	"context"
	"fmt"

	language "github.com/livegql/livegql/internal/language"
	schema "github.com/livegql/livegql/schema"
	"github.com/livegql/livegql/stream"
)

// Executor runs operations of parsed documents against one executable
// schema. It is stateless and safe for concurrent use; all per-execution
// state lives in the stream returned by ExecuteRequest.
type Executor struct {
	schema *schema.Schema
}

// NewExecutor creates an executor bound to the given schema.
func NewExecutor(s *schema.Schema) *Executor {
	return &Executor{schema: s}
}

// ExecuteRequest plans the requested operation and returns the live result
// stream. Every emission is a *ExecutionResult holding a consistent data
// snapshot plus the errors collected so far. Each subscription is an
// independent execution with its own error list and resolver invocations;
// cancelling the subscription context tears down every resolver stream.
//
// The document is assumed to be validated; planning failures that validation
// would have caught (unknown operation, missing root type, unknown field)
// surface as a single errors-only emission.
func (e *Executor) ExecuteRequest(
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	rootValue any,
	contextValue any,
) stream.Stream {
	operation := getOperation(document, operationName)
	if operation == nil {
		return errorResult("operation not found")
	}

	rootType := e.rootType(operation.Operation)
	if rootType == nil {
		return errorResult(fmt.Sprintf("schema has no %s root type", operation.Operation))
	}

	pl := &planner{
		schema:    e.schema,
		document:  document,
		variables: operationVariables(operation, variableValues),
	}
	plans, err := pl.planSelectionSet(rootType, operation.SelectionSet)
	if err != nil {
		return errorResult(err.Error())
	}

	sequential := operation.Operation == language.Mutation
	return resultStream(plans, sequential, rootValue, contextValue)
}

// resultStream defers execution state to subscription time: each subscriber
// gets a fresh collector, fresh resolver subscriptions, and its own
// scheduling run over the shared immutable plans.
func resultStream(plans []*fieldPlan, sequential bool, rootValue, contextValue any) stream.Stream {
	return stream.Defer(func(_ context.Context) stream.Stream {
		st := &execState{
			rootValue:    rootValue,
			contextValue: contextValue,
			errors:       &collector{},
		}
		var root stream.Stream
		if sequential {
			root = st.runSequential(plans)
		} else {
			root = st.runConcurrent(plans)
		}
		return stream.Map(root, func(v any) any {
			return &ExecutionResult{Data: v, Errors: st.errors.snapshot()}
		})
	})
}

func (e *Executor) rootType(op language.Operation) *schema.Type {
	switch op {
	case language.Query:
		return e.schema.GetQueryType()
	case language.Mutation:
		return e.schema.GetMutationType()
	case language.Subscription:
		return e.schema.GetSubscriptionType()
	default:
		return nil
	}
}

// errorResult is a single-emission, immediately completing result stream
// with null data, used when execution cannot start at all.
func errorResult(messages ...string) stream.Stream {
	errs := make([]GraphQLError, len(messages))
	for i, m := range messages {
		errs[i] = GraphQLError{Message: m}
	}
	return stream.Just(&ExecutionResult{Data: nil, Errors: errs})
}

// getOperation selects the operation by name, falling back to the document's
// only operation when the name is empty.
func getOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" && len(document.Operations) == 1 {
		return document.Operations[0]
	}
	return document.Operations.ForName(operationName)
}
