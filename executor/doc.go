// Package executor implements a live GraphQL executor: resolvers may return
// reactive value streams instead of single values, and the executor composes
// them into a single stream of {data, errors} results that re-emits whenever
// any contributing field changes.
//
// # Overview
//
// A conventional executor resolves a query once. This executor keeps the
// query alive: every field's resolved value is modeled as a stream (a plain
// value is a one-emission stream), object fields combine their children's
// streams with a latest-value policy, and the root operation is just the
// outermost combination. A resolver backed by a changing data source emits
// again; the change propagates upward and the subscriber receives a fresh
// consistent snapshot.
//
// # Planning
//
// Before any resolver runs, the requested operation's selection tree is
// flattened into field plans:
//   - Selections are grouped by response key (alias or name) in document
//     order, expanding fragment spreads and inline fragments and applying
//     @skip/@include against the operation's variable bindings.
//   - Each plan carries the field's declared resolver (if any), its resolved
//     argument map (literals and variable substitutions, plus declared
//     defaults), its type reference, and, for object-typed fields, the child
//     plans of its merged sub-selections.
//   - Plans are immutable and shared by every subscription of the returned
//     result stream.
//
// Variable and argument handling is substitution only. Coercion against
// declared types is the schema layer's concern; a document that passed
// validation never needs it here.
//
// # Value stream composition
//
// Per field, at subscription time:
//  1. The declared resolver is invoked with (ctx, parent, args, gctx).
//     Invocation is lazy (deferred to subscription) and runs in its own
//     goroutine. An error return or panic becomes a terminal error of the
//     field's stream.
//  2. Without a resolver, the field reads the parent's property by field
//     name (never by alias), emitting exactly once.
//  3. The return value is normalized: a stream.Stream is used directly,
//     anything else becomes a single emission, nil and typed nils become
//     null.
//  4. List fields expect each emission to be a slice (or null): every
//     element gets its own child combination, and the element streams are
//     combined positionally. A non-slice value is a shape error recorded
//     against the field; a null slice short-circuits to null.
//  5. Object fields switch to a fresh combination of their child streams on
//     every parent emission; each child sees the new parent value. The
//     combined object emits once every child has emitted, then again on any
//     child change, and completes when all children complete.
//  6. A failed field (resolver error, panic, stream error, or shape error)
//     records a located error {message, path} and contributes null; sibling
//     fields are unaffected. A non-nullable field resolving to null records
//     the violation and stays field-local (no ancestor nulling).
//
// # Scheduling
//
// Read operations (query, subscription) combine the root field plans exactly
// like object children: all subscribed immediately, first result after every
// root field has a value, live updates afterwards.
//
// Mutations run their root fields strictly in declaration order. Each root
// field's stream is subscribed and awaited to its first settled value, and
// its subscription is then cancelled, before the next field's resolver is
// invoked. Side effects of earlier root fields are therefore always visible
// to later ones, and the stream emits a single combined object after the
// last field settles.
//
// # Errors
//
// Errors accumulate in a per-execution, append-only collector rather than
// flowing through the combinators. Every result emission carries a snapshot
// of the collector, so an error recorded once persists in all later
// emissions of that execution. Paths mix response keys and 0-based list
// indices from the root to the failing field. Only a failure that prevents
// execution from starting at all (unknown operation, missing root type,
// planning against an unvalidated document) produces an errors-only result
// with null data.
//
// # Cancellation and sharing
//
// Cancelling the subscription context propagates through every combinator to
// every resolver stream; long-lived resolvers must honor ctx. The gctx value
// passed to resolvers is shared by reference across one execution: a
// parent's writes are visible to its children (children are built only after
// the parent emitted), while visibility between concurrent sibling subtrees
// is undefined.
package executor
