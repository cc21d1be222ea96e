package schema

import "context"

// Resolver computes a field's value. parent is the parent object value (the
// root value for root fields), args holds the field's resolved arguments,
// and gctx is the execution-scoped context value shared by reference across
// every resolver invocation of one execution. Writes to gctx made by a
// resolver are visible to resolvers of its own sub-selections; visibility
// across concurrently evaluated sibling subtrees is undefined.
//
// A resolver may return:
//   - a plain value, treated as a single emission that completes immediately
//   - nil, treated as a null leaf
//   - a stream.Stream, whose every emission re-drives the field's subtree
//
// A returned error (or panic) is recorded as a field error; it nulls the
// field without aborting sibling resolution.
type Resolver func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error)

// ResolverMap binds resolvers by type name and field name.
type ResolverMap map[string]map[string]Resolver
