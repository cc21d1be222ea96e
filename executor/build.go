package executor

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/livegql/livegql/stream"
)

// execState is the mutable state of one execution run: one collector, one
// shared context value, one root value. A new execState is created per
// subscription so replayed executions never share errors.
type execState struct {
	rootValue    any
	contextValue any
	errors       *collector
}

// fieldStream produces the fully combined value stream for one planned
// field. Failures anywhere in the field's subtree are recorded against the
// nearest enclosing field path and recovered to null, so sibling fields
// keep combining.
func (st *execState) fieldStream(p *fieldPlan, parent any, path Path) stream.Stream {
	base := st.resolveStream(p, parent)

	var s stream.Stream
	switch {
	case p.isList:
		s = st.listStream(p, base, path)
	case p.isComposite:
		s = st.objectStream(p, base, path)
	default:
		s = stream.Map(base, normalizeLeaf)
	}

	if p.typeRef.IsNonNull() {
		s = stream.Map(s, func(v any) any {
			if v == nil {
				st.errors.addOnce(fmt.Sprintf("Cannot return null for non-nullable field %s", path), path)
			}
			return v
		})
	}

	return stream.Recover(s, func(err error) any {
		st.errors.add(err.Error(), path)
		return nil
	})
}

// resolveStream yields the field's raw value stream: the resolver's
// normalized return, or a one-shot read of the parent's same-named property
// when no resolver is declared. The lookup uses the field name, never the
// alias. Resolver invocation is deferred to subscription time; that is what
// lets the scheduler sequence mutation root fields.
func (st *execState) resolveStream(p *fieldPlan, parent any) stream.Stream {
	if p.resolver == nil {
		return stream.Just(property(parent, p.fieldName))
	}
	return stream.Defer(func(ctx context.Context) stream.Stream {
		v, err := invokeResolver(ctx, p.resolver, parent, p.arguments, st.contextValue)
		if err != nil {
			return stream.Error(err)
		}
		if s, ok := v.(stream.Stream); ok {
			return s
		}
		return stream.Just(normalizeLeaf(v))
	})
}

// objectStream rebuilds the field's children against every parent emission
// and combines their latest values into one object per tick. A null parent
// value short-circuits to null without touching the children.
func (st *execState) objectStream(p *fieldPlan, base stream.Stream, path Path) stream.Stream {
	return stream.SwitchMap(base, func(parentValue any) stream.Stream {
		if isNullish(parentValue) {
			return stream.Just(nil)
		}
		return st.combineFields(p.children, parentValue, path)
	})
}

// listStream expects each emission of base to be a slice (or null) and
// combines the element streams into an array stream. Elements of composite
// element types get the plan's children applied per element; element
// failures null the element and record an index-tagged error.
func (st *execState) listStream(p *fieldPlan, base stream.Stream, path Path) stream.Stream {
	return stream.SwitchMap(base, func(value any) stream.Stream {
		if isNullish(value) {
			return stream.Just(nil)
		}
		items, ok := toSlice(value)
		if !ok {
			return stream.Error(fmt.Errorf("expected list value for field %q, got %T", p.fieldName, value))
		}
		elems := make([]stream.Stream, len(items))
		for i, item := range items {
			elems[i] = st.elementStream(p, item, path.Child(i))
		}
		return stream.CombineLatestSlice(elems)
	})
}

func (st *execState) elementStream(p *fieldPlan, item any, path Path) stream.Stream {
	var s stream.Stream
	if p.isComposite {
		if isNullish(item) {
			return stream.Just(nil)
		}
		s = st.combineFields(p.children, item, path)
	} else {
		s = stream.Just(normalizeLeaf(item))
	}
	return stream.Recover(s, func(err error) any {
		st.errors.add(err.Error(), path)
		return nil
	})
}

// combineFields builds one stream per plan against the same parent value and
// combines them keyed by response key: first emission once every field has a
// value, then a fresh snapshot on every change. This same combinator drives
// object fields and read-operation roots.
func (st *execState) combineFields(plans []*fieldPlan, parent any, path Path) stream.Stream {
	keyed := make([]stream.Keyed, len(plans))
	for i, p := range plans {
		keyed[i] = stream.Keyed{
			Key:    p.responseKey,
			Source: st.fieldStream(p, parent, path.Child(p.responseKey)),
		}
	}
	return stream.CombineLatestKeyed(keyed)
}

// invokeResolver calls the user resolver, converting a panic into an
// ordinary field error.
func invokeResolver(ctx context.Context, r func(context.Context, any, map[string]any, any) (any, error), parent any, args map[string]any, gctx any) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()
	return r(ctx, parent, args, gctx)
}

// property reads the parent's same-named property: a map entry for map
// parents, an exported struct field (exact or case-insensitive match) for
// struct parents. Missing properties and null parents read as nil.
func property(parent any, fieldName string) any {
	if parent == nil {
		return nil
	}
	if m, ok := parent.(map[string]any); ok {
		return normalizeLeaf(m[fieldName])
	}

	rv := reflect.ValueOf(parent)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		v := rv.MapIndex(reflect.ValueOf(fieldName))
		if !v.IsValid() {
			return nil
		}
		return normalizeLeaf(v.Interface())
	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			if f.Name == fieldName || strings.EqualFold(f.Name, fieldName) {
				return normalizeLeaf(rv.Field(i).Interface())
			}
		}
	}
	return nil
}

// normalizeLeaf coerces absent values and typed nils to a plain null.
func normalizeLeaf(v any) any {
	if isNullish(v) {
		return nil
	}
	return v
}

// isNullish reports nil interfaces and typed nils.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// toSlice converts any slice or array value to []any.
func toSlice(v any) ([]any, bool) {
	if direct, ok := v.([]any); ok {
		return direct, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
