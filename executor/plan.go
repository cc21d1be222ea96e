package executor

import (
	"context"
	"fmt"

	language "github.com/livegql/livegql/internal/language"
	schema "github.com/livegql/livegql/schema"
)

// fieldPlan is the resolved description of one selected field, built once
// per execution and immutable afterwards. children is empty for leaves.
type fieldPlan struct {
	responseKey string
	fieldName   string
	resolver    schema.Resolver
	arguments   map[string]any
	typeRef     *schema.TypeRef
	isList      bool
	isComposite bool
	children    []*fieldPlan
}

// planner turns collected selections into field plans against one document
// and one set of variable bindings.
type planner struct {
	schema    *schema.Schema
	document  *language.QueryDocument
	variables map[string]any
}

// planSelectionSet builds the ordered field plans for a selection set on
// objectType. Selecting a field the type does not declare is fatal to the
// whole plan; with a validated document it cannot happen.
func (pl *planner) planSelectionSet(objectType *schema.Type, selectionSet language.SelectionSet) ([]*fieldPlan, error) {
	grouped := pl.collectFields(objectType, selectionSet, newFieldGroups(), make(map[string]bool))
	plans := make([]*fieldPlan, 0, len(grouped.order))

	for _, g := range grouped.ordered() {
		field := g.fields[0]
		if field.Name == "__typename" {
			plans = append(plans, typenamePlan(g.responseKey, objectType.Name))
			continue
		}

		fieldDef := objectType.Field(field.Name)
		if fieldDef == nil {
			return nil, fmt.Errorf("Cannot query field %q on type %q.", field.Name, objectType.Name)
		}

		p := &fieldPlan{
			responseKey: g.responseKey,
			fieldName:   field.Name,
			resolver:    fieldDef.Resolver,
			arguments:   argumentValues(fieldDef, field.Arguments, pl.variables),
			typeRef:     fieldDef.Type,
			isList:      fieldDef.Type.IsList(),
		}

		namedType := pl.schema.Types[fieldDef.Type.NamedTypeName()]
		if namedType != nil && namedType.Kind == schema.TypeKindObject {
			p.isComposite = true
			children, err := pl.planSelectionSet(namedType, mergeSelectionSets(g.fields))
			if err != nil {
				return nil, err
			}
			p.children = children
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// typenamePlan synthesizes the __typename meta field as a constant leaf.
func typenamePlan(responseKey, typeName string) *fieldPlan {
	return &fieldPlan{
		responseKey: responseKey,
		fieldName:   "__typename",
		resolver: func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
			return typeName, nil
		},
	}
}

// fieldGroups preserves the document order of response keys while merging
// selections of the same key.
type fieldGroups struct {
	order []string
	byKey map[string]*fieldGroup
}

type fieldGroup struct {
	responseKey string
	fields      []*language.Field
}

func newFieldGroups() *fieldGroups {
	return &fieldGroups{byKey: make(map[string]*fieldGroup)}
}

func (fg *fieldGroups) add(responseKey string, field *language.Field) {
	if g, ok := fg.byKey[responseKey]; ok {
		g.fields = append(g.fields, field)
		return
	}
	fg.order = append(fg.order, responseKey)
	fg.byKey[responseKey] = &fieldGroup{responseKey: responseKey, fields: []*language.Field{field}}
}

func (fg *fieldGroups) ordered() []*fieldGroup {
	out := make([]*fieldGroup, len(fg.order))
	for i, key := range fg.order {
		out[i] = fg.byKey[key]
	}
	return out
}

// collectFields flattens a selection set into response-key groups, applying
// aliases, fragment spreads, inline fragments, and @skip/@include.
func (pl *planner) collectFields(objectType *schema.Type, selectionSet language.SelectionSet, grouped *fieldGroups, visited map[string]bool) *fieldGroups {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !pl.shouldInclude(sel.Directives) {
				continue
			}
			responseKey := sel.Alias
			if responseKey == "" {
				responseKey = sel.Name
			}
			grouped.add(responseKey, sel)

		case *language.InlineFragment:
			if !pl.shouldInclude(sel.Directives) {
				continue
			}
			if sel.TypeCondition != "" && sel.TypeCondition != objectType.Name {
				continue
			}
			pl.collectFields(objectType, sel.SelectionSet, grouped, visited)

		case *language.FragmentSpread:
			if !pl.shouldInclude(sel.Directives) {
				continue
			}
			if visited[sel.Name] {
				continue
			}
			visited[sel.Name] = true
			def := pl.document.Fragments.ForName(sel.Name)
			if def == nil {
				continue
			}
			if def.TypeCondition != "" && def.TypeCondition != objectType.Name {
				continue
			}
			pl.collectFields(objectType, def.SelectionSet, grouped, visited)
		}
	}
	return grouped
}

func (pl *planner) shouldInclude(directives language.DirectiveList) bool {
	if d := directives.ForName("skip"); d != nil {
		if cond, ok := pl.directiveIf(d); ok && cond {
			return false
		}
	}
	if d := directives.ForName("include"); d != nil {
		if cond, ok := pl.directiveIf(d); ok && !cond {
			return false
		}
	}
	return true
}

func (pl *planner) directiveIf(d *language.Directive) (bool, bool) {
	for _, arg := range d.Arguments {
		if arg.Name == "if" {
			v, ok := language.GoValueWithVariables(arg.Value, pl.variables).(bool)
			return v, ok
		}
	}
	return false, false
}

func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}
