package executor

import (
	language "github.com/livegql/livegql/internal/language"
	schema "github.com/livegql/livegql/schema"
)

// argumentValues resolves a field's AST argument list into a plain map.
// Literals convert directly, variable references substitute from the
// operation's bindings (absent variables resolve to nil), and declared
// defaults fill arguments the selection omitted. Coercion against declared
// argument types is the schema layer's concern, not done here.
func argumentValues(fieldDef *schema.Field, args language.ArgumentList, variables map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for _, arg := range args {
		out[arg.Name] = language.GoValueWithVariables(arg.Value, variables)
	}
	for _, def := range fieldDef.Arguments {
		if _, ok := out[def.Name]; !ok && def.DefaultValue != nil {
			out[def.Name] = def.DefaultValue
		}
	}
	return out
}

// operationVariables merges caller-provided variable values with the
// operation's declared defaults. Variables that are neither provided nor
// defaulted stay absent and resolve to nil at substitution time.
func operationVariables(op *language.OperationDefinition, provided map[string]any) map[string]any {
	out := make(map[string]any, len(op.VariableDefinitions))
	for _, def := range op.VariableDefinitions {
		if v, ok := provided[def.Variable]; ok {
			out[def.Variable] = v
			continue
		}
		if def.DefaultValue != nil {
			out[def.Variable] = language.GoValue(def.DefaultValue)
		}
	}
	return out
}
