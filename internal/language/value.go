package language

import "strconv"

// GoValue converts a literal AST value to its plain Go representation.
// Variable references resolve to nil; use GoValueWithVariables when bindings
// are available.
func GoValue(value *Value) any {
	return GoValueWithVariables(value, nil)
}

// GoValueWithVariables converts an AST value to a plain Go value,
// substituting variable references (including those nested inside list and
// object literals) from the given bindings. Absent variables resolve to nil.
func GoValueWithVariables(value *Value, variables map[string]any) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case Variable:
		return variables[value.Raw]
	case IntValue:
		iv, _ := strconv.Atoi(value.Raw)
		return iv
	case FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case StringValue, BlockValue:
		return value.Raw
	case BooleanValue:
		return value.Raw == "true"
	case NullValue:
		return nil
	case EnumValue:
		return value.Raw
	case ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = GoValueWithVariables(c.Value, variables)
		}
		return out
	case ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, f := range value.Children {
			m[f.Name] = GoValueWithVariables(f.Value, variables)
		}
		return m
	default:
		return nil
	}
}
