package executor

import "fmt"

// Path locates a field in the response tree: response keys for object
// fields, 0-based indices for list elements, from root to the node.
type Path []PathElement

// PathElement is a string response key or an int list index.
type PathElement any

// Child extends the path with a response key or index, copying so sibling
// branches never share backing storage.
func (p Path) Child(elem PathElement) Path {
	next := make(Path, len(p)+1)
	copy(next, p)
	next[len(p)] = elem
	return next
}

func (p Path) String() string {
	out := ""
	for i, elem := range p {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				out += "."
			}
			out += v
		case int:
			out += fmt.Sprintf("[%d]", v)
		}
	}
	return out
}

// GraphQLError is one recorded per-field failure. It never aborts sibling
// resolution.
type GraphQLError struct {
	Message string `json:"message"`
	Path    Path   `json:"path,omitempty"`
}

func (e GraphQLError) Error() string { return e.Message }

// ExecutionResult is one emission of a live execution: the combined data
// snapshot plus every error collected so far in this execution.
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}
