package executor

import (
	"reflect"
	"sync"
)

// collector accumulates field errors for one execution. The list is
// append-only: once a field has failed it stays failed for the execution's
// lifetime, so every later result emission carries the error. Concurrent
// subtree failures append in observation order.
type collector struct {
	mu   sync.Mutex
	errs []GraphQLError
}

func (c *collector) add(message string, path Path) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, GraphQLError{Message: message, Path: path})
}

// addOnce records the error unless one was already recorded at the same
// path. Live fields can violate the same constraint on every emission;
// repeating the record would only grow the list.
func (c *collector) addOnce(message string, path Path) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.errs {
		if reflect.DeepEqual(e.Path, path) {
			return
		}
	}
	c.errs = append(c.errs, GraphQLError{Message: message, Path: path})
}

// snapshot returns a copy of the list, or nil when empty.
func (c *collector) snapshot() []GraphQLError {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errs) == 0 {
		return nil
	}
	out := make([]GraphQLError, len(c.errs))
	copy(out, c.errs)
	return out
}
