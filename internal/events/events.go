// Package events defines the lifecycle event payloads published on the
// eventbus around HTTP handling and live query execution.
package events

import (
	"net/http"
	"time"
)

// HTTPStart is published when an HTTP request is received.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is published after the HTTP handler completes.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}

// ExecutionStart is published when a result stream is subscribed, before any
// resolver runs.
type ExecutionStart struct {
	Query         string
	OperationName string
	OperationType string
}

// ExecutionFinish is published when a result stream terminates, whether by
// completion or by subscriber cancellation.
type ExecutionFinish struct {
	Query         string
	OperationName string
	OperationType string
	Emissions     int
	ErrorCount    int
	Duration      time.Duration
}
