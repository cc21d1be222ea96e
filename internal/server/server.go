// Package server exposes a schema over HTTP: POST /graphql answers with the
// execution's first result, GET /graphql/live streams every result over
// Server-Sent Events for as long as the client stays connected.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/launchdarkly/eventsource"

	livegql "github.com/livegql/livegql"
	eventbus "github.com/livegql/livegql/internal/eventbus"
	events "github.com/livegql/livegql/internal/events"
	execid "github.com/livegql/livegql/internal/execid"
	schema "github.com/livegql/livegql/schema"
)

// Options configures the handler.
type Options struct {
	// Timeout bounds a POST execution's wait for its first result.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses.
	Pretty bool

	// MaxBodyBytes limits the request body size. 0 means unlimited.
	MaxBodyBytes int64
}

// Option mutates Options.
type Option func(*Options)

// WithTimeout sets the POST first-result timeout.
func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }

// WithPretty enables indented JSON responses.
func WithPretty() Option { return func(o *Options) { o.Pretty = true } }

// WithMaxBodyBytes limits the request body size.
func WithMaxBodyBytes(n int64) Option { return func(o *Options) { o.MaxBodyBytes = n } }

// Handler serves GraphQL over HTTP and SSE.
type Handler struct {
	schema *schema.Schema
	opt    Options
	router *mux.Router
	sse    *eventsource.Server
}

// New creates a handler for the given schema.
func New(sch *schema.Schema, opts ...Option) *Handler {
	opt := Options{Timeout: 10 * time.Second}
	for _, f := range opts {
		f(&opt)
	}
	sse := eventsource.NewServer()
	sse.Gzip = false
	sse.AllowCORS = true
	sse.ReplayAll = true

	h := &Handler{schema: sch, opt: opt, sse: sse}
	r := mux.NewRouter()
	r.HandleFunc("/graphql", h.servePost).Methods(http.MethodPost)
	r.HandleFunc("/graphql/live", h.serveLive).Methods(http.MethodGet)
	h.router = r
	return h
}

// Close shuts down the SSE server, disconnecting live subscribers.
func (h *Handler) Close() { h.sse.Close() }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, _ := execid.NewContext(r.Context())
	r = r.WithContext(ctx)

	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	h.router.ServeHTTP(sw, r)
	eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: sw.status, Duration: time.Since(start)})
}

// servePost runs the operation and answers with its first result. Mutations
// settle exactly once, so the first result is the whole result; for queries
// this is the point-in-time snapshot.
func (h *Handler) servePost(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r, h.opt.MaxBodyBytes)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestErrorBody(err.Error()), h.opt.Pretty)
		return
	}

	ctx := r.Context()
	if h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	rs := livegql.Do(livegql.Params{
		Schema:         h.schema,
		Source:         req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
	})
	res, ok := rs.First(ctx)
	if !ok {
		writeJSON(w, http.StatusOK, requestErrorBody("execution produced no result"), h.opt.Pretty)
		return
	}
	writeJSON(w, http.StatusOK, res, h.opt.Pretty)
}

// serveLive streams results over SSE. The execution is registered as a
// per-request replay channel so no emission can be lost between subscribing
// and the client attaching.
func (h *Handler) serveLive(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("query")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, requestErrorBody("missing 'query'"), h.opt.Pretty)
		return
	}
	variables := map[string]any{}
	if v := q.Get("variables"); v != "" {
		if err := json.Unmarshal([]byte(v), &variables); err != nil {
			writeJSON(w, http.StatusBadRequest, requestErrorBody("invalid 'variables' JSON"), h.opt.Pretty)
			return
		}
	}

	rs := livegql.Do(livegql.Params{
		Schema:         h.schema,
		Source:         query,
		OperationName:  q.Get("operationName"),
		VariableValues: variables,
	})

	id, _ := execid.FromContext(r.Context())
	channel := fmt.Sprintf("exec-%d", id)
	h.sse.Register(channel, &executionRepo{ctx: r.Context(), results: rs})
	defer h.sse.Unregister(channel, true)

	h.sse.Handler(channel)(w, r)
}

// executionRepo adapts one execution to eventsource's replay interface: the
// replay channel is the execution's own result feed.
type executionRepo struct {
	ctx     context.Context
	results *livegql.ResultStream
}

func (e *executionRepo) Replay(channel, id string) chan eventsource.Event {
	out := make(chan eventsource.Event)
	go func() {
		defer close(out)
		seq := 0
		for res := range e.results.Subscribe(e.ctx) {
			data, err := json.Marshal(res)
			if err != nil {
				continue
			}
			seq++
			select {
			case out <- resultEvent{id: strconv.Itoa(seq), data: string(data)}:
			case <-e.ctx.Done():
				return
			}
		}
	}()
	return out
}

// resultEvent is one SSE frame carrying an execution result.
type resultEvent struct {
	id   string
	data string
}

func (e resultEvent) Id() string    { return e.id }
func (e resultEvent) Event() string { return "result" }
func (e resultEvent) Data() string  { return e.data }

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

func decodeRequest(r *http.Request, maxBody int64) (graphQLRequest, error) {
	var req graphQLRequest
	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return req, fmt.Errorf("failed to read body")
	}
	defer r.Body.Close()
	if maxBody > 0 && int64(len(body)) > maxBody {
		return req, fmt.Errorf("body too large")
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("invalid JSON")
	}
	if req.Query == "" {
		return req, fmt.Errorf("missing 'query'")
	}
	return req, nil
}

func requestErrorBody(message string) *livegql.Result {
	return &livegql.Result{Errors: []livegql.Error{{Message: message}}}
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush lets the SSE layer stream through the status recorder.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
