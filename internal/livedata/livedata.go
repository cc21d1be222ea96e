// Package livedata turns a JSON document on disk into a live value stream:
// subscribers get the current document immediately and a fresh value every
// time the file changes. It backs the demo server's resolvers so a plain
// file edit re-emits every open live query.
package livedata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/livegql/livegql/stream"
)

// Watcher watches one JSON file and broadcasts each parsed revision to every
// subscribed stream.
type Watcher struct {
	path string
	fsw  *fsnotify.Watcher

	mu      sync.Mutex
	current any
	rev     int
	subs    map[int]chan any
	nextSub int
	closed  bool
}

// Watch reads path once and starts watching its directory for changes.
// Watching the directory rather than the file keeps the watch alive across
// editors that replace the file on save.
func Watch(path string) (*Watcher, error) {
	doc, err := readJSON(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}
	w := &Watcher{
		path:    path,
		fsw:     fsw,
		current: doc,
		rev:     1,
		subs:    make(map[int]chan any),
	}
	go w.run()
	return w, nil
}

// Close stops watching and completes every subscribed stream.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, ch := range w.subs {
		close(ch)
	}
	w.subs = nil
	w.mu.Unlock()
	return w.fsw.Close()
}

// Current returns the latest parsed document.
func (w *Watcher) Current() any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Stream returns a stream that emits the current document on subscription
// and every later revision. It completes when the watcher is closed.
func (w *Watcher) Stream() stream.Stream {
	return stream.New(func(ctx context.Context, next func(any) bool) error {
		ch, initial, ok := w.attach()
		if !ok {
			return nil
		}
		defer w.detach(ch)
		if !next(initial) {
			return nil
		}
		for {
			select {
			case doc, open := <-ch:
				if !open {
					return nil
				}
				if !next(doc) {
					return nil
				}
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// Field returns a stream of one top-level document property, for binding as
// a root field resolver.
func (w *Watcher) Field(name string) stream.Stream {
	return stream.Map(w.Stream(), func(doc any) any {
		if m, ok := doc.(map[string]any); ok {
			return m[name]
		}
		return nil
	})
}

func (w *Watcher) attach() (chan any, any, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, nil, false
	}
	// Buffered so a slow subscriber drops to the broadcast loop's conflation
	// rather than blocking file-event handling.
	ch := make(chan any, 1)
	w.nextSub++
	w.subs[w.nextSub] = ch
	return ch, w.current, true
}

func (w *Watcher) detach(ch chan any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, c := range w.subs {
		if c == ch {
			delete(w.subs, id)
			return
		}
	}
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			doc, err := readJSON(w.path)
			if err != nil {
				// Editors often truncate before writing; keep the previous
				// revision until the file parses again.
				continue
			}
			w.broadcast(doc)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) broadcast(doc any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.current = doc
	w.rev++
	for _, ch := range w.subs {
		// Conflate: replace a pending revision the subscriber has not
		// consumed yet.
		select {
		case <-ch:
		default:
		}
		ch <- doc
	}
}

func readJSON(path string) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}
