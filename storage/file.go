package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// File is an Adapter backed by a single JSON document on disk. Every write
// rewrites the document atomically (temp file + rename) so another process
// never observes a torn record. Reads always go to disk, which is what lets
// two processes sharing the file converge after an external logout.
type File struct {
	mu     sync.Mutex
	path   string
	prefix string
}

// NewFile opens (or lazily creates) the document at path. An empty prefix
// falls back to [DefaultKeyPrefix].
func NewFile(path, prefix string) (*File, error) {
	if path == "" {
		return nil, errors.New("storage: file path required")
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return &File{path: path, prefix: prefix}, nil
}

// Get implements Adapter.
func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := doc[f.prefix+key]
	return v, ok, nil
}

// Set implements Adapter.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	doc[f.prefix+key] = value
	return f.store(doc)
}

// Delete implements Adapter.
func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := doc[f.prefix+key]; !ok {
		return nil
	}
	delete(doc, f.prefix+key)
	return f.store(doc)
}

// Keys implements Adapter.
func (f *File) Keys(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, strings.TrimPrefix(k, f.prefix))
	}
	return keys, nil
}

// Close implements Adapter.
func (f *File) Close() error { return nil }

// Watch implements Watcher using fsnotify on the containing directory.
// Events are debounced: editors and atomic renames produce bursts of
// filesystem events for one logical change.
func (f *File) Watch(ctx context.Context) (<-chan Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("storage: watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("storage: watch dir: %w", err)
	}

	out := make(chan Event, 16)

	// The baseline snapshot is taken before Watch returns so a write that
	// lands immediately after cannot be absorbed into it.
	prev, _ := f.snapshot()

	go func() {
		defer close(out)
		defer watcher.Close()

		const debounce = 50 * time.Millisecond
		var last time.Time

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(f.path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
					continue
				}
				if time.Since(last) < debounce {
					continue
				}
				last = time.Now()

				cur, err := f.snapshot()
				if err != nil {
					continue
				}
				for _, change := range diff(prev, cur, f.prefix) {
					select {
					case out <- change:
					default:
					}
				}
				prev = cur
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, nil
}

func (f *File) snapshot() (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// load reads the document; a missing file is an empty document.
func (f *File) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read: %w", err)
	}
	doc := map[string]string{}
	if len(raw) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("storage: decode: %w", err)
	}
	return doc, nil
}

func (f *File) store(doc map[string]string) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("storage: write: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}

func diff(prev, cur map[string]string, prefix string) []Event {
	var events []Event
	for k, v := range cur {
		if old, ok := prev[k]; !ok || old != v {
			events = append(events, Event{Key: strings.TrimPrefix(k, prefix), Op: OpSet})
		}
	}
	for k := range prev {
		if _, ok := cur[k]; !ok {
			events = append(events, Event{Key: strings.TrimPrefix(k, prefix), Op: OpDelete})
		}
	}
	return events
}
