package storage

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-process Adapter backed by a map. It is the default
// substrate when no other adapter is configured and the workhorse of the
// test suite. Watch is supported so cross-tab logout behavior can be
// exercised without a filesystem or redis.
type Memory struct {
	mu     sync.RWMutex
	prefix string
	data   map[string]string
	subs   map[int]chan Event
	nextID int
}

// NewMemory returns an empty in-memory adapter. An empty prefix falls back
// to [DefaultKeyPrefix].
func NewMemory(prefix string) *Memory {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Memory{
		prefix: prefix,
		data:   map[string]string{},
		subs:   map[int]chan Event{},
	}
}

// Get implements Adapter.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[m.prefix+key]
	return v, ok, nil
}

// Set implements Adapter.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[m.prefix+key] = value
	m.broadcastLocked(Event{Key: key, Op: OpSet})
	m.mu.Unlock()
	return nil
}

// Delete implements Adapter.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	if _, ok := m.data[m.prefix+key]; ok {
		delete(m.data, m.prefix+key)
		m.broadcastLocked(Event{Key: key, Op: OpDelete})
	}
	m.mu.Unlock()
	return nil
}

// Keys implements Adapter.
func (m *Memory) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, strings.TrimPrefix(k, m.prefix))
	}
	return keys, nil
}

// Close implements Adapter.
func (m *Memory) Close() error {
	m.mu.Lock()
	for id, ch := range m.subs {
		close(ch)
		delete(m.subs, id)
	}
	m.mu.Unlock()
	return nil
}

// Watch implements Watcher. Events are dropped rather than blocking a slow
// consumer.
func (m *Memory) Watch(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, 16)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		if sub, ok := m.subs[id]; ok {
			close(sub)
			delete(m.subs, id)
		}
		m.mu.Unlock()
	}()

	return ch, nil
}

func (m *Memory) broadcastLocked(ev Event) {
	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
