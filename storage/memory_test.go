package storage

import (
	"context"
	"sort"
	"testing"
	"time"
)

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory("")
	ctx := context.Background()

	if _, ok, _ := m.Get(ctx, "token"); ok {
		t.Fatal("empty adapter should miss")
	}
	if err := m.Set(ctx, "token", "abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok, err := m.Get(ctx, "token")
	if err != nil || !ok || v != "abc" {
		t.Fatalf("Get = (%q, %v, %v), want abc", v, ok, err)
	}
	if err := m.Delete(ctx, "token"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := m.Delete(ctx, "token"); err != nil {
		t.Fatalf("Delete of absent key failed: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "token"); ok {
		t.Fatal("deleted key still present")
	}
}

func TestMemoryKeysAreUnprefixed(t *testing.T) {
	m := NewMemory("mall:")
	ctx := context.Background()

	_ = m.Set(ctx, "token", "1")
	_ = m.Set(ctx, "userInfo", "{}")

	keys, err := m.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "token" || keys[1] != "userInfo" {
		t.Fatalf("keys = %v", keys)
	}
}

func TestMemoryWatchDeliversEvents(t *testing.T) {
	m := NewMemory("")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := m.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	_ = m.Set(ctx, "token", "abc")
	_ = m.Delete(ctx, "token")

	want := []Event{{Key: "token", Op: OpSet}, {Key: "token", Op: OpDelete}}
	for _, w := range want {
		select {
		case got := <-events:
			if got != w {
				t.Fatalf("event = %+v, want %+v", got, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %+v", w)
		}
	}

	cancel()
	select {
	case _, open := <-events:
		if open {
			t.Fatal("expected channel to close after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
