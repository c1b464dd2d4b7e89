package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/lingbai/mallclient/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	adapter := storage.NewMemory("")
	return NewStore(adapter, nil), adapter
}

func merchantSession() Session {
	return Session{
		Token: "tok-merchant",
		Profile: Profile{
			ID:         7,
			Username:   "shopkeeper",
			Role:       RoleMerchant,
			IsMerchant: true,
			MerchantID: 42,
			ShopName:   "Night Parade Goods",
		},
	}
}

func TestSetPersistsBothLayouts(t *testing.T) {
	store, adapter := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, merchantSession()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	blob, ok, err := adapter.Get(ctx, "user-store")
	if err != nil || !ok {
		t.Fatalf("primary blob missing: ok=%v err=%v", ok, err)
	}
	var persisted Session
	if err := json.Unmarshal([]byte(blob), &persisted); err != nil {
		t.Fatalf("primary blob unreadable: %v", err)
	}
	if persisted.Token != "tok-merchant" || persisted.Profile.MerchantID != 42 {
		t.Fatalf("primary blob mismatch: %+v", persisted)
	}

	for key, want := range map[string]string{
		"token":      "tok-merchant",
		"merchantId": "42",
		"userId":     "7",
	} {
		got, ok, err := adapter.Get(ctx, key)
		if err != nil || !ok {
			t.Fatalf("flattened key %q missing: ok=%v err=%v", key, ok, err)
		}
		if got != want {
			t.Fatalf("flattened key %q = %q, want %q", key, got, want)
		}
	}
}

func TestClearRemovesEveryKeyAndIsIdempotent(t *testing.T) {
	store, adapter := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, merchantSession()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}

	keys, err := adapter.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected no persisted keys after Clear, got %v", keys)
	}
	if store.Current().Authenticated() {
		t.Fatal("expected anonymous session after Clear")
	}
}

func TestRestorePrimaryBlobWins(t *testing.T) {
	store, adapter := newTestStore(t)
	ctx := context.Background()

	blob, _ := json.Marshal(merchantSession())
	if err := adapter.Set(ctx, "user-store", string(blob)); err != nil {
		t.Fatalf("seed blob: %v", err)
	}
	// Contradictory flattened leftovers must lose to the blob.
	_ = adapter.Set(ctx, "token", "stale-token")

	sess, err := store.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if sess.Token != "tok-merchant" {
		t.Fatalf("expected blob token to win, got %q", sess.Token)
	}

	// Flattened keys are rewritten to agree with the blob.
	token, ok, _ := adapter.Get(ctx, "token")
	if !ok || token != "tok-merchant" {
		t.Fatalf("flattened token not rewritten: ok=%v token=%q", ok, token)
	}
}

func TestRestoreBackfillsFromFlattenedKeys(t *testing.T) {
	store, adapter := newTestStore(t)
	ctx := context.Background()

	// Only the flattened layout survives: a merchant id and a profile
	// with no role tag.
	_ = adapter.Set(ctx, "token", "tok-legacy")
	_ = adapter.Set(ctx, "userInfo", `{"id":3,"username":"shopkeeper"}`)
	_ = adapter.Set(ctx, "merchantId", "42")

	sess, err := store.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if sess.Token != "tok-legacy" {
		t.Fatalf("token = %q, want tok-legacy", sess.Token)
	}
	if sess.Profile.MerchantID != 42 {
		t.Fatalf("MerchantID = %d, want 42", sess.Profile.MerchantID)
	}
	if !sess.Profile.IsMerchant {
		t.Fatal("expected IsMerchant=true synthesized from merchant id")
	}
	if sess.Profile.Role != RoleMerchant {
		t.Fatalf("Role = %q, want %q", sess.Profile.Role, RoleMerchant)
	}

	// Both layouts agree afterwards.
	blob, ok, _ := adapter.Get(ctx, "user-store")
	if !ok {
		t.Fatal("primary blob not rewritten after restore")
	}
	var rewritten Session
	if err := json.Unmarshal([]byte(blob), &rewritten); err != nil {
		t.Fatalf("rewritten blob unreadable: %v", err)
	}
	if rewritten.Profile.Role != RoleMerchant {
		t.Fatalf("rewritten blob role = %q, want merchant", rewritten.Profile.Role)
	}
}

func TestRestoreEmptyStorageYieldsAnonymous(t *testing.T) {
	store, adapter := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if sess.Authenticated() {
		t.Fatal("expected anonymous session from empty storage")
	}
	keys, _ := adapter.Keys(ctx)
	if len(keys) != 0 {
		t.Fatalf("anonymous restore must not write keys, got %v", keys)
	}
}

func TestRestoreCorruptBlobFallsBackToFlattened(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	adapter := store.adapter
	_ = adapter.Set(ctx, "user-store", "{not json")
	_ = adapter.Set(ctx, "token", "tok-fallback")

	sess, err := store.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if sess.Token != "tok-fallback" {
		t.Fatalf("token = %q, want tok-fallback", sess.Token)
	}
}

func TestMergeProfilePreservesRoleIdentity(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, merchantSession()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A shopper-shaped response: no role fields, overlapping basics.
	fragment := []byte(`{"username":"shopkeeper","nickname":"Shin","avatar":"a.png","role":"user"}`)
	merged, err := store.MergeProfile(ctx, fragment)
	if err != nil {
		t.Fatalf("MergeProfile failed: %v", err)
	}

	if merged.Nickname != "Shin" || merged.Avatar != "a.png" {
		t.Fatalf("generic fields not merged: %+v", merged)
	}
	if merged.Role != RoleMerchant {
		t.Fatalf("role overwritten by generic merge: %q", merged.Role)
	}
	if !merged.IsMerchant || merged.MerchantID != 42 || merged.ShopName != "Night Parade Goods" {
		t.Fatalf("merchant identity eroded: %+v", merged)
	}
	if store.Token() != "tok-merchant" {
		t.Fatal("token must not change on profile merge")
	}
}

func TestMergeProfileRejectsNonObject(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, merchantSession()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := store.MergeProfile(ctx, []byte(`[1,2,3]`)); err == nil {
		t.Fatal("expected error for non-object fragment")
	}
	if store.Current().Profile.MerchantID != 42 {
		t.Fatal("profile must be unchanged after failed merge")
	}
}

func TestStartSyncClearsSessionAfterExternalLogout(t *testing.T) {
	adapter := storage.NewMemory("")
	first := NewStore(adapter, nil)
	second := NewStore(adapter, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := first.Set(ctx, merchantSession()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := second.Restore(ctx); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if err := second.StartSync(ctx); err != nil {
		t.Fatalf("StartSync failed: %v", err)
	}

	if err := first.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for second.Token() != "" {
		select {
		case <-deadline:
			t.Fatal("second store never observed the external logout")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStartSyncUnsupportedAdapter(t *testing.T) {
	store := NewStore(noWatchAdapter{inner: storage.NewMemory("")}, nil)
	if err := store.StartSync(context.Background()); err != storage.ErrWatchUnsupported {
		t.Fatalf("expected ErrWatchUnsupported, got %v", err)
	}
}

// noWatchAdapter forwards the Adapter methods of a memory adapter without
// exposing its Watch method.
type noWatchAdapter struct {
	inner *storage.Memory
}

func (a noWatchAdapter) Get(ctx context.Context, key string) (string, bool, error) {
	return a.inner.Get(ctx, key)
}

func (a noWatchAdapter) Set(ctx context.Context, key, value string) error {
	return a.inner.Set(ctx, key, value)
}

func (a noWatchAdapter) Delete(ctx context.Context, key string) error {
	return a.inner.Delete(ctx, key)
}

func (a noWatchAdapter) Keys(ctx context.Context) ([]string, error) {
	return a.inner.Keys(ctx)
}

func (a noWatchAdapter) Close() error { return a.inner.Close() }
