package session

import (
	"context"
	"testing"
	"time"
)

func newTestManager(t *testing.T) (*Manager, *MemoryStore, *time.Time) {
	t.Helper()
	store := NewMemoryStore()
	m := NewManager(store, "test-secret", DefaultTTL)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, store, &now
}

func TestCreateThenValid(t *testing.T) {
	ctx := context.Background()
	m, _, now := newTestManager(t)

	s, err := m.Create(ctx, "user-1", "amine")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got, want := s.ExpiresAt, now.Add(24*time.Hour); !got.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", got, want)
	}
	if !m.IsValid(ctx) {
		t.Error("IsValid = false immediately after Create")
	}
	got := m.Get(ctx)
	if got == nil || got.UserID != "user-1" || got.DisplayName != "amine" {
		t.Errorf("Get = %+v, want user-1/amine", got)
	}
}

func TestExpiryLazyEviction(t *testing.T) {
	ctx := context.Background()
	m, store, now := newTestManager(t)

	if _, err := m.Create(ctx, "user-1", "amine"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	*now = now.Add(24*time.Hour + time.Second)

	if m.IsValid(ctx) {
		t.Error("IsValid = true past expiry")
	}
	if record, _ := store.Load(ctx); record != "" {
		t.Error("expired record was not evicted")
	}
	// Eviction is idempotent: a second check on the now-empty store agrees.
	if m.IsValid(ctx) {
		t.Error("IsValid = true after eviction")
	}
	if m.Get(ctx) != nil {
		t.Error("Get returned a session after eviction")
	}
}

func TestCorruptRecordTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	m, store, _ := newTestManager(t)

	if err := store.Save(ctx, "not-a-signed-record", DefaultTTL); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if m.IsValid(ctx) {
		t.Error("IsValid = true for corrupt record")
	}
	if record, _ := store.Load(ctx); record != "" {
		t.Error("corrupt record was not evicted")
	}
}

func TestTamperedSignatureRejected(t *testing.T) {
	ctx := context.Background()
	m, store, _ := newTestManager(t)
	if _, err := m.Create(ctx, "user-1", "amine"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	other := NewManager(store, "different-secret", DefaultTTL)
	if other.Get(ctx) != nil {
		t.Error("record signed with another secret was accepted")
	}
}

func TestDestroyIdempotent(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)
	if _, err := m.Create(ctx, "user-1", "amine"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Destroy(ctx); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := m.Destroy(ctx); err != nil {
		t.Fatalf("second Destroy: %v", err)
	}
	if m.IsValid(ctx) {
		t.Error("IsValid = true after Destroy")
	}
}

func TestCreateOverwritesPriorSession(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)
	if _, err := m.Create(ctx, "user-1", "amine"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Create(ctx, "user-2", "sara"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got := m.Get(ctx)
	if got == nil || got.UserID != "user-2" {
		t.Errorf("Get = %+v, want user-2 after overwrite", got)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/session"
	store := NewFileStore(path)

	m := NewManager(store, "test-secret", DefaultTTL)
	if _, err := m.Create(ctx, "user-1", "amine"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !m.IsValid(ctx) {
		t.Error("IsValid = false after Create on FileStore")
	}
	if err := m.Destroy(ctx); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if record, err := store.Load(ctx); err != nil || record != "" {
		t.Errorf("Load after Destroy = (%q, %v), want empty", record, err)
	}
}
