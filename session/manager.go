package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is the fixed session lifetime: expiresAt = issuedAt + 24h.
const DefaultTTL = 24 * time.Hour

// Manager owns the device's session record: it is the only writer, and every
// read re-derives time-validity instead of trusting a cached boolean.
//
// Failure semantics are fail-safe to logged-out: a missing, unreadable or
// tampered record behaves exactly like no record at all.
type Manager struct {
	mu    sync.Mutex
	store Store
	codec *Codec
	ttl   time.Duration

	now func() time.Time // stubbed in tests
}

func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store: store,
		codec: NewCodec(secret),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Create persists a fresh session for the user, overwriting any prior record
// for this device.
func (m *Manager) Create(ctx context.Context, userID, displayName string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s := Session{
		SessionID:   uuid.NewString(),
		UserID:      userID,
		DisplayName: displayName,
		IssuedAt:    now,
		ExpiresAt:   now.Add(m.ttl),
	}
	record, err := m.codec.Encode(s)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, record, m.ttl); err != nil {
		return nil, err
	}
	return &s, nil
}

// Get returns the current session, or nil when there is none. An expired
// record is lazily evicted and reported as absent; so is a corrupt one.
func (m *Manager) Get(ctx context.Context) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(ctx)
}

func (m *Manager) getLocked(ctx context.Context) *Session {
	record, err := m.store.Load(ctx)
	if err != nil {
		log.Printf("session: load failed, treating as logged out: %v", err)
		return nil
	}
	if record == "" {
		return nil
	}
	s, err := m.codec.Decode(record)
	if err != nil {
		log.Printf("session: undecodable record, evicting: %v", err)
		m.destroyLocked(ctx)
		return nil
	}
	if !s.ValidAt(m.now()) {
		log.Printf("session: expired for user %s, evicting", s.UserID)
		m.destroyLocked(ctx)
		return nil
	}
	return s
}

// IsValid reports whether a live session exists right now.
func (m *Manager) IsValid(ctx context.Context) bool {
	return m.Get(ctx) != nil
}

// Destroy removes the session record. Destroying an already absent session
// is a no-op.
func (m *Manager) Destroy(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyLocked(ctx)
}

func (m *Manager) destroyLocked(ctx context.Context) error {
	if err := m.store.Delete(ctx); err != nil {
		log.Printf("session: delete failed: %v", err)
		return err
	}
	return nil
}
