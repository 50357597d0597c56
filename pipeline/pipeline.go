// Package pipeline wires the authenticated real-time alert flow: identity
// produces a session, the session store guards it, and while it is valid the
// alert channel feeds the notification queue and the aggregation engine
// refreshes location data for the rendering layer.
package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/pollualert/core/alert"
	"github.com/pollualert/core/config"
	"github.com/pollualert/core/favorites"
	"github.com/pollualert/core/identity"
	"github.com/pollualert/core/models"
	"github.com/pollualert/core/notify"
	"github.com/pollualert/core/pollution"
	"github.com/pollualert/core/session"
)

// Deps are the collaborators a Pipeline coordinates. Favorites is optional;
// when nil, every alert is surfaced.
type Deps struct {
	Identity  *identity.Client
	Sessions  *session.Manager
	Engine    *pollution.Engine
	Channel   *alert.Channel
	Queue     *notify.Queue
	Favorites favorites.Repository
	Locations []models.Location
}

type Pipeline struct {
	deps Deps
}

func New(deps Deps) *Pipeline {
	if len(deps.Locations) == 0 {
		deps.Locations = pollution.Cities
	}
	return &Pipeline{deps: deps}
}

// FromConfig assembles the full production stack: file or Redis session
// store, HTTP identity and pollution clients, WebSocket (or NATS) alert
// transport, and an optional Postgres favorites repository.
func FromConfig(cfg *config.Config) (*Pipeline, error) {
	var store session.Store
	if cfg.RedisAddr != "" {
		store = session.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}), "")
	} else {
		store = session.NewFileStore(cfg.SessionFile)
	}
	sessions := session.NewManager(store, cfg.SessionSecret, cfg.SessionTTL)

	var transport alert.Transport
	if cfg.NatsURL != "" {
		transport = alert.NewNATSTransport(cfg.NatsURL)
	} else {
		transport = alert.NewWSTransport(cfg.AlertWSURL)
	}

	var favs favorites.Repository
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open favorites db: %w", err)
		}
		favs = favorites.NewPostgresRepository(db)
	}

	return New(Deps{
		Identity: identity.NewClient(cfg.IdentityBaseURL, sessions, cfg.TransportRetries),
		Sessions: sessions,
		Engine: pollution.NewEngine(pollution.NewAggregator(
			pollution.NewClient(cfg.PollutionBaseURL), cfg.FetchPoolSize, cfg.FetchTimeout)),
		Channel: alert.NewChannel(transport, sessions, alert.Options{
			InitialBackoff: cfg.ReconnectInitial,
			MaxBackoff:     cfg.ReconnectMax,
			Budget:         cfg.ReconnectBudget,
		}),
		Queue:     notify.NewQueue(cfg.QueueHistory, cfg.QueueDisplayTTL),
		Favorites: favs,
	}), nil
}

// Login authenticates, persists the session, and opens the alert channel.
func (p *Pipeline) Login(ctx context.Context, username, password string) (*session.Session, error) {
	s, err := p.deps.Identity.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := p.openChannel(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Resume reopens the alert channel for a session that survived a restart.
// It reports false when no valid session is persisted.
func (p *Pipeline) Resume(ctx context.Context) (bool, error) {
	s := p.deps.Sessions.Get(ctx)
	if s == nil {
		return false, nil
	}
	if err := p.openChannel(ctx, s); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Pipeline) openChannel(ctx context.Context, s *session.Session) error {
	return p.deps.Channel.Connect(ctx, func(ev models.AlertEvent) {
		if !p.watched(context.Background(), s.UserID, ev.LocationID) {
			return
		}
		if !p.deps.Queue.Push(ev) {
			log.Printf("pipeline: dropped duplicate alert %s", ev.EventID)
		}
	})
}

// watched reports whether an alert's location is on the user's watch list.
// The list is re-read per event so favorites added or removed mid-session
// change filtering without a reconnect. A read failure or an empty list
// degrades to no filtering rather than suppressing alerts.
func (p *Pipeline) watched(ctx context.Context, userID, locationID string) bool {
	if p.deps.Favorites == nil || locationID == "" {
		return true
	}
	watches, err := p.deps.Favorites.ListByUser(ctx, userID)
	if err != nil {
		log.Printf("pipeline: favorites unavailable, surfacing all alerts: %v", err)
		return true
	}
	if len(watches) == 0 {
		return true
	}
	for _, w := range watches {
		if w.LocationID == locationID {
			return true
		}
	}
	return false
}

// Logout tears the session down deterministically: the channel is released
// first, then the session record removed.
func (p *Pipeline) Logout(ctx context.Context) error {
	p.deps.Channel.Disconnect()
	return p.deps.Sessions.Destroy(ctx)
}

// Refresh runs one aggregation batch over the monitored locations; a refresh
// started while a prior one is in flight supersedes it.
func (p *Pipeline) Refresh(ctx context.Context) (*models.AggregatedSnapshot, error) {
	return p.deps.Engine.Refresh(ctx, p.deps.Locations)
}

// Alerts drains pending alert events for rendering.
func (p *Pipeline) Alerts() []models.AlertEvent {
	return p.deps.Queue.Drain()
}
