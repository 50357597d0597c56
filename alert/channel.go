package alert

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pollualert/core/models"
	"github.com/pollualert/core/session"
)

// TypeAlert is the only envelope type this core consumes.
const TypeAlert = "ALERT"

// Envelope is the server→client push frame.
type Envelope struct {
	Type       string `json:"type"`
	ID         string `json:"id,omitempty"`
	LocationID string `json:"locationId,omitempty"`
	Message    string `json:"message"`
	AQI        int    `json:"aqi"`
}

// Conn is an established push connection. ReadEnvelope blocks until a frame
// arrives, the connection drops, or Close is called.
type Conn interface {
	ReadEnvelope() (*Envelope, error)
	Close() error
}

// Transport dials one authenticated push connection for a session.
type Transport interface {
	Dial(ctx context.Context, s *session.Session) (Conn, error)
}

// Sink receives every alert event the channel decodes.
type Sink func(models.AlertEvent)

// State is the channel's connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

var (
	// ErrChannelActive is returned when Connect is called while a channel
	// is already open; exactly one channel exists per active session.
	ErrChannelActive = errors.New("alert: channel already active")
	// ErrNoSession is returned when Connect is called without a valid session.
	ErrNoSession = errors.New("alert: no valid session")
)

// Options tunes the reconnect policy.
type Options struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Budget         int // consecutive failed attempts before giving up
}

// Channel owns the persistent push connection for the active session.
//
// Lifecycle: Disconnected → Connecting → Connected → (Reconnecting |
// Disconnected). On an unexpected drop it retries with bounded exponential
// backoff, re-checking session validity before every attempt; it lands in a
// terminal Disconnected state when the session dies or the budget runs out.
type Channel struct {
	transport Transport
	sessions  *session.Manager
	opts      Options

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	cur    *onceCloser
	done   chan struct{}
}

func NewChannel(transport Transport, sessions *session.Manager, opts Options) *Channel {
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = time.Second
	}
	if opts.MaxBackoff < opts.InitialBackoff {
		opts.MaxBackoff = 30 * time.Second
	}
	if opts.Budget <= 0 {
		opts.Budget = 10
	}
	return &Channel{transport: transport, sessions: sessions, opts: opts}
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done returns a channel closed when the run loop has fully stopped.
// It is nil before the first Connect.
func (c *Channel) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Connect opens the channel and starts delivering alert events to sink.
// It requires a valid session and rejects a second open while active.
func (c *Channel) Connect(ctx context.Context, sink Sink) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateDisconnected || c.cancel != nil {
		return ErrChannelActive
	}
	if !c.sessions.IsValid(ctx) {
		return ErrNoSession
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.state = StateConnecting

	go c.run(runCtx, sink, c.done)
	return nil
}

// Disconnect tears the channel down deterministically. It is idempotent and
// safe to call from any exit path, including after a terminal failure.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	// Re-read after the cancel: a dial that was in flight when we snapshot
	// the state may have completed and installed a live conn, and the read
	// loop only notices the cancel once that conn is closed.
	c.mu.Lock()
	cur := c.cur
	c.mu.Unlock()
	if cur != nil {
		cur.Close() // unblocks the read loop
	}
	if done != nil {
		<-done
	}
}

func (c *Channel) run(ctx context.Context, sink Sink, done chan struct{}) {
	defer func() {
		c.mu.Lock()
		if c.cur != nil {
			c.cur.Close()
			c.cur = nil
		}
		c.cancel = nil
		c.state = StateDisconnected
		c.mu.Unlock()
		close(done)
	}()

	attempts := 0
	backoff := c.opts.InitialBackoff

	for {
		if ctx.Err() != nil {
			return
		}

		// Session validity is time-dependent: re-check before every dial,
		// not just at channel creation.
		sess := c.sessions.Get(ctx)
		if sess == nil {
			log.Printf("alert: session no longer valid, closing channel")
			return
		}

		conn, err := c.transport.Dial(ctx, sess)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			attempts++
			if attempts >= c.opts.Budget {
				log.Printf("alert: reconnect budget exhausted after %d attempts: %v", attempts, err)
				return
			}
			log.Printf("alert: dial failed (attempt %d/%d), retrying in %v: %v",
				attempts, c.opts.Budget, backoff, err)
			if !sleep(ctx, backoff) {
				return
			}
			backoff = min(backoff*2, c.opts.MaxBackoff)
			continue
		}

		wrapped := &onceCloser{Conn: conn}
		c.mu.Lock()
		// Dial is not guaranteed to honor cancellation once it has a live
		// connection; check again under the lock so a conn established
		// after Disconnect is released instead of installed.
		if ctx.Err() != nil {
			c.mu.Unlock()
			wrapped.Close()
			return
		}
		c.cur = wrapped
		c.state = StateConnected
		c.mu.Unlock()
		attempts = 0
		backoff = c.opts.InitialBackoff

		c.readLoop(ctx, wrapped, sess, sink)
		wrapped.Close()
		c.mu.Lock()
		c.cur = nil
		c.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		log.Printf("alert: connection dropped, reconnecting")
		c.mu.Lock()
		c.state = StateReconnecting
		c.mu.Unlock()
	}
}

// readLoop consumes envelopes until the connection fails. The channel is a
// pure event source; it never writes application data.
func (c *Channel) readLoop(ctx context.Context, conn Conn, sess *session.Session, sink Sink) {
	for {
		env, err := conn.ReadEnvelope()
		if err != nil {
			return
		}
		if env.Type != TypeAlert {
			continue
		}

		id := env.ID
		if id == "" {
			id = uuid.NewString()
		}
		sink(models.AlertEvent{
			EventID:    id,
			UserID:     sess.UserID,
			LocationID: env.LocationID,
			AQI:        env.AQI,
			Message:    env.Message,
			Severity:   models.SeverityForAQI(env.AQI),
			ReceivedAt: time.Now().UTC(),
		})

		if ctx.Err() != nil {
			return
		}
	}
}

// onceCloser makes Close exactly-once so teardown paths cannot double-release
// the underlying connection.
type onceCloser struct {
	Conn
	once sync.Once
	err  error
}

func (o *onceCloser) Close() error {
	o.once.Do(func() { o.err = o.Conn.Close() })
	return o.err
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
