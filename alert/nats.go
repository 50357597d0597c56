package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/pollualert/core/session"
)

// NATSTransport subscribes to the user's alert subject on a NATS broker,
// for deployments where the server publishes alerts over messaging instead
// of holding WebSockets open. Broker-level reconnects are disabled: the
// Channel owns retry policy, including session revalidation, and a transport
// that silently reconnects would bypass that.
type NATSTransport struct {
	URL string
}

func NewNATSTransport(url string) *NATSTransport {
	return &NATSTransport{URL: url}
}

func alertSubject(userID string) string {
	return "alerts.user." + userID
}

func (t *NATSTransport) Dial(ctx context.Context, s *session.Session) (Conn, error) {
	nc, err := nats.Connect(t.URL,
		nats.Name("pollualert-"+s.UserID),
		nats.Token(s.SessionID),
		nats.MaxReconnects(0),
		nats.RetryOnFailedConnect(false),
	)
	if err != nil {
		return nil, fmt.Errorf("alert: nats connect: %w", err)
	}
	if ctx.Err() != nil {
		nc.Close()
		return nil, ctx.Err()
	}

	sub, err := nc.SubscribeSync(alertSubject(s.UserID))
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("alert: nats subscribe: %w", err)
	}
	return &natsConn{nc: nc, sub: sub}, nil
}

type natsConn struct {
	nc  *nats.Conn
	sub *nats.Subscription
}

func (n *natsConn) ReadEnvelope() (*Envelope, error) {
	for {
		msg, err := n.sub.NextMsg(time.Minute)
		if errors.Is(err, nats.ErrTimeout) {
			continue // idle subject, keep waiting
		}
		if err != nil {
			return nil, err
		}
		var env Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			log.Printf("alert: dropping undecodable frame on %s: %v", msg.Subject, err)
			continue
		}
		return &env, nil
	}
}

func (n *natsConn) Close() error {
	if err := n.sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		log.Printf("alert: unsubscribe: %v", err)
	}
	n.nc.Close()
	return nil
}
