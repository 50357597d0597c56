package alert

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pollualert/core/session"
)

// WSTransport dials the alert push endpoint over WebSocket. The connection
// is authenticated with the session identifier; the server scopes delivered
// alerts to the user behind it.
type WSTransport struct {
	// URL is the base ws:// or wss:// endpoint, e.g. ws://host/ws/alerts.
	URL    string
	Dialer *websocket.Dialer
}

func NewWSTransport(rawURL string) *WSTransport {
	return &WSTransport{
		URL: rawURL,
		Dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

func (t *WSTransport) Dial(ctx context.Context, s *session.Session) (Conn, error) {
	u, err := url.Parse(t.URL)
	if err != nil {
		return nil, fmt.Errorf("alert: bad websocket url: %w", err)
	}
	q := u.Query()
	q.Set("userId", s.UserID)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.SessionID)

	conn, resp, err := t.Dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("alert: websocket handshake rejected (%d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("alert: websocket dial: %w", err)
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

func (w *wsConn) ReadEnvelope() (*Envelope, error) {
	var env Envelope
	if err := w.conn.ReadJSON(&env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (w *wsConn) Close() error {
	// Best-effort close frame so the server can discard its subscription
	// immediately instead of waiting for a dead peer timeout.
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return w.conn.Close()
}
