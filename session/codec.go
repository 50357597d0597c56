package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the time-bounded proof of authentication held by the client.
// The Manager is its single writer; everyone else gets read-only copies.
type Session struct {
	SessionID   string
	UserID      string
	DisplayName string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// ValidAt reports whether the session is still live at the given instant.
func (s *Session) ValidAt(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}

type claims struct {
	SessionID   string `json:"sid"`
	DisplayName string `json:"name"`
	jwt.RegisteredClaims
}

// Codec signs session records so a tampered or truncated persisted record
// reads back as absent rather than as a live session.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Encode serialises the session as an HS256-signed claims blob.
func (c *Codec) Encode(s Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID:   s.SessionID,
		DisplayName: s.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session record: %w", err)
	}
	return signed, nil
}

// Decode parses and verifies a signed record. Expiry is NOT checked here;
// the Manager owns time-validity so eviction stays in one place.
func (c *Codec) Decode(record string) (*Session, error) {
	parsed := &claims{}
	token, err := jwt.ParseWithClaims(record, parsed, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, fmt.Errorf("parse session record: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("session record signature invalid")
	}
	s := &Session{
		SessionID:   parsed.SessionID,
		UserID:      parsed.RegisteredClaims.Subject,
		DisplayName: parsed.DisplayName,
	}
	if parsed.IssuedAt != nil {
		s.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		s.ExpiresAt = parsed.ExpiresAt.Time
	}
	return s, nil
}
