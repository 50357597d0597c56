package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/pollualert/core/models"
	"github.com/pollualert/core/session"
)

// Client wraps the identity service. Every operation maps one intent to a
// typed outcome; expected auth failures come back as *Error, never panics.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions *session.Manager
	retries  int

	now func() time.Time
}

// NewClient creates an identity client. retries bounds how often a
// transport-level failure is retried before it is surfaced.
func NewClient(baseURL string, sessions *session.Manager, retries int) *Client {
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		sessions: sessions,
		retries:  retries,
		now:      time.Now,
	}
}

// serviceResponse is the identity service's uniform reply envelope.
type serviceResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// Login authenticates the user and, on success, persists a fresh session.
// A rejected credential pair is reported with a deliberately generic message.
func (c *Client) Login(ctx context.Context, username, password string) (*session.Session, error) {
	if username == "" || password == "" {
		return nil, newError(KindValidationFailed, "username and password are required")
	}

	resp, status, err := c.do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || !resp.Success {
		return nil, newError(KindInvalidCredentials, "invalid username or password")
	}

	s, err := c.sessions.Create(ctx, resp.UserID, username)
	if err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return s, nil
}

// Register creates an account and returns the pending verification
// challenge. No session exists until the email is verified and the user
// logs in.
func (c *Client) Register(ctx context.Context, username, email, password string) (*models.VerificationChallenge, error) {
	if username == "" || email == "" || password == "" {
		return nil, newError(KindValidationFailed, "username, email and password are required")
	}

	resp, status, err := c.do(ctx, http.MethodPost, "/auth/register", nil, map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusConflict:
		return nil, newError(KindDuplicateAccount, serverMessage(resp, "account already exists"))
	case status == http.StatusBadRequest:
		return nil, newError(KindValidationFailed, serverMessage(resp, "invalid registration data"))
	case !resp.Success:
		return nil, newError(KindValidationFailed, serverMessage(resp, "registration rejected"))
	}

	return &models.VerificationChallenge{Email: email, IssuedAt: c.now()}, nil
}

// Verify consumes the emailed verification code, unblocking login.
func (c *Client) Verify(ctx context.Context, email, code string) error {
	resp, _, err := c.do(ctx, http.MethodPost, "/auth/verify", url.Values{
		"email": {email},
		"code":  {code},
	}, nil)
	if err != nil {
		return err
	}
	if !resp.Success {
		return newError(KindChallengeMismatch, serverMessage(resp, "verification code rejected"))
	}
	return nil
}

// ResendVerification reissues the challenge for a pending registration.
func (c *Client) ResendVerification(ctx context.Context, email string) (*models.VerificationChallenge, error) {
	resp, _, err := c.do(ctx, http.MethodPost, "/auth/resend-verification", url.Values{
		"email": {email},
	}, nil)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, newError(KindValidationFailed, serverMessage(resp, "could not resend code"))
	}
	return &models.VerificationChallenge{Email: email, IssuedAt: c.now()}, nil
}

// RequestPasswordReset issues a reset challenge. Repeated calls are safe;
// the server rate-limits, the client just forwards.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (*models.VerificationChallenge, error) {
	resp, _, err := c.do(ctx, http.MethodPost, "/auth/request-reset", url.Values{
		"email": {email},
	}, nil)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, newError(KindValidationFailed, serverMessage(resp, "could not request reset"))
	}
	return &models.VerificationChallenge{Email: email, IssuedAt: c.now()}, nil
}

// ResetPassword consumes the reset challenge and, because the credential
// changed, destroys any local session so the user must log in again.
func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if newPassword == "" {
		return newError(KindValidationFailed, "new password is required")
	}
	resp, _, err := c.do(ctx, http.MethodPost, "/auth/reset-password", nil, map[string]string{
		"email":       email,
		"code":        code,
		"newPassword": newPassword,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return newError(KindChallengeMismatch, serverMessage(resp, "reset code rejected"))
	}
	if err := c.sessions.Destroy(ctx); err != nil {
		log.Printf("identity: session teardown after reset failed: %v", err)
	}
	return nil
}

// ProfileUpdate describes an update to the authenticated user's profile.
// Two independent modes: identity-only (Username) and secret rotation
// (CurrentPassword + NewPassword). The server re-validates CurrentPassword;
// the client never compares secrets locally.
type ProfileUpdate struct {
	Username        string `json:"username,omitempty"`
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword,omitempty"`
}

// UpdateProfile applies the update for the given user.
func (c *Client) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) error {
	if upd.Username == "" && upd.NewPassword == "" {
		return newError(KindValidationFailed, "nothing to update")
	}
	if upd.NewPassword != "" && upd.CurrentPassword == "" {
		return newError(KindValidationFailed, "current password is required to set a new one")
	}

	resp, status, err := c.do(ctx, http.MethodPut, "/auth/user/"+url.PathEscape(userID), nil, upd)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusUnauthorized:
		return newError(KindInvalidCredentials, "current password rejected")
	case status == http.StatusBadRequest:
		return newError(KindValidationFailed, serverMessage(resp, "invalid profile data"))
	case !resp.Success && status != http.StatusOK:
		return newError(KindValidationFailed, serverMessage(resp, "profile update rejected"))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

// do performs one identity call, retrying transport-level failures up to the
// configured budget. Service-declared failures are never retried here; the
// caller classifies them from the response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (*serviceResponse, int, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, 0, newError(KindTransport, ctx.Err().Error())
			case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
			}
			log.Printf("identity: retrying %s %s (attempt %d/%d)", method, path, attempt+1, c.retries+1)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, 0, fmt.Errorf("build request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		httpResp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if httpResp.StatusCode >= 500 {
			httpResp.Body.Close()
			lastErr = fmt.Errorf("service returned %d", httpResp.StatusCode)
			continue
		}

		var resp serviceResponse
		decodeErr := json.NewDecoder(httpResp.Body).Decode(&resp)
		httpResp.Body.Close()
		if decodeErr != nil {
			lastErr = fmt.Errorf("decode response: %w", decodeErr)
			continue
		}
		return &resp, httpResp.StatusCode, nil
	}

	return nil, 0, newError(KindTransport, fmt.Sprintf("%s %s: %v", method, path, lastErr))
}

func serverMessage(resp *serviceResponse, fallback string) string {
	if resp != nil && resp.Message != "" {
		return resp.Message
	}
	return fallback
}
