package identity

import "fmt"

// Kind classifies an identity service failure. Only KindTransport is
// eligible for client-side retry; everything else reflects a decision the
// server already made.
type Kind string

const (
	KindInvalidCredentials Kind = "invalid_credentials"
	KindDuplicateAccount   Kind = "duplicate_account"
	KindValidationFailed   Kind = "validation_failed"
	KindChallengeMismatch  Kind = "challenge_mismatch"
	KindTransport          Kind = "transport"
)

// Error is the typed outcome of a failed identity operation.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("identity: %s: %s", e.Kind, e.Message)
}

// Retryable reports whether the caller may retry the operation as-is.
func (e *Error) Retryable() bool {
	return e.Kind == KindTransport
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}
