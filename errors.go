package mallclient

import (
	"errors"
	"fmt"
)

var (
	// ErrClientNotReady is returned when a Client is used before Build
	// completed.
	ErrClientNotReady = errors.New("mallclient: client not ready")
	// ErrNotAuthenticated is returned by operations that require a
	// signed-in session.
	ErrNotAuthenticated = errors.New("mallclient: not authenticated")
	// ErrNotMerchant is returned by merchant-only operations when the
	// session has no merchant identity.
	ErrNotMerchant = errors.New("mallclient: session has no merchant identity")
)

// AuthError reports a login rejected by the server, carrying the
// server-supplied code and message.
type AuthError struct {
	Code    int
	Message string
}

func (e *AuthError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("mallclient: login rejected (code %d): %s", e.Code, e.Message)
	}
	return "mallclient: login rejected: " + e.Message
}

// RegistrationError reports a registration rejected by the server.
type RegistrationError struct {
	Code    int
	Message string
}

func (e *RegistrationError) Error() string {
	return "mallclient: registration failed: " + e.Message
}

// AuthExpiredError reports that the server invalidated the session. The
// failing call is rejected with this error; whether the local session is
// torn down is decided by the interactive session-expired flow.
type AuthExpiredError struct {
	Message string
}

func (e *AuthExpiredError) Error() string {
	return "mallclient: session expired: " + e.Message
}

// BusinessError is a well-formed server rejection carrying a
// human-readable message.
type BusinessError struct {
	Message string
}

func (e *BusinessError) Error() string {
	return "mallclient: " + e.Message
}

// TransportError maps a non-2xx HTTP status to a user-facing category.
type TransportError struct {
	Status  int
	Message string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mallclient: %s (http %d)", e.Message, e.Status)
}

// NetworkError reports that no response arrived at all: a timeout or a
// connectivity failure.
type NetworkError struct {
	Timeout bool
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	return "mallclient: " + e.Message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// statusMessage maps HTTP status codes to the fixed user-facing messages
// shown for transport failures.
func statusMessage(status int) string {
	switch status {
	case 400:
		return "invalid request parameters"
	case 401:
		return "sign-in required"
	case 403:
		return "access denied"
	case 404:
		return "requested resource not found"
	case 500:
		return "internal server error"
	case 502:
		return "bad gateway"
	case 503:
		return "service unavailable"
	case 504:
		return "gateway timeout"
	default:
		return fmt.Sprintf("request failed (%d)", status)
	}
}
