package transport

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Header names written by the round tripper.
const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
)

// TokenSource yields the current bearer token, or empty when anonymous.
// It is consulted per request so a login or logout between calls takes
// effect immediately.
type TokenSource func() string

// Config controls the augmentation policy.
type Config struct {
	// PublicPaths are substring matches for endpoints that must not carry
	// a bearer token (registration, login, verification-code send).
	PublicPaths []string
	// CSRFCookieNames are checked in priority order on mutating requests.
	CSRFCookieNames []string
	// CSRFHeaderNames all receive the found CSRF token; several backend
	// services expect different header spellings.
	CSRFHeaderNames []string
}

// RoundTripper augments outgoing requests. The wrapped request is cloned;
// the caller's request is never mutated.
type RoundTripper struct {
	next  http.RoundTripper
	token TokenSource
	cfg   Config
	log   *zap.Logger
}

// New wraps next with the augmentation policy. A nil next falls back to
// http.DefaultTransport; a nil logger to a no-op logger.
func New(next http.RoundTripper, token TokenSource, cfg Config, log *zap.Logger) *RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if token == nil {
		token = func() string { return "" }
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RoundTripper{next: next, token: token, cfg: cfg, log: log}
}

// RoundTrip implements http.RoundTripper.
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	if !rt.public(out.URL.Path) {
		if token := rt.token(); token != "" {
			out.Header.Set(HeaderAuthorization, "Bearer "+token)
		}
	}

	if mutating(out.Method) {
		if token, ok := rt.csrfToken(out); ok {
			for _, name := range rt.cfg.CSRFHeaderNames {
				out.Header.Set(name, token)
			}
		}
		// A missing CSRF cookie is fine: enforcement is optional
		// server-side.
	}

	id, ok := RequestIDFromContext(out.Context())
	if !ok {
		id = uuid.NewString()
	}
	out.Header.Set(HeaderRequestID, id)

	rt.log.Debug("request augmented",
		zap.String("method", out.Method),
		zap.String("path", out.URL.Path),
		zap.String("request_id", id),
	)

	return rt.next.RoundTrip(out)
}

func (rt *RoundTripper) public(path string) bool {
	for _, p := range rt.cfg.PublicPaths {
		if p != "" && strings.Contains(path, p) {
			return true
		}
	}
	return false
}

func (rt *RoundTripper) csrfToken(req *http.Request) (string, bool) {
	for _, name := range rt.cfg.CSRFCookieNames {
		if c, err := req.Cookie(name); err == nil && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
