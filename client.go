package mallclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/lingbai/mallclient/guard"
	"github.com/lingbai/mallclient/session"
)

// Client is the SDK entry point. It owns the session store, the augmented
// HTTP client, and the interactive session-expired flow. Construct it
// through [Builder.Build]; the zero value is not usable.
type Client struct {
	cfg       Config
	http      *http.Client
	store     *session.Store
	log       *zap.Logger
	notifier  Notifier
	prompter  Prompter
	navigator Navigator

	ready     bool
	prompting atomic.Bool
}

// Store exposes the session store for collaborators that take it by
// reference (the guard helper, probes, tests).
func (c *Client) Store() *session.Store {
	if c == nil {
		return nil
	}
	return c.store
}

// Session returns a copy of the current session.
func (c *Client) Session() session.Session {
	if c == nil || c.store == nil {
		return session.Session{}
	}
	return c.store.Current()
}

// Restore adopts whatever session survives in storage; call it once at
// application start.
func (c *Client) Restore(ctx context.Context) (session.Session, error) {
	if c == nil || !c.ready {
		return session.Session{}, ErrClientNotReady
	}
	return c.store.Restore(ctx)
}

// Logout clears the in-memory session and every persisted key. Idempotent.
func (c *Client) Logout(ctx context.Context) error {
	if c == nil || !c.ready {
		return ErrClientNotReady
	}
	return c.store.Clear(ctx)
}

// StartSync begins propagating logouts performed by other processes
// sharing the same storage. Best-effort; see session.Store.StartSync.
func (c *Client) StartSync(ctx context.Context) error {
	if c == nil || !c.ready {
		return ErrClientNotReady
	}
	return c.store.StartSync(ctx)
}

// Evaluate runs the navigation guard against the current session.
func (c *Client) Evaluate(route guard.Route) guard.Decision {
	return guard.Evaluate(c.Session(), route, c.cfg.Routes)
}

// callOptions describes one backend call for do.
type callOptions struct {
	method string
	path   string
	query  url.Values
	body   any  // JSON-encoded when non-nil
	raw    bool // blob passthrough: skip envelope classification
	// multipart upload; when set, body is ignored
	multipart   io.Reader
	contentType string
}

// do issues one call and normalizes its result. All failure modes come
// back as the typed errors in errors.go; user-facing notices for
// business, transport, and network failures are pushed to the Notifier
// here so call sites stay one-liners.
func (c *Client) do(ctx context.Context, opts callOptions) (Outcome, error) {
	if c == nil || !c.ready {
		return Outcome{}, ErrClientNotReady
	}

	target := strings.TrimRight(c.cfg.HTTP.BaseURL, "/") + opts.path
	if len(opts.query) > 0 {
		target += "?" + opts.query.Encode()
	}

	var (
		reqBody     io.Reader
		contentType string
	)
	switch {
	case opts.multipart != nil:
		reqBody = opts.multipart
		contentType = opts.contentType
	case opts.body != nil:
		raw, err := json.Marshal(opts.body)
		if err != nil {
			return Outcome{}, fmt.Errorf("mallclient: encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
		contentType = "application/json;charset=UTF-8"
	}

	req, err := http.NewRequestWithContext(ctx, opts.method, target, reqBody)
	if err != nil {
		return Outcome{}, fmt.Errorf("mallclient: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		nerr := c.classifyNetworkError(err)
		c.notifier.Error(nerr.Message)
		c.log.Warn("request failed before a response arrived",
			zap.String("path", opts.path), zap.Error(err))
		return Outcome{}, nerr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		nerr := &NetworkError{Message: "network connection failed, check connectivity", Err: err}
		c.notifier.Error(nerr.Message)
		return Outcome{}, nerr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Outcome{}, c.transportFailure(opts.path, resp.StatusCode, body)
	}

	if opts.raw {
		return Outcome{Code: codeSuccess, Payload: body}, nil
	}

	outcome, err := classifyEnvelope(body)
	if err != nil {
		var expired *AuthExpiredError
		var business *BusinessError
		switch {
		case errors.As(err, &expired):
			// In-body auth-expired sentinels always run the flow; the
			// non-critical allow-list applies to transport 401s only.
			go c.runSessionExpiredFlow()
		case errors.As(err, &business):
			c.notifier.Error(business.Message)
		}
		return Outcome{}, err
	}
	return outcome, nil
}

// transportFailure maps a non-2xx response onto the error taxonomy and
// pushes the user-facing notice. 401s on non-critical services stay
// silent so a best-effort subsystem cannot trigger a spurious logout
// prompt.
func (c *Client) transportFailure(path string, status int, body []byte) error {
	var probe struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &probe)

	if status == http.StatusUnauthorized {
		if c.nonCritical(path) {
			c.log.Debug("401 from non-critical service, handled silently",
				zap.String("path", path))
		} else {
			go c.runSessionExpiredFlow()
		}
		return &TransportError{Status: status, Message: statusMessage(status)}
	}

	msg := statusMessage(status)
	switch status {
	case 400:
		msg = messageOr(probe.Message, msg)
	case 403, 404, 500, 502, 503, 504:
		// fixed messages
	default:
		msg = messageOr(probe.Message, msg)
	}
	c.notifier.Error(msg)
	return &TransportError{Status: status, Message: msg}
}

func (c *Client) classifyNetworkError(err error) *NetworkError {
	var uerr *url.Error
	timedOut := errors.Is(err, context.DeadlineExceeded)
	if errors.As(err, &uerr) && uerr.Timeout() {
		timedOut = true
	}
	if timedOut {
		return &NetworkError{
			Timeout: true,
			Message: "request timed out, try again later",
			Err:     err,
		}
	}
	return &NetworkError{
		Message: "network connection failed, check connectivity",
		Err:     err,
	}
}

func (c *Client) nonCritical(path string) bool {
	for _, p := range c.cfg.HTTP.NonCriticalPaths {
		if p != "" && strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// runSessionExpiredFlow presents the session-expired confirmation at most
// once at a time. On acknowledgement the session is cleared and the user
// is sent to the shopper login route; on dismissal nothing happens. The
// call that triggered the flow is already rejected either way.
func (c *Client) runSessionExpiredFlow() {
	if !c.prompting.CompareAndSwap(false, true) {
		return
	}
	defer c.prompting.Store(false)

	if c.prompter == nil {
		c.log.Info("session expired; no prompter configured, leaving session in place")
		return
	}
	if !c.prompter.ConfirmSessionExpired("your session has expired, please sign in again") {
		return
	}
	if err := c.store.Clear(context.Background()); err != nil {
		c.log.Warn("clearing session after expiry confirmation failed", zap.Error(err))
	}
	if c.navigator != nil {
		c.navigator.Navigate(c.cfg.Routes.ShopperLogin)
	}
}
