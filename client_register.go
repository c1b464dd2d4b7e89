package mallclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lingbai/mallclient/session"
)

// Register submits a shopper registration. When the server hands back a
// token and profile (auto-login), the session is established as a side
// effect; otherwise the caller stays unauthenticated and signs in
// manually.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (RegisterResult, error) {
	if c == nil || !c.ready {
		return RegisterResult{}, ErrClientNotReady
	}

	outcome, err := c.do(ctx, callOptions{
		method: http.MethodPost,
		path:   c.cfg.Endpoints.Register,
		body:   req,
	})
	if err != nil {
		var business *BusinessError
		if errors.As(err, &business) {
			return RegisterResult{}, &RegistrationError{Message: business.Message}
		}
		return RegisterResult{}, err
	}

	var payload struct {
		Token       string           `json:"token"`
		AccessToken string           `json:"accessToken"`
		UserInfo    *session.Profile `json:"userInfo"`
	}
	if len(outcome.Payload) > 0 {
		if err := json.Unmarshal(outcome.Payload, &payload); err != nil {
			// Registration itself succeeded; only the auto-login extra
			// was unreadable.
			c.log.Warn("registration payload unreadable, skipping auto-login", zap.Error(err))
			return RegisterResult{}, nil
		}
	}

	token := payload.Token
	if token == "" {
		token = payload.AccessToken
	}
	if token == "" || payload.UserInfo == nil {
		c.log.Info("registered without auto-login, manual sign-in required")
		return RegisterResult{}, nil
	}

	if err := c.store.Set(ctx, session.Session{Token: token, Profile: *payload.UserInfo}); err != nil {
		c.log.Warn("persisting session after registration failed", zap.Error(err))
	}
	c.log.Info("registered and signed in", zap.String("username", payload.UserInfo.Username))

	return RegisterResult{AutoLogin: true, Profile: *payload.UserInfo}, nil
}
