package mallclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/lingbai/mallclient/session"
)

// Login authenticates against the role-specific endpoint and, on success,
// establishes the session. The three consoles disagree on both transport
// (the merchant endpoint takes query parameters) and response field names
// (accessToken vs token, userInfo vs adminInfo); all of that is normalized
// here. A failed login leaves the store untouched.
func (c *Client) Login(ctx context.Context, creds Credentials, role Role) (LoginResult, error) {
	if c == nil || !c.ready {
		return LoginResult{}, ErrClientNotReady
	}

	opts := callOptions{method: http.MethodPost}
	switch role {
	case RoleMerchant:
		// The merchant service binds credentials from query parameters.
		q := url.Values{}
		q.Set("username", creds.Username)
		q.Set("password", creds.Password)
		opts.path = c.cfg.Endpoints.MerchantLogin
		opts.query = q
	case RoleAdmin:
		opts.path = c.cfg.Endpoints.AdminLogin
		opts.body = creds
	default:
		opts.path = c.cfg.Endpoints.ShopperLogin
		opts.body = Credentials{Username: creds.Username, Password: creds.Password}
	}

	outcome, err := c.do(ctx, opts)
	if err != nil {
		return LoginResult{}, loginError(err)
	}

	var payload struct {
		AccessToken string           `json:"accessToken"`
		Token       string           `json:"token"`
		ExpiresIn   int64            `json:"expiresIn"`
		UserInfo    *session.Profile `json:"userInfo"`
		AdminInfo   *session.Profile `json:"adminInfo"`
	}
	if len(outcome.Payload) > 0 {
		if err := json.Unmarshal(outcome.Payload, &payload); err != nil {
			return LoginResult{}, &AuthError{Message: "malformed login response"}
		}
	}

	token := payload.AccessToken
	if token == "" {
		token = payload.Token
	}
	if token == "" {
		return LoginResult{}, &AuthError{Message: "login response carried no token"}
	}

	var profile session.Profile
	switch {
	case payload.UserInfo != nil:
		profile = *payload.UserInfo
	case payload.AdminInfo != nil:
		profile = *payload.AdminInfo
	}
	normalizeRole(&profile, role)

	if err := c.store.Set(ctx, session.Session{Token: token, Profile: profile}); err != nil {
		c.log.Warn("persisting session after login failed", zap.Error(err))
	}
	if claims, ok := session.IntrospectToken(token); ok {
		c.log.Debug("signed in",
			zap.String("subject", claims.Subject),
			zap.Time("token_expires_at", claims.ExpiresAt),
		)
	}

	return LoginResult{Token: token, ExpiresIn: payload.ExpiresIn, Profile: profile}, nil
}

// SendSMSCode requests a verification code. Purpose defaults to "LOGIN".
// This is a public endpoint; no token is attached.
func (c *Client) SendSMSCode(ctx context.Context, phone, purpose string) error {
	if c == nil || !c.ready {
		return ErrClientNotReady
	}
	if phone == "" {
		return &BusinessError{Message: "phone number required"}
	}
	if purpose == "" {
		purpose = "LOGIN"
	}

	c.log.Debug("sending verification code",
		zap.String("purpose", purpose),
		zap.String("phone", maskPhone(phone)),
	)

	_, err := c.do(ctx, callOptions{
		method: http.MethodPost,
		path:   c.cfg.Endpoints.SMSSend,
		body: map[string]string{
			"phoneNumber": phone,
			"purpose":     purpose,
		},
	})
	return err
}

// normalizeRole stamps the requested role's flags onto the profile so a
// sparse server response still yields a usable role identity.
func normalizeRole(p *session.Profile, role Role) {
	switch role {
	case RoleAdmin:
		if p.Role == "" {
			p.Role = session.RoleAdmin
		}
		p.IsAdmin = true
	case RoleMerchant:
		if p.Role == "" {
			p.Role = session.RoleMerchant
		}
		p.IsMerchant = true
	}
}

// loginError converts a generic call failure into the login taxonomy:
// well-formed server rejections become AuthError; everything else passes
// through untouched.
func loginError(err error) error {
	var business *BusinessError
	if errors.As(err, &business) {
		return &AuthError{Message: business.Message}
	}
	return err
}

func maskPhone(phone string) string {
	if len(phone) < 7 {
		return "***"
	}
	return phone[:3] + "****" + phone[len(phone)-4:]
}
