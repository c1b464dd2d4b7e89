package mallclient

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/lingbai/mallclient/guard"
	"github.com/lingbai/mallclient/storage"
)

// Config defines a public type used by mallclient APIs.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	HTTP      HTTPConfig
	CSRF      CSRFConfig
	Storage   StorageConfig
	Endpoints EndpointConfig
	Routes    guard.Routes
}

/*
====================================
HTTP CONFIG
====================================
*/

// HTTPConfig controls the outgoing request policy.
type HTTPConfig struct {
	// BaseURL is the single base path all service-prefixed endpoints hang
	// off (the gateway).
	BaseURL string
	// Timeout converts a hung request into a network failure. The
	// platform default is 15 seconds.
	Timeout time.Duration
	// PublicPaths are substring matches for endpoints that never carry a
	// bearer token.
	PublicPaths []string
	// NonCriticalPaths name best-effort backend services whose 401s must
	// not trigger the interactive session-expired prompt.
	NonCriticalPaths []string
}

/*
====================================
CSRF CONFIG
====================================
*/

// CSRFConfig controls anti-forgery token echo on mutating requests.
type CSRFConfig struct {
	// CookieNames are checked in priority order.
	CookieNames []string
	// HeaderNames all receive the token, for backend-naming compatibility.
	HeaderNames []string
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig controls the persistence namespace.
type StorageConfig struct {
	// KeyPrefix namespaces every persisted key.
	KeyPrefix string
}

/*
====================================
ENDPOINT CONFIG
====================================
*/

// EndpointConfig names the backend paths the client calls. Values are
// relative to HTTPConfig.BaseURL.
type EndpointConfig struct {
	ShopperLogin   string
	MerchantLogin  string
	AdminLogin     string
	Register       string
	Profile        string
	SMSSend        string
	Upload         string
	CartList       string
	CartSelect     string
	StatsToday     string
	StatsYesterday string
}

// DefaultConfig returns the platform's standard wiring. Callers typically
// override only HTTP.BaseURL.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout: 15 * time.Second,
			PublicPaths: []string{
				"/auth/register",
				"/auth/login",
				"/users/register",
				"/users/login",
				"/sms/send",
				"/merchant/login",
				"/admin/auth/login",
			},
			NonCriticalPaths: []string{
				"/cart-service",
				"/product-service",
				"/order-service",
			},
		},
		CSRF: CSRFConfig{
			CookieNames: []string{"XSRF-TOKEN", "csrfToken", "_csrf"},
			HeaderNames: []string{"X-CSRF-TOKEN", "X-XSRF-TOKEN"},
		},
		Storage: StorageConfig{
			KeyPrefix: storage.DefaultKeyPrefix,
		},
		Endpoints: EndpointConfig{
			ShopperLogin:   "/user-service/auth/login",
			MerchantLogin:  "/merchant/login",
			AdminLogin:     "/admin/auth/login",
			Register:       "/user-service/auth/register",
			Profile:        "/user-service/user/profile",
			SMSSend:        "/sms/send",
			Upload:         "/upload",
			CartList:       "/cart-service/cart",
			CartSelect:     "/cart-service/cart/select",
			StatsToday:     "/merchant/statistics/today",
			StatsYesterday: "/merchant/statistics/yesterday",
		},
		Routes: guard.DefaultRoutes(),
	}
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.HTTP.BaseURL == "" {
		return errors.New("mallclient: HTTP.BaseURL required")
	}
	u, err := url.Parse(c.HTTP.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("mallclient: HTTP.BaseURL must be an absolute URL")
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New("mallclient: HTTP.Timeout must be positive")
	}
	for _, p := range []string{
		c.Endpoints.ShopperLogin, c.Endpoints.MerchantLogin,
		c.Endpoints.AdminLogin, c.Endpoints.Register,
		c.Endpoints.Profile,
	} {
		if !strings.HasPrefix(p, "/") {
			return errors.New("mallclient: endpoint paths must start with /")
		}
	}
	if c.Routes.Home == "" || c.Routes.ShopperLogin == "" {
		return errors.New("mallclient: route table incomplete")
	}
	return nil
}
