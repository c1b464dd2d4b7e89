package guard

import (
	"net/url"
	"strings"

	"github.com/lingbai/mallclient/session"
)

// Route declares a navigation target and its access requirements.
type Route struct {
	Path             string
	Name             string
	RequiresAuth     bool
	RequiresAdmin    bool
	RequiresMerchant bool
}

// Severity classifies the user-facing notice attached to a denial.
type Severity uint8

const (
	// NoticeNone means no notice should be shown.
	NoticeNone Severity = iota
	// NoticeWarning is informational (sign-in required).
	NoticeWarning
	// NoticeError is a hard denial (missing role).
	NoticeError
)

// Decision is the outcome of one navigation attempt. When Allowed is
// false, RedirectTo carries the replacement target; Notice and its
// Severity describe what, if anything, to tell the user.
type Decision struct {
	Allowed    bool
	RedirectTo string
	Notice     string
	Severity   Severity
}

// Routes names the well-known paths the guard redirects to. Values are
// configurable because deployments mount the admin and merchant consoles
// under different prefixes.
type Routes struct {
	Home              string `yaml:"home"`
	ShopperLogin      string `yaml:"shopper_login"`
	ShopperRegister   string `yaml:"shopper_register"`
	MerchantLogin     string `yaml:"merchant_login"`
	AdminLogin        string `yaml:"admin_login"`
	MerchantDashboard string `yaml:"merchant_dashboard"`
	AdminDashboard    string `yaml:"admin_dashboard"`
}

// DefaultRoutes returns the storefront's standard layout.
func DefaultRoutes() Routes {
	return Routes{
		Home:              "/",
		ShopperLogin:      "/auth/login",
		ShopperRegister:   "/auth/register",
		MerchantLogin:     "/merchant/login",
		AdminLogin:        "/admin/login",
		MerchantDashboard: "/merchant/dashboard",
		AdminDashboard:    "/admin/dashboard",
	}
}

// Evaluate decides one navigation attempt. Checks run in a fixed order:
// authentication, admin role, merchant role, then already-signed-in
// redirects away from login pages. The first failing check wins.
func Evaluate(sess session.Session, route Route, routes Routes) Decision {
	if route.RequiresAuth && !sess.Authenticated() {
		return Decision{
			RedirectTo: loginFor(route.Path, routes) + "?redirect=" + url.QueryEscape(route.Path),
			Notice:     "please sign in first",
			Severity:   NoticeWarning,
		}
	}

	if route.RequiresAdmin && !sess.Profile.Admin() {
		return Decision{
			RedirectTo: routes.Home,
			Notice:     "administrator privileges required",
			Severity:   NoticeError,
		}
	}

	if route.RequiresMerchant && !sess.Profile.Merchant() {
		return Decision{
			RedirectTo: routes.Home,
			Notice:     "merchant privileges required",
			Severity:   NoticeError,
		}
	}

	// A signed-in visitor has no business on a login page matching their
	// own role; send them to where they were trying to go in spirit.
	if sess.Authenticated() {
		switch {
		case route.Path == routes.AdminLogin && sess.Profile.Admin():
			return Decision{RedirectTo: routes.AdminDashboard}
		case route.Path == routes.MerchantLogin && sess.Profile.Merchant():
			return Decision{RedirectTo: routes.MerchantDashboard}
		case (route.Path == routes.ShopperLogin || route.Path == routes.ShopperRegister) &&
			!sess.Profile.Admin() && !sess.Profile.Merchant():
			return Decision{RedirectTo: routes.Home}
		}
	}

	return Decision{Allowed: true}
}

// loginFor picks the role-appropriate login page by path prefix.
func loginFor(path string, routes Routes) string {
	switch {
	case strings.HasPrefix(path, "/admin"):
		return routes.AdminLogin
	case strings.HasPrefix(path, "/merchant"):
		return routes.MerchantLogin
	default:
		return routes.ShopperLogin
	}
}
