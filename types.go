package mallclient

import (
	"github.com/lingbai/mallclient/session"
)

// Role selects which authentication endpoint a login goes through. The
// three consoles use different endpoints and different response shapes.
type Role string

const (
	// RoleShopper is an exported constant used by login and the guard.
	RoleShopper Role = session.RoleShopper
	// RoleMerchant is an exported constant used by login and the guard.
	RoleMerchant Role = session.RoleMerchant
	// RoleAdmin is an exported constant used by login and the guard.
	RoleAdmin Role = session.RoleAdmin
)

// Credentials is the login input shared by all three roles. Captcha and
// Remember are consumed only by the admin console's endpoint and ignored
// elsewhere.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Captcha  string `json:"captcha,omitempty"`
	Remember bool   `json:"remember,omitempty"`
}

// RegisterRequest is the shopper registration input.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Phone    string `json:"phoneNumber,omitempty"`
	SMSCode  string `json:"smsCode,omitempty"`
	Email    string `json:"email,omitempty"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresIn int64
	Profile   session.Profile
}

// RegisterResult is returned by a successful registration. AutoLogin
// reports whether the server handed back a session as a side effect.
type RegisterResult struct {
	AutoLogin bool
	Profile   session.Profile
}

// CartItem is the slice of a cart entry the client operates on.
type CartItem struct {
	ProductID      int64   `json:"productId"`
	ProductName    string  `json:"productName,omitempty"`
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
	Selected       bool    `json:"selected"`
	Specifications string  `json:"specifications,omitempty"`
}

// BatchFailure records one failed element of a fan-out operation.
type BatchFailure struct {
	ProductID int64
	Err       error
}

// BatchResult aggregates a fan-out over cart items. Partial failure is an
// explicit outcome, not a silent one: callers can tell exactly which
// updates did not land.
type BatchResult struct {
	Total     int
	Succeeded int
	Failures  []BatchFailure
}

// AllSucceeded reports whether every element of the batch went through.
func (r BatchResult) AllSucceeded() bool {
	return len(r.Failures) == 0
}

// DayStats is one day of merchant statistics.
type DayStats struct {
	SalesAmount float64 `json:"salesAmount"`
	OrderCount  int     `json:"orderCount"`
	VisitorView int     `json:"visitorCount,omitempty"`
}

// MerchantOverview pairs today's statistics with yesterday's and the
// derived trends.
type MerchantOverview struct {
	Today      DayStats
	Yesterday  DayStats
	SalesTrend int
	OrderTrend int
	SalesText  string
}

// UploadResult is returned by a successful file upload.
type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}

// Notifier receives user-facing notices for business, transport, and
// network failures (the toast surface of the original client). Auth
// errors are returned to callers instead of being broadcast.
type Notifier interface {
	Warn(message string)
	Error(message string)
}

// Prompter runs the interactive session-expired confirmation. Returning
// true means the user chose to sign in again.
type Prompter interface {
	ConfirmSessionExpired(message string) bool
}

// Navigator performs a navigation ordered by the client (after a
// confirmed session expiry).
type Navigator interface {
	Navigate(path string)
}

type nopNotifier struct{}

func (nopNotifier) Warn(string)  {}
func (nopNotifier) Error(string) {}
