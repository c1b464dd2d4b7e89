package session

// Role tags understood by the platform. A profile may carry none of them;
// an empty role with a non-empty token is a plain shopper session.
const (
	RoleShopper  = "user"
	RoleMerchant = "merchant"
	RoleAdmin    = "admin"
)

// Profile is the role-dependent identity attached to a session. The JSON
// field names match what the backend services emit; zero fields are elided
// so a persisted profile round-trips without noise.
//
// Admin and merchant predicates are not structurally exclusive: a server
// response can set both flags, and the client does not pick a winner.
type Profile struct {
	ID         int64  `json:"id,omitempty"`
	UserID     int64  `json:"userId,omitempty"`
	Username   string `json:"username,omitempty"`
	Nickname   string `json:"nickname,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
	Role       string `json:"role,omitempty"`
	IsAdmin    bool   `json:"isAdmin,omitempty"`
	IsMerchant bool   `json:"isMerchant,omitempty"`
	MerchantID int64  `json:"merchantId,omitempty"`
	ShopName   string `json:"shopName,omitempty"`
	Logo       string `json:"logo,omitempty"`
}

// Admin reports whether the profile satisfies the admin predicate. The
// username special case mirrors the backend's bootstrap account.
func (p Profile) Admin() bool {
	return p.Role == RoleAdmin || p.IsAdmin || p.Username == "admin"
}

// Merchant reports whether the profile satisfies the merchant predicate.
func (p Profile) Merchant() bool {
	return p.Role == RoleMerchant || p.IsMerchant
}

// EffectiveID returns the numeric identity, preferring the id field over
// the legacy userId field.
func (p Profile) EffectiveID() int64 {
	if p.ID != 0 {
		return p.ID
	}
	return p.UserID
}

// Zero reports whether no profile field is set.
func (p Profile) Zero() bool {
	return p == Profile{}
}

// Session is the client-held proof of authentication: an opaque token plus
// the cached profile. The session is authenticated exactly when the token
// is non-empty.
type Session struct {
	Token   string  `json:"token"`
	Profile Profile `json:"userInfo"`
}

// Authenticated reports whether the session holds a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
