package mallclient

import (
	"context"
	"net/http"

	"github.com/lingbai/mallclient/session"
)

// RefreshProfile re-fetches the profile from the generic current-user
// endpoint and merges it into the session.
//
// When the cached role is admin or merchant and force is false, the call
// is skipped and the cached profile returned unchanged: the generic
// endpoint only knows shopper-shaped data and would corrupt role-specific
// fields. Even a forced fetch cannot erase role identity: the merge
// preserves the role-identifying fields (see session.Store.MergeProfile).
func (c *Client) RefreshProfile(ctx context.Context, force bool) (session.Profile, error) {
	if c == nil || !c.ready {
		return session.Profile{}, ErrClientNotReady
	}

	cur := c.store.Current()
	if !cur.Authenticated() {
		c.log.Warn("profile refresh requested without a token, skipping network call")
		return cur.Profile, nil
	}
	if !force && (cur.Profile.Admin() || cur.Profile.Merchant()) {
		return cur.Profile, nil
	}

	outcome, err := c.do(ctx, callOptions{
		method: http.MethodGet,
		path:   c.cfg.Endpoints.Profile,
	})
	if err != nil {
		return cur.Profile, err
	}
	if len(outcome.Payload) == 0 {
		return cur.Profile, &BusinessError{Message: "profile response carried no data"}
	}

	return c.store.MergeProfile(ctx, outcome.Payload)
}
