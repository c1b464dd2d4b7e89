package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/lingbai/mallclient/storage"
)

// Storage keys. keyPrimary carries the whole session as one JSON blob; the
// rest are the flattened compatibility layout older clients wrote directly.
const (
	keyPrimary    = "user-store"
	keyToken      = "token"
	keyUserInfo   = "userInfo"
	keyMerchantID = "merchantId"
	keyUserID     = "userId"
)

// Store keeps the current session in memory and mirrors every mutation to
// the persistence adapter. It is safe for concurrent use; the browser
// original was single-threaded, but a Go client has no such luxury.
type Store struct {
	mu      sync.RWMutex
	current Session
	adapter storage.Adapter
	log     *zap.Logger
}

// NewStore wires a store to its persistence adapter. A nil logger is
// replaced with a no-op logger.
func NewStore(adapter storage.Adapter, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{adapter: adapter, log: log}
}

// Current returns a copy of the in-memory session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the current bearer token, empty when anonymous.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Set replaces the session and persists both storage layouts.
func (s *Store) Set(ctx context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = sess
	return s.persistLocked(ctx)
}

// Clear drops the in-memory session and removes every persisted key,
// primary blob and flattened layout alike. Clearing an anonymous store is
// a no-op.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Session{}
	return errors.Join(
		s.adapter.Delete(ctx, keyPrimary),
		s.adapter.Delete(ctx, keyToken),
		s.adapter.Delete(ctx, keyUserInfo),
		s.adapter.Delete(ctx, keyMerchantID),
		s.adapter.Delete(ctx, keyUserID),
	)
}

// MergeProfile overlays a raw JSON profile fragment (as returned by the
// generic profile endpoint) onto the current profile, then restores the
// role-identifying fields from the pre-merge profile so a shopper-shaped
// response cannot erase merchant or admin identity. The token is untouched.
func (s *Store) MergeProfile(ctx context.Context, fragment []byte) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := map[string]any{}
	if raw, err := json.Marshal(s.current.Profile); err == nil {
		_ = json.Unmarshal(raw, &base)
	}

	incoming := map[string]any{}
	if err := json.Unmarshal(fragment, &incoming); err != nil {
		return s.current.Profile, errors.New("session: profile fragment is not an object")
	}
	for k, v := range incoming {
		base[k] = v
	}

	// Role identity survives the generic merge.
	pre := s.current.Profile
	if pre.Role != "" {
		base["role"] = pre.Role
	}
	if pre.IsAdmin {
		base["isAdmin"] = true
	}
	if pre.IsMerchant {
		base["isMerchant"] = true
	}
	if pre.MerchantID != 0 {
		base["merchantId"] = pre.MerchantID
	}
	if pre.ShopName != "" {
		base["shopName"] = pre.ShopName
	}
	if pre.Logo != "" {
		base["logo"] = pre.Logo
	}

	raw, err := json.Marshal(base)
	if err != nil {
		return s.current.Profile, err
	}
	var merged Profile
	if err := json.Unmarshal(raw, &merged); err != nil {
		return s.current.Profile, err
	}

	s.current.Profile = merged
	if err := s.persistLocked(ctx); err != nil {
		s.log.Warn("session: persist after profile merge failed", zap.Error(err))
	}
	return merged, nil
}

// Restore adopts whatever session survives in storage. The primary blob
// wins; flattened keys backfill any missing piece; a merchant id without a
// role tag synthesizes the merchant role. The flattened keys are rewritten
// at the end so both layouts agree afterwards.
func (s *Store) Restore(ctx context.Context) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sess Session
	if blob, ok, err := s.adapter.Get(ctx, keyPrimary); err == nil && ok && blob != "" {
		if err := json.Unmarshal([]byte(blob), &sess); err != nil {
			s.log.Warn("session: primary blob corrupt, falling back to flattened keys", zap.Error(err))
			sess = Session{}
		}
	}

	if sess.Token == "" {
		if token, ok, err := s.adapter.Get(ctx, keyToken); err == nil && ok {
			sess.Token = token
		}
	}
	if sess.Profile.Zero() {
		if raw, ok, err := s.adapter.Get(ctx, keyUserInfo); err == nil && ok && raw != "" {
			if err := json.Unmarshal([]byte(raw), &sess.Profile); err != nil {
				s.log.Warn("session: flattened profile corrupt, discarding", zap.Error(err))
				sess.Profile = Profile{}
			}
		}
	}
	if sess.Profile.MerchantID == 0 {
		if raw, ok, err := s.adapter.Get(ctx, keyMerchantID); err == nil && ok && raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				sess.Profile.MerchantID = id
			}
		}
	}
	if sess.Profile.ID == 0 && sess.Profile.UserID == 0 {
		if raw, ok, err := s.adapter.Get(ctx, keyUserID); err == nil && ok && raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				sess.Profile.UserID = id
			}
		}
	}

	// Contradictory leftovers resolve toward merchant: only a merchant
	// session ever wrote a merchant id.
	if sess.Profile.MerchantID != 0 {
		sess.Profile.IsMerchant = true
		if sess.Profile.Role == "" {
			sess.Profile.Role = RoleMerchant
		}
	}
	if sess.Profile.Role == RoleAdmin {
		sess.Profile.IsAdmin = true
	}

	s.current = sess
	if err := s.persistLocked(ctx); err != nil {
		s.log.Warn("session: rewriting flattened keys after restore failed", zap.Error(err))
	}
	return sess, nil
}

// StartSync propagates logouts performed by other processes sharing the
// adapter: when the persisted token disappears, the in-memory session is
// dropped. Delivery is best-effort and unordered. Returns
// storage.ErrWatchUnsupported when the adapter cannot watch.
func (s *Store) StartSync(ctx context.Context) error {
	watcher, ok := s.adapter.(storage.Watcher)
	if !ok {
		return storage.ErrWatchUnsupported
	}
	events, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	go func() {
		for ev := range events {
			if ev.Key != "" && ev.Key != keyToken && ev.Key != keyPrimary {
				continue
			}
			token, found, err := s.adapter.Get(ctx, keyToken)
			if err != nil {
				continue
			}
			if (!found || token == "") && s.Token() != "" {
				s.mu.Lock()
				s.current = Session{}
				s.mu.Unlock()
				s.log.Info("session: cleared after external logout")
			}
		}
	}()
	return nil
}

// persistLocked writes both layouts. Zero-valued pieces are deleted rather
// than written, so an anonymous session leaves no keys behind.
func (s *Store) persistLocked(ctx context.Context) error {
	cur := s.current
	if !cur.Authenticated() && cur.Profile.Zero() {
		return errors.Join(
			s.adapter.Delete(ctx, keyPrimary),
			s.adapter.Delete(ctx, keyToken),
			s.adapter.Delete(ctx, keyUserInfo),
			s.adapter.Delete(ctx, keyMerchantID),
			s.adapter.Delete(ctx, keyUserID),
		)
	}

	blob, err := json.Marshal(cur)
	if err != nil {
		return err
	}
	profileJSON, err := json.Marshal(cur.Profile)
	if err != nil {
		return err
	}

	errs := []error{
		s.adapter.Set(ctx, keyPrimary, string(blob)),
		s.adapter.Set(ctx, keyToken, cur.Token),
		s.adapter.Set(ctx, keyUserInfo, string(profileJSON)),
	}
	if cur.Profile.MerchantID != 0 {
		errs = append(errs, s.adapter.Set(ctx, keyMerchantID, strconv.FormatInt(cur.Profile.MerchantID, 10)))
	} else {
		errs = append(errs, s.adapter.Delete(ctx, keyMerchantID))
	}
	if id := cur.Profile.EffectiveID(); id != 0 {
		errs = append(errs, s.adapter.Set(ctx, keyUserID, strconv.FormatInt(id, 10)))
	} else {
		errs = append(errs, s.adapter.Delete(ctx, keyUserID))
	}
	return errors.Join(errs...)
}
