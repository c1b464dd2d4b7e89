package mallclient

import (
	"errors"
	"net/http"
	"net/http/cookiejar"

	"go.uber.org/zap"

	"github.com/lingbai/mallclient/session"
	"github.com/lingbai/mallclient/storage"
	"github.com/lingbai/mallclient/transport"
)

// Builder assembles a Client. Every With* call returns the builder for
// chaining; Build wires the pieces together exactly once.
type Builder struct {
	cfg       Config
	adapter   storage.Adapter
	base      *http.Client
	logger    *zap.Logger
	notifier  Notifier
	prompter  Prompter
	navigator Navigator

	built bool
}

// New returns a builder preloaded with DefaultConfig.
func New() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithBaseURL sets only the backend base URL, the one field every caller
// must provide.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.cfg.HTTP.BaseURL = baseURL
	return b
}

// WithStorage sets the persistence adapter. Defaults to an in-memory
// adapter, which means sessions do not survive the process.
func (b *Builder) WithStorage(adapter storage.Adapter) *Builder {
	b.adapter = adapter
	return b
}

// WithHTTPClient supplies the underlying HTTP client. Its transport is
// wrapped with the augmentation round tripper; its cookie jar and TLS
// settings are kept.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.base = client
	return b
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithNotifier sets the user-facing notice sink (the toast surface).
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithPrompter sets the interactive session-expired confirmation. Without
// one, an expired session is logged and left in place.
func (b *Builder) WithPrompter(p Prompter) *Builder {
	b.prompter = p
	return b
}

// WithNavigator sets the navigation sink used after a confirmed session
// expiry.
func (b *Builder) WithNavigator(n Navigator) *Builder {
	b.navigator = n
	return b
}

// Build validates the configuration and wires the client. The builder is
// single-use.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("mallclient: builder already used")
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	adapter := b.adapter
	if adapter == nil {
		adapter = storage.NewMemory(b.cfg.Storage.KeyPrefix)
	}

	store := session.NewStore(adapter, logger)

	base := b.base
	if base == nil {
		base = &http.Client{}
	}
	jar := base.Jar
	if jar == nil {
		// The CSRF echo reads the anti-forgery cookie back off requests,
		// so the client needs a jar even if the caller never touches it.
		var err error
		jar, err = cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
	}
	timeout := base.Timeout
	if timeout == 0 {
		timeout = b.cfg.HTTP.Timeout
	}

	rt := transport.New(base.Transport, store.Token, transport.Config{
		PublicPaths:     b.cfg.HTTP.PublicPaths,
		CSRFCookieNames: b.cfg.CSRF.CookieNames,
		CSRFHeaderNames: b.cfg.CSRF.HeaderNames,
	}, logger)

	notifier := b.notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}

	b.built = true
	return &Client{
		cfg: b.cfg,
		http: &http.Client{
			Transport: rt,
			Jar:       jar,
			Timeout:   timeout,
		},
		store:     store,
		log:       logger,
		notifier:  notifier,
		prompter:  b.prompter,
		navigator: b.navigator,
		ready:     true,
	}, nil
}
