package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/taskbridge/internal/credentials"
	"github.com/teemow/taskbridge/internal/google"
	"github.com/teemow/taskbridge/internal/logging"
)

// IdentitySource provides the OAuth client identity. *google.IdentityLoader
// implements it.
type IdentitySource interface {
	Load() (google.ClientIdentity, error)
	Path() string
}

// Config holds the collaborators of a Manager.
type Config struct {
	Identity   IdentitySource
	Store      *credentials.Store
	Authorizer Authorizer
	Scopes     []string

	Logger  *slog.Logger
	Metrics Recorder

	// HTTPClient is used for token endpoint requests. Defaults to an
	// HTTP/1.1 client with a 30 second timeout.
	HTTPClient *http.Client
	// Transport is the base transport for API requests made through
	// HTTPClient(). Defaults to an HTTP/1.1 transport.
	Transport http.RoundTripper
	// Endpoint overrides Google's OAuth endpoints.
	Endpoint *oauth2.Endpoint
}

type credentialListener func(ctx context.Context, cand credentials.Credential)

// Manager holds the client identity and the current credential of the
// process. All state transitions happen under its mutex.
type Manager struct {
	identity   IdentitySource
	store      *credentials.Store
	authorizer Authorizer
	scopes     []string
	logger     *slog.Logger
	metrics    Recorder
	httpClient *http.Client
	transport  http.RoundTripper
	endpoint   *oauth2.Endpoint

	mu      sync.Mutex
	conf    *oauth2.Config
	current credentials.Credential
	// authorized is written under mu and read without it, so health checks
	// never wait for an interactive flow holding mu.
	authorized atomic.Bool
	// attached tracks, per client id, that the persisting listener is
	// registered, so it is never added twice.
	attached  map[string]struct{}
	listeners []credentialListener
}

// Compile-time checks
var (
	_ oauth2.TokenSource = (*Manager)(nil)
	_ Repairer           = (*Manager)(nil)
)

// NewManager creates an unconfigured Manager. The client identity is not
// read until first use.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Identity == nil {
		return nil, errors.New("identity source is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("credential store is required")
	}
	if cfg.Authorizer == nil {
		return nil, errors.New("authorizer is required")
	}

	m := &Manager{
		identity:   cfg.Identity,
		store:      cfg.Store,
		authorizer: cfg.Authorizer,
		scopes:     append([]string(nil), cfg.Scopes...),
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		httpClient: cfg.HTTPClient,
		transport:  cfg.Transport,
		endpoint:   cfg.Endpoint,
		attached:   make(map[string]struct{}),
	}
	if len(m.scopes) == 0 {
		m.scopes = append([]string(nil), google.DefaultOAuthScopes...)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.logger = logging.WithService(m.logger, "auth")
	if m.metrics == nil {
		m.metrics = noopRecorder{}
	}
	if m.transport == nil {
		m.transport = http1Transport()
	}
	if m.httpClient == nil {
		m.httpClient = &http.Client{Timeout: 30 * time.Second, Transport: http1Transport()}
	}
	return m, nil
}

// http1Transport clones the default transport with HTTP/2 disabled. Google
// APIs occasionally fail with HTTP/2 stream errors on long-lived clients.
func http1Transport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.ForceAttemptHTTP2 = false
	return t
}

// Configure builds the OAuth configuration from the client identity on first
// use. It fails with a *google.ConfigurationError when the identity cannot be
// loaded.
func (m *Manager) Configure() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configureLocked()
}

func (m *Manager) configureLocked() error {
	if m.conf != nil {
		return nil
	}

	id, err := m.identity.Load()
	if err != nil {
		return err
	}

	conf := google.OAuth2Config(id, m.scopes)
	if m.endpoint != nil {
		conf.Endpoint = *m.endpoint
	}
	m.conf = conf
	m.attachLocked(id.ClientID)

	m.logger.Debug("oauth client configured", logging.ClientID(id.ClientID))
	return nil
}

func (m *Manager) attachLocked(clientID string) {
	if _, ok := m.attached[clientID]; ok {
		return
	}
	m.attached[clientID] = struct{}{}
	m.listeners = append(m.listeners, m.persistLocked)
}

// persistLocked saves a refreshed credential and adopts the merged record.
// A failed write is logged; the in-memory credential stays usable.
func (m *Manager) persistLocked(ctx context.Context, cand credentials.Credential) {
	merged, err := m.store.Save(ctx, cand)
	if err != nil {
		m.logger.Warn("failed to persist refreshed credential", logging.Err(err))
		return
	}
	m.current = merged
}

func (m *Manager) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

// LoadStored adopts the stored credential, if any, as current.
func (m *Manager) LoadStored(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, ok := m.store.Load(ctx)
	if !ok {
		m.logger.Info("no stored credential, authorization will be requested on first use",
			slog.String("location", m.store.Location()))
		return false
	}
	m.current = cred
	m.authorized.Store(true)
	m.logger.Debug("stored credential loaded",
		slog.Bool("has_refresh_token", cred.HasRefreshToken()),
		slog.Time("expiry", cred.Expiry()))
	return true
}

// Refresh renews the access token with the stored refresh token. Without a
// refresh token it returns false without any network call. Failures are
// logged, never returned.
func (m *Manager) Refresh(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.current.HasRefreshToken() {
		return false
	}
	if err := m.configureLocked(); err != nil {
		m.logger.Warn("cannot refresh token", logging.Err(err))
		return false
	}
	_, err := m.refreshLocked(ctx)
	return err == nil
}

func (m *Manager) refreshLocked(ctx context.Context) (*oauth2.Token, error) {
	seed := &oauth2.Token{RefreshToken: m.current.RefreshToken}
	tok, err := m.conf.TokenSource(m.oauthContext(ctx), seed).Token()
	if err != nil {
		m.metrics.RecordOAuthTokenRefresh(ctx, ResultFailure)
		m.logger.Warn("token refresh failed", logging.Err(err))
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	m.metrics.RecordOAuthTokenRefresh(ctx, ResultSuccess)

	cand := credentials.FromToken(tok)
	if cand.RefreshToken == "" {
		cand.RefreshToken = m.current.RefreshToken
	}
	m.current = credentials.Merge(m.current, cand)
	m.authorized.Store(true)
	for _, notify := range m.listeners {
		notify(ctx, cand)
	}

	m.logger.Debug("access token refreshed", slog.Time("expiry", m.current.Expiry()))
	return m.current.Token(), nil
}

// AuthorizeInteractively runs the interactive flow, persists the resulting
// credential and adopts it as current.
func (m *Manager) AuthorizeInteractively(ctx context.Context) (credentials.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.configureLocked(); err != nil {
		return credentials.Credential{}, err
	}

	cand, err := m.authorizer.Authorize(ctx, m.identity.Path(), m.scopes)
	if err != nil {
		m.metrics.RecordOAuthReauthorization(ctx, ResultFailure)
		return credentials.Credential{}, fmt.Errorf("interactive authorization failed: %w", err)
	}

	merged, err := m.store.Save(ctx, cand)
	if err != nil {
		m.metrics.RecordOAuthReauthorization(ctx, ResultFailure)
		return credentials.Credential{}, err
	}
	m.metrics.RecordOAuthReauthorization(ctx, ResultSuccess)

	m.current = merged
	m.authorized.Store(true)
	m.logger.Info("authorization completed",
		slog.String("location", m.store.Location()),
		slog.Bool("has_refresh_token", merged.HasRefreshToken()))
	return merged, nil
}

// Reauthorize runs the interactive flow and reloads the stored credential
// into the live client.
func (m *Manager) Reauthorize(ctx context.Context) error {
	if _, err := m.AuthorizeInteractively(ctx); err != nil {
		return err
	}
	m.LoadStored(ctx)
	return nil
}

// Token returns a valid access token, refreshing it when it has expired.
// It implements oauth2.TokenSource.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.configureLocked(); err != nil {
		return nil, err
	}
	if !m.authorized.Load() {
		return nil, ErrNotAuthorized
	}

	tok := m.current.Token()
	if tok.Valid() {
		return tok, nil
	}
	if !m.current.HasRefreshToken() {
		return nil, ErrTokenExpired
	}
	return m.refreshLocked(context.Background())
}

// HTTPClient returns a client that authorizes every request with the
// current access token.
func (m *Manager) HTTPClient() *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: m,
			Base:   m.transport,
		},
	}
}

// Authorized reports whether a credential is loaded.
func (m *Manager) Authorized() bool {
	return m.authorized.Load()
}

// Credential returns a snapshot of the current credential.
func (m *Manager) Credential() (credentials.Credential, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.authorized.Load()
}

// Scopes returns the scopes requested during authorization.
func (m *Manager) Scopes() []string {
	return append([]string(nil), m.scopes...)
}
