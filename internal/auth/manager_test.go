package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/taskbridge/internal/credentials"
	"github.com/teemow/taskbridge/internal/google"
)

type staticIdentity struct {
	id  google.ClientIdentity
	err error
}

func (s staticIdentity) Load() (google.ClientIdentity, error) { return s.id, s.err }
func (s staticIdentity) Path() string                         { return "/etc/taskbridge/client_secret.json" }

// countingBackend wraps a backend and counts writes.
type countingBackend struct {
	credentials.Backend
	writes atomic.Int32
}

func (c *countingBackend) Write(ctx context.Context, data []byte) error {
	c.writes.Add(1)
	return c.Backend.Write(ctx, data)
}

type fakeAuthorizer struct {
	cred  credentials.Credential
	err   error
	calls int
	path  string
}

func (f *fakeAuthorizer) Authorize(_ context.Context, identityPath string, _ []string) (credentials.Credential, error) {
	f.calls++
	f.path = identityPath
	return f.cred, f.err
}

// tokenServer fakes Google's token endpoint.
type tokenServer struct {
	*httptest.Server
	hits        atomic.Int32
	accessToken string
	fail        bool
}

func newTokenServer(t *testing.T, accessToken string) *tokenServer {
	t.Helper()
	ts := &tokenServer{accessToken: accessToken}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		assert.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		if ts.fail || r.Form.Get("grant_type") != "refresh_token" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`)
			return
		}
		_, _ = fmt.Fprintf(w, `{"access_token":%q,"expires_in":3600,"token_type":"Bearer","scope":"https://www.googleapis.com/auth/tasks"}`, ts.accessToken)
	}))
	t.Cleanup(ts.Close)
	return ts
}

type fixture struct {
	manager    *Manager
	store      *credentials.Store
	backend    *countingBackend
	authorizer *fakeAuthorizer
	tokens     *tokenServer
}

func newFixture(t *testing.T, identityErr error) *fixture {
	t.Helper()

	fileBackend, err := credentials.NewFileBackend(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)
	backend := &countingBackend{Backend: fileBackend}
	store := credentials.NewStore(backend, nil)

	tokens := newTokenServer(t, "fresh")
	authorizer := &fakeAuthorizer{cred: credentials.Credential{AccessToken: "interactive", RefreshToken: "r-new"}}

	m, err := NewManager(Config{
		Identity:   staticIdentity{id: google.ClientIdentity{ClientID: "client-id", ClientSecret: "secret"}, err: identityErr},
		Store:      store,
		Authorizer: authorizer,
		HTTPClient: tokens.Client(),
		Endpoint: &oauth2.Endpoint{
			AuthURL:   tokens.URL + "/auth",
			TokenURL:  tokens.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	})
	require.NoError(t, err)

	return &fixture{manager: m, store: store, backend: backend, authorizer: authorizer, tokens: tokens}
}

func (f *fixture) seed(t *testing.T, cred credentials.Credential) {
	t.Helper()
	_, err := f.store.Save(context.Background(), cred)
	require.NoError(t, err)
	f.backend.writes.Store(0)
	require.True(t, f.manager.LoadStored(context.Background()))
}

func TestNewManager_RequiresCollaborators(t *testing.T) {
	_, err := NewManager(Config{})
	assert.Error(t, err)
}

func TestManager_RefreshWithoutRefreshToken(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, credentials.Credential{AccessToken: "a1"})

	assert.False(t, f.manager.Refresh(context.Background()))
	assert.Zero(t, f.tokens.hits.Load(), "no network call without a refresh token")
}

func TestManager_RefreshPreservesRefreshToken(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, credentials.Credential{AccessToken: "a1", RefreshToken: "r1"})

	require.True(t, f.manager.Refresh(context.Background()))
	assert.Equal(t, int32(1), f.tokens.hits.Load())
	assert.Equal(t, int32(1), f.backend.writes.Load(), "refresh persists exactly once")

	current, ok := f.manager.Credential()
	require.True(t, ok)
	assert.Equal(t, "fresh", current.AccessToken)
	assert.Equal(t, "r1", current.RefreshToken)
	assert.Equal(t, "https://www.googleapis.com/auth/tasks", current.Scope)

	stored, ok := f.store.Load(context.Background())
	require.True(t, ok)
	assert.Equal(t, current, stored)
}

func TestManager_RefreshFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.tokens.fail = true
	f.seed(t, credentials.Credential{AccessToken: "a1", RefreshToken: "r1"})

	assert.False(t, f.manager.Refresh(context.Background()))
	assert.Zero(t, f.backend.writes.Load())

	current, _ := f.manager.Credential()
	assert.Equal(t, "a1", current.AccessToken)
}

func TestManager_ConfigureAttachesListenerOnce(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.manager.Configure())
	require.NoError(t, f.manager.Configure())
	f.manager.attachLocked("client-id")

	assert.Len(t, f.manager.listeners, 1)
	assert.Len(t, f.manager.attached, 1)
}

func TestManager_AuthorizeInteractively(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, credentials.Credential{AccessToken: "old", RefreshToken: "r-old", Scope: "s"})
	f.authorizer.cred = credentials.Credential{AccessToken: "interactive"}

	merged, err := f.manager.AuthorizeInteractively(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.authorizer.calls)
	assert.Equal(t, "/etc/taskbridge/client_secret.json", f.authorizer.path)
	assert.Equal(t, credentials.Credential{AccessToken: "interactive", RefreshToken: "r-old", Scope: "s"}, merged)

	current, ok := f.manager.Credential()
	require.True(t, ok)
	assert.Equal(t, merged, current)
}

func TestManager_AuthorizeInteractivelyConfigurationError(t *testing.T) {
	cfgErr := &google.ConfigurationError{Path: "x.json", Reason: "file not found"}
	f := newFixture(t, cfgErr)

	_, err := f.manager.AuthorizeInteractively(context.Background())
	var target *google.ConfigurationError
	require.ErrorAs(t, err, &target)
	assert.Zero(t, f.authorizer.calls)
}

func TestManager_AuthorizeInteractivelyFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.authorizer.err = errors.New("access_denied")

	_, err := f.manager.AuthorizeInteractively(context.Background())
	require.Error(t, err)
	assert.False(t, f.manager.Authorized())
	assert.Zero(t, f.backend.writes.Load())
}

func TestManager_AuthorizedDoesNotWaitForInteractiveFlow(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, credentials.Credential{AccessToken: "old", RefreshToken: "r-old"})

	started := make(chan struct{})
	release := make(chan struct{})
	f.manager.authorizer = AuthorizerFunc(func(context.Context, string, []string) (credentials.Credential, error) {
		close(started)
		<-release
		return credentials.Credential{AccessToken: "interactive"}, nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := f.manager.AuthorizeInteractively(context.Background())
		done <- err
	}()
	<-started

	authorized := make(chan bool, 1)
	go func() { authorized <- f.manager.Authorized() }()
	select {
	case ok := <-authorized:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Authorized blocked while the interactive flow held the lock")
	}

	close(release)
	require.NoError(t, <-done)
	assert.True(t, f.manager.Authorized())
}

func TestManager_Token(t *testing.T) {
	t.Run("not authorized", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.manager.Token()
		assert.ErrorIs(t, err, ErrNotAuthorized)
		assert.True(t, IsAuthError(err))
	})

	t.Run("valid token is returned without refresh", func(t *testing.T) {
		f := newFixture(t, nil)
		f.seed(t, credentials.Credential{
			AccessToken:  "a1",
			RefreshToken: "r1",
			ExpiryDate:   time.Now().Add(time.Hour).UnixMilli(),
		})
		tok, err := f.manager.Token()
		require.NoError(t, err)
		assert.Equal(t, "a1", tok.AccessToken)
		assert.Zero(t, f.tokens.hits.Load())
	})

	t.Run("expired token is refreshed and persisted", func(t *testing.T) {
		f := newFixture(t, nil)
		f.seed(t, credentials.Credential{
			AccessToken:  "a1",
			RefreshToken: "r1",
			ExpiryDate:   time.Now().Add(-time.Hour).UnixMilli(),
		})
		tok, err := f.manager.Token()
		require.NoError(t, err)
		assert.Equal(t, "fresh", tok.AccessToken)
		assert.Equal(t, int32(1), f.backend.writes.Load())
	})

	t.Run("expired token without refresh token", func(t *testing.T) {
		f := newFixture(t, nil)
		f.seed(t, credentials.Credential{
			AccessToken: "a1",
			ExpiryDate:  time.Now().Add(-time.Hour).UnixMilli(),
		})
		_, err := f.manager.Token()
		assert.ErrorIs(t, err, ErrTokenExpired)
		assert.Zero(t, f.tokens.hits.Load())
	})
}

func TestManager_Reauthorize(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.manager.Reauthorize(context.Background()))
	assert.True(t, f.manager.Authorized())

	current, _ := f.manager.Credential()
	assert.Equal(t, "interactive", current.AccessToken)
	assert.Equal(t, "r-new", current.RefreshToken)
}

// apiServer accepts only the bearer token "fresh" and counts requests.
func apiServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = fmt.Fprint(w, "ok")
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func callAPI(client *http.Client, url string) func(context.Context) error {
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return statusErr(resp.StatusCode)
		}
		return nil
	}
}

func TestManager_ExecutorRefreshScenario(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, credentials.Credential{
		AccessToken:  "stale",
		RefreshToken: "r1",
		ExpiryDate:   time.Now().Add(time.Hour).UnixMilli(),
	})
	api, hits := apiServer(t)

	exec := NewExecutor(f.manager, nil, nil)
	err := exec.Do(context.Background(), callAPI(f.manager.HTTPClient(), api.URL))

	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "exactly one retried remote call")
	assert.Equal(t, int32(1), f.tokens.hits.Load())
	assert.Zero(t, f.authorizer.calls, "no interactive authorization")
}

func TestManager_ExecutorReauthorizeScenario(t *testing.T) {
	f := newFixture(t, nil)
	f.authorizer.cred = credentials.Credential{AccessToken: "fresh"}
	f.seed(t, credentials.Credential{AccessToken: "stale"})
	api, hits := apiServer(t)

	exec := NewExecutor(f.manager, nil, nil)
	err := exec.Do(context.Background(), callAPI(f.manager.HTTPClient(), api.URL))

	require.NoError(t, err)
	assert.Equal(t, 1, f.authorizer.calls)
	assert.Equal(t, int32(2), hits.Load())
	assert.Zero(t, f.tokens.hits.Load())
}
