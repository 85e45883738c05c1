package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/teemow/taskbridge/internal/credentials"
)

type fakeRepairer struct {
	refreshOK    bool
	authorizeErr error

	refreshCalls   int
	authorizeCalls int
}

func (f *fakeRepairer) Refresh(context.Context) bool {
	f.refreshCalls++
	return f.refreshOK
}

func (f *fakeRepairer) AuthorizeInteractively(context.Context) (credentials.Credential, error) {
	f.authorizeCalls++
	if f.authorizeErr != nil {
		return credentials.Credential{}, f.authorizeErr
	}
	return credentials.Credential{AccessToken: "fresh"}, nil
}

type countingRecorder struct {
	mu      sync.Mutex
	retries []string
}

func (c *countingRecorder) RecordOAuthTokenRefresh(context.Context, string)    {}
func (c *countingRecorder) RecordOAuthReauthorization(context.Context, string) {}
func (c *countingRecorder) RecordAuthRetry(_ context.Context, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retries = append(c.retries, path)
}

var errUnauthenticated = &googleapi.Error{Code: 401, Message: "Request had invalid authentication credentials."}

func TestExecutor_Success(t *testing.T) {
	repairer := &fakeRepairer{}
	exec := NewExecutor(repairer, nil, nil)

	calls := 0
	err := exec.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Zero(t, repairer.refreshCalls)
	assert.Zero(t, repairer.authorizeCalls)
}

func TestExecutor_NonAuthErrorIsNotRetried(t *testing.T) {
	repairer := &fakeRepairer{refreshOK: true}
	exec := NewExecutor(repairer, nil, nil)

	notFound := &googleapi.Error{Code: 404, Message: "Not Found"}
	calls := 0
	err := exec.Do(context.Background(), func(context.Context) error {
		calls++
		return notFound
	})
	assert.Same(t, notFound, err)
	assert.Equal(t, 1, calls)
	assert.Zero(t, repairer.refreshCalls)
}

// Refresh succeeds: one retry, no interactive authorization.
func TestExecutor_RefreshThenRetry(t *testing.T) {
	repairer := &fakeRepairer{refreshOK: true}
	rec := &countingRecorder{}
	exec := NewExecutor(repairer, nil, rec)

	calls := 0
	err := exec.Do(context.Background(), func(context.Context) error {
		calls++
		if calls == 1 {
			return errUnauthenticated
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, repairer.refreshCalls)
	assert.Zero(t, repairer.authorizeCalls)
	assert.Equal(t, []string{PathRefresh}, rec.retries)
}

// No refresh token: interactive authorization exactly once, then one retry.
func TestExecutor_ReauthorizeThenRetry(t *testing.T) {
	repairer := &fakeRepairer{refreshOK: false}
	rec := &countingRecorder{}
	exec := NewExecutor(repairer, nil, rec)

	calls := 0
	err := exec.Do(context.Background(), func(context.Context) error {
		calls++
		if calls == 1 {
			return errUnauthenticated
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, repairer.refreshCalls)
	assert.Equal(t, 1, repairer.authorizeCalls)
	assert.Equal(t, []string{PathReauthorize}, rec.retries)
}

func TestExecutor_RetryBound(t *testing.T) {
	tests := []struct {
		name           string
		refreshOK      bool
		wantAuthorizes int
	}{
		{"refresh path", true, 0},
		{"reauthorize path", false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repairer := &fakeRepairer{refreshOK: tt.refreshOK}
			exec := NewExecutor(repairer, nil, nil)

			calls := 0
			second := &googleapi.Error{Code: 403, Message: "still forbidden"}
			err := exec.Do(context.Background(), func(context.Context) error {
				calls++
				if calls == 1 {
					return errUnauthenticated
				}
				return second
			})

			assert.Same(t, second, err, "the retried call's error is surfaced")
			assert.Equal(t, 2, calls)
			assert.Equal(t, 1, repairer.refreshCalls)
			assert.Equal(t, tt.wantAuthorizes, repairer.authorizeCalls)
		})
	}
}

func TestExecutor_ReauthorizationFails(t *testing.T) {
	authErr := errors.New("user denied consent")
	repairer := &fakeRepairer{authorizeErr: authErr}
	exec := NewExecutor(repairer, nil, nil)

	calls := 0
	err := exec.Do(context.Background(), func(context.Context) error {
		calls++
		return errUnauthenticated
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, errUnauthenticated)
	assert.Contains(t, err.Error(), "user denied consent")
}

func TestExecutor_CancelledContextSkipsRepair(t *testing.T) {
	repairer := &fakeRepairer{refreshOK: true}
	exec := NewExecutor(repairer, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := exec.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errUnauthenticated
	})

	assert.Same(t, errUnauthenticated, err)
	assert.Equal(t, 1, calls)
	assert.Zero(t, repairer.refreshCalls)
}
