package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teemow/taskbridge/internal/credentials"
	"github.com/teemow/taskbridge/internal/logging"
)

// maxAttempts bounds how often a wrapped operation runs: the first call plus
// one retry after a credential repair.
const maxAttempts = 2

// Repairer restores a usable credential. *Manager implements it.
type Repairer interface {
	// Refresh renews the access token without user interaction and reports
	// whether it succeeded.
	Refresh(ctx context.Context) bool
	// AuthorizeInteractively runs the full consent flow.
	AuthorizeInteractively(ctx context.Context) (credentials.Credential, error)
}

// Executor runs remote operations and repairs authentication once when they
// fail with an auth error.
type Executor struct {
	repairer Repairer
	logger   *slog.Logger
	metrics  Recorder
}

// NewExecutor creates an Executor. logger and metrics may be nil.
func NewExecutor(repairer Repairer, logger *slog.Logger, metrics Recorder) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &Executor{
		repairer: repairer,
		logger:   logging.WithService(logger, "auth"),
		metrics:  metrics,
	}
}

// Do calls op, and if it fails with an auth error, repairs the credential and
// calls op exactly once more. The retry's outcome is returned as is. Errors
// that are not auth errors are returned unchanged without a retry.
//
// When interactive authorization is needed and fails, the original error is
// returned wrapped with the authorization failure.
func (e *Executor) Do(ctx context.Context, op func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxAttempts || !IsAuthError(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}

		e.logger.Info("remote call failed with an auth error, repairing credential",
			logging.Attempt(attempt), logging.Err(err))

		if repairErr := e.repair(ctx); repairErr != nil {
			return fmt.Errorf("%w (reauthorization failed: %v)", err, repairErr)
		}
	}
}

func (e *Executor) repair(ctx context.Context) error {
	if e.repairer.Refresh(ctx) {
		e.metrics.RecordAuthRetry(ctx, PathRefresh)
		return nil
	}

	e.logger.Info("token refresh unavailable, starting interactive authorization")
	if _, err := e.repairer.AuthorizeInteractively(ctx); err != nil {
		return err
	}
	e.metrics.RecordAuthRetry(ctx, PathReauthorize)
	return nil
}
