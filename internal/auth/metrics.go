package auth

import "context"

// Metric result values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Repair paths reported to RecordAuthRetry.
const (
	PathRefresh     = "refresh"
	PathReauthorize = "reauthorize"
)

// Recorder receives credential lifecycle events. *instrumentation.Metrics
// satisfies it.
type Recorder interface {
	RecordOAuthTokenRefresh(ctx context.Context, result string)
	RecordOAuthReauthorization(ctx context.Context, result string)
	RecordAuthRetry(ctx context.Context, path string)
}

type noopRecorder struct{}

func (noopRecorder) RecordOAuthTokenRefresh(context.Context, string)    {}
func (noopRecorder) RecordOAuthReauthorization(context.Context, string) {}
func (noopRecorder) RecordAuthRetry(context.Context, string)            {}
