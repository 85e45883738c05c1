package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrResult    = "result"
	attrTool      = "tool"
	attrPath      = "path"
)

var durationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0}

// Metrics records taskbridge metrics. The zero value and a nil *Metrics
// record nothing.
type Metrics struct {
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	tasksAPIOperationsTotal   metric.Int64Counter
	tasksAPIOperationDuration metric.Float64Histogram

	oauthTokenRefreshTotal     metric.Int64Counter
	oauthReauthorizationsTotal metric.Int64Counter
	authRetriesTotal           metric.Int64Counter
}

// NewMetrics creates all instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	m.tasksAPIOperationsTotal, err = meter.Int64Counter(
		"tasks_api_operations_total",
		metric.WithDescription("Total number of Google Tasks API attempts"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks_api_operations_total counter: %w", err)
	}

	m.tasksAPIOperationDuration, err = meter.Float64Histogram(
		"tasks_api_operation_duration_seconds",
		metric.WithDescription("Google Tasks API attempt duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks_api_operation_duration_seconds histogram: %w", err)
	}

	m.oauthTokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("Total number of OAuth token refresh attempts"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	m.oauthReauthorizationsTotal, err = meter.Int64Counter(
		"oauth_reauthorization_total",
		metric.WithDescription("Total number of interactive OAuth authorizations"),
		metric.WithUnit("{authorization}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_reauthorization_total counter: %w", err)
	}

	m.authRetriesTotal, err = meter.Int64Counter(
		"auth_retry_total",
		metric.WithDescription("Total number of calls retried after an authentication failure"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth_retry_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) disabled() bool {
	return m == nil || m.toolInvocationsTotal == nil
}

// RecordToolInvocation records one MCP tool call.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration) {
	if m.disabled() {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordTasksAPIOperation records one attempt against the Tasks API.
func (m *Metrics) RecordTasksAPIOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m.disabled() {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.tasksAPIOperationsTotal.Add(ctx, 1, attrs)
	m.tasksAPIOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordOAuthTokenRefresh records a refresh-token exchange.
func (m *Metrics) RecordOAuthTokenRefresh(ctx context.Context, result string) {
	if m.disabled() {
		return
	}
	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordOAuthReauthorization records an interactive authorization.
func (m *Metrics) RecordOAuthReauthorization(ctx context.Context, result string) {
	if m.disabled() {
		return
	}
	m.oauthReauthorizationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordAuthRetry records a call retried after repair. path is "refresh" or
// "reauthorize".
func (m *Metrics) RecordAuthRetry(ctx context.Context, path string) {
	if m.disabled() {
		return
	}
	m.authRetriesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrPath, path)))
}
