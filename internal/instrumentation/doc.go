// Package instrumentation wires OpenTelemetry metrics and tracing for
// taskbridge.
//
// A Provider owns the meter and tracer providers and exposes a Metrics
// recorder. Metrics covers tool invocations, individual Tasks API attempts
// and the credential lifecycle (token refreshes, interactive
// reauthorizations and which repair path a retried call took). All
// recording methods are safe on a nil or disabled recorder.
//
// Metrics are exported to Prometheus (served from a dedicated registry),
// OTLP or stdout. Traces go to OTLP or stdout, or nowhere by default. Each
// tool call gets a "tool.<name>" span with one child span per remote
// attempt, so a retried call shows up as two "tasks.<operation>" spans.
//
// AuditLogger writes one structured log record per tool invocation.
//
// Configuration follows the standard OpenTelemetry environment variables:
//
//	OTEL_SERVICE_NAME            service name (default "taskbridge")
//	OTEL_EXPORTER_OTLP_ENDPOINT  collector endpoint for otlp exporters
//	OTEL_EXPORTER_OTLP_INSECURE  plain HTTP to the collector
//	OTEL_TRACES_SAMPLER_ARG      trace sampling ratio (default 0.1)
//	METRICS_EXPORTER             prometheus, otlp or stdout
//	TRACING_EXPORTER             otlp, stdout or none
package instrumentation
