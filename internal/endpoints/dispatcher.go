package endpoints

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/taskbridge/internal/instrumentation"
	"github.com/teemow/taskbridge/internal/logging"
)

// ReauthorizeTool is the synthetic tool that reruns interactive
// authorization.
const ReauthorizeTool = "reauthorize"

// ReauthorizeConfirmation is the text returned by a successful reauthorize.
const ReauthorizeConfirmation = "Reauthorization complete. New credentials have been saved and are now in use."

// Executor runs a remote call with authentication repair.
type Executor interface {
	Do(ctx context.Context, op func(context.Context) error) error
}

// Reauthorizer reruns the interactive flow and reloads the credential.
type Reauthorizer interface {
	Reauthorize(ctx context.Context) error
}

// Recorder receives per-attempt remote call metrics.
type Recorder interface {
	RecordTasksAPIOperation(ctx context.Context, operation, status string, duration time.Duration)
}

// Invocation is one incoming tool call.
type Invocation struct {
	Name      string
	Arguments map[string]any
}

// DispatcherConfig holds the collaborators of a Dispatcher.
type DispatcherConfig struct {
	Registry     *Registry
	API          API
	Executor     Executor
	Reauthorizer Reauthorizer
	Logger       *slog.Logger
	Metrics      Recorder
}

// Dispatcher routes invocations to registered operations.
type Dispatcher struct {
	registry *Registry
	api      API
	executor Executor
	reauth   Reauthorizer
	logger   *slog.Logger
	metrics  Recorder
}

// NewDispatcher creates a Dispatcher. Registry defaults to DefaultRegistry.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		registry: cfg.Registry,
		api:      cfg.API,
		executor: cfg.Executor,
		reauth:   cfg.Reauthorizer,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}
	if d.registry == nil {
		d.registry = DefaultRegistry()
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	d.logger = logging.WithService(d.logger, "dispatcher")
	return d
}

// Registry returns the registry the dispatcher resolves against.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch resolves, validates and runs inv and returns the rendered result.
// Errors are *NotFoundError, *ValidationError, or the remote error after at
// most one authentication repair.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) (string, error) {
	if inv.Name == ReauthorizeTool {
		return d.reauthorize(ctx)
	}

	def, ok := d.registry.Lookup(inv.Name)
	if !ok {
		return "", &NotFoundError{Tool: inv.Name}
	}
	tool := def.ToolName()

	params, body, err := splitArguments(def, inv.Arguments)
	if err != nil {
		return "", err
	}
	for _, name := range def.RequiredParams() {
		if !params.Has(name) {
			return "", &ValidationError{Tool: tool, Param: name}
		}
	}
	if def.UsesBody && body == nil {
		return "", &ValidationError{Tool: tool, Param: BodyParam}
	}

	var resp Response
	attempt := 0
	err = d.executor.Do(ctx, func(ctx context.Context) error {
		attempt++
		ctx, span := instrumentation.StartAPISpan(ctx, def.Name())
		defer span.End()

		start := time.Now()
		r, err := def.Invoke(ctx, d.api, params, body)
		d.record(ctx, def.Name(), err, time.Since(start))
		if err != nil {
			instrumentation.SetSpanError(span, err)
			d.logger.Debug("remote call failed",
				logging.Operation(def.Name()), logging.Attempt(attempt), logging.Err(err))
			return err
		}
		instrumentation.SetSpanSuccess(span)
		resp = r
		return nil
	})
	if err != nil {
		return "", err
	}

	return render(resp)
}

func (d *Dispatcher) reauthorize(ctx context.Context) (string, error) {
	if d.reauth == nil {
		return "", fmt.Errorf("reauthorization is not available")
	}
	if err := d.reauth.Reauthorize(ctx); err != nil {
		return "", err
	}
	d.logger.Info("reauthorized on request")
	return ReauthorizeConfirmation, nil
}

func (d *Dispatcher) record(ctx context.Context, operation string, err error, duration time.Duration) {
	if d.metrics == nil {
		return
	}
	status := logging.StatusSuccess
	if err != nil {
		status = logging.StatusError
	}
	d.metrics.RecordTasksAPIOperation(ctx, operation, status, duration)
}

// splitArguments separates the body from the named parameters. A body is
// only extracted for operations that take one; it must be a JSON object.
func splitArguments(def Definition, args map[string]any) (Params, map[string]any, error) {
	params := make(Params, len(args))
	var body map[string]any
	for k, v := range args {
		if k == BodyParam && def.UsesBody {
			if v == nil {
				continue
			}
			m, ok := v.(map[string]any)
			if !ok {
				return nil, nil, &ValidationError{Tool: def.ToolName(), Param: BodyParam, Reason: "must be a JSON object"}
			}
			body = m
			continue
		}
		params[k] = v
	}
	return params, body, nil
}

// render turns a response into tool output text. Strings pass through;
// anything else becomes indented JSON.
func render(resp Response) (string, error) {
	payload := resp.Data
	if payload == nil {
		payload = resp.Raw
	}

	switch v := payload.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render result: %w", err)
	}
	return string(out), nil
}
