package server

import (
	"context"
	"errors"
	"sync"

	"github.com/teemow/taskbridge/internal/endpoints"
	"github.com/teemow/taskbridge/internal/instrumentation"
)

// CredentialState reports whether a usable credential is loaded.
// *auth.Manager implements it.
type CredentialState interface {
	Authorized() bool
}

// Options holds the collaborators of a ServerContext.
type Options struct {
	Dispatcher  *endpoints.Dispatcher
	Credentials CredentialState
	Metrics     *instrumentation.Metrics
	AuditLogger *instrumentation.AuditLogger
	// ReadOnly limits the exposed tools to non-mutating operations.
	ReadOnly bool
}

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	dispatcher  *endpoints.Dispatcher
	credentials CredentialState
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	readOnly    bool

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, opts Options) (*ServerContext, error) {
	if opts.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:         shutdownCtx,
		cancel:      cancel,
		dispatcher:  opts.Dispatcher,
		credentials: opts.Credentials,
		metrics:     opts.Metrics,
		auditLogger: opts.AuditLogger,
		readOnly:    opts.ReadOnly,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Dispatcher returns the endpoint dispatcher.
func (sc *ServerContext) Dispatcher() *endpoints.Dispatcher {
	return sc.dispatcher
}

// Metrics returns the metrics recorder, or nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// ReadOnly reports whether mutating tools are hidden.
func (sc *ServerContext) ReadOnly() bool {
	return sc.readOnly
}

// Authorized reports whether a credential is loaded. Without a credential
// source it reports false.
func (sc *ServerContext) Authorized() bool {
	return sc.credentials != nil && sc.credentials.Authorized()
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context. It is idempotent.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	sc.shutdown = true
	sc.cancel()
	return nil
}
