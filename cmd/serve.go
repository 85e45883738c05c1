package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/teemow/taskbridge/internal/config"
	"github.com/teemow/taskbridge/internal/instrumentation"
	"github.com/teemow/taskbridge/internal/logging"
	"github.com/teemow/taskbridge/internal/resources"
	"github.com/teemow/taskbridge/internal/server"
	"github.com/teemow/taskbridge/internal/tools/tasks_tools"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server exposing Google Tasks operations as tools.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport at /mcp with /healthz and /readyz

If no credential is stored, the first tool call starts the interactive
Google authorization. Run "taskbridge auth login" beforehand to avoid that.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("transport", "", "Transport type: stdio or streamable-http")
	cmd.Flags().String("http-addr", "", "HTTP server address (for streamable-http transport)")
	cmd.Flags().Bool("read-only", false, "Only expose tools that do not modify tasks")
	cmd.Flags().StringSlice("scopes", nil, "OAuth scopes to request (comma-separated)")
	cmd.Flags().Int("callback-port", 0, "Port for the OAuth loopback callback (0 picks a free port)")
	cmd.Flags().Bool("open-browser", true, "Open the consent page in a browser during authorization")
	cmd.Flags().String("keyring-user", "", "Keyring user for keyring storage")
	cmd.Flags().Bool("metrics-enabled", false, "Serve Prometheus metrics on a dedicated address")
	cmd.Flags().String("metrics-addr", "", "Metrics server address")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer done()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	rt, err := newRuntime(ctx, cfg, logger, provider.Metrics())
	if err != nil {
		return err
	}

	serverContext, err := server.NewServerContext(ctx, server.Options{
		Dispatcher:  rt.dispatcher,
		Credentials: rt.manager,
		Metrics:     provider.Metrics(),
		AuditLogger: instrumentation.NewAuditLogger(logger, instrConfig.Audit),
		ReadOnly:    cfg.Server.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = serverContext.Shutdown() }()

	mcpSrv := newMCPServer(serverContext)

	if cfg.Server.ReadOnly {
		logger.Info("starting in read-only mode, mutating tools are not registered")
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Enabled && provider.Enabled() {
		metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.Metrics.Addr,
			InstrumentationProvider: provider,
			Logger:                  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		g.Go(metricsServer.Start)
		g.Go(func() error {
			<-gctx.Done()
			return shutdownWithTimeout(metricsServer.Shutdown)
		})
	}

	switch cfg.Server.Transport {
	case config.TransportStdio:
		stdio := mcpserver.NewStdioServer(mcpSrv)
		stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))
		g.Go(func() error {
			defer cancel()
			err := stdio.Listen(gctx, os.Stdin, os.Stdout)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})

	case config.TransportStreamableHTTP:
		httpServer := server.NewHTTPServer(mcpSrv, cfg.Server.HTTPAddr, server.NewHealthChecker(serverContext), logger)
		g.Go(func() error {
			defer cancel()
			return httpServer.Start()
		})
		g.Go(func() error {
			<-gctx.Done()
			return shutdownWithTimeout(httpServer.Shutdown)
		})

	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Server.Transport)
	}

	return g.Wait()
}

// newMCPServer creates the MCP server with all tools registered.
func newMCPServer(sc *server.ServerContext) *mcpserver.MCPServer {
	mcpSrv := mcpserver.NewMCPServer("taskbridge", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
	tasks_tools.RegisterTasksTools(mcpSrv, sc)
	resources.RegisterSessionResources(mcpSrv, sc)
	return mcpSrv
}

func shutdownWithTimeout(shutdown func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()
	return shutdown(ctx)
}
