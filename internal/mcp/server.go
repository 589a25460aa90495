package mcp

import (
	"context"
	"log/slog"

	"github.com/rpggio/burnup/internal/domain/metrics"
	"github.com/rpggio/burnup/internal/domain/run"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to clients during initialization.
const Version = "0.1.0"

// RunService defines run operations needed by MCP.
type RunService interface {
	Ingest(ctx context.Context, req run.IngestRequest) (*run.Run, error)
	List(ctx context.Context) ([]run.RunSummary, error)
	Get(ctx context.Context, id string) (*run.Run, error)
	Cycles(ctx context.Context, id string) ([]run.CycleSummary, error)
	Material(ctx context.Context, id string, ref run.MaterialRef) (*run.Composition, error)
	Metrics(ctx context.Context, id string, ref run.MaterialRef) (*metrics.Summary, error)
	Balance(ctx context.Context, id string, n int) (*run.Balance, error)
	Delete(ctx context.Context, id string) error
}

// Config contains server configuration.
type Config struct {
	Runs          RunService
	Auth          Authenticator
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "burnup",
		Version: Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is local only; HTTP authenticates when configured.
	switch {
	case cfg.TransportMode == "stdio":
		server.AddReceivingMiddleware(noAuthMiddleware("local"))
	case cfg.AuthEnabled:
		server.AddReceivingMiddleware(authMiddleware(cfg.Auth))
	default:
		server.AddReceivingMiddleware(noAuthMiddleware("anonymous"))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Runs)

	return server
}
