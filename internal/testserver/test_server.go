// Package testserver assembles the full burnup stack over an in-memory
// database for end-to-end tests.
package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/burnup/internal/domain/metrics"
	"github.com/rpggio/burnup/internal/domain/run"
	"github.com/rpggio/burnup/internal/domain/yield"
	"github.com/rpggio/burnup/internal/eranos"
	"github.com/rpggio/burnup/internal/mcp"
	"github.com/rpggio/burnup/internal/sqlite"
	"github.com/stretchr/testify/require"
)

// TestServer holds a wired stack: the local server speaks over in-memory
// transports, the HTTP server requires Token.
type TestServer struct {
	DB     *sqlite.DB
	Runs   *run.Service
	Local  *sdkmcp.Server
	Remote *httptest.Server
	Token  string
}

// New builds the stack with the fixture yield table.
func New(t *testing.T, token string) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	table, err := yield.LoadFile(Fixture("yields.csv"))
	require.NoError(t, err)
	coeffs, err := metrics.DefaultCoefficients()
	require.NoError(t, err)

	loader := eranos.NewLoader(table, nil, eranos.Options{})
	runs := run.NewService(sqlite.NewRunRepository(db), loader, metrics.NewEngine(coeffs, metrics.Options{}), nil)

	local := mcp.NewServer(mcp.Config{Runs: runs, TransportMode: "stdio"})
	remote := mcp.NewServer(mcp.Config{
		Runs:          runs,
		Auth:          mcp.StaticToken(token),
		AuthEnabled:   true,
		TransportMode: "http",
	})
	handler := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server { return remote }, nil)
	server := httptest.NewServer(handler)

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{DB: db, Runs: runs, Local: local, Remote: server, Token: token}
}

// Connect returns a client session over in-memory transports.
func (ts *TestServer) Connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	ct, st := sdkmcp.NewInMemoryTransports()

	ss, err := ts.Local.Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

// ConnectHTTP returns a client session over streamable HTTP sending token as
// a bearer credential.
func (ts *TestServer) ConnectHTTP(t *testing.T, token string) *sdkmcp.ClientSession {
	t.Helper()
	transport := &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Remote.URL,
		HTTPClient: &http.Client{Transport: bearer{token: token, next: http.DefaultTransport}},
	}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(context.Background(), transport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

type bearer struct {
	token string
	next  http.RoundTripper
}

func (b bearer) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	return b.next.RoundTrip(req)
}

// Fixture returns the path of a file in the repository testdata directory.
func Fixture(name string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "testdata", name)
}
