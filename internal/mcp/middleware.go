package mcp

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const principalKey contextKey = iota

// getPrincipal extracts the authenticated caller from context.
func getPrincipal(ctx context.Context) string {
	v, _ := ctx.Value(principalKey).(string)
	return v
}

// Authenticator resolves the caller behind a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// StaticToken accepts a single shared token.
type StaticToken string

// Authenticate implements Authenticator.
func (s StaticToken) Authenticate(_ context.Context, token string) (string, error) {
	if s == "" || subtle.ConstantTimeCompare([]byte(s), []byte(token)) != 1 {
		return "", fmt.Errorf("invalid token")
	}
	return "token", nil
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(auth Authenticator) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}

			header := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}

			principal, err := auth.Authenticate(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}

			ctx = context.WithValue(ctx, principalKey, principal)
			return next(ctx, method, req)
		}
	}
}

// noAuthMiddleware tags requests with a fixed principal when auth is disabled.
func noAuthMiddleware(principal string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			ctx = context.WithValue(ctx, principalKey, principal)
			return next(ctx, method, req)
		}
	}
}
