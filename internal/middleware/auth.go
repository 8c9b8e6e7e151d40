package middleware

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/secretsanta/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// BridgeKey is the context key for the authenticated bridge name.
const BridgeKey contextKey = "bridge"

// GetBridge extracts the bridge name from the context.
// Returns empty string if not found.
func GetBridge(ctx context.Context) string {
	bridge, _ := ctx.Value(BridgeKey).(string)
	return bridge
}

// WithBridge returns ctx carrying the bridge name.
func WithBridge(ctx context.Context, bridge string) context.Context {
	return context.WithValue(ctx, BridgeKey, bridge)
}

// bearerToken returns the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

// RequireAuth returns a middleware that validates the bridge's JWT and stores
// its subject in the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			tokenString, err := bearerToken(req.Header().Get("Authorization"))
			if err != nil {
				return nil, reject(ctx, req, err)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, reject(ctx, req, err)
			}

			return next(WithBridge(ctx, claims.Subject), req)
		}
	}
}

// reject logs a refused call. The logging interceptor runs after auth and never sees it.
func reject(ctx context.Context, req connect.AnyRequest, err error) error {
	attrs := append(callAttrs(ctx, req),
		slog.String("outcome", connect.CodeUnauthenticated.String()),
		slog.Any("error", err),
	)
	slog.LogAttrs(ctx, slog.LevelWarn, "Chat event rejected", attrs...)
	return connect.NewError(connect.CodeUnauthenticated, err)
}
