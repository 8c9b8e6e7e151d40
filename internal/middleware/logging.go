package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/secretsanta/internal/apperr"
)

// RequestLogger is implemented by request messages that describe themselves in the call log.
type RequestLogger interface {
	LogAttrs() []slog.Attr
}

// OutcomeLogger is implemented by response messages that carry the outcome of the handled command.
type OutcomeLogger interface {
	LogOutcome() string
}

// LoggingInterceptor returns a Connect interceptor that logs one line per chat event.
// Commands that fail inside the dispatcher still answer the chat, so the outcome
// comes from the response when the call itself succeeded.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := callAttrs(ctx, req)
			attrs = append(attrs,
				slog.String("outcome", outcome(resp, err)),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			)

			level, msg := slog.LevelInfo, "Chat event handled"
			switch {
			case err == nil:
			case apperr.Is(err, apperr.KindInternal) && !isConnectOnly(err):
				level, msg = slog.LevelError, "Chat event failed"
				attrs = append(attrs, slog.Any("error", err))
			default:
				level, msg = slog.LevelWarn, "Chat event rejected"
				attrs = append(attrs, slog.Any("error", err))
			}
			slog.LogAttrs(ctx, level, msg, attrs...)

			return resp, err
		}
	}
}

// callAttrs returns the procedure, the bridge and whatever the request message adds.
func callAttrs(ctx context.Context, req connect.AnyRequest) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("procedure", req.Spec().Procedure),
		slog.String("bridge", GetBridge(ctx)),
	}
	if l, ok := req.Any().(RequestLogger); ok {
		attrs = append(attrs, l.LogAttrs()...)
	}
	return attrs
}

// outcome is "ok", the lowercased apperr kind, or the Connect code for errors
// raised outside the domain.
func outcome(resp connect.AnyResponse, err error) string {
	if err != nil {
		if isConnectOnly(err) {
			return connect.CodeOf(err).String()
		}
		return strings.ToLower(string(apperr.KindOf(err)))
	}
	if resp != nil {
		if l, ok := resp.Any().(OutcomeLogger); ok && l.LogOutcome() != "" {
			return l.LogOutcome()
		}
	}
	return "ok"
}

// isConnectOnly reports whether err carries no apperr, such as an auth rejection.
func isConnectOnly(err error) bool {
	var appErr *apperr.Error
	return !errors.As(err, &appErr)
}
