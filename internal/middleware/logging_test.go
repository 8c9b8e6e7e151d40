package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/secretsanta/internal/apperr"
	"github.com/mmynk/secretsanta/internal/auth"
)

type chatEvent struct {
	userID  string
	command string
}

func (e *chatEvent) LogAttrs() []slog.Attr {
	return []slog.Attr{slog.String("user_id", e.userID), slog.String("command", e.command)}
}

type chatReply struct {
	outcome string
}

func (r *chatReply) LogOutcome() string { return r.outcome }

// captureLogs routes the default logger into a buffer for the duration of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		line := map[string]any{}
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			t.Fatalf("bad log line %q: %v", raw, err)
		}
		lines = append(lines, line)
	}
	return lines
}

func wantFields(t *testing.T, line map[string]any, want map[string]string) {
	t.Helper()
	for k, v := range want {
		if got, _ := line[k].(string); got != v {
			t.Errorf("%s = %q, want %q (line %v)", k, got, v, line)
		}
	}
}

func TestLoggingInterceptor(t *testing.T) {
	tests := []struct {
		name  string
		next  connect.UnaryFunc
		level string
		want  map[string]string
	}{
		{
			name: "command outcome from response",
			next: func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				return connect.NewResponse(&chatReply{outcome: "not_found"}), nil
			},
			level: "INFO",
			want:  map[string]string{"user_id": "u1", "command": "draw", "outcome": "not_found", "bridge": "telegram"},
		},
		{
			name: "response without outcome",
			next: func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				return connect.NewResponse(&struct{}{}), nil
			},
			level: "INFO",
			want:  map[string]string{"user_id": "u1", "outcome": "ok"},
		},
		{
			name: "domain error",
			next: func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				return nil, apperr.ToConnect(apperr.Validation("user_id is required"))
			},
			level: "WARN",
			want:  map[string]string{"command": "draw", "outcome": "validation"},
		},
		{
			name: "internal error",
			next: func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				return nil, apperr.ToConnect(apperr.Internal(errors.New("disk full"), "failed to save"))
			},
			level: "ERROR",
			want:  map[string]string{"outcome": "internal"},
		},
		{
			name: "transport error",
			next: func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				return nil, connect.NewError(connect.CodeUnavailable, errors.New("shutting down"))
			},
			level: "WARN",
			want:  map[string]string{"outcome": "unavailable"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			handler := LoggingInterceptor()(tt.next)

			ctx := WithBridge(context.Background(), "telegram")
			handler(ctx, connect.NewRequest(&chatEvent{userID: "u1", command: "draw"}))

			lines := logLines(t, buf)
			if len(lines) != 1 {
				t.Fatalf("got %d log lines, want 1: %s", len(lines), buf.String())
			}
			wantFields(t, lines[0], tt.want)
			wantFields(t, lines[0], map[string]string{"level": tt.level})
		})
	}
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.Generate("telegram")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantBridge string
		wantCode   connect.Code
	}{
		{"valid token", "Bearer " + token, "telegram", 0},
		{"missing token", "", "", connect.CodeUnauthenticated},
		{"malformed header", "Token " + token, "", connect.CodeUnauthenticated},
		{"forged token", "Bearer nope", "", connect.CodeUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)

			var bridge string
			called := false
			next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				called = true
				bridge = GetBridge(ctx)
				return connect.NewResponse(&chatReply{outcome: "ok"}), nil
			}

			req := connect.NewRequest(&chatEvent{userID: "u1", command: "help"})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}
			_, err := RequireAuth(jwtManager)(next)(context.Background(), req)

			if tt.wantCode == 0 {
				if err != nil || !called || bridge != tt.wantBridge {
					t.Fatalf("err = %v, called = %v, bridge = %q", err, called, bridge)
				}
				if buf.Len() != 0 {
					t.Errorf("accepted call was logged: %s", buf.String())
				}
				return
			}

			if connect.CodeOf(err) != tt.wantCode {
				t.Errorf("code = %v, want %v", connect.CodeOf(err), tt.wantCode)
			}
			if called {
				t.Error("rejected call reached the handler")
			}
			lines := logLines(t, buf)
			if len(lines) != 1 {
				t.Fatalf("got %d log lines, want 1: %s", len(lines), buf.String())
			}
			wantFields(t, lines[0], map[string]string{
				"level":   "WARN",
				"user_id": "u1",
				"command": "help",
				"outcome": "unauthenticated",
			})
		})
	}
}
