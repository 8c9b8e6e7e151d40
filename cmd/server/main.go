package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/secretsanta/internal/auth"
	"github.com/mmynk/secretsanta/internal/command"
	"github.com/mmynk/secretsanta/internal/config"
	"github.com/mmynk/secretsanta/internal/flow"
	"github.com/mmynk/secretsanta/internal/metrics"
	"github.com/mmynk/secretsanta/internal/middleware"
	"github.com/mmynk/secretsanta/internal/notify"
	"github.com/mmynk/secretsanta/internal/reminder"
	"github.com/mmynk/secretsanta/internal/render"
	"github.com/mmynk/secretsanta/internal/server"
	"github.com/mmynk/secretsanta/internal/service"
	"github.com/mmynk/secretsanta/internal/storage/sqlite"
	"github.com/mmynk/secretsanta/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	renderer, err := render.New(cfg.Language())
	if err != nil {
		return fmt.Errorf("failed to build text catalog: %w", err)
	}

	m := metrics.New()
	gateway := newGateway(cfg, m)

	svc := service.New(service.Deps{
		Store:           store,
		Gateway:         gateway,
		Renderer:        renderer,
		DefaultLanguage: cfg.Language(),
		DrawMaxAttempts: cfg.DrawMaxAttempts,
		DrawObserver:    m,
	})
	flows := flow.NewManager(svc, flow.NewSessionStore(), m, nil)
	dispatcher := command.NewDispatcher(svc, flows, m)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	mux := http.NewServeMux()

	// Auth runs first so the logging interceptor sees the bridge name.
	botPath, botHandler := server.NewBotServiceHandler(
		server.NewBotService(dispatcher),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor()),
	)
	mux.Handle(botPath, botHandler)
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           loggingMiddleware(h2c.NewHandler(mux, &http2.Server{})),
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheduler := reminder.NewScheduler(store, gateway, renderer, cfg.Location(), cfg.ReminderInterval,
		reminder.WithObserver(m))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting", "address", cfg.Addr, "procedure", server.BotServiceHandleProcedure)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newGateway picks the webhook gateway when a URL is configured and the log gateway otherwise.
func newGateway(cfg *config.Config, m *metrics.Metrics) notify.Gateway {
	var gateway notify.Gateway
	if cfg.NotifyWebhookURL != "" {
		gateway = notify.NewWebhookGateway(cfg.NotifyWebhookURL, &http.Client{})
		slog.Info("Notifications go to webhook", "url", cfg.NotifyWebhookURL)
	} else {
		gateway = notify.NewLogGateway(slog.Default())
		slog.Warn("SANTA_NOTIFY_WEBHOOK_URL not set, notifications are only logged")
	}
	return notify.WithObserver(notify.WithTimeout(gateway, cfg.NotifyTimeout), m)
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
