// Command token mints a bearer token for a chat bridge.
//
// Usage:
//
//	SANTA_JWT_SECRET=... token -bridge telegram
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mmynk/secretsanta/internal/auth"
	"github.com/mmynk/secretsanta/internal/config"
	"github.com/mmynk/secretsanta/pkg/logging"
)

func main() {
	bridge := flag.String("bridge", "", "name of the bridge the token is issued to")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if *bridge == "" {
		slog.Error("-bridge is required")
		os.Exit(2)
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL).Generate(*bridge)
	if err != nil {
		slog.Error("Failed to generate token", "error", err)
		os.Exit(1)
	}

	slog.Info("Token issued", "bridge", *bridge, "ttl", cfg.TokenTTL)
	fmt.Println(token)
}
