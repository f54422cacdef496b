package main

import (
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/splityuk/splityuk/internal/auth"
	"github.com/splityuk/splityuk/internal/config"
	"github.com/splityuk/splityuk/internal/http"
	"github.com/splityuk/splityuk/internal/service"
	"github.com/splityuk/splityuk/internal/storage/sqlite"
	"github.com/splityuk/splityuk/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DB.Path)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	logger := slog.Default()

	router := http.New(
		jwtManager,
		http.NewAuthHandler(service.NewAuthService(authenticator, jwtManager, store, logger)),
		http.NewBillHandler(service.NewBillService(store, logger), cfg.App.BaseURL),
		http.NewGroupHandler(service.NewGroupService(store, logger)),
	)

	// h2c lets clients speak HTTP/2 without TLS, e.g. behind a proxy
	// that terminates it.
	handler := h2c.NewHandler(router, &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("Server starting", "app", cfg.App.Name, "address", addr, "base_url", cfg.App.BaseURL)
	if err := stdhttp.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
