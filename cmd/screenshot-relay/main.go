package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"screenshot-relay/internal/app"
	"screenshot-relay/internal/render"
	"screenshot-relay/internal/storage"
	u "screenshot-relay/internal/utils"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg := u.LoadConfig()
	u.InitLogger(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
	)
	u.SetLogLevel(cfg.Logger.Level)

	renderer, err := render.New(cfg)
	if err != nil {
		u.Error("Failed to create renderer", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := storage.New(ctx, cfg)
	cancel()
	if err != nil {
		u.Error("Failed to create object store", "error", err)
		os.Exit(1)
	}

	u.Info("Starting screenshot relay",
		"addr", cfg.Server.Host+cfg.Server.Port,
		"render_backend", cfg.Render.Backend,
		"storage_driver", cfg.Storage.Driver,
		"bucket", cfg.Storage.Bucket,
	)

	server := app.SetupApp(cfg, app.Deps{Renderer: renderer, Store: store})

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)

	idleConnsClosed := make(chan struct{})
	startServer(server, cfg.Server.Host+cfg.Server.Port, sigint, idleConnsClosed)
	<-idleConnsClosed
}

// startServer starts the Fiber app and blocks until stop fires, then shuts
// the server down gracefully.
func startServer(server *fiber.App, addr string, stop <-chan os.Signal, idleConnsClosed chan struct{}) {
	go func() {
		if err := server.Listen(addr); err != nil {
			u.Error("Server error", "error", err)
		}
	}()

	<-stop

	u.Warn("Shutdown signal received, closing server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.ShutdownWithContext(ctx); err != nil {
		u.Error("Server forced to shutdown", "error", err)
	}

	close(idleConnsClosed)
	u.Info("Server stopped cleanly")
}
