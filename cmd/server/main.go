package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"stocks/internal/app"
	"stocks/internal/config"
	"stocks/internal/server"
)

func main() {
	// Config
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	logger := app.NewLogger(os.Stderr, err == nil && cfg.Debug)
	if err != nil {
		logger.Error("config", "err", err)
		os.Exit(1)
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithTimeout(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second),
	}
	if cfg.Logo.DownloadImages {
		opts = append(opts, server.WithLogoFetcher(a.Logos))
	}
	srv := server.New(a.Directory, a.Provider, opts...).HTTPServer(":" + cfg.Server.Port)

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "provider", a.Provider.Name(), "companies", a.Directory.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", "err", err)
			stop()
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", "err", err)
	}
}
