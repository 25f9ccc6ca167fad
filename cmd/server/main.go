package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"movie-rag/internal/adapter/raghttp"
	"movie-rag/internal/di"
	"movie-rag/internal/infra/config"
	"movie-rag/internal/infra/logger"
	"movie-rag/internal/infra/otelinit"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	shutdownOTel, err := otelinit.InitProvider(context.Background(), otelinit.ConfigFromEnv())
	if err != nil {
		slog.Error("failed to init otel", "error", err)
		os.Exit(1)
	}

	log := logger.NewWithOTel(cfg.OTelEnabled)
	slog.SetDefault(log)

	components, err := di.NewComponents(context.Background(), cfg, log, false)
	if err != nil {
		log.Error("failed to wire components", "error", err)
		os.Exit(1)
	}
	defer components.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	handler := raghttp.NewHandler(components.Pipeline)
	e.POST("/v1/movies/query", handler.AnswerQuery)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/readyz", func(c echo.Context) error {
		if err := components.Pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db down", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("starting server", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("failed to shut down server", "error", err)
	}
	if err := shutdownOTel(ctx); err != nil {
		log.Error("failed to shut down otel", "error", err)
	}
}
