package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"salaryviz/internal/api"
	"salaryviz/internal/config"
	"salaryviz/internal/engine"
	"salaryviz/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Echo starts instantly; event endpoints answer 503 until the
	// dataset is in.
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = api.JSONSerializer{}
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				logger.Warn("request", append(attrs, "err", v.Error)...)
				return nil
			}
			logger.Debug("request", attrs...)
			return nil
		},
	}))

	frames := api.NewFrameStore()
	h := api.NewHandler(frames)
	h.RegisterRoutes(e)

	g, gctx := errgroup.WithContext(ctx)

	// 2. Load the dataset in the background.
	g.Go(func() error {
		t0 := time.Now()
		scatter, err := cfg.Scatter()
		if err != nil {
			return err
		}
		ds, err := engine.Load(cfg.DataPath)
		if err != nil {
			return err
		}
		coord := view.NewCoordinator(ds, frames, cfg.Coordinator(logger),
			view.NewOverview(cfg.Aggregate()),
			scatter,
			view.NewParallel(),
		)
		if err := coord.Render(); err != nil {
			// A failing view still leaves the others usable.
			logger.Error("initial render", "err", err)
		}
		h.SetCoordinator(coord)
		logger.Info("dashboard ready", "views", coord.Views(), "took", time.Since(t0))
		return nil
	})

	// 3. Serve.
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Addr)
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 4. Shut down on signal or on the first failure.
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
