package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaminalder/tictactoe-history/internal/app"
	"github.com/jaminalder/tictactoe-history/internal/config"
	"github.com/jaminalder/tictactoe-history/internal/logging"
	"github.com/jaminalder/tictactoe-history/internal/web"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to YAML config; environment variables override it")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	logger, err := logging.New(conf.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, conf); err != nil {
		logger.Error("app run failed", zap.Error(err))
		os.Exit(1)
	}
}

// run serves until ctx ends, then shuts the HTTP server down.
func run(ctx context.Context, logger *zap.Logger, conf *config.Config) error {
	svc := app.NewService(logger, app.Options{
		SessionTTL:       conf.SessionTTL,
		SubscriberBuffer: conf.SubscriberBuffer,
	})
	go svc.Run(ctx, conf.SweepInterval)

	srv := &http.Server{
		Addr:    conf.HTTPAddr,
		Handler: web.NewServer(svc, logger, web.Options{HeartbeatInterval: conf.HeartbeatInterval}),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", zap.String("addr", conf.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
