package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iamdashante1/mb/internal/auth"
	"github.com/iamdashante1/mb/internal/config"
	"github.com/iamdashante1/mb/internal/gallery"
	"github.com/iamdashante1/mb/internal/handlers"
	"github.com/iamdashante1/mb/internal/intake"
	"github.com/iamdashante1/mb/internal/metrics"
	"github.com/iamdashante1/mb/internal/notify"
	"github.com/iamdashante1/mb/internal/store"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if addr != "" {
				cfg.Addr = addr
			}

			return runServer(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides ADDR)")

	return cmd
}

func recipients(cfg *config.Config) []string {
	baseline := cfg.NotifyBaseline
	if baseline == "" {
		baseline = notify.BaselineRecipient
	}

	return notify.Recipients(baseline, cfg.NotifyEmails)
}

func newDispatcher(cfg *config.Config, logger *zap.Logger) *notify.Dispatcher {
	return notify.NewDispatcher(
		notify.NewSMTPSender(cfg.Mail),
		recipients(cfg),
		logger,
		notify.WithObserver(metrics.Notification),
	)
}

func runServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// connected on first request and shared by every handler afterwards
	st := store.NewLazy(func(ctx context.Context) (store.Store, error) {
		s, err := store.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}

		if err := s.Migrate(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}

		logger.Info("database ready", zap.String("driver", cfg.DBDriver))

		return s, nil
	})

	if !cfg.Mail.Complete() {
		logger.Warn("mail transport is not configured, notifications will fail")
	}

	dispatcher := newDispatcher(cfg, logger)
	svc := intake.NewService(st, dispatcher, logger)

	g, err := gallery.New(cfg.GalleryDir, "/assets")
	if err != nil {
		return err
	}

	auth.Setup(cfg)

	if cfg.SessionSecret == "" && len(cfg.AdminEmails) > 0 {
		logger.Warn("SESSION_SECRET is empty, admin sessions are not secure")
	}

	r := handlers.NewRouter(handlers.RouterConfig{
		Submissions: handlers.NewSubmissions(svc, cfg.MaxBodySize, logger),
		Gallery:     g,
		Admins:      auth.NewAdmins(cfg.AdminEmails, cfg.AdminRedirect, logger),
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("starting API server", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}

	dispatcher.Wait()

	return st.Close(shutdownCtx)
}
