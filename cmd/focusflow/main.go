package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Dbangs20/focusFLow/internal/api"
	"github.com/Dbangs20/focusFLow/internal/clock"
	"github.com/Dbangs20/focusFLow/internal/config"
	"github.com/Dbangs20/focusFLow/internal/db"
	"github.com/Dbangs20/focusFLow/internal/focus"
	"github.com/Dbangs20/focusFLow/internal/logging"
	"github.com/Dbangs20/focusFLow/internal/notify"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "focusflow",
		Short:        "Group focus sessions with break accountability",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and overdue-break sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logging.Initialize(cfg.Debug)

			if err := db.Init(cfg.DataDir); err != nil {
				return fmt.Errorf("init database: %w", err)
			}
			defer db.Close()

			mailer := notify.NewEmailMailer(cfg.Email)
			svc := focus.NewService(clock.SystemClock{}, mailer, cfg.BaseURL)

			mux := http.NewServeMux()
			api.NewServer(svc, mailer, cfg.BaseURL).RegisterRoutes(mux)

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logging.Logger.Info("listening", "addr", cfg.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				err := svc.RunSweeper(ctx, cfg.SweepInterval)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			return g.Wait()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logging.Initialize(cfg.Debug)

			if err := db.Init(cfg.DataDir); err != nil {
				return fmt.Errorf("init database: %w", err)
			}
			defer db.Close()

			logging.Logger.Info("schema up to date", "data_dir", cfg.DataDir)
			return nil
		},
	}
}
