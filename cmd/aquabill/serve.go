package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/aquabill/internal/config"
	"github.com/gosuda/aquabill/internal/server"
)

func serveCmd(conf func() *config.Config) *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and event streams",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := conf()

			// Graceful shutdown on SIGINT / SIGTERM.
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if !skipMigrate {
				v, err := store.Migrate(ctx)
				if err != nil {
					return err
				}
				log.Info().Uint("version", v.Version).Msg("schema ready")
			}

			pubsub, err := openPubSub(ctx, cfg)
			if err != nil {
				return err
			}
			if pubsub != nil {
				defer pubsub.Close()
			}

			svc := newService(cfg, store, pubsub)
			srv := server.New(ctx, cfg, svc, store, pubsub)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(ctx)
			}()

			select {
			case <-ctx.Done():
			case err = <-errCh:
				if err != nil {
					return err
				}
			}
			log.Info().Msg("shutting down")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()

			if err = srv.Shutdown(shutdownCtx); err != nil {
				return err
			}

			log.Info().Msg("stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply pending migrations on startup")

	return cmd
}
