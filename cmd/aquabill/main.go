package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/gosuda/aquabill/internal/billing"
	"github.com/gosuda/aquabill/internal/config"
	"github.com/gosuda/aquabill/internal/store/postgres"
	redisstore "github.com/gosuda/aquabill/internal/store/redis"
)

func main() {
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "aquabill",
		Short:         "Water-meter billing for apartment tenants",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			setupLogging(cfg.Log)
			return nil
		},
	}

	conf := func() *config.Config { return cfg }

	root.AddCommand(
		serveCmd(conf),
		migrateCmd(conf),
		checkCmd(conf),
		exportCmd(conf),
		demoCmd(conf),
	)

	return root
}

func setupLogging(c config.LogConfig) {
	zerolog.SetGlobalLevel(c.Level)

	if c.Format == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*postgres.Store, error) {
	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return nil, fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	return postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
}

// openPubSub connects to Redis when it is configured. Both returns are nil
// when it is not.
func openPubSub(ctx context.Context, cfg *config.Config) (*redisstore.PubSub, error) {
	if !cfg.Redis.Enabled() {
		return nil, nil
	}
	return redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
}

func newService(cfg *config.Config, store *postgres.Store, pubsub *redisstore.PubSub) *billing.Service {
	var events billing.EventPublisher
	if pubsub != nil {
		events = pubsub
	}

	return billing.NewService(store, events, billing.Options{
		DueDays:         cfg.Billing.DueDays,
		DefaultRate:     decimal.NewNullDecimal(cfg.Billing.DefaultRate),
		DefaultCurrency: cfg.Billing.DefaultCurrency,
		CheckRegression: cfg.Billing.CheckRegression,
	})
}
