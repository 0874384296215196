package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gosuda/aquabill/internal/config"
)

func checkCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Test database connectivity and report the schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := conf()
			out := cmd.OutOrStdout()

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err = store.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(out, "database: ok (%s:%d/%s)\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

			v, err := store.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			switch {
			case v.Dirty:
				return fmt.Errorf("schema version %d is dirty, fix it manually before migrating", v.Version)
			case v.Version == 0:
				fmt.Fprintln(out, "schema: not initialized, run `aquabill migrate`")
			default:
				fmt.Fprintf(out, "schema: version %d\n", v.Version)
			}

			pubsub, err := openPubSub(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if pubsub == nil {
				fmt.Fprintln(out, "redis: disabled")
				return nil
			}
			defer pubsub.Close()

			fmt.Fprintf(out, "redis: ok (%s)\n", cfg.Redis.Addr)
			return nil
		},
	}
}
