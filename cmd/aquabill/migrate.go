package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gosuda/aquabill/internal/config"
)

func migrateCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd.Context(), conf())
			if err != nil {
				return err
			}
			defer store.Close()

			v, err := store.Migrate(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v.Version)
			return nil
		},
	}
}
