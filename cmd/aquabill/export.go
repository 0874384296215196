package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gosuda/aquabill/internal/config"
	"github.com/gosuda/aquabill/internal/report"
)

func exportCmd(conf func() *config.Config) *cobra.Command {
	var (
		tenantID string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a tenant statement workbook (xlsx)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if tenantID == "" {
				return errors.New("--tenant is required")
			}

			cfg := conf()
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := newService(cfg, store, nil).Statement(cmd.Context(), tenantID)
			if err != nil {
				return err
			}

			data, err := report.StatementXLSX(st)
			if err != nil {
				return err
			}

			if out == "" {
				out = report.StatementFilename(st)
			}
			if err = os.WriteFile(out, data, 0o600); err != nil {
				return fmt.Errorf("export: write %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d readings, %d bills)\n", out, len(st.Readings), len(st.Bills))
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id to export")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default statement-<tenant>-<date>.xlsx)")

	return cmd
}
