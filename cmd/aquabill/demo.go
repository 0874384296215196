package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/gosuda/aquabill/internal/billing"
	"github.com/gosuda/aquabill/internal/config"
	"github.com/gosuda/aquabill/internal/domain"
)

// demoBilling is the slice of billing.Service the demo scenario drives.
type demoBilling interface {
	AddTenant(ctx context.Context, in billing.NewTenant) (*domain.Tenant, error)
	AddWaterReading(ctx context.Context, in billing.NewReading) (*domain.WaterReading, error)
	CalculateBill(ctx context.Context, tenantID string, period *billing.Period) (*billing.BillCalculation, bool, error)
	GenerateBill(ctx context.Context, tenantID string, period *billing.Period, dueDays int) (*domain.Bill, error)
	TenantSummaries(ctx context.Context) ([]*billing.TenantSummary, error)
}

type demoTenant struct {
	id, name, apartment, phone, email string
	previous, current                 int64
}

var demoTenants = []demoTenant{
	{"T001", "John Doe", "A101", "555-1234", "john.doe@email.com", 1000, 1150},
	{"T002", "Jane Smith", "B205", "555-5678", "jane.smith@email.com", 2000, 2080},
	{"T003", "Bob Johnson", "C303", "555-9012", "bob.johnson@email.com", 1500, 1650},
}

func demoCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Load sample tenants and readings, then generate their bills",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := conf()

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if _, err = store.Migrate(cmd.Context()); err != nil {
				return err
			}

			pubsub, err := openPubSub(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if pubsub != nil {
				defer pubsub.Close()
			}

			return runDemo(cmd.Context(), newService(cfg, store, pubsub), cmd.OutOrStdout(), time.Now())
		},
	}
}

func runDemo(ctx context.Context, svc demoBilling, out io.Writer, now time.Time) error {
	fmt.Fprintln(out, "1. Adding sample tenants")
	for _, dt := range demoTenants {
		phone, email := dt.phone, dt.email
		_, err := svc.AddTenant(ctx, billing.NewTenant{
			TenantID:        dt.id,
			Name:            dt.name,
			ApartmentNumber: dt.apartment,
			Phone:           &phone,
			Email:           &email,
		})
		switch {
		case errors.Is(err, domain.ErrDuplicateKey):
			fmt.Fprintf(out, "   %s already exists, skipped\n", dt.id)
		case err != nil:
			return err
		default:
			fmt.Fprintf(out, "   added %s (%s)\n", dt.name, dt.id)
		}
	}

	fmt.Fprintln(out, "2. Adding water readings")
	previous := now.AddDate(0, 0, -30)
	for _, dt := range demoTenants {
		if err := addDemoReading(ctx, svc, dt.id, dt.previous, previous, "Initial reading"); err != nil {
			return err
		}
		if err := addDemoReading(ctx, svc, dt.id, dt.current, now, "Monthly reading"); err != nil {
			return err
		}
		fmt.Fprintf(out, "   %s: %d -> %d\n", dt.id, dt.previous, dt.current)
	}

	fmt.Fprintln(out, "3. Calculating bills")
	for _, dt := range demoTenants {
		calc, ok, err := svc.CalculateBill(ctx, dt.id, nil)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(out, "   %s: not enough readings\n", dt.id)
			continue
		}
		fmt.Fprintf(out, "   %s: %s to %s, %s units, %s %s\n",
			calc.TenantName,
			calc.PeriodStart.Format(time.DateOnly),
			calc.PeriodEnd.Format(time.DateOnly),
			calc.UnitsConsumed.String(),
			calc.TotalAmount.StringFixed(domain.MonetaryPlaces),
			calc.Currency,
		)
	}

	fmt.Fprintln(out, "4. Generating bills")
	for _, dt := range demoTenants {
		bill, err := svc.GenerateBill(ctx, dt.id, nil, 0)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "   bill #%d for %s due %s\n", bill.ID, dt.name, bill.DueDate.Format(time.DateOnly))
	}

	summaries, err := svc.TenantSummaries(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "5. Tenant summaries")
	for _, s := range summaries {
		fmt.Fprintf(out, "   %-6s %-12s readings=%d bills=%d outstanding=%s\n",
			s.ApartmentNumber, s.TenantID, s.TotalReadings, s.TotalBills,
			s.OutstandingAmount.StringFixed(domain.MonetaryPlaces))
	}

	return nil
}

func addDemoReading(ctx context.Context, svc demoBilling, tenantID string, units int64, at time.Time, notes string) error {
	_, err := svc.AddWaterReading(ctx, billing.NewReading{
		TenantID:    tenantID,
		Units:       decimal.NewFromInt(units),
		ReadingDate: at,
		Notes:       notes,
		CreatedBy:   "demo",
	})
	return err
}
