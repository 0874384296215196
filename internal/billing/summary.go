package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gosuda/aquabill/internal/domain"
)

// TenantSummary aggregates a tenant's reading and billing history.
type TenantSummary struct {
	TenantID          string          `json:"tenant_id"`
	Name              string          `json:"name"`
	ApartmentNumber   string          `json:"apartment_number"`
	TotalReadings     int             `json:"total_readings"`
	TotalBills        int             `json:"total_bills"`
	PaidBills         int             `json:"paid_bills"`
	OutstandingBills  int             `json:"outstanding_bills"`
	LastReadingDate   *time.Time      `json:"last_reading_date,omitempty"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}

// TenantSummary returns the summary of one active tenant.
func (s *Service) TenantSummary(ctx context.Context, tenantID string) (*TenantSummary, error) {
	t, err := s.store.Tenants().GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("billing.TenantSummary: %w", err)
	}

	sum, _, _, err := s.summarize(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("billing.TenantSummary: %w", err)
	}
	return sum, nil
}

// TenantSummaries returns a summary per active tenant, by apartment number.
func (s *Service) TenantSummaries(ctx context.Context) ([]*TenantSummary, error) {
	tenants, err := s.store.Tenants().List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("billing.TenantSummaries: %w", err)
	}

	out := make([]*TenantSummary, 0, len(tenants))
	for _, t := range tenants {
		sum, _, _, err := s.summarize(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("billing.TenantSummaries: %w", err)
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *Service) summarize(ctx context.Context, t *domain.Tenant) (*TenantSummary, []*domain.WaterReading, []*domain.Bill, error) {
	readings, err := s.store.Readings().ListByTenant(ctx, t.TenantID, 0)
	if err != nil {
		return nil, nil, nil, err
	}
	bills, err := s.store.Bills().ListByTenant(ctx, t.TenantID)
	if err != nil {
		return nil, nil, nil, err
	}

	sum := &TenantSummary{
		TenantID:          t.TenantID,
		Name:              t.Name,
		ApartmentNumber:   t.ApartmentNumber,
		TotalReadings:     len(readings),
		TotalBills:        len(bills),
		TotalPaid:         decimal.Zero,
		OutstandingAmount: decimal.Zero,
	}
	if len(readings) > 0 {
		last := readings[0].ReadingDate
		sum.LastReadingDate = &last
	}
	for _, b := range bills {
		if b.Outstanding() {
			sum.OutstandingBills++
			sum.OutstandingAmount = sum.OutstandingAmount.Add(b.TotalAmount)
			continue
		}
		sum.PaidBills++
		sum.TotalPaid = sum.TotalPaid.Add(b.TotalAmount)
	}

	return sum, readings, bills, nil
}

// Statement bundles everything known about a tenant for export.
type Statement struct {
	Tenant      *domain.Tenant         `json:"tenant"`
	Summary     *TenantSummary         `json:"summary"`
	Readings    []*domain.WaterReading `json:"readings"`
	Bills       []*domain.Bill         `json:"bills"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// Statement collects a tenant's readings, bills and summary.
func (s *Service) Statement(ctx context.Context, tenantID string) (*Statement, error) {
	t, err := s.store.Tenants().GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("billing.Statement: %w", err)
	}

	sum, readings, bills, err := s.summarize(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("billing.Statement: %w", err)
	}

	return &Statement{
		Tenant:      t,
		Summary:     sum,
		Readings:    readings,
		Bills:       bills,
		GeneratedAt: s.now(),
	}, nil
}
