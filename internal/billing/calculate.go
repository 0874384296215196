package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gosuda/aquabill/internal/domain"
)

// Period bounds a billing calculation by reading date, inclusive on both ends.
type Period struct {
	Start time.Time
	End   time.Time
}

// BillCalculation is the projection of a bill before it is persisted.
type BillCalculation struct {
	TenantID        string          `json:"tenant_id"`
	TenantName      string          `json:"tenant_name"`
	ApartmentNumber string          `json:"apartment_number"`
	PeriodStart     time.Time       `json:"period_start"`
	PeriodEnd       time.Time       `json:"period_end"`
	StartReading    decimal.Decimal `json:"start_reading"`
	EndReading      decimal.Decimal `json:"end_reading"`
	UnitsConsumed   decimal.Decimal `json:"units_consumed"`
	RatePerUnit     decimal.Decimal `json:"rate_per_unit"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Currency        string          `json:"currency"`
	StartReadingID  int64           `json:"start_reading_id"`
	EndReadingID    int64           `json:"end_reading_id"`
}

var errTooFewReadings = errors.New("fewer than two readings")

// calculate resolves the reading pair and prices it. Unknown tenants surface
// as domain.ErrNotFound and missing readings as errTooFewReadings.
func (s *Service) calculate(ctx context.Context, tenantID string, period *Period) (*BillCalculation, error) {
	t, err := s.store.Tenants().GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	start, end, err := s.readingPair(ctx, tenantID, period)
	if err != nil {
		return nil, err
	}

	rate, currency, err := s.rate(ctx)
	if err != nil {
		return nil, err
	}

	units, total := domain.Charge(start, end, rate)
	return &BillCalculation{
		TenantID:        t.TenantID,
		TenantName:      t.Name,
		ApartmentNumber: t.ApartmentNumber,
		PeriodStart:     domain.DateOf(start.ReadingDate),
		PeriodEnd:       domain.DateOf(end.ReadingDate),
		StartReading:    start.ReadingUnits,
		EndReading:      end.ReadingUnits,
		UnitsConsumed:   units,
		RatePerUnit:     rate,
		TotalAmount:     total,
		Currency:        currency,
		StartReadingID:  start.ID,
		EndReadingID:    end.ID,
	}, nil
}

// readingPair returns the chronologically first and last readings to bill.
func (s *Service) readingPair(ctx context.Context, tenantID string, period *Period) (start, end *domain.WaterReading, err error) {
	if period != nil {
		readings, err := s.store.Readings().ListRange(ctx, tenantID, period.Start, period.End)
		if err != nil {
			return nil, nil, err
		}
		if len(readings) < 2 {
			return nil, nil, errTooFewReadings
		}
		return readings[0], readings[len(readings)-1], nil
	}

	readings, err := s.store.Readings().ListByTenant(ctx, tenantID, 2)
	if err != nil {
		return nil, nil, err
	}
	if len(readings) < 2 {
		return nil, nil, errTooFewReadings
	}
	// newest first
	return readings[1], readings[0], nil
}

// CalculateBill prices consumption without persisting anything. ok is false
// when the tenant is unknown or fewer than two readings qualify. Zero and
// negative consumption are returned as computed.
func (s *Service) CalculateBill(ctx context.Context, tenantID string, period *Period) (*BillCalculation, bool, error) {
	calc, err := s.calculate(ctx, tenantID, period)
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, errTooFewReadings):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("billing.CalculateBill: %w", err)
	}
	return calc, true, nil
}

// GenerateBill calculates and persists a bill due dueDays from today.
// dueDays == 0 uses the configured default.
func (s *Service) GenerateBill(ctx context.Context, tenantID string, period *Period, dueDays int) (*domain.Bill, error) {
	if dueDays < 0 {
		return nil, fmt.Errorf("billing.GenerateBill: due days %d: %w", dueDays, domain.ErrValidation)
	}
	if dueDays == 0 {
		dueDays = s.opts.DueDays
	}

	calc, err := s.calculate(ctx, tenantID, period)
	switch {
	case errors.Is(err, errTooFewReadings):
		return nil, fmt.Errorf("billing.GenerateBill: tenant %q: %w: %w", tenantID, domain.ErrInvalidState, err)
	case err != nil:
		return nil, fmt.Errorf("billing.GenerateBill: %w", err)
	}

	if !calc.UnitsConsumed.IsPositive() {
		return nil, fmt.Errorf("billing.GenerateBill: consumption %s is not billable: %w", calc.UnitsConsumed, domain.ErrInvalidState)
	}
	if err = domain.ValidateAmount(calc.TotalAmount); err != nil {
		return nil, fmt.Errorf("billing.GenerateBill: %w", err)
	}

	b := &domain.Bill{
		TenantID:       calc.TenantID,
		PeriodStart:    calc.PeriodStart,
		PeriodEnd:      calc.PeriodEnd,
		StartReadingID: calc.StartReadingID,
		EndReadingID:   calc.EndReadingID,
		UnitsConsumed:  calc.UnitsConsumed,
		RatePerUnit:    calc.RatePerUnit,
		TotalAmount:    calc.TotalAmount,
		Currency:       calc.Currency,
		Status:         domain.BillStatusGenerated,
		DueDate:        domain.DateOf(s.now()).AddDate(0, 0, dueDays),
	}
	if err = s.store.Bills().Create(ctx, b); err != nil {
		return nil, fmt.Errorf("billing.GenerateBill: %w", err)
	}

	log.Info().
		Str("tenant_id", b.TenantID).
		Int64("bill_id", b.ID).
		Str("units", b.UnitsConsumed.String()).
		Str("total", b.TotalAmount.StringFixed(domain.MonetaryPlaces)).
		Msg("bill generated")
	s.emit(ctx, Event{Type: EventBillGenerated, TenantID: b.TenantID, BillID: b.ID, Data: b})

	return b, nil
}

// MarkBillPaid records payment. A nil paidAt means now. Paying an already
// paid bill keeps the status and overwrites the paid date.
func (s *Service) MarkBillPaid(ctx context.Context, billID int64, paidAt *time.Time) (*domain.Bill, error) {
	b, err := s.store.Bills().GetByID(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("billing.MarkBillPaid: %w", err)
	}
	if b.Status != domain.BillStatusPaid && !b.Status.ValidTransition(domain.BillStatusPaid) {
		return nil, fmt.Errorf("billing.MarkBillPaid: bill %d in status %q: %w", billID, b.Status, domain.ErrInvalidState)
	}

	at := s.now()
	if paidAt != nil {
		at = *paidAt
	}
	if err = s.store.Bills().MarkPaid(ctx, billID, at); err != nil {
		return nil, fmt.Errorf("billing.MarkBillPaid: %w", err)
	}

	b.Status = domain.BillStatusPaid
	b.PaidAt = &at

	log.Info().Str("tenant_id", b.TenantID).Int64("bill_id", b.ID).Msg("bill paid")
	s.emit(ctx, Event{Type: EventBillPaid, TenantID: b.TenantID, BillID: b.ID})

	return b, nil
}

// ListBills returns a tenant's bills newest first.
func (s *Service) ListBills(ctx context.Context, tenantID string) ([]*domain.Bill, error) {
	bills, err := s.store.Bills().ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("billing.ListBills: %w", err)
	}
	return bills, nil
}

// OutstandingBills returns unpaid bills. With an empty tenantID it covers
// every tenant ordered by due date; otherwise it keeps the tenant's bill order.
func (s *Service) OutstandingBills(ctx context.Context, tenantID string) ([]*domain.Bill, error) {
	if tenantID == "" {
		bills, err := s.store.Bills().ListOutstanding(ctx)
		if err != nil {
			return nil, fmt.Errorf("billing.OutstandingBills: %w", err)
		}
		return bills, nil
	}

	bills, err := s.store.Bills().ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("billing.OutstandingBills: %w", err)
	}
	out := make([]*domain.Bill, 0, len(bills))
	for _, b := range bills {
		if b.Outstanding() {
			out = append(out, b)
		}
	}
	return out, nil
}
