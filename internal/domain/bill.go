package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type BillStatus string

const (
	BillStatusGenerated BillStatus = "generated"
	BillStatusPaid      BillStatus = "paid"
)

// MonetaryPlaces is the number of decimal places kept on bill totals.
const MonetaryPlaces = 2

// ValidTransition checks if a bill state transition is allowed.
// The only transition is generated->paid.
func (s BillStatus) ValidTransition(to BillStatus) bool {
	return s == BillStatusGenerated && to == BillStatusPaid
}

type Bill struct {
	ID             int64           `json:"id"`
	TenantID       string          `json:"tenant_id"`
	PeriodStart    time.Time       `json:"bill_period_start"`
	PeriodEnd      time.Time       `json:"bill_period_end"`
	StartReadingID int64           `json:"start_reading_id"`
	EndReadingID   int64           `json:"end_reading_id"`
	UnitsConsumed  decimal.Decimal `json:"units_consumed"`
	RatePerUnit    decimal.Decimal `json:"rate_per_unit"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Currency       string          `json:"currency"`
	Status         BillStatus      `json:"bill_status"`
	GeneratedAt    time.Time       `json:"generated_date"`
	DueDate        time.Time       `json:"due_date"`
	PaidAt         *time.Time      `json:"paid_date,omitempty"`
}

// Outstanding reports whether the bill still awaits payment.
func (b *Bill) Outstanding() bool {
	return b.Status != BillStatusPaid
}

// Charge computes consumption between two readings and its cost at rate.
// The consumption is not clamped; callers decide whether it is billable.
func Charge(start, end *WaterReading, rate decimal.Decimal) (units, total decimal.Decimal) {
	units = end.ReadingUnits.Sub(start.ReadingUnits)
	total = units.Mul(rate).Round(MonetaryPlaces)
	return units, total
}

// DateOf truncates t to midnight of its calendar day in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type BillRepository interface {
	Create(ctx context.Context, b *Bill) error
	GetByID(ctx context.Context, id int64) (*Bill, error)
	// ListByTenant returns bills newest generated first.
	ListByTenant(ctx context.Context, tenantID string) ([]*Bill, error)
	// ListOutstanding returns unpaid bills of every tenant by due date.
	ListOutstanding(ctx context.Context) ([]*Bill, error)
	MarkPaid(ctx context.Context, id int64, paidAt time.Time) error
	DeleteByTenant(ctx context.Context, tenantID string) (int64, error)
}
