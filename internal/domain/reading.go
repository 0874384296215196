package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type WaterReading struct {
	ID           int64           `json:"id"`
	TenantID     string          `json:"tenant_id"`
	ReadingUnits decimal.Decimal `json:"reading_units"`
	ReadingDate  time.Time       `json:"reading_date"`
	RecordedDate time.Time       `json:"recorded_date"`
	Notes        *string         `json:"notes,omitempty"`
	CreatedBy    *string         `json:"created_by,omitempty"`
}

type ReadingRepository interface {
	Create(ctx context.Context, r *WaterReading) error
	// ListByTenant returns readings newest first. A limit <= 0 returns all.
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]*WaterReading, error)
	Latest(ctx context.Context, tenantID string) (*WaterReading, error)
	// ListRange returns readings dated within [start, end], oldest first.
	ListRange(ctx context.Context, tenantID string, start, end time.Time) ([]*WaterReading, error)
	DeleteByTenant(ctx context.Context, tenantID string) (int64, error)
}
