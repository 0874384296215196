package v1

import (
	"context"
	"reflect"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/gosuda/aquabill/internal/billing"
	"github.com/gosuda/aquabill/internal/domain"
)

// BillingService abstracts billing operations for handler testing.
// *billing.Service satisfies this interface.
type BillingService interface {
	AddTenant(ctx context.Context, in billing.NewTenant) (*domain.Tenant, error)
	GetTenant(ctx context.Context, tenantID string) (*domain.Tenant, error)
	ListTenants(ctx context.Context, activeOnly bool) ([]*domain.Tenant, error)
	UpdateTenant(ctx context.Context, t *domain.Tenant) error
	DeactivateTenant(ctx context.Context, tenantID string) error
	DeleteTenant(ctx context.Context, tenantID string) (*billing.CascadeResult, error)

	AddWaterReading(ctx context.Context, in billing.NewReading) (*domain.WaterReading, error)
	ListReadings(ctx context.Context, tenantID string, limit int) ([]*domain.WaterReading, error)

	CalculateBill(ctx context.Context, tenantID string, period *billing.Period) (*billing.BillCalculation, bool, error)
	GenerateBill(ctx context.Context, tenantID string, period *billing.Period, dueDays int) (*domain.Bill, error)
	MarkBillPaid(ctx context.Context, billID int64, paidAt *time.Time) (*domain.Bill, error)
	ListBills(ctx context.Context, tenantID string) ([]*domain.Bill, error)
	OutstandingBills(ctx context.Context, tenantID string) ([]*domain.Bill, error)

	TenantSummary(ctx context.Context, tenantID string) (*billing.TenantSummary, error)
	TenantSummaries(ctx context.Context) ([]*billing.TenantSummary, error)
	Statement(ctx context.Context, tenantID string) (*billing.Statement, error)

	Setting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value, description string) error
	Settings(ctx context.Context) (map[string]string, error)
}

// RegisterTypes documents decimal amounts as strings, matching their JSON form.
func RegisterTypes(api huma.API) {
	api.OpenAPI().Components.Schemas.RegisterTypeAlias(reflect.TypeOf(decimal.Decimal{}), reflect.TypeOf(""))
}

// Register wires every billing route onto api.
func Register(api huma.API, svc BillingService) {
	RegisterTypes(api)
	RegisterTenantRoutes(api, svc)
	RegisterReadingRoutes(api, svc)
	RegisterBillRoutes(api, svc)
	RegisterSummaryRoutes(api, svc)
	RegisterSettingRoutes(api, svc)
}
