package v1_test

import (
	"context"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"

	v1 "github.com/gosuda/aquabill/internal/api/v1"
	"github.com/gosuda/aquabill/internal/billing"
	"github.com/gosuda/aquabill/internal/domain"
)

// newTestAPI registers every route against svc on a humatest API.
func newTestAPI(t *testing.T, svc *mockBillingService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	v1.Register(api, svc)
	return api
}

func fixedTime() time.Time {
	return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
}

// ---------------------------------------------------------------------------
// Mock BillingService
// ---------------------------------------------------------------------------

type mockBillingService struct {
	addTenantFunc        func(ctx context.Context, in billing.NewTenant) (*domain.Tenant, error)
	getTenantFunc        func(ctx context.Context, tenantID string) (*domain.Tenant, error)
	listTenantsFunc      func(ctx context.Context, activeOnly bool) ([]*domain.Tenant, error)
	updateTenantFunc     func(ctx context.Context, t *domain.Tenant) error
	deactivateTenantFunc func(ctx context.Context, tenantID string) error
	deleteTenantFunc     func(ctx context.Context, tenantID string) (*billing.CascadeResult, error)

	addWaterReadingFunc func(ctx context.Context, in billing.NewReading) (*domain.WaterReading, error)
	listReadingsFunc    func(ctx context.Context, tenantID string, limit int) ([]*domain.WaterReading, error)

	calculateBillFunc    func(ctx context.Context, tenantID string, period *billing.Period) (*billing.BillCalculation, bool, error)
	generateBillFunc     func(ctx context.Context, tenantID string, period *billing.Period, dueDays int) (*domain.Bill, error)
	markBillPaidFunc     func(ctx context.Context, billID int64, paidAt *time.Time) (*domain.Bill, error)
	listBillsFunc        func(ctx context.Context, tenantID string) ([]*domain.Bill, error)
	outstandingBillsFunc func(ctx context.Context, tenantID string) ([]*domain.Bill, error)

	tenantSummaryFunc   func(ctx context.Context, tenantID string) (*billing.TenantSummary, error)
	tenantSummariesFunc func(ctx context.Context) ([]*billing.TenantSummary, error)
	statementFunc       func(ctx context.Context, tenantID string) (*billing.Statement, error)

	settingFunc    func(ctx context.Context, key string) (string, error)
	setSettingFunc func(ctx context.Context, key, value, description string) error
	settingsFunc   func(ctx context.Context) (map[string]string, error)
}

func (m *mockBillingService) AddTenant(ctx context.Context, in billing.NewTenant) (*domain.Tenant, error) {
	return m.addTenantFunc(ctx, in)
}

func (m *mockBillingService) GetTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	return m.getTenantFunc(ctx, tenantID)
}

func (m *mockBillingService) ListTenants(ctx context.Context, activeOnly bool) ([]*domain.Tenant, error) {
	return m.listTenantsFunc(ctx, activeOnly)
}

func (m *mockBillingService) UpdateTenant(ctx context.Context, t *domain.Tenant) error {
	return m.updateTenantFunc(ctx, t)
}

func (m *mockBillingService) DeactivateTenant(ctx context.Context, tenantID string) error {
	return m.deactivateTenantFunc(ctx, tenantID)
}

func (m *mockBillingService) DeleteTenant(ctx context.Context, tenantID string) (*billing.CascadeResult, error) {
	return m.deleteTenantFunc(ctx, tenantID)
}

func (m *mockBillingService) AddWaterReading(ctx context.Context, in billing.NewReading) (*domain.WaterReading, error) {
	return m.addWaterReadingFunc(ctx, in)
}

func (m *mockBillingService) ListReadings(ctx context.Context, tenantID string, limit int) ([]*domain.WaterReading, error) {
	return m.listReadingsFunc(ctx, tenantID, limit)
}

func (m *mockBillingService) CalculateBill(ctx context.Context, tenantID string, period *billing.Period) (*billing.BillCalculation, bool, error) {
	return m.calculateBillFunc(ctx, tenantID, period)
}

func (m *mockBillingService) GenerateBill(ctx context.Context, tenantID string, period *billing.Period, dueDays int) (*domain.Bill, error) {
	return m.generateBillFunc(ctx, tenantID, period, dueDays)
}

func (m *mockBillingService) MarkBillPaid(ctx context.Context, billID int64, paidAt *time.Time) (*domain.Bill, error) {
	return m.markBillPaidFunc(ctx, billID, paidAt)
}

func (m *mockBillingService) ListBills(ctx context.Context, tenantID string) ([]*domain.Bill, error) {
	return m.listBillsFunc(ctx, tenantID)
}

func (m *mockBillingService) OutstandingBills(ctx context.Context, tenantID string) ([]*domain.Bill, error) {
	return m.outstandingBillsFunc(ctx, tenantID)
}

func (m *mockBillingService) TenantSummary(ctx context.Context, tenantID string) (*billing.TenantSummary, error) {
	return m.tenantSummaryFunc(ctx, tenantID)
}

func (m *mockBillingService) TenantSummaries(ctx context.Context) ([]*billing.TenantSummary, error) {
	return m.tenantSummariesFunc(ctx)
}

func (m *mockBillingService) Statement(ctx context.Context, tenantID string) (*billing.Statement, error) {
	return m.statementFunc(ctx, tenantID)
}

func (m *mockBillingService) Setting(ctx context.Context, key string) (string, error) {
	return m.settingFunc(ctx, key)
}

func (m *mockBillingService) SetSetting(ctx context.Context, key, value, description string) error {
	return m.setSettingFunc(ctx, key, value, description)
}

func (m *mockBillingService) Settings(ctx context.Context) (map[string]string, error) {
	return m.settingsFunc(ctx)
}

var _ v1.BillingService = (*mockBillingService)(nil)
