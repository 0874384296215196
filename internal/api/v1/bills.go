package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/aquabill/internal/billing"
	"github.com/gosuda/aquabill/internal/domain"
)

type BillPreviewInput struct {
	TenantID string `path:"tenantID" doc:"Tenant ID"`
	Start    string `query:"start" format:"date" doc:"Period start (YYYY-MM-DD)"`
	End      string `query:"end" format:"date" doc:"Period end, inclusive (YYYY-MM-DD)"`
}

type BillPreviewOutput struct {
	Body *billing.BillCalculation
}

type GenerateBillInput struct {
	TenantID string `path:"tenantID" doc:"Tenant ID"`
	Body     struct {
		Start   string `json:"start,omitempty" format:"date" doc:"Period start (YYYY-MM-DD)"`
		End     string `json:"end,omitempty" format:"date" doc:"Period end, inclusive (YYYY-MM-DD)"`
		DueDays int    `json:"due_days,omitempty" minimum:"0" maximum:"365" doc:"Days until due, 0 for the default"`
	}
}

type BillOutput struct {
	Body *domain.Bill
}

type ListBillsInput struct {
	TenantID string `path:"tenantID" doc:"Tenant ID"`
}

type ListBillsOutput struct {
	Body []*domain.Bill
}

type OutstandingBillsInput struct {
	TenantID string `query:"tenant_id" doc:"Restrict to one tenant"`
}

type PayBillInput struct {
	BillID int64 `path:"billID" minimum:"1" doc:"Bill ID"`
	Body   *struct {
		PaidDate *time.Time `json:"paid_date,omitempty" doc:"Payment time (defaults to now)"`
	} `required:"false"`
}

func RegisterBillRoutes(api huma.API, svc BillingService) {
	huma.Register(api, huma.Operation{
		OperationID: "preview-bill",
		Method:      http.MethodGet,
		Path:        "/tenants/{tenantID}/bill-preview",
		Summary:     "Calculate a bill without saving it",
		Tags:        []string{"Bills"},
	}, func(ctx context.Context, input *BillPreviewInput) (*BillPreviewOutput, error) {
		period, err := parsePeriod(input.Start, input.End)
		if err != nil {
			return nil, err
		}

		calc, ok, err := svc.CalculateBill(ctx, input.TenantID, period)
		if err != nil {
			return nil, toHTTPError(err, "failed to calculate bill")
		}
		if !ok {
			return nil, huma.Error404NotFound("no calculation: unknown tenant or fewer than two readings")
		}

		return &BillPreviewOutput{Body: calc}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "generate-bill",
		Method:        http.MethodPost,
		Path:          "/tenants/{tenantID}/bills",
		Summary:       "Generate and store a bill",
		Tags:          []string{"Bills"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *GenerateBillInput) (*BillOutput, error) {
		period, err := parsePeriod(input.Body.Start, input.Body.End)
		if err != nil {
			return nil, err
		}

		b, err := svc.GenerateBill(ctx, input.TenantID, period, input.Body.DueDays)
		if err != nil {
			return nil, toHTTPError(err, "failed to generate bill")
		}

		return &BillOutput{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-bills",
		Method:      http.MethodGet,
		Path:        "/tenants/{tenantID}/bills",
		Summary:     "List a tenant's bills newest first",
		Tags:        []string{"Bills"},
	}, func(ctx context.Context, input *ListBillsInput) (*ListBillsOutput, error) {
		bills, err := svc.ListBills(ctx, input.TenantID)
		if err != nil {
			return nil, toHTTPError(err, "failed to list bills")
		}

		return &ListBillsOutput{Body: bills}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-outstanding-bills",
		Method:      http.MethodGet,
		Path:        "/bills/outstanding",
		Summary:     "List unpaid bills",
		Tags:        []string{"Bills"},
	}, func(ctx context.Context, input *OutstandingBillsInput) (*ListBillsOutput, error) {
		bills, err := svc.OutstandingBills(ctx, input.TenantID)
		if err != nil {
			return nil, toHTTPError(err, "failed to list outstanding bills")
		}

		return &ListBillsOutput{Body: bills}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "pay-bill",
		Method:      http.MethodPost,
		Path:        "/bills/{billID}/pay",
		Summary:     "Mark a bill as paid",
		Tags:        []string{"Bills"},
	}, func(ctx context.Context, input *PayBillInput) (*BillOutput, error) {
		var paidAt *time.Time
		if input.Body != nil {
			paidAt = input.Body.PaidDate
		}

		b, err := svc.MarkBillPaid(ctx, input.BillID, paidAt)
		if err != nil {
			return nil, toHTTPError(err, "failed to mark bill paid")
		}

		return &BillOutput{Body: b}, nil
	})
}
