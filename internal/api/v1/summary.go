package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/aquabill/internal/billing"
	"github.com/gosuda/aquabill/internal/report"
)

type TenantSummaryOutput struct {
	Body *billing.TenantSummary
}

type TenantSummariesOutput struct {
	Body []*billing.TenantSummary
}

type StatementOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func RegisterSummaryRoutes(api huma.API, svc BillingService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-tenant-summary",
		Method:      http.MethodGet,
		Path:        "/tenants/{tenantID}/summary",
		Summary:     "Summarize a tenant's readings and bills",
		Tags:        []string{"Summaries"},
	}, func(ctx context.Context, input *TenantPathInput) (*TenantSummaryOutput, error) {
		sum, err := svc.TenantSummary(ctx, input.TenantID)
		if err != nil {
			return nil, toHTTPError(err, "failed to summarize tenant")
		}

		return &TenantSummaryOutput{Body: sum}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenant-summaries",
		Method:      http.MethodGet,
		Path:        "/summaries",
		Summary:     "Summarize every active tenant",
		Tags:        []string{"Summaries"},
	}, func(ctx context.Context, _ *struct{}) (*TenantSummariesOutput, error) {
		sums, err := svc.TenantSummaries(ctx)
		if err != nil {
			return nil, toHTTPError(err, "failed to summarize tenants")
		}

		return &TenantSummariesOutput{Body: sums}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "export-tenant-statement",
		Method:      http.MethodGet,
		Path:        "/tenants/{tenantID}/statement",
		Summary:     "Download a tenant statement as xlsx",
		Tags:        []string{"Summaries"},
	}, func(ctx context.Context, input *TenantPathInput) (*StatementOutput, error) {
		st, err := svc.Statement(ctx, input.TenantID)
		if err != nil {
			return nil, toHTTPError(err, "failed to build statement")
		}

		data, err := report.StatementXLSX(st)
		if err != nil {
			return nil, toHTTPError(err, "failed to render statement")
		}

		return &StatementOutput{
			ContentType:        report.ContentType,
			ContentDisposition: fmt.Sprintf("attachment; filename=%q", report.StatementFilename(st)),
			Body:               data,
		}, nil
	})
}
