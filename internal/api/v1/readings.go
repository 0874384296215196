package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/gosuda/aquabill/internal/billing"
	"github.com/gosuda/aquabill/internal/domain"
)

type CreateReadingInput struct {
	TenantID string `path:"tenantID" doc:"Tenant ID"`
	Body     struct {
		ReadingUnits string `json:"reading_units" pattern:"^-?[0-9]+(\\.[0-9]+)?$" doc:"Cumulative meter value"`
		ReadingDate  string `json:"reading_date,omitempty" format:"date" doc:"Date the meter was read (defaults to now)"`
		Notes        string `json:"notes,omitempty" maxLength:"1000" doc:"Free-form notes"`
		CreatedBy    string `json:"created_by,omitempty" maxLength:"100" doc:"Who recorded the reading"`
	}
}

type ReadingOutput struct {
	Body *domain.WaterReading
}

type ListReadingsInput struct {
	TenantID string `path:"tenantID" doc:"Tenant ID"`
	Limit    int    `query:"limit" minimum:"0" maximum:"1000" default:"0" doc:"Max results, 0 for all"`
}

type ListReadingsOutput struct {
	Body []*domain.WaterReading
}

func RegisterReadingRoutes(api huma.API, svc BillingService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-reading",
		Method:        http.MethodPost,
		Path:          "/tenants/{tenantID}/readings",
		Summary:       "Record a meter reading",
		Tags:          []string{"Readings"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateReadingInput) (*ReadingOutput, error) {
		units, err := decimal.NewFromString(input.Body.ReadingUnits)
		if err != nil {
			return nil, huma.Error400BadRequest("reading_units must be a decimal number")
		}

		readingDate, err := parseDate(input.Body.ReadingDate)
		if err != nil {
			return nil, huma.Error400BadRequest("reading_date must be YYYY-MM-DD")
		}

		wr, err := svc.AddWaterReading(ctx, billing.NewReading{
			TenantID:    input.TenantID,
			Units:       units,
			ReadingDate: readingDate,
			Notes:       input.Body.Notes,
			CreatedBy:   input.Body.CreatedBy,
		})
		if err != nil {
			return nil, toHTTPError(err, "failed to record reading")
		}

		return &ReadingOutput{Body: wr}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-readings",
		Method:      http.MethodGet,
		Path:        "/tenants/{tenantID}/readings",
		Summary:     "List a tenant's readings newest first",
		Tags:        []string{"Readings"},
	}, func(ctx context.Context, input *ListReadingsInput) (*ListReadingsOutput, error) {
		readings, err := svc.ListReadings(ctx, input.TenantID, input.Limit)
		if err != nil {
			return nil, toHTTPError(err, "failed to list readings")
		}

		return &ListReadingsOutput{Body: readings}, nil
	})
}

// parseDate parses an optional YYYY-MM-DD value. Empty yields the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}

// parsePeriod builds a period from optional start and end dates. Both or
// neither must be given; the end date covers its whole day.
func parsePeriod(start, end string) (*billing.Period, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, huma.Error400BadRequest("start and end must be given together")
	}

	from, err := parseDate(start)
	if err != nil {
		return nil, huma.Error400BadRequest("start must be YYYY-MM-DD")
	}
	to, err := parseDate(end)
	if err != nil {
		return nil, huma.Error400BadRequest("end must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, huma.Error400BadRequest("end must not be before start")
	}

	return &billing.Period{Start: from, End: to.Add(24*time.Hour - time.Nanosecond)}, nil
}
