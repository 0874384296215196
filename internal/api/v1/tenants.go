package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/aquabill/internal/billing"
	"github.com/gosuda/aquabill/internal/domain"
)

type CreateTenantInput struct {
	Body struct {
		TenantID        string  `json:"tenant_id" minLength:"1" maxLength:"50" doc:"External tenant identifier"`
		Name            string  `json:"name" minLength:"1" maxLength:"255" doc:"Tenant name"`
		ApartmentNumber string  `json:"apartment_number" minLength:"1" maxLength:"32" doc:"Apartment number"`
		Phone           *string `json:"phone,omitempty" maxLength:"50" doc:"Contact phone"`
		Email           *string `json:"email,omitempty" format:"email" maxLength:"255" doc:"Contact email"`
	}
}

type TenantOutput struct {
	Body *domain.Tenant
}

type ListTenantsInput struct {
	Active bool `query:"active" default:"true" doc:"Only list active tenants"`
}

type ListTenantsOutput struct {
	Body []*domain.Tenant
}

type TenantPathInput struct {
	TenantID string `path:"tenantID" doc:"Tenant ID"`
}

type UpdateTenantInput struct {
	TenantID string `path:"tenantID" doc:"Tenant ID"`
	Body     struct {
		Name            string  `json:"name,omitempty" maxLength:"255" doc:"Tenant name"`
		ApartmentNumber string  `json:"apartment_number,omitempty" maxLength:"32" doc:"Apartment number"`
		Phone           *string `json:"phone,omitempty" maxLength:"50" doc:"Contact phone"`
		Email           *string `json:"email,omitempty" format:"email" maxLength:"255" doc:"Contact email"`
	}
}

type DeleteTenantInput struct {
	TenantID string `path:"tenantID" doc:"Tenant ID"`
	Mode     string `query:"mode" enum:"soft,hard" default:"hard" doc:"soft deactivates, hard removes the tenant with its readings and bills"`
}

type DeleteTenantOutput struct {
	Body *billing.CascadeResult
}

func RegisterTenantRoutes(api huma.API, svc BillingService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-tenant",
		Method:        http.MethodPost,
		Path:          "/tenants",
		Summary:       "Add a tenant",
		Tags:          []string{"Tenants"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTenantInput) (*TenantOutput, error) {
		t, err := svc.AddTenant(ctx, billing.NewTenant{
			TenantID:        input.Body.TenantID,
			Name:            input.Body.Name,
			ApartmentNumber: input.Body.ApartmentNumber,
			Phone:           input.Body.Phone,
			Email:           input.Body.Email,
		})
		if err != nil {
			return nil, toHTTPError(err, "failed to create tenant")
		}

		return &TenantOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenants",
		Method:      http.MethodGet,
		Path:        "/tenants",
		Summary:     "List tenants by apartment number",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *ListTenantsInput) (*ListTenantsOutput, error) {
		tenants, err := svc.ListTenants(ctx, input.Active)
		if err != nil {
			return nil, toHTTPError(err, "failed to list tenants")
		}

		return &ListTenantsOutput{Body: tenants}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tenant",
		Method:      http.MethodGet,
		Path:        "/tenants/{tenantID}",
		Summary:     "Get an active tenant",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *TenantPathInput) (*TenantOutput, error) {
		t, err := svc.GetTenant(ctx, input.TenantID)
		if err != nil {
			return nil, toHTTPError(err, "failed to get tenant")
		}

		return &TenantOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-tenant",
		Method:      http.MethodPut,
		Path:        "/tenants/{tenantID}",
		Summary:     "Update a tenant",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *UpdateTenantInput) (*TenantOutput, error) {
		existing, err := svc.GetTenant(ctx, input.TenantID)
		if err != nil {
			return nil, toHTTPError(err, "failed to get tenant")
		}

		if input.Body.Name != "" {
			existing.Name = input.Body.Name
		}
		if input.Body.ApartmentNumber != "" {
			existing.ApartmentNumber = input.Body.ApartmentNumber
		}
		if input.Body.Phone != nil {
			existing.Phone = input.Body.Phone
		}
		if input.Body.Email != nil {
			existing.Email = input.Body.Email
		}

		if err = svc.UpdateTenant(ctx, existing); err != nil {
			return nil, toHTTPError(err, "failed to update tenant")
		}

		return &TenantOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-tenant",
		Method:      http.MethodDelete,
		Path:        "/tenants/{tenantID}",
		Summary:     "Deactivate or permanently delete a tenant",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *DeleteTenantInput) (*DeleteTenantOutput, error) {
		mode, err := domain.ParseDeleteMode(input.Mode)
		if err != nil {
			return nil, toHTTPError(err, "failed to delete tenant")
		}

		if mode == domain.DeleteSoft {
			if err = svc.DeactivateTenant(ctx, input.TenantID); err != nil {
				return nil, toHTTPError(err, "failed to deactivate tenant")
			}
			return &DeleteTenantOutput{Body: &billing.CascadeResult{TenantID: input.TenantID}}, nil
		}

		res, err := svc.DeleteTenant(ctx, input.TenantID)
		if err != nil {
			return nil, toHTTPError(err, "failed to delete tenant")
		}

		return &DeleteTenantOutput{Body: res}, nil
	})
}
