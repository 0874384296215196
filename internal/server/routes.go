package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/aquabill/internal/api/v1"
	"github.com/gosuda/aquabill/internal/api/ws"
)

func registerAPIRoutes(api huma.API, svc v1.BillingService) {
	v1.Register(api, svc)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/billing", hub.ServeBilling)
	r.Get("/tenants/{tenantID}", hub.ServeTenant)
}
