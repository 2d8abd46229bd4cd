package api

import (
	"net/http"
	"transport-ops-service/internal/api/handlers"
	"transport-ops-service/internal/services"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Routes  *services.RouteService
	Payroll *services.PayrollService
	Sync    *services.SyncService
	// JWTSecret enables bearer-token checks when non-empty.
	JWTSecret string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{Routes: deps.Routes}
	payrollHandler := &handlers.PayrollHandler{Payroll: deps.Payroll, Sync: deps.Sync}

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("POST /routes/plan", routeHandler.Plan)
	mux.HandleFunc("PUT /jobs/{job_id}/route", routeHandler.PutJobRoute)
	mux.HandleFunc("GET /jobs/{job_id}/route", routeHandler.GetJobRoute)

	mux.HandleFunc("GET /drivers/{driver_id}/weeks/{date}", payrollHandler.DriverWeek)
	mux.HandleFunc("POST /drivers/{driver_id}/weeks/{date}/paid", payrollHandler.MarkPaid)
	mux.HandleFunc("PUT /drivers/{driver_id}/days/{date}", payrollHandler.SetDay)
	mux.HandleFunc("DELETE /drivers/{driver_id}/days/{date}", payrollHandler.ClearDay)

	mux.HandleFunc("GET /payroll/weeks/{date}", payrollHandler.Week)
	mux.HandleFunc("GET /payroll/weeks/{date}/export", payrollHandler.Export)
	mux.HandleFunc("POST /payroll/weeks/{date}/sync", payrollHandler.SyncWeek)

	var h http.Handler = mux
	if deps.JWTSecret != "" {
		h = authMiddleware([]byte(deps.JWTSecret), h)
	}
	return requestIDMiddleware(loggingMiddleware(h))
}
