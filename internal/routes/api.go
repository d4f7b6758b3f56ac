package routes

import (
	"github.com/dorianvale/praxis/internal/middleware"
	"github.com/dorianvale/praxis/internal/router"
)

// Register builds the full route table. The base chain (request ID, logging,
// metrics, recovery) applies everywhere; user routes additionally require a
// JWT, and task routes a scheduler token.
func Register(deps Deps) *router.Router {
	r := router.New(
		middleware.RequestID,
		middleware.WithRequestLogger(deps.Logger),
		deps.Metrics.Middleware,
		middleware.Recover,
	)

	// Unauthenticated operational endpoints
	r.Get("/healthz", deps.Health.Healthz)
	r.Handle("GET", "/metrics", deps.Metrics.Handler())

	// Scheduler endpoints, guarded by the shared task token
	tasks := r.Group(middleware.RequireTaskToken(deps.TaskToken))
	tasks.Post("/api/tasks/reconcile-overdue", deps.Tasks.ReconcileOverdue)

	// User-facing API, guarded by JWT auth
	api := r.Group(middleware.Authenticate(deps.JWTSecret))

	api.Get("/api/profile", deps.Profile.Get)
	api.Put("/api/profile", deps.Profile.Upsert)

	api.Post("/api/clients", deps.Clients.Create)
	api.Get("/api/clients", deps.Clients.List)
	api.Get("/api/clients/{id}", deps.Clients.Get)
	api.Put("/api/clients/{id}", deps.Clients.Update)
	api.Delete("/api/clients/{id}", deps.Clients.Archive)

	api.Post("/api/invoices", deps.Invoices.Create)
	api.Get("/api/invoices", deps.Invoices.List)
	api.Get("/api/invoices/{id}", deps.Invoices.Get)
	api.Post("/api/invoices/{id}/send", deps.Invoices.Send)
	api.Post("/api/invoices/{id}/payments", deps.Invoices.RecordPayment)
	api.Delete("/api/invoices/{id}", deps.Invoices.Delete)

	api.Post("/api/appointments", deps.Appointments.Create)
	api.Get("/api/appointments", deps.Appointments.List)
	api.Get("/api/appointments/{id}", deps.Appointments.Get)
	api.Put("/api/appointments/{id}", deps.Appointments.Update)
	api.Post("/api/appointments/{id}/cancel", deps.Appointments.Cancel)
	api.Delete("/api/appointments/{id}", deps.Appointments.Delete)

	api.Post("/api/jobs", deps.JobFiles.Create)
	api.Get("/api/jobs", deps.JobFiles.List)
	api.Get("/api/jobs/{id}", deps.JobFiles.Get)
	api.Put("/api/jobs/{id}", deps.JobFiles.Update)
	api.Delete("/api/jobs/{id}", deps.JobFiles.Delete)

	api.Post("/api/messages", deps.Messages.Create)
	api.Get("/api/messages", deps.Messages.List)
	api.Post("/api/messages/{id}/read", deps.Messages.MarkRead)

	api.Post("/api/certifications", deps.Certifications.Create)
	api.Get("/api/certifications", deps.Certifications.List)
	api.Delete("/api/certifications/{id}", deps.Certifications.Delete)

	return r
}
