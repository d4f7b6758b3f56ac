// Package routes wires handlers onto the router behind the right middleware.
package routes

import (
	"log/slog"

	"github.com/dorianvale/praxis/internal/handler"
	"github.com/dorianvale/praxis/internal/middleware"
)

// Deps contains everything route registration needs.
type Deps struct {
	Logger  *slog.Logger
	Metrics *middleware.Metrics

	// Credentials
	JWTSecret string
	TaskToken string

	// Handlers
	Profile        *handler.ProfileHandler
	Clients        *handler.ClientsHandler
	Invoices       *handler.InvoicesHandler
	Appointments   *handler.AppointmentsHandler
	JobFiles       *handler.JobFilesHandler
	Messages       *handler.MessagesHandler
	Certifications *handler.CertificationsHandler
	Tasks          *handler.TasksHandler
	Health         *handler.HealthHandler
}
