package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dorianvale/praxis/internal"
	"github.com/dorianvale/praxis/internal/billing"
	"github.com/dorianvale/praxis/internal/email"
	"github.com/dorianvale/praxis/internal/handler"
	"github.com/dorianvale/praxis/internal/middleware"
	"github.com/dorianvale/praxis/internal/postgres"
	"github.com/dorianvale/praxis/internal/reconcile"
	"github.com/dorianvale/praxis/internal/routes"
	"github.com/dorianvale/praxis/internal/service"
	"github.com/dorianvale/praxis/internal/telemetry"
	"github.com/dorianvale/praxis/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	cleanup, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:         cfg.Sentry.DSN,
		Enabled:     cfg.Sentry.Enabled,
		Environment: cfg.Sentry.Environment,
		SampleRate:  cfg.Sentry.SampleRate,
		Debug:       cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}
	defer cleanup()

	// Migrations run over database/sql; the application itself uses pgxpool.
	migrationDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := migrationDB.Ping(); err != nil {
		migrationDB.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	if err := internal.RunMigrations(migrationDB); err != nil {
		migrationDB.Close()
		return fmt.Errorf("run migrations: %w", err)
	}
	migrationDB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("create connection pool: %w", err)
	}
	defer pool.Close()

	// Stores
	profiles := postgres.NewProfileService(pool)
	clients := postgres.NewClientService(pool)
	appointments := postgres.NewAppointmentService(pool)
	jobFiles := postgres.NewJobFileService(pool)
	messages := postgres.NewMessageService(pool)
	certifications := postgres.NewCertificationService(pool)
	invoiceStore := postgres.NewInvoiceStore(pool)
	reconcileStore := postgres.NewReconcileStore(pool)
	jobQueue := postgres.NewJobQueue(pool)

	// Email is optional in dev. Without a configured sender, reminder and
	// invoice emails are skipped or retried while the rest of the app works.
	emailService, err := buildEmailService(cfg)
	if err != nil {
		return fmt.Errorf("configure email: %w", err)
	}
	if emailService == nil {
		logger.Warn("no email provider configured, outbound email disabled")
	}

	var billingProvider billing.Provider
	if cfg.Stripe.SecretKey != "" {
		stripeProvider, err := billing.NewStripeProvider(cfg.Stripe.SecretKey)
		if err != nil {
			return fmt.Errorf("configure stripe: %w", err)
		}
		billingProvider = stripeProvider
	} else {
		logger.Warn("stripe not configured, invoices will be sent without payment links")
	}

	holder, err := os.Hostname()
	if err != nil {
		holder = "praxis-server"
	}
	var reminderSender reconcile.ReminderSender
	if emailService != nil {
		reminderSender = emailService
	}
	reconciler := reconcile.NewReconciler(reconcileStore, reminderSender, logger, holder)

	invoices := service.NewInvoiceService(invoiceStore, profiles, clients, billingProvider, jobQueue, cfg.BaseURL, logger)

	metrics := middleware.NewMetrics("praxis")
	r := routes.Register(routes.Deps{
		Logger:    logger,
		Metrics:   metrics,
		JWTSecret: cfg.Auth.JWTSecret,
		TaskToken: cfg.Auth.TaskToken,

		Profile:        handler.NewProfileHandler(profiles),
		Clients:        handler.NewClientsHandler(clients),
		Invoices:       handler.NewInvoicesHandler(invoices),
		Appointments:   handler.NewAppointmentsHandler(appointments),
		JobFiles:       handler.NewJobFilesHandler(jobFiles),
		Messages:       handler.NewMessagesHandler(messages),
		Certifications: handler.NewCertificationsHandler(certifications),
		Tasks:          handler.NewTasksHandler(reconciler),
		Health:         handler.NewHealthHandler(pool),
	})

	if cfg.Worker.Enabled {
		w := worker.NewWorker(jobQueue, emailService, reconciler, worker.Config{
			PollInterval:   cfg.Worker.PollInterval,
			MaxConcurrency: cfg.Worker.MaxConcurrency,
		}, logger)
		go func() {
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("worker stopped", "error", err)
			}
		}()
		go func() {
			if err := w.StartScheduler(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("scheduler stopped", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func buildEmailService(cfg *internal.Config) (*email.Service, error) {
	var sender email.Sender
	switch {
	case cfg.Email.Provider == "smtp":
		sender = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     int(cfg.Email.SMTPPort),
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
			From:     cfg.Email.From,
		})
	case cfg.Email.ResendAPIKey != "":
		sender = email.NewResendSender(cfg.Email.ResendAPIKey)
	default:
		return nil, nil
	}
	return email.NewService(sender, cfg.Email.From, cfg.Email.FromName)
}
