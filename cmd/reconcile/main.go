// Command reconcile runs a single overdue invoice reconciliation pass and
// exits. It is intended for cron or other external schedulers; the in-process
// scheduler in cmd/server covers deployments that do not need one.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dorianvale/praxis/internal"
	"github.com/dorianvale/praxis/internal/email"
	"github.com/dorianvale/praxis/internal/postgres"
	"github.com/dorianvale/praxis/internal/reconcile"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, reconcile.ErrAlreadyRunning) {
			log.Print("another reconciliation run is in progress, nothing to do")
			return
		}
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := internal.NewLogger(os.Stderr, cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("create connection pool: %w", err)
	}
	defer pool.Close()

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
	}

	var reminderSender reconcile.ReminderSender
	if sender != nil {
		svc, err := email.NewService(sender, cfg.Email.From, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("configure email: %w", err)
		}
		reminderSender = svc
	}

	holder, err := os.Hostname()
	if err != nil {
		holder = "praxis-reconcile"
	}

	reconciler := reconcile.NewReconciler(postgres.NewReconcileStore(pool), reminderSender, logger, holder)

	summary, err := reconciler.Run(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
