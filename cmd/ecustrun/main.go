// Command ecustrun runs every configured account through one complete
// workflow against the campus run tracker and prints an aggregate summary.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	ecustadapter "github.com/ljhyyds-jjk/ecust-autorun/internal/adapter/driven/ecust"
	sqliteadapter "github.com/ljhyyds-jjk/ecust-autorun/internal/adapter/driven/sqlite"
	"github.com/ljhyyds-jjk/ecust-autorun/internal/application"
	"github.com/ljhyyds-jjk/ecust-autorun/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on malformed env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"base_url", cfg.BaseURL,
		"db_path", cfg.DBPath,
		"accounts_path", cfg.AccountsPath,
		"http_timeout", cfg.HTTPTimeout,
		"max_retries", cfg.MaxRetries,
		"backoff_unit", cfg.BackoffUnit,
	)

	// 2. Load the accounts list (all-or-nothing).
	accounts, err := config.LoadAccounts(cfg.AccountsPath)
	if err != nil {
		return err
	}
	slog.Info("accounts loaded", "count", len(accounts))

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Open credential database and run migrations.
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("credential store ready", "path", cfg.DBPath)

	// 5. Wire adapters and application services.
	credStore := sqliteadapter.NewCredentialRepo(db)
	runService := ecustadapter.NewClient(cfg.BaseURL, cfg.HTTPTimeout, ecustadapter.RetryPolicy{
		MaxRetries:  cfg.MaxRetries,
		BackoffUnit: cfg.BackoffUnit,
	})
	gen := application.NewGenerator(nil)
	workflow := application.NewWorkflow(runService, credStore, gen)
	coordinator := application.NewCoordinator(workflow)

	// 6. Run all accounts to a terminal outcome and report.
	slog.Info("starting workflows", "accounts", len(accounts))
	summary := coordinator.RunAll(ctx, accounts)

	slog.Info("summary",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"rejected", summary.Rejected,
		"faulted", summary.Faulted,
	)
	return nil
}
