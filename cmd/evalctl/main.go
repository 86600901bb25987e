// Command evalctl is the operator CLI for the evaluation template engine.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"akreditasi-jurnal/internal/config"
	"akreditasi-jurnal/internal/database"
	"akreditasi-jurnal/internal/logger"
	"akreditasi-jurnal/internal/repository"
	"akreditasi-jurnal/internal/service"
)

// env is the configuration and database shared by subcommands that touch storage
type env struct {
	cfg   *config.Config
	db    *database.Database
	store service.Store
}

func (e *env) Close() {
	if e.db != nil {
		_ = e.db.Close()
	}
}

// openEnv loads configuration and connects to PostgreSQL. Migrations are not
// applied here; use "evalctl migrate up".
func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Setup(logger.Config{Level: cfg.Log.Level, Format: "text", Output: os.Stderr})

	if cfg.Database.Driver != config.DriverPostgres {
		return nil, fmt.Errorf("evalctl requires DB_DRIVER=%s, got %q", config.DriverPostgres, cfg.Database.Driver)
	}
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:   cfg,
		db:    db,
		store: service.NewPostgresStore(repository.NewStore(db.DB, cfg.Database.TxRetries)),
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "evalctl",
		Short:         "Operate evaluation templates for journal accreditation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newTreeCmd(),
		newWeightsCmd(),
		newCloneCmd(),
		newCheckDeleteCmd(),
		newKeygenCmd(),
		newTokenCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
