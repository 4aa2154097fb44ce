package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventar/internal/api"
	"github.com/erazemk/inventar/internal/auth"
	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/output"
	"github.com/erazemk/inventar/internal/store"
)

func newInitCmd(a *app) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and its first admin account",
		Long: `Init creates the schema, seeds the default zone, categories and statuses,
and creates an admin account named by --admin. Without --password a random
password is generated and printed once.

Running init against an existing database is safe: the schema is left as
it is and the command fails if the admin account already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			generated, err := createAdmin(cmd.Context(), database, a.cfg.Admin, password)
			if err != nil {
				return err
			}
			printInitResult(cmd.OutOrStdout(), a.cfg.DB, a.cfg.Admin, generated)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "admin password (default: generated)")
	return cmd
}

// createAdmin creates the admin account. An empty password is replaced by
// a generated one, which is returned so it can be shown to the operator.
func createAdmin(ctx context.Context, database *sql.DB, username, password string) (string, error) {
	var generated string
	if password == "" {
		var err error
		if generated, err = generatePassword(16); err != nil {
			return "", fmt.Errorf("generating password: %w", err)
		}
		password = generated
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	if _, err := store.CreateUser(ctx, database, username, hash, model.RoleAdmin); err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}
	return generated, nil
}

func printInitResult(w io.Writer, dbPath, username, password string) {
	output.Success(w, "Database ready: %s", dbPath)
	output.Success(w, "Admin account created: %s", username)
	if password != "" {
		output.Info(w, "Password: %s", password)
		output.Warning(w, "Save this password, it cannot be recovered.")
	}
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serve opens the database, creating it with an admin account on first run,
and serves the JSON API on --addr until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd)
		},
	}
}

func (a *app) serve(cmd *cobra.Command) error {
	_, statErr := os.Stat(a.cfg.DB)
	firstRun := errors.Is(statErr, os.ErrNotExist)

	database, err := a.openDB(cmd.Context())
	if err != nil {
		return err
	}

	if firstRun {
		password, err := createAdmin(cmd.Context(), database, a.cfg.Admin, "")
		if err != nil {
			return err
		}
		printInitResult(cmd.OutOrStdout(), a.cfg.DB, a.cfg.Admin, password)
	}

	slog.Info("database ready", "path", a.cfg.DB)

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(cmd.Context(), database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	server := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           api.NewRouter(database, jwtSecret),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", a.cfg.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
