package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/erazemk/inventar/internal/config"
	"github.com/erazemk/inventar/internal/db"
	"github.com/erazemk/inventar/internal/output"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app carries the resolved configuration and the open database between
// the root command and its subcommands.
type app struct {
	v          *viper.Viper
	configFile string
	envFile    string
	jsonOutput bool

	cfg      *config.Config
	db       *sql.DB
	closeLog func()
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "inventar",
		Short:         "Inventar tracks objects, the zones they are kept in and every change made to them",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			a.close()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringP(config.KeyDB, "d", config.DefaultDB, "SQLite database path")
	flags.StringP(config.KeyAddr, "a", config.DefaultAddr, "listen address for serve")
	flags.StringP(config.KeyLog, "l", "", "log file path (default: no file, stdout/stderr only)")
	flags.StringP(config.KeyUser, "u", "", "user recorded on changes (default: $USER)")
	flags.String(config.KeyAdmin, config.DefaultAdmin, "admin username created by init")
	flags.StringVar(&a.configFile, "config", "", "config file (default: ./inventar.yaml or ~/.config/inventar/inventar.yaml)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	flags.BoolVar(&a.jsonOutput, "json", false, "output as JSON")

	for _, key := range []string{config.KeyDB, config.KeyAddr, config.KeyLog, config.KeyUser, config.KeyAdmin} {
		// Lookup cannot fail for flags defined above.
		_ = a.v.BindPFlag(key, flags.Lookup(key))
	}

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newServeCmd(a),
		newObjectsCmd(a),
		newZonesCmd(a),
		newCategoriesCmd(a),
		newStatusesCmd(a),
		newHistoryCmd(a),
		newInventoryCmd(a),
		newUsersCmd(a),
		newConsoleCmd(a),
	)

	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.configFile, a.envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Only the server logs progress to stdout; other commands keep stdout
	// for their results.
	stdout := cmd.ErrOrStderr()
	if cmd.Name() == "serve" {
		stdout = cmd.OutOrStdout()
	}
	closeLog, err := setupLogger(cfg.Log, stdout, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.closeLog = closeLog
	return nil
}

// openDB opens the configured database and applies the schema. It is safe
// to call more than once.
func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	database, err := db.Open(a.cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := db.Init(ctx, database); err != nil {
		database.Close()
		return nil, err
	}
	a.db = database
	return database, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
	if a.closeLog != nil {
		a.closeLog()
		a.closeLog = nil
	}
}

// print writes v as JSON when --json is set, otherwise calls human.
func (a *app) print(cmd *cobra.Command, v any, human func()) error {
	if a.jsonOutput {
		return output.JSON(cmd.OutOrStdout(), v)
	}
	human()
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "inventar", version)
		},
	}
}
