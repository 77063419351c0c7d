// Command migrate manages the commerce database schema.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/config"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/logger"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/migration"
	"github.com/cmlibra71/keenan-group-channels/migrations"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	dbURL    string
	logLevel string
}

func newRootCommand() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "migrate",
		Short: "Apply and inspect commerce schema migrations",
		Long: `migrate runs the SQL migrations embedded in this binary against the
commerce database. The database URL comes from --db-url, COMMERCE_DATABASE_URL
or database.url in config.toml.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.dbURL, "db-url", "", "commerce database URL")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	withMigrator := func(fn func(*cobra.Command, *migration.Migrator, []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			log := logger.NewWithWriter(logger.Config{Level: flags.logLevel, Format: "console"}, cmd.ErrOrStderr())
			defer func() { _ = log.Sync() }()

			m, err := openMigrator(flags.dbURL, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := m.Close(); err != nil {
					log.Warn("Failed to close migrator", zap.Error(err))
				}
			}()
			return fn(cmd, m, args)
		}
	}

	downCmd := &cobra.Command{
		Use:   "down [n]",
		Short: "Roll back n migrations, or all of them with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: withMigrator(func(cmd *cobra.Command, m *migration.Migrator, args []string) error {
			if all, _ := cmd.Flags().GetBool("all"); all {
				return m.Down()
			}
			n := 1
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v <= 0 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				n = v
			}
			return m.Steps(-n)
		}),
	}
	downCmd.Flags().Bool("all", false, "roll back every migration")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(_ *cobra.Command, m *migration.Migrator, _ []string) error {
				return m.Up()
			}),
		},
		downCmd,
		&cobra.Command{
			Use:   "goto <version>",
			Short: "Migrate up or down to a specific version",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(_ *cobra.Command, m *migration.Migrator, args []string) error {
				v, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.GoTo(uint(v))
			}),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Record a version as applied without running it",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(_ *cobra.Command, m *migration.Migrator, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.Force(v)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the applied and the latest available version",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m *migration.Migrator, _ []string) error {
				st, err := m.CurrentStatus(migrations.FS)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "applied: %d\nlatest:  %d\n", st.Version, st.Latest)
				if st.Dirty {
					fmt.Fprintln(out, "state:   dirty (fix the failed migration, then run force)")
				} else if st.Pending() {
					fmt.Fprintln(out, "state:   pending migrations")
				} else {
					fmt.Fprintln(out, "state:   up to date")
				}
				return nil
			}),
		},
		newListCommand(),
		newCreateCommand(),
	)
	return root
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the embedded migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := migration.List(migrations.FS)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f.Base())
			}
			return nil
		},
	}
}

func newCreateCommand() *cobra.Command {
	var dir, description string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty up/down migration pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := migration.Create(dir, args[0], description, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\ncreated %s\n", f.UpPath, f.DownPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "migrations", "migrations directory")
	cmd.Flags().StringVarP(&description, "description", "d", "", "one-line description written into the up script")
	return cmd
}

func openMigrator(dbURL string, log *zap.Logger) (*migration.Migrator, error) {
	if dbURL == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load configuration: %w", err)
		}
		dbURL = cfg.Database.DSN()
	}
	if dbURL == "" {
		return nil, errors.New("COMMERCE_DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	m, err := migration.New(db, migrations.FS, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}
