// Command sync-sites scaffolds a storefront for every active channel that
// does not have one yet.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlibra71/keenan-group-channels/internal/application/orchestrator"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/config"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type syncFlags struct {
	dryRun      bool
	sitesDir    string
	scaffoldCmd string
	dbURL       string
}

func newRootCommand() *cobra.Command {
	var flags syncFlags

	cmd := &cobra.Command{
		Use:   "sync-sites",
		Short: "Scaffold storefronts for active channels",
		Long: `sync-sites reads the active channels and their primary sites from the
commerce database, compares them with the directories under the sites
directory and runs the scaffold command for every channel that has no
storefront yet.

The database URL comes from --db-url, COMMERCE_DATABASE_URL or
database.url in config.toml.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the plan without scaffolding anything")
	cmd.Flags().StringVar(&flags.sitesDir, "sites-dir", "", "directory holding one sub-directory per storefront")
	cmd.Flags().StringVar(&flags.scaffoldCmd, "scaffold-cmd", "", "command run for each new site")
	cmd.Flags().StringVar(&flags.dbURL, "db-url", "", "commerce database URL")
	return cmd
}

func runSync(cmd *cobra.Command, flags syncFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	dbURL := flags.dbURL
	if dbURL == "" {
		dbURL = cfg.Database.URL
	}
	if dbURL == "" {
		return fmt.Errorf("COMMERCE_DATABASE_URL environment variable is required")
	}
	sitesDir := flags.sitesDir
	if sitesDir == "" {
		sitesDir = cfg.Orchestrator.SitesDir
	}
	scaffoldCmd := flags.scaffoldCmd
	if scaffoldCmd == "" {
		scaffoldCmd = cfg.Orchestrator.ScaffoldCmd
	}

	log := logger.NewWithWriter(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	}, cmd.ErrOrStderr())
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	source, db, err := orchestrator.OpenSQLSource(ctx, dbURL)
	if err != nil {
		return err
	}
	defer db.Close()

	var scaffold orchestrator.Scaffolder
	if scaffoldCmd != "" {
		scaffold = &orchestrator.CommandScaffolder{
			Command: scaffoldCmd,
			Stdout:  cmd.OutOrStdout(),
			Stderr:  cmd.ErrOrStderr(),
		}
	} else if !flags.dryRun {
		log.Warn("No scaffold command configured; new sites will be reported as failures")
	}

	report, err := orchestrator.NewSyncer(source, scaffold, cmd.OutOrStdout(), log).Run(ctx, orchestrator.Options{
		SitesDir: sitesDir,
		DBURL:    dbURL,
		DryRun:   flags.dryRun,
	})
	if err != nil {
		return err
	}

	log.Info("Sync finished",
		zap.Int("sites", len(report.Sites)),
		zap.Int("created", len(report.Created)),
		zap.Int("failed", len(report.Failures)))
	return nil
}
