package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/favor-advisor/internal/analysis"
	"github.com/jonathan/favor-advisor/internal/config"
	"github.com/jonathan/favor-advisor/internal/fetch"
	"github.com/jonathan/favor-advisor/internal/images"
	"github.com/jonathan/favor-advisor/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing the catalog, gift analysis and the junk exclusion list.
Exclusion updates require ADMIN_PASSWORD_HASH and SESSION_SECRET; stored runs require a database.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	port := a.cfg.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	cat, source, err := a.catalog(ctx)
	if err != nil {
		return err
	}
	characters, gifts := cat.Len()
	a.logger.Info("catalog loaded",
		zap.String("source", source),
		zap.Int("characters", characters),
		zap.Int("gifts", gifts),
	)

	names, err := exclusionNames(a.cfg)
	if err != nil {
		return err
	}
	exclusions := analysis.NewExclusionStore(names...)

	if a.cfg.JunkExclusionsFile != "" {
		watcher, err := config.NewExclusionWatcher(a.cfg.JunkExclusionsFile, exclusions, a.logger)
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	srvConfig := server.Config{
		Port:           port,
		Catalog:        cat,
		Exclusions:     exclusions,
		ExclusionsFile: a.cfg.JunkExclusionsFile,
		Collator:       a.collator,
		URLs:           images.NewURLBuilder(a.cfg.CatalogBaseURL),
		Images:         images.NewCache(fetch.NewClient(fetch.DefaultOptions())),
		Logger:         a.logger,
	}
	if a.database != nil {
		srvConfig.Runs = a.database
	}

	admin, err := config.NewAdminConfig()
	switch {
	case errors.Is(err, config.ErrAdminDisabled):
		a.logger.Info("admin access disabled", zap.String("reason", err.Error()))
	case err != nil:
		return fmt.Errorf("failed to load admin config: %w", err)
	default:
		srvConfig.Admin = admin
	}

	srv, err := server.New(srvConfig)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
