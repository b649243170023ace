// Package main provides the charts-sync CLI for managing the Fleet
// Helm chart repository: bumping chart directories to an upstream
// release, syncing releases into index.yaml, and cleaning up old
// dev-channel versions.
package main

import (
	"context"
	"fmt"
	"log/slog"

	gogithub "github.com/google/go-github/v68/github"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rancher/fleet-helm-charts/internal/platform/config"
	ghclient "github.com/rancher/fleet-helm-charts/internal/platform/github"
	"github.com/rancher/fleet-helm-charts/internal/platform/logger"
	"github.com/rancher/fleet-helm-charts/internal/platform/telemetry"
	"github.com/rancher/fleet-helm-charts/internal/sync/domain"
)

// NewRootCommand builds the charts-sync command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "charts-sync",
		Short:        "manage the Fleet Helm chart repository",
		Long:         "charts-sync keeps the Fleet Helm chart repository in step with upstream releases:\nit bumps the chart directories, syncs published releases into index.yaml, and\nprunes stale release-candidate versions.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			viper.AutomaticEnv()
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().String("manifest", ".charts-sync.yaml", "repository manifest with sync settings, ignored when absent")
	cmd.PersistentFlags().String("upstream", "", "upstream releases repository as owner/repo (default rancher/fleet)")
	cmd.PersistentFlags().String("charts-dir", "", "directory holding the chart subdirectories (default charts)")
	cmd.PersistentFlags().String("index", "", "path of the chart index file (default index.yaml)")
	cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newBumpCommand(),
		newSyncCommand(),
		newCleanupCommand(),
	)

	return cmd
}

// deps bundles the wiring every subcommand needs.
type deps struct {
	cfg    config.Config
	logger *slog.Logger
	tel    *telemetry.Telemetry
	policy domain.RetentionPolicy
}

// buildDeps loads configuration (env first, then the repository
// manifest, flags last) and initializes the ambient stack.
func buildDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ApplyManifest(viper.GetString("manifest")); err != nil {
		return nil, err
	}

	if v := viper.GetString("upstream"); v != "" {
		cfg.UpstreamRepo = v
	}
	if v := viper.GetString("charts-dir"); v != "" {
		cfg.ChartsDir = v
	}
	if v := viper.GetString("index"); v != "" {
		cfg.IndexPath = v
	}
	if v := viper.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}

	log := logger.New(cfg.LogLevel)

	tel, err := telemetry.New(ctx, cfg.OTelEnabled)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	return &deps{
		cfg:    cfg,
		logger: log,
		tel:    tel,
		policy: domain.RetentionPolicy{MaxDevAge: cfg.DevVersionMaxAge},
	}, nil
}

// githubClient returns the API client matching the configured auth.
func (d *deps) githubClient() (*gogithub.Client, error) {
	if d.cfg.UsesAppAuth() {
		client, err := ghclient.NewAppClient(d.cfg.GitHubAppID, d.cfg.GitHubInstallationID, d.cfg.GitHubPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("creating github app client: %w", err)
		}
		return client, nil
	}
	return ghclient.NewTokenClient(d.cfg.GitHubToken), nil
}
