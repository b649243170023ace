// Package main provides the charts-syncd release watcher: it polls
// upstream Fleet releases and opens bump pull requests against the
// chart repository when a new version ships.
package main

import (
	"context"
	"fmt"
	"log/slog"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/rancher/fleet-helm-charts/internal/platform/config"
	ghclient "github.com/rancher/fleet-helm-charts/internal/platform/github"
	"github.com/rancher/fleet-helm-charts/internal/platform/gitrepo"
	"github.com/rancher/fleet-helm-charts/internal/platform/telemetry"
	chartdir "github.com/rancher/fleet-helm-charts/internal/sync/adapters/chart_dir"
	githubpr "github.com/rancher/fleet-helm-charts/internal/sync/adapters/github_pr"
	githubreleases "github.com/rancher/fleet-helm-charts/internal/sync/adapters/github_releases"
	linediff "github.com/rancher/fleet-helm-charts/internal/sync/adapters/line_diff"
	releasearchive "github.com/rancher/fleet-helm-charts/internal/sync/adapters/release_archive"
	"github.com/rancher/fleet-helm-charts/internal/sync/app"
	"github.com/rancher/fleet-helm-charts/internal/sync/ports"
)

// Container holds all application dependencies.
type Container struct {
	Config       config.Config
	Logger       *slog.Logger
	Telemetry    *telemetry.Telemetry
	GitHubClient *gogithub.Client
	Watcher      *app.WatchService
}

// NewContainer builds and wires all dependencies.
func NewContainer(ctx context.Context, cfg config.Config, log *slog.Logger) (*Container, error) {
	tel, err := telemetry.New(ctx, cfg.OTelEnabled)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	var githubClient *gogithub.Client
	if cfg.UsesAppAuth() {
		githubClient, err = ghclient.NewAppClient(cfg.GitHubAppID, cfg.GitHubInstallationID, cfg.GitHubPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("creating github client: %w", err)
		}
	} else {
		githubClient = ghclient.NewTokenClient(cfg.GitHubToken)
	}

	releases, err := githubreleases.New(githubClient, cfg.UpstreamRepo, log)
	if err != nil {
		return nil, fmt.Errorf("creating release source: %w", err)
	}

	proposals, err := githubpr.New(githubClient, cfg.ChartRepo, log)
	if err != nil {
		return nil, fmt.Errorf("creating proposal adapter: %w", err)
	}

	checkout := gitrepo.New(remoteURL(cfg), cfg.CheckoutPath, cfg.BaseBranch, cfg.GitUserName, cfg.GitUserEmail, log)

	packages := releasearchive.New(cfg.UpstreamRepo, log)
	newBump := func(chartsDir string) ports.BumpUseCase {
		return app.NewBumpService(
			cfg.Charts,
			chartdir.New(chartsDir, cfg.Charts[0]),
			packages,
			linediff.New(),
			log,
		)
	}

	watcher := app.NewWatchService(
		releases,
		checkout,
		proposals,
		newBump,
		cfg.ChartsDir,
		cfg.BaseBranch,
		log,
	)

	return &Container{
		Config:       cfg,
		Logger:       log,
		Telemetry:    tel,
		GitHubClient: githubClient,
		Watcher:      watcher,
	}, nil
}

// remoteURL builds the push URL for the chart repository. With a token
// configured the URL embeds it so git can push without extra setup.
func remoteURL(cfg config.Config) string {
	if cfg.GitHubToken != "" {
		return fmt.Sprintf("https://x-access-token:%s@github.com/%s.git", cfg.GitHubToken, cfg.ChartRepo)
	}
	return fmt.Sprintf("https://github.com/%s.git", cfg.ChartRepo)
}
