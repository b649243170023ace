package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	githubreleases "github.com/rancher/fleet-helm-charts/internal/sync/adapters/github_releases"
	indexfile "github.com/rancher/fleet-helm-charts/internal/sync/adapters/index_file"
	releasearchive "github.com/rancher/fleet-helm-charts/internal/sync/adapters/release_archive"
	"github.com/rancher/fleet-helm-charts/internal/sync/app"
)

func newSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "sync upstream releases into the chart index",
		Long:  "sync fetches the upstream release list, downloads the chart packages the\nretention policy keeps, and merges them into index.yaml.",
		RunE:  runSync,
	}
	cmd.Flags().String("synced-file", "synced_versions.txt", "file listing the synced versions, written when anything was synced")
	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.tel.Shutdown(ctx) //nolint:errcheck

	client, err := d.githubClient()
	if err != nil {
		return err
	}
	releases, err := githubreleases.New(client, d.cfg.UpstreamRepo, d.logger)
	if err != nil {
		return err
	}
	packages := releasearchive.New(d.cfg.UpstreamRepo, d.logger)
	index := indexfile.New(d.cfg.IndexPath)

	service := app.NewSyncService(
		d.cfg.Charts, releases, packages, index,
		d.policy, d.logger, d.tel.Meter, d.tel.Tracer,
	)

	report, err := service.Execute(ctx)
	if err != nil {
		return err
	}

	if len(report.Synced) == 0 && len(report.Failed) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "All upstream releases are already in the index.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Successfully added: %d, Failed: %d\n", len(report.Synced), len(report.Failed))

	if len(report.Synced) > 0 {
		syncedFile := viper.GetString("synced-file")
		if err := os.WriteFile(syncedFile, []byte(strings.Join(report.Synced, ",")), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", syncedFile, err)
		}
	}
	return nil
}
