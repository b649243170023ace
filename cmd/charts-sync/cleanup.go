package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	indexfile "github.com/rancher/fleet-helm-charts/internal/sync/adapters/index_file"
	"github.com/rancher/fleet-helm-charts/internal/sync/app"
)

func newCleanupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "remove stale dev versions from the chart index",
		Long:  "cleanup prunes rc, beta and alpha versions from index.yaml once a final\nrelease exists for their base version or they age past the retention window.",
		RunE:  runCleanup,
	}
	cmd.Flags().String("removed-file", "removed_versions.txt", "file listing the removed versions, written when anything was removed")
	return cmd
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.tel.Shutdown(ctx) //nolint:errcheck

	service := app.NewCleanupService(indexfile.New(d.cfg.IndexPath), d.policy, d.logger)

	removed, err := service.Execute(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d old version(s)\n", len(removed))

	if len(removed) > 0 {
		versions := make([]string, 0, len(removed))
		for _, r := range removed {
			versions = append(versions, r.Version)
		}
		removedFile := viper.GetString("removed-file")
		if err := os.WriteFile(removedFile, []byte(strings.Join(versions, ",")), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", removedFile, err)
		}
	}
	return nil
}
