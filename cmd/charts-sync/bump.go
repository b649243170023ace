package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	chartdir "github.com/rancher/fleet-helm-charts/internal/sync/adapters/chart_dir"
	linediff "github.com/rancher/fleet-helm-charts/internal/sync/adapters/line_diff"
	releasearchive "github.com/rancher/fleet-helm-charts/internal/sync/adapters/release_archive"
	"github.com/rancher/fleet-helm-charts/internal/sync/app"
)

func newBumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bump [version]",
		Short: "replace the chart directories with an upstream release",
		Long:  "bump downloads the fleet, fleet-crd and fleet-agent packages published for\nthe given version and replaces the local chart directories with them.\nWithout a version, or with the already-recorded version, nothing happens.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBump,
	}
	cmd.Flags().Bool("dry-run", false, "print the intended change without touching any file (also DRY_RUN=true)")
	return cmd
}

func runBump(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.tel.Shutdown(ctx) //nolint:errcheck

	var version string
	if len(args) > 0 {
		version = args[0]
	}
	if version == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "No version provided, nothing to do.")
		return nil
	}

	dryRun := d.cfg.DryRun || viper.GetBool("dry-run")

	store := chartdir.New(d.cfg.ChartsDir, d.cfg.Charts[0])
	packages := releasearchive.New(d.cfg.UpstreamRepo, d.logger)
	service := app.NewBumpService(d.cfg.Charts, store, packages, linediff.New(), d.logger)

	result, err := service.Execute(ctx, version, dryRun)
	if err != nil {
		return err
	}

	switch {
	case !result.Changed:
		fmt.Fprintf(cmd.OutOrStdout(), "Charts already at version %s.\n", version)
	case dryRun:
		fmt.Fprintf(cmd.OutOrStdout(), "Would update charts from %s to %s:\n%s\n", result.Previous, result.Next, result.Preview)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "Updated charts from %s to %s.\n", result.Previous, result.Next)
	}
	return nil
}
