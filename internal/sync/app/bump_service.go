package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rancher/fleet-helm-charts/internal/sync/domain"
	"github.com/rancher/fleet-helm-charts/internal/sync/ports"
)

// BumpService implements ports.BumpUseCase: it replaces the local
// chart directories with the packages published for a given upstream
// release and verifies the recorded versions afterwards.
type BumpService struct {
	charts   []string // chart names; the first is the lead chart whose version is authoritative
	store    ports.ChartStorePort
	packages ports.PackagePort
	differ   ports.DiffPort
	logger   *slog.Logger
}

// NewBumpService creates a BumpService wired with its driven ports.
func NewBumpService(
	charts []string,
	store ports.ChartStorePort,
	packages ports.PackagePort,
	differ ports.DiffPort,
	logger *slog.Logger,
) *BumpService {
	return &BumpService{
		charts:   charts,
		store:    store,
		packages: packages,
		differ:   differ,
		logger:   logger,
	}
}

// Execute runs the bump workflow. An empty version and a version equal
// to the currently recorded one are successful no-ops. With dryRun set
// the filesystem is untouched and the result carries a preview diff.
func (s *BumpService) Execute(ctx context.Context, version string, dryRun bool) (domain.BumpResult, error) {
	if version == "" {
		s.logger.Info("no version provided, nothing to do")
		return domain.BumpResult{}, nil
	}

	current, err := s.store.CurrentVersion(ctx)
	if err != nil {
		return domain.BumpResult{}, fmt.Errorf("reading current chart version: %w", err)
	}

	if version == current {
		s.logger.Info("charts already up to date", "version", version)
		return domain.BumpResult{Previous: current, Next: version}, nil
	}

	if dryRun {
		preview := s.differ.ComputeDiff(
			fmt.Sprintf("Chart.yaml (v%s)", current),
			fmt.Sprintf("Chart.yaml (v%s)", version),
			[]byte("version: "+current+"\n"),
			[]byte("version: "+version+"\n"),
		)
		s.logger.Info("dry run, would update charts", "from", current, "to", version)
		return domain.BumpResult{Changed: true, Previous: current, Next: version, Preview: preview}, nil
	}

	s.logger.Info("updating charts", "from", current, "to", version)

	for _, chart := range s.charts {
		if err := s.store.Remove(ctx, chart); err != nil {
			return domain.BumpResult{}, fmt.Errorf("removing chart %s: %w", chart, err)
		}
		if err := s.packages.ExtractChart(ctx, chart, version, s.store.Root()); err != nil {
			return domain.BumpResult{}, fmt.Errorf("extracting chart %s: %w", chart, err)
		}
		s.logger.Info("chart replaced", "chart", chart, "version", version)
	}

	for _, chart := range s.charts {
		md, err := s.store.Metadata(ctx, chart)
		if err != nil {
			return domain.BumpResult{}, fmt.Errorf("verifying chart %s: %w", chart, err)
		}
		if md.Version != version {
			return domain.BumpResult{}, fmt.Errorf(
				"chart %s reports version %s after update, expected %s", chart, md.Version, version)
		}
	}

	return domain.BumpResult{Changed: true, Previous: current, Next: version}, nil
}
