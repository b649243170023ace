package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rancher/fleet-helm-charts/internal/sync/domain"
	"github.com/rancher/fleet-helm-charts/internal/sync/ports"
)

// CleanupService implements ports.CleanupUseCase by applying the
// retention policy to every chart in the index and dropping the
// entries that fall outside it.
type CleanupService struct {
	index  ports.IndexStorePort
	policy domain.RetentionPolicy
	logger *slog.Logger
}

// NewCleanupService creates a CleanupService.
func NewCleanupService(index ports.IndexStorePort, policy domain.RetentionPolicy, logger *slog.Logger) *CleanupService {
	return &CleanupService{index: index, policy: policy, logger: logger}
}

// Execute loads the index, prunes it, and saves it back when anything
// was removed. The removed versions are returned for reporting.
func (s *CleanupService) Execute(ctx context.Context) ([]domain.RemovedVersion, error) {
	idx, err := s.index.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading index: %w", err)
	}

	keep := make(map[string]map[string]struct{}, len(idx.Entries))
	for chart, entries := range idx.Entries {
		versions := make(domain.ReleaseSet, len(entries))
		dev := make(map[string]bool, len(entries))
		base := make(map[string]string, len(entries))
		for _, e := range entries {
			created, err := e.CreatedTime()
			if err != nil {
				return nil, fmt.Errorf("chart %s: %w", chart, err)
			}
			versions[e.Version] = created
			dev[e.Version] = e.IsDev()
			base[e.Version] = e.BaseVersion()
		}
		keep[chart] = s.policy.KeepFunc(versions,
			func(v string) bool { return dev[v] },
			func(v string) string { return base[v] })
	}

	removed := idx.Prune(keep)
	for _, r := range removed {
		s.logger.Info("removing index entry", "chart", r.Chart, "version", r.Version)
	}

	if len(removed) == 0 {
		s.logger.Info("nothing to clean up")
		return nil, nil
	}

	if err := s.index.Save(ctx, idx); err != nil {
		return removed, fmt.Errorf("saving index: %w", err)
	}
	s.logger.Info("index cleaned", "removed", len(removed))
	return removed, nil
}
