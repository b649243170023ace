package ports

import (
	"context"

	"github.com/rancher/fleet-helm-charts/internal/sync/domain"
)

// BumpUseCase is the driving port for replacing the local chart
// directories with a given upstream release.
type BumpUseCase interface {
	Execute(ctx context.Context, version string, dryRun bool) (domain.BumpResult, error)
}

// SyncUseCase is the driving port for syncing upstream releases into
// the chart index.
type SyncUseCase interface {
	Execute(ctx context.Context) (domain.SyncReport, error)
}

// CleanupUseCase is the driving port for applying the retention policy
// to the chart index.
type CleanupUseCase interface {
	Execute(ctx context.Context) ([]domain.RemovedVersion, error)
}

// WatchUseCase is the driving port for one upstream poll: compare the
// latest release against the recorded chart version and open a bump
// proposal when they differ.
type WatchUseCase interface {
	RunOnce(ctx context.Context) (domain.WatchResult, error)
}
