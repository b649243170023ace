package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/rancher/fleet-helm-charts/internal/sync/domain"
	"github.com/rancher/fleet-helm-charts/internal/sync/ports"
)

// SyncService implements ports.SyncUseCase by reconciling the chart
// index against the upstream releases: every release the retention
// policy keeps ends up listed, with its packages' digests and download
// URLs.
type SyncService struct {
	charts   []string
	releases ports.ReleaseSourcePort
	packages ports.PackagePort
	index    ports.IndexStorePort
	policy   domain.RetentionPolicy
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time

	syncedCounter metric.Int64Counter
	failedCounter metric.Int64Counter
}

// NewSyncService creates a SyncService wired with its driven ports.
// The lead chart (first in charts) defines which index entries count
// as "existing versions".
func NewSyncService(
	charts []string,
	releases ports.ReleaseSourcePort,
	packages ports.PackagePort,
	index ports.IndexStorePort,
	policy domain.RetentionPolicy,
	logger *slog.Logger,
	meter metric.Meter,
	tracer trace.Tracer,
) *SyncService {
	synced, _ := meter.Int64Counter("charts_sync_versions_synced_total")
	failed, _ := meter.Int64Counter("charts_sync_versions_failed_total")
	return &SyncService{
		charts:        charts,
		releases:      releases,
		packages:      packages,
		index:         index,
		policy:        policy,
		logger:        logger,
		tracer:        tracer,
		now:           time.Now,
		syncedCounter: synced,
		failedCounter: failed,
	}
}

// Execute runs one sync pass. A version whose packages cannot all be
// fetched is reported as failed and skipped; it does not abort the
// pass.
func (s *SyncService) Execute(ctx context.Context) (domain.SyncReport, error) {
	ctx, span := s.tracer.Start(ctx, "sync.Execute")
	defer span.End()

	upstream, err := s.releases.ListReleases(ctx)
	if err != nil {
		return domain.SyncReport{}, fmt.Errorf("listing upstream releases: %w", err)
	}
	s.logger.Info("fetched upstream releases", "count", len(upstream))

	idx, err := s.index.Load(ctx)
	if err != nil {
		return domain.SyncReport{}, fmt.Errorf("loading index: %w", err)
	}
	existing := idx.Versions(s.charts[0])
	s.logger.Info("loaded existing index versions", "count", len(existing))

	missing, skipped := s.missingVersions(upstream, existing)
	if len(missing) == 0 {
		s.logger.Info("index already holds every kept release", "skipped", skipped)
		return domain.SyncReport{Skipped: skipped}, nil
	}

	s.logger.Info("found missing versions", "count", len(missing), "skipped", skipped)

	staging, err := os.MkdirTemp("", "charts-sync-*")
	if err != nil {
		return domain.SyncReport{}, fmt.Errorf("creating staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	report := domain.SyncReport{Skipped: skipped}
	for _, version := range missing {
		entries, err := s.fetchVersion(ctx, version, staging)
		if err != nil {
			s.logger.Error("failed to fetch version, skipping", "version", version, "error", err)
			report.Failed = append(report.Failed, version)
			s.failedCounter.Add(ctx, 1)
			continue
		}
		for _, e := range entries {
			idx.Add(e)
		}
		report.Synced = append(report.Synced, version)
		s.syncedCounter.Add(ctx, 1)
		s.logger.Info("version added to index", "version", version)
	}

	if len(report.Synced) == 0 {
		return report, nil
	}

	idx.SortEntries()
	idx.Generated = s.now().UTC().Format(time.RFC3339Nano)
	if err := s.index.Save(ctx, idx); err != nil {
		return report, fmt.Errorf("saving index: %w", err)
	}
	s.logger.Info("index updated", "synced", len(report.Synced), "failed", len(report.Failed))

	return report, nil
}

// missingVersions applies the retention policy over the union of the
// upstream releases and the already-indexed versions, then returns the
// kept upstream versions the index lacks, newest first, plus the count
// of upstream versions the policy excluded. Indexed versions absent
// upstream are treated as long past the dev cutoff so stale candidates
// cannot keep a base occupied.
func (s *SyncService) missingVersions(upstream domain.ReleaseSet, existing map[string]struct{}) ([]string, int) {
	ancient := s.now().UTC().Add(-s.policy.MaxDevAge - 365*24*time.Hour)
	combined := make(domain.ReleaseSet, len(upstream)+len(existing))
	for v, published := range upstream {
		combined[v] = published
	}
	for v := range existing {
		if _, ok := combined[v]; !ok {
			combined[v] = ancient
		}
	}

	kept := s.policy.Keep(combined)

	var missing []string
	skipped := 0
	for v := range upstream {
		if _, ok := kept[v]; !ok {
			skipped++
			continue
		}
		if _, indexed := existing[v]; indexed {
			continue
		}
		missing = append(missing, v)
	}
	sort.Slice(missing, func(i, j int) bool {
		return domain.CompareVersions(missing[i], missing[j]) > 0
	})
	return missing, skipped
}

// fetchVersion downloads every chart package for a version and builds
// their index entries. All packages must succeed for the version to be
// indexed at all.
func (s *SyncService) fetchVersion(ctx context.Context, version, staging string) ([]*domain.IndexEntry, error) {
	created := s.now().UTC().Format(time.RFC3339Nano)
	entries := make([]*domain.IndexEntry, 0, len(s.charts))
	for _, chart := range s.charts {
		pkg, err := s.packages.Download(ctx, chart, version, staging)
		if err != nil {
			return nil, fmt.Errorf("downloading %s-%s: %w", chart, version, err)
		}
		entries = append(entries, &domain.IndexEntry{
			Name:       pkg.Metadata.Name,
			Version:    pkg.Metadata.Version,
			AppVersion: pkg.Metadata.AppVersion,
			Created:    created,
			Digest:     pkg.Digest,
			URLs:       []string{pkg.URL},
		})
	}
	return entries, nil
}
