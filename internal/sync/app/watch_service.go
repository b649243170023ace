package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/rancher/fleet-helm-charts/internal/sync/domain"
	"github.com/rancher/fleet-helm-charts/internal/sync/ports"
)

// BumpFactory builds a BumpUseCase bound to a charts directory. The
// watcher bumps inside its managed checkout, so the bump adapters must
// be re-rooted per run.
type BumpFactory func(chartsDir string) ports.BumpUseCase

// WatchService implements ports.WatchUseCase: it compares the latest
// upstream release against the version recorded in the chart
// repository and opens a bump pull request when they differ.
type WatchService struct {
	releases   ports.ReleaseSourcePort
	checkout   ports.CheckoutPort
	proposals  ports.ProposalPort
	newBump    BumpFactory
	chartsDir  string // relative to the checkout root
	baseBranch string
	logger     *slog.Logger

	mu       sync.Mutex
	last     domain.WatchResult
	lastTime time.Time
	lastErr  error
}

// NewWatchService creates a WatchService.
func NewWatchService(
	releases ports.ReleaseSourcePort,
	checkout ports.CheckoutPort,
	proposals ports.ProposalPort,
	newBump BumpFactory,
	chartsDir, baseBranch string,
	logger *slog.Logger,
) *WatchService {
	return &WatchService{
		releases:   releases,
		checkout:   checkout,
		proposals:  proposals,
		newBump:    newBump,
		chartsDir:  chartsDir,
		baseBranch: baseBranch,
		logger:     logger,
	}
}

// RunOnce performs a single poll-and-propose cycle.
func (s *WatchService) RunOnce(ctx context.Context) (domain.WatchResult, error) {
	result, err := s.runOnce(ctx)
	s.mu.Lock()
	s.last, s.lastTime, s.lastErr = result, time.Now(), err
	s.mu.Unlock()
	return result, err
}

func (s *WatchService) runOnce(ctx context.Context) (domain.WatchResult, error) {
	latest, err := s.releases.LatestRelease(ctx)
	if err != nil {
		return domain.WatchResult{}, fmt.Errorf("fetching latest release: %w", err)
	}

	if err := s.checkout.Refresh(ctx); err != nil {
		return domain.WatchResult{}, fmt.Errorf("refreshing checkout: %w", err)
	}

	bump := s.newBump(filepath.Join(s.checkout.Path(), s.chartsDir))

	probe, err := bump.Execute(ctx, latest.Version, true)
	if err != nil {
		return domain.WatchResult{}, fmt.Errorf("probing bump: %w", err)
	}
	result := domain.WatchResult{
		LatestVersion:  latest.Version,
		CurrentVersion: probe.Previous,
	}
	if !probe.Changed {
		s.logger.Info("charts match latest release", "version", latest.Version)
		return result, nil
	}

	branch := "update-fleet-v" + latest.Version
	s.logger.Info("new release detected, preparing proposal",
		"current", probe.Previous, "latest", latest.Version, "branch", branch)

	if err := s.checkout.SwitchBranch(ctx, branch); err != nil {
		return result, fmt.Errorf("switching to branch %s: %w", branch, err)
	}

	if _, err := bump.Execute(ctx, latest.Version, false); err != nil {
		return result, fmt.Errorf("bumping charts: %w", err)
	}

	title := fmt.Sprintf("Update Fleet to v%s", latest.Version)
	if err := s.checkout.CommitAndPush(ctx, branch, title); err != nil {
		return result, fmt.Errorf("pushing branch %s: %w", branch, err)
	}

	url, err := s.proposals.OpenPullRequest(ctx, domain.Proposal{
		Branch: branch,
		Base:   s.baseBranch,
		Title:  title,
		Body: fmt.Sprintf(
			"Automated update of the fleet, fleet-crd and fleet-agent charts from %s to %s.",
			probe.Previous, latest.Version),
	})
	if err != nil {
		return result, fmt.Errorf("opening pull request: %w", err)
	}

	result.ProposalURL = url
	s.logger.Info("proposal opened", "url", url)
	return result, nil
}

// Run polls on the given interval until the context is cancelled. An
// initial cycle runs immediately.
func (s *WatchService) Run(ctx context.Context, interval time.Duration) {
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("watch cycle failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("watch cycle failed", "error", err)
			}
		case <-ctx.Done():
			s.logger.Info("stopping release watcher")
			return
		}
	}
}

// Status returns the result of the most recent cycle.
func (s *WatchService) Status() (result domain.WatchResult, at time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastTime, s.lastErr
}
