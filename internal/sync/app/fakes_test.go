package app

import (
	"context"
	"fmt"

	"github.com/rancher/fleet-helm-charts/internal/sync/domain"
)

// Fakes implementing the driven ports for service tests.

type fakeReleases struct {
	releases domain.ReleaseSet
	latest   domain.Release
	err      error
}

func (f *fakeReleases) ListReleases(_ context.Context) (domain.ReleaseSet, error) {
	return f.releases, f.err
}

func (f *fakeReleases) LatestRelease(_ context.Context) (domain.Release, error) {
	return f.latest, f.err
}

type fakeChartStore struct {
	root     string
	lead     string
	versions map[string]string // chart -> recorded version
	removed  []string
}

func (f *fakeChartStore) CurrentVersion(_ context.Context) (string, error) {
	v, ok := f.versions[f.lead]
	if !ok {
		return "", fmt.Errorf("chart %s not present", f.lead)
	}
	return v, nil
}

func (f *fakeChartStore) Metadata(_ context.Context, chart string) (domain.ChartMetadata, error) {
	v, ok := f.versions[chart]
	if !ok {
		return domain.ChartMetadata{}, fmt.Errorf("chart %s not present", chart)
	}
	return domain.ChartMetadata{Name: chart, Version: v, AppVersion: v}, nil
}

func (f *fakeChartStore) Remove(_ context.Context, chart string) error {
	delete(f.versions, chart)
	f.removed = append(f.removed, chart)
	return nil
}

func (f *fakeChartStore) Root() string { return f.root }

type fakePackages struct {
	failing    map[string]bool // "chart-version" -> download/extract fails
	downloaded []string
	extracted  []string
	onExtract  func(chart, version string) // applied on successful extraction
}

func (f *fakePackages) key(chart, version string) string { return chart + "-" + version }

func (f *fakePackages) Download(_ context.Context, chart, version, _ string) (domain.ChartPackage, error) {
	if f.failing[f.key(chart, version)] {
		return domain.ChartPackage{}, domain.NewNotFoundError(chart, version)
	}
	f.downloaded = append(f.downloaded, f.key(chart, version))
	return domain.ChartPackage{
		Metadata: domain.ChartMetadata{Name: chart, Version: version, AppVersion: version},
		Filename: fmt.Sprintf("%s-%s.tgz", chart, version),
		Digest:   "digest-" + f.key(chart, version),
		URL:      fmt.Sprintf("https://example.test/v%s/%s-%s.tgz", version, chart, version),
	}, nil
}

func (f *fakePackages) ExtractChart(_ context.Context, chart, version, _ string) error {
	if f.failing[f.key(chart, version)] {
		return domain.NewNotFoundError(chart, version)
	}
	f.extracted = append(f.extracted, f.key(chart, version))
	if f.onExtract != nil {
		f.onExtract(chart, version)
	}
	return nil
}

type fakeIndexStore struct {
	index   *domain.IndexFile
	saved   int
	loadErr error
	saveErr error
}

func (f *fakeIndexStore) Load(_ context.Context) (*domain.IndexFile, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.index, nil
}

func (f *fakeIndexStore) Save(_ context.Context, index *domain.IndexFile) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.index = index
	f.saved++
	return nil
}

type fakeProposals struct {
	opened []domain.Proposal
	url    string
	err    error
}

func (f *fakeProposals) OpenPullRequest(_ context.Context, p domain.Proposal) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.opened = append(f.opened, p)
	return f.url, nil
}

type fakeCheckout struct {
	path      string
	refreshed int
	branches  []string
	pushes    []string // commit messages
}

func (f *fakeCheckout) Refresh(_ context.Context) error {
	f.refreshed++
	return nil
}

func (f *fakeCheckout) SwitchBranch(_ context.Context, name string) error {
	f.branches = append(f.branches, name)
	return nil
}

func (f *fakeCheckout) CommitAndPush(_ context.Context, _, message string) error {
	f.pushes = append(f.pushes, message)
	return nil
}

func (f *fakeCheckout) Path() string { return f.path }

type fakeDiff struct{}

func (fakeDiff) ComputeDiff(fromName, toName string, from, to []byte) string {
	if string(from) == string(to) {
		return ""
	}
	return fmt.Sprintf("--- %s\n+++ %s\n@@ -1 +1 @@\n-%s\n+%s", fromName, toName, from, to)
}
