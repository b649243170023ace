package ports

import (
	"context"

	"github.com/rancher/fleet-helm-charts/internal/sync/domain"
)

// ReleaseSourcePort abstracts the upstream release listing.
type ReleaseSourcePort interface {
	// ListReleases returns all releasable upstream versions with their
	// publication times.
	ListReleases(ctx context.Context) (domain.ReleaseSet, error)
	// LatestRelease returns the newest releasable upstream version.
	LatestRelease(ctx context.Context) (domain.Release, error)
}

// PackagePort abstracts fetching published chart archives.
type PackagePort interface {
	// Download fetches the chart archive for a version into destDir and
	// returns its inspected form (metadata, digest, recorded URL).
	Download(ctx context.Context, chart, version, destDir string) (domain.ChartPackage, error)
	// ExtractChart fetches the archive and unpacks the chart directory
	// into destDir (producing destDir/{chart}/...).
	ExtractChart(ctx context.Context, chart, version, destDir string) error
}

// IndexStorePort abstracts loading and persisting the chart index.
type IndexStorePort interface {
	Load(ctx context.Context) (*domain.IndexFile, error)
	Save(ctx context.Context, index *domain.IndexFile) error
}

// ChartStorePort abstracts the local chart directories.
type ChartStorePort interface {
	// CurrentVersion reads the version recorded for the lead chart.
	CurrentVersion(ctx context.Context) (string, error)
	// Metadata reads a chart's Chart.yaml.
	Metadata(ctx context.Context, chart string) (domain.ChartMetadata, error)
	// Remove deletes a chart directory; missing directories are not an
	// error.
	Remove(ctx context.Context, chart string) error
	// Root returns the charts directory the store operates on.
	Root() string
}

// ProposalPort abstracts opening a pull request with a bump.
type ProposalPort interface {
	// OpenPullRequest opens a PR and returns its URL. When a PR for the
	// branch already exists, its URL is returned without creating a
	// duplicate.
	OpenPullRequest(ctx context.Context, proposal domain.Proposal) (string, error)
}

// DiffPort abstracts computing a textual diff between two documents,
// used for dry-run previews.
type DiffPort interface {
	ComputeDiff(fromName, toName string, from, to []byte) string
}

// CheckoutPort abstracts the managed git working copy the watcher
// prepares bump proposals in.
type CheckoutPort interface {
	// Refresh brings the checkout up to date with the default branch.
	Refresh(ctx context.Context) error
	// SwitchBranch creates (or resets) a work branch off the default
	// branch.
	SwitchBranch(ctx context.Context, name string) error
	// CommitAndPush stages everything, commits with the message, and
	// pushes the branch. Committing a clean tree is an error.
	CommitAndPush(ctx context.Context, branch, message string) error
	// Path returns the checkout's local filesystem path.
	Path() string
}
