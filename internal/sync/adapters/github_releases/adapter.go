// Package githubreleases lists upstream releases via the GitHub API.
package githubreleases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/rancher/fleet-helm-charts/internal/sync/domain"
)

const releasesPerPage = 100

// Adapter implements ports.ReleaseSourcePort against the releases API
// of an upstream repository.
type Adapter struct {
	client *gogithub.Client
	owner  string
	repo   string
	logger *slog.Logger
}

// New creates a release source for the given "owner/repo" slug.
func New(client *gogithub.Client, upstream string, logger *slog.Logger) (*Adapter, error) {
	owner, repo, ok := strings.Cut(upstream, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid upstream repository %q, expected owner/repo", upstream)
	}
	return &Adapter{client: client, owner: owner, repo: repo, logger: logger}, nil
}

// ListReleases returns every releasable version with its publication
// time. Draft releases and experiment/hotfix tags are skipped.
func (a *Adapter) ListReleases(ctx context.Context) (domain.ReleaseSet, error) {
	releases := make(domain.ReleaseSet)
	opts := &gogithub.ListOptions{PerPage: releasesPerPage}

	for {
		page, resp, err := a.client.Repositories.ListReleases(ctx, a.owner, a.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing releases for %s/%s: %w", a.owner, a.repo, err)
		}
		for _, r := range page {
			if r.GetDraft() || r.PublishedAt == nil {
				continue
			}
			version, err := domain.ParseReleaseTag(r.GetTagName())
			if err != nil {
				a.logger.Debug("skipping release", "tag", r.GetTagName(), "reason", err)
				continue
			}
			releases[version] = r.GetPublishedAt().Time.UTC()
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	a.logger.Info("listed upstream releases", "upstream", a.owner+"/"+a.repo, "count", len(releases))
	return releases, nil
}

// LatestRelease returns the newest stable release as marked by GitHub.
func (a *Adapter) LatestRelease(ctx context.Context) (domain.Release, error) {
	r, _, err := a.client.Repositories.GetLatestRelease(ctx, a.owner, a.repo)
	if err != nil {
		return domain.Release{}, fmt.Errorf("fetching latest release for %s/%s: %w", a.owner, a.repo, err)
	}
	version, err := domain.ParseReleaseTag(r.GetTagName())
	if err != nil {
		return domain.Release{}, fmt.Errorf("latest release tag: %w", err)
	}
	return domain.Release{
		Version:     version,
		PublishedAt: r.GetPublishedAt().Time.UTC(),
	}, nil
}
