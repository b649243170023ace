// Package githubpr opens bump pull requests via the GitHub API.
package githubpr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/rancher/fleet-helm-charts/internal/sync/domain"
)

// Adapter implements ports.ProposalPort against the chart repository.
type Adapter struct {
	client *gogithub.Client
	owner  string
	repo   string
	logger *slog.Logger
}

// New creates a proposal adapter for the "owner/repo" chart repository
// slug.
func New(client *gogithub.Client, chartRepo string, logger *slog.Logger) (*Adapter, error) {
	owner, repo, ok := strings.Cut(chartRepo, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid chart repository %q, expected owner/repo", chartRepo)
	}
	return &Adapter{client: client, owner: owner, repo: repo, logger: logger}, nil
}

// OpenPullRequest opens a PR for the pushed branch. When a PR with the
// same head already exists its URL is returned instead of creating a
// duplicate.
func (a *Adapter) OpenPullRequest(ctx context.Context, proposal domain.Proposal) (string, error) {
	existing, _, err := a.client.PullRequests.List(ctx, a.owner, a.repo, &gogithub.PullRequestListOptions{
		State: "open",
		Head:  a.owner + ":" + proposal.Branch,
		Base:  proposal.Base,
	})
	if err != nil {
		return "", fmt.Errorf("listing pull requests: %w", err)
	}
	if len(existing) > 0 {
		a.logger.Info("pull request already open", "branch", proposal.Branch, "url", existing[0].GetHTMLURL())
		return existing[0].GetHTMLURL(), nil
	}

	pr, _, err := a.client.PullRequests.Create(ctx, a.owner, a.repo, &gogithub.NewPullRequest{
		Title: gogithub.Ptr(proposal.Title),
		Head:  gogithub.Ptr(proposal.Branch),
		Base:  gogithub.Ptr(proposal.Base),
		Body:  gogithub.Ptr(proposal.Body),
	})
	if err != nil {
		return "", fmt.Errorf("creating pull request: %w", err)
	}

	a.logger.Info("pull request created", "number", pr.GetNumber(), "url", pr.GetHTMLURL())
	return pr.GetHTMLURL(), nil
}
