// Package gitrepo manages the local git clone the watcher prepares
// bump proposals in: clone, refresh, work branches, commit and push.
package gitrepo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

// GitRepo owns a single clone of the chart repository. All operations
// shell out to the git binary and are serialized.
type GitRepo struct {
	remoteURL     string
	localPath     string
	defaultBranch string
	userName      string
	userEmail     string
	logger        *slog.Logger

	mu sync.Mutex
}

// New creates a GitRepo committing as the given identity. The identity
// is passed on each commit, so the environment needs no git config.
// No I/O is performed until Refresh.
func New(remoteURL, localPath, defaultBranch, userName, userEmail string, logger *slog.Logger) *GitRepo {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &GitRepo{
		remoteURL:     remoteURL,
		localPath:     localPath,
		defaultBranch: defaultBranch,
		userName:      userName,
		userEmail:     userEmail,
		logger:        logger,
	}
}

// Path returns the clone's local filesystem path.
func (r *GitRepo) Path() string {
	return r.localPath
}

// Refresh clones the repository if needed, then resets the working
// tree to the remote default branch, discarding local state.
func (r *GitRepo) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(filepath.Join(r.localPath, ".git")); err != nil {
		r.logger.Info("cloning chart repository", "remote", r.remoteURL, "path", r.localPath)
		if out, err := r.git(ctx, "", "clone", "--branch", r.defaultBranch, r.remoteURL, r.localPath); err != nil {
			return fmt.Errorf("git clone failed: %w\noutput: %s", err, out)
		}
		return nil
	}

	r.logger.Info("refreshing chart repository", "path", r.localPath)
	if out, err := r.git(ctx, r.localPath, "fetch", "origin", r.defaultBranch); err != nil {
		return fmt.Errorf("git fetch failed: %w\noutput: %s", err, out)
	}
	if out, err := r.git(ctx, r.localPath, "checkout", r.defaultBranch); err != nil {
		return fmt.Errorf("git checkout failed: %w\noutput: %s", err, out)
	}
	if out, err := r.git(ctx, r.localPath, "reset", "--hard", "origin/"+r.defaultBranch); err != nil {
		return fmt.Errorf("git reset failed: %w\noutput: %s", err, out)
	}
	if out, err := r.git(ctx, r.localPath, "clean", "-fd"); err != nil {
		return fmt.Errorf("git clean failed: %w\noutput: %s", err, out)
	}
	return nil
}

// SwitchBranch creates or resets a work branch off the remote default
// branch.
func (r *GitRepo) SwitchBranch(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if out, err := r.git(ctx, r.localPath, "checkout", "-B", name, "origin/"+r.defaultBranch); err != nil {
		return fmt.Errorf("git checkout -B %s failed: %w\noutput: %s", name, err, out)
	}
	return nil
}

// CommitAndPush stages everything, commits with the message, and
// force-pushes the branch. The branch is bot-owned, so a force push
// replaces stale proposal state.
func (r *GitRepo) CommitAndPush(ctx context.Context, branch, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if out, err := r.git(ctx, r.localPath, "add", "-A"); err != nil {
		return fmt.Errorf("git add failed: %w\noutput: %s", err, out)
	}
	commitArgs := []string{
		"-c", "user.name=" + r.userName,
		"-c", "user.email=" + r.userEmail,
		"commit", "-m", message,
	}
	if out, err := r.git(ctx, r.localPath, commitArgs...); err != nil {
		return fmt.Errorf("git commit failed: %w\noutput: %s", err, out)
	}
	if out, err := r.git(ctx, r.localPath, "push", "--force", "-u", "origin", branch); err != nil {
		return fmt.Errorf("git push failed: %w\noutput: %s", err, out)
	}
	r.logger.Info("branch pushed", "branch", branch)
	return nil
}

// git runs a git command, optionally inside dir, and returns the
// combined output.
func (r *GitRepo) git(ctx context.Context, dir string, args ...string) (string, error) {
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	//nolint:gosec // G204: arguments come from trusted config, not user input
	cmd := exec.CommandContext(ctx, "git", args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}
