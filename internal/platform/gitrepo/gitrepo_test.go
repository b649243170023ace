package gitrepo

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()

	repo := New("https://example.com/repo.git", "/tmp/test", "main", "bot", "bot@example.com", nil)

	if repo.remoteURL != "https://example.com/repo.git" {
		t.Errorf("remoteURL = %q, want %q", repo.remoteURL, "https://example.com/repo.git")
	}
	if repo.localPath != "/tmp/test" {
		t.Errorf("localPath = %q, want %q", repo.localPath, "/tmp/test")
	}
	if repo.userName != "bot" || repo.userEmail != "bot@example.com" {
		t.Errorf("identity = %q <%s>", repo.userName, repo.userEmail)
	}
	if repo.Path() != "/tmp/test" {
		t.Errorf("Path() = %q, want %q", repo.Path(), "/tmp/test")
	}
}

func TestRefresh_Clone(t *testing.T) {
	t.Parallel()

	remote := initRemoteRepo(t)
	cloneDir := filepath.Join(t.TempDir(), "clone")

	repo := newTestRepo(remote, cloneDir)

	if err := repo.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh (clone path) failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(cloneDir, ".git")); err != nil {
		t.Errorf("expected .git directory in clone: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cloneDir, "README.md")); err != nil {
		t.Errorf("expected README.md in clone: %v", err)
	}
}

func TestRefresh_DiscardsLocalState(t *testing.T) {
	t.Parallel()

	remote := initRemoteRepo(t)
	cloneDir := filepath.Join(t.TempDir(), "clone")

	repo := newTestRepo(remote, cloneDir)
	ctx := context.Background()

	if err := repo.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// Dirty the working tree with a modification and an untracked file.
	if err := os.WriteFile(filepath.Join(cloneDir, "README.md"), []byte("dirty"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cloneDir, "stray.txt"), []byte("stray"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := repo.Refresh(ctx); err != nil {
		t.Fatalf("second Refresh failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(cloneDir, "README.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "test" {
		t.Errorf("README.md = %q after Refresh, want original content", data)
	}
	if _, err := os.Stat(filepath.Join(cloneDir, "stray.txt")); !os.IsNotExist(err) {
		t.Error("untracked file should be cleaned by Refresh")
	}
}

func TestSwitchBranch_CommitAndPush(t *testing.T) {
	t.Parallel()

	remote := initRemoteRepo(t)
	cloneDir := filepath.Join(t.TempDir(), "clone")

	repo := newTestRepo(remote, cloneDir)
	ctx := context.Background()

	if err := repo.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if err := repo.SwitchBranch(ctx, "update-fleet-v0.11.0"); err != nil {
		t.Fatalf("SwitchBranch failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(cloneDir, "Chart.yaml"), []byte("version: 0.11.0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := repo.CommitAndPush(ctx, "update-fleet-v0.11.0", "Update Fleet to v0.11.0"); err != nil {
		t.Fatalf("CommitAndPush failed: %v", err)
	}

	out := gitOutput(t, remote, "branch", "--list", "update-fleet-v0.11.0")
	if !strings.Contains(out, "update-fleet-v0.11.0") {
		t.Errorf("remote branches = %q, want update-fleet-v0.11.0 present", out)
	}
	msg := gitOutput(t, remote, "log", "-1", "--format=%s", "update-fleet-v0.11.0")
	if strings.TrimSpace(msg) != "Update Fleet to v0.11.0" {
		t.Errorf("commit message = %q", strings.TrimSpace(msg))
	}
	// The configured identity must be used even when the environment
	// has no git config at all.
	author := gitOutput(t, remote, "log", "-1", "--format=%an <%ae>", "update-fleet-v0.11.0")
	if strings.TrimSpace(author) != "fleet-charts-bot <fleet-charts-bot@users.noreply.github.com>" {
		t.Errorf("commit author = %q", strings.TrimSpace(author))
	}
}

func newTestRepo(remote, cloneDir string) *GitRepo {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return New(remote, cloneDir, "main", "fleet-charts-bot", "fleet-charts-bot@users.noreply.github.com", logger)
}

// initRemoteRepo creates a bare repo with one commit on main, suitable
// as a push target.
func initRemoteRepo(t *testing.T) string {
	t.Helper()

	workDir := t.TempDir()
	runGit(t, workDir, "init", "-b", "main")
	runGit(t, workDir, "config", "user.email", "test@example.com")
	runGit(t, workDir, "config", "user.name", "Test")

	if err := os.WriteFile(filepath.Join(workDir, "README.md"), []byte("test"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	runGit(t, workDir, "add", ".")
	runGit(t, workDir, "commit", "-m", "init")

	bareDir := filepath.Join(t.TempDir(), "remote.git")
	runGit(t, "", "clone", "--bare", workDir, bareDir)
	return bareDir
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\noutput: %s", args, err, output)
	}
}

func gitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\noutput: %s", args, err, output)
	}
	return string(output)
}
