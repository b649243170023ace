// Package config provides application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration shared by the CLI and the watcher
// service, loaded from environment variables.
type Config struct {
	UpstreamRepo string   // upstream releases source, e.g. "rancher/fleet"
	ChartRepo    string   // chart repository proposals are opened against
	Charts       []string // chart names published per release, lead chart first
	ChartsDir    string   // directory holding the chart subdirectories
	IndexPath    string   // path of the served index.yaml
	BaseBranch   string   // default branch of the chart repository
	DryRun       bool     // DRY_RUN=true keeps the filesystem untouched

	// Watcher service
	Port         int
	PollInterval time.Duration
	CheckoutPath string // local clone the watcher prepares proposals in
	GitUserName  string // committer identity for proposal commits
	GitUserEmail string

	// Retention
	DevVersionMaxAge time.Duration

	// GitHub auth: a token, or App credentials. Both optional; without
	// either, API access is anonymous (sufficient for public releases).
	GitHubToken          string
	GitHubAppID          int64
	GitHubInstallationID int64
	GitHubPrivateKey     string // PEM file contents

	LogLevel    string
	OTelEnabled bool
}

// Load reads configuration from environment variables and applies
// defaults for the Fleet chart repository.
func Load() (Config, error) {
	cfg := Config{
		UpstreamRepo:     "rancher/fleet",
		ChartRepo:        "rancher/fleet-helm-charts",
		Charts:           []string{"fleet", "fleet-crd", "fleet-agent"},
		ChartsDir:        "charts",
		IndexPath:        "index.yaml",
		BaseBranch:       "main",
		Port:             8080,
		PollInterval:     time.Hour,
		CheckoutPath:     "/tmp/fleet-helm-charts",
		GitUserName:      "fleet-charts-bot",
		GitUserEmail:     "fleet-charts-bot@users.noreply.github.com",
		DevVersionMaxAge: 14 * 24 * time.Hour,
		LogLevel:         "info",
	}

	if v := os.Getenv("UPSTREAM_REPO"); v != "" {
		cfg.UpstreamRepo = v
	}
	if v := os.Getenv("CHART_REPO"); v != "" {
		cfg.ChartRepo = v
	}
	if v := os.Getenv("CHARTS"); v != "" {
		cfg.Charts = splitList(v)
	}
	if len(cfg.Charts) == 0 {
		return Config{}, fmt.Errorf("CHARTS must name at least one chart")
	}
	if v := os.Getenv("CHARTS_DIR"); v != "" {
		cfg.ChartsDir = v
	}
	if v := os.Getenv("INDEX_PATH"); v != "" {
		cfg.IndexPath = v
	}
	if v := os.Getenv("BASE_BRANCH"); v != "" {
		cfg.BaseBranch = v
	}
	if v := os.Getenv("CHECKOUT_PATH"); v != "" {
		cfg.CheckoutPath = v
	}
	if v := os.Getenv("GIT_USER_NAME"); v != "" {
		cfg.GitUserName = v
	}
	if v := os.Getenv("GIT_USER_EMAIL"); v != "" {
		cfg.GitUserEmail = v
	}
	cfg.DryRun = strings.EqualFold(os.Getenv("DRY_RUN"), "true")

	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = p
	}

	var err error
	if cfg.PollInterval, err = parseDurationOrDefault("POLL_INTERVAL", cfg.PollInterval); err != nil {
		return Config{}, err
	}
	if cfg.DevVersionMaxAge, err = parseDurationOrDefault("DEV_VERSION_MAX_AGE", cfg.DevVersionMaxAge); err != nil {
		return Config{}, err
	}

	if err := loadGitHubAuth(&cfg); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	cfg.OTelEnabled = os.Getenv("OTEL_ENABLED") == "true"

	return cfg, nil
}

// UsesAppAuth reports whether GitHub App credentials are configured.
func (c Config) UsesAppAuth() bool {
	return c.GitHubAppID != 0
}

func loadGitHubAuth(cfg *Config) error {
	cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")

	appID := os.Getenv("GITHUB_APP_ID")
	if appID == "" {
		return nil
	}

	var err error
	cfg.GitHubAppID, err = strconv.ParseInt(appID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid GITHUB_APP_ID %q: %w", appID, err)
	}

	installID := os.Getenv("GITHUB_INSTALLATION_ID")
	if installID == "" {
		return fmt.Errorf("GITHUB_INSTALLATION_ID is required with GITHUB_APP_ID")
	}
	cfg.GitHubInstallationID, err = strconv.ParseInt(installID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid GITHUB_INSTALLATION_ID %q: %w", installID, err)
	}

	cfg.GitHubPrivateKey = os.Getenv("GITHUB_PRIVATE_KEY")
	if cfg.GitHubPrivateKey == "" {
		return fmt.Errorf("GITHUB_PRIVATE_KEY is required with GITHUB_APP_ID")
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDurationOrDefault(envKey string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(envKey)
	if v == "" {
		return defaultValue, nil
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, v, err)
	}
	return dur, nil
}
