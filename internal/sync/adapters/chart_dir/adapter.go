// Package chartdir reads and replaces the local chart directories.
package chartdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rancher/fleet-helm-charts/internal/sync/domain"
)

// Adapter implements ports.ChartStorePort against a charts directory
// holding one subdirectory per chart.
type Adapter struct {
	root      string
	leadChart string // chart whose Chart.yaml records the authoritative version
}

// New creates a chart store rooted at dir. The lead chart's recorded
// version is what CurrentVersion reports.
func New(root, leadChart string) *Adapter {
	return &Adapter{root: root, leadChart: leadChart}
}

// Root returns the charts directory.
func (a *Adapter) Root() string {
	return a.root
}

// CurrentVersion reads the version recorded for the lead chart.
func (a *Adapter) CurrentVersion(ctx context.Context) (string, error) {
	md, err := a.Metadata(ctx, a.leadChart)
	if err != nil {
		return "", err
	}
	if md.Version == "" {
		return "", fmt.Errorf("chart %s has no recorded version", a.leadChart)
	}
	return md.Version, nil
}

// Metadata parses a chart's Chart.yaml.
func (a *Adapter) Metadata(_ context.Context, chart string) (domain.ChartMetadata, error) {
	if err := validateChartName(chart); err != nil {
		return domain.ChartMetadata{}, err
	}
	path := filepath.Join(a.root, chart, "Chart.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ChartMetadata{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var md domain.ChartMetadata
	if err := yaml.Unmarshal(data, &md); err != nil {
		return domain.ChartMetadata{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return md, nil
}

// Remove deletes a chart directory. A missing directory is not an
// error.
func (a *Adapter) Remove(_ context.Context, chart string) error {
	if err := validateChartName(chart); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(a.root, chart)); err != nil {
		return fmt.Errorf("removing chart %s: %w", chart, err)
	}
	return nil
}

// validateChartName rejects names that would escape the charts dir.
func validateChartName(chart string) error {
	if chart == "" || strings.ContainsAny(chart, `/\`) || chart == "." || chart == ".." {
		return fmt.Errorf("invalid chart name %q", chart)
	}
	return nil
}
