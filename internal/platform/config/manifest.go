package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rancher/fleet-helm-charts/api"
)

// ApplyManifest overlays the optional .charts-sync.yaml repository
// manifest on the configuration. A missing file is not an error, so a
// repository without a manifest runs on env and flag settings alone.
func (c *Config) ApplyManifest(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var manifest api.Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	if manifest.Upstream != "" {
		c.UpstreamRepo = manifest.Upstream
	}
	if len(manifest.Charts) > 0 {
		c.Charts = manifest.Charts
	}
	if manifest.ChartsDir != "" {
		c.ChartsDir = manifest.ChartsDir
	}
	if manifest.IndexPath != "" {
		c.IndexPath = manifest.IndexPath
	}
	if manifest.Retention != nil && manifest.Retention.DevVersionMaxAge != "" {
		dur, err := time.ParseDuration(manifest.Retention.DevVersionMaxAge)
		if err != nil {
			return fmt.Errorf("invalid retention.devVersionMaxAge %q in %s: %w",
				manifest.Retention.DevVersionMaxAge, path, err)
		}
		c.DevVersionMaxAge = dur
	}
	return nil
}
