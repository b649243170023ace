// Package api defines the schema of the .charts-sync.yaml manifest
// stored in chart repositories that opt into automated release sync.
package api

// Manifest is the top-level schema of the .charts-sync.yaml file.
type Manifest struct {
	// Upstream is the "owner/repo" slug releases are synced from.
	Upstream string `yaml:"upstream"`
	// Charts lists the chart names published per release; the first is
	// the lead chart whose recorded version drives bump decisions.
	Charts []string `yaml:"charts"`
	// ChartsDir holds the chart subdirectories (default "charts").
	ChartsDir string `yaml:"chartsDir,omitempty"`
	// IndexPath is the served index file (default "index.yaml").
	IndexPath string `yaml:"indexPath,omitempty"`
	// Retention tunes the dev-version cleanup policy.
	Retention *Retention `yaml:"retention,omitempty"`
}

// Retention configures how long dev-channel versions stay indexed.
type Retention struct {
	// DevVersionMaxAge is a Go duration string, e.g. "336h" for two
	// weeks.
	DevVersionMaxAge string `yaml:"devVersionMaxAge,omitempty"`
}
