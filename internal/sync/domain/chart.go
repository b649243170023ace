package domain

// ChartMetadata is the subset of Chart.yaml this tool reads and
// verifies, plus passthrough for the fields it does not manage.
type ChartMetadata struct {
	APIVersion  string         `yaml:"apiVersion,omitempty"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Version     string         `yaml:"version"`
	AppVersion  string         `yaml:"appVersion,omitempty"`
	Extra       map[string]any `yaml:",inline"`
}

// ChartPackage is a downloaded chart archive ready for indexing.
type ChartPackage struct {
	Metadata ChartMetadata
	Filename string // e.g. "fleet-0.10.1.tgz"
	Digest   string // sha256 of the archive
	URL      string // download location recorded in the index
}
