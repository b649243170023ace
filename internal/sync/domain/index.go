package domain

import (
	"fmt"
	"sort"
	"time"
)

// IndexFile is the chart repository index served to Helm clients.
// Fields beyond the ones this tool manages are preserved through the
// inline Extra maps so a round trip does not lose metadata.
type IndexFile struct {
	APIVersion string                   `yaml:"apiVersion"`
	Generated  string                   `yaml:"generated,omitempty"`
	Entries    map[string][]*IndexEntry `yaml:"entries"`
}

// IndexEntry is one chart version listed in the index.
type IndexEntry struct {
	Name       string         `yaml:"name"`
	Version    string         `yaml:"version"`
	AppVersion string         `yaml:"appVersion,omitempty"`
	Created    string         `yaml:"created,omitempty"`
	Digest     string         `yaml:"digest,omitempty"`
	URLs       []string       `yaml:"urls"`
	Extra      map[string]any `yaml:",inline"`
}

// RemovedVersion identifies an entry dropped by a cleanup.
type RemovedVersion struct {
	Chart   string
	Version string
}

// NewIndexFile returns an empty index with the Helm v1 API version.
func NewIndexFile() *IndexFile {
	return &IndexFile{
		APIVersion: "v1",
		Entries:    make(map[string][]*IndexEntry),
	}
}

// IsDev reports whether the entry belongs to a dev channel, checking
// both version and appVersion the way the published index encodes
// release candidates.
func (e *IndexEntry) IsDev() bool {
	return IsDevVersion(e.Version + e.AppVersion)
}

// BaseVersion returns the X.Y.Z base the retention policy groups the
// entry under. Rebased charts record the upstream release in
// appVersion, which is where the base has to come from so RCs and
// their final line up even when the chart versions diverge.
func (e *IndexEntry) BaseVersion() string {
	if e.AppVersion != "" {
		return BaseVersion(e.AppVersion)
	}
	return BaseVersion(e.Version)
}

// CreatedTime parses the entry's created timestamp. Both plain and
// fractional-second RFC 3339 forms appear in published indexes.
func (e *IndexEntry) CreatedTime() (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, e.Created); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("entry %s-%s: unparseable created time %q", e.Name, e.Version, e.Created)
}

// Versions returns the set of versions listed for a chart.
func (f *IndexFile) Versions(chart string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, e := range f.Entries[chart] {
		out[e.Version] = struct{}{}
	}
	return out
}

// Has reports whether the index lists the given chart version.
func (f *IndexFile) Has(chart, version string) bool {
	for _, e := range f.Entries[chart] {
		if e.Version == version {
			return true
		}
	}
	return false
}

// Add appends an entry under its chart name.
func (f *IndexFile) Add(entry *IndexEntry) {
	if f.Entries == nil {
		f.Entries = make(map[string][]*IndexEntry)
	}
	f.Entries[entry.Name] = append(f.Entries[entry.Name], entry)
}

// SortEntries orders every chart's entries newest version first.
func (f *IndexFile) SortEntries() {
	for _, entries := range f.Entries {
		sort.SliceStable(entries, func(i, j int) bool {
			return CompareVersions(entries[i].Version, entries[j].Version) > 0
		})
	}
}

// Prune removes entries whose version is not in keep, per chart.
// Charts left with no entries are deleted from the index. The dropped
// entries are returned in index order.
func (f *IndexFile) Prune(keep map[string]map[string]struct{}) []RemovedVersion {
	var removed []RemovedVersion
	for chart, entries := range f.Entries {
		keepSet := keep[chart]
		kept := entries[:0]
		for _, e := range entries {
			if _, ok := keepSet[e.Version]; ok {
				kept = append(kept, e)
				continue
			}
			removed = append(removed, RemovedVersion{Chart: chart, Version: e.Version})
		}
		if len(kept) == 0 {
			delete(f.Entries, chart)
			continue
		}
		f.Entries[chart] = kept
	}
	return removed
}
