package domain

import "time"

// Release is a published upstream release eligible for the chart index.
type Release struct {
	Version     string
	PublishedAt time.Time
}

// ReleaseSet maps version strings to their publication times.
type ReleaseSet map[string]time.Time

// Versions returns the version strings in the set, unordered.
func (s ReleaseSet) Versions() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}
