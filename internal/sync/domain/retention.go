package domain

import (
	"sort"
	"time"
)

// DefaultDevVersionMaxAge is how long dev-channel versions stay in the
// index once a newer build supersedes them.
const DefaultDevVersionMaxAge = 14 * 24 * time.Hour

// RetentionPolicy decides which chart versions stay in the index.
//
// Stable versions are always kept. Dev-channel versions (rc, beta,
// alpha) are kept while younger than MaxDevAge; for older ones, at
// most the newest per base version survives, and only when that base
// has no stable release and no other kept dev build.
type RetentionPolicy struct {
	MaxDevAge time.Duration
	Now       func() time.Time
}

// NewRetentionPolicy returns a policy with the default dev-version age
// limit.
func NewRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{MaxDevAge: DefaultDevVersionMaxAge, Now: time.Now}
}

// Keep applies the policy to a set of versions with publication dates
// and returns the set of versions that should remain.
func (p RetentionPolicy) Keep(versions ReleaseSet) map[string]struct{} {
	return p.KeepFunc(versions, IsDevVersion, BaseVersion)
}

// KeepFunc is Keep with caller-supplied dev and base classifiers, for
// sources where neither is visible in the version string alone.
// Rebased chart entries carry the upstream release in appVersion, so
// both the rc marker and the base grouping have to come from there.
func (p RetentionPolicy) KeepFunc(versions ReleaseSet, isDev func(string) bool, base func(string) string) map[string]struct{} {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	cutoff := now().UTC().Add(-p.MaxDevAge)

	kept := make(map[string]struct{}, len(versions))
	stableBases := make(map[string]struct{})
	var dev []string

	for v := range versions {
		if isDev(v) {
			dev = append(dev, v)
			continue
		}
		kept[v] = struct{}{}
		stableBases[base(v)] = struct{}{}
	}

	// Newest first so the freshest old dev build wins its base.
	sort.Slice(dev, func(i, j int) bool {
		ti, tj := versions[dev[i]], versions[dev[j]]
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return CompareVersions(dev[i], dev[j]) > 0
	})

	devBasesSeen := make(map[string]struct{})
	for _, v := range dev {
		b := base(v)
		if versions[v].After(cutoff) {
			kept[v] = struct{}{}
			devBasesSeen[b] = struct{}{}
			continue
		}
		_, hasStable := stableBases[b]
		_, hasDev := devBasesSeen[b]
		if !hasStable && !hasDev {
			kept[v] = struct{}{}
			devBasesSeen[b] = struct{}{}
		}
	}

	return kept
}
