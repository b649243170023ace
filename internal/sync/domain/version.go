package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// devChannelPattern marks pre-release builds published from release
// candidates or test channels.
var devChannelPattern = regexp.MustCompile(`(rc|beta|alpha)`)

// baseVersionPattern extracts the X.Y.Z prefix of a version string.
var baseVersionPattern = regexp.MustCompile(`^(\d+\.\d+\.\d+)`)

// IsDevVersion reports whether a version string belongs to a dev
// channel (rc, beta or alpha builds).
func IsDevVersion(version string) bool {
	return devChannelPattern.MatchString(strings.ToLower(version))
}

// BaseVersion returns the X.Y.Z prefix of a version string, e.g.
// "1.2.3" for "1.2.3-rc.1". Strings without a semver prefix are
// returned unchanged.
func BaseVersion(version string) string {
	if m := baseVersionPattern.FindStringSubmatch(version); m != nil {
		return m[1]
	}
	return version
}

// ParseReleaseTag converts an upstream release tag into a chart
// version string. Tags from experiment or hotfix builds are rejected;
// the leading "v" is trimmed.
func ParseReleaseTag(tag string) (string, error) {
	lower := strings.ToLower(tag)
	if strings.Contains(lower, "experiment") || strings.Contains(lower, "hotfix") {
		return "", fmt.Errorf("tag %q is not a releasable build", tag)
	}
	version := strings.TrimPrefix(tag, "v")
	if version == "" {
		return "", fmt.Errorf("tag %q has no version", tag)
	}
	return version, nil
}

// CompareVersions orders two version strings, newest last. Strings
// that do not parse as semver sort before valid versions, compared
// lexically among themselves.
func CompareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		return va.Compare(vb)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	default:
		return strings.Compare(a, b)
	}
}
