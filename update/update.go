// Package update checks GitHub releases for a newer build and swaps
// the running binary in place.
package update

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	Repo       = "pockettray/pockettray"
	BinaryName = "pockettray"
)

type Release struct {
	Version     string
	AssetURL    string
	ChecksumURL string
}

// ReleaseURL is the browser page for a release tag.
func ReleaseURL(version string) string {
	return fmt.Sprintf("https://github.com/%s/releases/tag/%s", Repo, version)
}

type semver struct {
	major, minor, patch int
}

func parseSemver(v string) (semver, error) {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	majorStr, rest, ok := strings.Cut(v, ".")
	if !ok {
		return semver{}, fmt.Errorf("invalid semver: %q", v)
	}
	minorStr, patchStr, ok := strings.Cut(rest, ".")
	if !ok || strings.Contains(patchStr, ".") {
		return semver{}, fmt.Errorf("invalid semver: %q", v)
	}
	major, err := strconv.Atoi(majorStr)
	if err != nil {
		return semver{}, err
	}
	minor, err := strconv.Atoi(minorStr)
	if err != nil {
		return semver{}, err
	}
	patch, err := strconv.Atoi(patchStr)
	if err != nil {
		return semver{}, err
	}
	return semver{major, minor, patch}, nil
}

func (s semver) greaterThan(o semver) bool {
	if s.major != o.major {
		return s.major > o.major
	}
	if s.minor != o.minor {
		return s.minor > o.minor
	}
	return s.patch > o.patch
}

func (r Release) NewerThan(current string) bool {
	cur, err := parseSemver(current)
	if err != nil {
		return false
	}
	rel, err := parseSemver(r.Version)
	if err != nil {
		return false
	}
	return rel.greaterThan(cur)
}
