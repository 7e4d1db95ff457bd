package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Version is a semantic version triple. Versions are totally ordered
// by comparing (Major, Minor, Patch) lexicographically.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// New returns the version with the given components.
func New(major, minor, patch uint64) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// Parse parses a version string of the form "X.Y.Z". Prerelease and
// build metadata are rejected: the resolution model orders plain
// triples only.
func Parse(s string) (Version, error) {
	sv, err := semver.StrictNewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	if sv.Prerelease() != "" || sv.Metadata() != "" {
		return Version{}, fmt.Errorf("invalid version %q: prerelease and build metadata are not supported", s)
	}
	return Version{Major: sv.Major(), Minor: sv.Minor(), Patch: sv.Patch()}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// literals.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns a negative number if v < other, zero if equal, and
// a positive number if v > other.
func (v Version) Compare(other Version) int {
	if c := compareUint64(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareUint64(v.Minor, other.Minor); c != 0 {
		return c
	}
	return compareUint64(v.Patch, other.Patch)
}

// NextMajor returns the smallest version with the next major
// component, i.e. (Major+1).0.0.
func (v Version) NextMajor() Version {
	return Version{Major: v.Major + 1}
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
