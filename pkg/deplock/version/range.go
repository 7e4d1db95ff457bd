package version

import (
	"fmt"
	"strings"
)

// A Range is an immutable set of versions, represented as an ordered
// union of disjoint, non-touching intervals. All operations return
// new Ranges.
type Range struct {
	intervals []interval
}

// bound is one end of an interval: a finite version with an
// inclusivity flag, or one of the two infinities.
type bound struct {
	version   Version
	inclusive bool
	infinite  int
}

const (
	negInfinity = -1
	finite      = 0
	posInfinity = 1
)

type interval struct {
	lower bound
	upper bound
}

func lowerBound(v Version, inclusive bool) bound {
	return bound{version: v, inclusive: inclusive}
}

func upperBound(v Version, inclusive bool) bound {
	return bound{version: v, inclusive: inclusive}
}

func negInfinityBound() bound {
	return bound{infinite: negInfinity, inclusive: true}
}

func posInfinityBound() bound {
	return bound{infinite: posInfinity, inclusive: true}
}

// compareLower orders two bounds interpreted as lower bounds. When
// versions are equal, inclusive sorts before exclusive.
func compareLower(a, b bound) int {
	if c := compareInfinity(a, b); c != 0 || a.infinite != finite {
		return c
	}
	if c := a.version.Compare(b.version); c != 0 {
		return c
	}
	switch {
	case a.inclusive == b.inclusive:
		return 0
	case a.inclusive:
		return -1
	default:
		return 1
	}
}

// compareUpper orders two bounds interpreted as upper bounds. When
// versions are equal, exclusive sorts before inclusive.
func compareUpper(a, b bound) int {
	if c := compareInfinity(a, b); c != 0 || a.infinite != finite {
		return c
	}
	if c := a.version.Compare(b.version); c != 0 {
		return c
	}
	switch {
	case a.inclusive == b.inclusive:
		return 0
	case a.inclusive:
		return 1
	default:
		return -1
	}
}

func compareInfinity(a, b bound) int {
	return compareInt(a.infinite, b.infinite)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// nonEmpty reports whether the interval (lower, upper) contains at
// least one version.
func nonEmpty(lower, upper bound) bool {
	if lower.infinite == posInfinity || upper.infinite == negInfinity {
		return false
	}
	if lower.infinite == negInfinity || upper.infinite == posInfinity {
		return true
	}
	switch c := lower.version.Compare(upper.version); {
	case c < 0:
		return true
	case c > 0:
		return false
	default:
		return lower.inclusive && upper.inclusive
	}
}

// Any returns the range containing every version.
func Any() Range {
	return Range{intervals: []interval{{lower: negInfinityBound(), upper: posInfinityBound()}}}
}

// None returns the empty range.
func None() Range {
	return Range{}
}

// Exactly returns the range containing only v.
func Exactly(v Version) Range {
	return Range{intervals: []interval{{lower: lowerBound(v, true), upper: upperBound(v, true)}}}
}

// Between returns the half-open range [lo, hi). An empty interval
// yields None.
func Between(lo, hi Version) Range {
	l, u := lowerBound(lo, true), upperBound(hi, false)
	if !nonEmpty(l, u) {
		return None()
	}
	return Range{intervals: []interval{{lower: l, upper: u}}}
}

// AtLeast returns the range [v, +inf).
func AtLeast(v Version) Range {
	return Range{intervals: []interval{{lower: lowerBound(v, true), upper: posInfinityBound()}}}
}

// UntilNextMajor returns the caret-style range [v, (v.Major+1).0.0),
// i.e. every version compatible with v up to the next major release.
func UntilNextMajor(v Version) Range {
	return Between(v, v.NextMajor())
}

// IsEmpty reports whether the range contains no versions.
func (r Range) IsEmpty() bool {
	return len(r.intervals) == 0
}

// IsAny reports whether the range contains every version.
func (r Range) IsAny() bool {
	return len(r.intervals) == 1 &&
		r.intervals[0].lower.infinite == negInfinity &&
		r.intervals[0].upper.infinite == posInfinity
}

// Allows reports whether v is a member of the range.
func (r Range) Allows(v Version) bool {
	probe := Exactly(v)
	for _, iv := range r.intervals {
		if compareLower(iv.lower, probe.intervals[0].lower) <= 0 && compareUpper(probe.intervals[0].upper, iv.upper) <= 0 {
			return true
		}
	}
	return false
}

// Intersect returns the range of versions contained in both r and
// other.
func (r Range) Intersect(other Range) Range {
	var out []interval
	for _, a := range r.intervals {
		for _, b := range other.intervals {
			lower := a.lower
			if compareLower(b.lower, lower) > 0 {
				lower = b.lower
			}
			upper := a.upper
			if compareUpper(b.upper, upper) < 0 {
				upper = b.upper
			}
			if nonEmpty(lower, upper) {
				out = append(out, interval{lower: lower, upper: upper})
			}
		}
	}
	return Range{intervals: out}
}

// Complement returns the range of versions not contained in r.
func (r Range) Complement() Range {
	if r.IsEmpty() {
		return Any()
	}
	var out []interval
	cursor := negInfinityBound()
	for _, iv := range r.intervals {
		if iv.lower.infinite != negInfinity {
			gapUpper := upperBound(iv.lower.version, !iv.lower.inclusive)
			if nonEmpty(cursor, gapUpper) {
				out = append(out, interval{lower: cursor, upper: gapUpper})
			}
		}
		if iv.upper.infinite == posInfinity {
			return Range{intervals: out}
		}
		cursor = lowerBound(iv.upper.version, !iv.upper.inclusive)
	}
	out = append(out, interval{lower: cursor, upper: posInfinityBound()})
	return Range{intervals: out}
}

// Union returns the range of versions contained in either r or other.
func (r Range) Union(other Range) Range {
	// De Morgan keeps the interval list normalized: touching
	// intervals collapse when the complements intersect.
	return r.Complement().Intersect(other.Complement()).Complement()
}

// Difference returns the range of versions contained in r but not in
// other.
func (r Range) Difference(other Range) Range {
	return r.Intersect(other.Complement())
}

// AllowsAll reports whether every version in other is also in r.
func (r Range) AllowsAll(other Range) bool {
	return other.Intersect(r.Complement()).IsEmpty()
}

// AllowsAny reports whether r and other share at least one version.
func (r Range) AllowsAny(other Range) bool {
	return !r.Intersect(other).IsEmpty()
}

// Equal reports whether r and other contain exactly the same
// versions.
func (r Range) Equal(other Range) bool {
	if len(r.intervals) != len(other.intervals) {
		return false
	}
	for i := range r.intervals {
		if compareLower(r.intervals[i].lower, other.intervals[i].lower) != 0 ||
			compareUpper(r.intervals[i].upper, other.intervals[i].upper) != 0 {
			return false
		}
	}
	return true
}

// Singleton returns the sole version in the range and true when the
// range contains exactly one version.
func (r Range) Singleton() (Version, bool) {
	if len(r.intervals) != 1 {
		return Version{}, false
	}
	iv := r.intervals[0]
	if iv.lower.infinite != finite || iv.upper.infinite != finite {
		return Version{}, false
	}
	if iv.lower.inclusive && iv.upper.inclusive && iv.lower.version.Compare(iv.upper.version) == 0 {
		return iv.lower.version, true
	}
	return Version{}, false
}

func (r Range) String() string {
	if r.IsEmpty() {
		return "none"
	}
	if r.IsAny() {
		return "any"
	}
	parts := make([]string, 0, len(r.intervals))
	for _, iv := range r.intervals {
		parts = append(parts, iv.String())
	}
	return strings.Join(parts, " || ")
}

func (iv interval) String() string {
	if v, ok := (Range{intervals: []interval{iv}}).Singleton(); ok {
		return v.String()
	}
	var parts []string
	if iv.lower.infinite == finite {
		op := ">"
		if iv.lower.inclusive {
			op = ">="
		}
		parts = append(parts, op+iv.lower.version.String())
	}
	if iv.upper.infinite == finite {
		op := "<"
		if iv.upper.inclusive {
			op = "<="
		}
		parts = append(parts, op+iv.upper.version.String())
	}
	return strings.Join(parts, " ")
}

// ParseRange parses a range expression. Supported forms are "any",
// caret constraints "^X.Y.Z" (until the next major version),
// ">=X.Y.Z", and bare exact versions "X.Y.Z".
func ParseRange(s string) (Range, error) {
	switch {
	case s == "any":
		return Any(), nil
	case strings.HasPrefix(s, "^"):
		v, err := Parse(strings.TrimPrefix(s, "^"))
		if err != nil {
			return Range{}, fmt.Errorf("invalid range %q: %w", s, err)
		}
		return UntilNextMajor(v), nil
	case strings.HasPrefix(s, ">="):
		v, err := Parse(strings.TrimPrefix(s, ">="))
		if err != nil {
			return Range{}, fmt.Errorf("invalid range %q: %w", s, err)
		}
		return AtLeast(v), nil
	default:
		v, err := Parse(s)
		if err != nil {
			return Range{}, fmt.Errorf("invalid range %q: %w", s, err)
		}
		return Exactly(v), nil
	}
}
