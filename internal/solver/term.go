package solver

import (
	"fmt"

	"github.com/deplock/deplock/pkg/deplock"
	"github.com/deplock/deplock/pkg/deplock/version"
)

// Term is a signed proposition about a single package: a positive
// term asserts the package is selected with a version in Versions,
// a negative term asserts it is not.
type Term struct {
	Package  deplock.Identifier
	Versions version.Range
	Positive bool
}

// Positive returns the term "pkg is selected with a version in vs".
func Positive(pkg deplock.Identifier, vs version.Range) Term {
	return Term{Package: pkg, Versions: vs, Positive: true}
}

// Negative returns the term "pkg is not selected with a version in vs".
func Negative(pkg deplock.Identifier, vs version.Range) Term {
	return Term{Package: pkg, Versions: vs, Positive: false}
}

// Negate returns the logical negation of the term.
func (t Term) Negate() Term {
	return Term{Package: t.Package, Versions: t.Versions, Positive: !t.Positive}
}

// Relation describes how one term constrains another.
type Relation int

const (
	// RelationSatisfied: every assignment satisfying the subject term
	// also satisfies the other term.
	RelationSatisfied Relation = iota
	// RelationContradicted: no assignment can satisfy both terms.
	RelationContradicted
	// RelationInconclusive: neither of the above.
	RelationInconclusive
)

// Relation reports how t, taken as the currently known constraint for
// the package, relates to other. Both terms must concern the same
// package.
func (t Term) Relation(other Term) Relation {
	if t.Package != other.Package {
		panic(fmt.Sprintf("relating terms for different packages %q and %q", t.Package, other.Package))
	}
	switch {
	case other.Positive && t.Positive:
		if other.Versions.AllowsAll(t.Versions) {
			return RelationSatisfied
		}
		if !t.Versions.AllowsAny(other.Versions) {
			return RelationContradicted
		}
		return RelationInconclusive
	case other.Positive:
		// t negative: it only ever excludes versions, so it can
		// contradict a positive requirement but never prove it.
		if t.Versions.AllowsAll(other.Versions) {
			return RelationContradicted
		}
		return RelationInconclusive
	case t.Positive:
		if !other.Versions.AllowsAny(t.Versions) {
			return RelationSatisfied
		}
		if other.Versions.AllowsAll(t.Versions) {
			return RelationContradicted
		}
		return RelationInconclusive
	default:
		if t.Versions.AllowsAll(other.Versions) {
			return RelationSatisfied
		}
		return RelationInconclusive
	}
}

// Satisfies reports whether t implies other.
func (t Term) Satisfies(other Term) bool {
	return t.Relation(other) == RelationSatisfied
}

// Intersect returns the strongest term implied by both t and other,
// and false when the two terms cannot hold together.
func (t Term) Intersect(other Term) (Term, bool) {
	switch {
	case t.Positive && other.Positive:
		return nonEmptyTerm(t.Package, t.Versions.Intersect(other.Versions), true)
	case !t.Positive && !other.Positive:
		return Negative(t.Package, t.Versions.Union(other.Versions)), true
	default:
		pos, neg := t, other
		if !t.Positive {
			pos, neg = other, t
		}
		return nonEmptyTerm(t.Package, pos.Versions.Difference(neg.Versions), true)
	}
}

// Difference returns the versions allowed by t but not by other, and
// false when there are none.
func (t Term) Difference(other Term) (Term, bool) {
	return t.Intersect(other.Negate())
}

func nonEmptyTerm(pkg deplock.Identifier, vs version.Range, positive bool) (Term, bool) {
	if vs.IsEmpty() {
		return Term{}, false
	}
	return Term{Package: pkg, Versions: vs, Positive: positive}, true
}

func (t Term) String() string {
	return t.Describe(deplock.IdentityResolver)
}

// Describe renders the term using the given name resolver.
func (t Term) Describe(resolve deplock.NameResolver) string {
	name := resolve(t.Package)
	body := name
	if !t.Versions.IsAny() {
		body = fmt.Sprintf("%s %s", name, t.Versions)
	}
	if t.Positive {
		return body
	}
	return "not " + body
}
