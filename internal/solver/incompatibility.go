package solver

import (
	"fmt"
	"strings"

	"github.com/deplock/deplock/pkg/deplock"
	"github.com/deplock/deplock/pkg/deplock/version"
)

// causeKind records where an incompatibility came from, for later
// explanation.
type causeKind int

const (
	// causeRoot marks the seed incompatibility requiring the root
	// package to be selected.
	causeRoot causeKind = iota
	// causeDependency marks an incompatibility expressing one
	// declared dependency of a package version.
	causeDependency
	// causeNoVersions marks "no available version satisfies this
	// term".
	causeNoVersions
	// causeConflict marks an incompatibility derived from two
	// parents during conflict resolution.
	causeConflict
)

// Incompatibility is a set of terms, at most one per package, that
// cannot all hold in any solution. Derived incompatibilities point at
// the two parents they were merged from, forming an acyclic cause
// graph that the failure explainer walks.
type Incompatibility struct {
	terms []Term
	kind  causeKind

	// set for causeDependency
	pkg deplock.Identifier
	ver version.Version

	// set for causeConflict
	left  *Incompatibility
	right *Incompatibility
}

func rootIncompatibility(root deplock.Identifier, v version.Version) *Incompatibility {
	return &Incompatibility{
		terms: []Term{Negative(root, version.Exactly(v))},
		kind:  causeRoot,
	}
}

// dependencyIncompatibility expresses that pkg at v requires dep. A
// dependency on the package itself constrains nothing when its range
// admits v, and returns nil; outside its own version it collapses to
// a single impossible term.
func dependencyIncompatibility(pkg deplock.Identifier, v version.Version, dep Term) *Incompatibility {
	if dep.Package == pkg {
		if dep.Versions.Allows(v) {
			return nil
		}
		return &Incompatibility{
			terms: []Term{Positive(pkg, version.Exactly(v))},
			kind:  causeDependency,
			pkg:   pkg,
			ver:   v,
		}
	}
	return &Incompatibility{
		terms: []Term{Positive(pkg, version.Exactly(v)), dep.Negate()},
		kind:  causeDependency,
		pkg:   pkg,
		ver:   v,
	}
}

func noVersionsIncompatibility(t Term) *Incompatibility {
	return &Incompatibility{
		terms: []Term{t},
		kind:  causeNoVersions,
	}
}

// derivedIncompatibility merges terms learned during conflict
// resolution. Terms for the same package are intersected so the
// result keeps at most one term per package.
func derivedIncompatibility(terms []Term, left, right *Incompatibility) *Incompatibility {
	merged := make([]Term, 0, len(terms))
	byPackage := map[deplock.Identifier]int{}
	for _, t := range terms {
		if i, ok := byPackage[t.Package]; ok {
			if combined, ok := merged[i].Intersect(t); ok {
				merged[i] = combined
			} else {
				merged[i] = Positive(t.Package, version.None())
			}
			continue
		}
		byPackage[t.Package] = len(merged)
		merged = append(merged, t)
	}
	return &Incompatibility{
		terms: merged,
		kind:  causeConflict,
		left:  left,
		right: right,
	}
}

// Terms returns the incompatibility's terms. Callers must not mutate
// the result.
func (inc *Incompatibility) Terms() []Term {
	return inc.terms
}

func (inc *Incompatibility) isDerived() bool {
	return inc.kind == causeConflict
}

// isFailure reports whether the incompatibility proves the whole
// problem unsolvable: it is empty, or pins the root package alone.
func (inc *Incompatibility) isFailure(root deplock.Identifier) bool {
	if len(inc.terms) == 0 {
		return true
	}
	return len(inc.terms) == 1 && inc.terms[0].Package == root && inc.terms[0].Positive
}

func (inc *Incompatibility) String() string {
	return inc.Describe(deplock.IdentityResolver)
}

// Describe renders the incompatibility as a human-readable statement
// using the given name resolver.
func (inc *Incompatibility) Describe(resolve deplock.NameResolver) string {
	switch inc.kind {
	case causeRoot:
		return fmt.Sprintf("%s is required", inc.terms[0].Negate().Describe(resolve))
	case causeDependency:
		if len(inc.terms) == 1 {
			return fmt.Sprintf("%s %s cannot be used", resolve(inc.pkg), inc.ver)
		}
		return fmt.Sprintf("%s %s depends on %s", resolve(inc.pkg), inc.ver, inc.depTerm().Describe(resolve))
	case causeNoVersions:
		t := inc.terms[0]
		return fmt.Sprintf("no versions of %s match %s", resolve(t.Package), t.Versions)
	}
	switch len(inc.terms) {
	case 0:
		return "version solving failed"
	case 1:
		t := inc.terms[0]
		if t.Positive {
			if t.Versions.IsAny() {
				return fmt.Sprintf("%s is forbidden", resolve(t.Package))
			}
			return fmt.Sprintf("%s is forbidden", t.Describe(resolve))
		}
		return fmt.Sprintf("%s is required", t.Negate().Describe(resolve))
	case 2:
		return fmt.Sprintf("%s is incompatible with %s", inc.terms[0].Describe(resolve), inc.terms[1].Describe(resolve))
	default:
		parts := make([]string, len(inc.terms))
		for i, t := range inc.terms {
			parts[i] = t.Describe(resolve)
		}
		return strings.Join(parts, " and ") + " are incompatible"
	}
}

// depTerm returns the dependency side of a causeDependency
// incompatibility, with positive polarity.
func (inc *Incompatibility) depTerm() Term {
	for _, t := range inc.terms {
		if t.Package != inc.pkg {
			return t.Negate()
		}
	}
	return inc.terms[len(inc.terms)-1].Negate()
}
