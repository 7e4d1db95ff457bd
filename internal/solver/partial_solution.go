package solver

import (
	"fmt"

	"github.com/deplock/deplock/pkg/deplock"
	"github.com/deplock/deplock/pkg/deplock/version"
)

// assignment is one entry in the partial solution's log: either a
// decision (an explicit version selection) or a derivation forced by
// an incompatibility during unit propagation.
type assignment struct {
	term          Term
	decisionLevel int
	index         int

	// cause is the incompatibility whose unit propagation produced
	// this derivation; nil for decisions.
	cause *Incompatibility

	// selected is only meaningful for decisions.
	selected version.Version
}

func (a *assignment) isDecision() bool {
	return a.cause == nil
}

// partialSolution is an ordered log of assignments together with the
// merged term currently known for every package. Decisions increase
// the decision level; derivations share the level of the most recent
// decision. Backtracking truncates the log at a level boundary and
// rebuilds the merged terms.
type partialSolution struct {
	assignments []*assignment
	decisions   map[deplock.Identifier]version.Version

	// merged constraint per package; once a package has a positive
	// merged term it stays positive.
	positive map[deplock.Identifier]Term
	negative map[deplock.Identifier]Term
}

func newPartialSolution() *partialSolution {
	return &partialSolution{
		decisions: map[deplock.Identifier]version.Version{},
		positive:  map[deplock.Identifier]Term{},
		negative:  map[deplock.Identifier]Term{},
	}
}

// decisionLevel is the number of decisions taken so far.
func (ps *partialSolution) decisionLevel() int {
	return len(ps.decisions)
}

// decide appends a decision selecting v for pkg.
func (ps *partialSolution) decide(pkg deplock.Identifier, v version.Version) {
	ps.decisions[pkg] = v
	ps.assign(&assignment{
		term:          Positive(pkg, version.Exactly(v)),
		decisionLevel: ps.decisionLevel(),
		selected:      v,
	})
}

// derive appends a derivation of t forced by cause.
func (ps *partialSolution) derive(t Term, cause *Incompatibility) {
	ps.assign(&assignment{
		term:          t,
		decisionLevel: ps.decisionLevel(),
		cause:         cause,
	})
}

func (ps *partialSolution) assign(a *assignment) {
	a.index = len(ps.assignments)
	ps.assignments = append(ps.assignments, a)
	ps.register(a.term)
}

// register folds t into the merged term for its package.
func (ps *partialSolution) register(t Term) {
	pkg := t.Package
	if existing, ok := ps.positive[pkg]; ok {
		ps.positive[pkg] = mustIntersect(existing, t)
		return
	}
	merged := t
	if existing, ok := ps.negative[pkg]; ok {
		merged = mustIntersect(existing, t)
	}
	if merged.Positive {
		delete(ps.negative, pkg)
		ps.positive[pkg] = merged
	} else {
		ps.negative[pkg] = merged
	}
}

// mustIntersect intersects two terms that propagation has already
// proven compatible; an empty intersection indicates a solver bug and
// is kept as an explicitly empty positive term rather than panicking.
func mustIntersect(a, b Term) Term {
	merged, ok := a.Intersect(b)
	if !ok {
		return Positive(a.Package, version.None())
	}
	return merged
}

// relation reports how the currently known constraint for t's package
// relates to t. Packages with no assignments are inconclusive.
func (ps *partialSolution) relation(t Term) Relation {
	if merged, ok := ps.positive[t.Package]; ok {
		return merged.Relation(t)
	}
	if merged, ok := ps.negative[t.Package]; ok {
		return merged.Relation(t)
	}
	return RelationInconclusive
}

// satisfies reports whether the partial solution implies t.
func (ps *partialSolution) satisfies(t Term) bool {
	return ps.relation(t) == RelationSatisfied
}

// satisfier returns the earliest assignment such that the cumulative
// intersection of t's package assignments up to and including it
// satisfies t. Propagation guarantees such an assignment exists when
// satisfier is called.
func (ps *partialSolution) satisfier(t Term) *assignment {
	var cumulative Term
	var have bool
	for _, a := range ps.assignments {
		if a.term.Package != t.Package {
			continue
		}
		if !have {
			cumulative, have = a.term, true
		} else {
			cumulative = mustIntersect(cumulative, a.term)
		}
		if cumulative.Satisfies(t) {
			return a
		}
	}
	panic(fmt.Sprintf("no assignment satisfying %s", t))
}

// backtrack removes every assignment above the given decision level
// and rebuilds the merged terms from what remains.
func (ps *partialSolution) backtrack(level int) {
	kept := ps.assignments[:0]
	for _, a := range ps.assignments {
		if a.decisionLevel > level {
			break
		}
		kept = append(kept, a)
	}
	ps.assignments = kept

	ps.decisions = map[deplock.Identifier]version.Version{}
	ps.positive = map[deplock.Identifier]Term{}
	ps.negative = map[deplock.Identifier]Term{}
	for _, a := range ps.assignments {
		if a.isDecision() {
			ps.decisions[a.term.Package] = a.selected
		}
		ps.register(a.term)
	}
}

// unsatisfiedPositive returns the merged positive terms of packages
// that are required but not yet decided.
func (ps *partialSolution) unsatisfiedPositive() []Term {
	var out []Term
	for pkg, t := range ps.positive {
		if _, decided := ps.decisions[pkg]; !decided {
			out = append(out, t)
		}
	}
	return out
}

// selectedVersions returns a copy of all decisions.
func (ps *partialSolution) selectedVersions() map[deplock.Identifier]version.Version {
	out := make(map[deplock.Identifier]version.Version, len(ps.decisions))
	for pkg, v := range ps.decisions {
		out[pkg] = v
	}
	return out
}
