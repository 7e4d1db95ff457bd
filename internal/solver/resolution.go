package solver

import (
	"context"
	"fmt"
	"sort"

	"github.com/deplock/deplock/pkg/deplock"
	"github.com/deplock/deplock/pkg/deplock/input"
	"github.com/deplock/deplock/pkg/deplock/version"
)

// ErrSolved is returned by AddRootDependency after Solve has run.
var ErrSolved = fmt.Errorf("solver has already run")

// Solver drives a single resolution attempt: it owns the partial
// solution and the incompatibility store, and consults the
// DependencyProvider for candidate versions and declared
// dependencies. A Solver is single-use and not safe for concurrent
// access.
type Solver struct {
	provider    input.DependencyProvider
	root        deplock.Identifier
	rootVersion version.Version

	solution *partialSolution

	// incompatibilities indexed by every package they mention, so
	// propagation only rescans clauses that can have changed.
	incompatibilities map[deplock.Identifier][]*Incompatibility

	rootDeps []input.Dependency

	tracer       deplock.Tracer
	maxDecisions int

	// decisionCount never decreases, unlike the decision level, so
	// the bound also catches searches that keep backjumping.
	decisionCount int

	done   bool
	result map[deplock.Identifier]version.Version
	err    error
}

// Option configures a Solver.
type Option func(*Solver)

// WithTracer installs a tracer notified of every propagation step.
func WithTracer(t deplock.Tracer) Option {
	return func(s *Solver) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithMaxDecisions bounds the number of decisions the solver may
// take. Zero means unbounded. Exceeding the bound is a hard error,
// not an unsatisfiability verdict.
func WithMaxDecisions(n int) Option {
	return func(s *Solver) {
		s.maxDecisions = n
	}
}

// New returns a Solver bound to the given provider and root package.
// The provider is never asked about the root package; its
// dependencies are supplied through AddRootDependency before Solve.
func New(provider input.DependencyProvider, root deplock.Identifier, rootVersion version.Version, opts ...Option) *Solver {
	s := &Solver{
		provider:          provider,
		root:              root,
		rootVersion:       rootVersion,
		solution:          newPartialSolution(),
		incompatibilities: map[deplock.Identifier][]*Incompatibility{},
		tracer:            DefaultTracer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddRootDependency registers one direct dependency of the root
// package. It must be called before Solve.
func (s *Solver) AddRootDependency(pkg deplock.Identifier, vs version.Range) error {
	if s.done {
		return ErrSolved
	}
	s.rootDeps = append(s.rootDeps, input.Dependency{Package: pkg, Versions: vs})
	return nil
}

// Solve runs unit propagation, decision making and conflict-driven
// backjumping until every required package has a decided version or a
// root-level conflict proves the problem unsolvable. Unsatisfiability
// is returned as *deplock.NotSatisfiable; provider failures are
// returned as ordinary wrapped errors. Solve is idempotent: a second
// call returns the memoized outcome.
func (s *Solver) Solve(ctx context.Context) (map[deplock.Identifier]version.Version, error) {
	if s.done {
		return s.result, s.err
	}
	s.done = true
	s.result, s.err = s.solve(ctx)
	return s.result, s.err
}

func (s *Solver) solve(ctx context.Context) (map[deplock.Identifier]version.Version, error) {
	s.addIncompatibility(rootIncompatibility(s.root, s.rootVersion))
	for _, dep := range s.rootDeps {
		if inc := dependencyIncompatibility(s.root, s.rootVersion, Positive(dep.Package, dep.Versions)); inc != nil {
			s.addIncompatibility(inc)
		}
	}

	next := s.root
	for {
		if err := s.propagate(next); err != nil {
			return nil, err
		}
		pkg, done, err := s.choosePackageVersion(ctx)
		if err != nil {
			return nil, err
		}
		if done {
			selected := s.solution.selectedVersions()
			delete(selected, s.root)
			return selected, nil
		}
		next = pkg
	}
}

func (s *Solver) addIncompatibility(inc *Incompatibility) {
	for _, t := range inc.terms {
		s.incompatibilities[t.Package] = append(s.incompatibilities[t.Package], inc)
	}
}

// propagate performs unit propagation starting from the package whose
// constraints changed, deriving forced assignments until a fixed
// point. Conflicts are handed to resolveConflict; propagation resumes
// from the learned incompatibility after the backjump.
func (s *Solver) propagate(changed deplock.Identifier) error {
	queue := []deplock.Identifier{changed}
	for len(queue) > 0 {
		pkg := queue[0]
		queue = queue[1:]

		// Iterate newest-first so recently learned clauses are
		// checked before older ones.
		incs := s.incompatibilities[pkg]
		for i := len(incs) - 1; i >= 0; i-- {
			derived, conflict := s.propagateIncompatibility(incs[i])
			if conflict {
				learned, err := s.resolveConflict(incs[i])
				if err != nil {
					return err
				}
				derived, conflict = s.propagateIncompatibility(learned)
				if conflict || derived == "" {
					return fmt.Errorf("internal solver error: learned incompatibility %s did not propagate", learned)
				}
				queue = []deplock.Identifier{derived}
				break
			}
			if derived != "" {
				queue = append(queue, derived)
			}
		}
	}
	return nil
}

// propagateIncompatibility checks one incompatibility against the
// partial solution. If every term is satisfied it reports a conflict.
// If every term but one is satisfied, the negation of the remaining
// term is derived and its package returned.
func (s *Solver) propagateIncompatibility(inc *Incompatibility) (deplock.Identifier, bool) {
	var unsatisfied *Term
	for i := range inc.terms {
		switch s.solution.relation(inc.terms[i]) {
		case RelationContradicted:
			// Some term can no longer hold, so the
			// incompatibility is vacuously honored.
			return "", false
		case RelationInconclusive:
			if unsatisfied != nil {
				return "", false
			}
			unsatisfied = &inc.terms[i]
		}
	}
	if unsatisfied == nil {
		s.trace("conflict", "", inc.String())
		return "", true
	}
	derived := unsatisfied.Negate()
	s.solution.derive(derived, inc)
	s.trace("derive", derived.Package, derived.String())
	return unsatisfied.Package, false
}

// resolveConflict merges the conflicting incompatibility with the
// causes of its most recently satisfied terms until the result is
// satisfied at an earlier decision level, then backjumps there. If
// the merge reaches the root package alone, the problem has no
// solution.
func (s *Solver) resolveConflict(inc *Incompatibility) (*Incompatibility, error) {
	learnedNew := false
	for !inc.isFailure(s.root) {
		var mostRecentTerm *Term
		var mostRecentSatisfier *assignment
		var difference *Term
		previousSatisfierLevel := 1

		for i := range inc.terms {
			term := &inc.terms[i]
			satisfier := s.solution.satisfier(*term)
			switch {
			case mostRecentSatisfier == nil:
				mostRecentTerm, mostRecentSatisfier = term, satisfier
			case mostRecentSatisfier.index < satisfier.index:
				previousSatisfierLevel = max(previousSatisfierLevel, mostRecentSatisfier.decisionLevel)
				mostRecentTerm, mostRecentSatisfier = term, satisfier
				difference = nil
			default:
				previousSatisfierLevel = max(previousSatisfierLevel, satisfier.decisionLevel)
			}

			if mostRecentTerm == term {
				// The satisfier may only partially satisfy the
				// term; the rest must have been satisfied
				// earlier, which bounds the backjump.
				if diff, ok := mostRecentSatisfier.term.Difference(*mostRecentTerm); ok {
					difference = &diff
					previousSatisfierLevel = max(previousSatisfierLevel, s.solution.satisfier(diff.Negate()).decisionLevel)
				} else {
					difference = nil
				}
			}
		}

		if previousSatisfierLevel < mostRecentSatisfier.decisionLevel || mostRecentSatisfier.isDecision() {
			s.trace("backjump", mostRecentTerm.Package, fmt.Sprintf("to decision level %d", previousSatisfierLevel))
			s.solution.backtrack(previousSatisfierLevel)
			if learnedNew {
				s.addIncompatibility(inc)
			}
			return inc, nil
		}

		// Merge the conflict with the cause of its most recent
		// satisfier, producing a more general incompatibility.
		cause := mostRecentSatisfier.cause
		newTerms := make([]Term, 0, len(inc.terms)+len(cause.terms))
		for i := range inc.terms {
			if &inc.terms[i] != mostRecentTerm {
				newTerms = append(newTerms, inc.terms[i])
			}
		}
		for _, t := range cause.terms {
			if t.Package != mostRecentSatisfier.term.Package {
				newTerms = append(newTerms, t)
			}
		}
		if difference != nil {
			newTerms = append(newTerms, difference.Negate())
		}
		prior := inc
		inc = derivedIncompatibility(newTerms, prior, cause)
		learnedNew = true
		s.trace("conflict", mostRecentTerm.Package, inc.String())
	}

	return nil, s.failure(inc)
}

// failure builds the NotSatisfiable error for a root-level conflict,
// retaining the cause graph so callers can re-render the derivation
// with their own package names.
func (s *Solver) failure(inc *Incompatibility) error {
	return &deplock.NotSatisfiable{
		Derivation: Explain(inc, deplock.IdentityResolver),
		Render: func(resolve deplock.NameResolver) string {
			return Explain(inc, resolve)
		},
	}
}

// choosePackageVersion picks the next undecided required package and
// decides its newest allowed version. It reports done when no
// unresolved package remains.
func (s *Solver) choosePackageVersion(ctx context.Context) (deplock.Identifier, bool, error) {
	unsatisfied := s.solution.unsatisfiedPositive()
	if len(unsatisfied) == 0 {
		return "", true, nil
	}

	if s.maxDecisions > 0 && s.decisionCount >= s.maxDecisions {
		return "", false, fmt.Errorf("decision limit of %d exceeded", s.maxDecisions)
	}

	// Prefer the package with the fewest matching candidates so
	// doomed branches fail fast; break ties by identifier for
	// reproducible runs.
	sort.Slice(unsatisfied, func(i, j int) bool {
		return unsatisfied[i].Package < unsatisfied[j].Package
	})
	var chosen Term
	var candidates []version.Version
	best := -1
	for _, t := range unsatisfied {
		versions, err := s.versionsOf(ctx, t.Package)
		if err != nil {
			return "", false, err
		}
		matching := make([]version.Version, 0, len(versions))
		for _, v := range versions {
			if t.Versions.Allows(v) {
				matching = append(matching, v)
			}
		}
		if best < 0 || len(matching) < best {
			best = len(matching)
			chosen = t
			candidates = matching
		}
	}

	if len(candidates) == 0 {
		inc := noVersionsIncompatibility(chosen)
		s.addIncompatibility(inc)
		return chosen.Package, false, nil
	}
	selected := candidates[0]

	deps, err := s.dependenciesOf(ctx, chosen.Package, selected)
	if err != nil {
		return "", false, err
	}
	conflict := false
	for _, dep := range deps {
		inc := dependencyIncompatibility(chosen.Package, selected, Positive(dep.Package, dep.Versions))
		if inc == nil {
			continue
		}
		s.addIncompatibility(inc)

		// The new incompatibility may already be one term away
		// from conflicting; if so, skip the decision and let
		// propagation handle it.
		allSatisfied := true
		for _, t := range inc.terms {
			if t.Package != chosen.Package && !s.solution.satisfies(t) {
				allSatisfied = false
				break
			}
		}
		conflict = conflict || allSatisfied
	}

	if !conflict {
		s.solution.decide(chosen.Package, selected)
		s.decisionCount++
		s.trace("decide", chosen.Package, selected.String())
	}
	return chosen.Package, false, nil
}

// versionsOf returns candidate versions for pkg, newest first. The
// synthetic root package has exactly its declared version; the
// provider is never consulted for it.
func (s *Solver) versionsOf(ctx context.Context, pkg deplock.Identifier) ([]version.Version, error) {
	if pkg == s.root {
		return []version.Version{s.rootVersion}, nil
	}
	versions, err := s.provider.GetVersions(ctx, pkg)
	if err != nil {
		return nil, fmt.Errorf("getting versions of %s: %w", pkg, err)
	}
	return versions, nil
}

// dependenciesOf returns the declared dependencies of pkg at v. Root
// dependency incompatibilities were registered before solving, so the
// root contributes nothing here.
func (s *Solver) dependenciesOf(ctx context.Context, pkg deplock.Identifier, v version.Version) ([]input.Dependency, error) {
	if pkg == s.root {
		return nil, nil
	}
	deps, err := s.provider.GetDependencies(ctx, pkg, v)
	if err != nil {
		return nil, fmt.Errorf("getting dependencies of %s %s: %w", pkg, v, err)
	}
	return deps, nil
}

func (s *Solver) trace(step string, subject deplock.Identifier, detail string) {
	s.tracer.Trace(searchPosition{step: step, subject: subject, detail: detail})
}
