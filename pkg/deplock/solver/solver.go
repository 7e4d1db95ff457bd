package solver

import (
	"context"
	"errors"

	internal "github.com/deplock/deplock/internal/solver"
	"github.com/deplock/deplock/pkg/deplock"
	"github.com/deplock/deplock/pkg/deplock/input"
	"github.com/deplock/deplock/pkg/deplock/version"
)

// DefaultRoot is the identifier of the synthetic root package used
// when no explicit root is configured. It never reaches the
// DependencyProvider.
const DefaultRoot = deplock.Identifier("$root")

// Solution is returned by the Solver when the resolution engine
// executed successfully. A successful execution can still end in an
// unsatisfiability verdict, available from Error.
type Solution struct {
	err       *deplock.NotSatisfiable
	selection map[deplock.Identifier]version.Version
}

// Error returns the resolution error when the problem is
// unsatisfiable, and nil after a successful resolution.
func (s *Solution) Error() error {
	if s.err == nil {
		return nil
	}
	return s.err
}

// Explain renders the failure derivation with the given name
// resolver. It returns the empty string for satisfiable solutions.
func (s *Solution) Explain(resolve deplock.NameResolver) string {
	return s.err.Explain(resolve)
}

// SelectedVersions returns the version selected for every package in
// the solution. The synthetic root package is not included.
func (s *Solution) SelectedVersions() map[deplock.Identifier]version.Version {
	return s.selection
}

// Version returns the version selected for the identified package.
func (s *Solution) Version(id deplock.Identifier) (version.Version, bool) {
	v, ok := s.selection[id]
	return v, ok
}

// IsSelected reports whether the identified package is part of the
// solution.
func (s *Solution) IsSelected(id deplock.Identifier) bool {
	_, ok := s.selection[id]
	return ok
}

// Solver resolves a root package's dependency closure against a
// DependencyProvider. Construct one per resolution attempt.
type Solver struct {
	engine *internal.Solver
}

type config struct {
	root        deplock.Identifier
	rootVersion version.Version
	engineOpts  []internal.Option
}

type Option func(*config)

// WithRoot overrides the synthetic root package's identifier and
// version. Useful when the failure derivation should name the actual
// project instead of a placeholder.
func WithRoot(id deplock.Identifier, v version.Version) Option {
	return func(c *config) {
		c.root = id
		c.rootVersion = v
	}
}

// WithTracer installs a tracer notified of every solver step.
func WithTracer(t deplock.Tracer) Option {
	return func(c *config) {
		c.engineOpts = append(c.engineOpts, internal.WithTracer(t))
	}
}

// WithMaxDecisions bounds the number of decisions the solver may
// take; exceeding the bound is a hard error. Zero means unbounded.
func WithMaxDecisions(n int) Option {
	return func(c *config) {
		c.engineOpts = append(c.engineOpts, internal.WithMaxDecisions(n))
	}
}

// New returns a Solver bound to the given provider.
func New(provider input.DependencyProvider, opts ...Option) *Solver {
	c := &config{
		root:        DefaultRoot,
		rootVersion: version.New(1, 0, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return &Solver{
		engine: internal.New(provider, c.root, c.rootVersion, c.engineOpts...),
	}
}

// AddRootDependency registers one direct requirement of the root
// package. It must be called before Solve.
func (s *Solver) AddRootDependency(pkg deplock.Identifier, vs version.Range) error {
	return s.engine.AddRootDependency(pkg, vs)
}

// Solve runs the resolution to completion. Unsatisfiability is an
// expected outcome and lands in Solution.Error; hard failures
// (provider errors, misuse) are returned as the second value. A
// second call returns the same result.
func (s *Solver) Solve(ctx context.Context) (*Solution, error) {
	selection, err := s.engine.Solve(ctx)
	if err != nil {
		var unsat *deplock.NotSatisfiable
		if errors.As(err, &unsat) {
			return &Solution{err: unsat}, nil
		}
		return nil, err
	}
	return &Solution{selection: selection}, nil
}
