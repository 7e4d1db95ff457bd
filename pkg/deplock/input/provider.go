package input

import (
	"context"

	"github.com/deplock/deplock/pkg/deplock"
	"github.com/deplock/deplock/pkg/deplock/version"
)

// Dependency is one direct requirement declared by a package version:
// the identified package must be selected with a version in Versions.
type Dependency struct {
	Package  deplock.Identifier
	Versions version.Range
}

// DependencyProvider supplies the solver with the universe of
// available versions and their declared dependencies.
//
// Both methods must be pure with respect to a single resolution: the
// same call must return the same answer for the lifetime of one
// solve. They may block on I/O (registry or disk lookups) but must
// not mutate solver state. Callers needing cancellation should honor
// ctx inside their implementation and return an error; the solver
// aborts the resolution when a provider call fails.
type DependencyProvider interface {
	// GetVersions returns the known versions of pkg ordered newest
	// first. An empty result means the package is unknown or has no
	// published versions; it is not an error.
	GetVersions(ctx context.Context, pkg deplock.Identifier) ([]version.Version, error)

	// GetDependencies returns the direct dependencies declared by
	// pkg at v. It is never called for the synthetic root package.
	GetDependencies(ctx context.Context, pkg deplock.Identifier, v version.Version) ([]Dependency, error)
}
