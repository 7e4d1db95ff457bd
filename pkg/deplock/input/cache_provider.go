package input

import (
	"context"
	"sort"

	"github.com/deplock/deplock/pkg/deplock"
	"github.com/deplock/deplock/pkg/deplock/version"
)

var _ DependencyProvider = &CacheProvider{}

// CacheProvider is an in-memory DependencyProvider backed by plain
// maps. It is the provider used by the regression suite and the
// fixture-driven CLI; registry-backed providers implement the same
// interface against their own storage.
type CacheProvider struct {
	versions     map[deplock.Identifier][]version.Version
	dependencies map[deplock.Identifier]map[version.Version][]Dependency
}

// NewCacheProvider returns an empty CacheProvider.
func NewCacheProvider() *CacheProvider {
	return &CacheProvider{
		versions:     map[deplock.Identifier][]version.Version{},
		dependencies: map[deplock.Identifier]map[version.Version][]Dependency{},
	}
}

// AddPackage registers a package version and its declared
// dependencies. Registering the same version twice replaces its
// dependency list.
func (c *CacheProvider) AddPackage(pkg deplock.Identifier, v version.Version, deps ...Dependency) {
	byVersion, ok := c.dependencies[pkg]
	if !ok {
		byVersion = map[version.Version][]Dependency{}
		c.dependencies[pkg] = byVersion
	}
	if _, seen := byVersion[v]; !seen {
		c.versions[pkg] = append(c.versions[pkg], v)
		// newest first
		sort.Slice(c.versions[pkg], func(i, j int) bool {
			return c.versions[pkg][i].Compare(c.versions[pkg][j]) > 0
		})
	}
	byVersion[v] = deps
}

// Packages returns every registered package identifier in sorted
// order.
func (c *CacheProvider) Packages() []deplock.Identifier {
	out := make([]deplock.Identifier, 0, len(c.versions))
	for pkg := range c.versions {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GetVersions returns the registered versions of pkg, newest first.
// Unknown packages yield an empty slice.
func (c *CacheProvider) GetVersions(_ context.Context, pkg deplock.Identifier) ([]version.Version, error) {
	vs := c.versions[pkg]
	out := make([]version.Version, len(vs))
	copy(out, vs)
	return out, nil
}

// GetDependencies returns the dependencies registered for pkg at v.
// Unknown package versions yield an empty slice.
func (c *CacheProvider) GetDependencies(_ context.Context, pkg deplock.Identifier, v version.Version) ([]Dependency, error) {
	deps := c.dependencies[pkg][v]
	out := make([]Dependency, len(deps))
	copy(out, deps)
	return out, nil
}
