// Package satcheck provides an independent satisfiability oracle for
// resolution problems. It reduces a package universe to CNF and asks
// a SAT solver for a verdict, without any notion of version
// preference or failure explanation. The regression suite uses it to
// cross-validate the resolution engine's OK / no-solution answers.
package satcheck

import (
	"context"
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/deplock/deplock/pkg/deplock"
	"github.com/deplock/deplock/pkg/deplock/input"
	"github.com/deplock/deplock/pkg/deplock/version"
)

type candidate struct {
	pkg deplock.Identifier
	v   version.Version
}

// Satisfiable reports whether any assignment of at most one version
// per package satisfies the root dependencies and every declared
// dependency of the packages in the provider's universe.
func Satisfiable(ctx context.Context, provider *input.CacheProvider, rootDeps []input.Dependency) (bool, error) {
	g := gini.New()

	lits := map[candidate]z.Lit{}
	next := 1
	litOf := func(pkg deplock.Identifier, v version.Version) z.Lit {
		c := candidate{pkg: pkg, v: v}
		if m, ok := lits[c]; ok {
			return m
		}
		m := z.Var(next).Pos()
		next++
		lits[c] = m
		return m
	}

	// At most one version per package.
	for _, pkg := range provider.Packages() {
		versions, err := provider.GetVersions(ctx, pkg)
		if err != nil {
			return false, fmt.Errorf("enumerating %s: %w", pkg, err)
		}
		for i := 0; i < len(versions); i++ {
			for j := i + 1; j < len(versions); j++ {
				g.Add(litOf(pkg, versions[i]).Not())
				g.Add(litOf(pkg, versions[j]).Not())
				g.Add(z.LitNull)
			}
		}
	}

	// Every root dependency needs at least one selected candidate.
	for _, dep := range rootDeps {
		allowed, err := allowedLits(ctx, provider, dep, litOf)
		if err != nil {
			return false, err
		}
		if len(allowed) == 0 {
			return false, nil
		}
		for _, m := range allowed {
			g.Add(m)
		}
		g.Add(z.LitNull)
	}

	// Selecting a version implies selecting a candidate for each of
	// its dependencies.
	for _, pkg := range provider.Packages() {
		versions, err := provider.GetVersions(ctx, pkg)
		if err != nil {
			return false, fmt.Errorf("enumerating %s: %w", pkg, err)
		}
		for _, v := range versions {
			deps, err := provider.GetDependencies(ctx, pkg, v)
			if err != nil {
				return false, fmt.Errorf("dependencies of %s %s: %w", pkg, v, err)
			}
			for _, dep := range deps {
				allowed, err := allowedLits(ctx, provider, dep, litOf)
				if err != nil {
					return false, err
				}
				g.Add(litOf(pkg, v).Not())
				for _, m := range allowed {
					g.Add(m)
				}
				g.Add(z.LitNull)
			}
		}
	}

	return g.Solve() == 1, nil
}

func allowedLits(ctx context.Context, provider *input.CacheProvider, dep input.Dependency, litOf func(deplock.Identifier, version.Version) z.Lit) ([]z.Lit, error) {
	versions, err := provider.GetVersions(ctx, dep.Package)
	if err != nil {
		return nil, fmt.Errorf("enumerating %s: %w", dep.Package, err)
	}
	var out []z.Lit
	for _, v := range versions {
		if dep.Versions.Allows(v) {
			out = append(out, litOf(dep.Package, v))
		}
	}
	return out, nil
}
