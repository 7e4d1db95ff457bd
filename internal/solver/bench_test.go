package solver

import (
	"context"
	"math/rand"
	"strconv"
	"testing"

	"github.com/deplock/deplock/pkg/deplock"
	"github.com/deplock/deplock/pkg/deplock/input"
	"github.com/deplock/deplock/pkg/deplock/version"
)

var benchmarkUniverse = func() *input.CacheProvider {
	const (
		packages    = 128
		maxVersions = 5
		pDependency = .4
		nDependency = 3
		seed        = 9
	)

	rng := rand.New(rand.NewSource(seed))
	id := func(i int) deplock.Identifier {
		return deplock.Identifier("p" + strconv.Itoa(i))
	}

	provider := input.NewCacheProvider()
	for i := 0; i < packages; i++ {
		nVersions := rng.Intn(maxVersions) + 1
		for major := 1; major <= nVersions; major++ {
			v := version.New(uint64(major), 0, 0)
			var deps []input.Dependency
			// only depend on lower-numbered packages to keep the
			// universe acyclic
			if i > 0 && rng.Float64() < pDependency {
				n := rng.Intn(nDependency) + 1
				for x := 0; x < n; x++ {
					target := rng.Intn(i)
					deps = append(deps, input.Dependency{
						Package:  id(target),
						Versions: version.UntilNextMajor(version.New(uint64(rng.Intn(maxVersions)+1), 0, 0)),
					})
				}
			}
			provider.AddPackage(id(i), v, deps...)
		}
	}
	return provider
}()

func BenchmarkSolve(b *testing.B) {
	for i := 0; i < b.N; i++ {
		s := New(benchmarkUniverse, "$root", version.New(1, 0, 0))
		for p := 100; p < 110; p++ {
			if err := s.AddRootDependency(deplock.Identifier("p"+strconv.Itoa(p)), version.Any()); err != nil {
				b.Fatalf("failed to add root dependency: %s", err)
			}
		}
		s.Solve(context.Background())
	}
}
