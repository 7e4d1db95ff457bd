// Package fixture loads the JSON documents used by the regression
// suite and the resolve command: a self-contained package universe,
// the root requirements, and the expected outcome.
package fixture

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/deplock/deplock/pkg/deplock"
	"github.com/deplock/deplock/pkg/deplock/input"
	"github.com/deplock/deplock/pkg/deplock/version"
)

// Expected outcomes of a fixture resolution.
const (
	ExpectSuccess  = "success"
	ExpectConflict = "conflict"
)

type document struct {
	Name             string                 `json:"name"`
	Description      string                 `json:"description"`
	Packages         map[string]packageSpec `json:"packages"`
	RootDependencies map[string]string      `json:"root_dependencies"`
	Expected         string                 `json:"expected"`
	Solution         map[string]string      `json:"solution,omitempty"`
}

type packageSpec struct {
	Versions     []string                     `json:"versions"`
	Dependencies map[string]map[string]string `json:"dependencies,omitempty"`
}

// Fixture is a parsed regression scenario, ready to be handed to the
// solver.
type Fixture struct {
	Name        string
	Description string

	Provider         *input.CacheProvider
	RootDependencies []input.Dependency

	// Expected is ExpectSuccess or ExpectConflict.
	Expected string
	// Solution, when present, is the exact version map a successful
	// resolution must produce.
	Solution map[deplock.Identifier]version.Version
}

// Load reads and parses a fixture file.
func Load(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fixture %s: %w", path, err)
	}
	defer f.Close()
	fx, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	return fx, nil
}

// Parse decodes a fixture document from r and validates it.
func Parse(r io.Reader) (*Fixture, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding fixture: %w", err)
	}

	if doc.Expected != ExpectSuccess && doc.Expected != ExpectConflict {
		return nil, fmt.Errorf("invalid expected outcome %q", doc.Expected)
	}
	if len(doc.RootDependencies) == 0 {
		return nil, fmt.Errorf("fixture declares no root dependencies")
	}

	fx := &Fixture{
		Name:        doc.Name,
		Description: doc.Description,
		Expected:    doc.Expected,
		Provider:    input.NewCacheProvider(),
	}

	for name, spec := range doc.Packages {
		pkg := deplock.Identifier(name)
		published := map[string]version.Version{}
		for _, vs := range spec.Versions {
			v, err := version.Parse(vs)
			if err != nil {
				return nil, fmt.Errorf("package %s: %w", name, err)
			}
			published[vs] = v
			fx.Provider.AddPackage(pkg, v)
		}
		for vs, deps := range spec.Dependencies {
			v, ok := published[vs]
			if !ok {
				return nil, fmt.Errorf("package %s declares dependencies for unpublished version %s", name, vs)
			}
			parsed, err := parseDependencies(deps)
			if err != nil {
				return nil, fmt.Errorf("package %s %s: %w", name, vs, err)
			}
			fx.Provider.AddPackage(pkg, v, parsed...)
		}
	}

	var err error
	fx.RootDependencies, err = parseDependencies(doc.RootDependencies)
	if err != nil {
		return nil, fmt.Errorf("root dependencies: %w", err)
	}

	if len(doc.Solution) > 0 {
		if doc.Expected != ExpectSuccess {
			return nil, fmt.Errorf("a solution map requires expected %q", ExpectSuccess)
		}
		fx.Solution = map[deplock.Identifier]version.Version{}
		for name, vs := range doc.Solution {
			v, err := version.Parse(vs)
			if err != nil {
				return nil, fmt.Errorf("solution entry %s: %w", name, err)
			}
			fx.Solution[deplock.Identifier(name)] = v
		}
	}

	return fx, nil
}

// parseDependencies converts a dep→range map into a deterministic,
// name-ordered dependency list.
func parseDependencies(deps map[string]string) ([]input.Dependency, error) {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]input.Dependency, 0, len(deps))
	for _, name := range names {
		vs, err := version.ParseRange(deps[name])
		if err != nil {
			return nil, fmt.Errorf("dependency %s: %w", name, err)
		}
		out = append(out, input.Dependency{Package: deplock.Identifier(name), Versions: vs})
	}
	return out, nil
}
