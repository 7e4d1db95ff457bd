package fixture

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deplock/deplock/internal/solver"
	"github.com/deplock/deplock/pkg/deplock"
	"github.com/deplock/deplock/pkg/deplock/version"
)

func TestParse(t *testing.T) {
	fx, err := Parse(strings.NewReader(`{
		"name": "sample",
		"description": "two packages",
		"packages": {
			"foo": {
				"versions": ["1.0.0", "1.2.0"],
				"dependencies": {
					"1.2.0": {"bar": "^1.0.0"}
				}
			},
			"bar": {"versions": ["1.0.0"]}
		},
		"root_dependencies": {"foo": "any"},
		"expected": "success",
		"solution": {"foo": "1.2.0", "bar": "1.0.0"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "sample", fx.Name)
	assert.Equal(t, "two packages", fx.Description)
	assert.Equal(t, ExpectSuccess, fx.Expected)
	assert.Equal(t, map[deplock.Identifier]version.Version{
		"foo": version.MustParse("1.2.0"),
		"bar": version.MustParse("1.0.0"),
	}, fx.Solution)

	require.Len(t, fx.RootDependencies, 1)
	assert.Equal(t, deplock.Identifier("foo"), fx.RootDependencies[0].Package)
	assert.True(t, fx.RootDependencies[0].Versions.IsAny())

	ctx := context.Background()
	versions, err := fx.Provider.GetVersions(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, []version.Version{version.MustParse("1.2.0"), version.MustParse("1.0.0")}, versions)

	deps, err := fx.Provider.GetDependencies(ctx, "foo", version.MustParse("1.2.0"))
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, deplock.Identifier("bar"), deps[0].Package)
}

func TestParseErrors(t *testing.T) {
	for _, tt := range []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown field",
			doc:  `{"root_dependencies": {"a": "any"}, "expected": "success", "surprise": true}`,
			want: "decoding fixture",
		},
		{
			name: "invalid expected outcome",
			doc:  `{"root_dependencies": {"a": "any"}, "expected": "maybe"}`,
			want: `invalid expected outcome "maybe"`,
		},
		{
			name: "no root dependencies",
			doc:  `{"expected": "success"}`,
			want: "no root dependencies",
		},
		{
			name: "dependencies for unpublished version",
			doc: `{
				"packages": {"a": {"versions": ["1.0.0"], "dependencies": {"2.0.0": {"b": "any"}}}},
				"root_dependencies": {"a": "any"},
				"expected": "success"
			}`,
			want: "unpublished version",
		},
		{
			name: "solution on conflict fixture",
			doc: `{
				"root_dependencies": {"a": "any"},
				"expected": "conflict",
				"solution": {"a": "1.0.0"}
			}`,
			want: "solution map requires",
		},
		{
			name: "bad version range",
			doc:  `{"root_dependencies": {"a": "~1.0.0"}, "expected": "success"}`,
			want: "dependency a",
		},
		{
			name: "bad package version",
			doc: `{
				"packages": {"a": {"versions": ["1.0"]}},
				"root_dependencies": {"a": "any"},
				"expected": "success"
			}`,
			want: "package a",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "does-not-exist.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening fixture")
}

// TestFixtureOutcomes runs every checked-in fixture through the solver
// and checks the recorded outcome.
func TestFixtureOutcomes(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			fx, err := Load(path)
			require.NoError(t, err)

			s := solver.New(fx.Provider, "$root", version.MustParse("1.0.0"))
			for _, dep := range fx.RootDependencies {
				require.NoError(t, s.AddRootDependency(dep.Package, dep.Versions))
			}
			selected, err := s.Solve(context.Background())

			switch fx.Expected {
			case ExpectSuccess:
				require.NoError(t, err)
				if fx.Solution != nil {
					assert.Equal(t, fx.Solution, selected)
				}
			case ExpectConflict:
				var unsat *deplock.NotSatisfiable
				require.True(t, errors.As(err, &unsat), "expected a conflict, got %v", err)
				assert.NotEmpty(t, unsat.Derivation)
			}
		})
	}
}
