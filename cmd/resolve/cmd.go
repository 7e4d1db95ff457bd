package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/deplock/deplock/internal/fixture"
	internal "github.com/deplock/deplock/internal/solver"
	"github.com/deplock/deplock/pkg/deplock"
	"github.com/deplock/deplock/pkg/deplock/solver"
)

func NewResolveCommand() *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Resolves the dependency scenario described by a fixture file",
		Long: `Resolves the dependency scenario described by a JSON fixture file.
For instance:
{
  "name": "simple",
  "packages": {
    "alpha": {
      "versions": ["1.0.0", "2.0.0"],
      "dependencies": {"2.0.0": {"beta": "^1.0.0"}}
    },
    "beta": {"versions": ["1.1.0"]}
  },
  "root_dependencies": {"alpha": "any"},
  "expected": "success"
}
Supported range expressions are "any", "^X.Y.Z", ">=X.Y.Z" and exact "X.Y.Z".
`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("file (%s) not found", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return solve(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], trace)
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "log every solver step to stderr")
	return cmd
}

func solve(out, errOut io.Writer, path string, trace bool) error {
	fx, err := fixture.Load(path)
	if err != nil {
		return err
	}

	opts := []solver.Option{}
	if trace {
		opts = append(opts, solver.WithTracer(internal.LoggingTracer{Writer: errOut}))
	}

	so := solver.New(fx.Provider, opts...)
	for _, dep := range fx.RootDependencies {
		if err := so.AddRootDependency(dep.Package, dep.Versions); err != nil {
			return err
		}
	}

	solution, err := so.Solve(context.Background())
	if err != nil {
		return err
	}
	if serr := solution.Error(); serr != nil {
		fmt.Fprintf(out, "no solution found:\n%s\n", solution.Explain(deplock.IdentityResolver))
		return nil
	}

	fmt.Fprintln(out, "solution found:")
	selected := solution.SelectedVersions()
	ids := make([]deplock.Identifier, 0, len(selected))
	for id := range selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fmt.Fprintf(out, "%s = %s\n", id, selected[id])
	}
	return nil
}
