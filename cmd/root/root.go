package root

import (
	"github.com/spf13/cobra"

	"github.com/deplock/deplock/cmd/resolve"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "deplock",
		Short: "Deplock is a dependency version solver",
		Long: `A PubGrub-style dependency version solver written in Go.
For more information visit https://github.com/deplock/deplock`,
	}

	// add sub-commands
	rootCmd.AddCommand(resolve.NewResolveCommand())

	return rootCmd
}
