// Package commands implements the CLI commands for the weft build tool.
package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.trai.ch/weft/internal/app"
)

// CLI represents the command line interface for weft.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "weft",
		Short:         "A release pipeline for Flutter web bundles",
		Long:          "weft compiles a web application, assembles its release bundle, fingerprints every cacheable asset and generates the offline service worker.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}
