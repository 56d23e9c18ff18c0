package commands

import (
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the scratch and output directories",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return zerr.Wrap(err, "failed to determine working directory")
			}
			return c.app.Clean(cwd)
		},
	}
}
