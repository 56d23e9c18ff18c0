package commands

import (
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/weft/internal/app"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the release bundle for the current project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return zerr.Wrap(err, "failed to determine working directory")
			}

			opts, err := buildOptions(cmd)
			if err != nil {
				return err
			}
			return c.app.Build(cmd.Context(), cwd, opts)
		},
	}

	cmd.Flags().Bool("release", false, "Build in release mode")
	cmd.Flags().Bool("profile", false, "Build in profile mode")
	cmd.Flags().Bool("debug", false, "Build in debug mode")
	cmd.MarkFlagsMutuallyExclusive("release", "profile", "debug")

	cmd.Flags().StringP("target", "t", "", "The application entrypoint file")
	cmd.Flags().String("base-href", "", "The base path the application is served from")
	cmd.Flags().String("pwa-strategy", "", "The service worker caching strategy (offline-first or none)")
	cmd.Flags().StringArrayP("dart-define", "D", nil, "Additional key=value defines passed to the compiler (repeatable)")
	cmd.Flags().Bool("csp", false, "Disable dynamic code generation for CSP compatible output")
	cmd.Flags().Bool("no-source-maps", false, "Do not emit source maps")
	cmd.Flags().StringP("optimization", "O", "", "The compiler optimization level (O1..O4)")
	cmd.Flags().BoolP("no-cache", "n", false, "Force every target to run, ignoring recorded input digests")
	cmd.Flags().Bool("progress", false, "Record per-target progress vertices")

	return cmd
}

// buildOptions translates the flag set into app.BuildOptions. The build
// mode is deliberately not defaulted: the app layer rejects a missing mode.
func buildOptions(cmd *cobra.Command) (app.BuildOptions, error) {
	opts := app.BuildOptions{
		Defines: make(map[string]string),
	}

	for _, mode := range []string{"release", "profile", "debug"} {
		if enabled, _ := cmd.Flags().GetBool(mode); enabled {
			opts.Mode = mode
		}
	}

	stringFlags := map[string]string{
		"target":       domain.DefineTargetFile,
		"base-href":    domain.DefineBaseHref,
		"pwa-strategy": domain.DefineServiceWorkerStrategy,
		"optimization": domain.DefineOptimization,
	}
	for flag, define := range stringFlags {
		if value, _ := cmd.Flags().GetString(flag); value != "" {
			opts.Defines[define] = value
		}
	}

	if csp, _ := cmd.Flags().GetBool("csp"); csp {
		opts.Defines[domain.DefineCspMode] = "true"
	}
	if noSourceMaps, _ := cmd.Flags().GetBool("no-source-maps"); noSourceMaps {
		opts.Defines[domain.DefineSourceMaps] = "false"
	}

	opts.DartDefines, _ = cmd.Flags().GetStringArray("dart-define")
	opts.NoCache, _ = cmd.Flags().GetBool("no-cache")
	opts.Progress, _ = cmd.Flags().GetBool("progress")

	return opts, nil
}
