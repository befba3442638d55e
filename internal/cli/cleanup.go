package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotfold/pkg/commands/cleanup"
	"github.com/arthur-debert/dotfold/pkg/display"
)

const cleanupLong = `Cleanup removes content from the tier stores that the manifest's
ignore patterns match. Ignored paths are never deployed, so matching
store content is dead weight: secrets that slipped in, caches, or
files whose patterns were added after the fact.

The home directory is never touched. Use --dry-run to list the
candidates first.`

const cleanupExample = `  # See what would go
  dotfold cleanup --dry-run

  # Remove ignored content, confirming first
  dotfold cleanup

  # No questions asked
  dotfold cleanup --yes`

func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "cleanup",
		Short:   MsgCleanupShort,
		Long:    cleanupLong,
		Example: cleanupExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newCmdEnv(cmd)
			if err != nil {
				return err
			}

			log.Info().
				Str("root", env.Paths.Root()).
				Bool("dry_run", env.DryRun).
				Msg("Cleaning ignored store content")

			opts := cleanup.Options{
				FS:     env.FS,
				Layout: env.Paths.Layout(),
				DryRun: env.DryRun,
				Force:  env.Yes,
				Locker: env.Locker(),
			}
			if isatty.IsTerminal(os.Stdin.Fd()) {
				opts.Confirm = confirmRemovals
			}

			res, err := cleanup.Cleanup(opts)
			if err != nil {
				return err
			}

			if err := emit(cmd, display.FromCleanup(res), res); err != nil {
				return err
			}
			if len(res.Failed) > 0 {
				return fmt.Errorf("%d path(s) failed to clean", len(res.Failed))
			}
			return nil
		},
	}
}
