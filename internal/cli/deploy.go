package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotfold/pkg/commands/deploy"
	"github.com/arthur-debert/dotfold/pkg/display"
)

const deployLong = `Deploy resolves which tier owns every manifest path on this host,
moves store content when a host override requires it, backs up real
files in the way, and links everything into place.

Paths already linked correctly are skipped: a converged repository
deploys to all skips. Real files are only displaced after a backup
succeeds; anything that could not be backed up is withheld from the
run and left untouched.`

const deployExample = `  # Deploy as this host
  dotfold deploy

  # Preview the full run without touching anything
  dotfold deploy --dry-run

  # Overwrite real files without prompting
  dotfold deploy --yes`

func newDeployCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "deploy",
		Short:   MsgDeployShort,
		Long:    deployLong,
		Example: deployExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newCmdEnv(cmd)
			if err != nil {
				return err
			}
			host, err := env.ResolveHost()
			if err != nil {
				return err
			}

			log.Info().
				Str("root", env.Paths.Root()).
				Str("host", host).
				Bool("dry_run", env.DryRun).
				Msg("Deploying repository")

			opts := deploy.Options{
				FS:          env.FS,
				Layout:      env.Paths.Layout(),
				Host:        host,
				BackupsRoot: env.BackupsRoot(),
				DryRun:      env.DryRun,
				Force:       env.Yes,
				Locker:      env.Locker(),
			}
			// Prompting only makes sense on an interactive stdin; without
			// one the run refuses to overwrite unless --yes was given.
			if isatty.IsTerminal(os.Stdin.Fd()) {
				opts.Confirm = confirmOverwrites
			}

			res, err := deploy.Deploy(opts)
			if err != nil {
				return err
			}

			if err := emit(cmd, display.FromDeploy(res), res); err != nil {
				return err
			}
			return deployStatusErr(res)
		},
	}
}

// deployStatusErr turns partial failures into a nonzero exit after the
// report has been shown.
func deployStatusErr(res *deploy.Result) error {
	if res.Execution != nil && !res.Execution.Ok() {
		return fmt.Errorf("%d path(s) failed to deploy", len(res.Execution.Failed))
	}
	if len(res.BackupFailed) > 0 {
		return fmt.Errorf("%d path(s) withheld because their backup failed", len(res.BackupFailed))
	}
	if len(res.Blocked) > 0 {
		return fmt.Errorf("%d claim(s) blocked on ambiguous ownership", len(res.Blocked))
	}
	return nil
}
