package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotfold/pkg/commands/backups"
	"github.com/arthur-debert/dotfold/pkg/display"
)

const backupsLong = `Backups lists every backup set recorded for this host, newest first:
the set id, how many paths it captured, when, and why.

Sets are created by deploy before it displaces real files. Restore one
with 'dotfold rollback', and trim old ones with 'dotfold backups
prune'.`

const backupsExample = `  # List this host's backup sets
  dotfold backups

  # Keep the five newest sets, drop the rest
  dotfold backups prune --keep 5`

func newBackupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backups",
		Short:   MsgBackupsShort,
		Long:    backupsLong,
		Example: backupsExample,
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

			res, err := backups.List(backups.ListOptions{
				FS:          env.FS,
				Layout:      env.Paths.Layout(),
				Host:        host,
				BackupsRoot: env.BackupsRoot(),
			})
			if err != nil {
				return err
			}

			return emit(cmd, display.FromBackupList(res), res)
		},
	}

	cmd.AddCommand(newBackupsPruneCmd())
	return cmd
}

func newBackupsPruneCmd() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: MsgBackupsPruneShort,
		Long: `Prune removes every backup set beyond the newest --keep. The keep
count defaults to backups.keep from the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newCmdEnv(cmd)
			if err != nil {
				return err
			}
			host, err := env.ResolveHost()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("keep") {
				keep = env.Config.Backups.Keep
			}

			log.Info().
				Str("host", host).
				Int("keep", keep).
				Bool("dry_run", env.DryRun).
				Msg("Pruning backup sets")

			res, err := backups.Prune(backups.PruneOptions{
				FS:          env.FS,
				Layout:      env.Paths.Layout(),
				Host:        host,
				BackupsRoot: env.BackupsRoot(),
				Keep:        keep,
				DryRun:      env.DryRun,
				Locker:      env.Locker(),
			})
			if err != nil {
				return err
			}

			return emit(cmd, display.FromBackupPrune(res), res)
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 0, MsgFlagKeep)
	return cmd
}
