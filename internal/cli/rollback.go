package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotfold/pkg/commands/rollback"
	"github.com/arthur-debert/dotfold/pkg/display"
)

const rollbackLong = `Rollback restores a backup set into the home directory. Whatever
occupies a captured path now, deployed link or newer content, is
replaced by the backup's copy with its original permission bits.

With no argument the newest set for this host is restored. List the
available sets with 'dotfold backups'.`

const rollbackExample = `  # Restore the newest backup set
  dotfold rollback

  # Restore a specific set
  dotfold rollback backup_20260801_120000

  # See what would come back
  dotfold rollback --dry-run`

func newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rollback [backup-id]",
		Short:   MsgRollbackShort,
		Long:    rollbackLong,
		Example: rollbackExample,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newCmdEnv(cmd)
			if err != nil {
				return err
			}
			host, err := env.ResolveHost()
			if err != nil {
				return err
			}

			backupID := ""
			if len(args) == 1 {
				backupID = args[0]
			}

			log.Info().
				Str("host", host).
				Str("backup_id", backupID).
				Bool("dry_run", env.DryRun).
				Msg("Rolling back")

			res, err := rollback.Rollback(rollback.Options{
				FS:          env.FS,
				Layout:      env.Paths.Layout(),
				Host:        host,
				BackupsRoot: env.BackupsRoot(),
				BackupID:    backupID,
				DryRun:      env.DryRun,
				Locker:      env.Locker(),
			})
			if err != nil {
				return err
			}

			if err := emit(cmd, display.FromRollback(res), res); err != nil {
				return err
			}
			if !res.Ok() {
				return fmt.Errorf("%d path(s) failed to restore", len(res.Restore.Failed))
			}
			return nil
		},
	}
}
