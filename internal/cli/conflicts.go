package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotfold/pkg/commands/conflicts"
	"github.com/arthur-debert/dotfold/pkg/display"
)

const conflictsLong = `Conflicts shows every place where tiers claim overlapping paths and
how resolution settles each one: which directories decompose into
per-child links, which children each tier takes, and the store moves
the next deploy would perform.

Claims with no sensible winner (equal claims from non-common tiers)
are listed as blocked and make the command exit nonzero. Conflicts is
read-only.`

const conflictsExample = `  # Show how overlapping claims resolve on this host
  dotfold conflicts

  # Inspect another host's resolution
  dotfold conflicts --host workstation`

func newConflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "conflicts",
		Short:   MsgConflictsShort,
		Long:    conflictsLong,
		Example: conflictsExample,
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

			log.Debug().Str("host", host).Msg("Detecting conflicts")

			res, err := conflicts.Conflicts(conflicts.Options{
				FS:     env.FS,
				Layout: env.Paths.Layout(),
				Host:   host,
			})
			if err != nil {
				return err
			}

			if err := emit(cmd, display.FromConflicts(res), res); err != nil {
				return err
			}
			if len(res.Blocked) > 0 {
				return fmt.Errorf("%d claim(s) blocked on ambiguous ownership", len(res.Blocked))
			}
			return nil
		},
	}
}
