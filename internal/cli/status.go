package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotfold/pkg/commands/status"
	"github.com/arthur-debert/dotfold/pkg/display"
)

const statusLong = `Status shows the resolved owner of every manifest path on this host
and the live state of each deployment: linked, pending, or in need of
repair. Pending store moves and blocked claims are listed alongside.

Status never changes anything; it is the read-only view of exactly
what a deploy would do right now.`

const statusExample = `  # Full picture for this host
  dotfold status

  # Resolution for another host
  dotfold status --host workstation`

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"resolve"},
		Short:   MsgStatusShort,
		Long:    statusLong,
		Example: statusExample,
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

			log.Debug().Str("host", host).Msg("Computing status")

			res, err := status.Status(status.Options{
				FS:     env.FS,
				Layout: env.Paths.Layout(),
				Host:   host,
			})
			if err != nil {
				return err
			}

			return emit(cmd, display.FromStatus(res), res)
		},
	}
}
