package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotfold/pkg/commands/discover"
	"github.com/arthur-debert/dotfold/pkg/display"
)

const discoverLong = `Discover walks the home directory for paths no tier manages yet:
real files and directories that are neither deployed links nor matched
by an ignore pattern. Version control and cache directories are
skipped, along with anything listed under discover.skip in the
configuration.

With --add, the findings are appended to a manifest section instead
of just listed. Name specific paths as arguments to adopt a subset;
with no arguments every discovered candidate is added. Directories
become directory claims ("path/"), or subtree patterns ("path/**")
when the target section is ignore.`

const discoverExample = `  # List unmanaged paths
  dotfold discover

  # Adopt everything unmanaged into the common tier
  dotfold discover --add common

  # Adopt one path into this host's tier, previewing first
  dotfold discover --add laptop .config/app --dry-run

  # Stop tracking candidates you never want managed
  dotfold discover --add ignore .npm`

func newDiscoverCmd() *cobra.Command {
	var section string

	cmd := &cobra.Command{
		Use:     "discover [paths...]",
		Short:   MsgDiscoverShort,
		Long:    discoverLong,
		Example: discoverExample,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newCmdEnv(cmd)
			if err != nil {
				return err
			}
			host, err := env.ResolveHost()
			if err != nil {
				return err
			}

			scan := discover.Options{
				FS:     env.FS,
				Layout: env.Paths.Layout(),
				Host:   host,
				Skip:   env.Config.Discover.Skip,
			}

			if section == "" {
				log.Debug().Str("host", host).Msg("Scanning for unmanaged paths")

				res, err := discover.Discover(scan)
				if err != nil {
					return err
				}
				return emit(cmd, display.FromDiscover(res), res)
			}

			// --add: adopt the named paths, or everything the scan finds
			paths := args
			if len(paths) == 0 {
				res, err := discover.Discover(scan)
				if err != nil {
					return err
				}
				for _, c := range res.Candidates {
					paths = append(paths, c.Logical)
				}
			}

			log.Info().
				Str("section", section).
				Int("paths", len(paths)).
				Bool("dry_run", env.DryRun).
				Msg("Adding paths to the manifest")

			res, err := discover.Add(discover.AddOptions{
				FS:      env.FS,
				Layout:  env.Paths.Layout(),
				Section: section,
				Paths:   paths,
				DryRun:  env.DryRun,
				Locker:  env.Locker(),
			})
			if err != nil {
				return err
			}
			return emit(cmd, display.FromAdd(res), res)
		},
	}

	cmd.Flags().StringVar(&section, "add", "", MsgFlagAdd)
	return cmd
}
