package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotfold/pkg/commands/genconfig"
	"github.com/arthur-debert/dotfold/pkg/filesystem"
	"github.com/arthur-debert/dotfold/pkg/paths"
)

const genConfigLong = `GenConfig prints an annotated configuration template with every knob
documented and set to its default. With --write the template is saved
to <root>/dotfold.toml instead; an existing file is never overwritten.

With --effective, the fully resolved configuration is printed after
layering defaults, the user config, the repository config, and
DOTFOLD_CFG_* environment variables.`

const genConfigExample = `  # Print the annotated template
  dotfold genconfig

  # Start a repository config file
  dotfold genconfig --write

  # What is dotfold actually running with?
  dotfold genconfig --effective`

func newGenConfigCmd() *cobra.Command {
	var (
		effective bool
		write     bool
	)

	cmd := &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenConfigShort,
		Long:    genConfigLong,
		Example: genConfigExample,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Paths only; genconfig layers configuration itself
			p, err := paths.New(rootFlag(cmd))
			if err != nil {
				return fmt.Errorf(MsgErrInitPaths, err)
			}

			res, err := genconfig.GenConfig(genconfig.Options{
				FS:        filesystem.NewOS(),
				Root:      p.Root(),
				Effective: effective,
				Write:     write,
			})
			if err != nil {
				return err
			}

			if write {
				if res.Written == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "Config file already exists; left alone.")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", res.Written)
				}
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), res.Content)
			return nil
		},
	}

	cmd.Flags().BoolVar(&effective, "effective", false, MsgFlagEffective)
	cmd.Flags().BoolVar(&write, "write", false, MsgFlagWrite)
	return cmd
}

// rootFlag reads the persistent --root value.
func rootFlag(cmd *cobra.Command) string {
	root, _ := cmd.Root().PersistentFlags().GetString("root")
	return root
}
