package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotfold/pkg/commands/validate"
	"github.com/arthur-debert/dotfold/pkg/display"
)

const validateLong = `Validate cross-checks the manifest, the tier stores, and the home
directory, and reports every inconsistency it finds:

  - claims with no backing content in any applicable tier
  - claims whose content is missing from the owning tier's store
  - store content a deploy never created links for
  - home paths holding real files where links belong

Validation is read-only and exits nonzero when any issue is found,
which makes it suitable as a pre-commit or CI check.`

const validateExample = `  # Check the repository for this host
  dotfold validate

  # Machine-readable issue list
  dotfold validate --format json`

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "validate",
		Short:   MsgValidateShort,
		Long:    validateLong,
		Example: validateExample,
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

			log.Debug().Str("host", host).Msg("Validating repository")

			res, err := validate.Validate(validate.Options{
				FS:     env.FS,
				Layout: env.Paths.Layout(),
				Host:   host,
			})
			if err != nil {
				return err
			}

			if err := emit(cmd, display.FromValidate(res), res); err != nil {
				return err
			}
			if !res.Ok() {
				return fmt.Errorf("%d validation issue(s)", len(res.Issues))
			}
			return nil
		},
	}
}
