// Test Type: Unit Test
// Description: Tests for the validate command - surfacing deployment issues without mutating

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotfold/pkg/commands/validate"
	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/testutil"
	"github.com/arthur-debert/dotfold/pkg/validation"
)

func run(t *testing.T, env *testutil.Env, host string) *validate.Result {
	t.Helper()
	result, err := validate.Validate(validate.Options{
		FS:     env.FS,
		Layout: paths.Layout{Root: env.Root, Home: env.Home},
		Host:   host,
	})
	require.NoError(t, err)
	return result
}

func TestValidate(t *testing.T) {
	t.Run("clean_deployment_is_ok", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteTierFile(t, "common", ".zshrc", "zsh")
		env.DeployHome(t, "common", ".zshrc")
		env.WriteManifest(t, "common: [\".zshrc\"]\n")

		result := run(t, env, "laptop")
		assert.True(t, result.Ok())
		assert.Empty(t, result.Issues)
	})

	t.Run("issues_surface_with_their_class", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteTierFile(t, "common", ".zshrc", "zsh")
		env.WriteManifest(t, "common: [\".zshrc\", \".vimrc\"]\n")

		result := run(t, env, "laptop")
		assert.False(t, result.Ok())
		require.Len(t, result.Issues, 2)
		classes := map[string]validation.Class{}
		for _, issue := range result.Issues {
			classes[issue.Logical] = issue.Class
		}
		assert.Equal(t, validation.ClassMissingSymlink, classes[".zshrc"])
		assert.Equal(t, validation.ClassMissingEverywhere, classes[".vimrc"])
	})

	t.Run("never_mutates", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteTierFile(t, "common", ".zshrc", "zsh")
		env.WriteHomeFile(t, ".vimrc", "vim")
		env.WriteManifest(t, "common: [\".zshrc\", \".vimrc\"]\n")

		before := env.FS.Snapshot()
		run(t, env, "laptop")
		assert.Equal(t, before, env.FS.Snapshot())
	})

	t.Run("broken_manifest_is_an_error", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteManifest(t, "common: [\"nested: [broken\n")

		_, err := validate.Validate(validate.Options{
			FS:     env.FS,
			Layout: paths.Layout{Root: env.Root, Home: env.Home},
			Host:   "laptop",
		})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestParse))
	})
}
