// Test Type: Unit Test
// Description: Tests for the genconfig command - rendering templates and effective configuration

package genconfig_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotfold/pkg/commands/genconfig"
	"github.com/arthur-debert/dotfold/pkg/testutil"
)

func TestGenConfig(t *testing.T) {
	t.Run("template_is_fully_commented", func(t *testing.T) {
		result, err := genconfig.GenConfig(genconfig.Options{})
		require.NoError(t, err)

		assert.Contains(t, result.Content, "[backups]")
		assert.Contains(t, result.Content, "# keep = 10")
		for _, line := range strings.Split(result.Content, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			assert.True(t, strings.HasPrefix(trimmed, "["),
				"uncommented value line in template: %q", line)
		}
		assert.Empty(t, result.Written)
	})

	t.Run("effective_includes_environment_overrides", func(t *testing.T) {
		t.Setenv("DOTFOLD_CONFIG_DIR", t.TempDir())
		t.Setenv("DOTFOLD_CFG_BACKUPS_KEEP", "3")

		result, err := genconfig.GenConfig(genconfig.Options{Effective: true})
		require.NoError(t, err)

		assert.Contains(t, result.Content, "[backups]")
		assert.Contains(t, result.Content, "keep = 3")
		assert.Contains(t, result.Content, "[discover]")
	})

	t.Run("write_saves_the_template_once", func(t *testing.T) {
		env := testutil.NewEnv(t)

		result, err := genconfig.GenConfig(genconfig.Options{
			FS:    env.FS,
			Root:  env.Root,
			Write: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "/dotfiles/dotfold.toml", result.Written)

		data, err := env.FS.ReadFile("/dotfiles/dotfold.toml")
		require.NoError(t, err)
		assert.Contains(t, string(data), "# keep = 10")

		// A second write leaves the existing file alone.
		again, err := genconfig.GenConfig(genconfig.Options{
			FS:    env.FS,
			Root:  env.Root,
			Write: true,
		})
		require.NoError(t, err)
		assert.Empty(t, again.Written)
	})
}
