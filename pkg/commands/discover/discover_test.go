// Test Type: Unit Test
// Description: Tests for the discover command - finding unmanaged home content and adopting it

package discover_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotfold/pkg/commands/discover"
	"github.com/arthur-debert/dotfold/pkg/manifest"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/testutil"
	"github.com/arthur-debert/dotfold/pkg/types"
)

func scan(t *testing.T, env *testutil.Env, host string, skip ...string) *discover.Result {
	t.Helper()
	result, err := discover.Discover(discover.Options{
		FS:     env.FS,
		Layout: paths.Layout{Root: env.Root, Home: env.Home},
		Host:   host,
		Skip:   skip,
	})
	require.NoError(t, err)
	return result
}

func logicals(result *discover.Result) []string {
	out := make([]string, 0, len(result.Candidates))
	for _, c := range result.Candidates {
		out = append(out, c.Logical)
	}
	return out
}

func TestDiscover(t *testing.T) {
	t.Run("finds_unmanaged_content", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteTierFile(t, "common", ".zshrc", "zsh")
		env.DeployHome(t, "common", ".zshrc")
		env.WriteHomeFile(t, ".vimrc", "vim")
		env.WriteHomeFile(t, ".config/foo/bar.txt", "bar")
		env.WriteManifest(t, "common: [\".zshrc\"]\n")

		result := scan(t, env, "laptop")
		assert.Equal(t, []string{".config", ".vimrc"}, logicals(result))

		byLogical := map[string]types.Kind{}
		for _, c := range result.Candidates {
			byLogical[c.Logical] = c.Kind
		}
		assert.Equal(t, types.KindDir, byLogical[".config"])
		assert.Equal(t, types.KindFile, byLogical[".vimrc"])
	})

	t.Run("claimed_content_is_managed_even_undeployed", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteHomeFile(t, ".vimrc", "vim")
		env.WriteManifest(t, "common: [\".vimrc\"]\n")

		result := scan(t, env, "laptop")
		assert.Empty(t, result.Candidates)
	})

	t.Run("claimed_directory_covers_its_subtree", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteHomeFile(t, ".config/nvim/init.lua", "lua")
		env.WriteHomeFile(t, ".config/foo/bar.txt", "bar")
		env.WriteManifest(t, "laptop: [\".config/nvim/\"]\n")

		result := scan(t, env, "laptop")
		assert.Equal(t, []string{".config/foo"}, logicals(result))
	})

	t.Run("deployed_links_under_whole_home_are_managed", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteTierFile(t, "common", ".zshrc", "zsh")
		env.DeployHome(t, "common", ".zshrc")
		env.WriteHomeFile(t, ".vimrc", "vim")
		env.WriteManifest(t, "common: [\"\"]\n")

		result := scan(t, env, "laptop")
		assert.Equal(t, []string{".vimrc"}, logicals(result))
	})

	t.Run("other_hosts_claims_do_not_manage", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteHomeFile(t, ".vimrc", "vim")
		env.WriteManifest(t, "desktop: [\".vimrc\"]\n")

		result := scan(t, env, "laptop")
		assert.Equal(t, []string{".vimrc"}, logicals(result))
	})

	t.Run("ignored_and_skipped_paths_are_silent", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteHomeFile(t, ".cache/junk", "junk")
		env.WriteHomeFile(t, ".local/share/Trash/old", "old")
		env.WriteHomeFile(t, ".local/bin/tool", "tool")
		env.WriteHomeFile(t, ".npmrc", "npm")
		env.WriteManifest(t, "laptop: [\".local/bin/\"]\nignore: [\".cache/**\"]\n")

		result := scan(t, env, "laptop", ".local/share/Trash")
		assert.Equal(t, []string{".local/share", ".npmrc"}, logicals(result))
	})

	t.Run("git_directories_are_never_scanned", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteHomeFile(t, ".git/config", "git")
		env.WriteHomeFile(t, ".gitconfig", "git")
		env.WriteManifest(t, "common: []\n")

		result := scan(t, env, "laptop")
		assert.Equal(t, []string{".gitconfig"}, logicals(result))
	})
}

func TestAdd(t *testing.T) {
	t.Run("adds_files_and_decorated_directories", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteHomeFile(t, ".vimrc", "vim")
		env.WriteHomeFile(t, ".config/nvim/init.lua", "lua")
		env.WriteManifest(t, "common: [\".zshrc\"]\n")

		result, err := discover.Add(discover.AddOptions{
			FS:      env.FS,
			Layout:  paths.Layout{Root: env.Root, Home: env.Home},
			Section: "laptop",
			Paths:   []string{".vimrc", ".config/nvim"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{".vimrc", ".config/nvim/"}, result.Entries)

		m, err := manifest.Load(env.FS, "/dotfiles/manifest.yaml")
		require.NoError(t, err)
		assert.Equal(t, []string{".vimrc", ".config/nvim/"}, m.Hosts["laptop"])
	})

	t.Run("ignored_directories_become_subtree_patterns", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteHomeFile(t, ".config/Slack/cache.db", "blob")
		env.WriteManifest(t, "common: [\".zshrc\"]\n")

		result, err := discover.Add(discover.AddOptions{
			FS:      env.FS,
			Layout:  paths.Layout{Root: env.Root, Home: env.Home},
			Section: "ignore",
			Paths:   []string{".config/Slack"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{".config/Slack/**"}, result.Entries)

		m, err := manifest.Load(env.FS, "/dotfiles/manifest.yaml")
		require.NoError(t, err)
		assert.Equal(t, []string{".config/Slack/**"}, m.Ignore)
	})

	t.Run("dry_run_writes_nothing", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteHomeFile(t, ".vimrc", "vim")
		env.WriteManifest(t, "common: [\".zshrc\"]\n")

		before := env.FS.Snapshot()
		result, err := discover.Add(discover.AddOptions{
			FS:      env.FS,
			Layout:  paths.Layout{Root: env.Root, Home: env.Home},
			Section: "common",
			Paths:   []string{".vimrc"},
			DryRun:  true,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{".vimrc"}, result.Entries)
		assert.Equal(t, before, env.FS.Snapshot())
	})

	t.Run("adopted_paths_stop_being_candidates", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteHomeFile(t, ".vimrc", "vim")
		env.WriteManifest(t, "common: [\".zshrc\"]\n")
		require.Equal(t, []string{".vimrc"}, logicals(scan(t, env, "laptop")))

		_, err := discover.Add(discover.AddOptions{
			FS:      env.FS,
			Layout:  paths.Layout{Root: env.Root, Home: env.Home},
			Section: "laptop",
			Paths:   []string{".vimrc"},
		})
		require.NoError(t, err)

		assert.Empty(t, logicals(scan(t, env, "laptop")))
	})
}
