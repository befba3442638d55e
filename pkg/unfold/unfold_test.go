// Test Type: Unit Test
// Description: Tests for the unfold package - store-to-store migrations and decomposition plans

package unfold_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/ignore"
	"github.com/arthur-debert/dotfold/pkg/manifest"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/resolver"
	"github.com/arthur-debert/dotfold/pkg/testutil"
	"github.com/arthur-debert/dotfold/pkg/types"
	"github.com/arthur-debert/dotfold/pkg/unfold"
)

func newMatcher(t *testing.T, patterns ...string) *ignore.Matcher {
	t.Helper()
	m, err := ignore.New(patterns)
	require.NoError(t, err)
	return m
}

func TestApplyFile(t *testing.T) {
	t.Run("moves_content_and_mode", func(t *testing.T) {
		env := testutil.NewEnv(t)
		from := env.TierPath("common", ".config/app/x.conf")
		to := env.TierPath("archlinux", ".config/app/x.conf")
		require.NoError(t, env.FS.WriteFile(from, []byte("setting=1"), 0o755))

		u := unfold.New(env.FS, newMatcher(t))
		result, err := u.Apply([]resolver.Migration{{
			Logical: ".config/app/x.conf",
			Kind:    types.KindFile,
			From:    from,
			To:      to,
		}}, false)
		require.NoError(t, err)
		assert.Equal(t, []string{".config/app/x.conf"}, result.Moved)

		data, err := env.FS.ReadFile(to)
		require.NoError(t, err)
		assert.Equal(t, "setting=1", string(data))

		info, err := env.FS.Stat(to)
		require.NoError(t, err)
		assert.Equal(t, "-rwxr-xr-x", info.Mode().String())

		_, err = env.FS.Lstat(from)
		assert.Error(t, err)
	})

	t.Run("existing_destination_counts_as_done", func(t *testing.T) {
		env := testutil.NewEnv(t)
		from := env.TierPath("common", ".zshrc")
		to := env.TierPath("laptop", ".zshrc")
		env.WriteTierFile(t, "common", ".zshrc", "stale copy")
		env.WriteTierFile(t, "laptop", ".zshrc", "laptop copy")

		u := unfold.New(env.FS, newMatcher(t))
		_, err := u.Apply([]resolver.Migration{{
			Logical: ".zshrc", Kind: types.KindFile, From: from, To: to,
		}}, false)
		require.NoError(t, err)

		data, err := env.FS.ReadFile(to)
		require.NoError(t, err)
		assert.Equal(t, "laptop copy", string(data))

		_, err = env.FS.Lstat(from)
		assert.Error(t, err)
	})

	t.Run("dry_run_never_mutates", func(t *testing.T) {
		env := testutil.NewEnv(t)
		from := env.TierPath("common", ".zshrc")
		to := env.TierPath("laptop", ".zshrc")
		env.WriteTierFile(t, "common", ".zshrc", "zsh")
		before := env.FS.Snapshot()

		u := unfold.New(env.FS, newMatcher(t))
		result, err := u.Apply([]resolver.Migration{{
			Logical: ".zshrc", Kind: types.KindFile, From: from, To: to,
		}}, true)
		require.NoError(t, err)

		assert.True(t, result.DryRun)
		assert.Equal(t, []string{".zshrc"}, result.Moved)
		assert.Equal(t, before, env.FS.Snapshot())
	})

	t.Run("failure_aborts_remaining_migrations", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteTierFile(t, "common", ".zshrc", "zsh")
		env.WriteTierFile(t, "common", ".vimrc", "vim")
		env.FS.WithError(env.TierPath("common", ".vimrc"), assert.AnError)

		u := unfold.New(env.FS, newMatcher(t))
		_, err := u.Apply([]resolver.Migration{
			{Logical: ".zshrc", Kind: types.KindFile,
				From: env.TierPath("common", ".zshrc"), To: env.TierPath("laptop", ".zshrc")},
			{Logical: ".vimrc", Kind: types.KindFile,
				From: env.TierPath("common", ".vimrc"), To: env.TierPath("laptop", ".vimrc")},
		}, false)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrUnfoldFailed))
		assert.Contains(t, err.Error(), ".vimrc")

		// The first move completed and stays completed.
		_, err = env.FS.Lstat(env.TierPath("laptop", ".zshrc"))
		assert.NoError(t, err)
		_, err = env.FS.Lstat(env.TierPath("common", ".zshrc"))
		assert.Error(t, err)
	})
}

func TestApplyDir(t *testing.T) {
	t.Run("ignored_files_stay_in_source_store", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteTierFile(t, "common", ".config/i3/config", "i3 config")
		env.WriteTierFile(t, "common", ".config/i3/scripts/launch.sh", "#!/bin/sh")
		env.WriteTierFile(t, "common", ".config/i3/cache.log", "noise")

		u := unfold.New(env.FS, newMatcher(t, "*.log"))
		result, err := u.Apply([]resolver.Migration{{
			Logical: ".config/i3",
			Kind:    types.KindDir,
			From:    env.TierPath("common", ".config/i3"),
			To:      env.TierPath("laptop", ".config/i3"),
		}}, false)
		require.NoError(t, err)
		assert.Equal(t, []string{".config/i3"}, result.Moved)

		data, err := env.FS.ReadFile(env.TierPath("laptop", ".config/i3/config"))
		require.NoError(t, err)
		assert.Equal(t, "i3 config", string(data))
		_, err = env.FS.Lstat(env.TierPath("laptop", ".config/i3/scripts/launch.sh"))
		assert.NoError(t, err)

		// The log never moved and keeps its source directory alive.
		_, err = env.FS.Lstat(env.TierPath("laptop", ".config/i3/cache.log"))
		assert.Error(t, err)
		_, err = env.FS.Lstat(env.TierPath("common", ".config/i3/cache.log"))
		assert.NoError(t, err)

		// The emptied scripts directory is pruned, the rest survives.
		_, err = env.FS.Lstat(env.TierPath("common", ".config/i3/scripts"))
		assert.Error(t, err)
		_, err = env.FS.Lstat(env.TierPath("common", ".config/i3"))
		assert.NoError(t, err)
	})

	t.Run("fully_moved_directory_is_pruned", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteTierFile(t, "common", ".config/i3/config", "i3")
		env.WriteTierFile(t, "common", ".config/i3/scripts/launch.sh", "sh")

		u := unfold.New(env.FS, newMatcher(t))
		_, err := u.Apply([]resolver.Migration{{
			Logical: ".config/i3",
			Kind:    types.KindDir,
			From:    env.TierPath("common", ".config/i3"),
			To:      env.TierPath("laptop", ".config/i3"),
		}}, false)
		require.NoError(t, err)

		_, err = env.FS.Lstat(env.TierPath("common", ".config/i3"))
		assert.Error(t, err)
		_, err = env.FS.Lstat(env.TierPath("laptop", ".config/i3/scripts/launch.sh"))
		assert.NoError(t, err)
	})

	t.Run("ignored_subtree_is_skipped_whole", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteTierFile(t, "common", ".config/i3/config", "i3")
		env.WriteTierFile(t, "common", ".config/i3/scripts/launch.sh", "sh")

		u := unfold.New(env.FS, newMatcher(t, ".config/i3/scripts/**"))
		_, err := u.Apply([]resolver.Migration{{
			Logical: ".config/i3",
			Kind:    types.KindDir,
			From:    env.TierPath("common", ".config/i3"),
			To:      env.TierPath("laptop", ".config/i3"),
		}}, false)
		require.NoError(t, err)

		_, err = env.FS.Lstat(env.TierPath("common", ".config/i3/scripts/launch.sh"))
		assert.NoError(t, err)
		_, err = env.FS.Lstat(env.TierPath("laptop", ".config/i3/scripts"))
		assert.Error(t, err)
	})

	t.Run("missing_source_is_a_completed_move", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteTierFile(t, "laptop", ".config/i3/config", "already there")

		u := unfold.New(env.FS, newMatcher(t))
		result, err := u.Apply([]resolver.Migration{{
			Logical: ".config/i3",
			Kind:    types.KindDir,
			From:    env.TierPath("common", ".config/i3"),
			To:      env.TierPath("laptop", ".config/i3"),
		}}, false)
		require.NoError(t, err)
		assert.Equal(t, []string{".config/i3"}, result.Moved)
	})
}

func TestPlans(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteTierFile(t, "common", ".config/app/x.conf", "x")
	env.WriteTierFile(t, "common", ".config/app/y.conf", "y")
	env.WriteTierFile(t, "common", ".zshrc", "zsh")

	m, err := manifest.Parse([]byte(`
common: [""]
archlinux: [".config/app/x.conf", ".zshrc"]
`))
	require.NoError(t, err)

	r := resolver.New(env.FS, paths.Layout{Root: env.Root, Home: env.Home})
	res, err := r.Resolve(m, "archlinux")
	require.NoError(t, err)

	// Two migrations, but only the one inside a common directory makes
	// a decomposition plan; .zshrc moves stores without unfolding
	// anything.
	require.Len(t, res.Migrations(), 2)

	plans := unfold.Plans(res)
	require.Len(t, plans, 1)

	plan := plans[0]
	assert.Equal(t, ".config/app", plan.Dir)

	require.Len(t, plan.Overrides, 1)
	assert.Equal(t, ".config/app/x.conf", plan.Overrides[0].Logical)
	assert.Equal(t, "archlinux", plan.Overrides[0].Tier)

	require.Len(t, plan.Keep, 1)
	assert.Equal(t, ".config/app/y.conf", plan.Keep[0].Logical)
	assert.Equal(t, "common", plan.Keep[0].Tier)

	require.Len(t, plan.Migrations, 1)
	assert.Equal(t, env.TierPath("common", ".config/app/x.conf"), plan.Migrations[0].From)
}
