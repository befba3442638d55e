// Test Type: Unit Test
// Description: Tests for the backup package - snapshot capture, restore, listing and pruning

package backup_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotfold/pkg/backup"
	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/operations"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/testutil"
)

const backupsRoot = "/backups"

func newManager(env *testutil.Env) *backup.Manager {
	return backup.NewManager(env.FS, paths.Layout{Root: env.Root, Home: env.Home}, backupsRoot)
}

func overwrite(logical, target string) operations.Action {
	return operations.Action{
		Kind:     operations.ActionUnlink,
		Logical:  logical,
		Target:   target,
		Replaces: true,
	}
}

// writeSet fabricates a backup set on disk for list/prune tests.
func writeSet(t *testing.T, env *testutil.Env, host, id string) {
	t.Helper()
	dir := filepath.Join(backupsRoot, host, id)
	meta := fmt.Sprintf("host = %q\ncreated_at = 2025-01-01T00:00:00Z\nreason = \"test\"\n", host)
	require.NoError(t, env.FS.WriteFile(filepath.Join(dir, "backup_metadata.toml"), []byte(meta), 0o644))
}

func TestSnapshot(t *testing.T) {
	t.Run("captures_real_file_with_mode", func(t *testing.T) {
		env := testutil.NewEnv(t)
		require.NoError(t, env.FS.WriteFile(env.HomePath(".zshrc"), []byte("local zsh"), 0o600))

		m := newManager(env)
		set, failures, err := m.Snapshot("laptop", []operations.Action{
			overwrite(".zshrc", env.HomePath(".zshrc")),
		}, "pre-deploy")
		require.NoError(t, err)
		require.Nil(t, failures)
		require.NotNil(t, set)

		require.Len(t, set.Metadata.Paths, 1)
		entry := set.Metadata.Paths[0]
		assert.Equal(t, ".zshrc", entry.Logical)
		assert.Equal(t, "file", entry.Kind.String())
		assert.Equal(t, uint32(0o600), entry.Mode)
		assert.Equal(t, "laptop", set.Metadata.Host)
		assert.False(t, set.Metadata.CreatedAt.IsZero())
		assert.Equal(t, "pre-deploy", set.Metadata.Reason)

		data, err := env.FS.ReadFile(filepath.Join(set.Dir, "content/home/.zshrc"))
		require.NoError(t, err)
		assert.Equal(t, "local zsh", string(data))

		dest, err := env.FS.Readlink(filepath.Join(backupsRoot, "laptop", "latest"))
		require.NoError(t, err)
		assert.Equal(t, set.ID, dest)
	})

	t.Run("captures_directory_tree", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteHomeFile(t, ".config/nvim/init.lua", "lua")
		require.NoError(t, env.FS.WriteFile(env.HomePath(".config/nvim/bin/fmt.sh"), []byte("#!/bin/sh"), 0o700))

		m := newManager(env)
		set, failures, err := m.Snapshot("laptop", []operations.Action{
			overwrite(".config/nvim", env.HomePath(".config/nvim")),
		}, "pre-deploy")
		require.NoError(t, err)
		require.Nil(t, failures)

		require.Len(t, set.Metadata.Paths, 1)
		assert.Equal(t, "dir", set.Metadata.Paths[0].Kind.String())

		data, err := env.FS.ReadFile(filepath.Join(set.Dir, "content/home/.config/nvim/init.lua"))
		require.NoError(t, err)
		assert.Equal(t, "lua", string(data))

		info, err := env.FS.Stat(filepath.Join(set.Dir, "content/home/.config/nvim/bin/fmt.sh"))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%o", 0o700), fmt.Sprintf("%o", info.Mode().Perm()))
	})

	t.Run("symlinks_and_vanished_paths_contribute_nothing", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteTierFile(t, "common", ".zshrc", "repo")
		env.DeployHome(t, "common", ".zshrc")

		m := newManager(env)
		set, failures, err := m.Snapshot("laptop", []operations.Action{
			overwrite(".zshrc", env.HomePath(".zshrc")),
			overwrite(".gone", env.HomePath(".gone")),
		}, "pre-deploy")
		require.NoError(t, err)
		require.Nil(t, failures)
		require.NotNil(t, set)
		assert.Empty(t, set.Metadata.Paths)
	})

	t.Run("no_overwrites_creates_no_set", func(t *testing.T) {
		env := testutil.NewEnv(t)

		m := newManager(env)
		set, failures, err := m.Snapshot("laptop", nil, "pre-deploy")
		require.NoError(t, err)
		assert.Nil(t, set)
		assert.Nil(t, failures)

		_, err = env.FS.Lstat(filepath.Join(backupsRoot, "laptop"))
		assert.Error(t, err)
	})

	t.Run("capture_failure_blocks_only_that_path", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteHomeFile(t, ".zshrc", "zsh")
		env.WriteHomeFile(t, ".vimrc", "vim")
		env.FS.WithError(env.HomePath(".vimrc"), assert.AnError)

		m := newManager(env)
		set, failures, err := m.Snapshot("laptop", []operations.Action{
			overwrite(".zshrc", env.HomePath(".zshrc")),
			overwrite(".vimrc", env.HomePath(".vimrc")),
		}, "pre-deploy")
		require.NoError(t, err)
		require.NotNil(t, set)

		require.Len(t, failures, 1)
		assert.True(t, errors.IsErrorCode(failures[".vimrc"], errors.ErrBackupFailed))

		require.Len(t, set.Metadata.Paths, 1)
		assert.Equal(t, ".zshrc", set.Metadata.Paths[0].Logical)
	})

	t.Run("same_second_snapshots_get_distinct_sets", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteHomeFile(t, ".zshrc", "one")

		m := newManager(env)
		first, _, err := m.Snapshot("laptop", []operations.Action{overwrite(".zshrc", env.HomePath(".zshrc"))}, "a")
		require.NoError(t, err)
		second, _, err := m.Snapshot("laptop", []operations.Action{overwrite(".zshrc", env.HomePath(".zshrc"))}, "b")
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)

		dest, err := env.FS.Readlink(filepath.Join(backupsRoot, "laptop", "latest"))
		require.NoError(t, err)
		assert.Equal(t, second.ID, dest)
	})
}

func TestRestore(t *testing.T) {
	t.Run("restores_content_and_mode_over_deployed_link", func(t *testing.T) {
		env := testutil.NewEnv(t)
		require.NoError(t, env.FS.WriteFile(env.HomePath(".zshrc"), []byte("my old zshrc"), 0o600))

		m := newManager(env)
		_, _, err := m.Snapshot("laptop", []operations.Action{overwrite(".zshrc", env.HomePath(".zshrc"))}, "pre-deploy")
		require.NoError(t, err)

		// Deploy replaced the file with a managed link.
		require.NoError(t, env.FS.Remove(env.HomePath(".zshrc")))
		env.WriteTierFile(t, "common", ".zshrc", "repo zshrc")
		env.DeployHome(t, "common", ".zshrc")

		result, err := m.Restore("laptop", "latest", true)
		require.NoError(t, err)
		assert.True(t, result.Ok())
		assert.Equal(t, []string{".zshrc"}, result.Restored)

		info, err := env.FS.Lstat(env.HomePath(".zshrc"))
		require.NoError(t, err)
		assert.Zero(t, info.Mode().Type(), "restored path must be a regular file")
		assert.Equal(t, fmt.Sprintf("%o", 0o600), fmt.Sprintf("%o", info.Mode().Perm()))

		data, err := env.FS.ReadFile(env.HomePath(".zshrc"))
		require.NoError(t, err)
		assert.Equal(t, "my old zshrc", string(data))
	})

	t.Run("preserve_permissions_off_uses_default_mode", func(t *testing.T) {
		env := testutil.NewEnv(t)
		require.NoError(t, env.FS.WriteFile(env.HomePath(".zshrc"), []byte("zsh"), 0o600))

		m := newManager(env)
		_, _, err := m.Snapshot("laptop", []operations.Action{overwrite(".zshrc", env.HomePath(".zshrc"))}, "pre-deploy")
		require.NoError(t, err)
		require.NoError(t, env.FS.Remove(env.HomePath(".zshrc")))

		result, err := m.Restore("laptop", "", false)
		require.NoError(t, err)
		require.True(t, result.Ok())

		info, err := env.FS.Stat(env.HomePath(".zshrc"))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%o", 0o644), fmt.Sprintf("%o", info.Mode().Perm()))
	})

	t.Run("restores_directory_tree", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteHomeFile(t, ".config/nvim/init.lua", "my lua")
		env.WriteHomeFile(t, ".config/nvim/lua/opts.lua", "opts")

		m := newManager(env)
		_, _, err := m.Snapshot("laptop", []operations.Action{
			overwrite(".config/nvim", env.HomePath(".config/nvim")),
		}, "pre-deploy")
		require.NoError(t, err)

		require.NoError(t, env.FS.RemoveAll(env.HomePath(".config/nvim")))
		env.WriteTierFile(t, "common", ".config/nvim/init.lua", "repo lua")
		env.DeployHome(t, "common", ".config/nvim")

		result, err := m.Restore("laptop", "latest", true)
		require.NoError(t, err)
		require.True(t, result.Ok())

		data, err := env.FS.ReadFile(env.HomePath(".config/nvim/init.lua"))
		require.NoError(t, err)
		assert.Equal(t, "my lua", string(data))
		data, err = env.FS.ReadFile(env.HomePath(".config/nvim/lua/opts.lua"))
		require.NoError(t, err)
		assert.Equal(t, "opts", string(data))
	})

	t.Run("failures_are_collected_per_path", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.WriteHomeFile(t, ".zshrc", "zsh")
		env.WriteHomeFile(t, ".vimrc", "vim")

		m := newManager(env)
		_, _, err := m.Snapshot("laptop", []operations.Action{
			overwrite(".zshrc", env.HomePath(".zshrc")),
			overwrite(".vimrc", env.HomePath(".vimrc")),
		}, "pre-deploy")
		require.NoError(t, err)

		env.FS.WithError(env.HomePath(".vimrc"), assert.AnError)

		result, err := m.Restore("laptop", "latest", true)
		require.NoError(t, err)
		assert.False(t, result.Ok())
		assert.Equal(t, []string{".zshrc"}, result.Restored)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, ".vimrc", result.Failed[0].Logical)
		assert.True(t, errors.IsErrorCode(result.Failed[0].Err, errors.ErrRestoreFailed))
	})

	t.Run("unknown_set_is_not_found", func(t *testing.T) {
		env := testutil.NewEnv(t)

		m := newManager(env)
		_, err := m.Restore("laptop", "backup_19990101_000000", true)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrBackupNotFound))

		_, err = m.Restore("laptop", "latest", true)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrBackupNotFound))
	})
}

func TestListAndPrune(t *testing.T) {
	t.Run("list_is_newest_first", func(t *testing.T) {
		env := testutil.NewEnv(t)
		writeSet(t, env, "laptop", "backup_20250101_000000")
		writeSet(t, env, "laptop", "backup_20250301_000000")
		writeSet(t, env, "laptop", "backup_20250201_000000")

		sets, err := newManager(env).List("laptop")
		require.NoError(t, err)
		require.Len(t, sets, 3)
		assert.Equal(t, "backup_20250301_000000", sets[0].ID)
		assert.Equal(t, "backup_20250101_000000", sets[2].ID)
	})

	t.Run("list_skips_unreadable_sets", func(t *testing.T) {
		env := testutil.NewEnv(t)
		writeSet(t, env, "laptop", "backup_20250101_000000")
		require.NoError(t, env.FS.MkdirAll(filepath.Join(backupsRoot, "laptop", "backup_20250201_000000"), 0o755))

		sets, err := newManager(env).List("laptop")
		require.NoError(t, err)
		require.Len(t, sets, 1)
		assert.Equal(t, "backup_20250101_000000", sets[0].ID)
	})

	t.Run("no_backups_is_an_empty_list", func(t *testing.T) {
		env := testutil.NewEnv(t)
		sets, err := newManager(env).List("laptop")
		require.NoError(t, err)
		assert.Empty(t, sets)
	})

	t.Run("prune_keeps_the_newest_sets", func(t *testing.T) {
		env := testutil.NewEnv(t)
		writeSet(t, env, "laptop", "backup_20250101_000000")
		writeSet(t, env, "laptop", "backup_20250201_000000")
		writeSet(t, env, "laptop", "backup_20250301_000000")
		require.NoError(t, env.FS.Symlink("backup_20250201_000000", filepath.Join(backupsRoot, "laptop", "latest")))

		m := newManager(env)
		removed, err := m.Prune("laptop", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"backup_20250101_000000"}, removed)

		sets, err := m.List("laptop")
		require.NoError(t, err)
		require.Len(t, sets, 2)

		// After a prune the latest link points at the newest surviving set.
		dest, err := env.FS.Readlink(filepath.Join(backupsRoot, "laptop", "latest"))
		require.NoError(t, err)
		assert.Equal(t, "backup_20250301_000000", dest)
	})

	t.Run("prune_zero_removes_everything", func(t *testing.T) {
		env := testutil.NewEnv(t)
		writeSet(t, env, "laptop", "backup_20250101_000000")
		writeSet(t, env, "laptop", "backup_20250201_000000")
		require.NoError(t, env.FS.Symlink("backup_20250201_000000", filepath.Join(backupsRoot, "laptop", "latest")))

		m := newManager(env)
		removed, err := m.Prune("laptop", 0)
		require.NoError(t, err)
		assert.Len(t, removed, 2)

		sets, err := m.List("laptop")
		require.NoError(t, err)
		assert.Empty(t, sets)
		_, err = env.FS.Readlink(filepath.Join(backupsRoot, "laptop", "latest"))
		assert.Error(t, err)
	})

	t.Run("prune_below_threshold_is_a_no_op", func(t *testing.T) {
		env := testutil.NewEnv(t)
		writeSet(t, env, "laptop", "backup_20250101_000000")

		removed, err := newManager(env).Prune("laptop", 5)
		require.NoError(t, err)
		assert.Nil(t, removed)
	})
}
