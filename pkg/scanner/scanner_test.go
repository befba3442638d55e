// Test Type: Unit Test
// Description: Tests for the scanner package - lazy tree walks over a tier store

package scanner_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotfold/pkg/scanner"
	"github.com/arthur-debert/dotfold/pkg/testutil"
	"github.com/arthur-debert/dotfold/pkg/types"
)

func buildStore(t *testing.T) *testutil.MemoryFS {
	t.Helper()
	mfs := testutil.NewMemoryFS()
	files := []string{
		"/store/.zshrc",
		"/store/.config/nvim/init.lua",
		"/store/.config/nvim/lua/plugins.lua",
		"/store/.config/app/x.conf",
	}
	for _, f := range files {
		require.NoError(t, mfs.WriteFile(f, []byte("x"), 0644))
	}
	return mfs
}

func TestTree(t *testing.T) {
	s := scanner.New(buildStore(t))

	entries, err := s.Tree("/store")
	require.NoError(t, err)

	want := []scanner.Entry{
		{Logical: ".config", Kind: types.KindDir},
		{Logical: ".config/app", Kind: types.KindDir},
		{Logical: ".config/app/x.conf", Kind: types.KindFile},
		{Logical: ".config/nvim", Kind: types.KindDir},
		{Logical: ".config/nvim/init.lua", Kind: types.KindFile},
		{Logical: ".config/nvim/lua", Kind: types.KindDir},
		{Logical: ".config/nvim/lua/plugins.lua", Kind: types.KindFile},
		{Logical: ".zshrc", Kind: types.KindFile},
	}
	assert.Equal(t, want, entries)
}

func TestChildren(t *testing.T) {
	s := scanner.New(buildStore(t))

	entries, err := s.Children("/store")
	require.NoError(t, err)

	want := []scanner.Entry{
		{Logical: ".config", Kind: types.KindDir},
		{Logical: ".zshrc", Kind: types.KindFile},
	}
	assert.Equal(t, want, entries)
}

func TestWalk(t *testing.T) {
	t.Run("skip_dir_prunes_subtree", func(t *testing.T) {
		s := scanner.New(buildStore(t))

		var seen []string
		err := s.Walk("/store", func(entry scanner.Entry) error {
			seen = append(seen, entry.Logical)
			if entry.Logical == ".config/nvim" {
				return fs.SkipDir
			}
			return nil
		})
		require.NoError(t, err)

		assert.Contains(t, seen, ".config/nvim")
		assert.Contains(t, seen, ".config/app/x.conf")
		assert.NotContains(t, seen, ".config/nvim/init.lua")
		assert.NotContains(t, seen, ".config/nvim/lua")
	})

	t.Run("callback_error_stops_walk", func(t *testing.T) {
		s := scanner.New(buildStore(t))

		boom := assert.AnError
		var count int
		err := s.Walk("/store", func(entry scanner.Entry) error {
			count++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, count)
	})

	t.Run("missing_root_is_empty", func(t *testing.T) {
		s := scanner.New(testutil.NewMemoryFS())

		entries, err := s.Tree("/nowhere")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("file_root_is_an_error", func(t *testing.T) {
		mfs := testutil.NewMemoryFS()
		require.NoError(t, mfs.WriteFile("/store", []byte("x"), 0644))

		err := scanner.New(mfs).Walk("/store", func(scanner.Entry) error { return nil })
		assert.Error(t, err)
	})

	t.Run("restart_sees_current_state", func(t *testing.T) {
		mfs := buildStore(t)
		s := scanner.New(mfs)

		before, err := s.Tree("/store")
		require.NoError(t, err)

		require.NoError(t, mfs.WriteFile("/store/.gitconfig", []byte("x"), 0644))

		after, err := s.Tree("/store")
		require.NoError(t, err)
		assert.Len(t, after, len(before)+1)
	})

	t.Run("symlink_in_store_counts_as_file", func(t *testing.T) {
		mfs := buildStore(t)
		require.NoError(t, mfs.Symlink("/store/.zshrc", "/store/.zshenv"))
		s := scanner.New(mfs)

		kind, ok := s.Exists("/store", ".zshenv")
		assert.True(t, ok)
		assert.Equal(t, types.KindFile, kind)

		entries, err := s.Children("/store")
		require.NoError(t, err)
		var kinds = map[string]types.Kind{}
		for _, e := range entries {
			kinds[e.Logical] = e.Kind
		}
		assert.Equal(t, types.KindFile, kinds[".zshenv"])
	})
}

func TestExists(t *testing.T) {
	s := scanner.New(buildStore(t))

	kind, ok := s.Exists("/store", ".config/nvim")
	assert.True(t, ok)
	assert.Equal(t, types.KindDir, kind)

	kind, ok = s.Exists("/store", ".zshrc")
	assert.True(t, ok)
	assert.Equal(t, types.KindFile, kind)

	_, ok = s.Exists("/store", ".bashrc")
	assert.False(t, ok)
}
