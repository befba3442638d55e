package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/dotfold/pkg/testutil"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		envSetup map[string]string
		validate func(t *testing.T, p Paths)
		wantErr  bool
	}{
		{
			name: "explicit root",
			root: "/tmp/dotfiles",
			validate: func(t *testing.T, p Paths) {
				testutil.AssertEqual(t, "/tmp/dotfiles", p.Root())
			},
		},
		{
			name: "from DOTFOLD_ROOT env",
			envSetup: map[string]string{
				EnvRoot: "/env/dotfiles",
			},
			validate: func(t *testing.T, p Paths) {
				testutil.AssertEqual(t, "/env/dotfiles", p.Root())
			},
		},
		{
			name: "git repository or fallback",
			validate: func(t *testing.T, p Paths) {
				// This test will either find the git root if we're in a git repo,
				// or fall back to the current directory
				testutil.AssertNotEmpty(t, p.Root())
				// The path should be absolute
				testutil.AssertTrue(t, filepath.IsAbs(p.Root()), "Path should be absolute")
			},
		},
		{
			name: "expand tilde in explicit path",
			root: "~/my-dotfiles",
			validate: func(t *testing.T, p Paths) {
				homeDir, _ := os.UserHomeDir()
				expected := filepath.Join(homeDir, "my-dotfiles")
				testutil.AssertEqual(t, expected, p.Root())
			},
		},
		{
			name: "custom XDG directories",
			envSetup: map[string]string{
				EnvDataDir:   "/custom/data",
				EnvConfigDir: "/custom/config",
			},
			validate: func(t *testing.T, p Paths) {
				testutil.AssertEqual(t, "/custom/data", p.DataDir())
				testutil.AssertEqual(t, "/custom/config", p.ConfigDir())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear relevant environment variables first
			t.Setenv(EnvRoot, "")
			t.Setenv(EnvDataDir, "")
			t.Setenv(EnvConfigDir, "")

			// Set up environment
			for k, v := range tt.envSetup {
				t.Setenv(k, v)
			}

			p, err := New(tt.root)

			if tt.wantErr {
				testutil.AssertError(t, err)
				return
			}

			testutil.AssertNoError(t, err)
			testutil.AssertNotNil(t, p)

			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestRepositoryPaths(t *testing.T) {
	p, err := New("/test/dotfiles")
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, "/test/dotfiles/manifest.yaml", p.ManifestPath())
	testutil.AssertEqual(t, "/test/dotfiles/dotfold.toml", p.RootConfigPath())
	testutil.AssertEqual(t, "/test/dotfiles/common", p.TierDir("common"))
	testutil.AssertEqual(t, "/test/dotfiles/archlinux", p.TierDir("archlinux"))
}

func TestTierFilePath(t *testing.T) {
	p, err := New("/test/dotfiles")
	testutil.AssertNoError(t, err)

	tests := []struct {
		name     string
		tier     string
		logical  string
		expected string
	}{
		{
			name:     "common tier file",
			tier:     "common",
			logical:  ".zshrc",
			expected: "/test/dotfiles/common/home/.zshrc",
		},
		{
			name:     "common tier nested file",
			tier:     "common",
			logical:  ".config/app/settings.conf",
			expected: "/test/dotfiles/common/home/.config/app/settings.conf",
		},
		{
			name:     "host tier file",
			tier:     "archlinux",
			logical:  ".config/i3/config",
			expected: "/test/dotfiles/archlinux/home/.config/i3/config",
		},
		{
			name:     "system tier strips leading separator",
			tier:     "system",
			logical:  "/etc/hosts",
			expected: "/test/dotfiles/system/etc/hosts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, tt.expected, p.TierFilePath(tt.tier, tt.logical))
		})
	}
}

func TestHomeMapping(t *testing.T) {
	p, err := New("/test/dotfiles")
	testutil.AssertNoError(t, err)

	homeDir := p.HomeDir()
	testutil.AssertNotEmpty(t, homeDir)

	// Relative logical paths deploy under home
	testutil.AssertEqual(t, filepath.Join(homeDir, ".zshrc"), p.HomePath(".zshrc"))
	testutil.AssertEqual(t, filepath.Join(homeDir, ".config/app/x.conf"), p.HomePath(".config/app/x.conf"))

	// Absolute logical paths deploy as-is
	testutil.AssertEqual(t, "/etc/hosts", p.HomePath("/etc/hosts"))

	// LogicalPath inverts HomePath
	logical, err := p.LogicalPath(filepath.Join(homeDir, ".config/app/x.conf"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ".config/app/x.conf", logical)

	logical, err = p.LogicalPath("/etc/hosts")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "/etc/hosts", logical)
}

func TestBackupPaths(t *testing.T) {
	t.Setenv(EnvDataDir, "/custom/data")

	p, err := New("/test/dotfiles")
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, "/custom/data/backups", p.BackupsRoot())
	testutil.AssertEqual(t, "/custom/data/backups/archlinux", p.HostBackupsDir("archlinux"))
}

func TestLockPath(t *testing.T) {
	p1, err := New("/test/dotfiles")
	testutil.AssertNoError(t, err)

	p2, err := New("/test/dotfiles")
	testutil.AssertNoError(t, err)

	p3, err := New("/other/dotfiles")
	testutil.AssertNoError(t, err)

	// Stable for the same root, distinct across roots
	testutil.AssertEqual(t, p1.LockPath(), p2.LockPath())
	testutil.AssertNotEqual(t, p1.LockPath(), p3.LockPath())

	lock := p1.LockPath()
	testutil.AssertTrue(t, strings.HasPrefix(lock, os.TempDir()), "lock should live in the temp dir")
	testutil.AssertContains(t, filepath.Base(lock), "dotfold-")
	testutil.AssertTrue(t, strings.HasSuffix(lock, ".lock"), "lock should have .lock suffix")
}

func TestExpandHome(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	testutil.AssertNoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "just tilde",
			input:    "~",
			expected: homeDir,
		},
		{
			name:     "tilde with path",
			input:    "~/dotfiles",
			expected: filepath.Join(homeDir, "dotfiles"),
		},
		{
			name:     "tilde other user",
			input:    "~other/path",
			expected: "~other/path", // Not expanded
		},
		{
			name:     "no tilde",
			input:    "/absolute/path",
			expected: "/absolute/path",
		},
		{
			name:     "relative path",
			input:    "relative/path",
			expected: "relative/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExpandHome(tt.input)
			testutil.AssertEqual(t, tt.expected, result)
		})
	}
}

func TestNormalizePath(t *testing.T) {
	p, err := New("/test/dotfiles")
	testutil.AssertNoError(t, err)

	homeDir, _ := os.UserHomeDir()

	tests := []struct {
		name     string
		input    string
		wantErr  bool
		validate func(t *testing.T, result string)
	}{
		{
			name:    "empty path",
			input:   "",
			wantErr: true,
		},
		{
			name:  "absolute path",
			input: "/absolute/path",
			validate: func(t *testing.T, result string) {
				testutil.AssertEqual(t, "/absolute/path", result)
			},
		},
		{
			name:  "relative path",
			input: "relative/path",
			validate: func(t *testing.T, result string) {
				// Should be made absolute
				testutil.AssertTrue(t, filepath.IsAbs(result), "Path should be absolute")
				testutil.AssertTrue(t, strings.HasSuffix(result, filepath.Join("relative", "path")), "Should end with original path")
			},
		},
		{
			name:  "path with tilde",
			input: "~/my/path",
			validate: func(t *testing.T, result string) {
				expected := filepath.Join(homeDir, "my/path")
				testutil.AssertEqual(t, expected, result)
			},
		},
		{
			name:  "path with dots",
			input: "/path/../other",
			validate: func(t *testing.T, result string) {
				testutil.AssertEqual(t, "/other", result)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.NormalizePath(tt.input)

			if tt.wantErr {
				testutil.AssertError(t, err)
				return
			}

			testutil.AssertNoError(t, err)
			if tt.validate != nil {
				tt.validate(t, result)
			}
		})
	}
}

func TestIsInRepo(t *testing.T) {
	p, err := New("/test/dotfiles")
	testutil.AssertNoError(t, err)

	tests := []struct {
		name     string
		path     string
		expected bool
		wantErr  bool
	}{
		{
			name:     "inside repository",
			path:     "/test/dotfiles/common/home/.zshrc",
			expected: true,
		},
		{
			name:     "repository root itself",
			path:     "/test/dotfiles",
			expected: true,
		},
		{
			name:     "outside repository",
			path:     "/other/path",
			expected: false,
		},
		{
			name:     "parent of repository",
			path:     "/test",
			expected: false,
		},
		{
			name:     "relative path inside",
			path:     "/test/dotfiles/../dotfiles/common",
			expected: true,
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.IsInRepo(tt.path)

			if tt.wantErr {
				testutil.AssertError(t, err)
				return
			}

			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, tt.expected, result)
		})
	}
}

func TestLayout(t *testing.T) {
	l := Layout{Root: "/dotfiles", Home: "/home/user"}

	t.Run("tier_stores", func(t *testing.T) {
		testutil.AssertEqual(t, "/dotfiles/common/home", l.TierStore(CommonTier))
		testutil.AssertEqual(t, "/dotfiles/archlinux/home", l.TierStore("archlinux"))
		testutil.AssertEqual(t, "/dotfiles/system", l.TierStore(SystemTier))
	})

	t.Run("tier_file_paths", func(t *testing.T) {
		testutil.AssertEqual(t, "/dotfiles/common/home/.zshrc", l.TierFilePath(CommonTier, ".zshrc"))
		testutil.AssertEqual(t, "/dotfiles/system/etc/hosts", l.TierFilePath(SystemTier, "/etc/hosts"))
	})

	t.Run("home_mapping_roundtrip", func(t *testing.T) {
		deployed := l.HomePath(".config/nvim/init.lua")
		testutil.AssertEqual(t, "/home/user/.config/nvim/init.lua", deployed)

		logical, err := l.LogicalPath(deployed)
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, ".config/nvim/init.lua", logical)

		testutil.AssertEqual(t, "/etc/hosts", l.HomePath("/etc/hosts"))
		logical, err = l.LogicalPath("/etc/hosts")
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, "/etc/hosts", logical)
	})

	t.Run("in_repo", func(t *testing.T) {
		testutil.AssertTrue(t, l.InRepo("/dotfiles/common/home/.zshrc"))
		testutil.AssertTrue(t, l.InRepo("/dotfiles"))
		testutil.AssertFalse(t, l.InRepo("/home/user/.zshrc"))
		testutil.AssertFalse(t, l.InRepo("/dotfiles-other/x"))
	})

	t.Run("paths_layout_matches_interface_methods", func(t *testing.T) {
		p, err := New("/tmp/dotfiles")
		testutil.AssertNoError(t, err)

		layout := p.Layout()
		testutil.AssertEqual(t, p.Root(), layout.Root)
		testutil.AssertEqual(t, p.HomeDir(), layout.Home)
		testutil.AssertEqual(t, p.ManifestPath(), layout.ManifestPath())
		testutil.AssertEqual(t, p.TierFilePath("common", ".zshrc"), layout.TierFilePath("common", ".zshrc"))
	})
}
