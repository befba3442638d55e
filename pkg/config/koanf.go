package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/paths"
)

// envPrefix namespaces dotfold's environment overrides
const envPrefix = "DOTFOLD_CFG_"

// LoadKoanf loads the layered configuration and returns the raw koanf tree.
// Layers, lowest to highest precedence:
//
//  1. embedded defaults.toml
//  2. $XDG_CONFIG_HOME/dotfold/config.toml (if present)
//  3. <root>/dotfold.toml or <root>/.dotfold.toml (if root given and present)
//  4. DOTFOLD_CFG_* environment variables (DOTFOLD_CFG_BACKUPS_KEEP=5)
func LoadKoanf(root string) (*koanf.Koanf, error) {
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config
	userConfig := filepath.Join(userConfigDir(), "config.toml")
	if _, err := os.Stat(userConfig); err == nil {
		if err := k.Load(file.Provider(userConfig), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load user config from %s", userConfig)
		}
	}

	// 3. Root config, if a repository root is known
	if root != "" {
		for _, filename := range []string{"." + paths.RootConfigFileName, paths.RootConfigFileName} {
			path := filepath.Join(root, filename)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
					return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load root config from %s", path)
				}
				break
			}
		}
	}

	// 4. Environment overrides
	if err := k.Load(env.Provider(envPrefix, ".", envToKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	return k, nil
}

// Load loads the layered configuration and unmarshals it into a Config
func Load(root string) (*Config, error) {
	k, err := LoadKoanf(root)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if cfg.Backups.Keep < 0 {
		return nil, errors.Newf(errors.ErrConfigParse, "backups.keep must not be negative: %d", cfg.Backups.Keep)
	}

	return &cfg, nil
}

// envToKey maps DOTFOLD_CFG_BACKUPS_KEEP to backups.keep
func envToKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
}

// userConfigDir returns the user-level configuration directory,
// respecting the DOTFOLD_CONFIG_DIR override
func userConfigDir() string {
	if dir := os.Getenv(paths.EnvConfigDir); dir != "" {
		return paths.ExpandHome(dir)
	}
	return filepath.Join(xdg.ConfigHome, paths.DotfoldDirName)
}
