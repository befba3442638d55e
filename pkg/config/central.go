package config

// Manifest holds manifest discovery configuration
type Manifest struct {
	// File is the manifest filename inside the repository root
	File string `koanf:"file" toml:"file"`
}

// Host holds host identity configuration
type Host struct {
	// Name pins the host tier for this machine.
	// Empty means the system hostname; --host and DOTFOLD_HOST override it.
	Name string `koanf:"name" toml:"name"`
}

// Tiers holds the directory names for the built-in tiers.
// Host tiers are named after the host and are not configurable.
type Tiers struct {
	Common string `koanf:"common" toml:"common"`
	System string `koanf:"system" toml:"system"`
}

// Backups holds backup storage configuration
type Backups struct {
	// Location is the backup root directory.
	// Empty means $XDG_DATA_HOME/dotfold/backups.
	Location string `koanf:"location" toml:"location"`

	// Keep is the number of backup sets retained per host by prune
	Keep int `koanf:"keep" toml:"keep"`
}

// Lock holds lock file configuration
type Lock struct {
	// Dir is the directory for the advisory lock file.
	// Empty means the system temp directory.
	Dir string `koanf:"dir" toml:"dir"`
}

// Discover holds home directory scan configuration
type Discover struct {
	// Skip lists directories (relative to home) excluded from discovery
	Skip []string `koanf:"skip" toml:"skip"`
}

// Config is the main configuration structure
type Config struct {
	Manifest Manifest `koanf:"manifest" toml:"manifest"`
	Host     Host     `koanf:"host" toml:"host"`
	Tiers    Tiers    `koanf:"tiers" toml:"tiers"`
	Backups  Backups  `koanf:"backups" toml:"backups"`
	Lock     Lock     `koanf:"lock" toml:"lock"`
	Discover Discover `koanf:"discover" toml:"discover"`
}

// Default returns the default configuration
func Default() *Config {
	// Load the actual defaults from the embedded file
	cfg, err := Load("")
	if err != nil {
		// Fallback to a minimal config if loading fails
		return &Config{
			Manifest: Manifest{File: "manifest.yaml"},
			Tiers:    Tiers{Common: "common", System: "system"},
			Backups:  Backups{Keep: 10},
			Discover: Discover{Skip: []string{".git", ".cache"}},
		}
	}
	return cfg
}
