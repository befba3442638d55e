package config

// Global configuration instance
var globalConfig *Config

// Initialize sets up the global configuration
func Initialize(cfg *Config) {
	if cfg == nil {
		cfg = Default()
	}
	globalConfig = cfg
}

// Get returns the current configuration
func Get() *Config {
	if globalConfig == nil {
		Initialize(nil)
	}
	return globalConfig
}

// GetManifest returns manifest discovery configuration
func GetManifest() Manifest {
	return Get().Manifest
}

// GetHost returns host identity configuration
func GetHost() Host {
	return Get().Host
}

// GetTiers returns tier naming configuration
func GetTiers() Tiers {
	return Get().Tiers
}

// GetBackups returns backup storage configuration
func GetBackups() Backups {
	return Get().Backups
}

// GetLock returns lock file configuration
func GetLock() Lock {
	return Get().Lock
}

// GetDiscover returns home scan configuration
func GetDiscover() Discover {
	return Get().Discover
}
