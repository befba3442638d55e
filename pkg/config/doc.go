// Package config handles configuration management for dotfold.
// It layers the embedded defaults, the user config file, the per-repository
// config file, and DOTFOLD_CFG_* environment variables, in that order.
package config
