// Package hostid resolves which host tier applies to the current machine.
//
// Resolution order: explicit override (--host flag), the DOTFOLD_HOST
// environment variable, the host.name config key, and finally the system
// hostname. The resolved name must be usable as a tier directory and must
// not collide with the built-in tiers.
package hostid

import (
	"os"
	"strings"

	"github.com/arthur-debert/dotfold/pkg/config"
	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/paths"
)

// EnvHost is the environment variable naming the host tier
const EnvHost = "DOTFOLD_HOST"

// Resolve determines the host tier name. override is the --host flag value
// and wins when non-empty; cfg may be nil.
func Resolve(override string, cfg *config.Config) (string, error) {
	if override != "" {
		return checked(override)
	}

	if env := os.Getenv(EnvHost); env != "" {
		return checked(env)
	}

	if cfg != nil && cfg.Host.Name != "" {
		return checked(cfg.Host.Name)
	}

	name, err := os.Hostname()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrHostUnknown, "failed to determine hostname")
	}
	return checked(name)
}

// checked validates that a name can serve as a host tier
func checked(name string) (string, error) {
	name = strings.TrimSpace(name)

	if err := paths.ValidateTierName(name); err != nil {
		return "", errors.Wrapf(err, errors.ErrHostUnknown, "invalid host name %q", name)
	}

	// The built-in tiers are not host names
	if name == paths.CommonTier || name == paths.SystemTier {
		return "", errors.Newf(errors.ErrHostUnknown, "host name %q collides with a built-in tier", name)
	}

	return name, nil
}
