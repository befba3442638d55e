package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// Reserved top-level keys in manifest.yaml. Every other top-level key
// names a host tier.
const (
	keyCommon   = "common"
	keySystem   = "system"
	keyIgnore   = "ignore"
	keyConflict = "conflict_resolution"
)

// ConflictResolution holds the policy knobs for deployments that would
// displace real files in the home directory.
type ConflictResolution struct {
	// BackupExisting snapshots real files before they are replaced by links
	BackupExisting bool `yaml:"backup_existing"`

	// BackupLocation overrides the default backup directory when non-empty
	BackupLocation string `yaml:"backup_location"`

	// InteractiveConfirm requires explicit confirmation before real files
	// are displaced. Non-interactive runs refuse instead of prompting.
	InteractiveConfirm bool `yaml:"interactive_confirm"`

	// PreservePermissions restores the original file mode on rollback
	PreservePermissions bool `yaml:"preserve_permissions"`
}

// DefaultConflictResolution returns the policy used when manifest.yaml
// carries no conflict_resolution block: back up and confirm before
// touching anything real, and keep permission bits on restore.
func DefaultConflictResolution() ConflictResolution {
	return ConflictResolution{
		BackupExisting:      true,
		BackupLocation:      "",
		InteractiveConfirm:  true,
		PreservePermissions: true,
	}
}

// Manifest is the parsed form of manifest.yaml. Common, Hosts and System
// hold raw entries as written; use the Claims accessors for the
// normalized view that resolution works with.
type Manifest struct {
	// Common lists paths managed for every host. The empty string entry
	// claims the whole home tree.
	Common []string

	// Hosts maps a host tier name to the paths that host overrides
	Hosts map[string][]string

	// System lists absolute paths managed outside the home directory
	System []string

	// Ignore lists glob patterns excluded from management on all tiers
	Ignore []string

	// Conflict is the conflict_resolution policy block
	Conflict ConflictResolution
}

// New returns an empty manifest with default policy. Loading an empty
// manifest.yaml yields exactly this.
func New() *Manifest {
	return &Manifest{
		Hosts:    make(map[string][]string),
		Conflict: DefaultConflictResolution(),
	}
}

// UnmarshalYAML decodes a manifest document, routing unrecognized
// top-level keys into Hosts.
func (m *Manifest) UnmarshalYAML(value *yaml.Node) error {
	*m = *New()

	if value.Kind == 0 || value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest must be a mapping of tier names to path lists")
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i]
		val := value.Content[i+1]

		switch key.Value {
		case keyCommon:
			if err := val.Decode(&m.Common); err != nil {
				return fmt.Errorf("key %q: %w", key.Value, err)
			}
		case keySystem:
			if err := val.Decode(&m.System); err != nil {
				return fmt.Errorf("key %q: %w", key.Value, err)
			}
		case keyIgnore:
			if err := val.Decode(&m.Ignore); err != nil {
				return fmt.Errorf("key %q: %w", key.Value, err)
			}
		case keyConflict:
			if err := val.Decode(&m.Conflict); err != nil {
				return fmt.Errorf("key %q: %w", key.Value, err)
			}
		default:
			var paths []string
			if err := val.Decode(&paths); err != nil {
				return fmt.Errorf("host tier %q: %w", key.Value, err)
			}
			m.Hosts[key.Value] = paths
		}
	}

	return nil
}

// Parse decodes and validates manifest data. The returned manifest is
// ready for resolution; any shape problem is reported here, never later.
func Parse(data []byte) (*Manifest, error) {
	// Empty input never reaches UnmarshalYAML, so start from a manifest
	// that already carries the default policy.
	m := New()
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestParse, "failed to parse manifest")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads and parses the manifest at path.
func Load(fsys types.FS, path string) (*Manifest, error) {
	logger := logging.GetLogger("manifest")

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestLoad, "failed to read manifest %s", path)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("path", path).
		Int("common", len(m.Common)).
		Int("hosts", len(m.Hosts)).
		Int("system", len(m.System)).
		Int("ignore", len(m.Ignore)).
		Msg("manifest loaded")
	return m, nil
}
