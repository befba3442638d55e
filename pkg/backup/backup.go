// Package backup captures home-path content before a deploy overwrites
// it and restores it on rollback.
//
// Layout under the backups root:
//
//	<root>/<host>/backup_20060102_150405/
//	    backup_metadata.toml
//	    content/home/<logical path>
//	    content/system/<absolute path>
//	<root>/<host>/latest -> backup_20060102_150405
//
// Only real files and directories are captured, never managed
// symlinks: a link costs nothing to recreate, content is what a deploy
// can destroy.
package backup

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/operations"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/scanner"
	"github.com/arthur-debert/dotfold/pkg/types"
)

const (
	setPrefix    = "backup_"
	timeFormat   = "20060102_150405"
	metadataFile = "backup_metadata.toml"
	contentDir   = "content"
)

// Metadata describes one backup set, stored as TOML inside it.
type Metadata struct {
	Host      string    `toml:"host"`
	CreatedAt time.Time `toml:"created_at"`
	Reason    string    `toml:"reason"`
	Paths     []Entry   `toml:"paths"`
}

// Entry records one captured path.
type Entry struct {
	Logical string     `toml:"logical"`
	Kind    types.Kind `toml:"kind"`
	Mode    uint32     `toml:"mode"`
}

// Set identifies one backup set on disk.
type Set struct {
	ID       string
	Host     string
	Dir      string
	Metadata Metadata
}

// Manager creates, lists, restores and prunes backup sets. Sets live
// under root, one directory per host.
type Manager struct {
	fs     types.FS
	layout paths.Layout
	root   string
	scan   *scanner.Scanner
	logger zerolog.Logger
}

// NewManager creates a Manager storing sets under root.
func NewManager(fsys types.FS, layout paths.Layout, root string) *Manager {
	return &Manager{
		fs:     fsys,
		layout: layout,
		root:   root,
		scan:   scanner.New(fsys),
		logger: logging.GetLogger("backup"),
	}
}

// HostDir returns the directory holding a host's backup sets.
func (m *Manager) HostDir(host string) string {
	return filepath.Join(m.root, host)
}

// Snapshot captures the real content behind every overwrite action
// into a new backup set and repoints the host's latest link at it.
// Paths that cannot be captured are reported in the returned map and
// must not be deployed; the rest of the set is still usable. With
// nothing to overwrite no set is created and all returns are nil.
func (m *Manager) Snapshot(host string, overwrites []operations.Action, reason string) (*Set, map[string]error, error) {
	if len(overwrites) == 0 {
		m.logger.Debug().Str("host", host).Msg("nothing to capture, no backup set created")
		return nil, nil, nil
	}

	hostDir := m.HostDir(host)
	setID, setDir, err := m.newSetDir(hostDir)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrBackupFailed, "creating backup set")
	}

	meta := Metadata{
		Host:      host,
		CreatedAt: time.Now().UTC(),
		Reason:    reason,
	}
	failures := make(map[string]error)

	for _, action := range overwrites {
		entry, err := m.capture(setDir, action.Logical, action.Target)
		if err != nil {
			failures[action.Logical] = errors.Wrapf(err, errors.ErrBackupFailed, "capturing %s", action.Logical)
			m.logger.Warn().Err(err).Str("path", action.Logical).Msg("capture failed")
			continue
		}
		if entry != nil {
			meta.Paths = append(meta.Paths, *entry)
		}
	}

	data, err := toml.Marshal(meta)
	if err != nil {
		return nil, failures, errors.Wrap(err, errors.ErrBackupFailed, "encoding backup metadata")
	}
	if err := m.fs.WriteFile(filepath.Join(setDir, metadataFile), data, 0o644); err != nil {
		return nil, failures, errors.Wrap(err, errors.ErrBackupFailed, "writing backup metadata")
	}

	if err := m.pointLatest(hostDir, setID); err != nil {
		return nil, failures, err
	}

	m.logger.Info().
		Str("host", host).
		Str("backup", setID).
		Int("captured", len(meta.Paths)).
		Int("failed", len(failures)).
		Msg("backup set created")

	set := &Set{ID: setID, Host: host, Dir: setDir, Metadata: meta}
	if len(failures) == 0 {
		failures = nil
	}
	return set, failures, nil
}

// newSetDir creates a uniquely named set directory. Same-second runs
// get a numeric suffix, which still sorts after the bare name.
func (m *Manager) newSetDir(hostDir string) (string, string, error) {
	base := setPrefix + time.Now().Format(timeFormat)
	id := base
	for n := 2; ; n++ {
		dir := filepath.Join(hostDir, id)
		if _, err := m.fs.Lstat(dir); os.IsNotExist(err) {
			if err := m.fs.MkdirAll(dir, 0o755); err != nil {
				return "", "", err
			}
			return id, dir, nil
		} else if err != nil {
			return "", "", err
		}
		id = base + "_" + strconv.Itoa(n)
	}
}

// capture copies one home path into the set. A path that vanished or
// turned out to be a symlink after planning contributes nothing.
func (m *Manager) capture(setDir, logical, target string) (*Entry, error) {
	info, err := m.fs.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return nil, nil
	}

	dst := contentPath(setDir, logical)
	if info.IsDir() {
		if err := m.captureDir(target, dst); err != nil {
			return nil, err
		}
		return &Entry{Logical: logical, Kind: types.KindDir, Mode: uint32(info.Mode().Perm())}, nil
	}
	if err := m.copyFile(target, dst, info.Mode().Perm()); err != nil {
		return nil, err
	}
	return &Entry{Logical: logical, Kind: types.KindFile, Mode: uint32(info.Mode().Perm())}, nil
}

func (m *Manager) captureDir(src, dst string) error {
	if err := m.fs.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	return m.scan.Walk(src, func(entry scanner.Entry) error {
		from := filepath.Join(src, entry.Logical)
		to := filepath.Join(dst, entry.Logical)
		if entry.Kind == types.KindDir {
			return m.fs.MkdirAll(to, 0o755)
		}
		info, err := m.fs.Stat(from)
		if err != nil {
			return err
		}
		return m.copyFile(from, to, info.Mode().Perm())
	})
}

func (m *Manager) copyFile(src, dst string, perm os.FileMode) error {
	data, err := m.fs.ReadFile(src)
	if err != nil {
		return err
	}
	if err := m.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return m.fs.WriteFile(dst, data, perm)
}

// pointLatest repoints the host's latest link. The link target is the
// bare set name so a relocated backups root keeps working.
func (m *Manager) pointLatest(hostDir, setID string) error {
	link := filepath.Join(hostDir, paths.LatestLinkName)
	if err := m.fs.Remove(link); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrBackupFailed, "replacing latest link")
	}
	if err := m.fs.Symlink(setID, link); err != nil {
		return errors.Wrap(err, errors.ErrBackupFailed, "pointing latest link")
	}
	return nil
}

// contentPath maps a logical path to its location inside a set. Home
// and system content keep separate subtrees so absolute and relative
// logicals cannot collide.
func contentPath(setDir, logical string) string {
	if strings.HasPrefix(logical, "/") {
		return filepath.Join(setDir, contentDir, paths.SystemTier, strings.TrimPrefix(logical, "/"))
	}
	return filepath.Join(setDir, contentDir, paths.HomeSubdir, logical)
}
