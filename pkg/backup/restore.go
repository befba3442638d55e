package backup

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/scanner"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// PathError records one path a restore could not bring back.
type PathError struct {
	Logical string
	Err     error
}

// Result reports a restore with every recorded path accounted for.
type Result struct {
	BackupID string
	Restored []string
	Failed   []PathError
}

// Ok reports whether every recorded path was restored.
func (r *Result) Ok() bool {
	return len(r.Failed) == 0
}

// Restore re-materializes every path a backup set captured. An empty
// id or "latest" picks the newest set. Whatever occupies a path now is
// removed first. Failures are collected per path; the remaining paths
// are still attempted.
func (m *Manager) Restore(host, id string, preservePerms bool) (*Result, error) {
	set, err := m.findSet(host, id)
	if err != nil {
		return nil, err
	}

	result := &Result{BackupID: set.ID}
	for _, entry := range set.Metadata.Paths {
		if err := m.restorePath(set, entry, preservePerms); err != nil {
			result.Failed = append(result.Failed, PathError{
				Logical: entry.Logical,
				Err:     errors.Wrapf(err, errors.ErrRestoreFailed, "restoring %s", entry.Logical),
			})
			m.logger.Warn().Err(err).Str("path", entry.Logical).Msg("restore failed")
			continue
		}
		result.Restored = append(result.Restored, entry.Logical)
	}

	m.logger.Info().
		Str("host", host).
		Str("backup", set.ID).
		Int("restored", len(result.Restored)).
		Int("failed", len(result.Failed)).
		Msg("restore finished")
	return result, nil
}

func (m *Manager) restorePath(set *Set, entry Entry, preservePerms bool) error {
	src := contentPath(set.Dir, entry.Logical)
	dst := m.layout.HomePath(entry.Logical)

	if err := m.fs.RemoveAll(dst); err != nil {
		return err
	}

	if entry.Kind == types.KindDir {
		rootPerm := os.FileMode(0o755)
		if preservePerms && entry.Mode != 0 {
			rootPerm = os.FileMode(entry.Mode)
		}
		if err := m.fs.MkdirAll(dst, rootPerm); err != nil {
			return err
		}
		return m.scan.Walk(src, func(child scanner.Entry) error {
			from := filepath.Join(src, child.Logical)
			to := filepath.Join(dst, child.Logical)
			if child.Kind == types.KindDir {
				return m.fs.MkdirAll(to, 0o755)
			}
			perm := os.FileMode(0o644)
			if preservePerms {
				info, err := m.fs.Stat(from)
				if err != nil {
					return err
				}
				perm = info.Mode().Perm()
			}
			return m.copyFile(from, to, perm)
		})
	}

	perm := os.FileMode(0o644)
	if preservePerms && entry.Mode != 0 {
		perm = os.FileMode(entry.Mode)
	}
	return m.copyFile(src, dst, perm)
}

// List returns a host's backup sets, newest first. Sets whose metadata
// cannot be read are skipped with a warning.
func (m *Manager) List(host string) ([]Set, error) {
	hostDir := m.HostDir(host)
	children, err := m.fs.ReadDir(hostDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "reading %s", hostDir)
	}

	var sets []Set
	for _, child := range children {
		if !child.IsDir() || !strings.HasPrefix(child.Name(), setPrefix) {
			continue
		}
		set, err := m.loadSet(host, child.Name())
		if err != nil {
			m.logger.Warn().Err(err).Str("backup", child.Name()).Msg("unreadable backup set skipped")
			continue
		}
		sets = append(sets, *set)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].ID > sets[j].ID })
	return sets, nil
}

// Prune removes all but the newest keep sets and returns the removed
// ids. keep <= 0 removes every set along with the latest link.
func (m *Manager) Prune(host string, keep int) ([]string, error) {
	sets, err := m.List(host)
	if err != nil {
		return nil, err
	}
	if keep < 0 {
		keep = 0
	}
	if len(sets) <= keep {
		return nil, nil
	}

	var removed []string
	for _, set := range sets[keep:] {
		if err := m.fs.RemoveAll(set.Dir); err != nil {
			return removed, errors.Wrapf(err, errors.ErrBackupFailed, "removing backup %s", set.ID)
		}
		removed = append(removed, set.ID)
	}
	m.logger.Info().Str("host", host).Strs("removed", removed).Msg("backups pruned")

	link := filepath.Join(m.HostDir(host), paths.LatestLinkName)
	if keep == 0 {
		if err := m.fs.Remove(link); err != nil && !os.IsNotExist(err) {
			return removed, errors.Wrap(err, errors.ErrBackupFailed, "removing latest link")
		}
		return removed, nil
	}

	// The newest set survives every prune; the link only needs repair
	// when it pointed at a removed set.
	if dest, err := m.fs.Readlink(link); err != nil || filepath.Base(dest) != sets[0].ID {
		if err := m.pointLatest(m.HostDir(host), sets[0].ID); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// findSet resolves an id, treating "" and "latest" as the newest set.
func (m *Manager) findSet(host, id string) (*Set, error) {
	if id == "" || id == paths.LatestLinkName {
		return m.latest(host)
	}
	set, err := m.loadSet(host, id)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrBackupNotFound, "host %s has no backup %s", host, id)
		}
		return nil, errors.Wrapf(err, errors.ErrBackupFailed, "loading backup %s", id)
	}
	return set, nil
}

// latest follows the host's latest link, falling back to the newest
// set on disk when the link is missing or dangling.
func (m *Manager) latest(host string) (*Set, error) {
	link := filepath.Join(m.HostDir(host), paths.LatestLinkName)
	if dest, err := m.fs.Readlink(link); err == nil {
		set, err := m.loadSet(host, filepath.Base(dest))
		if err == nil {
			return set, nil
		}
		m.logger.Warn().Str("dest", dest).Msg("latest link is dangling, using newest set")
	}

	sets, err := m.List(host)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, errors.Newf(errors.ErrBackupNotFound, "host %s has no backups", host)
	}
	return &sets[0], nil
}

func (m *Manager) loadSet(host, id string) (*Set, error) {
	dir := filepath.Join(m.HostDir(host), id)
	data, err := m.fs.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := toml.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &Set{ID: id, Host: host, Dir: dir, Metadata: meta}, nil
}
