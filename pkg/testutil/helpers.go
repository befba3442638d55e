package testutil

import (
	"path/filepath"
	"strings"
	"testing"
)

// Env bundles a MemoryFS with the directory layout shared by most tests:
// a dotfiles root and a home directory.
type Env struct {
	FS   *MemoryFS
	Root string
	Home string
}

// NewEnv creates a memory filesystem with an empty dotfiles root and home
func NewEnv(t *testing.T) *Env {
	t.Helper()

	fs := NewMemoryFS()
	env := &Env{
		FS:   fs,
		Root: "/dotfiles",
		Home: "/home/user",
	}

	if err := fs.MkdirAll(env.Root, 0755); err != nil {
		t.Fatalf("creating dotfiles root: %v", err)
	}
	if err := fs.MkdirAll(env.Home, 0755); err != nil {
		t.Fatalf("creating home: %v", err)
	}

	return env
}

// WriteManifest writes manifest.yaml at the dotfiles root
func (e *Env) WriteManifest(t *testing.T, content string) {
	t.Helper()
	if err := e.FS.WriteFile(filepath.Join(e.Root, "manifest.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
}

// TierPath returns the backing-store path for a logical path in a tier
func (e *Env) TierPath(tier, logical string) string {
	if tier == "system" {
		return filepath.Join(e.Root, "system", strings.TrimPrefix(logical, "/"))
	}
	return filepath.Join(e.Root, tier, "home", logical)
}

// HomePath returns the deployed location of a logical path
func (e *Env) HomePath(logical string) string {
	if strings.HasPrefix(logical, "/") {
		return logical
	}
	return filepath.Join(e.Home, logical)
}

// WriteTierFile creates a file in a tier's backing store
func (e *Env) WriteTierFile(t *testing.T, tier, logical, content string) {
	t.Helper()
	if err := e.FS.WriteFile(e.TierPath(tier, logical), []byte(content), 0644); err != nil {
		t.Fatalf("writing %s file %s: %v", tier, logical, err)
	}
}

// WriteHomeFile creates a real (non-symlink) file under home
func (e *Env) WriteHomeFile(t *testing.T, logical, content string) {
	t.Helper()
	if err := e.FS.WriteFile(e.HomePath(logical), []byte(content), 0644); err != nil {
		t.Fatalf("writing home file %s: %v", logical, err)
	}
}

// LinkHome creates a symlink at the deployed location pointing at target
func (e *Env) LinkHome(t *testing.T, logical, target string) {
	t.Helper()
	link := e.HomePath(logical)
	if err := e.FS.MkdirAll(filepath.Dir(link), 0755); err != nil {
		t.Fatalf("creating parent for %s: %v", logical, err)
	}
	if err := e.FS.Symlink(target, link); err != nil {
		t.Fatalf("linking %s -> %s: %v", logical, target, err)
	}
}

// DeployHome creates a correct managed symlink for a tier-owned logical path
func (e *Env) DeployHome(t *testing.T, tier, logical string) {
	t.Helper()
	e.LinkHome(t, logical, e.TierPath(tier, logical))
}
