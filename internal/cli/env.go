package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotfold/pkg/config"
	"github.com/arthur-debert/dotfold/pkg/filesystem"
	"github.com/arthur-debert/dotfold/pkg/hostid"
	"github.com/arthur-debert/dotfold/pkg/lock"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// cmdEnv bundles what every command invocation needs: the resolved
// repository paths, the layered configuration, and the real
// filesystem. Host resolution is separate because not every command
// is host-scoped.
type cmdEnv struct {
	Paths  paths.Paths
	Config *config.Config
	FS     types.FS
	DryRun bool
	Yes    bool

	hostFlag string
}

// newCmdEnv reads the persistent flags and builds the command
// environment.
func newCmdEnv(cmd *cobra.Command) (*cmdEnv, error) {
	flags := cmd.Root().PersistentFlags()
	root, _ := flags.GetString("root")
	host, _ := flags.GetString("host")
	dryRun, _ := flags.GetBool("dry-run")
	yes, _ := flags.GetBool("yes")

	p, err := initPaths(root)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(p.Root())
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}

	return &cmdEnv{
		Paths:    p,
		Config:   cfg,
		FS:       filesystem.NewOS(),
		DryRun:   dryRun,
		Yes:      yes,
		hostFlag: host,
	}, nil
}

// ResolveHost returns the host tier this run deploys as.
func (e *cmdEnv) ResolveHost() (string, error) {
	return hostid.Resolve(e.hostFlag, e.Config)
}

// BackupsRoot returns where backup sets live: the configured location,
// or the XDG data default.
func (e *cmdEnv) BackupsRoot() string {
	if e.Config.Backups.Location != "" {
		return e.Config.Backups.Location
	}
	return e.Paths.BackupsRoot()
}

// Locker returns the per-repository flock for mutating commands.
func (e *cmdEnv) Locker() lock.Locker {
	return lock.New(e.Paths.LockPath())
}

// initPaths locates the repository root and warns when falling back to
// the current directory.
func initPaths(root string) (paths.Paths, error) {
	p, err := paths.New(root)
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}

	if p.UsedFallback() {
		fmt.Fprintf(os.Stderr, MsgFallbackWarning, p.Root())
	}

	return p, nil
}
