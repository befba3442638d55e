package operations

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// Executor carries out a deployment plan against the filesystem.
type Executor struct {
	fs     types.FS
	dryRun bool
	logger zerolog.Logger
}

// NewExecutor creates an Executor. With dryRun set, Execute reports
// what would happen without touching the filesystem.
func NewExecutor(fsys types.FS, dryRun bool) *Executor {
	return &Executor{
		fs:     fsys,
		dryRun: dryRun,
		logger: logging.GetLogger("executor"),
	}
}

// Execute runs the plan in order. A failed action is recorded and
// blocks later actions on the same logical path; unrelated paths carry
// on. Unlink of an already-absent path counts as applied, which is
// what makes an interrupted run re-runnable.
func (e *Executor) Execute(plan *Plan) *Result {
	result := &Result{DryRun: e.dryRun}
	failed := make(map[string]bool)

	for _, action := range plan.Actions {
		if action.Kind == ActionSkip {
			result.Skipped = append(result.Skipped, action)
			continue
		}
		if failed[action.Logical] {
			continue
		}

		e.logger.Debug().
			Str("action", action.Kind.String()).
			Str("path", action.Logical).
			Bool("dry_run", e.dryRun).
			Msg("executing")

		if e.dryRun {
			result.Applied = append(result.Applied, action)
			continue
		}

		if err := e.run(action); err != nil {
			failed[action.Logical] = true
			result.Failed = append(result.Failed, Failure{
				Action: action,
				Err:    errors.Wrapf(err, errors.ErrExecuteFailed, "%s %s", action.Kind, action.Logical),
			})
			continue
		}
		result.Applied = append(result.Applied, action)
	}

	e.logger.Info().
		Int("applied", len(result.Applied)).
		Int("skipped", len(result.Skipped)).
		Int("failed", len(result.Failed)).
		Bool("dry_run", e.dryRun).
		Msg("plan executed")
	return result
}

func (e *Executor) run(action Action) error {
	switch action.Kind {
	case ActionUnlink:
		return e.unlink(action.Target)
	case ActionLink:
		if err := e.fs.MkdirAll(filepath.Dir(action.Target), 0o755); err != nil {
			return err
		}
		return e.fs.Symlink(action.Source, action.Target)
	default:
		return errors.Newf(errors.ErrInternal, "unknown action kind %d", action.Kind)
	}
}

// unlink clears whatever occupies target. Real directories go through
// RemoveAll: the planner only marks them for removal when a link
// replaces them, after the backup captured their content.
func (e *Executor) unlink(target string) error {
	info, err := e.fs.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Mode()&os.ModeSymlink == 0 && info.IsDir() {
		return e.fs.RemoveAll(target)
	}
	return e.fs.Remove(target)
}
