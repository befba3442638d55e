package display

import (
	"fmt"

	"github.com/arthur-debert/dotfold/pkg/commands/backups"
	"github.com/arthur-debert/dotfold/pkg/commands/cleanup"
	"github.com/arthur-debert/dotfold/pkg/commands/conflicts"
	"github.com/arthur-debert/dotfold/pkg/commands/deploy"
	"github.com/arthur-debert/dotfold/pkg/commands/discover"
	"github.com/arthur-debert/dotfold/pkg/commands/rollback"
	"github.com/arthur-debert/dotfold/pkg/commands/status"
	"github.com/arthur-debert/dotfold/pkg/commands/validate"
	"github.com/arthur-debert/dotfold/pkg/operations"
	"github.com/arthur-debert/dotfold/pkg/resolver"
	"github.com/arthur-debert/dotfold/pkg/style"
	"github.com/arthur-debert/dotfold/pkg/validation"
)

// timeLayout is how set timestamps appear in listings
const timeLayout = "2006-01-02 15:04:05"

// FromDeploy builds the report for a deploy run.
func FromDeploy(res *deploy.Result) Report {
	rep := Report{Command: "deploy", Host: res.Host, DryRun: res.DryRun}

	rep.add(migrationSection(res.Migrations, res.DryRun))

	links := Section{Title: "Links"}
	for _, a := range res.Execution.Applied {
		links.Rows = append(links.Rows, actionRow(a, res.DryRun))
	}
	for _, a := range res.Execution.Skipped {
		links.Rows = append(links.Rows, actionRow(a, res.DryRun))
	}
	for _, f := range res.Execution.Failed {
		links.Rows = append(links.Rows, Row{
			Status:  style.StatusError,
			Kind:    f.Action.Kind.String(),
			Path:    f.Action.Logical,
			Message: fmt.Sprintf("failed: %v", f.Err),
		})
	}
	rep.add(links)

	rep.add(blockedSection(res.Blocked))

	withheld := Section{Title: "Withheld paths"}
	for _, logical := range res.BackupFailed {
		withheld.Rows = append(withheld.Rows, Row{
			Status:  style.StatusError,
			Kind:    "backup",
			Path:    logical,
			Message: "backup failed; left untouched",
		})
	}
	rep.add(withheld)

	if res.BackupID != "" {
		rep.Notes = append(rep.Notes, fmt.Sprintf("Backup %s saved before overwrites.", res.BackupID))
	}
	return rep
}

// FromStatus builds the report for the live host picture.
func FromStatus(res *status.Result) Report {
	rep := Report{Command: "status", Host: res.Host}

	paths := Section{Title: "Paths"}
	for _, a := range res.Plan.Actions {
		// Pending work shows in future tense; skips are the paths
		// already in their deployed state.
		paths.Rows = append(paths.Rows, actionRow(a, a.Kind != operations.ActionSkip))
	}
	rep.add(paths)

	rep.add(migrationSection(res.Migrations, true))
	rep.add(blockedSection(res.Blocked))

	if res.Clean() {
		rep.Notes = append(rep.Notes, "Everything in place; a deploy would change nothing.")
	}
	return rep
}

// FromValidate builds the report for a validation run, grouped by
// issue class.
func FromValidate(res *validate.Result) Report {
	rep := Report{Command: "validate", Host: res.Host}

	classes := []struct {
		class validation.Class
		title string
	}{
		{validation.ClassOrphanedConfig, "Orphaned claims"},
		{validation.ClassMissingEverywhere, "Missing everywhere"},
		{validation.ClassMissingInRepo, "Missing in repo"},
		{validation.ClassMissingSymlink, "Missing symlinks"},
	}
	for _, c := range classes {
		sec := Section{Title: c.title}
		for _, i := range res.Issues {
			if i.Class != c.class {
				continue
			}
			msg := i.Reason
			if i.Hint != "" {
				msg += " (" + i.Hint + ")"
			}
			sec.Rows = append(sec.Rows, Row{
				Status:  style.StatusAlert,
				Kind:    i.Tier,
				Path:    i.Logical,
				Message: msg,
			})
		}
		rep.add(sec)
	}

	if res.Ok() {
		rep.Notes = append(rep.Notes, "No issues found.")
	}
	return rep
}

// FromConflicts builds the report for overlapping claims: one section
// per decomposing directory, then the moves and blocks outside them.
func FromConflicts(res *conflicts.Result) Report {
	rep := Report{Command: "conflicts", Host: res.Host}

	inPlans := make(map[string]bool)
	for _, p := range res.Plans {
		sec := Section{Title: p.Dir}
		for _, e := range p.Overrides {
			sec.Rows = append(sec.Rows, Row{
				Status:  style.StatusQueue,
				Kind:    "override",
				Path:    e.Logical,
				Message: "owned by " + e.Tier,
			})
		}
		for _, e := range p.Keep {
			sec.Rows = append(sec.Rows, Row{
				Status:  style.StatusNote,
				Kind:    "keep",
				Path:    e.Logical,
				Message: "stays with common",
			})
		}
		for _, m := range p.Migrations {
			inPlans[m.Logical] = true
			sec.Rows = append(sec.Rows, migrationRow(m, true))
		}
		rep.add(sec)
	}

	loose := Section{Title: "Store moves"}
	for _, m := range res.Migrations {
		if !inPlans[m.Logical] {
			loose.Rows = append(loose.Rows, migrationRow(m, true))
		}
	}
	rep.add(loose)

	rep.add(blockedSection(res.Blocked))

	if len(res.Plans) == 0 && len(res.Blocked) == 0 {
		rep.Notes = append(rep.Notes, "No overlapping claims.")
	}
	return rep
}

// FromCleanup builds the report for an ignored-content sweep.
func FromCleanup(res *cleanup.Result) Report {
	rep := Report{Command: "cleanup", DryRun: res.DryRun}

	if res.DryRun {
		sec := Section{Title: "Ignored content"}
		for _, c := range res.Candidates {
			sec.Rows = append(sec.Rows, Row{
				Status:  style.StatusIgnored,
				Kind:    "remove",
				Path:    c.Logical,
				Message: verb("remove", true) + " " + c.Tier,
			})
		}
		rep.add(sec)
		return rep
	}

	sec := Section{Title: "Removed"}
	for _, c := range res.Removed {
		sec.Rows = append(sec.Rows, Row{
			Status:  style.StatusDone,
			Kind:    "remove",
			Path:    c.Logical,
			Message: verb("remove", false) + " " + c.Tier,
		})
	}
	for _, f := range res.Failed {
		sec.Rows = append(sec.Rows, Row{
			Status:  style.StatusError,
			Kind:    "remove",
			Path:    f.Candidate.Logical,
			Message: fmt.Sprintf("failed: %v", f.Err),
		})
	}
	rep.add(sec)

	if len(res.Candidates) == 0 {
		rep.Notes = append(rep.Notes, "No ignored content in the stores.")
	}
	return rep
}

// FromDiscover builds the report for a home scan.
func FromDiscover(res *discover.Result) Report {
	rep := Report{Command: "discover", Host: res.Host}

	sec := Section{Title: "Unmanaged paths"}
	for _, c := range res.Candidates {
		sec.Rows = append(sec.Rows, Row{
			Status:  style.StatusNote,
			Kind:    string(c.Kind),
			Path:    c.Logical,
			Message: "not in the manifest",
		})
	}
	rep.add(sec)

	if len(res.Candidates) == 0 {
		rep.Notes = append(rep.Notes, "Everything in home is managed.")
	} else {
		rep.Notes = append(rep.Notes, "Adopt candidates with 'dotfold discover --add <section>'.")
	}
	return rep
}

// FromAdd builds the report for manifest additions.
func FromAdd(res *discover.AddResult) Report {
	rep := Report{Command: "discover", DryRun: res.DryRun}

	sec := Section{Title: "Manifest additions"}
	for _, entry := range res.Entries {
		row := Row{Status: style.StatusDone, Kind: "add", Path: entry,
			Message: "added to " + res.Section}
		if res.DryRun {
			row.Status = style.StatusQueue
			row.Message = "will add to " + res.Section
		}
		sec.Rows = append(sec.Rows, row)
	}
	rep.add(sec)
	return rep
}

// FromBackupList builds the report for the backup listing.
func FromBackupList(res *backups.ListResult) Report {
	rep := Report{Command: "backups", Host: res.Host}

	sec := Section{Title: "Backup sets"}
	for _, s := range res.Sets {
		msg := fmt.Sprintf("%d path(s), %s", len(s.Metadata.Paths), s.Metadata.CreatedAt.Format(timeLayout))
		if s.Metadata.Reason != "" {
			msg += ", " + s.Metadata.Reason
		}
		sec.Rows = append(sec.Rows, Row{
			Status:  style.StatusNote,
			Kind:    "backup",
			Path:    s.ID,
			Message: msg,
		})
	}
	rep.add(sec)

	if len(res.Sets) == 0 {
		rep.Notes = append(rep.Notes, "No backups for this host.")
	}
	return rep
}

// FromBackupPrune builds the report for a prune run.
func FromBackupPrune(res *backups.PruneResult) Report {
	rep := Report{Command: "prune", Host: res.Host, DryRun: res.DryRun}

	sec := Section{Title: "Pruned sets"}
	for _, id := range res.Removed {
		row := Row{Status: style.StatusDone, Kind: "prune", Path: id, Message: verb("prune", false)}
		if res.DryRun {
			row.Status = style.StatusQueue
			row.Message = verb("prune", true)
		}
		sec.Rows = append(sec.Rows, row)
	}
	rep.add(sec)

	if len(res.Removed) == 0 {
		rep.Notes = append(rep.Notes, fmt.Sprintf("Nothing beyond the keep limit of %d.", res.Keep))
	}
	return rep
}

// FromRollback builds the report for a restore run.
func FromRollback(res *rollback.Result) Report {
	rep := Report{Command: "rollback", Host: res.Host, DryRun: res.DryRun}

	sec := Section{Title: "Restores"}
	if res.DryRun {
		for _, logical := range res.Paths {
			sec.Rows = append(sec.Rows, Row{
				Status:  style.StatusQueue,
				Kind:    "restore",
				Path:    logical,
				Message: verb("restore", true) + " " + res.BackupID,
			})
		}
	} else {
		for _, logical := range res.Restore.Restored {
			sec.Rows = append(sec.Rows, Row{
				Status:  style.StatusDone,
				Kind:    "restore",
				Path:    logical,
				Message: verb("restore", false) + " " + res.Restore.BackupID,
			})
		}
		for _, f := range res.Restore.Failed {
			sec.Rows = append(sec.Rows, Row{
				Status:  style.StatusError,
				Kind:    "restore",
				Path:    f.Logical,
				Message: fmt.Sprintf("failed: %v", f.Err),
			})
		}
	}
	rep.add(sec)
	return rep
}

// actionRow renders one plan action as a row. future switches to the
// would-do tense for dry runs and status previews.
func actionRow(a operations.Action, future bool) Row {
	kind := a.Kind.String()
	row := Row{Kind: kind, Path: a.Logical}

	switch a.Kind {
	case operations.ActionSkip:
		row.Status = style.StatusDone
		row.Message = verb("skip", false) + " " + a.Source
	case operations.ActionUnlink:
		row.Status = style.StatusDone
		row.Message = verb(kind, future) + " " + a.Target
	default:
		row.Status = style.StatusDone
		row.Message = verb(kind, future) + " " + a.Source
	}
	if future && a.Kind != operations.ActionSkip {
		row.Status = style.StatusQueue
	}
	return row
}

func migrationRow(m resolver.Migration, future bool) Row {
	status := style.StatusDone
	if future {
		status = style.StatusQueue
	}
	return Row{
		Status:  status,
		Kind:    "migrate",
		Path:    m.Logical,
		Message: verb("migrate", future) + " " + m.To,
	}
}

func migrationSection(ms []resolver.Migration, future bool) Section {
	sec := Section{Title: "Store moves"}
	for _, m := range ms {
		sec.Rows = append(sec.Rows, migrationRow(m, future))
	}
	return sec
}

func blockedSection(cs []resolver.Conflict) Section {
	sec := Section{Title: "Blocked claims"}
	for _, c := range cs {
		sec.Rows = append(sec.Rows, Row{
			Status:  style.StatusAlert,
			Kind:    "conflict",
			Path:    c.Claim.Path,
			Message: c.Reason,
		})
	}
	return sec
}
