package style

import (
	"github.com/pterm/pterm"
)

// Status classifies the outcome shown on a single output row
type Status string

const (
	StatusDone    Status = "done"    // Applied in this run
	StatusError   Status = "error"   // Failed in this run
	StatusQueue   Status = "queue"   // Would be applied (dry-run, status)
	StatusAlert   Status = "alert"   // Blocked, needs a manifest decision
	StatusIgnored Status = "ignored" // Matched by an ignore pattern
	StatusNote    Status = "note"    // Informational
)

// Verbs defines past and future tense verbs for each action kind,
// completed by the path the message refers to.
var Verbs = map[string]struct {
	Past   string
	Future string
}{
	"link":    {Past: "linked to", Future: "will link to"},
	"skip":    {Past: "already linked to", Future: "already linked to"},
	"unlink":  {Past: "removed", Future: "will remove"},
	"migrate": {Past: "moved to", Future: "will move to"},
	"backup":  {Past: "backed up as", Future: "will back up as"},
	"restore": {Past: "restored from", Future: "will restore from"},
	"prune":   {Past: "pruned", Future: "will prune"},
	"remove":  {Past: "removed from", Future: "will remove from"},
}

// StatusStyle returns the appropriate pterm style for a status
func StatusStyle(status Status) *pterm.Style {
	switch status {
	case StatusDone:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgWhite)
	case StatusError:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	case StatusQueue:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	case StatusAlert:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite, pterm.Bold)
	case StatusNote:
		return pterm.NewStyle(pterm.FgCyan)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// Indicator returns the one-character marker for a status
func Indicator(status Status) string {
	switch status {
	case StatusDone:
		return SuccessIndicator
	case StatusError:
		return ErrorIndicator
	case StatusAlert:
		return WarningIndicator
	case StatusQueue:
		return PendingIndicator
	default:
		return InfoIndicator
	}
}
