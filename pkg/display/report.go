package display

import (
	"github.com/arthur-debert/dotfold/pkg/style"
)

// Report is the display model every command converts into: a header
// line, sections of three-column rows, and trailing notes.
type Report struct {
	// Command is the command that produced the report
	Command string

	// Host is the host tier the command ran for, empty for host-free
	// commands
	Host string

	// DryRun marks a preview; renderers flag it in the header
	DryRun bool

	// Sections group rows under a heading
	Sections []Section

	// Notes are one-line remarks printed after the sections
	Notes []string
}

// Section is a titled group of rows
type Section struct {
	Title string
	Rows  []Row
}

// Row is one path outcome in the three-column layout:
// kind : path : message.
type Row struct {
	Status  style.Status
	Kind    string
	Path    string
	Message string
}

// Empty reports whether the report has no rows at all
func (r *Report) Empty() bool {
	for _, s := range r.Sections {
		if len(s.Rows) > 0 {
			return false
		}
	}
	return true
}

// add appends a section unless it has no rows
func (r *Report) add(s Section) {
	if len(s.Rows) == 0 {
		return
	}
	r.Sections = append(r.Sections, s)
}

// verb picks the right tense for an action kind
func verb(kind string, future bool) string {
	v, ok := style.Verbs[kind]
	if !ok {
		return ""
	}
	if future {
		return v.Future
	}
	return v.Past
}
