package cli

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort         = "A host-aware dotfiles deployer"
	MsgDeployShort       = "Deploy the repository to this host"
	MsgStatusShort       = "Show resolved ownership and pending work"
	MsgValidateShort     = "Check the repository against the manifest"
	MsgConflictsShort    = "Show how overlapping claims resolve"
	MsgCleanupShort      = "Remove ignore-matched content from the tier stores"
	MsgDiscoverShort     = "Find unmanaged paths in the home directory"
	MsgBackupsShort      = "List this host's backup sets"
	MsgBackupsPruneShort = "Remove backup sets beyond the keep limit"
	MsgRollbackShort     = "Restore a backup set"
	MsgGenConfigShort    = "Print the dotfold configuration"
	MsgVersionShort      = "Print version information"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun    = "Preview changes without executing them"
	MsgFlagRoot      = "Dotfiles repository root (default: DOTFOLD_ROOT or the enclosing git repository)"
	MsgFlagHost      = "Host tier to deploy as (default: DOTFOLD_HOST, config, or the hostname)"
	MsgFlagFormat    = "Output format: auto, term, text or json"
	MsgFlagYes       = "Proceed without interactive confirmation"
	MsgFlagKeep      = "Number of newest backup sets to keep"
	MsgFlagAdd       = "Add the discovered paths to this manifest section (common, ignore, or a host tier)"
	MsgFlagEffective = "Print the fully resolved configuration instead of the annotated template"
	MsgFlagWrite     = "Save the template to <root>/dotfold.toml instead of printing it"
	MsgFlagBackupID  = "Backup set to restore (default: the newest)"

	// Error messages
	MsgErrInitPaths  = "failed to initialize paths: %w"
	MsgErrLoadConfig = "failed to load configuration: %w"
	MsgErrNoCommand  = "no command specified"
)

// MsgRootLong describes dotfold on the root help screen.
const MsgRootLong = `dotfold deploys a tiered dotfiles repository into your home directory
with symlinks, letting git handle versioning and history.

A single manifest.yaml maps tiers (common, per-host, system) to the
paths each one manages. dotfold resolves which tier owns every path on
this machine, unfolds directories when a host overrides single files
inside them, backs up anything real it would displace, and links the
rest. Every run is previewable with --dry-run and reversible with
'dotfold rollback'.

See 'dotfold help manifest' and 'dotfold help precedence' to get
started.`

// MsgFallbackWarning is shown when no repository root could be located.
const MsgFallbackWarning = `Warning: not in a git repository and DOTFOLD_ROOT not set.
Using current directory: %s
Either run from inside your dotfiles repository, set DOTFOLD_ROOT, or
pass --root.

`

// MsgUsageTemplate is the cobra usage template with bold section
// headers and grouped commands.
const MsgUsageTemplate = `{{boldUpper "Usage:"}}{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

{{boldUpper "Aliases:"}}
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

{{boldUpper "Examples:"}}
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}

{{boldUpper "Available Commands:"}}{{range $cmds}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{else}}{{range $group := .Groups}}

{{bold .Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if not .AllChildCommandsHaveGroup}}

{{bold "Additional Commands:"}}{{range $cmds}}{{if (and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{boldUpper "Flags:"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

{{boldUpper "Global Flags:"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

{{boldUpper "Additional help topics:"}}{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
