// Package manifest loads and validates manifest.yaml, the single file
// that declares which paths dotfold manages and which tier owns them.
//
// The document is a mapping whose reserved keys are common, system,
// ignore and conflict_resolution; every other top-level key names a host
// tier. List entries are logical paths relative to the home directory
// (absolute for system), with a trailing "/" marking a whole-directory
// claim and the empty string under common claiming the entire home tree:
//
//	common: ["", ".config/nvim/"]
//	archlinux: [".config/app/x.conf"]
//	system: ["/etc/pacman.conf"]
//	ignore: [".cache/**", "*.log"]
//	conflict_resolution:
//	  backup_existing: true
//
// Shape problems are rejected at load time. Whether a claim contradicts
// the ignore list is a per-path question answered during validation runs.
package manifest
