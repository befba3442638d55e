package validation

// Class names one of the inconsistency classes Validate reports. Every
// issue carries exactly one class.
type Class string

const (
	// ClassOrphanedConfig marks a claim an ignore pattern also matches.
	// The manifest contradicts itself; deploy refuses to run until the
	// entry or the pattern goes.
	ClassOrphanedConfig Class = "orphaned-config"

	// ClassMissingEverywhere marks a claim with no backing content in
	// any store and nothing at the deployed location either.
	ClassMissingEverywhere Class = "missing-everywhere"

	// ClassMissingInRepo marks a claim whose content exists at the
	// deployed location but in no tier store.
	ClassMissingInRepo Class = "missing-in-repo"

	// ClassMissingSymlink marks a claim whose store content is not
	// correctly deployed: the link is absent, points elsewhere, or real
	// content sits in its place.
	ClassMissingSymlink Class = "missing-symlink"
)

// Issue is one manifest-vs-disk inconsistency.
type Issue struct {
	Class Class

	// Logical is the claimed path in normalized form, without the
	// directory marker
	Logical string

	// Tier is the tier whose claim raised the issue
	Tier string

	// Reason says what was found
	Reason string

	// Hint suggests the fix
	Hint string
}
