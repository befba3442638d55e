package types

// Kind tags a managed path as a file or a directory claim. Resolution,
// planning and unfolding branch on this tag instead of re-statting paths.
type Kind string

const (
	// KindFile is a single regular file
	KindFile Kind = "file"

	// KindDir is a whole-directory claim, deployed as one symlink
	KindDir Kind = "dir"
)

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}
