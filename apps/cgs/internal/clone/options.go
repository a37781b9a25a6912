package clone

// Mode selects how a discovered file's repository path maps to a local directory.
type Mode int

const (
	// FullPath mirrors the complete repository-relative path.
	FullPath Mode = iota
	// CurrentDirOnly roots the local tree at the first occurrence of the
	// target directory's own name.
	CurrentDirOnly
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case CurrentDirOnly:
		return "curdir"
	default:
		return "fullpath"
	}
}

// DefaultMaxDepth bounds recursion into nested directories.
const DefaultMaxDepth = 64

// Options is the immutable traversal configuration passed down every
// recursive call.
type Options struct {
	Mode Mode
	// MaxDepth is the deepest directory level (the starting listing is
	// level 0) that will be listed. Zero disables the limit.
	MaxDepth int
}
