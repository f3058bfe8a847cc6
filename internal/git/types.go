package git

// FileChange is one line of a name-status diff: a path plus its
// change code (A/M/D/R100, ...), used by the drift detector to tell
// renames/copies apart from ordinary modifications.
type FileChange struct {
	Status     string // "A", "M", "D", or "R<similarity>"/"C<similarity>"
	Path       string
	OldPath    string // set only for renames/copies
	Similarity int    // percentage, set only for renames/copies
}

// DiffStats summarizes a diff's shape without carrying its full text.
type DiffStats struct {
	FilesChanged int
	Insertions   int
	Deletions    int
}

// CloneOptions configures a shallow clone.
type CloneOptions struct {
	URL       string
	Dest      string
	Depth     int // 0 means full clone; the Clone Engine always sets 1
	Reference string
}
