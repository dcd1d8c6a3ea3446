package vm

import "strings"

// fileMode mirrors ast.FileMode's three OPENFILE modes.
type fileMode int

const (
	modeRead fileMode = iota
	modeWrite
	modeAppend
)

func parseFileMode(s string) (fileMode, bool) {
	switch s {
	case "READ":
		return modeRead, true
	case "WRITE":
		return modeWrite, true
	case "APPEND":
		return modeAppend, true
	default:
		return 0, false
	}
}

// vfile is one entry in the VM's virtual filesystem. Files are kept purely
// in memory and auto-vivify on first OPENFILE (spec.md §4.6): there is no
// notion of a file that "doesn't exist" independent of the VM run.
type vfile struct {
	mode    fileMode
	open    bool
	lines   []string // READ: remaining content, split on newline
	readPos int
	written []string // WRITE/APPEND: accumulated output lines
}

// fileTable owns every virtual file a program touches across its run.
type fileTable struct {
	files map[string]*vfile
}

func newFileTable() *fileTable {
	return &fileTable{files: map[string]*vfile{}}
}

// open creates the named file if it doesn't already exist and (re)opens it
// in the given mode. READ mode starts (or restarts) iteration from the
// beginning of whatever content has been written so far; WRITE truncates;
// APPEND continues from the end.
func (ft *fileTable) open(name string, mode fileMode) *vfile {
	f, ok := ft.files[name]
	if !ok {
		f = &vfile{}
		ft.files[name] = f
	}
	f.mode = mode
	f.open = true
	switch mode {
	case modeRead:
		f.lines = splitLines(strings.Join(f.written, "\n"))
		f.readPos = 0
	case modeWrite:
		f.written = nil
	case modeAppend:
		// keep existing content
	}
	return f
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

func (ft *fileTable) get(name string) (*vfile, bool) {
	f, ok := ft.files[name]
	return f, ok
}

// eof reports whether name has nothing left to read, per spec.md §4.6: an
// unknown or closed file counts as EOF.
func (ft *fileTable) eof(name string) bool {
	f, ok := ft.files[name]
	if !ok || !f.open || f.mode != modeRead {
		return true
	}
	return f.readPos >= len(f.lines)
}
