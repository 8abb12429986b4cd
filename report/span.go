package report

// SourceLoc identifies a range of source text within a single file.  It is
// used to attach positional information to syntax nodes, IR nodes, and
// analysis issues.  Line and column numbers are zero-indexed; Offset is the
// byte offset of the first character and Length is the byte length of the
// range.
type SourceLoc struct {
	// The path of the file the location occurs in.
	File string

	// The line and column beginning the location.
	Line, Col int

	// The byte offset and byte length of the located text.
	Offset, Length int
}

// NewLoc creates a new source location in the given file.
func NewLoc(file string, line, col, offset, length int) SourceLoc {
	return SourceLoc{File: file, Line: line, Col: col, Offset: offset, Length: length}
}

// LocOver returns a source location spanning over and between the two given
// locations.  Both locations must occur in the same file.
func LocOver(start, end SourceLoc) SourceLoc {
	return SourceLoc{
		File:   start.File,
		Line:   start.Line,
		Col:    start.Col,
		Offset: start.Offset,
		Length: end.Offset + end.Length - start.Offset,
	}
}

// NoLoc is the zero source location used for nodes which have no meaningful
// position: synthesized nodes, whole-file issues, etc.
var NoLoc = SourceLoc{}
