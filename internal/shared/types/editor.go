package types

// Position is a zero-based line/column location inside a text buffer.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Scroll is the viewport offset of an editor surface.
type Scroll struct {
	Top  int `json:"top"`
	Left int `json:"left"`
}

// Range is a selection between an anchor and the active end.
// Start may come after End when the user selected backwards.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Empty reports whether the range selects nothing.
func (r Range) Empty() bool {
	return r.Start == r.End
}
