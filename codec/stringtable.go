package codec

import "fmt"

// StringTable deduplicates and indexes every string that crosses the binary
// boundary.  The mapping is bijective and insertion-ordered, and the table is
// append-only during a single encode.  Index 0 is reserved for the empty
// string, which is never stored explicitly.
type StringTable struct {
	byIndex  []string
	byString map[string]uint32
}

// NewStringTable creates a new string table containing only the reserved
// empty string at index 0.
func NewStringTable() *StringTable {
	return &StringTable{
		byIndex:  []string{""},
		byString: map[string]uint32{"": 0},
	}
}

// Add interns a string and returns its index.  Add is idempotent: submitting
// the same string twice returns the same index.  The empty string always
// returns index 0.  Strings longer than MaxStringLen are a hard write
// failure.
func (st *StringTable) Add(s string) (uint32, error) {
	if idx, ok := st.byString[s]; ok {
		return idx, nil
	}

	if len(s) > MaxStringLen {
		return 0, fmt.Errorf("string of %d bytes exceeds format maximum %d", len(s), MaxStringLen)
	}

	idx := uint32(len(st.byIndex))
	st.byIndex = append(st.byIndex, s)
	st.byString[s] = idx

	return idx, nil
}

// Get returns the string at the given index.  An index outside [0, count) is
// a hard failure.
func (st *StringTable) Get(idx uint32) (string, error) {
	if idx >= uint32(len(st.byIndex)) {
		return "", &StringTableError{Msg: fmt.Sprintf("index %d out of range [0, %d)", idx, len(st.byIndex))}
	}

	return st.byIndex[idx], nil
}

// Count returns the number of entries in the table, including the reserved
// empty string.
func (st *StringTable) Count() uint32 {
	return uint32(len(st.byIndex))
}

// All returns the table's entries in index order.
func (st *StringTable) All() []string {
	return st.byIndex
}
