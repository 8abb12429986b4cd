package codec

import (
	"errors"
	"fmt"
)

// The binary cache format, little-endian throughout:
//
//	[magic u32][version u16]
//	[string table: u32 count][per string: u16 byte-length][utf-8 bytes]
//	[type table: u32 count][per type: tag u8 + variant fields]
//	[declaration section: classes, then free functions]
//	[statement and expression sections: nested depth-first within their
//	 declarations]
//	[issue section]
//
// Strings everywhere in the body are u32 indices into the string table.
// Types everywhere in the body are u32 indices into the type table; entries
// in the type table only reference earlier entries.

// Magic identifies a Fern binary cache file ("FERN" in little-endian order).
const Magic uint32 = 0x4E524546

// Version is the current format version.  A version mismatch invalidates the
// entire cache rather than attempting partial compatibility.
const Version uint16 = 1

// MaxStringLen is the format-level maximum byte length of a single string.
// Exceeding it is a hard write failure.
const MaxStringLen = 0xFFFF

// nilTypeRef is the type-table reference used for an absent type.
const nilTypeRef uint32 = 0xFFFFFFFF

// Type-table variant tags.
const (
	tagPrim uint8 = iota + 1
	tagClassRef
	tagGeneric
	tagFuncSig
	tagNullable
	tagUnresolved
)

// nilNode is the variant tag used for an absent expression or statement.
const nilNode uint8 = 0xFF

// ErrVersionMismatch is returned when a cache file was written by a different
// format version.  Callers invalidate the whole cache when they see it.
var ErrVersionMismatch = errors.New("cache format version mismatch")

// ErrBadMagic is returned when a buffer does not begin with the cache magic.
var ErrBadMagic = errors.New("not a fern cache file")

// StringTableError is the hard failure reported for string-table corruption:
// an index outside [0, count) or a truncated buffer.  The reader never
// silently substitutes an empty or default value.
type StringTableError struct {
	Msg string
}

func (e *StringTableError) Error() string {
	return "string table: " + e.Msg
}

// corruptf creates a generic format-corruption error.
func corruptf(msg string, args ...interface{}) error {
	return fmt.Errorf("corrupt cache data: "+msg, args...)
}
