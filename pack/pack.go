// Package pack implements the binary packing engine: bit-exact,
// network-byte-order, optionally padded encoding and decoding of the
// dataplane's wire types. The engine walks a descriptor tree built by the
// schema package rather than reflecting on compile-time Go types, so a
// single implementation serves every message shape the catalog describes.
package pack

import (
	"errors"
	"fmt"
)

// Errors returned by Descriptor implementations. Callers should compare with
// errors.Is; the dynamic detail (offending value, type name) is folded into
// the message via fmt.Errorf("%w: ...", ...).
var (
	// ErrShortBuffer is returned when the destination or source buffer is
	// smaller than the value being packed or unpacked requires.
	ErrShortBuffer = errors.New("Slice out of range")

	// ErrMissingTerminator is returned when a null-terminated string consumes
	// its entire input without finding the trailing zero byte.
	ErrMissingTerminator = errors.New("missing null terminator")

	// ErrInvalidUTF8 is returned when string bytes decoded as text are not
	// valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid utf-8 in string field")

	// ErrShortVector is returned when a dynamic array's referent length
	// field underflows the bytes actually available (or is negative).
	ErrShortVector = errors.New("element count underflow for dynamic array")
)

// EnumMismatchError is returned by an enum Descriptor without a fallback
// variant when the wire value does not match any named variant.
type EnumMismatchError struct {
	Type  string
	Value uint64
}

func (e *EnumMismatchError) Error() string {
	return fmt.Sprintf("invalid enum value %d for type %s", e.Value, e.Type)
}

// Descriptor describes the wire shape of one type: how to size, align,
// encode and decode instances of it. Every concrete wire type (primitive,
// string, array, vec, struct, enum, union) implements Descriptor.
type Descriptor interface {
	// Name returns the descriptor's catalog name, used in error messages.
	Name() string

	// Align returns the type's required alignment in bytes.
	Align() int

	// StaticSize returns the minimum possible encoded size: the size when
	// every dynamic array has zero elements and every string is empty.
	StaticSize() int

	// Size returns the exact encoded size of v.
	Size(v interface{}) int

	// Encode writes v into buf at offset 0 and returns the number of bytes
	// written. buf must be at least Size(v) bytes.
	Encode(buf []byte, v interface{}) (int, error)

	// Decode reads a value from the start of buf. lenHint carries the
	// element count for a dynamic array (from its referent sibling field);
	// it is ignored by descriptors that don't need it. It returns the
	// decoded value and the number of bytes consumed.
	Decode(buf []byte, lenHint int) (interface{}, int, error)
}

// AlignOffset rounds off up to the next multiple of align, unless packed is
// true, in which case off is returned unchanged. This is the single
// alignment-arithmetic primitive used throughout the engine.
func AlignOffset(off, align int, packed bool) int {
	if packed || align <= 1 {
		return off
	}
	if rem := off % align; rem != 0 {
		return off + (align - rem)
	}
	return off
}

// PadTo rounds size up to the next multiple of align.
func PadTo(size, align int) int {
	return AlignOffset(size, align, false)
}

func needBytes(buf []byte, n int) error {
	if len(buf) < n {
		return ErrShortBuffer
	}
	return nil
}
