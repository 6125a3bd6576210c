// Package bits provides exact-width bit-field access on 32-bit integers.
//
// Widths and shifts are reduced modulo 32 the same way a native shift
// instruction reduces its count, so out-of-range arguments wrap instead of
// failing. There is no bounds checking: a field value wider than its slot is
// silently truncated, and a slot that runs past bit 31 loses its top bits.
package bits

// mask returns the low-order mask for a field of the given width.
// A width of 32 (or 0) wraps to an empty mask.
func mask(bits int) uint32 {
	return (uint32(1) << (uint(bits) & 31)) - 1
}

// Get extracts an unsigned field of width bits starting at shift.
func Get(value int32, bits, shift int) int32 {
	return int32((uint32(value) >> (uint(shift) & 31)) & mask(bits))
}

// GetSigned extracts a field like Get and sign-extends it, treating the
// field's top bit as a two's-complement sign bit.
func GetSigned(value int32, bits, shift int) int32 {
	width := uint(bits) & 31
	if width == 0 {
		return 0
	}
	field := uint32(Get(value, bits, shift))
	pad := 32 - width
	return int32(field<<pad) >> pad
}

// Combine returns value with the field of width bits at shift replaced by
// field. Bits of field beyond the width are discarded; all bits of value
// outside the slot are preserved.
func Combine(value, field int32, bits, shift int) int32 {
	s := uint(shift) & 31
	slot := mask(bits) << s
	return int32((uint32(value) &^ slot) | ((uint32(field) << s) & slot))
}
