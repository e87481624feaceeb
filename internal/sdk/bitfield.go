package sdk

import "math/bits"

// bitfieldAccumulator is component C9 (spec.md §4.9): it fuses
// consecutive single-bit boolean properties that share one host byte
// into a single BitfieldGroup field, without a second pass over the
// field list.
type bitfieldAccumulator struct {
	current *BitfieldGroup
}

// close flushes the current group, if any, as a single completed Field.
func (a *bitfieldAccumulator) close() []Field {
	if a.current == nil {
		return nil
	}
	f := Field{Bitfield: a.current}
	a.current = nil
	return []Field{f}
}

// pushNonBool is called when the next field in struct order is not a
// Bool. It closes and emits any open group.
func (a *bitfieldAccumulator) pushNonBool() []Field {
	return a.close()
}

// pushFullByteBool is called for a Bool whose field_mask is
// 0b11111111 - a plain, non-bitfield boolean property.
func (a *bitfieldAccumulator) pushFullByteBool() []Field {
	return a.close()
}

// pushBitfieldBit is called for a Bool with a partial field_mask. It
// either extends the current group (same byte_offset) or closes it
// and starts a new one.
func (a *bitfieldAccumulator) pushBitfieldBit(byteOffset int64, item BitItem) []Field {
	if a.current != nil && a.current.ByteOffset == byteOffset {
		a.current.Items = append(a.current.Items, item)
		return nil
	}
	flushed := a.close()
	a.current = &BitfieldGroup{ByteOffset: byteOffset, Items: []BitItem{item}}
	return flushed
}

// finish flushes whatever group remains once the field list is
// exhausted.
func (a *bitfieldAccumulator) finish() []Field {
	return a.close()
}

// bitRangeFromMask derives (bit_offset, bit_len) from an FBoolProperty
// byte_mask: bit_offset is the count of trailing zero bits, bit_len is
// the run of trailing one bits starting there (spec.md §4.9).
func bitRangeFromMask(byteMask uint8) (bitOffset, bitLen uint8) {
	if byteMask == 0 {
		return 0, 0
	}
	bitOffset = uint8(bits.TrailingZeros8(byteMask))
	shifted := byteMask >> bitOffset
	bitLen = uint8(bits.TrailingZeros8(^shifted))
	return bitOffset, bitLen
}
