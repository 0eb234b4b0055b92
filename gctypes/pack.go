package gctypes

// PackVal masks a raw i32 value down to the width implied by storage,
// zero-extending it back into a full 32-bit slot (spec.md §4.5). storage
// must be I8, I16, or any other code, in which case v passes through
// unchanged.
func PackVal(storage TypeCode, v uint32) uint32 {
	switch storage {
	case I8:
		return v & 0xFF
	case I16:
		return v & 0xFFFF
	default:
		return v
	}
}

// PackVals is the elementwise lift of PackVal.
func PackVals(storage TypeCode, vs []uint32) []uint32 {
	out := make([]uint32, len(vs))
	for i, v := range vs {
		out[i] = PackVal(storage, v)
	}
	return out
}

// SignExtend sign-extends a packed field's stored (zero-extended) value
// from its storage width out to a full i32, implementing the `_s` field
// accessors (spec.md §4.5).
func SignExtend(storage TypeCode, v uint32) int32 {
	switch storage {
	case I8:
		return int32(int8(v))
	case I16:
		return int32(int16(v))
	default:
		return int32(v)
	}
}

// ZeroExtend returns a packed field's stored value unchanged, implementing
// the `_u` field accessors (spec.md §4.5). Storage is already zero-extended
// into its i32 slot by PackVal, so this is the identity.
func ZeroExtend(storage TypeCode, v uint32) uint32 {
	return PackVal(storage, v)
}
