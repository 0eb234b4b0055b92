package wasmbin

import (
	"github.com/bvisness/wasmgc/gctypes"
	"github.com/bvisness/wasmgc/internal/wasmerr"
)

// Wire-level type codes: the SLEB128 byte values the Wasm GC binary format
// assigns to each abstract type. These never appear outside this file;
// internally everything is gctypes.TypeCode, whose own numbering is chosen
// for readability rather than wire fidelity (see gctypes/code.go).
type wireCode int64

const (
	wireI32 wireCode = -0x01
	wireI64 wireCode = -0x02
	wireF32 wireCode = -0x03
	wireF64 wireCode = -0x04
	wireV128 wireCode = -0x05

	wireI16 wireCode = -0x09
	wireI8  wireCode = -0x08

	wireNoFunc   wireCode = -0x0d
	wireNoExtern wireCode = -0x0e
	wireNone     wireCode = -0x0f
	wireFunc     wireCode = -0x10
	wireExtern   wireCode = -0x11
	wireAny      wireCode = -0x12
	wireEq       wireCode = -0x13
	wireI31      wireCode = -0x14
	wireStruct   wireCode = -0x15
	wireArray    wireCode = -0x16

	wireRefNonNull wireCode = -0x1c // 0x64
	wireRefNull    wireCode = -0x1d // 0x63

	wireCompFunc   wireCode = -0x20 // 0x60
	wireCompStruct wireCode = -0x21 // 0x5f
	wireCompArray  wireCode = -0x22 // 0x5e

	wireSub      wireCode = -0x30 // 0x50
	wireSubFinal wireCode = -0x31 // 0x4f
	wireRecGroup wireCode = -0x32 // 0x4e
)

var wireToAbstract = map[wireCode]gctypes.TypeCode{
	wireNoFunc:   gctypes.NoFunc,
	wireNoExtern: gctypes.NoExtern,
	wireNone:     gctypes.None,
	wireFunc:     gctypes.Func,
	wireExtern:   gctypes.Extern,
	wireAny:      gctypes.Any,
	wireEq:       gctypes.Eq,
	wireI31:      gctypes.I31,
	wireStruct:   gctypes.Struct,
	wireArray:    gctypes.Array,
}

var abstractToWire = func() map[gctypes.TypeCode]wireCode {
	out := make(map[gctypes.TypeCode]wireCode, len(wireToAbstract))
	for w, c := range wireToAbstract {
		out[c] = w
	}
	return out
}()

// decodeHeapType maps a raw SLEB128 value to a gctypes.HeapType: either one
// of the fixed abstract codes, or (for a non-negative value) a defined-type
// index.
func decodeHeapType(raw int64) (gctypes.HeapType, error) {
	if raw >= 0 {
		return gctypes.DefinedHeapType(uint32(raw)), nil
	}
	if c, ok := wireToAbstract[wireCode(raw)]; ok {
		return c, nil
	}
	return 0, wasmerr.New(wasmerr.MalformedValType, "unrecognized abstract heap type 0x%x", raw)
}

// encodeHeapType is the dual of decodeHeapType.
func encodeHeapType(ht gctypes.HeapType) int64 {
	if ht.IsConcreteHeapType() {
		return int64(ht)
	}
	return int64(abstractToWire[ht])
}

// decodeValType reads a single value type: a numeric/vector code, a
// ref-type sentinel followed by a heap type, or a bare abstract heap type
// code, building a gctypes.ValType.
func (p *Reader) decodeValType(thing string) (gctypes.ValType, error) {
	raw, _, err := p.ReadS64(thing)
	if err != nil {
		return gctypes.ValType{}, err
	}
	return decodeValTypeFromRaw(p, thing, raw)
}

// decodeValTypeFromRaw continues decodeValType's switch for a value type
// whose leading SLEB128 value has already been read (used by
// typesection.go's decodeField, which must check for the packed codes
// first).
func decodeValTypeFromRaw(p *Reader, thing string, raw int64) (gctypes.ValType, error) {
	w := wireCode(raw)
	switch w {
	case wireI32:
		return gctypes.NumType(gctypes.I32), nil
	case wireI64:
		return gctypes.NumType(gctypes.I64), nil
	case wireF32:
		return gctypes.NumType(gctypes.F32), nil
	case wireF64:
		return gctypes.NumType(gctypes.F64), nil
	case wireV128:
		return gctypes.VecType(), nil
	case wireRefNonNull, wireRefNull:
		htRaw, _, err := p.ReadS64(thing + " heap type")
		if err != nil {
			return gctypes.ValType{}, err
		}
		ht, err := decodeHeapType(htRaw)
		if err != nil {
			return gctypes.ValType{}, err
		}
		return gctypes.RefValType(w == wireRefNull, ht), nil
	default:
		if ht, ok := wireToAbstract[w]; ok {
			return gctypes.RefValType(true, ht), nil
		}
		return gctypes.ValType{}, wasmerr.New(wasmerr.MalformedValType, "%s: unrecognized value type 0x%x", thing, raw)
	}
}

// encodeValType is the dual of decodeValType. A nullable reference to an
// abstract heap type is written in its single-byte abbreviated form
// (matching the bytes real encoders and decodeValTypeFromRaw's default case
// both use), not the explicit (ref null ht) form, so that a type section
// using the canonical shorthand round-trips byte-for-byte.
func (w *writer) encodeValType(vt gctypes.ValType) {
	switch {
	case vt.IsNumType():
		w.WriteS64(int64(numVecWire(vt.NumOrVecCode())))
	case vt.IsVecType():
		w.WriteS64(int64(wireV128))
	default:
		ht := vt.Heap()
		if vt.Nullable() && !ht.IsConcreteHeapType() {
			w.WriteS64(int64(abstractToWire[ht]))
			return
		}
		if vt.Nullable() {
			w.WriteS64(int64(wireRefNull))
		} else {
			w.WriteS64(int64(wireRefNonNull))
		}
		w.WriteS64(encodeHeapType(ht))
	}
}

// encodeFieldType is the dual of decodeField.
func (w *writer) encodeFieldType(ft gctypes.FieldType) {
	if ft.IsPacked() {
		if ft.StorageCode() == gctypes.I8 {
			w.WriteS64(int64(wireI8))
		} else {
			w.WriteS64(int64(wireI16))
		}
	} else {
		w.encodeValType(ft.StorageValType())
	}
	if ft.Mut == gctypes.Var {
		w.WriteByte(0x01)
	} else {
		w.WriteByte(0x00)
	}
}

func numVecWire(code gctypes.TypeCode) wireCode {
	switch code {
	case gctypes.I32:
		return wireI32
	case gctypes.I64:
		return wireI64
	case gctypes.F32:
		return wireF32
	case gctypes.F64:
		return wireF64
	default:
		return wireV128
	}
}
