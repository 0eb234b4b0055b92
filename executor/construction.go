package executor

import (
	"math"

	"github.com/bvisness/wasmgc/gctypes"
	"github.com/bvisness/wasmgc/gcvalue"
	"github.com/bvisness/wasmgc/heap"
	"github.com/bvisness/wasmgc/internal/wasmerr"
)

// NewRefForStruct wraps a freshly allocated struct instance as a Value,
// stamping its static type with typeIdx — the defined-type index the
// instance was allocated against, per the module's flat type list.
func NewRefForStruct(typeIdx uint32, inst *heap.Struct) gcvalue.Value {
	rt := gctypes.RefValType(false, gctypes.DefinedHeapType(typeIdx))
	return gcvalue.FromRef(gcvalue.FromObject(rt, inst))
}

// NewRefForArray wraps a freshly allocated array instance as a Value.
func NewRefForArray(typeIdx uint32, inst *heap.Array) gcvalue.Value {
	rt := gctypes.RefValType(false, gctypes.DefinedHeapType(typeIdx))
	return gcvalue.FromRef(gcvalue.FromObject(rt, inst))
}

// StructNew implements `struct.new ct`: each operand is packed per its
// field's storage type before allocation.
func (m *Machine) StructNew(typeIdx uint32, ct gctypes.CompositeType, vals []gcvalue.Value) gcvalue.Value {
	packed := make([]gcvalue.Value, len(vals))
	for i, v := range vals {
		packed[i] = packFieldValue(ct.Fields[i], v)
	}
	inst := m.Store.NewStruct(ct, packed)
	return NewRefForStruct(typeIdx, inst)
}

// StructNewDefault implements `struct.new_default ct`.
func (m *Machine) StructNewDefault(typeIdx uint32, ct gctypes.CompositeType) gcvalue.Value {
	inst := m.Store.NewStructDefault(ct)
	return NewRefForStruct(typeIdx, inst)
}

// ArrayNew implements `array.new ct`: allocate length n, every element the
// packed value v.
func (m *Machine) ArrayNew(typeIdx uint32, ct gctypes.CompositeType, v gcvalue.Value, n uint32) gcvalue.Value {
	packed := packFieldValue(ct.ArrayElem(), v)
	inst := m.Store.NewArraySplat(ct, n, packed)
	return NewRefForArray(typeIdx, inst)
}

// ArrayNewDefault implements `array.new_default ct`.
func (m *Machine) ArrayNewDefault(typeIdx uint32, ct gctypes.CompositeType, n uint32) gcvalue.Value {
	inst := m.Store.NewArrayDefault(ct, n)
	return NewRefForArray(typeIdx, inst)
}

// ArrayNewFixed implements `array.new_fixed ct k`: each operand is packed
// individually.
func (m *Machine) ArrayNewFixed(typeIdx uint32, ct gctypes.CompositeType, vals []gcvalue.Value) gcvalue.Value {
	elem := ct.ArrayElem()
	packed := make([]gcvalue.Value, len(vals))
	for i, v := range vals {
		packed[i] = packFieldValue(elem, v)
	}
	inst := m.Store.NewArray(ct, packed)
	return NewRefForArray(typeIdx, inst)
}

// DataSource abstracts the byte-addressable data segment array.new_data
// reads from (the linear-memory segment store, out of scope here).
type DataSource interface {
	Len() int
	ReadByte(offset int) byte
}

// ArrayNewData implements `array.new_data ct d`: reads n elements from seg
// starting at byte offset s. Element byte width is storage.StorageBitWidth()/8.
// Fails LengthOutOfBounds if s+n*width exceeds the segment (strict
// inequality: the disciplined rule, see SPEC_FULL.md §4 "Data-segment
// bound").
func (m *Machine) ArrayNewData(typeIdx uint32, ct gctypes.CompositeType, seg DataSource, s, n uint32) (gcvalue.Value, error) {
	elem := ct.ArrayElem()
	width := elem.StorageBitWidth() / 8
	need := uint64(s) + uint64(n)*uint64(width)
	if need > uint64(seg.Len()) {
		return gcvalue.Value{}, wasmerr.New(wasmerr.LengthOutOfBounds, "array.new_data: %d bytes from offset %d exceeds segment of %d bytes", uint64(n)*uint64(width), s, seg.Len())
	}

	storage := elem.StorageTypeCode()
	vals := make([]gcvalue.Value, n)
	off := int(s)
	for i := range vals {
		var raw uint64
		for b := 0; b < width; b++ {
			raw |= uint64(seg.ReadByte(off)) << (8 * b)
			off++
		}
		switch storage {
		case gctypes.I64:
			vals[i] = gcvalue.I64(raw)
		case gctypes.F32:
			vals[i] = gcvalue.F32(math.Float32frombits(uint32(raw)))
		case gctypes.F64:
			vals[i] = gcvalue.F64(math.Float64frombits(raw))
		default:
			vals[i] = gcvalue.I32(gctypes.PackVal(storage, uint32(raw)))
		}
	}
	inst := m.Store.NewArray(ct, vals)
	return NewRefForArray(typeIdx, inst), nil
}

// ElemSource abstracts the element segment array.new_elem reads references
// from (the table/element-segment store, out of scope here).
type ElemSource interface {
	Len() int
	ReadRef(i int) gcvalue.Value
}

// ArrayNewElem implements `array.new_elem ct e`: as ArrayNewData, but reads
// references. The source bound here was never ambiguous in the source
// material: it is strict inequality on element count.
func (m *Machine) ArrayNewElem(typeIdx uint32, ct gctypes.CompositeType, seg ElemSource, s, n uint32) (gcvalue.Value, error) {
	need := uint64(s) + uint64(n)
	if need > uint64(seg.Len()) {
		return gcvalue.Value{}, wasmerr.New(wasmerr.LengthOutOfBounds, "array.new_elem: %d elements from offset %d exceeds segment of %d elements", n, s, seg.Len())
	}
	vals := make([]gcvalue.Value, n)
	for i := range vals {
		vals[i] = seg.ReadRef(int(s) + i)
	}
	inst := m.Store.NewArray(ct, vals)
	return NewRefForArray(typeIdx, inst), nil
}

// ArrayLen implements `array.len`: fails CastNullToNonNull on a null
// operand, else pushes the stored length.
func ArrayLen(v gcvalue.Value) (gcvalue.Value, error) {
	r := v.AsRef()
	if r.IsNull() {
		return gcvalue.Value{}, wasmerr.New(wasmerr.CastNullToNonNull, "array.len: operand is null")
	}
	arr, ok := gcvalue.AsPtr[*heap.Array](r)
	if !ok {
		return gcvalue.Value{}, wasmerr.New(wasmerr.CastNullToNonNull, "array.len: operand is not an array")
	}
	return gcvalue.I32(uint32(arr.Len())), nil
}

// packFieldValue packs v per ft's storage type (numeric/packed passthrough
// via gctypes.PackVal; reference fields are unchanged).
func packFieldValue(ft gctypes.FieldType, v gcvalue.Value) gcvalue.Value {
	if ft.IsPacked() {
		return gcvalue.I32(gctypes.PackVal(ft.StorageCode(), v.AsI32()))
	}
	vt := ft.StorageValType()
	if vt.IsRefType() {
		return v
	}
	if vt.NumOrVecCode() == gctypes.I32 {
		return gcvalue.I32(gctypes.PackVal(vt.NumOrVecCode(), v.AsI32()))
	}
	return v
}
