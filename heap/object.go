// Package heap implements the GC heap object store: allocation, identity,
// and field storage for struct and array instances (spec.md §4.3).
package heap

import (
	"github.com/bvisness/wasmgc/gctypes"
	"github.com/bvisness/wasmgc/gcvalue"
)

// Struct is a heap-allocated instance of a struct composite type. Its
// field vector has length equal to the field-type vector it was allocated
// with, and that shape never changes (spec.md §3 invariant 5).
type Struct struct {
	// refCount mirrors the original engine's per-instance counter (see
	// DESIGN.md); this core does not implement reclamation, so it is
	// seeded at 1 and never otherwise touched.
	refCount uint32
	compType gctypes.CompositeType
	fields   []gcvalue.Value
}

func (*Struct) GCHeapObject() {}

// Type returns the composite type the struct was allocated with.
func (s *Struct) Type() gctypes.CompositeType { return s.compType }

// NumFields returns the number of fields.
func (s *Struct) NumFields() int { return len(s.fields) }

// Get returns the raw stored value of field i (already packed per its
// storage type, per spec.md §4.5).
func (s *Struct) Get(i int) gcvalue.Value { return s.fields[i] }

// Set overwrites field i. The caller is responsible for packing v per the
// field's storage type first (see gctypes.PackVal); field mutation is not
// synchronized by the store (spec.md §5).
func (s *Struct) Set(i int, v gcvalue.Value) { s.fields[i] = v }

// FieldType returns the declared type of field i.
func (s *Struct) FieldType(i int) gctypes.FieldType { return s.compType.Fields[i] }

// RefCount returns the instance's liveness-witness counter.
func (s *Struct) RefCount() uint32 { return s.refCount }

// Array is a heap-allocated instance of an array composite type.
type Array struct {
	refCount uint32
	compType gctypes.CompositeType
	data     []gcvalue.Value
}

func (*Array) GCHeapObject() {}

// Type returns the composite type the array was allocated with.
func (a *Array) Type() gctypes.CompositeType { return a.compType }

// Len returns the array's element count (spec.md §4.5 `array.len`).
func (a *Array) Len() int { return len(a.data) }

// Get returns the raw stored value of element i.
func (a *Array) Get(i int) gcvalue.Value { return a.data[i] }

// Set overwrites element i. See Struct.Set for the packing contract.
func (a *Array) Set(i int, v gcvalue.Value) { a.data[i] = v }

// ElemType returns the array's declared element field type.
func (a *Array) ElemType() gctypes.FieldType { return a.compType.ArrayElem() }

// RefCount returns the instance's liveness-witness counter.
func (a *Array) RefCount() uint32 { return a.refCount }

// DefaultValue returns the zero value for a field's storage type: numeric
// zero for numeric/vector/packed storage, a null reference for reference
// storage (spec.md §4.3).
func DefaultValue(ft gctypes.FieldType) gcvalue.Value {
	if ft.IsPacked() {
		return gcvalue.I32(0)
	}
	vt := ft.StorageValType()
	if vt.IsRefType() {
		return gcvalue.FromRef(gcvalue.Null(vt.Heap()))
	}
	switch vt.NumOrVecCode() {
	case gctypes.I32:
		return gcvalue.I32(0)
	case gctypes.I64:
		return gcvalue.I64(0)
	case gctypes.F32:
		return gcvalue.F32(0)
	case gctypes.F64:
		return gcvalue.F64(0)
	case gctypes.V128:
		return gcvalue.V128([16]byte{})
	default:
		panic("heap: DefaultValue of an invalid storage type")
	}
}
