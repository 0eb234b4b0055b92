package gctypes

import "fmt"

// HeapType is either an abstract TypeCode (Any, Eq, I31, Struct, Array,
// None, Func, NoFunc, Extern, NoExtern) or a defined-type index into the
// owning module's flat type list, encoded as a non-negative TypeCode.
type HeapType = TypeCode

// DefinedHeapType returns the HeapType naming the idx'th entry of the
// owning module's type list.
func DefinedHeapType(idx uint32) HeapType { return TypeCode(idx) }

// ValType is a Wasm value type: a numeric or vector scalar, or a
// reference carrying a nullability flag and a heap type (spec.md §3).
type ValType struct {
	isRef    bool
	code     TypeCode // valid iff !isRef: one of I32, I64, F32, F64, V128
	nullable bool     // valid iff isRef
	heap     HeapType // valid iff isRef
}

// NumType constructs a numeric ValType (I32, I64, F32, or F64).
func NumType(code TypeCode) ValType {
	if !code.IsNumType() {
		panic(fmt.Sprintf("gctypes: %v is not a numeric type code", code))
	}
	return ValType{code: code}
}

// VecType constructs the vector ValType (V128).
func VecType() ValType {
	return ValType{code: V128}
}

// RefValType constructs a reference ValType with the given nullability and
// heap type.
func RefValType(nullable bool, heap HeapType) ValType {
	if !heap.IsHeapType() {
		panic(fmt.Sprintf("gctypes: %v is not a valid heap type", heap))
	}
	return ValType{isRef: true, nullable: nullable, heap: heap}
}

func (vt ValType) IsNumType() bool { return !vt.isRef && vt.code.IsNumType() }
func (vt ValType) IsVecType() bool { return !vt.isRef && vt.code.IsVecType() }
func (vt ValType) IsRefType() bool { return vt.isRef }

// NumOrVecCode returns the numeric or vector code of a non-reference
// ValType. It panics on a reference.
func (vt ValType) NumOrVecCode() TypeCode {
	if vt.isRef {
		panic("gctypes: NumOrVecCode of a reference type")
	}
	return vt.code
}

// Nullable reports whether a reference ValType admits null. It panics on a
// non-reference.
func (vt ValType) Nullable() bool {
	if !vt.isRef {
		panic("gctypes: Nullable of a non-reference type")
	}
	return vt.nullable
}

// Heap returns the heap type of a reference ValType. It panics on a
// non-reference.
func (vt ValType) Heap() HeapType {
	if !vt.isRef {
		panic("gctypes: Heap of a non-reference type")
	}
	return vt.heap
}

// ToNonNullable returns vt with nullability cleared; it is the identity on
// non-reference types (spec.md §4.2).
func ToNonNullable(vt ValType) ValType {
	if !vt.isRef {
		return vt
	}
	return ValType{isRef: true, nullable: false, heap: vt.heap}
}

func (vt ValType) String() string {
	switch {
	case vt.isRef && vt.nullable:
		return fmt.Sprintf("(ref null %v)", vt.heap)
	case vt.isRef:
		return fmt.Sprintf("(ref %v)", vt.heap)
	default:
		return fmt.Sprintf("%v", vt.code)
	}
}

// Mutability is a struct or array field's mutability.
type Mutability uint8

const (
	Const Mutability = iota
	Var
)

// FieldType is a struct or array field: either a full ValType or a
// storage-only packed code (I8/I16), plus mutability (spec.md §3).
type FieldType struct {
	packed     bool
	packedCode TypeCode   // valid iff packed
	storage    ValType    // valid iff !packed
	Mut        Mutability
}

// NewFieldType constructs a field storing a full ValType.
func NewFieldType(storage ValType, mut Mutability) FieldType {
	return FieldType{storage: storage, Mut: mut}
}

// NewPackedFieldType constructs a field with packed storage (I8 or I16).
func NewPackedFieldType(code TypeCode, mut Mutability) FieldType {
	if !code.IsPacked() {
		panic(fmt.Sprintf("gctypes: %v is not a packed storage code", code))
	}
	return FieldType{packed: true, packedCode: code, Mut: mut}
}

// IsPacked reports whether the field's storage is I8 or I16.
func (ft FieldType) IsPacked() bool { return ft.packed }

// StorageValType returns the field's full ValType storage. It panics if
// the field is packed.
func (ft FieldType) StorageValType() ValType {
	if ft.packed {
		panic("gctypes: StorageValType of a packed field")
	}
	return ft.storage
}

// StorageCode returns the field's packed storage code. It panics if the
// field is not packed.
func (ft FieldType) StorageCode() TypeCode {
	if !ft.packed {
		panic("gctypes: StorageCode of a non-packed field")
	}
	return ft.packedCode
}

// StorageTypeCode returns the field's storage TypeCode regardless of
// whether it is packed: the packed code (I8/I16) if IsPacked, otherwise
// the numeric or vector code of its full ValType. It panics if the
// field's storage is a reference type.
func (ft FieldType) StorageTypeCode() TypeCode {
	if ft.packed {
		return ft.packedCode
	}
	return ft.storage.NumOrVecCode()
}

// StorageBitWidth returns the in-memory bit width of the field's storage.
func (ft FieldType) StorageBitWidth() int {
	if ft.packed {
		return BitWidth(ft.packedCode)
	}
	switch {
	case ft.storage.IsRefType():
		return 64 // a reference occupies a pointer-sized slot
	default:
		return BitWidth(ft.storage.code)
	}
}
