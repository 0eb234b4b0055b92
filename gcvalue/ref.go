package gcvalue

import "github.com/bvisness/wasmgc/gctypes"

// HeapObject is implemented by every kind of object a reference can point
// at: struct and array instances (package heap), and function instances
// (owned by the module instantiator, out of scope here). It carries no
// methods of its own beyond the marker below — it exists so gcvalue.Ref
// can hold a typed handle without importing the heap package, keeping the
// value model a leaf dependency (spec.md §2 data flow: C1 has no
// dependents among the core types).
type HeapObject interface {
	// GCHeapObject is a marker: it exists only so HeapObject has a method
	// set, not to be called. It must be exported — an unexported interface
	// method can only ever be satisfied by types in this same package,
	// which would make HeapObject unimplementable from package heap.
	GCHeapObject()
}

// Ref is a reference value: a runtime ValType plus either a null marker,
// an i31 payload, or a pointer to a heap object (spec.md §4.1).
type Ref struct {
	Type gctypes.ValType

	null   bool
	isI31  bool
	i31    uint32
	object HeapObject
}

// Null constructs a null reference of the given (necessarily nullable)
// heap type.
func Null(heap gctypes.HeapType) Ref {
	return Ref{Type: gctypes.RefValType(true, heap), null: true}
}

// FromObject constructs a non-null reference of type rt wrapping obj.
func FromObject(rt gctypes.ValType, obj HeapObject) Ref {
	return Ref{Type: rt, object: obj}
}

// I31 constructs a non-null i31ref wrapping the low 31 bits of x (spec.md
// §4.5 `ref.i31`).
func I31(x uint32) Ref {
	return Ref{
		Type:  gctypes.RefValType(false, gctypes.I31),
		isI31: true,
		i31:   x & 0x7FFFFFFF,
	}
}

// IsNull reports whether r carries the null payload.
func (r Ref) IsNull() bool { return r.null }

// IsI31 reports whether r is an i31ref.
func (r Ref) IsI31() bool { return r.isI31 }

// I31Value returns the 31-bit payload of an i31ref. It panics if r is not
// an i31ref.
func (r Ref) I31Value() uint32 {
	if !r.isI31 {
		panic("gcvalue: I31Value of a non-i31 reference")
	}
	return r.i31
}

// Object returns the heap object r points to, or nil if r is null or an
// i31ref.
func (r Ref) Object() HeapObject {
	if r.null || r.isI31 {
		return nil
	}
	return r.object
}

// SamePointer reports whether a and b denote the same object identity:
// pointer equality of their heap objects, or both null (spec.md §4.5
// `ref.eq`, §8 property 7). Two i31refs compare equal by payload, matching
// the reference implementation's pointer-bit encoding of i31 where the
// "pointer" is the payload itself.
func SamePointer(a, b Ref) bool {
	if a.null || b.null {
		return a.null && b.null
	}
	if a.isI31 != b.isI31 {
		return false
	}
	if a.isI31 {
		return a.i31 == b.i31
	}
	return a.object == b.object
}

// AsNonNull re-tags r as non-nullable, preserving its payload and object
// identity (spec.md §4.5 `ref.as_non_null`, §5 identity-stability
// guarantee). The caller must first check IsNull: this function does not
// validate, it only retags.
func AsNonNull(r Ref) Ref {
	r.Type = gctypes.ToNonNullable(r.Type)
	return r
}

// Retype returns r with its static type replaced by rt while keeping the
// same payload and identity (spec.md §4.5 `ref.cast`,
// `extern.convert_any`/`any.convert_extern`).
func Retype(r Ref, rt gctypes.ValType) Ref {
	r.Type = rt
	return r
}

// AsPtr returns the typed object handle inside r if it holds one, matching
// the contract of spec.md §4.1's `asPtr<T>`: null or a type mismatch yields
// the zero value and ok == false.
func AsPtr[T HeapObject](r Ref) (T, bool) {
	var zero T
	if r.null || r.isI31 {
		return zero, false
	}
	t, ok := r.object.(T)
	return t, ok
}
