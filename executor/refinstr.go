// Package executor implements the GC reference instructions: construction,
// casting, and array length over the value and heap models in
// gcvalue and heap (spec.md §4.5). It is grounded directly in the engine's
// ref/struct/array instruction handlers (lib/executor/engine/refInstr.cpp in
// original_source), reworked into the disciplined (non-buggy) semantics
// SPEC_FULL.md §4 settles on for the two defects found there.
package executor

import (
	"github.com/bvisness/wasmgc/gctypes"
	"github.com/bvisness/wasmgc/gcvalue"
	"github.com/bvisness/wasmgc/heap"
	"github.com/bvisness/wasmgc/internal/wasmerr"
)

// Machine bundles a heap Store with the flat type list its references are
// checked against, mirroring the environment the original opcodes run
// against (a module instance's defined types and heap).
type Machine struct {
	Store *heap.Store
	Types []gctypes.SubType
}

// NewMachine constructs a Machine over a fresh heap store.
func NewMachine(types []gctypes.SubType) *Machine {
	return &Machine{Store: heap.NewStore(), Types: types}
}

// RefNull returns the null reference of the given heap type (`ref.null`).
func RefNull(ht gctypes.HeapType) gcvalue.Value {
	return gcvalue.FromRef(gcvalue.Null(ht))
}

// RefIsNull reports whether v (a reference value) is null (`ref.is_null`).
func RefIsNull(v gcvalue.Value) bool {
	return v.AsRef().IsNull()
}

// RefEq implements `ref.eq`: identity comparison of two eqref-family
// references (spec.md §8 property 7).
func RefEq(a, b gcvalue.Value) bool {
	return gcvalue.SamePointer(a.AsRef(), b.AsRef())
}

// RefAsNonNull implements `ref.as_non_null`: traps on a null operand,
// otherwise retags the reference non-nullable without touching its
// identity.
func RefAsNonNull(v gcvalue.Value) (gcvalue.Value, error) {
	r := v.AsRef()
	if r.IsNull() {
		return gcvalue.Value{}, wasmerr.New(wasmerr.CastNullToNonNull, "ref.as_non_null")
	}
	return gcvalue.FromRef(gcvalue.AsNonNull(r)), nil
}

// RefI31 implements `ref.i31`: truncates an i32 operand into an i31ref.
func RefI31(v gcvalue.Value) gcvalue.Value {
	return gcvalue.FromRef(gcvalue.I31(v.AsI32()))
}

// I31GetS implements `i31.get_s`: sign-extends the i31 payload (bit 30 is
// its sign bit) back out to a full i32.
func I31GetS(v gcvalue.Value) gcvalue.Value {
	x := int32(v.AsRef().I31Value())
	return gcvalue.I32(uint32((x << 1) >> 1))
}

// I31GetU implements `i31.get_u`: zero-extends the i31 payload.
func I31GetU(v gcvalue.Value) gcvalue.Value {
	return gcvalue.I32(v.AsRef().I31Value())
}

// RefTest implements `ref.test`: reports whether v's runtime type matches
// rt, per the subtype relation gctypes.Match. A null operand matches iff rt
// is nullable (spec.md §4.5).
func (m *Machine) RefTest(v gcvalue.Value, rt gctypes.ValType) bool {
	r := v.AsRef()
	if r.IsNull() {
		return rt.Nullable()
	}
	return gctypes.Match(rt, runtimeType(r), m.Types, m.Types)
}

// RefCast implements `ref.cast`: traps if the runtime type does not match
// rt, otherwise retags the reference to rt while preserving identity.
func (m *Machine) RefCast(v gcvalue.Value, rt gctypes.ValType) (gcvalue.Value, error) {
	if !m.RefTest(v, rt) {
		return gcvalue.Value{}, wasmerr.New(wasmerr.CastNullToNonNull, "ref.cast: operand does not match target type")
	}
	return gcvalue.FromRef(gcvalue.Retype(v.AsRef(), rt)), nil
}

// runtimeType reconstructs the precise non-nullable ValType a live
// reference inhabits, for use as the "got" side of a Match query. The
// construction operations always wrap a new instance with its own concrete
// defined type (see NewRefForStruct/NewRefForArray in construction.go), so the static
// type already carried on the reference is exact; only the i31 case needs
// special handling since i31 values carry no heap-allocated object.
func runtimeType(r gcvalue.Ref) gctypes.ValType {
	if r.IsI31() {
		return gctypes.RefValType(false, gctypes.I31)
	}
	return gctypes.ToNonNullable(r.Type)
}

// ExternConvertAny implements `extern.convert_any`: retags an anyref-family
// reference as externref, preserving null-ness and identity.
func ExternConvertAny(v gcvalue.Value) gcvalue.Value {
	r := v.AsRef()
	if r.IsNull() {
		return gcvalue.FromRef(gcvalue.Null(gctypes.Extern))
	}
	return gcvalue.FromRef(gcvalue.Retype(r, gctypes.RefValType(false, gctypes.Extern)))
}

// AnyConvertExtern implements `any.convert_extern`: retags an externref as
// anyref, preserving null-ness and identity.
func AnyConvertExtern(v gcvalue.Value) gcvalue.Value {
	r := v.AsRef()
	if r.IsNull() {
		return gcvalue.FromRef(gcvalue.Null(gctypes.Any))
	}
	return gcvalue.FromRef(gcvalue.Retype(r, gctypes.RefValType(false, gctypes.Any)))
}
