// Package gcvalue implements the executor's tagged value representation:
// numbers, vectors, and references (spec.md §3, §4.1).
package gcvalue

import (
	"math"
)

// Kind tags which alternative of a Value is populated.
type Kind uint8

const (
	KindI32 Kind = iota
	KindI64
	KindF32
	KindF64
	KindV128
	KindRef
)

// Value is a fixed-size tagged slot holding one Wasm runtime value. Numeric
// variants occupy their natural width; copying a Value is always a cheap
// byte copy, never a deep clone — for references this duplicates a handle,
// not the referent (spec.md §4.1).
type Value struct {
	kind Kind
	bits uint64   // I32 (low 32 bits), I64, F32 (bits), F64 (bits)
	vec  [16]byte // V128
	ref  Ref
}

func (v Value) Kind() Kind { return v.kind }

// I32 constructs an i32 value.
func I32(v uint32) Value { return Value{kind: KindI32, bits: uint64(v)} }

// I64 constructs an i64 value.
func I64(v uint64) Value { return Value{kind: KindI64, bits: v} }

// F32 constructs an f32 value, stored as its IEEE-754 bit pattern.
func F32(v float32) Value { return Value{kind: KindF32, bits: uint64(math.Float32bits(v))} }

// F64 constructs an f64 value.
func F64(v float64) Value { return Value{kind: KindF64, bits: math.Float64bits(v)} }

// V128 constructs a 128-bit vector value.
func V128(v [16]byte) Value { return Value{kind: KindV128, vec: v} }

// FromRef wraps a reference as a Value.
func FromRef(r Ref) Value { return Value{kind: KindRef, ref: r} }

// AsI32 returns the raw i32 payload. It panics if v is not an i32.
func (v Value) AsI32() uint32 {
	v.mustBe(KindI32)
	return uint32(v.bits)
}

// AsI64 returns the raw i64 payload. It panics if v is not an i64.
func (v Value) AsI64() uint64 {
	v.mustBe(KindI64)
	return v.bits
}

// AsF32 returns the f32 payload. It panics if v is not an f32.
func (v Value) AsF32() float32 {
	v.mustBe(KindF32)
	return math.Float32frombits(uint32(v.bits))
}

// AsF64 returns the f64 payload. It panics if v is not an f64.
func (v Value) AsF64() float64 {
	v.mustBe(KindF64)
	return math.Float64frombits(v.bits)
}

// AsV128 returns the vector payload. It panics if v is not a v128.
func (v Value) AsV128() [16]byte {
	v.mustBe(KindV128)
	return v.vec
}

// AsRef returns the reference payload. It panics if v is not a reference.
func (v Value) AsRef() Ref {
	v.mustBe(KindRef)
	return v.ref
}

func (v Value) mustBe(k Kind) {
	if v.kind != k {
		panic("gcvalue: value kind mismatch")
	}
}
