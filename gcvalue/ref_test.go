package gcvalue_test

import (
	"testing"

	"github.com/bvisness/wasmgc/gctypes"
	"github.com/bvisness/wasmgc/gcvalue"
	"github.com/bvisness/wasmgc/heap"
	"github.com/stretchr/testify/require"
)

func TestNullRef(t *testing.T) {
	r := gcvalue.Null(gctypes.Any)
	require.True(t, r.IsNull())
	require.False(t, r.IsI31())
	require.Nil(t, r.Object())
}

func TestI31Ref(t *testing.T) {
	r := gcvalue.I31(0xFFFFFFFF)
	require.False(t, r.IsNull())
	require.True(t, r.IsI31())
	require.Equal(t, uint32(0x7FFFFFFF), r.I31Value())
}

func TestI31ValuePanicsOnNonI31(t *testing.T) {
	r := gcvalue.Null(gctypes.Any)
	require.Panics(t, func() { r.I31Value() })
}

func TestSamePointerIdentity(t *testing.T) {
	ct := gctypes.NewStructComposite([]gctypes.FieldType{
		gctypes.NewFieldType(gctypes.NumType(gctypes.I32), gctypes.Const),
	})
	store := heap.NewStore()
	a := store.NewStruct(ct, []gcvalue.Value{gcvalue.I32(1)})
	b := store.NewStruct(ct, []gcvalue.Value{gcvalue.I32(1)})

	rt := gctypes.RefValType(false, gctypes.Struct)
	require.True(t, gcvalue.SamePointer(gcvalue.FromObject(rt, a), gcvalue.FromObject(rt, a)))
	require.False(t, gcvalue.SamePointer(gcvalue.FromObject(rt, a), gcvalue.FromObject(rt, b)))

	n1 := gcvalue.Null(gctypes.Any)
	n2 := gcvalue.Null(gctypes.Struct)
	require.True(t, gcvalue.SamePointer(n1, n2), "two nulls are identical regardless of static type")

	i1, i2 := gcvalue.I31(5), gcvalue.I31(5)
	require.True(t, gcvalue.SamePointer(i1, i2), "i31 values compare by payload")
}

func TestAsNonNullPreservesIdentity(t *testing.T) {
	ct := gctypes.NewStructComposite([]gctypes.FieldType{
		gctypes.NewFieldType(gctypes.NumType(gctypes.I32), gctypes.Const),
	})
	store := heap.NewStore()
	a := store.NewStruct(ct, []gcvalue.Value{gcvalue.I32(1)})
	r := gcvalue.FromObject(gctypes.RefValType(true, gctypes.Struct), a)

	nonNull := gcvalue.AsNonNull(r)
	require.False(t, nonNull.Type.Nullable())
	require.True(t, gcvalue.SamePointer(r, nonNull))
}

func TestRetypeKeepsIdentity(t *testing.T) {
	ct := gctypes.NewStructComposite([]gctypes.FieldType{
		gctypes.NewFieldType(gctypes.NumType(gctypes.I32), gctypes.Const),
	})
	store := heap.NewStore()
	a := store.NewStruct(ct, []gcvalue.Value{gcvalue.I32(1)})
	r := gcvalue.FromObject(gctypes.RefValType(false, gctypes.Struct), a)

	retyped := gcvalue.Retype(r, gctypes.RefValType(false, gctypes.Eq))
	require.Equal(t, gctypes.Eq, retyped.Type.Heap())
	require.True(t, gcvalue.SamePointer(r, retyped))
}

func TestAsPtr(t *testing.T) {
	ct := gctypes.NewStructComposite([]gctypes.FieldType{
		gctypes.NewFieldType(gctypes.NumType(gctypes.I32), gctypes.Const),
	})
	store := heap.NewStore()
	a := store.NewStruct(ct, []gcvalue.Value{gcvalue.I32(1)})
	r := gcvalue.FromObject(gctypes.RefValType(false, gctypes.Struct), a)

	got, ok := gcvalue.AsPtr[*heap.Struct](r)
	require.True(t, ok)
	require.Same(t, a, got)

	arr, ok := gcvalue.AsPtr[*heap.Array](r)
	require.False(t, ok)
	require.Nil(t, arr)

	_, ok = gcvalue.AsPtr[*heap.Struct](gcvalue.Null(gctypes.Struct))
	require.False(t, ok)
}
