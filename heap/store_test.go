package heap_test

import (
	"sync"
	"testing"

	"github.com/bvisness/wasmgc/gctypes"
	"github.com/bvisness/wasmgc/gcvalue"
	"github.com/bvisness/wasmgc/heap"
	"github.com/stretchr/testify/require"
)

func i8mutField() gctypes.FieldType {
	return gctypes.NewPackedFieldType(gctypes.I8, gctypes.Var)
}

func i32constField() gctypes.FieldType {
	return gctypes.NewFieldType(gctypes.NumType(gctypes.I32), gctypes.Const)
}

func TestNewStructPacksAndReadsBack(t *testing.T) {
	// struct ct = struct { i8 mut, i32 const } (S1 in spec.md §8).
	ct := gctypes.NewStructComposite([]gctypes.FieldType{i8mutField(), i32constField()})

	store := heap.NewStore()
	vals := []gcvalue.Value{
		gcvalue.I32(gctypes.PackVal(gctypes.I8, 0x1FF)),
		gcvalue.I32(42),
	}
	inst := store.NewStruct(ct, vals)

	require.Equal(t, uint32(0xFF), inst.Get(0).AsI32(), "field 0 zero-extended (_u)")
	require.Equal(t, int32(-1), gctypes.SignExtend(gctypes.I8, inst.Get(0).AsI32()), "field 0 sign-extended (_s)")
	require.Equal(t, uint32(42), inst.Get(1).AsI32())
}

func TestNewStructDefaultZeroesAndNulls(t *testing.T) {
	ct := gctypes.NewStructComposite([]gctypes.FieldType{
		i32constField(),
		gctypes.NewFieldType(gctypes.RefValType(true, gctypes.Any), gctypes.Var),
	})
	store := heap.NewStore()
	inst := store.NewStructDefault(ct)

	require.Equal(t, uint32(0), inst.Get(0).AsI32())
	ref := inst.Get(1).AsRef()
	require.True(t, ref.IsNull())
}

func arrayOfI16() gctypes.CompositeType {
	return gctypes.NewArrayComposite(gctypes.NewPackedFieldType(gctypes.I16, gctypes.Var))
}

func TestNewArraySplat(t *testing.T) {
	store := heap.NewStore()
	inst := store.NewArraySplat(arrayOfI16(), 4, gcvalue.I32(7))
	require.Equal(t, 4, inst.Len())
	for i := 0; i < inst.Len(); i++ {
		require.Equal(t, uint32(7), inst.Get(i).AsI32())
	}
}

func TestNewArrayFromData(t *testing.T) {
	// array arr[i16]; data 01 00 02 00 03 00; s=0, n=3 (S2 in spec.md §8).
	data := []byte{0x01, 0x00, 0x02, 0x00, 0x03, 0x00}
	store := heap.NewStore()
	vals := make([]gcvalue.Value, 3)
	for i := range vals {
		lo, hi := data[i*2], data[i*2+1]
		vals[i] = gcvalue.I32(uint32(lo) | uint32(hi)<<8)
	}
	inst := store.NewArray(arrayOfI16(), vals)
	require.Equal(t, 3, inst.Len())
	require.Equal(t, uint32(1), inst.Get(0).AsI32())
	require.Equal(t, uint32(2), inst.Get(1).AsI32())
	require.Equal(t, uint32(3), inst.Get(2).AsI32())
}

func TestStoreIdentityStableUnderConcurrentAllocation(t *testing.T) {
	ct := gctypes.NewStructComposite([]gctypes.FieldType{i32constField()})
	store := heap.NewStore()

	const n = 200
	instances := make([]*heap.Struct, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			instances[i] = store.NewStruct(ct, []gcvalue.Value{gcvalue.I32(uint32(i))})
		}()
	}
	wg.Wait()

	require.Equal(t, n, store.NumStructs())
	seen := make(map[*heap.Struct]bool, n)
	for _, inst := range instances {
		require.NotNil(t, inst)
		require.False(t, seen[inst], "every allocation must have a distinct identity")
		seen[inst] = true
	}
}

func TestRefEqIdentity(t *testing.T) {
	ct := gctypes.NewStructComposite([]gctypes.FieldType{i32constField()})
	store := heap.NewStore()
	a := store.NewStruct(ct, []gcvalue.Value{gcvalue.I32(1)})
	b := store.NewStruct(ct, []gcvalue.Value{gcvalue.I32(1)})

	rt := gctypes.RefValType(false, gctypes.Struct)
	refA1 := gcvalue.FromObject(rt, a)
	refA2 := gcvalue.FromObject(rt, a)
	refB := gcvalue.FromObject(rt, b)

	require.True(t, gcvalue.SamePointer(refA1, refA2))
	require.False(t, gcvalue.SamePointer(refA1, refB))
}
