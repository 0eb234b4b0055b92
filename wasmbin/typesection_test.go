package wasmbin_test

import (
	"bytes"
	"testing"

	"github.com/bvisness/wasmgc/gctypes"
	"github.com/bvisness/wasmgc/wasmbin"
	"github.com/stretchr/testify/require"
)

func TestDecodeTypeSectionSingletonStruct(t *testing.T) {
	// One singleton type: struct { i32 const }. Built via the encoder
	// (rather than hand-transcribed SLEB128 bytes) and decoded back.
	ct := gctypes.NewStructComposite([]gctypes.FieldType{
		gctypes.NewFieldType(gctypes.NumType(gctypes.I32), gctypes.Const),
	})
	sec := wasmbin.TypeSection{
		Flat:   []gctypes.SubType{{Final: true, Composite: ct}},
		Groups: [][]uint32{{0}},
	}
	encoded := wasmbin.EncodeTypeSection(sec)

	decoded, err := wasmbin.DecodeTypeSection(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, decoded.Flat, 1)
	require.Equal(t, [][]uint32{{0}}, decoded.Groups)
	require.Equal(t, gctypes.CompStruct, decoded.Flat[0].Composite.Kind)
	require.Len(t, decoded.Flat[0].Composite.Fields, 1)
}

func TestTypeSectionRoundTripRecGroup(t *testing.T) {
	// sub $A { struct { i32 const } }; sub $B $A { struct { i32 const, f64 const } }
	// grouped together in one rec group, matching S5's fixture.
	structA := gctypes.NewStructComposite([]gctypes.FieldType{
		gctypes.NewFieldType(gctypes.NumType(gctypes.I32), gctypes.Const),
	})
	structB := gctypes.NewStructComposite([]gctypes.FieldType{
		gctypes.NewFieldType(gctypes.NumType(gctypes.I32), gctypes.Const),
		gctypes.NewFieldType(gctypes.NumType(gctypes.F64), gctypes.Const),
	})
	sec := wasmbin.TypeSection{
		Flat: []gctypes.SubType{
			{Final: false, Composite: structA},
			{Final: true, Supers: []uint32{0}, Composite: structB},
		},
		Groups: [][]uint32{{0, 1}},
	}

	encoded := wasmbin.EncodeTypeSection(sec)
	decoded, err := wasmbin.DecodeTypeSection(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Equal(t, sec.Groups, decoded.Groups)
	require.Len(t, decoded.Flat, 2)
	require.False(t, decoded.Flat[0].Final)
	require.True(t, decoded.Flat[1].Final)
	require.Equal(t, []uint32{0}, decoded.Flat[1].Supers)

	reEncoded := wasmbin.EncodeTypeSection(decoded)
	require.Equal(t, encoded, reEncoded)
}

func TestTypeSectionArrayAndFuncComposites(t *testing.T) {
	arr := gctypes.NewArrayComposite(gctypes.NewPackedFieldType(gctypes.I16, gctypes.Var))
	fn := gctypes.NewFuncComposite(gctypes.FunctionType{
		Params:  []gctypes.ValType{gctypes.NumType(gctypes.I32), gctypes.RefValType(true, gctypes.Any)},
		Results: []gctypes.ValType{gctypes.RefValType(false, gctypes.DefinedHeapType(0))},
	})
	sec := wasmbin.TypeSection{
		Flat:   []gctypes.SubType{{Final: true, Composite: arr}, {Final: true, Composite: fn}},
		Groups: [][]uint32{{0}, {1}},
	}

	encoded := wasmbin.EncodeTypeSection(sec)
	decoded, err := wasmbin.DecodeTypeSection(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Equal(t, gctypes.CompArray, decoded.Flat[0].Composite.Kind)
	require.True(t, decoded.Flat[0].Composite.ArrayElem().IsPacked())
	require.Equal(t, gctypes.I16, decoded.Flat[0].Composite.ArrayElem().StorageCode())

	require.Equal(t, gctypes.CompFunc, decoded.Flat[1].Composite.Kind)
	require.Len(t, decoded.Flat[1].Composite.Func.Params, 2)
	require.True(t, decoded.Flat[1].Composite.Func.Results[0].IsRefType())
}

func TestPreambleRecognizesModuleAndComponent(t *testing.T) {
	mod := append([]byte{0x00, 'a', 's', 'm'}, 0x01, 0x00, 0x00, 0x00)
	kind, err := wasmbin.ReadPreamble(bytes.NewReader(mod))
	require.NoError(t, err)
	require.Equal(t, wasmbin.ModulePreamble, kind)

	comp := append([]byte{0x00, 'a', 's', 'm'}, 0x0d, 0x00, 0x01, 0x00)
	kind, err = wasmbin.ReadPreamble(bytes.NewReader(comp))
	require.NoError(t, err)
	require.Equal(t, wasmbin.ComponentPreamble, kind)
}

func TestPreambleRejectsBadMagic(t *testing.T) {
	bad := []byte{0x01, 0x02, 0x03, 0x04, 0x01, 0x00, 0x00, 0x00}
	_, err := wasmbin.ReadPreamble(bytes.NewReader(bad))
	require.Error(t, err)
}
