package wasmbin

import (
	"io"

	"github.com/bvisness/wasmgc/gctypes"
	"github.com/bvisness/wasmgc/internal/wasmerr"
)

// TypeSection is the decoded form of a Wasm GC type section: a flat list
// of subtypes (what gctypes.Match and the heap store consume) plus the
// recursion-group boundaries needed to re-emit canonical bytes (spec.md
// §4.6, §3 "recursion group").
type TypeSection struct {
	Flat []gctypes.SubType
	// Groups partitions Flat's indices into recursion groups in order;
	// a group of length 1 round-trips as a bare (unwrapped) type
	// definition, one of length >= 2 round-trips wrapped in `rec`.
	Groups [][]uint32
}

// DecodeTypeSection parses the body of a type section (id 0x01) — the
// bytes after the section's own length prefix have already been consumed
// by the caller's section-frame reader.
func DecodeTypeSection(r io.Reader) (TypeSection, error) {
	p := NewReader(r)
	count, err := p.ReadU32("type section entry count")
	if err != nil {
		return TypeSection{}, wasmerr.New(wasmerr.MalformedSection, "%v", err)
	}

	var sec TypeSection
	for i := uint32(0); i < count; i++ {
		b, err := p.PeekByte("type definition")
		if err != nil {
			return TypeSection{}, wasmerr.New(wasmerr.MalformedSection, "%v", err)
		}
		if wireCode(sleb7(b)) == wireRecGroup {
			if _, err := p.ReadByte("rec group tag"); err != nil {
				return TypeSection{}, wasmerr.New(wasmerr.MalformedSection, "%v", err)
			}
			groupLen, err := p.ReadU32("rec group size")
			if err != nil {
				return TypeSection{}, wasmerr.New(wasmerr.MalformedSection, "%v", err)
			}
			group := make([]uint32, groupLen)
			for j := uint32(0); j < groupLen; j++ {
				st, err := p.decodeSubType()
				if err != nil {
					return TypeSection{}, err
				}
				group[j] = uint32(len(sec.Flat))
				sec.Flat = append(sec.Flat, st)
			}
			sec.Groups = append(sec.Groups, group)
		} else {
			st, err := p.decodeSubType()
			if err != nil {
				return TypeSection{}, err
			}
			idx := uint32(len(sec.Flat))
			sec.Flat = append(sec.Flat, st)
			sec.Groups = append(sec.Groups, []uint32{idx})
		}
	}
	return sec, nil
}

// sleb7 sign-extends the low 7 bits of a peeked byte as a single-byte
// SLEB128 value would decode, without consuming it. All of this codec's
// tag bytes (rec/sub/sub final/composite kind) fit in one byte, so a
// lookahead can decide which multi-byte reader to call next.
func sleb7(b byte) int64 {
	v := int64(b & 0x7f)
	if b&0x40 != 0 {
		v -= 0x80
	}
	return v
}

// decodeSubType reads one `sub`/`sub final`-wrapped or bare composite type
// definition.
func (p *Reader) decodeSubType() (gctypes.SubType, error) {
	b, err := p.PeekByte("type definition")
	if err != nil {
		return gctypes.SubType{}, wasmerr.New(wasmerr.MalformedSection, "%v", err)
	}
	w := wireCode(sleb7(b))

	if w == wireSub || w == wireSubFinal {
		if _, err := p.ReadByte("sub tag"); err != nil {
			return gctypes.SubType{}, wasmerr.New(wasmerr.MalformedSection, "%v", err)
		}
		n, err := p.ReadU32("supertype count")
		if err != nil {
			return gctypes.SubType{}, wasmerr.New(wasmerr.MalformedSection, "%v", err)
		}
		supers := make([]uint32, n)
		for i := range supers {
			idx, err := p.ReadU32("supertype index")
			if err != nil {
				return gctypes.SubType{}, wasmerr.New(wasmerr.MalformedSection, "%v", err)
			}
			supers[i] = idx
		}
		ct, err := p.decodeCompositeType()
		if err != nil {
			return gctypes.SubType{}, err
		}
		return gctypes.SubType{Final: w == wireSubFinal, Supers: supers, Composite: ct}, nil
	}

	ct, err := p.decodeCompositeType()
	if err != nil {
		return gctypes.SubType{}, err
	}
	return gctypes.SubType{Final: true, Composite: ct}, nil
}

func (p *Reader) decodeCompositeType() (gctypes.CompositeType, error) {
	raw, _, err := p.ReadS64("composite type tag")
	if err != nil {
		return gctypes.CompositeType{}, wasmerr.New(wasmerr.MalformedSection, "%v", err)
	}
	switch wireCode(raw) {
	case wireCompFunc:
		ft, err := p.decodeFunctionType()
		if err != nil {
			return gctypes.CompositeType{}, err
		}
		return gctypes.NewFuncComposite(ft), nil
	case wireCompStruct:
		n, err := p.ReadU32("field count")
		if err != nil {
			return gctypes.CompositeType{}, wasmerr.New(wasmerr.MalformedSection, "%v", err)
		}
		fields := make([]gctypes.FieldType, n)
		for i := range fields {
			fields[i], err = p.decodeField()
			if err != nil {
				return gctypes.CompositeType{}, err
			}
		}
		return gctypes.NewStructComposite(fields), nil
	case wireCompArray:
		elem, err := p.decodeField()
		if err != nil {
			return gctypes.CompositeType{}, err
		}
		return gctypes.NewArrayComposite(elem), nil
	default:
		return gctypes.CompositeType{}, wasmerr.New(wasmerr.MalformedSection, "unrecognized composite type tag 0x%x", raw)
	}
}

func (p *Reader) decodeFunctionType() (gctypes.FunctionType, error) {
	np, err := p.ReadU32("param count")
	if err != nil {
		return gctypes.FunctionType{}, wasmerr.New(wasmerr.MalformedSection, "%v", err)
	}
	params := make([]gctypes.ValType, np)
	for i := range params {
		params[i], err = p.decodeValType("param type")
		if err != nil {
			return gctypes.FunctionType{}, wasmerr.New(wasmerr.MalformedValType, "%v", err)
		}
	}
	nr, err := p.ReadU32("result count")
	if err != nil {
		return gctypes.FunctionType{}, wasmerr.New(wasmerr.MalformedSection, "%v", err)
	}
	results := make([]gctypes.ValType, nr)
	for i := range results {
		results[i], err = p.decodeValType("result type")
		if err != nil {
			return gctypes.FunctionType{}, wasmerr.New(wasmerr.MalformedValType, "%v", err)
		}
	}
	return gctypes.FunctionType{Params: params, Results: results}, nil
}

func (p *Reader) decodeField() (gctypes.FieldType, error) {
	// The storage type is read first; mutability is a single trailing
	// byte regardless of storage shape.
	raw, _, err := p.ReadS64("field storage type")
	if err != nil {
		return gctypes.FieldType{}, wasmerr.New(wasmerr.MalformedValType, "%v", err)
	}
	mutByte, err := p.ReadByte("field mutability")
	if err != nil {
		return gctypes.FieldType{}, wasmerr.New(wasmerr.MalformedSection, "%v", err)
	}
	mut := gctypes.Const
	if mutByte == 0x01 {
		mut = gctypes.Var
	}
	switch wireCode(raw) {
	case wireI8:
		return gctypes.NewPackedFieldType(gctypes.I8, mut), nil
	case wireI16:
		return gctypes.NewPackedFieldType(gctypes.I16, mut), nil
	default:
		vt, err := decodeValTypeFromRaw(p, "field storage type", raw)
		if err != nil {
			return gctypes.FieldType{}, err
		}
		return gctypes.NewFieldType(vt, mut), nil
	}
}

// EncodeTypeSection is the dual of DecodeTypeSection: `emit(parse(b)) == b`
// for canonical input (spec.md §4.6). A recursion group of length 1 is
// emitted unwrapped; groups of 2+ are wrapped in `rec`.
func EncodeTypeSection(sec TypeSection) []byte {
	w := &writer{}
	w.WriteU64(uint64(len(sec.Groups)))
	for _, group := range sec.Groups {
		if len(group) == 1 {
			w.encodeSubType(sec.Flat[group[0]])
			continue
		}
		w.WriteS64(int64(wireRecGroup))
		w.WriteU64(uint64(len(group)))
		for _, idx := range group {
			w.encodeSubType(sec.Flat[idx])
		}
	}
	return w.Bytes()
}

func (w *writer) encodeSubType(st gctypes.SubType) {
	if len(st.Supers) > 0 || !st.Final {
		if st.Final {
			w.WriteS64(int64(wireSubFinal))
		} else {
			w.WriteS64(int64(wireSub))
		}
		w.WriteU64(uint64(len(st.Supers)))
		for _, idx := range st.Supers {
			w.WriteU64(uint64(idx))
		}
	}
	w.encodeCompositeType(st.Composite)
}

func (w *writer) encodeCompositeType(ct gctypes.CompositeType) {
	switch ct.Kind {
	case gctypes.CompFunc:
		w.WriteS64(int64(wireCompFunc))
		w.WriteU64(uint64(len(ct.Func.Params)))
		for _, vt := range ct.Func.Params {
			w.encodeValType(vt)
		}
		w.WriteU64(uint64(len(ct.Func.Results)))
		for _, vt := range ct.Func.Results {
			w.encodeValType(vt)
		}
	case gctypes.CompStruct:
		w.WriteS64(int64(wireCompStruct))
		w.WriteU64(uint64(len(ct.Fields)))
		for _, ft := range ct.Fields {
			w.encodeFieldType(ft)
		}
	case gctypes.CompArray:
		w.WriteS64(int64(wireCompArray))
		w.encodeFieldType(ct.Fields[0])
	}
}
