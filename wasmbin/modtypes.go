package wasmbin

import (
	"fmt"

	"github.com/bvisness/wasmgc/gctypes"
	"github.com/bvisness/wasmgc/internal/wasmerr"
)

// ReadName reads a length-prefixed UTF-8 name, as used by the import and
// export sections.
func (p *Reader) ReadName(thing string) (string, error) {
	n, err := p.ReadU32(thing)
	if err != nil {
		return "", err
	}
	b, err := p.ReadN(thing, int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadValType reads a single value type: a numeric/vector code, an
// explicit `(ref null? ht)` form, or a bare abstract heap type code
// (always nullable, per the reftype abbreviations in the core spec).
func (p *Reader) ReadValType(thing string) (gctypes.ValType, error) {
	return p.decodeValType(thing)
}

// ReadRefType reads a reftype: the same grammar as ReadValType's reference
// branch, restricted to actually being a reference. Table element types and
// other reftype-only contexts share this wire encoding with valtype's
// reference case.
func (p *Reader) ReadRefType(thing string) (gctypes.ValType, error) {
	vt, err := p.ReadValType(thing)
	if err != nil {
		return gctypes.ValType{}, err
	}
	if !vt.IsRefType() {
		return gctypes.ValType{}, wasmerr.New(wasmerr.MalformedValType, "%s: expected a reference type", thing)
	}
	return vt, nil
}

// AddressType distinguishes 32-bit from 64-bit (memory64) limits.
type AddressType int

const (
	AddrI32 AddressType = iota
	AddrI64
)

// Limits is a table or memory's size bound: a minimum and an optional
// maximum, plus the address width the counts are expressed in.
type Limits struct {
	AT     AddressType
	Min    uint64
	Max    uint64
	HasMax bool
}

// ReadLimits reads a limits block: a flags byte, a minimum, and (per the
// flags) an optional maximum and an address-width tag.
func (p *Reader) ReadLimits(thing string) (Limits, error) {
	flags, err := p.ReadByte("limits flags")
	if err != nil {
		return Limits{}, err
	}
	min, _, err := p.ReadU64("limits min")
	if err != nil {
		return Limits{}, err
	}
	lim := Limits{Min: min}
	if flags&0b001 != 0 {
		max, _, err := p.ReadU64("limits max")
		if err != nil {
			return Limits{}, err
		}
		lim.HasMax = true
		lim.Max = max
	}
	if flags&0b100 != 0 {
		lim.AT = AddrI64
	}
	return lim, nil
}

// TableType is a table's element type plus its size limits.
type TableType struct {
	ET  gctypes.ValType
	Lim Limits
}

// ReadTableType reads a table type: an element reftype followed by limits.
func (p *Reader) ReadTableType(thing string) (TableType, error) {
	et, err := p.ReadRefType(fmt.Sprintf("element type for %s", thing))
	if err != nil {
		return TableType{}, err
	}
	lim, err := p.ReadLimits(fmt.Sprintf("limits for %s", thing))
	if err != nil {
		return TableType{}, err
	}
	return TableType{ET: et, Lim: lim}, nil
}

// MemType is a memory's size limits.
type MemType struct {
	Lim Limits
}

// ReadMemType reads a memory type: bare limits.
func (p *Reader) ReadMemType(thing string) (MemType, error) {
	lim, err := p.ReadLimits(fmt.Sprintf("limits for %s", thing))
	if err != nil {
		return MemType{}, err
	}
	return MemType{Lim: lim}, nil
}

// GlobalType is a global's value type and mutability.
type GlobalType struct {
	Mut gctypes.Mutability
	T   gctypes.ValType
}

// ReadGlobalType reads a global type: a value type followed by a
// mutability byte.
func (p *Reader) ReadGlobalType(thing string) (GlobalType, error) {
	t, err := p.ReadValType(thing)
	if err != nil {
		return GlobalType{}, err
	}
	mutByte, err := p.ReadByte(thing)
	if err != nil {
		return GlobalType{}, err
	}
	mut := gctypes.Const
	if mutByte == 0x01 {
		mut = gctypes.Var
	}
	return GlobalType{Mut: mut, T: t}, nil
}

// ReadTagType reads a tag type: an attribute byte (always 0, reserved for
// future exception-handling proposals) followed by its function type index.
func (p *Reader) ReadTagType(thing string) (uint32, error) {
	if _, err := p.ReadByte(thing); err != nil {
		return 0, err
	}
	return p.ReadU32(thing)
}
