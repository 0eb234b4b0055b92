package heap

import (
	"fmt"
	"sync"

	"github.com/bvisness/wasmgc/gctypes"
	"github.com/bvisness/wasmgc/gcvalue"
)

// Store is the unique owner of every struct and array instance allocated
// while a module runs. Callers hold weak handles (plain *Struct/*Array
// pointers, or gcvalue.Ref wrapping them); the store's append-only backing
// slices are guarded by a mutex so that concurrent instantiations from
// separate mutator threads never race on growth (spec.md §4.3, §5).
//
// Returned pointers are stable for the object's lifetime: the store never
// moves or reallocates an instance once constructed.
type Store struct {
	mu      sync.Mutex
	structs []*Struct
	arrays  []*Array
}

// NewStore constructs an empty heap object store.
func NewStore() *Store {
	return &Store{}
}

// NewStructDefault allocates a struct with every field default-initialized
// per its storage type (spec.md §4.5 `struct.new_default`).
func (s *Store) NewStructDefault(ct gctypes.CompositeType) *Struct {
	fields := make([]gcvalue.Value, len(ct.Fields))
	for i, ft := range ct.Fields {
		fields[i] = DefaultValue(ft)
	}
	return s.pushStruct(ct, fields)
}

// NewStruct allocates a struct from already-packed field values (spec.md
// §4.5 `struct.new`). len(vals) must equal len(ct.Fields).
func (s *Store) NewStruct(ct gctypes.CompositeType, vals []gcvalue.Value) *Struct {
	if len(vals) != len(ct.Fields) {
		panic(fmt.Sprintf("heap: NewStruct: got %d values for %d fields", len(vals), len(ct.Fields)))
	}
	fields := make([]gcvalue.Value, len(vals))
	copy(fields, vals)
	return s.pushStruct(ct, fields)
}

func (s *Store) pushStruct(ct gctypes.CompositeType, fields []gcvalue.Value) *Struct {
	inst := &Struct{refCount: 1, compType: ct, fields: fields}
	s.mu.Lock()
	s.structs = append(s.structs, inst)
	s.mu.Unlock()
	return inst
}

// NewArrayDefault allocates an array of the given length with every
// element default-initialized (spec.md §4.5 `array.new_default`).
func (s *Store) NewArrayDefault(ct gctypes.CompositeType, length uint32) *Array {
	def := DefaultValue(ct.ArrayElem())
	data := make([]gcvalue.Value, length)
	for i := range data {
		data[i] = def
	}
	return s.pushArray(ct, data)
}

// NewArraySplat allocates an array of the given length, every element set
// to init (spec.md §4.5 `array.new`). init must already be packed.
func (s *Store) NewArraySplat(ct gctypes.CompositeType, length uint32, init gcvalue.Value) *Array {
	data := make([]gcvalue.Value, length)
	for i := range data {
		data[i] = init
	}
	return s.pushArray(ct, data)
}

// NewArray allocates an array from already-packed element values (spec.md
// §4.5 `array.new_fixed`, `array.new_data`, `array.new_elem`).
func (s *Store) NewArray(ct gctypes.CompositeType, vals []gcvalue.Value) *Array {
	data := make([]gcvalue.Value, len(vals))
	copy(data, vals)
	return s.pushArray(ct, data)
}

func (s *Store) pushArray(ct gctypes.CompositeType, data []gcvalue.Value) *Array {
	inst := &Array{refCount: 1, compType: ct, data: data}
	s.mu.Lock()
	s.arrays = append(s.arrays, inst)
	s.mu.Unlock()
	return inst
}

// NumStructs and NumArrays report the store's current population, mostly
// useful for tests and diagnostics.
func (s *Store) NumStructs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.structs)
}

func (s *Store) NumArrays() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.arrays)
}
