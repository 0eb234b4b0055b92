package gctypes

// FunctionType is the parameter/result signature of a func composite type.
type FunctionType struct {
	Params  []ValType
	Results []ValType
}

// Equal reports structural equality of two function types (spec.md §3
// invariant 3).
func (ft FunctionType) Equal(other FunctionType) bool {
	if len(ft.Params) != len(other.Params) || len(ft.Results) != len(other.Results) {
		return false
	}
	for i := range ft.Params {
		if ft.Params[i] != other.Params[i] {
			return false
		}
	}
	for i := range ft.Results {
		if ft.Results[i] != other.Results[i] {
			return false
		}
	}
	return true
}

// CompositeKind tags the three shapes a CompositeType can take.
type CompositeKind uint8

const (
	CompFunc CompositeKind = iota
	CompStruct
	CompArray
)

// CompositeType is the body of a SubType: a func, struct, or array type
// (spec.md §3).
type CompositeType struct {
	Kind   CompositeKind
	Func   FunctionType // valid iff Kind == CompFunc
	Fields []FieldType  // valid iff Kind == CompStruct or CompArray; len == 1 for CompArray
}

// NewFuncComposite constructs a func composite type.
func NewFuncComposite(ft FunctionType) CompositeType {
	return CompositeType{Kind: CompFunc, Func: ft}
}

// NewStructComposite constructs a struct composite type.
func NewStructComposite(fields []FieldType) CompositeType {
	return CompositeType{Kind: CompStruct, Fields: fields}
}

// NewArrayComposite constructs an array composite type from its single
// element field type.
func NewArrayComposite(elem FieldType) CompositeType {
	return CompositeType{Kind: CompArray, Fields: []FieldType{elem}}
}

// ArrayElem returns the element field type of an array composite. It
// panics if ct is not an array.
func (ct CompositeType) ArrayElem() FieldType {
	if ct.Kind != CompArray {
		panic("gctypes: ArrayElem of a non-array composite type")
	}
	return ct.Fields[0]
}

// Expand maps a composite type to the abstract heap type that references
// to it inhabit (spec.md §3: "Its expand() maps to the corresponding
// concrete heap-type code").
func (ct CompositeType) Expand() TypeCode {
	switch ct.Kind {
	case CompFunc:
		return Func
	case CompStruct:
		return Struct
	case CompArray:
		return Array
	default:
		panic("gctypes: Expand of an invalid composite type")
	}
}

// SubType is one member of a recursion group: an optional list of
// supertype indices, a finality flag, and a composite body (spec.md §3).
// Supers holds at most one entry in the Wasm GC MVP, but the model
// permits a general list.
type SubType struct {
	Final     bool
	Supers    []uint32
	Composite CompositeType
}
