package gctypes

// Match decides the Wasm GC subtype relation "got <= expected" (spec.md
// §4.4). expTypes and gotTypes are the flat type lists that expected's and
// got's defined-type indices (if any) resolve against; in the common case
// of matching within a single module they are the same slice.
//
// The relation is coinductive: a cycle reached while unfolding the
// defined-type graph is treated as success at the cut, matching the
// recursive (equirecursive) identity of Wasm GC recursion groups. This is
// realized by memoizing every (expIdx, gotIdx, orientation) triple visited
// during one top-level call.
func Match(expected, got ValType, expTypes, gotTypes []SubType) bool {
	return matchValType(expected, got, expTypes, gotTypes, make(map[pairKey]bool), false)
}

// pairKey memoizes a defined-type comparison. orientation distinguishes a
// "got <= expected" check from the "expected <= got" check that function
// parameter contravariance introduces (spec.md §4.4): two comparisons with
// the same index pair but opposite orientation are different questions and
// must not share a cache entry. Orientation is a single parity bit because
// matching only ever flips it pairwise (a flip inside a flip cancels out).
type pairKey struct {
	expIdx, gotIdx uint32
	swapped        bool
}

func matchValType(exp, got ValType, expTypes, gotTypes []SubType, visited map[pairKey]bool, swapped bool) bool {
	if !exp.IsRefType() && !got.IsRefType() {
		// Case 1: non-reference types match iff their codes coincide.
		return exp.NumOrVecCode() == got.NumOrVecCode()
	}
	if exp.IsRefType() != got.IsRefType() {
		return false
	}

	// Case 2: nullability. A nullable got may not satisfy a non-nullable
	// expected.
	if !(exp.Nullable() || !got.Nullable()) {
		return false
	}

	eHeap, gHeap := exp.Heap(), got.Heap()
	switch {
	case eHeap.IsAbstractHeapType() && gHeap.IsAbstractHeapType():
		// Case 3: both abstract.
		return matchAbstract(eHeap, gHeap)

	case eHeap.IsAbstractHeapType():
		// Case 4: expected abstract, got concrete — expand got and recurse
		// on abstract codes.
		return matchAbstract(eHeap, gotTypes[gHeap].Composite.Expand())

	case gHeap.IsAbstractHeapType():
		// Case 5: expected concrete, got abstract — got must be a bottom
		// type, and the corresponding top must be a supertype of expected.
		expanded := expTypes[eHeap].Composite.Expand()
		switch gHeap {
		case None:
			return matchAbstract(Any, expanded)
		case NoFunc:
			return matchAbstract(Func, expanded)
		case NoExtern:
			return matchAbstract(Extern, expanded)
		default:
			return false
		}

	default:
		// Case 6: both concrete defined-type indices.
		return matchDefined(uint32(eHeap), uint32(gHeap), expTypes, gotTypes, visited, swapped)
	}
}

func matchDefined(expIdx, gotIdx uint32, expTypes, gotTypes []SubType, visited map[pairKey]bool, swapped bool) bool {
	if expIdx == gotIdx {
		return true
	}
	key := pairKey{expIdx: expIdx, gotIdx: gotIdx, swapped: swapped}
	if visited[key] {
		return true
	}
	visited[key] = true

	got := gotTypes[gotIdx]
	for _, superIdx := range got.Supers {
		if matchDefined(expIdx, superIdx, expTypes, gotTypes, visited, swapped) {
			return true
		}
	}
	return matchComposite(expTypes[expIdx].Composite, got.Composite, expTypes, gotTypes, visited, swapped)
}

func matchComposite(exp, got CompositeType, expTypes, gotTypes []SubType, visited map[pairKey]bool, swapped bool) bool {
	if exp.Kind != got.Kind {
		return false
	}
	switch exp.Kind {
	case CompFunc:
		// Function subtyping is contravariant in parameters, covariant in
		// results. The disciplined rule, not the original source's
		// params-vs-returns comparison (see SPEC_FULL.md §4 "Func matching
		// defect").
		if len(exp.Func.Params) != len(got.Func.Params) {
			return false
		}
		for i := range exp.Func.Params {
			if !matchValType(got.Func.Params[i], exp.Func.Params[i], gotTypes, expTypes, visited, !swapped) {
				return false
			}
		}
		if len(exp.Func.Results) != len(got.Func.Results) {
			return false
		}
		for i := range exp.Func.Results {
			if !matchValType(exp.Func.Results[i], got.Func.Results[i], expTypes, gotTypes, visited, swapped) {
				return false
			}
		}
		return true

	case CompStruct:
		if len(got.Fields) < len(exp.Fields) {
			return false
		}
		for i := range exp.Fields {
			if !matchField(exp.Fields[i], got.Fields[i], expTypes, gotTypes, visited, swapped) {
				return false
			}
		}
		return true

	case CompArray:
		return matchField(exp.Fields[0], got.Fields[0], expTypes, gotTypes, visited, swapped)

	default:
		return false
	}
}

func matchField(exp, got FieldType, expTypes, gotTypes []SubType, visited map[pairKey]bool, swapped bool) bool {
	if exp.Mut != got.Mut {
		return false
	}
	expVT, gotVT := fieldAsValType(exp), fieldAsValType(got)
	if !matchValType(expVT, gotVT, expTypes, gotTypes, visited, swapped) {
		return false
	}
	if exp.Mut == Var {
		// Mutable fields are invariant: storage must match both ways.
		return matchValType(gotVT, expVT, gotTypes, expTypes, visited, !swapped)
	}
	return true
}

// fieldAsValType lifts a (possibly packed) field storage type to a
// ValType for the purposes of structural matching. Packed storage always
// compares equal only to the identical packed code, via the numeric-code
// equality path in matchValType: I8/I16 are encoded as numeric-shaped
// ValTypes so Case 1 applies.
func fieldAsValType(ft FieldType) ValType {
	if ft.IsPacked() {
		return ValType{code: ft.StorageCode()}
	}
	return ft.StorageValType()
}

// matchAbstract decides the fixed lattice over abstract heap types
// (spec.md §4.4):
//
//	NoneRef    <= I31Ref, StructRef, ArrayRef <= EqRef <= AnyRef
//	NoFuncRef  <= FuncRef
//	NoExternRef <= ExternRef
//
// AnyRef, FuncRef, and ExternRef are three disjoint tops; any cross-family
// pair is false.
func matchAbstract(exp, got TypeCode) bool {
	if exp == got {
		return true
	}
	if exp == Func || exp == NoFunc {
		return got == NoFunc
	}
	if got == Func || got == NoFunc {
		return false
	}
	if exp == Extern || exp == NoExtern {
		return got == NoExtern
	}
	if got == Extern || got == NoExtern {
		return false
	}
	switch exp {
	case I31, Struct, Array:
		return got == None
	case Eq:
		return got != Any
	case Any:
		return true
	default:
		return false
	}
}
