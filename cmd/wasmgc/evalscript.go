package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bvisness/wasmgc/executor"
	"github.com/bvisness/wasmgc/gctypes"
	"github.com/bvisness/wasmgc/gcvalue"
)

// evalscript is a tiny line-oriented script language over the executor's
// GC operation vocabulary, built so the S1-S6 scenarios can be driven from
// a file instead of a Go test (spec.md §8). It understands three
// declaration forms and the eight instructions the module demos exercise:
//
//	type $Name = struct (<storage> <mut>) ...
//	type $Name = array <storage> <mut>
//	data $Name = <hex byte> ...
//	%reg = struct.new $Type v0 v1 ...
//	%reg = struct.new_default $Type
//	%reg = array.new_data $Type $Data s n
//	%reg = ref.test %reg2 $Type
//	%reg = ref.cast %reg2 $Type
//	%reg = ref.i31 v
//	%reg = ref.as_non_null %reg2
//	%reg = array.len %reg2
//
// Every declared type becomes one SubType in a flat, finalized, super-free
// list (recursion groups and subtyping are exercised directly via
// gctypes/wasmbin tests, not through this CLI convenience).
type evalEnv struct {
	m         *executor.Machine
	typeIdx   map[string]uint32
	typeCT    map[string]gctypes.CompositeType
	dataBytes map[string][]byte
	regs      map[string]gcvalue.Value
}

func newEvalEnv() *evalEnv {
	return &evalEnv{
		m:         executor.NewMachine(nil),
		typeIdx:   map[string]uint32{},
		typeCT:    map[string]gctypes.CompositeType{},
		dataBytes: map[string][]byte{},
		regs:      map[string]gcvalue.Value{},
	}
}

// runScript executes src line by line, writing one report line per
// instruction executed to report.
func runScript(src string, report func(string)) error {
	env := newEvalEnv()
	for lineNo, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if err := env.runLine(line, report); err != nil {
			return fmt.Errorf("line %d: %w", lineNo+1, err)
		}
	}
	return nil
}

func (env *evalEnv) runLine(line string, report func(string)) error {
	if rest, ok := strings.CutPrefix(line, "type "); ok {
		return env.declareType(rest)
	}
	if rest, ok := strings.CutPrefix(line, "data "); ok {
		return env.declareData(rest)
	}
	eq := strings.SplitN(line, "=", 2)
	if len(eq) != 2 {
		return fmt.Errorf("expected %%reg = instruction, got %q", line)
	}
	reg := strings.TrimSpace(eq[0])
	if !strings.HasPrefix(reg, "%") {
		return fmt.Errorf("register name %q must start with %%", reg)
	}
	v, display, err := env.eval(strings.TrimSpace(eq[1]))
	if err != nil {
		return err
	}
	env.regs[reg] = v
	report(fmt.Sprintf("%s = %s", reg, display))
	return nil
}

func (env *evalEnv) declareType(rest string) error {
	parts := strings.SplitN(rest, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("malformed type declaration %q", rest)
	}
	name := strings.TrimSpace(parts[0])
	body := strings.Fields(strings.TrimSpace(parts[1]))
	if len(body) == 0 {
		return fmt.Errorf("empty type body for %s", name)
	}

	var ct gctypes.CompositeType
	switch body[0] {
	case "array":
		if len(body) != 3 {
			return fmt.Errorf("array type %s: expected storage and mutability", name)
		}
		ft, err := parseField(body[1], body[2])
		if err != nil {
			return err
		}
		ct = gctypes.NewArrayComposite(ft)
	case "struct":
		fieldToks := strings.Join(body[1:], " ")
		fields, err := parseStructFields(fieldToks)
		if err != nil {
			return err
		}
		ct = gctypes.NewStructComposite(fields)
	default:
		return fmt.Errorf("unrecognized composite kind %q", body[0])
	}

	idx := uint32(len(env.m.Types))
	env.m.Types = append(env.m.Types, gctypes.SubType{Final: true, Composite: ct})
	env.typeIdx[name] = idx
	env.typeCT[name] = ct
	return nil
}

// parseStructFields splits a parenthesized field list: "(i8 mut) (i32 const)".
func parseStructFields(s string) ([]gctypes.FieldType, error) {
	var fields []gctypes.FieldType
	for s = strings.TrimSpace(s); s != ""; s = strings.TrimSpace(s) {
		if !strings.HasPrefix(s, "(") {
			return nil, fmt.Errorf("expected '(' in field list, got %q", s)
		}
		closeIdx := strings.Index(s, ")")
		if closeIdx < 0 {
			return nil, fmt.Errorf("unterminated field in %q", s)
		}
		toks := strings.Fields(s[1:closeIdx])
		if len(toks) != 2 {
			return nil, fmt.Errorf("field %q: expected <storage> <mut>", s[1:closeIdx])
		}
		ft, err := parseField(toks[0], toks[1])
		if err != nil {
			return nil, err
		}
		fields = append(fields, ft)
		s = s[closeIdx+1:]
	}
	return fields, nil
}

func parseField(storage, mutTok string) (gctypes.FieldType, error) {
	mut, err := parseMut(mutTok)
	if err != nil {
		return gctypes.FieldType{}, err
	}
	switch storage {
	case "i8":
		return gctypes.NewPackedFieldType(gctypes.I8, mut), nil
	case "i16":
		return gctypes.NewPackedFieldType(gctypes.I16, mut), nil
	case "i32":
		return gctypes.NewFieldType(gctypes.NumType(gctypes.I32), mut), nil
	case "i64":
		return gctypes.NewFieldType(gctypes.NumType(gctypes.I64), mut), nil
	case "f32":
		return gctypes.NewFieldType(gctypes.NumType(gctypes.F32), mut), nil
	case "f64":
		return gctypes.NewFieldType(gctypes.NumType(gctypes.F64), mut), nil
	default:
		return gctypes.FieldType{}, fmt.Errorf("unrecognized field storage %q", storage)
	}
}

func parseMut(tok string) (gctypes.Mutability, error) {
	switch tok {
	case "const":
		return gctypes.Const, nil
	case "mut":
		return gctypes.Var, nil
	default:
		return 0, fmt.Errorf("unrecognized mutability %q (want const or mut)", tok)
	}
}

func (env *evalEnv) declareData(rest string) error {
	parts := strings.SplitN(rest, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("malformed data declaration %q", rest)
	}
	name := strings.TrimSpace(parts[0])
	var bs []byte
	for _, tok := range strings.Fields(parts[1]) {
		b, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return fmt.Errorf("data %s: invalid byte %q: %w", name, tok, err)
		}
		bs = append(bs, byte(b))
	}
	env.dataBytes[name] = bs
	return nil
}

// byteSource adapts a []byte to executor.DataSource.
type byteSource []byte

func (b byteSource) Len() int            { return len(b) }
func (b byteSource) ReadByte(i int) byte { return b[i] }

func (env *evalEnv) eval(instr string) (gcvalue.Value, string, error) {
	toks := strings.Fields(instr)
	if len(toks) == 0 {
		return gcvalue.Value{}, "", fmt.Errorf("empty instruction")
	}
	op, args := toks[0], toks[1:]

	switch op {
	case "struct.new":
		if len(args) < 1 {
			return gcvalue.Value{}, "", fmt.Errorf("struct.new: missing type name")
		}
		idx, ct, err := env.lookupType(args[0])
		if err != nil {
			return gcvalue.Value{}, "", err
		}
		vals := make([]gcvalue.Value, len(args)-1)
		for i, a := range args[1:] {
			n, err := parseInt(a)
			if err != nil {
				return gcvalue.Value{}, "", err
			}
			vals[i] = gcvalue.I32(n)
		}
		v := env.m.StructNew(idx, ct, vals)
		return v, "struct", nil

	case "struct.new_default":
		if len(args) != 1 {
			return gcvalue.Value{}, "", fmt.Errorf("struct.new_default: expected a type name")
		}
		idx, ct, err := env.lookupType(args[0])
		if err != nil {
			return gcvalue.Value{}, "", err
		}
		return env.m.StructNewDefault(idx, ct), "struct", nil

	case "array.new_data":
		if len(args) != 4 {
			return gcvalue.Value{}, "", fmt.Errorf("array.new_data: expected type, data, offset, count")
		}
		idx, ct, err := env.lookupType(args[0])
		if err != nil {
			return gcvalue.Value{}, "", err
		}
		data, ok := env.dataBytes[args[1]]
		if !ok {
			return gcvalue.Value{}, "", fmt.Errorf("undeclared data segment %s", args[1])
		}
		s, err := parseInt(args[2])
		if err != nil {
			return gcvalue.Value{}, "", err
		}
		n, err := parseInt(args[3])
		if err != nil {
			return gcvalue.Value{}, "", err
		}
		v, err := env.m.ArrayNewData(idx, ct, byteSource(data), s, n)
		if err != nil {
			return gcvalue.Value{}, "", err
		}
		return v, "array", nil

	case "array.len":
		if len(args) != 1 {
			return gcvalue.Value{}, "", fmt.Errorf("array.len: expected one operand")
		}
		src, err := env.lookupReg(args[0])
		if err != nil {
			return gcvalue.Value{}, "", err
		}
		v, err := executor.ArrayLen(src)
		if err != nil {
			return gcvalue.Value{}, "", err
		}
		return v, fmt.Sprintf("i32 %d", v.AsI32()), nil

	case "ref.test":
		if len(args) != 2 {
			return gcvalue.Value{}, "", fmt.Errorf("ref.test: expected operand and type")
		}
		src, err := env.lookupReg(args[0])
		if err != nil {
			return gcvalue.Value{}, "", err
		}
		idx, _, err := env.lookupType(args[1])
		if err != nil {
			return gcvalue.Value{}, "", err
		}
		rt := gctypes.RefValType(true, gctypes.DefinedHeapType(idx))
		ok := env.m.RefTest(src, rt)
		return gcvalue.I32(boolToU32(ok)), fmt.Sprintf("i32 %v", ok), nil

	case "ref.cast":
		if len(args) != 2 {
			return gcvalue.Value{}, "", fmt.Errorf("ref.cast: expected operand and type")
		}
		src, err := env.lookupReg(args[0])
		if err != nil {
			return gcvalue.Value{}, "", err
		}
		idx, _, err := env.lookupType(args[1])
		if err != nil {
			return gcvalue.Value{}, "", err
		}
		rt := gctypes.RefValType(true, gctypes.DefinedHeapType(idx))
		v, err := env.m.RefCast(src, rt)
		if err != nil {
			return gcvalue.Value{}, "", err
		}
		return v, "ref", nil

	case "ref.i31":
		if len(args) != 1 {
			return gcvalue.Value{}, "", fmt.Errorf("ref.i31: expected one operand")
		}
		n, err := parseInt(args[0])
		if err != nil {
			return gcvalue.Value{}, "", err
		}
		v := executor.RefI31(gcvalue.I32(n))
		return v, fmt.Sprintf("i31ref %d", v.AsRef().I31Value()), nil

	case "ref.as_non_null":
		if len(args) != 1 {
			return gcvalue.Value{}, "", fmt.Errorf("ref.as_non_null: expected one operand")
		}
		src, err := env.lookupReg(args[0])
		if err != nil {
			return gcvalue.Value{}, "", err
		}
		v, err := executor.RefAsNonNull(src)
		if err != nil {
			return gcvalue.Value{}, "", err
		}
		return v, "ref", nil

	default:
		return gcvalue.Value{}, "", fmt.Errorf("unrecognized instruction %q", op)
	}
}

func (env *evalEnv) lookupType(name string) (uint32, gctypes.CompositeType, error) {
	idx, ok := env.typeIdx[name]
	if !ok {
		return 0, gctypes.CompositeType{}, fmt.Errorf("undeclared type %s", name)
	}
	return idx, env.typeCT[name], nil
}

func (env *evalEnv) lookupReg(name string) (gcvalue.Value, error) {
	v, ok := env.regs[name]
	if !ok {
		return gcvalue.Value{}, fmt.Errorf("undefined register %s", name)
	}
	return v, nil
}

func parseInt(tok string) (uint32, error) {
	n, err := strconv.ParseUint(tok, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", tok, err)
	}
	return uint32(n), nil
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
