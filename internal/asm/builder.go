package asm

import (
	"fmt"
	"strconv"

	"tcgopt/internal/ir"
)

// BuildError reports a semantic problem in an otherwise grammatical .tcg
// listing: an unknown mnemonic, an undefined label, a temp used at two
// incompatible widths, or a malformed call header. Distinct from
// ParseError/ScanError, which are purely syntactic.
type BuildError struct {
	Line    int
	Message string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("asm: line %d: %s", e.Line, e.Message)
}

// Assembled is the lowered form of a .tcg program: a ready-to-run
// ir.Context plus the flat (opcodes, args) stream ir.Optimize consumes.
type Assembled struct {
	Ctx     *ir.Context
	Opcodes []ir.Opcode
	Args    []uint64
	// OpLines[i] is the .tcg source line that produced Opcodes[i], for
	// mapping an ir.FatalError's OpIndex back to a source position.
	OpLines []int
}

// tempNames tracks, for one textual namespace (g/l/t), the order names
// were first seen and the width each was used at (0 until constrained).
type tempNames struct {
	order  []string
	widths map[string]ir.Width
}

func newTempNames() *tempNames {
	return &tempNames{widths: map[string]ir.Width{}}
}

func (n *tempNames) see(name string, w ir.Width, line int) error {
	if _, ok := n.widths[name]; !ok {
		n.order = append(n.order, name)
		n.widths[name] = w
		return nil
	}
	if w == 0 {
		return nil
	}
	if n.widths[name] == 0 {
		n.widths[name] = w
		return nil
	}
	if n.widths[name] != w {
		return &BuildError{Line: line, Message: fmt.Sprintf("temp %s used at conflicting widths", name)}
	}
	return nil
}

// Build lowers a parsed Program into an Assembled unit. Temp identity is
// derived from the textual namespace: every distinct "gN" forms the global
// class (renumbered to occupy the low indices ir.Context requires), every
// distinct "lN" forms the local class, every distinct "tN" is ordinary.
// Labels resolve to the index of their own ir.OpLabel slot in the opcode
// stream, not the instruction that follows them.
//
// Lowering is two passes: the first walks every operand to learn each
// temp's class, width, and first-seen order (so ids can be assigned
// contiguously per class before anything is emitted); the second walks the
// program again to emit the flat opcode/arg stream against the now-fixed
// id assignment.
func Build(prog *Program) (*Assembled, error) {
	labels, err := collectLabels(prog)
	if err != nil {
		return nil, err
	}

	globalNames, localNames, ordinaryNames, err := scanTemps(prog)
	if err != nil {
		return nil, err
	}

	ids, ctx := assignIDs(globalNames, localNames, ordinaryNames)

	opcodes, args, opLines, err := emit(prog, labels, ids)
	if err != nil {
		return nil, err
	}

	return &Assembled{Ctx: ctx, Opcodes: opcodes, Args: args, OpLines: opLines}, nil
}

// collectLabels resolves every label definition to the opcode-stream index
// of its own ir.OpLabel slot (emit emits one per label line, see below), not
// the index of the instruction that follows it: a label is a basic-block
// join point in its own right, reached by fall-through as much as by a
// taken branch, and the driver resets the temp table when it processes that
// slot (§3 invariant 5).
func collectLabels(prog *Program) (map[string]uint64, error) {
	labels := map[string]uint64{}
	var idx uint64
	for _, line := range prog.Lines {
		if line.Label != nil {
			if _, dup := labels[line.Label.Name]; dup {
				return nil, &BuildError{Line: line.Label.Pos.Line, Message: fmt.Sprintf("duplicate label %q", line.Label.Name)}
			}
			labels[line.Label.Name] = idx
			idx++
			continue
		}
		if line.Inst != nil {
			idx++
		}
	}
	return labels, nil
}

// scanTemps walks every instruction's operands once, classifying each
// distinct temp name and learning its declared width from whichever
// opcode(s) use it.
func scanTemps(prog *Program) (globals, locals, ordinary *tempNames, err error) {
	globals, locals, ordinary = newTempNames(), newTempNames(), newTempNames()

	for _, line := range prog.Lines {
		if line.Inst == nil {
			continue
		}
		inst := line.Inst
		w := ir.Width(0)
		if inst.Mnemonic != "nop" && inst.Mnemonic != "br" && inst.Mnemonic != "call" {
			op, ok := ir.ParseOpcode(inst.Mnemonic)
			if !ok {
				return nil, nil, nil, &BuildError{Line: inst.Pos.Line, Message: fmt.Sprintf("unknown mnemonic %q", inst.Mnemonic)}
			}
			w = ir.Info(op).Width
		}

		for _, o := range inst.Operands {
			var bucket *tempNames
			var name string
			switch {
			case o.Global != "":
				bucket, name = globals, o.Global
			case o.Local != "":
				bucket, name = locals, o.Local
			case o.Temp != "":
				bucket, name = ordinary, o.Temp
			default:
				continue
			}
			if err := bucket.see(name, w, o.Pos.Line); err != nil {
				return nil, nil, nil, err
			}
		}
	}
	return globals, locals, ordinary, nil
}

// assignIDs fixes the final arena layout: globals first, then locals, then
// ordinary temps, each in first-seen order.
func assignIDs(globals, locals, ordinary *tempNames) (map[string]ir.TempID, *ir.Context) {
	ids := map[string]ir.TempID{}
	var desc []ir.TempDesc

	place := func(n *tempNames, class ir.TempClass) {
		for _, name := range n.order {
			w := n.widths[name]
			if w == 0 {
				w = ir.W32
			}
			ids[name] = ir.TempID(len(desc))
			desc = append(desc, ir.TempDesc{Class: class, Width: w})
		}
	}

	place(globals, ir.ClassGlobal)
	nGlobals := len(desc)
	place(locals, ir.ClassLocal)
	place(ordinary, ir.ClassOrdinary)

	ctx := &ir.Context{NTemps: len(desc), NGlobals: nGlobals, Temps: desc}
	return ids, ctx
}

// emit performs the second pass: turning each instruction into its
// catalog-ordered (out..., in..., const...) argument slice using the fixed
// id assignment from assignIDs.
func emit(prog *Program, labels map[string]uint64, ids map[string]ir.TempID) ([]ir.Opcode, []uint64, []int, error) {
	var opcodes []ir.Opcode
	var args []uint64
	var opLines []int

	for _, line := range prog.Lines {
		if line.Label != nil {
			opcodes = append(opcodes, ir.OpLabel)
			opLines = append(opLines, line.Label.Pos.Line)
			continue
		}
		if line.Inst == nil {
			continue
		}
		inst := line.Inst

		switch inst.Mnemonic {
		case "nop":
			opcodes = append(opcodes, ir.OpNop)
			opLines = append(opLines, inst.Pos.Line)
			continue
		case "br":
			target, err := resolveLabelOperand(inst, 0, labels)
			if err != nil {
				return nil, nil, nil, err
			}
			opcodes = append(opcodes, ir.OpBr)
			args = append(args, target)
			opLines = append(opLines, inst.Pos.Line)
			continue
		case "call":
			callArgs, err := buildCall(inst, ids)
			if err != nil {
				return nil, nil, nil, err
			}
			opcodes = append(opcodes, ir.OpCall)
			args = append(args, callArgs...)
			opLines = append(opLines, inst.Pos.Line)
			continue
		}

		op, _ := ir.ParseOpcode(inst.Mnemonic)
		info := ir.Info(op)
		opArgs, err := buildOperands(inst, info, ids, labels)
		if err != nil {
			return nil, nil, nil, err
		}
		opcodes = append(opcodes, op)
		args = append(args, opArgs...)
		opLines = append(opLines, inst.Pos.Line)
	}

	return opcodes, args, opLines, nil
}

func resolveLabelOperand(inst *Instruction, n int, labels map[string]uint64) (uint64, error) {
	line := inst.Pos.Line
	if n >= len(inst.Operands) {
		return 0, &BuildError{Line: line, Message: "missing label operand"}
	}
	name := inst.Operands[n].Ident
	target, ok := labels[name]
	if !ok {
		return 0, &BuildError{Line: line, Message: fmt.Sprintf("undefined label %q", name)}
	}
	return target, nil
}

// buildOperands lowers an instruction's operand list into the flat
// out/in/const argument order decodeStream expects, consulting info for
// arity and which trailing operands are labels vs conditions vs plain
// immediates.
func buildOperands(inst *Instruction, info ir.OpInfo, ids map[string]ir.TempID, labels map[string]uint64) ([]uint64, error) {
	line := inst.Pos.Line
	want := info.NOut + info.NIn + info.NConst
	if len(inst.Operands) != want {
		return nil, &BuildError{Line: line, Message: fmt.Sprintf("%s expects %d operands, got %d", inst.Mnemonic, want, len(inst.Operands))}
	}

	var out []uint64
	n := 0
	for i := 0; i < info.NOut+info.NIn; i++ {
		id, err := resolveTemp(inst.Operands[n], ids, line)
		if err != nil {
			return nil, err
		}
		out = append(out, uint64(id))
		n++
	}

	isBrCond := info.Category == ir.CatBrCond
	isCondFamily := info.Category == ir.CatSetCond || info.Category == ir.CatBrCond ||
		info.Category == ir.CatMovCond || info.Category == ir.CatBrCond2 || info.Category == ir.CatSetCond2
	for i := 0; i < info.NConst; i++ {
		operand := inst.Operands[n]
		switch {
		case isCondFamily && i == 0:
			cond, ok := ir.ParseCond(operand.Ident)
			if !ok {
				return nil, &BuildError{Line: line, Message: fmt.Sprintf("invalid condition %q", operand.Ident)}
			}
			out = append(out, uint64(cond))
		case (isBrCond || info.Category == ir.CatBrCond2) && i == 1:
			target, ok := labels[operand.Ident]
			if !ok {
				return nil, &BuildError{Line: line, Message: fmt.Sprintf("undefined label %q", operand.Ident)}
			}
			out = append(out, target)
		default:
			v, err := resolveImmediate(operand, line)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		n++
	}

	return out, nil
}

func resolveTemp(o *Operand, ids map[string]ir.TempID, line int) (ir.TempID, error) {
	if o.Temp == "" && o.Global == "" && o.Local == "" {
		return 0, &BuildError{Line: line, Message: fmt.Sprintf("expected a temp operand, got %q", o.text())}
	}
	id, ok := ids[o.text()]
	if !ok {
		return 0, &BuildError{Line: line, Message: fmt.Sprintf("internal: temp %q not assigned an id", o.text())}
	}
	return id, nil
}

func resolveImmediate(o *Operand, line int) (uint64, error) {
	switch {
	case o.Hex != "":
		v, err := strconv.ParseUint(o.Hex[2:], 16, 64)
		if err != nil {
			return 0, &BuildError{Line: line, Message: "malformed hex literal"}
		}
		return v, nil
	case o.Int != "":
		v, err := strconv.ParseInt(o.Int, 10, 64)
		if err != nil {
			return 0, &BuildError{Line: line, Message: "malformed integer literal"}
		}
		return uint64(v), nil
	default:
		return 0, &BuildError{Line: line, Message: fmt.Sprintf("expected an immediate, got %q", o.text())}
	}
}

func (o *Operand) text() string {
	switch {
	case o.Temp != "":
		return o.Temp
	case o.Global != "":
		return o.Global
	case o.Local != "":
		return o.Local
	case o.Hex != "":
		return o.Hex
	case o.Int != "":
		return o.Int
	default:
		return o.Ident
	}
}

// buildCall lowers `call(nOut, nIn) out..., in...` into OpCall's packed
// header plus its flat argument list.
func buildCall(inst *Instruction, ids map[string]ir.TempID) ([]uint64, error) {
	line := inst.Pos.Line
	if inst.Header == nil {
		return nil, &BuildError{Line: line, Message: "call requires a (n_out, n_in) header"}
	}
	nOut, err := strconv.Atoi(inst.Header.NOut)
	if err != nil {
		return nil, &BuildError{Line: line, Message: "malformed call header"}
	}
	nIn, err := strconv.Atoi(inst.Header.NIn)
	if err != nil {
		return nil, &BuildError{Line: line, Message: "malformed call header"}
	}
	if len(inst.Operands) != nOut+nIn {
		return nil, &BuildError{Line: line, Message: "call operand count does not match its header"}
	}

	args := []uint64{uint64(nOut)<<16 | uint64(nIn)}
	for _, o := range inst.Operands {
		id, err := resolveTemp(o, ids, line)
		if err != nil {
			return nil, err
		}
		args = append(args, uint64(id))
	}
	return args, nil
}
