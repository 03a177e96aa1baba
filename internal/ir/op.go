package ir

// Op is the decoded, structured form of one operation: the driver (component
// E) works on a slice of these rather than walking raw cursors itself, which
// keeps the rewrite rules in fold.go/optimize.go/rewrite.go free of index
// arithmetic. Optimize (optimize.go) is the thin adapter that packs/unpacks Op
// against the flat (opcodes[], args[]) wire format §6 specifies.
type Op struct {
	Code Opcode
	Out  []TempID
	In   []TempID
	// Const holds the operation's immediate operands in the order the
	// opcode prescribes: deposit's (pos, len); setcond/brcond/movcond's
	// cond (brcond additionally carries its label after cond); br's
	// label.
	Const []uint64
}

// CallHeader returns the packed (n_out, n_in) header for a call operation,
// valid only when Code == OpCall.
func (o *Op) CallHeader() uint64 {
	return uint64(len(o.Out))<<16 | uint64(len(o.In))
}

// decodeStream turns the flat wire representation into a slice of Op,
// consulting Catalog for each opcode's arity. Unknown opcodes (not in the
// catalog) are rejected at decode time — the driver only ever sees
// well-formed operations; an unrecognized opcode surviving into Phase 5
// unchanged (per §6, "unknown opcodes fall through Phase 5 unchanged") is a
// distinct case from an opcode decode failure and is handled by the driver,
// not here.
// DecodeOps exposes decodeStream for callers outside the package that need
// read-only structured access to an operation stream — the .tcg printer,
// primarily.
func DecodeOps(opcodes []Opcode, args []uint64) ([]Op, error) {
	return decodeStream(opcodes, args)
}

func decodeStream(opcodes []Opcode, args []uint64) ([]Op, error) {
	ops := make([]Op, len(opcodes))
	cursor := 0

	for i, code := range opcodes {
		if int(code) >= len(Catalog) {
			return nil, &FatalError{OpIndex: i, Op: code, Reason: "opcode outside catalog range"}
		}
		info := Catalog[code]

		nOut, nIn, nConst := info.NOut, info.NIn, info.NConst
		if info.IsCall {
			if cursor >= len(args) {
				return nil, &FatalError{OpIndex: i, Op: code, Reason: "truncated call header"}
			}
			header := args[cursor]
			cursor++
			nOut = int(header >> 16)
			nIn = int(header & 0xFFFF)
		}

		op := Op{Code: code}
		if cursor+nOut+nIn+nConst > len(args) {
			return nil, &FatalError{OpIndex: i, Op: code, Reason: "truncated operand list"}
		}
		for j := 0; j < nOut; j++ {
			op.Out = append(op.Out, TempID(args[cursor]))
			cursor++
		}
		for j := 0; j < nIn; j++ {
			op.In = append(op.In, TempID(args[cursor]))
			cursor++
		}
		for j := 0; j < nConst; j++ {
			op.Const = append(op.Const, args[cursor])
			cursor++
		}

		ops[i] = op
	}

	return ops, nil
}

// encodeStream packs a (possibly shortened) Op stream back into the flat
// wire format, writing opcodes in place into codesOut and arguments into
// argsOut. It returns the number of uint64 args written, i.e. the cursor
// §6 specifies the caller receives. NOP operations contribute zero
// arguments, matching "NOP opcodes in the output never carry meaningful
// arguments."
func encodeStream(ops []Op, codesOut []Opcode, argsOut []uint64) int {
	cursor := 0
	for i, op := range ops {
		codesOut[i] = op.Code
		if op.Code == OpNop {
			continue
		}
		if op.Code == OpCall {
			argsOut[cursor] = op.CallHeader()
			cursor++
		}
		for _, t := range op.Out {
			argsOut[cursor] = uint64(t)
			cursor++
		}
		for _, t := range op.In {
			argsOut[cursor] = uint64(t)
			cursor++
		}
		for _, c := range op.Const {
			argsOut[cursor] = c
			cursor++
		}
	}
	return cursor
}
