package ir

// Opcode is a compact identifier for an IR operation. It is the 16-bit
// enumerated value the wire format in SPEC_FULL.md §6 describes; the
// driver never switches on Opcode directly for rewrite decisions — it
// dispatches on the opcode's Category (see design note in §9 about
// avoiding per-enumerant macro-expansion style dispatch).
type Opcode uint16

// Category groups opcodes into the families the folding algebra (§4.D) and
// the rewriting driver (§4.E) actually reason about. Two opcodes in the
// same category differ only by width.
type Category uint8

const (
	CatNop Category = iota
	CatMov
	CatMovI
	CatAdd
	CatSub
	CatMul
	CatAnd
	CatOr
	CatXor
	CatAndc
	CatOrc
	CatEqv
	CatNand
	CatNor
	CatNot
	CatNeg
	CatShl
	CatShr
	CatSar
	CatRotl
	CatRotr
	CatExt8s
	CatExt16s
	CatExt32s
	CatExt8u
	CatExt16u
	CatExt32u
	CatDeposit
	CatSetCond
	CatBrCond
	CatMovCond
	CatBr
	CatCall
	CatAdd2
	CatSub2
	CatMulU2
	CatBrCond2
	CatSetCond2
	CatLabel
)

const (
	OpNop Opcode = iota

	OpMovI32
	OpMovI64
	OpMoviI32
	OpMoviI64

	OpAddI32
	OpAddI64
	OpSubI32
	OpSubI64
	OpMulI32
	OpMulI64

	OpAndI32
	OpAndI64
	OpOrI32
	OpOrI64
	OpXorI32
	OpXorI64
	OpAndcI32
	OpAndcI64
	OpOrcI32
	OpOrcI64
	OpEqvI32
	OpEqvI64
	OpNandI32
	OpNandI64
	OpNorI32
	OpNorI64

	OpNotI32
	OpNotI64
	OpNegI32
	OpNegI64

	OpShlI32
	OpShlI64
	OpShrI32
	OpShrI64
	OpSarI32
	OpSarI64
	OpRotlI32
	OpRotlI64
	OpRotrI32
	OpRotrI64

	OpExt8sI32
	OpExt8sI64
	OpExt16sI32
	OpExt16sI64
	OpExt32sI64
	OpExt8uI32
	OpExt8uI64
	OpExt16uI32
	OpExt16uI64
	OpExt32uI64

	OpDepositI32
	OpDepositI64

	OpSetCondI32
	OpSetCondI64
	OpBrCondI32
	OpBrCondI64
	OpMovCondI32
	OpMovCondI64

	OpBr
	OpCall

	OpAdd2I32
	OpSub2I32
	OpMulU2I32
	OpBrCond2I32
	OpSetCond2I32

	OpLabel

	opCodeCount
)

// OpInfo is the per-opcode metadata §4.A describes: arity split
// (n_out, n_in, n_const), width tag, and the predicate flags the driver
// consults. Call's arity is special-cased (its real n_out/n_in live in the
// packed first argument) — NOut/NIn here are only the fixed header slots.
type OpInfo struct {
	Category        Category
	Width           Width // zero value (neither W32 nor W64) for width-agnostic ops
	NOut, NIn       int
	NConst          int
	Commutative     bool
	IsBasicBlockEnd bool
	IsCall          bool
	NoReadGlobals   bool
	NoWriteGlobals  bool
}

// Catalog maps every Opcode to its Info. Populated once at init time.
var Catalog [opCodeCount]OpInfo

// mnemonics backs Opcode.String() and the .tcg printer/parser.
var mnemonics [opCodeCount]string

func (op Opcode) String() string {
	if int(op) < len(mnemonics) && mnemonics[op] != "" {
		return mnemonics[op]
	}
	return "op(?)"
}

// mnemonicToOpcode is the reverse of mnemonics, built once in init() for
// ParseOpcode.
var mnemonicToOpcode map[string]Opcode

// ParseOpcode resolves a .tcg mnemonic (e.g. "add.i32") to its Opcode. Used
// by internal/asm when lowering a parsed listing.
func ParseOpcode(name string) (Opcode, bool) {
	op, ok := mnemonicToOpcode[name]
	return op, ok
}

// Info returns the metadata for op. It indexes Catalog directly and adds no
// bounds check of its own; the driver indexes Catalog itself, and this is
// the form used by internal/asm and tests.
func Info(op Opcode) OpInfo {
	return Catalog[op]
}

// HasWidth reports whether op carries a real, checkable width — used to
// gate the fatal "unrecognized width" condition from §7.
func HasWidth(op Opcode) bool {
	w := Catalog[op].Width
	return w == W32 || w == W64
}

func reg(op Opcode, name string, info OpInfo) {
	mnemonics[op] = name
	Catalog[op] = info
	mnemonicToOpcode[name] = op
}

func init() {
	mnemonicToOpcode = make(map[string]Opcode, opCodeCount)

	reg(OpNop, "nop", OpInfo{Category: CatNop})

	reg(OpMovI32, "mov.i32", OpInfo{Category: CatMov, Width: W32, NOut: 1, NIn: 1})
	reg(OpMovI64, "mov.i64", OpInfo{Category: CatMov, Width: W64, NOut: 1, NIn: 1})
	reg(OpMoviI32, "movi.i32", OpInfo{Category: CatMovI, Width: W32, NOut: 1, NConst: 1})
	reg(OpMoviI64, "movi.i64", OpInfo{Category: CatMovI, Width: W64, NOut: 1, NConst: 1})

	binArith := []struct {
		op   Opcode
		name string
		cat  Category
		w    Width
		comm bool
	}{
		{OpAddI32, "add.i32", CatAdd, W32, true},
		{OpAddI64, "add.i64", CatAdd, W64, true},
		{OpSubI32, "sub.i32", CatSub, W32, false},
		{OpSubI64, "sub.i64", CatSub, W64, false},
		{OpMulI32, "mul.i32", CatMul, W32, true},
		{OpMulI64, "mul.i64", CatMul, W64, true},
		{OpAndI32, "and.i32", CatAnd, W32, true},
		{OpAndI64, "and.i64", CatAnd, W64, true},
		{OpOrI32, "or.i32", CatOr, W32, true},
		{OpOrI64, "or.i64", CatOr, W64, true},
		{OpXorI32, "xor.i32", CatXor, W32, true},
		{OpXorI64, "xor.i64", CatXor, W64, true},
		{OpAndcI32, "andc.i32", CatAndc, W32, false},
		{OpAndcI64, "andc.i64", CatAndc, W64, false},
		{OpOrcI32, "orc.i32", CatOrc, W32, false},
		{OpOrcI64, "orc.i64", CatOrc, W64, false},
		{OpEqvI32, "eqv.i32", CatEqv, W32, true},
		{OpEqvI64, "eqv.i64", CatEqv, W64, true},
		{OpNandI32, "nand.i32", CatNand, W32, true},
		{OpNandI64, "nand.i64", CatNand, W64, true},
		{OpNorI32, "nor.i32", CatNor, W32, true},
		{OpNorI64, "nor.i64", CatNor, W64, true},
	}
	for _, b := range binArith {
		reg(b.op, b.name, OpInfo{Category: b.cat, Width: b.w, NOut: 1, NIn: 2, Commutative: b.comm})
	}

	reg(OpNotI32, "not.i32", OpInfo{Category: CatNot, Width: W32, NOut: 1, NIn: 1})
	reg(OpNotI64, "not.i64", OpInfo{Category: CatNot, Width: W64, NOut: 1, NIn: 1})
	reg(OpNegI32, "neg.i32", OpInfo{Category: CatNeg, Width: W32, NOut: 1, NIn: 1})
	reg(OpNegI64, "neg.i64", OpInfo{Category: CatNeg, Width: W64, NOut: 1, NIn: 1})

	shifts := []struct {
		op   Opcode
		name string
		cat  Category
		w    Width
	}{
		{OpShlI32, "shl.i32", CatShl, W32}, {OpShlI64, "shl.i64", CatShl, W64},
		{OpShrI32, "shr.i32", CatShr, W32}, {OpShrI64, "shr.i64", CatShr, W64},
		{OpSarI32, "sar.i32", CatSar, W32}, {OpSarI64, "sar.i64", CatSar, W64},
		{OpRotlI32, "rotl.i32", CatRotl, W32}, {OpRotlI64, "rotl.i64", CatRotl, W64},
		{OpRotrI32, "rotr.i32", CatRotr, W32}, {OpRotrI64, "rotr.i64", CatRotr, W64},
	}
	for _, s := range shifts {
		reg(s.op, s.name, OpInfo{Category: s.cat, Width: s.w, NOut: 1, NIn: 2})
	}

	exts := []struct {
		op   Opcode
		name string
		cat  Category
		w    Width
	}{
		{OpExt8sI32, "ext8s.i32", CatExt8s, W32}, {OpExt8sI64, "ext8s.i64", CatExt8s, W64},
		{OpExt16sI32, "ext16s.i32", CatExt16s, W32}, {OpExt16sI64, "ext16s.i64", CatExt16s, W64},
		{OpExt32sI64, "ext32s.i64", CatExt32s, W64},
		{OpExt8uI32, "ext8u.i32", CatExt8u, W32}, {OpExt8uI64, "ext8u.i64", CatExt8u, W64},
		{OpExt16uI32, "ext16u.i32", CatExt16u, W32}, {OpExt16uI64, "ext16u.i64", CatExt16u, W64},
		{OpExt32uI64, "ext32u.i64", CatExt32u, W64},
	}
	for _, e := range exts {
		reg(e.op, e.name, OpInfo{Category: e.cat, Width: e.w, NOut: 1, NIn: 1})
	}

	reg(OpDepositI32, "deposit.i32", OpInfo{Category: CatDeposit, Width: W32, NOut: 1, NIn: 2, NConst: 2})
	reg(OpDepositI64, "deposit.i64", OpInfo{Category: CatDeposit, Width: W64, NOut: 1, NIn: 2, NConst: 2})

	reg(OpSetCondI32, "setcond.i32", OpInfo{Category: CatSetCond, Width: W32, NOut: 1, NIn: 2, NConst: 1})
	reg(OpSetCondI64, "setcond.i64", OpInfo{Category: CatSetCond, Width: W64, NOut: 1, NIn: 2, NConst: 1})
	reg(OpBrCondI32, "brcond.i32", OpInfo{Category: CatBrCond, Width: W32, NIn: 2, NConst: 2, IsBasicBlockEnd: false})
	reg(OpBrCondI64, "brcond.i64", OpInfo{Category: CatBrCond, Width: W64, NIn: 2, NConst: 2})
	reg(OpMovCondI32, "movcond.i32", OpInfo{Category: CatMovCond, Width: W32, NOut: 1, NIn: 4, NConst: 1})
	reg(OpMovCondI64, "movcond.i64", OpInfo{Category: CatMovCond, Width: W64, NOut: 1, NIn: 4, NConst: 1})

	reg(OpBr, "br", OpInfo{Category: CatBr, NConst: 1, IsBasicBlockEnd: true})
	reg(OpCall, "call", OpInfo{Category: CatCall, IsCall: true, IsBasicBlockEnd: false})

	reg(OpAdd2I32, "add2.i32", OpInfo{Category: CatAdd2, Width: W32, NOut: 2, NIn: 4})
	reg(OpSub2I32, "sub2.i32", OpInfo{Category: CatSub2, Width: W32, NOut: 2, NIn: 4})
	reg(OpMulU2I32, "mulu2.i32", OpInfo{Category: CatMulU2, Width: W32, NOut: 2, NIn: 2})
	reg(OpBrCond2I32, "brcond2.i32", OpInfo{Category: CatBrCond2, Width: W32, NIn: 4, NConst: 2})
	reg(OpSetCond2I32, "setcond2.i32", OpInfo{Category: CatSetCond2, Width: W32, NOut: 1, NIn: 4, NConst: 1})

	// OpLabel marks a basic-block join point: the target a branch lands on.
	// It carries no operands and exists purely so the driver's linear scan
	// has a concrete position at which to reset the temp table — a label
	// reached by fall-through is just as much a join point as one reached
	// by a taken branch, per §3 invariant 5.
	reg(OpLabel, "label", OpInfo{Category: CatLabel, IsBasicBlockEnd: true})
}

// isCommutativeCategory reports whether cat is one of the families Phase 2
// (§4.E) canonicalizes a constant operand to the right-hand slot for.
func isCommutativeCategory(cat Category) bool {
	switch cat {
	case CatAdd, CatMul, CatAnd, CatOr, CatXor, CatEqv, CatNand, CatNor:
		return true
	default:
		return false
	}
}
