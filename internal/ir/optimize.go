package ir

// optimize.go is the rewriting driver, component E: the single linear scan
// over the operation stream that applies canonicalization, simplification,
// folding, propagation, and emission, per §4.E.

// Optimizer owns one pass invocation's Table and Context. It is allocated
// fresh (or Reset and reused) per translation unit — see §5: no state
// survives across invocations.
type Optimizer struct {
	ctx   *Context
	table *Table
}

// NewOptimizer allocates an Optimizer with a freshly zeroed Table.
func NewOptimizer(ctx *Context) *Optimizer {
	return &Optimizer{ctx: ctx, table: NewTable(ctx)}
}

// Reset restores the Optimizer's Table to all-UNDEF so it can be reused for
// another translation unit without reallocating the slab.
func (o *Optimizer) Reset() {
	o.table.ResetAll()
}

// OpcodeTable is the exported handle to the opcode metadata §6 describes as
// a parameter of the pass entry point. In this implementation the opcode
// set is fixed at init time (opcode.go's Catalog), so OpcodeTable carries no
// state of its own — it exists so Optimize's signature matches the
// documented external interface rather than reaching for a package-level
// global implicitly.
type OpcodeTable struct{}

// DefaultOpcodeTable returns the metadata table for the opcode set this
// package implements.
func DefaultOpcodeTable() *OpcodeTable { return &OpcodeTable{} }

// Info returns the metadata for op.
func (t *OpcodeTable) Info(op Opcode) OpInfo { return Catalog[op] }

// Optimize is the external entry point described in §6: it decodes the
// flat (opcodes[], args[]) wire format, runs the pass, rewrites opcodes in
// place (eliminated operations become OpNop), and packs the surviving
// arguments into out. It returns the number of uint64s written, i.e. a
// cursor one past the last written output argument.
func Optimize(ctx *Context, meta *OpcodeTable, opcodes []Opcode, args []uint64, out []uint64) (int, error) {
	if meta == nil {
		meta = DefaultOpcodeTable()
	}

	ops, err := decodeStream(opcodes, args)
	if err != nil {
		return 0, err
	}

	o := NewOptimizer(ctx)
	if err := o.Run(ops); err != nil {
		return 0, err
	}

	return encodeStream(ops, opcodes, out), nil
}

// Run processes ops in place, exactly once, left to right. It never
// reorders operations and never deletes an operation that may have
// side effects on architectural state (call, BB_END opcodes) — those are
// only ever turned into a structurally equivalent rewrite (e.g. a folded
// brcond into an unconditional br) or left untouched.
func (o *Optimizer) Run(ops []Op) error {
	for i := range ops {
		if err := o.step(ops, i); err != nil {
			return err
		}
	}
	return nil
}

func (o *Optimizer) step(ops []Op, i int) error {
	op := &ops[i]
	if op.Code == OpNop {
		return nil
	}
	if op.Code == OpLabel {
		// A label is a basic-block join point whether it's reached by
		// fall-through or by a taken branch; no fact proved before it can
		// be relied on afterward (§3 invariant 5).
		o.table.ResetAll()
		return nil
	}

	info := Catalog[op.Code]
	if !info.IsCall && requiresWidth(info.Category) && !HasWidth(op.Code) {
		return &FatalError{OpIndex: i, Op: op.Code, Reason: "opcode width is neither 32 nor 64"}
	}

	o.phase1Substitute(op)
	o.phase2Canonicalize(op, info)
	o.phase3Identities(op, info)

	// Phase 3 may have rewritten op into a mov/movi; re-read info so Phase
	// 4 dispatches on the rewrite's category, not the original opcode's.
	info = Catalog[op.Code]

	if err := o.phase4FoldAndPropagate(ops, i, info); err != nil {
		return err
	}

	o.phase5Invalidate(ops, i)
	return nil
}

func requiresWidth(cat Category) bool {
	switch cat {
	case CatNop, CatBr, CatCall, CatLabel:
		return false
	default:
		return true
	}
}

// phase1Substitute replaces every input argument currently in COPY state
// with its canonical representative (§4.C). Output argument positions are
// never touched here.
func (o *Optimizer) phase1Substitute(op *Op) {
	for i, t := range op.In {
		op.In[i] = Representative(o.ctx, o.table, t)
	}
}

// phase2Canonicalize applies the commutativity/predicate canonicalization
// rules of §4.E Phase 2.
func (o *Optimizer) phase2Canonicalize(op *Op, info OpInfo) {
	switch {
	case isCommutativeCategory(info.Category), info.Category == CatMulU2:
		o.canonicalizeCommutative(op)
	case info.Category == CatSetCond, info.Category == CatBrCond:
		o.canonicalizeCondOperands(op, 0)
	}

	switch info.Category {
	case CatMovCond:
		o.canonicalizeMovCond(op)
	case CatAdd2:
		o.canonicalizeCommutativePair(op)
	case CatBrCond2:
		o.canonicalizeCondPair(op, 0)
	case CatSetCond2:
		o.canonicalizeCondPair(op, 0)
	}
}

func (o *Optimizer) canonicalizeCommutative(op *Op) {
	a, b := op.In[0], op.In[1]
	leftConst, rightConst := o.table.IsConst(a), o.table.IsConst(b)

	switch {
	case leftConst && !rightConst:
		op.In[0], op.In[1] = b, a
	case !leftConst && !rightConst:
		if len(op.Out) > 0 && op.Out[0] == op.In[1] && op.Out[0] != op.In[0] {
			op.In[0], op.In[1] = op.In[1], op.In[0]
		}
	}
}

// canonicalizeCondOperands moves a constant left-hand comparison operand
// to the right-hand slot, flipping the predicate via SwapCond. condIdx is
// the index of the Cond value inside op.Const.
func (o *Optimizer) canonicalizeCondOperands(op *Op, condIdx int) {
	a, b := op.In[0], op.In[1]
	if o.table.IsConst(a) && !o.table.IsConst(b) {
		op.In[0], op.In[1] = b, a
		op.Const[condIdx] = uint64(SwapCond(Cond(op.Const[condIdx])))
	}
}

// canonicalizeMovCond applies the Phase 2 comparison-operand rule plus the
// movcond-specific false-arm-aliases-destination rule.
func (o *Optimizer) canonicalizeMovCond(op *Op) {
	o.canonicalizeCondOperands(op, 0)

	if len(op.Out) == 0 {
		return
	}
	dst := op.Out[0]
	vt, vf := op.In[2], op.In[3]
	if dst == vt && dst != vf {
		op.In[2], op.In[3] = vf, vt
		op.Const[0] = uint64(InvertCond(Cond(op.Const[0])))
	}
}

func (o *Optimizer) isConstPair(lo, hi TempID) bool {
	return o.table.IsConst(lo) && o.table.IsConst(hi)
}

func (o *Optimizer) canonicalizeCommutativePair(op *Op) {
	al, ah, bl, bh := op.In[0], op.In[1], op.In[2], op.In[3]
	leftConst, rightConst := o.isConstPair(al, ah), o.isConstPair(bl, bh)
	if leftConst && !rightConst {
		op.In[0], op.In[1], op.In[2], op.In[3] = bl, bh, al, ah
	}
}

func (o *Optimizer) canonicalizeCondPair(op *Op, condIdx int) {
	al, ah, bl, bh := op.In[0], op.In[1], op.In[2], op.In[3]
	leftConst, rightConst := o.isConstPair(al, ah), o.isConstPair(bl, bh)
	if leftConst && !rightConst {
		op.In[0], op.In[1], op.In[2], op.In[3] = bl, bh, al, ah
		op.Const[condIdx] = uint64(SwapCond(Cond(op.Const[condIdx])))
	}
}
