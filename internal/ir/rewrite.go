package ir

// rewrite.go holds Phase 3 (identity simplification), Phase 4 (folding and
// propagation), and Phase 5 (invalidation) of the driver in optimize.go.

// phase3Identities applies the §4.E Phase 3 table. Rules are tried in the
// order the spec lists them; the first match rewrites op in place (into a
// mov, a movi, or a bare NOP) and no further Phase 3 rule is tried. A
// rewrite into mov/movi falls through to Phase 4's handling of that
// category on the same op.
func (o *Optimizer) phase3Identities(op *Op, info OpInfo) {
	switch info.Category {
	case CatShl, CatShr, CatSar, CatRotl, CatRotr:
		if o.table.IsConst(op.In[0]) && o.table.ConstVal(op.In[0])&info.Width.mask() == 0 {
			o.rewriteToMoviZero(op, info.Width)
			return
		}
		if o.table.IsConst(op.In[1]) && o.table.ConstVal(op.In[1])&info.Width.mask() == 0 {
			o.rewriteToMovOrNop(op, op.In[0])
			return
		}
	case CatAdd, CatSub, CatOr, CatXor:
		if o.table.IsConst(op.In[1]) && o.table.ConstVal(op.In[1])&info.Width.mask() == 0 {
			o.rewriteToMovOrNop(op, op.In[0])
			return
		}
	}

	switch info.Category {
	case CatAnd, CatMul:
		if o.table.IsConst(op.In[1]) && o.table.ConstVal(op.In[1])&info.Width.mask() == 0 {
			o.rewriteToMoviZero(op, info.Width)
			return
		}
	}

	switch info.Category {
	case CatOr, CatAnd:
		if o.table.AreCopies(op.In[0], op.In[1]) {
			o.rewriteToMovOrNop(op, op.In[0])
			return
		}
	case CatSub, CatXor:
		if o.table.AreCopies(op.In[0], op.In[1]) {
			o.rewriteToMoviZero(op, info.Width)
			return
		}
	}
}

func (o *Optimizer) rewriteToMoviZero(op *Op, w Width) {
	op.Code = moviOpcode(w)
	op.In = nil
	op.Const = []uint64{0}
}

// rewriteToMovOrNop rewrites op into `mov dst, src`, or elides it to a bare
// NOP when dst and src are already the same value (invariant: a surviving
// mov always changes which ring its destination belongs to).
func (o *Optimizer) rewriteToMovOrNop(op *Op, src TempID) {
	if len(op.Out) > 0 && o.table.AreCopies(op.Out[0], src) {
		becomeNop(op)
		return
	}
	w := o.ctx.Width(op.Out[0])
	op.Code = movOpcode(w)
	op.In = []TempID{src}
	op.Const = nil
}

func becomeNop(op *Op) {
	op.Code = OpNop
	op.Out = nil
	op.In = nil
	op.Const = nil
}

func moviOpcode(w Width) Opcode {
	if w == W64 {
		return OpMoviI64
	}
	return OpMoviI32
}

func movOpcode(w Width) Opcode {
	if w == W64 {
		return OpMovI64
	}
	return OpMovI32
}

func setCondOpcode(w Width) Opcode {
	if w == W64 {
		return OpSetCondI64
	}
	return OpSetCondI32
}

func brCondOpcode(w Width) Opcode {
	if w == W64 {
		return OpBrCondI64
	}
	return OpBrCondI32
}

// phase4FoldAndPropagate implements §4.E Phase 4: it folds fully-constant
// operations to movi, records the mov/movi propagation facts into the
// Table, and handles the wide (add2/sub2/mulu2/brcond2/setcond2) families,
// which may need to reach into the following slot.
func (o *Optimizer) phase4FoldAndPropagate(ops []Op, i int, info OpInfo) error {
	op := &ops[i]

	switch info.Category {
	case CatMov:
		r, a := op.Out[0], op.In[0]
		if o.table.AreCopies(r, a) {
			becomeNop(op)
			return nil
		}
		if o.table.IsConst(a) {
			v := o.table.ConstVal(a)
			op.Code = moviOpcode(info.Width)
			op.In = nil
			op.Const = []uint64{v}
			o.table.SetConst(r, v)
			return nil
		}
		o.table.JoinCopy(r, a)
		return nil

	case CatMovI:
		o.table.SetConst(op.Out[0], op.Const[0])
		return nil

	case CatNot, CatNeg, CatExt8s, CatExt16s, CatExt32s, CatExt8u, CatExt16u, CatExt32u:
		a := op.In[0]
		if o.table.IsConst(a) {
			v, ok := foldUnary(info.Category, info.Width, o.table.ConstVal(a))
			if !ok {
				return &FatalError{OpIndex: i, Op: op.Code, Reason: "no fold-table entry for unary category"}
			}
			o.rewriteToFoldedMovi(op, info.Width, v)
		}
		return nil

	case CatAdd, CatSub, CatMul, CatAnd, CatOr, CatXor, CatAndc, CatOrc, CatEqv, CatNand, CatNor,
		CatShl, CatShr, CatSar, CatRotl, CatRotr:
		a, b := op.In[0], op.In[1]
		if o.table.IsConst(a) && o.table.IsConst(b) {
			v, ok := foldBinary(info.Category, info.Width, o.table.ConstVal(a), o.table.ConstVal(b))
			if !ok {
				return &FatalError{OpIndex: i, Op: op.Code, Reason: "no fold-table entry for binary category"}
			}
			o.rewriteToFoldedMovi(op, info.Width, v)
		}
		return nil

	case CatDeposit:
		base, value := op.In[0], op.In[1]
		if o.table.IsConst(base) && o.table.IsConst(value) {
			pos, length := uint(op.Const[0]), uint(op.Const[1])
			v := foldDeposit(info.Width, o.table.ConstVal(base), o.table.ConstVal(value), pos, length)
			o.rewriteToFoldedMovi(op, info.Width, v)
		}
		return nil

	case CatSetCond:
		cond := Cond(op.Const[0])
		if v, ok := tryFoldCond(o.table, cond, info.Width, op.In[0], op.In[1]); ok {
			o.rewriteToFoldedMovi(op, info.Width, v)
		}
		return nil

	case CatBrCond:
		cond := Cond(op.Const[0])
		if v, ok := tryFoldCond(o.table, cond, info.Width, op.In[0], op.In[1]); ok {
			if v != 0 {
				label := op.Const[1]
				op.Code = OpBr
				op.In = nil
				op.Out = nil
				op.Const = []uint64{label}
			} else {
				becomeNop(op)
			}
		}
		return nil

	case CatMovCond:
		return o.foldMovCond(op, info.Width)

	case CatAdd2, CatSub2:
		return o.foldWide2(ops, i, info)

	case CatMulU2:
		return o.foldMulU2(ops, i, info)

	case CatBrCond2:
		return o.foldBrCond2(op)

	case CatSetCond2:
		return o.foldSetCond2(op)
	}

	return nil
}

// rewriteToFoldedMovi collapses op to `movi out[0], v`, truncating any
// extra output slots (add2/sub2/mulu2 declare two) down to the one this
// rewrite actually produces.
func (o *Optimizer) rewriteToFoldedMovi(op *Op, w Width, v uint64) {
	r := op.Out[0]
	op.Code = moviOpcode(w)
	op.Out = []TempID{r}
	op.In = nil
	op.Const = []uint64{v}
	o.table.SetConst(r, v)
}

// tryFoldCond implements the comparison short-circuits of §4.D: operands
// known equal (by copy relation) fold without inspecting values; an
// unsigned comparison against a constant-zero right-hand side folds
// regardless of the left operand's value; otherwise both operands must be
// constant.
func tryFoldCond(t *Table, c Cond, w Width, a, b TempID) (uint64, bool) {
	if t.AreCopies(a, b) {
		switch c {
		case CondEQ, CondGE, CondLE, CondGEU, CondLEU:
			return 1, true
		default:
			return 0, true
		}
	}
	if t.IsConst(b) && t.ConstVal(b)&w.mask() == 0 {
		switch c {
		case CondLTU:
			return 0, true
		case CondGEU:
			return 1, true
		}
	}
	if t.IsConst(a) && t.IsConst(b) {
		return boolToWord(evalCond(c, w, t.ConstVal(a), t.ConstVal(b))), true
	}
	return 0, false
}

// foldMovCond resolves the condition when possible and reduces movcond to
// a plain value propagation: mov, movi, or NOP, whichever the selected arm
// implies.
func (o *Optimizer) foldMovCond(op *Op, w Width) error {
	cond := Cond(op.Const[0])
	a, b, vt, vf := op.In[0], op.In[1], op.In[2], op.In[3]

	v, ok := tryFoldCond(o.table, cond, w, a, b)
	if !ok {
		return nil
	}

	chosen := vf
	if v != 0 {
		chosen = vt
	}
	r := op.Out[0]
	if o.table.IsConst(chosen) {
		o.rewriteToFoldedMovi(op, w, o.table.ConstVal(chosen))
		return nil
	}
	if o.table.AreCopies(r, chosen) {
		becomeNop(op)
		return nil
	}
	op.Code = movOpcode(w)
	op.In = []TempID{chosen}
	op.Const = nil
	o.table.JoinCopy(r, chosen)
	return nil
}

func compose64(lo, hi uint64) uint64 {
	return (lo & 0xFFFFFFFF) | ((hi & 0xFFFFFFFF) << 32)
}

func split64(v uint64) (lo, hi uint64) {
	return v & 0xFFFFFFFF, (v >> 32) & 0xFFFFFFFF
}

// foldWide2 handles add2_i32/sub2_i32: when all four operand halves are
// constant, it composes both 64-bit operands, computes the 64-bit result,
// and splits it back into two movi_i32 operations occupying this slot and
// the next. Per the design note on the add2/sub2/mulu2 family (§9 open
// question), this assumes the front end always reserves the following
// slot as a NOP for exactly this purpose; a violation is a fatal error
// rather than a silent overwrite of a live operation.
func (o *Optimizer) foldWide2(ops []Op, i int, info OpInfo) error {
	op := &ops[i]
	al, ah, bl, bh := op.In[0], op.In[1], op.In[2], op.In[3]
	if !(o.table.IsConst(al) && o.table.IsConst(ah) && o.table.IsConst(bl) && o.table.IsConst(bh)) {
		return nil
	}
	if i+1 >= len(ops) || ops[i+1].Code != OpNop {
		return &FatalError{OpIndex: i, Op: op.Code, Reason: "wide result fold requires a reserved NOP slot"}
	}

	a := compose64(o.table.ConstVal(al), o.table.ConstVal(ah))
	b := compose64(o.table.ConstVal(bl), o.table.ConstVal(bh))
	var result uint64
	if info.Category == CatAdd2 {
		result = a + b
	} else {
		result = a - b
	}
	lo, hi := split64(result)

	outHi := op.Out[1]
	o.rewriteToFoldedMovi(op, W32, lo)

	next := &ops[i+1]
	next.Code = OpMoviI32
	next.Out = []TempID{outHi}
	next.In = nil
	next.Const = []uint64{hi}
	o.table.SetConst(outHi, hi)
	return nil
}

// foldMulU2 handles mulu2_i32: a 32x32->64 unsigned multiply producing a
// two-word result, under the same adjacent-NOP-slot convention as
// foldWide2.
func (o *Optimizer) foldMulU2(ops []Op, i int, info OpInfo) error {
	op := &ops[i]
	a, b := op.In[0], op.In[1]
	if !(o.table.IsConst(a) && o.table.IsConst(b)) {
		return nil
	}
	if i+1 >= len(ops) || ops[i+1].Code != OpNop {
		return &FatalError{OpIndex: i, Op: op.Code, Reason: "wide result fold requires a reserved NOP slot"}
	}

	product := (o.table.ConstVal(a) & 0xFFFFFFFF) * (o.table.ConstVal(b) & 0xFFFFFFFF)
	lo, hi := split64(product)

	outHi := op.Out[1]
	o.rewriteToFoldedMovi(op, W32, lo)

	next := &ops[i+1]
	next.Code = OpMoviI32
	next.Out = []TempID{outHi}
	next.In = nil
	next.Const = []uint64{hi}
	o.table.SetConst(outHi, hi)
	return nil
}

// foldBrCond2 folds a double-word conditional branch, or collapses it to a
// single-word brcond against the high halves when the right-hand operand
// is constant zero and the predicate only examines sign/magnitude via the
// high word (LT/GE).
func (o *Optimizer) foldBrCond2(op *Op) error {
	al, ah, bl, bh := op.In[0], op.In[1], op.In[2], op.In[3]
	cond := Cond(op.Const[0])
	label := op.Const[1]

	if o.table.IsConst(al) && o.table.IsConst(ah) && o.table.IsConst(bl) && o.table.IsConst(bh) {
		a := compose64(o.table.ConstVal(al), o.table.ConstVal(ah))
		b := compose64(o.table.ConstVal(bl), o.table.ConstVal(bh))
		if evalCond(cond, W64, a, b) {
			op.Code = OpBr
			op.In = nil
			op.Out = nil
			op.Const = []uint64{label}
		} else {
			becomeNop(op)
		}
		return nil
	}

	if o.table.IsConst(bl) && o.table.ConstVal(bl) == 0 && o.table.IsConst(bh) && o.table.ConstVal(bh) == 0 {
		switch cond {
		case CondLTU:
			becomeNop(op)
			return nil
		case CondGEU:
			op.Code = OpBr
			op.In = nil
			op.Out = nil
			op.Const = []uint64{label}
			return nil
		case CondLT, CondGE:
			op.Code = brCondOpcode(W32)
			op.In = []TempID{ah, bh}
			op.Const = []uint64{uint64(cond), label}
		}
	}
	return nil
}

// foldSetCond2 mirrors foldBrCond2 for setcond2_i32, folding to a movi 0/1
// or collapsing to a single-word setcond against the high halves.
func (o *Optimizer) foldSetCond2(op *Op) error {
	al, ah, bl, bh := op.In[0], op.In[1], op.In[2], op.In[3]
	cond := Cond(op.Const[0])

	if o.table.IsConst(al) && o.table.IsConst(ah) && o.table.IsConst(bl) && o.table.IsConst(bh) {
		a := compose64(o.table.ConstVal(al), o.table.ConstVal(ah))
		b := compose64(o.table.ConstVal(bl), o.table.ConstVal(bh))
		o.rewriteToFoldedMovi(op, W32, boolToWord(evalCond(cond, W64, a, b)))
		return nil
	}

	if o.table.IsConst(bl) && o.table.ConstVal(bl) == 0 && o.table.IsConst(bh) && o.table.ConstVal(bh) == 0 {
		switch cond {
		case CondLTU:
			o.rewriteToFoldedMovi(op, W32, 0)
			return nil
		case CondGEU:
			o.rewriteToFoldedMovi(op, W32, 1)
			return nil
		case CondLT, CondGE:
			op.Code = setCondOpcode(W32)
			op.In = []TempID{ah, bh}
			op.Const = []uint64{uint64(cond)}
		}
	}
	return nil
}

// phase5Invalidate implements §4.E Phase 5. It is only responsible for
// invalidation that Phase 4 did not already perform as part of recording a
// fold or a propagation fact: a surviving operation's declared outputs are
// now unknown and must be reset, a call without both NoReadGlobals and
// NoWriteGlobals forces every global back to UNDEF, and any
// IsBasicBlockEnd opcode — including a brcond folded into an unconditional
// br — clears the whole table.
func (o *Optimizer) phase5Invalidate(ops []Op, i int) {
	op := &ops[i]
	if op.Code == OpNop {
		return
	}
	info := Catalog[op.Code]

	if !resetsOutputsElsewhere(info.Category) {
		for _, out := range op.Out {
			o.table.Reset(out)
		}
	}

	if info.IsCall && !(info.NoReadGlobals && info.NoWriteGlobals) {
		o.table.ResetGlobals()
	}

	if info.IsBasicBlockEnd {
		o.table.ResetAll()
	}
}

// resetsOutputsElsewhere reports whether Phase 4 already recorded a
// set_const/join_copy fact for this category's output(s) itself (mov,
// movi — including anything Phase 4 rewrote into one of those) so Phase 5
// must not blindly Reset them back to UNDEF.
func resetsOutputsElsewhere(cat Category) bool {
	switch cat {
	case CatMov, CatMovI:
		return true
	default:
		return false
	}
}
