package ir

// TempState is the per-temp tag from §3: UNDEF, CONST(v), or COPY. For a
// COPY temp, Prev/Next form a circular doubly-linked ring over TempIDs —
// see component C (ring.go) for traversal and canonical-member selection.
type TempState struct {
	Tag  TempTag
	Val  uint64 // meaningful when Tag == TagConst
	Prev TempID // meaningful when Tag == TagCopy
	Next TempID // meaningful when Tag == TagCopy
}

// TempTag is the sum-type discriminant for TempState (design note §9).
type TempTag uint8

const (
	TagUndef TempTag = iota
	TagConst
	TagCopy
)

// Table is the temp state table (component B): one TempState per temp in
// the enclosing Context, allocated fresh at pass entry and discarded at
// pass exit. No state survives across invocations.
type Table struct {
	ctx   *Context
	temps []TempState
}

// NewTable allocates a zero-initialized (all UNDEF) state table sized for
// ctx.NTemps.
func NewTable(ctx *Context) *Table {
	return &Table{ctx: ctx, temps: make([]TempState, ctx.NTemps)}
}

// ResetAll restores every temp to UNDEF. Invoked between basic blocks and
// whenever a TCG_OPF_BB_END opcode is processed (invariant 5).
func (t *Table) ResetAll() {
	for i := range t.temps {
		t.temps[i] = TempState{}
	}
}

// ResetGlobals restores every global temp to UNDEF, used by Phase 5 when a
// call opcode lacks both NoReadGlobals and NoWriteGlobals.
func (t *Table) ResetGlobals() {
	for i := 0; i < t.ctx.NGlobals; i++ {
		t.Reset(TempID(i))
	}
}

// State returns the current tag+payload of temp id.
func (t *Table) State(id TempID) TempState {
	return t.temps[id]
}

// IsConst reports whether id currently holds a known constant.
func (t *Table) IsConst(id TempID) bool {
	return t.temps[id].Tag == TagConst
}

// ConstVal returns the constant value of id; callers must check IsConst
// first.
func (t *Table) ConstVal(id TempID) uint64 {
	return t.temps[id].Val
}

// IsCopy reports whether id is currently a member of a ring (size >= 2;
// see Reset's singleton-collapse rule — a lone temp is never left tagged
// COPY).
func (t *Table) IsCopy(id TempID) bool {
	return t.temps[id].Tag == TagCopy
}

// Reset detaches id from any ring it belongs to, restoring ring-mate links,
// then sets its tag to UNDEF. Detaching a size-2 ring leaves the surviving
// mate as a self-loop, which is then itself collapsed to UNDEF — a
// singleton class is not a class (invariant 4's corollary).
func (t *Table) Reset(id TempID) {
	s := &t.temps[id]
	if s.Tag != TagCopy {
		*s = TempState{}
		return
	}

	prev, next := s.Prev, s.Next
	*s = TempState{}

	if prev == id {
		// id was already a self-loop; nothing else to fix up.
		return
	}

	t.temps[prev].Next = next
	t.temps[next].Prev = prev

	if prev == next {
		// Detaching from a size-2 ring leaves a size-1 "ring" at prev,
		// which is not a real class: collapse it to UNDEF too.
		t.temps[prev] = TempState{}
	}
}

// SetConst resets id, then marks it CONST(v).
func (t *Table) SetConst(id TempID, v uint64) {
	t.Reset(id)
	t.temps[id] = TempState{Tag: TagConst, Val: v}
}

// JoinCopy resets dst, then splices dst into src's ring (creating a
// size-1-turned-size-2 ring if src was not already one). The join is
// skipped — dst is reset to UNDEF and nothing further recorded — when src
// and dst have different declared widths, per §4.B: "the move is still
// emitted, but no copy relation is recorded."
func (t *Table) JoinCopy(dst, src TempID) {
	t.Reset(dst)

	if t.ctx.Width(dst) != t.ctx.Width(src) {
		return
	}

	if t.temps[src].Tag != TagCopy {
		t.temps[src] = TempState{Tag: TagCopy, Prev: src, Next: src}
	}

	srcState := &t.temps[src]
	after := srcState.Next

	t.temps[dst] = TempState{Tag: TagCopy, Prev: src, Next: after}
	srcState.Next = dst
	t.temps[after].Prev = dst
}

// AreCopies reports whether a and b are known to hold the same value: they
// are the same temp, or both COPY and members of the same ring.
func (t *Table) AreCopies(a, b TempID) bool {
	if a == b {
		return true
	}
	if t.temps[a].Tag != TagCopy || t.temps[b].Tag != TagCopy {
		return false
	}
	cur := a
	for {
		cur = t.temps[cur].Next
		if cur == b {
			return true
		}
		if cur == a {
			return false
		}
	}
}

// CheckRingSymmetry verifies invariant 3 (next(prev(t))==t,
// prev(next(t))==t) for every COPY temp. It is a debug-build consistency
// check, not part of the steady-state rewrite path; a violation is a fatal
// internal-invariant failure per §7.
func (t *Table) CheckRingSymmetry() error {
	for id := range t.temps {
		s := t.temps[id]
		if s.Tag != TagCopy {
			continue
		}
		if t.temps[s.Next].Prev != TempID(id) || t.temps[s.Prev].Next != TempID(id) {
			return &FatalError{OpIndex: -1, Reason: "ring symmetry violated"}
		}
	}
	return nil
}
