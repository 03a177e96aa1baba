package ir

// Representative chooses the best substitute for a use of id, per §4.C:
//
//  1. if id itself is global, use it unchanged;
//  2. otherwise, scan the ring for any global member and return the first
//     one found;
//  3. otherwise, if id is not a local, scan the ring for any local member
//     and return the first;
//  4. otherwise, return id unchanged.
//
// Ring traversal is deterministic insertion order (walking Next from id);
// ties break on the order entries were spliced in, i.e. the first match
// encountered while walking.
func Representative(ctx *Context, t *Table, id TempID) TempID {
	if ctx.IsGlobal(id) {
		return id
	}

	if t.temps == nil || t.State(id).Tag != TagCopy {
		return id
	}

	if g, ok := firstInRing(ctx, t, id, ctx.IsGlobal); ok {
		return g
	}

	if !ctx.IsLocal(id) {
		if l, ok := firstInRing(ctx, t, id, ctx.IsLocal); ok {
			return l
		}
	}

	return id
}

// firstInRing walks the ring containing id (via Next, starting at id, in
// insertion order) looking for the first member satisfying pred.
func firstInRing(ctx *Context, t *Table, id TempID, pred func(TempID) bool) (TempID, bool) {
	cur := id
	for {
		if pred(cur) {
			return cur, true
		}
		next := t.temps[cur].Next
		if next == id {
			return 0, false
		}
		cur = next
	}
}
