// Package ir implements the single-pass, per-basic-block peephole optimizer
// that sits between a dynamic binary translator's front end and its
// register allocator: constant propagation, copy propagation, constant
// folding, and local algebraic simplification over a flat three-address
// operation stream.
package ir

import "fmt"

// TempID is an arena index into the enclosing translation context's temp
// table. Ring links (Prev/Next) are TempIDs into the same slab, never
// pointers — see SPEC_FULL.md §3 for why the pointer-cyclic source
// structure was dropped in this port.
type TempID int

// TempClass classifies a temp the way the enclosing context does; the
// optimizer never mutates this classification.
type TempClass uint8

const (
	ClassOrdinary TempClass = iota
	ClassLocal
	ClassGlobal
)

// Width is the bit width an opcode's arithmetic is interpreted at.
type Width uint8

const (
	W32 Width = 32
	W64 Width = 64
)

func (w Width) mask() uint64 {
	if w == W32 {
		return 0xFFFFFFFF
	}
	return 0xFFFFFFFFFFFFFFFF
}

func (w Width) bits() uint {
	if w == W32 {
		return 32
	}
	return 64
}

// TempDesc is the caller-supplied, read-only description of one temp:
// its class and its declared width. The context provides n_temps of these.
type TempDesc struct {
	Class TempClass
	Width Width
}

// Context describes the enclosing translation unit: how many temps exist,
// how many of them are global (the first G indices), and each temp's
// class/width. The optimizer borrows this for the duration of one pass and
// never mutates it.
type Context struct {
	NTemps   int
	NGlobals int
	Temps    []TempDesc
}

// IsGlobal reports whether t is one of the first NGlobals temps.
func (c *Context) IsGlobal(t TempID) bool {
	return int(t) < c.NGlobals
}

// IsLocal reports whether t is classified as a local (survives across
// basic blocks within the translation unit, but is not global).
func (c *Context) IsLocal(t TempID) bool {
	return c.Temps[t].Class == ClassLocal
}

// Width returns the declared width of temp t.
func (c *Context) Width(t TempID) Width {
	return c.Temps[t].Width
}

// Cond is a comparison predicate used by setcond/brcond/movcond.
type Cond uint8

const (
	CondEQ Cond = iota
	CondNE
	CondLT
	CondGE
	CondLE
	CondGT
	CondLTU
	CondGEU
	CondLEU
	CondGTU
)

// SwapCond returns the predicate that holds when the two compared operands
// are exchanged: LT<->GT, LE<->GE, LTU<->GTU, LEU<->GEU; EQ/NE are
// invariant under operand swap.
func SwapCond(c Cond) Cond {
	switch c {
	case CondLT:
		return CondGT
	case CondGT:
		return CondLT
	case CondLE:
		return CondGE
	case CondGE:
		return CondLE
	case CondLTU:
		return CondGTU
	case CondGTU:
		return CondLTU
	case CondLEU:
		return CondGEU
	case CondGEU:
		return CondLEU
	default:
		return c
	}
}

// InvertCond returns the logical negation of c.
func InvertCond(c Cond) Cond {
	switch c {
	case CondEQ:
		return CondNE
	case CondNE:
		return CondEQ
	case CondLT:
		return CondGE
	case CondGE:
		return CondLT
	case CondLE:
		return CondGT
	case CondGT:
		return CondLE
	case CondLTU:
		return CondGEU
	case CondGEU:
		return CondLTU
	case CondLEU:
		return CondGTU
	case CondGTU:
		return CondLEU
	default:
		return c
	}
}

func (c Cond) String() string {
	switch c {
	case CondEQ:
		return "eq"
	case CondNE:
		return "ne"
	case CondLT:
		return "lt"
	case CondGE:
		return "ge"
	case CondLE:
		return "le"
	case CondGT:
		return "gt"
	case CondLTU:
		return "ltu"
	case CondGEU:
		return "geu"
	case CondLEU:
		return "leu"
	case CondGTU:
		return "gtu"
	default:
		return fmt.Sprintf("cond(%d)", uint8(c))
	}
}

// ParseCond resolves a condition mnemonic used by the .tcg listing format
// and the fold/rewrite tables.
func ParseCond(s string) (Cond, bool) {
	switch s {
	case "eq":
		return CondEQ, true
	case "ne":
		return CondNE, true
	case "lt":
		return CondLT, true
	case "ge":
		return CondGE, true
	case "le":
		return CondLE, true
	case "gt":
		return CondGT, true
	case "ltu":
		return CondLTU, true
	case "geu":
		return CondGEU, true
	case "leu":
		return CondLEU, true
	case "gtu":
		return CondGTU, true
	default:
		return 0, false
	}
}

// FatalError reports one of the narrow set of fatal conditions from §7:
// an opcode whose declared width is neither 32 nor 64 where a width is
// required, a foldable opcode with no fold-table entry, a ring invariant
// violation caught by a consistency check, or a malformed stream (an
// opcode outside the catalog, a truncated operand list, or a wide fold
// whose following slot is not a reserved NOP). It identifies the
// offending operation index so the caller can halt translation with a
// useful diagnostic.
type FatalError struct {
	OpIndex int
	Op      Opcode
	Reason  string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("tcgopt: fatal at op #%d (%s): %s", e.OpIndex, e.Op, e.Reason)
}
