package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcgopt/internal/asm"
	"tcgopt/internal/ir"
)

// runFixture assembles a .tcg literal, runs the optimizer over it, and
// returns the decoded before/after operation streams. Reproducing each
// spec.md §8 scenario as a literal fixture (rather than constructing
// ir.Op values by hand) exercises internal/asm's builder as a side effect.
func runFixture(t *testing.T, source string) (before, after []ir.Op) {
	t.Helper()

	prog, err := asm.ParseSource("fixture.tcg", source)
	require.NoError(t, err)

	unit, err := asm.Build(prog)
	require.NoError(t, err)

	before, err = ir.DecodeOps(unit.Opcodes, unit.Args)
	require.NoError(t, err)

	opcodes := make([]ir.Opcode, len(unit.Opcodes))
	copy(opcodes, unit.Opcodes)
	out := make([]uint64, len(unit.Args))

	n, err := ir.Optimize(unit.Ctx, nil, opcodes, unit.Args, out)
	require.NoError(t, err)

	after, err = ir.DecodeOps(opcodes, out[:n])
	require.NoError(t, err)
	return before, after
}

// scenario 1: constant propagation then folding collapses a chain of
// movi/movi/add into three movi.
func TestOptimizeConstantFoldChain(t *testing.T) {
	source := `
movi.i32 t1, 5
movi.i32 t2, 7
add.i32 t3, t1, t2
`
	_, after := runFixture(t, source)
	require.Len(t, after, 3)

	assert.Equal(t, ir.OpMoviI32, after[0].Code)
	assert.Equal(t, uint64(5), after[0].Const[0])

	assert.Equal(t, ir.OpMoviI32, after[1].Code)
	assert.Equal(t, uint64(7), after[1].Const[0])

	assert.Equal(t, ir.OpMoviI32, after[2].Code)
	assert.Equal(t, uint64(12), after[2].Const[0])
}

// scenario 2: copy propagation hoists every use toward the global
// representative, and xor of two known-equal values folds to zero.
func TestOptimizeCopyPropagationHoistsToGlobal(t *testing.T) {
	source := `
mov.i32 t1, g0
mov.i32 t2, t1
xor.i32 t3, t2, g0
`
	_, after := runFixture(t, source)
	require.Len(t, after, 3)

	assert.Equal(t, ir.OpMovI32, after[0].Code)
	assert.Equal(t, []ir.TempID{0}, after[0].In) // g0

	assert.Equal(t, ir.OpMovI32, after[1].Code)
	assert.Equal(t, []ir.TempID{0}, after[1].In) // rewritten from t1 to g0

	assert.Equal(t, ir.OpMoviI32, after[2].Code)
	assert.Equal(t, uint64(0), after[2].Const[0])
}

// scenario 3: add-by-zero is an identity, not a fold; it becomes a mov.
func TestOptimizeAddByZeroBecomesMov(t *testing.T) {
	source := `
movi.i32 t1, 0
add.i32 t2, t0, t1
`
	_, after := runFixture(t, source)
	require.Len(t, after, 2)

	assert.Equal(t, ir.OpMoviI32, after[0].Code)
	assert.Equal(t, ir.OpMovI32, after[1].Code)
	assert.Equal(t, []ir.TempID{2}, after[1].In) // t0, the pre-existing left operand
}

// scenario 4: a brcond whose operands are known equal folds to an
// unconditional branch.
func TestOptimizeBrCondSelfCompareFoldsToBr(t *testing.T) {
	source := `
movi.i32 t1, 10
brcond.i32 t1, t1, eq, end
label end:
nop
`
	_, after := runFixture(t, source)
	require.Len(t, after, 4)

	assert.Equal(t, ir.OpMoviI32, after[0].Code)
	assert.Equal(t, ir.OpBr, after[1].Code)
	assert.Equal(t, uint64(2), after[1].Const[0]) // targets the label's own slot at index 2
	assert.Equal(t, ir.OpLabel, after[2].Code)
	assert.Equal(t, ir.OpNop, after[3].Code)
}

// scenario 5: a shift whose amount is constant but non-zero is not an
// identity rule match; it still folds once both operands are constant.
func TestOptimizeShiftByConstantFolds(t *testing.T) {
	source := `
movi.i32 t1, 3
shl.i32 t2, t1, t1
`
	_, after := runFixture(t, source)
	require.Len(t, after, 2)

	assert.Equal(t, ir.OpMoviI32, after[1].Code)
	assert.Equal(t, uint64(24), after[1].Const[0])
}

// scenario 6: a double-word compare against a constant-zero RHS, under a
// sign-sensitive predicate, collapses to a single-word high-half compare.
func TestOptimizeBrCond2CollapsesToHighHalf(t *testing.T) {
	source := `
movi.i32 t3, 0
movi.i32 t4, 0
brcond2.i32 t1, t2, t3, t4, lt, end
label end:
nop
`
	_, after := runFixture(t, source)
	require.Len(t, after, 5)

	assert.Equal(t, ir.OpMoviI32, after[0].Code)
	assert.Equal(t, ir.OpMoviI32, after[1].Code)

	assert.Equal(t, ir.OpBrCondI32, after[2].Code)
	assert.Equal(t, []ir.TempID{3, 1}, after[2].In) // ah (t2), bh (t4)
	assert.Equal(t, uint64(ir.CondLT), after[2].Const[0])
	assert.Equal(t, uint64(3), after[2].Const[1]) // label's own slot at index 3
	assert.Equal(t, ir.OpLabel, after[3].Code)
	assert.Equal(t, ir.OpNop, after[4].Code)
}

// a label reached by fall-through is just as much a basic-block join point
// as one reached by a taken branch: no fact proved on one incoming edge may
// survive into the block the label opens. Without a table reset at the
// label itself, t1's value on the fall-through edge (9) would be confused
// with its value on the branch-taken edge (5), and the add below would
// fold against whichever one the linear scan happened to see last.
func TestOptimizeLabelResetsFactsAcrossJoinPoint(t *testing.T) {
	source := `
movi.i32 t1, 5
brcond.i32 g0, g1, ne, join
movi.i32 t1, 9
label join:
add.i32 t2, t1, t1
`
	_, after := runFixture(t, source)
	require.Len(t, after, 5)

	assert.Equal(t, ir.OpBrCondI32, after[1].Code) // not constant-foldable; g0/g1 are globals
	assert.Equal(t, ir.OpLabel, after[3].Code)

	assert.Equal(t, ir.OpAddI32, after[4].Code) // must not fold: t1 is UNDEF at the join
}
