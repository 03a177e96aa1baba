package asm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcgopt/internal/asm"
	"tcgopt/internal/ir"
)

func build(t *testing.T, source string) *asm.Assembled {
	t.Helper()
	prog, err := asm.ParseSource("t.tcg", source)
	require.NoError(t, err)
	unit, err := asm.Build(prog)
	require.NoError(t, err)
	return unit
}

func TestBuildAssignsGlobalsBeforeOrdinaryTemps(t *testing.T) {
	unit := build(t, `
mov.i32 t1, g0
mov.i32 t2, l0
`)
	require.Equal(t, 4, unit.Ctx.NTemps)
	require.Equal(t, 1, unit.Ctx.NGlobals)

	ops, err := ir.DecodeOps(unit.Opcodes, unit.Args)
	require.NoError(t, err)
	require.Len(t, ops, 2)

	g0 := ops[0].In[0]
	assert.True(t, unit.Ctx.IsGlobal(g0))

	l0 := ops[1].In[0]
	assert.False(t, unit.Ctx.IsGlobal(l0))
	assert.True(t, unit.Ctx.IsLocal(l0))
}

func TestBuildRejectsWidthConflict(t *testing.T) {
	prog, err := asm.ParseSource("t.tcg", `
mov.i32 t1, t0
mov.i64 t2, t0
`)
	require.NoError(t, err)

	_, err = asm.Build(prog)
	require.Error(t, err)
	var buildErr *asm.BuildError
	require.ErrorAs(t, err, &buildErr)
}

func TestBuildRejectsDuplicateLabel(t *testing.T) {
	prog, err := asm.ParseSource("t.tcg", `
label start:
nop
label start:
nop
`)
	require.NoError(t, err)

	_, err = asm.Build(prog)
	assert.Error(t, err)
}

func TestBuildRejectsUndefinedLabel(t *testing.T) {
	prog, err := asm.ParseSource("t.tcg", `br missing`)
	require.NoError(t, err)

	_, err = asm.Build(prog)
	assert.Error(t, err)
}

func TestBuildCallHeaderArity(t *testing.T) {
	unit := build(t, `call(2, 1) t1, t2, t3`)

	ops, err := ir.DecodeOps(unit.Opcodes, unit.Args)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, ir.OpCall, ops[0].Code)
	assert.Len(t, ops[0].Out, 2)
	assert.Len(t, ops[0].In, 1)
}

func TestBuildCallArityMismatchErrors(t *testing.T) {
	prog, err := asm.ParseSource("t.tcg", `call(2, 2) t1, t2, t3`)
	require.NoError(t, err)

	_, err = asm.Build(prog)
	assert.Error(t, err)
}

func TestBuildBrCondWithLabel(t *testing.T) {
	unit := build(t, `
movi.i32 t1, 1
brcond.i32 t1, t1, eq, target
label target:
nop
`)
	ops, err := ir.DecodeOps(unit.Opcodes, unit.Args)
	require.NoError(t, err)
	require.Len(t, ops, 4)

	assert.Equal(t, ir.OpBrCondI32, ops[1].Code)
	assert.Equal(t, uint64(ir.CondEQ), ops[1].Const[0])
	assert.Equal(t, uint64(2), ops[1].Const[1]) // the label's own slot

	assert.Equal(t, ir.OpLabel, ops[2].Code)
	assert.Equal(t, ir.OpNop, ops[3].Code)
}
