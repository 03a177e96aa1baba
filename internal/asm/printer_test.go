package asm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcgopt/internal/asm"
)

func TestPrintRendersMnemonicsAndOperands(t *testing.T) {
	unit := build(t, `
movi.i32 t1, 5
add.i32 t2, t1, t1
`)
	text, err := asm.Print(unit.Ctx, unit.Opcodes, unit.Args)
	require.NoError(t, err)

	assert.Contains(t, text, "movi.i32")
	assert.Contains(t, text, "add.i32")
	assert.Contains(t, text, "5")
}

func TestPrintInsertsLabelBeforeBranchTarget(t *testing.T) {
	unit := build(t, `
movi.i32 t1, 1
brcond.i32 t1, t1, eq, target
label target:
nop
`)
	text, err := asm.Print(unit.Ctx, unit.Opcodes, unit.Args)
	require.NoError(t, err)
	assert.Contains(t, text, "label L2:")
	assert.Contains(t, text, "brcond.i32")
}

func TestOptimizeSourceRoundTrip(t *testing.T) {
	source := `
movi.i32 t1, 5
movi.i32 t2, 7
add.i32 t3, t1, t2
`
	result, err := asm.OptimizeSource("chain.tcg", source)
	require.NoError(t, err)

	assert.True(t, strings.Contains(result.After, "12"))
	assert.NotContains(t, result.After, "add.i32")
}

func TestOptimizeSourcePropagatesBuildErrors(t *testing.T) {
	_, err := asm.OptimizeSource("bad.tcg", "br missing")
	require.Error(t, err)

	d := asm.Diagnostic(err)
	assert.NotEmpty(t, d.Message)
}
