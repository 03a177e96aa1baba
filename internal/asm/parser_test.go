package asm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcgopt/internal/asm"
)

func TestParseSourceBasic(t *testing.T) {
	source := `
# a comment
movi.i32 t1, 5
add.i32 t2, t1, t1
label loop:
br loop
`
	prog, err := asm.ParseSource("basic.tcg", source)
	require.NoError(t, err)
	require.NotNil(t, prog)

	var instCount, labelCount int
	for _, line := range prog.Lines {
		switch {
		case line.Inst != nil:
			instCount++
		case line.Label != nil:
			labelCount++
		}
	}
	assert.Equal(t, 3, instCount)
	assert.Equal(t, 1, labelCount)
}

func TestParseSourceCallHeader(t *testing.T) {
	source := `call(1, 2) t1, t2, t3`
	prog, err := asm.ParseSource("call.tcg", source)
	require.NoError(t, err)
	require.Len(t, prog.Lines, 1)

	inst := prog.Lines[0].Inst
	require.NotNil(t, inst)
	require.NotNil(t, inst.Header)
	assert.Equal(t, "1", inst.Header.NOut)
	assert.Equal(t, "2", inst.Header.NIn)
	assert.Len(t, inst.Operands, 3)
}

func TestParseSourceRejectsGarbage(t *testing.T) {
	_, err := asm.ParseSource("bad.tcg", "add.i32 t1, t2, !!!")
	assert.Error(t, err)
}

func TestParseSourceRejectsMissingOperands(t *testing.T) {
	// add.i32 needs 3 operands; a bare mnemonic with none still parses
	// grammatically (the operand list is optional in the grammar) but
	// Build rejects it for arity.
	prog, err := asm.ParseSource("short.tcg", "add.i32")
	require.NoError(t, err)

	_, err = asm.Build(prog)
	assert.Error(t, err)
}
