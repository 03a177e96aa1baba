package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tcgopt/internal/asm"
	"tcgopt/internal/errors"
)

func TestToProtocolDiagnosticConvertsPositionToZeroBased(t *testing.T) {
	err := &asm.BuildError{Line: 3, Message: `undefined label "missing"`}

	out := toProtocolDiagnostic(err)

	assert.Equal(t, uint32(2), out.Range.Start.Line)
	assert.Equal(t, uint32(0), out.Range.Start.Character)
	assert.Equal(t, uint32(1), out.Range.End.Character)
	assert.Equal(t, "tcgopt", *out.Source)
	assert.Contains(t, out.Message, errors.ErrorUndefinedLabel)
}

func TestMessageWithCodeOmitsBracketsWhenCodeEmpty(t *testing.T) {
	assert.Equal(t, "plain message", messageWithCode("", "plain message"))
	assert.Equal(t, "[E0100] boom", messageWithCode("E0100", "boom"))
}

func TestSeverityForMapsEveryLevel(t *testing.T) {
	assert.NotEqual(t, severityFor(errors.Warning), severityFor(errors.Error))
	assert.NotEqual(t, severityFor(errors.Note), severityFor(errors.Help))
	assert.Equal(t, severityFor(errors.Error), severityFor(errors.Level("")))
}
