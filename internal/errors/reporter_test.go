package errors_test

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"

	"tcgopt/internal/errors"
)

func TestFormatIncludesCodeAndMessage(t *testing.T) {
	reporter := errors.NewReporter("demo.tcg", "movi.i32 t1, 5\nadd.i32 t2, t1, !!!\n")
	out := reporter.Format(errors.Diagnostic{
		Level:    errors.Error,
		Code:     errors.ErrorLexUnrecognized,
		Message:  "unrecognized token",
		Position: lexer.Position{Line: 2, Column: 17},
		Length:   3,
	})

	assert.Contains(t, out, errors.ErrorLexUnrecognized)
	assert.Contains(t, out, "unrecognized token")
	assert.Contains(t, out, "demo.tcg:2:17")
	assert.Contains(t, out, "add.i32 t2, t1, !!!")
}

func TestFormatOmitsCodeBracketWhenEmpty(t *testing.T) {
	reporter := errors.NewReporter("demo.tcg", "nop\n")
	out := reporter.Format(errors.Diagnostic{
		Level:    errors.Warning,
		Message:  "unreachable instruction",
		Position: lexer.Position{Line: 1, Column: 1},
		Length:   1,
	})

	assert.NotContains(t, out, "[]")
	assert.Contains(t, out, "unreachable instruction")
}

func TestFormatAppendsNotesAndHelp(t *testing.T) {
	reporter := errors.NewReporter("demo.tcg", "br missing\n")
	out := reporter.Format(errors.Diagnostic{
		Level:    errors.Error,
		Code:     errors.ErrorUndefinedLabel,
		Message:  "label \"missing\" is never defined",
		Position: lexer.Position{Line: 1, Column: 4},
		Length:   7,
		Notes:    []string{"labels must be defined somewhere in the same file"},
		HelpText: "add a \"label missing:\" line",
	})

	assert.Contains(t, out, "note:")
	assert.Contains(t, out, "help:")
	assert.Contains(t, out, "add a \"label missing:\" line")
}

func TestDescribeCoversEveryDeclaredCode(t *testing.T) {
	codes := []string{
		errors.ErrorLexUnrecognized,
		errors.ErrorParseUnexpected,
		errors.ErrorParseEOF,
		errors.ErrorUndefinedLabel,
		errors.ErrorDuplicateLabel,
		errors.ErrorWidthConflict,
		errors.ErrorArityMismatch,
		errors.ErrorOperandKind,
		errors.ErrorUnknownMnemonic,
		errors.ErrorOpcodeRange,
		errors.ErrorTruncatedStream,
		errors.ErrorMissingReservedSlot,
		errors.ErrorUnrecognizedWidth,
	}
	for _, code := range codes {
		assert.NotEqual(t, "no description available", errors.Describe(code), code)
	}
	assert.Equal(t, "no description available", errors.Describe("E9999"))
}
