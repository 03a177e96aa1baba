package asm

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"tcgopt/internal/errors"
	"tcgopt/internal/ir"
)

// Diagnostic converts any error this package or ir.Optimize can return into
// a reportable errors.Diagnostic. Unrecognized error types fall back to a
// bare message at line 1, so callers never need a type switch of their own.
func Diagnostic(err error) errors.Diagnostic {
	switch e := err.(type) {
	case *ScanError:
		return errors.Diagnostic{
			Level:    errors.Error,
			Code:     errors.ErrorLexUnrecognized,
			Message:  e.Message,
			Position: e.Pos,
			Length:   1,
		}
	case *ParseError:
		return errors.Diagnostic{
			Level:    errors.Error,
			Code:     errors.ErrorParseUnexpected,
			Message:  e.Message,
			Position: e.Pos,
			Length:   1,
		}
	case *BuildError:
		return errors.Diagnostic{
			Level:    errors.Error,
			Code:     buildErrorCode(e.Message),
			Message:  e.Message,
			Position: lexer.Position{Line: e.Line, Column: 1},
			Length:   1,
		}
	case *ir.FatalError:
		code := errors.ErrorOpcodeRange
		switch {
		case strings.Contains(e.Reason, "truncated"):
			code = errors.ErrorTruncatedStream
		case strings.Contains(e.Reason, "reserved NOP slot"):
			code = errors.ErrorMissingReservedSlot
		case strings.Contains(e.Reason, "neither 32 nor 64"):
			code = errors.ErrorUnrecognizedWidth
		}
		return errors.Diagnostic{
			Level:    errors.Error,
			Code:     code,
			Message:  e.Error(),
			Position: lexer.Position{Line: e.OpIndex + 1, Column: 1},
			Length:   1,
		}
	default:
		return errors.Diagnostic{
			Level:    errors.Error,
			Message:  err.Error(),
			Position: lexer.Position{Line: 1, Column: 1},
			Length:   1,
		}
	}
}

// buildErrorCode picks the sharpest code a BuildError's message implies.
// BuildError carries a free-form message rather than its own code field
// (it's raised from a dozen call sites for a dozen distinct reasons), so
// this is a best-effort classification rather than an exhaustive switch.
func buildErrorCode(msg string) string {
	switch {
	case strings.Contains(msg, "undefined label"):
		return errors.ErrorUndefinedLabel
	case strings.Contains(msg, "duplicate label"):
		return errors.ErrorDuplicateLabel
	case strings.Contains(msg, "conflicting widths"):
		return errors.ErrorWidthConflict
	case strings.Contains(msg, "expects") && strings.Contains(msg, "operands"):
		return errors.ErrorArityMismatch
	case strings.Contains(msg, "unknown mnemonic"):
		return errors.ErrorUnknownMnemonic
	default:
		return errors.ErrorOperandKind
	}
}
