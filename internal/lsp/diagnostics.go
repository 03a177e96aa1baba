package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"tcgopt/internal/asm"
	"tcgopt/internal/errors"
)

// toProtocolDiagnostic converts any error asm.OptimizeSource can return
// into an LSP diagnostic, going through asm.Diagnostic for the
// position/code classification shared with the CLI's error report.
func toProtocolDiagnostic(err error) protocol.Diagnostic {
	d := asm.Diagnostic(err)

	endChar := uint32(d.Position.Column - 1 + d.Length)
	if d.Length == 0 {
		endChar = uint32(d.Position.Column + 3)
	}

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{
				Line:      uint32(d.Position.Line - 1),
				Character: uint32(d.Position.Column - 1),
			},
			End: protocol.Position{
				Line:      uint32(d.Position.Line - 1),
				Character: endChar,
			},
		},
		Severity: ptrSeverity(severityFor(d.Level)),
		Source:   ptrString("tcgopt"),
		Message:  messageWithCode(d.Code, d.Message),
	}
}

func severityFor(level errors.Level) protocol.DiagnosticSeverity {
	switch level {
	case errors.Warning:
		return protocol.DiagnosticSeverityWarning
	case errors.Note:
		return protocol.DiagnosticSeverityInformation
	case errors.Help:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}

func messageWithCode(code, message string) string {
	if code == "" {
		return message
	}
	return "[" + code + "] " + message
}
