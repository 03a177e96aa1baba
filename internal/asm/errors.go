package asm

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ParseError reports a grammatical failure (the token stream doesn't match
// any production) at a specific source position.
type ParseError struct {
	Source  string
	Pos     lexer.Position
	Message string
}

func (e *ParseError) Error() string {
	return e.Source + ": " + e.Message
}

// ScanError reports a lexical failure: a byte sequence the lexer's rules
// don't recognize at all, distinct from a token the grammar didn't expect.
type ScanError struct {
	Source  string
	Pos     lexer.Position
	Message string
}

func (e *ScanError) Error() string {
	return e.Source + ": " + e.Message
}

// toParseError classifies a participle error into ParseError or ScanError
// so callers (the diagnostic reporter, the LSP server) can tell a bad
// token apart from a malformed but lexically valid program.
func toParseError(source, _ string, err error) error {
	pe, ok := err.(participle.Error)
	if !ok {
		return &ParseError{Source: source, Message: err.Error()}
	}

	if _, isLexErr := err.(*lexer.Error); isLexErr {
		return &ScanError{Source: source, Pos: pe.Position(), Message: pe.Message()}
	}

	return &ParseError{Source: source, Pos: pe.Position(), Message: pe.Message()}
}
