package asm

import (
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"
)

var tcgParser = buildParser()

func buildParser() *participle.Parser[Program] {
	p, err := participle.Build[Program](
		participle.Lexer(TcgLexer),
		participle.Elide("Whitespace", "Newline", "Comment"),
		participle.UseLookahead(2),
	)
	if err != nil {
		panic(fmt.Errorf("asm: failed to build .tcg parser: %w", err))
	}
	return p
}

// ParseFile reads and parses a .tcg listing from disk.
func ParseFile(path string) (*Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("asm: failed to read %s: %w", path, err)
	}
	return ParseSource(path, string(source))
}

// ParseSource parses a .tcg listing already in memory. sourceName is used
// only for error reporting.
func ParseSource(sourceName, source string) (*Program, error) {
	prog, err := tcgParser.ParseString(sourceName, source)
	if err != nil {
		return nil, toParseError(sourceName, source, err)
	}
	return prog, nil
}
