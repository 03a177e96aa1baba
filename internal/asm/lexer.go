package asm

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// TcgLexer tokenizes the .tcg listing format: §4.F's human-writable stand-in
// for the wire format the optimizer actually consumes.
var TcgLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `#[^\n]*`, nil},
		{"Mnemonic", `[a-z][a-z0-9]*\.(i32|i64)`, nil},
		{"Temp", `t[0-9]+`, nil},
		{"Global", `g[0-9]+`, nil},
		{"Local", `l[0-9]+`, nil},
		// Keywords get their own token kind so an operand (@Ident) never
		// swallows the "label"/"nop"/"br"/"call" that starts the next line.
		{"Keyword", `(label|nop|br|call)\b`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Hex", `0x[0-9a-fA-F]+`, nil},
		{"Int", `-?[0-9]+`, nil},
		{"Punct", `[,:()]`, nil},
		{"Newline", `[\n]+`, nil},
		{"Whitespace", `[ \t\r]+`, nil},
	},
})
