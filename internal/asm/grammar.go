package asm

import "github.com/alecthomas/participle/v2/lexer"

// Program is the root of a parsed .tcg listing: an ordered sequence of
// label definitions and instructions. This is deliberately a thin AST —
// builder.go does all the semantic work of resolving labels and temp
// classes/widths into an ir.Context plus an ir.Op stream.
type Program struct {
	Pos   lexer.Position
	Lines []*Line `@@*`
}

type Line struct {
	Pos   lexer.Position
	Label *LabelDef    `(   @@`
	Inst  *Instruction `  | @@ )`
}

type LabelDef struct {
	Pos  lexer.Position
	Name string `"label" @Ident ":"`
}

type Instruction struct {
	Pos      lexer.Position
	Mnemonic string      `@Mnemonic | @( "nop" | "br" | "call" )`
	Header   *CallHeader `@@?`
	Operands []*Operand  `[ @@ { "," @@ } ]`
}

// CallHeader is call's explicit (n_out, n_in) split, written as a
// parenthesized pair right after the mnemonic: `call(2, 3) t1, t2, f, a, b,
// c`. No other opcode uses it — call is the one family whose arity isn't
// fixed by its mnemonic alone (§4.A).
type CallHeader struct {
	Pos  lexer.Position
	NOut string `"(" @Int ","`
	NIn  string `@Int ")"`
}

// Operand is a tagged union over every operand shape the .tcg grammar
// accepts. Exactly one field is non-empty after a successful parse.
type Operand struct {
	Pos    lexer.Position
	Temp   string `  @Temp`
	Global string `| @Global`
	Local  string `| @Local`
	Hex    string `| @Hex`
	Int    string `| @Int`
	Ident  string `| @Ident`
}
