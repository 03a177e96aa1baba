package asm

import "tcgopt/internal/ir"

// Result bundles a source listing's before/after .tcg text plus the
// underlying assembled context, for tools that want more than just the
// printed diff (the LSP server, mainly).
type Result struct {
	Assembled *Assembled
	Before    string
	After     string
}

// OptimizeSource parses, assembles, and runs the peephole pass over a .tcg
// listing, returning both the original and optimized textual forms.
func OptimizeSource(sourceName, source string) (*Result, error) {
	prog, err := ParseSource(sourceName, source)
	if err != nil {
		return nil, err
	}

	asmUnit, err := Build(prog)
	if err != nil {
		return nil, err
	}

	before, err := Print(asmUnit.Ctx, asmUnit.Opcodes, asmUnit.Args)
	if err != nil {
		return nil, err
	}

	opcodes := make([]ir.Opcode, len(asmUnit.Opcodes))
	copy(opcodes, asmUnit.Opcodes)
	out := make([]uint64, len(asmUnit.Args))

	n, err := ir.Optimize(asmUnit.Ctx, nil, opcodes, asmUnit.Args, out)
	if err != nil {
		return nil, err
	}

	after, err := Print(asmUnit.Ctx, opcodes, out[:n])
	if err != nil {
		return nil, err
	}

	return &Result{Assembled: asmUnit, Before: before, After: after}, nil
}
