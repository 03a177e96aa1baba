package asm

import (
	"fmt"
	"strings"

	"tcgopt/internal/ir"
)

// Print renders an operation stream back into .tcg text, the inverse of
// Build (modulo temp/label naming, which is not required to round-trip
// byte-for-byte — only semantically). Used by cmd/tcgopt to show the
// before/after listing.
func Print(ctx *ir.Context, opcodes []ir.Opcode, args []uint64) (string, error) {
	ops, err := ir.DecodeOps(opcodes, args)
	if err != nil {
		return "", err
	}

	targets := collectBranchTargets(ops)

	var b strings.Builder
	for i, op := range ops {
		if op.Code == ir.OpLabel {
			fmt.Fprintf(&b, "label L%d:\n", i)
			continue
		}
		if targets[i] {
			fmt.Fprintf(&b, "label L%d:\n", i)
		}
		if op.Code == ir.OpNop {
			b.WriteString("nop\n")
			continue
		}
		writeInstruction(&b, ctx, op)
	}
	return b.String(), nil
}

func collectBranchTargets(ops []ir.Op) map[int]bool {
	targets := map[int]bool{}
	for _, op := range ops {
		info := ir.Info(op.Code)
		switch info.Category {
		case ir.CatBr:
			targets[int(op.Const[0])] = true
		case ir.CatBrCond, ir.CatBrCond2:
			targets[int(op.Const[1])] = true
		}
	}
	return targets
}

func writeInstruction(b *strings.Builder, ctx *ir.Context, op ir.Op) {
	info := ir.Info(op.Code)

	if op.Code == ir.OpCall {
		fmt.Fprintf(b, "call(%d, %d)", len(op.Out), len(op.In))
		operands := make([]string, 0, len(op.Out)+len(op.In))
		for _, t := range op.Out {
			operands = append(operands, tempName(ctx, t))
		}
		for _, t := range op.In {
			operands = append(operands, tempName(ctx, t))
		}
		writeOperandTail(b, operands)
		return
	}

	if op.Code == ir.OpBr {
		fmt.Fprintf(b, "br L%d\n", op.Const[0])
		return
	}

	b.WriteString(op.Code.String())

	var operands []string
	for _, t := range op.Out {
		operands = append(operands, tempName(ctx, t))
	}
	for _, t := range op.In {
		operands = append(operands, tempName(ctx, t))
	}

	isBrCond := info.Category == ir.CatBrCond || info.Category == ir.CatBrCond2
	isCondFamily := info.Category == ir.CatSetCond || info.Category == ir.CatBrCond ||
		info.Category == ir.CatMovCond || info.Category == ir.CatBrCond2 || info.Category == ir.CatSetCond2
	for i, c := range op.Const {
		switch {
		case isCondFamily && i == 0:
			operands = append(operands, ir.Cond(c).String())
		case isBrCond && i == 1:
			operands = append(operands, fmt.Sprintf("L%d", c))
		default:
			operands = append(operands, fmt.Sprintf("%d", c))
		}
	}

	writeOperandTail(b, operands)
}

func writeOperandTail(b *strings.Builder, operands []string) {
	if len(operands) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(operands, ", "))
	}
	b.WriteString("\n")
}

func tempName(ctx *ir.Context, t ir.TempID) string {
	switch {
	case ctx.IsGlobal(t):
		return fmt.Sprintf("g%d", t)
	case ctx.IsLocal(t):
		return fmt.Sprintf("l%d", t)
	default:
		return fmt.Sprintf("t%d", t)
	}
}
