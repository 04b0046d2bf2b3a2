package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the lowered program
func Disassemble(prog *Program, name string) string {
	var sb strings.Builder

	entries := make(map[int]FunctionInfo, len(prog.Functions))
	for _, fn := range prog.Functions {
		entries[fn.Entry] = fn
	}

	sb.WriteString(fmt.Sprintf("== %s (locals %d, temps %d) ==\n", name, prog.Locals, prog.Temps))
	for offset := range prog.Code {
		if fn, ok := entries[offset]; ok {
			sb.WriteString(fmt.Sprintf("== function %s (arity %d, locals %d) ==\n", fn.Name, fn.Arity, fn.Locals))
		}
		disassembleInstruction(&sb, prog, offset)
	}

	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, prog *Program, offset int) {
	sb.WriteString(fmt.Sprintf("%04d ", offset))

	// Print line number
	line := prog.Lines.Lookup(offset)
	if offset > 0 && line == prog.Lines.Lookup(offset-1) {
		sb.WriteString("   | ")
	} else {
		sb.WriteString(fmt.Sprintf("%4d ", line))
	}

	in := prog.Code[offset]
	switch in.Op {
	case OpEval:
		sb.WriteString(fmt.Sprintf("%-12s %s\n", in.Op, in.Term))
	case OpJump:
		sb.WriteString(fmt.Sprintf("%-12s -> %04d\n", in.Op, in.Target))
	case OpJumpUnless:
		sb.WriteString(fmt.Sprintf("%-12s %s -> %04d\n", in.Op, in.Term, in.Target))
	case OpReturn:
		if in.Term == nil {
			sb.WriteString(fmt.Sprintf("%s\n", in.Op))
		} else {
			sb.WriteString(fmt.Sprintf("%-12s %s\n", in.Op, in.Term))
		}
	case OpIter:
		sb.WriteString(fmt.Sprintf("%-12s %s <- %s\n", in.Op, in.Dest, in.Term))
	case OpNext:
		sb.WriteString(fmt.Sprintf("%-12s %s <- %s or -> %04d\n", in.Op, in.Dest, in.Term, in.Target))
	default:
		sb.WriteString(fmt.Sprintf("%s\n", in.Op))
	}
}
