package ir

import (
	"fmt"
	"strings"
)

// Print renders a procedure's blocks and instructions in a readable
// three-address form, used by the CLI driver to print every procedure
// after compiling and by tests that want a structural fingerprint of the
// lowered code.
func Print(p *Procedure) string {
	var b strings.Builder
	fmt.Fprintf(&b, "proc %s:\n", p.Name)
	for _, blk := range p.Blocks {
		reach := ""
		if !blk.Reachable && blk != p.Entry {
			reach = " (unreachable)"
		}
		fmt.Fprintf(&b, "  block %d%s:\n", blk.Index, reach)
		for _, instr := range blk.Instructions {
			fmt.Fprintf(&b, "    %s\n", printInstruction(instr))
		}
		for _, e := range blk.Succs {
			fmt.Fprintf(&b, "    -> %s block %d\n", e.Kind, e.To.Index)
		}
	}
	return b.String()
}

func printInstruction(i *Instruction) string {
	var parts []string
	for _, d := range i.Dests {
		parts = append(parts, d.SymbolName())
	}
	dest := strings.Join(parts, ", ")
	var args []string
	for _, a := range i.Args {
		args = append(args, a.SymbolName())
	}
	line := i.Op.String()
	if dest != "" {
		line = fmt.Sprintf("%s = %s", dest, line)
	}
	if len(args) > 0 {
		line = fmt.Sprintf("%s %s", line, strings.Join(args, ", "))
	}
	if i.Shape != nil {
		line = fmt.Sprintf("%s [shape %s]", line, i.Shape.SymbolName())
	}
	if i.Message != "" {
		line = fmt.Sprintf("%s %q", line, i.Message)
	}
	return line
}
