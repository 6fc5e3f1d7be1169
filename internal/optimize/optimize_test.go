package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secrecc/internal/checker"
	"secrecc/internal/codegen"
	"secrecc/internal/errors"
	"secrecc/internal/instantiate"
	"secrecc/internal/ir"
	"secrecc/internal/optimize"
	"secrecc/internal/parser"
	"secrecc/internal/types"
)

func generate(t *testing.T, src string) *ir.Program {
	t.Helper()
	ctx := types.NewContext()
	log := errors.NewCompileLog("")
	w := instantiate.New(ctx)
	c := checker.New(ctx, log, w)
	w.Attach(c)

	m, err := parser.ParseString("test.sc", src)
	require.NoError(t, err)

	status := c.CheckModule(m)
	if s := w.Drain(); s > status {
		status = s
	}
	require.False(t, log.HasErrors(), "unexpected errors: %v", log.Messages())
	require.Equal(t, checker.OK, status)

	return codegen.Generate(m, w.Generated(), ctx, c.RootScope())
}

func allInstructions(p *ir.Procedure) []*ir.Instruction {
	var out []*ir.Instruction
	for _, b := range p.Blocks {
		out = append(out, b.Instructions...)
	}
	return out
}

func opSequence(instrs []*ir.Instruction) []ir.Opcode {
	out := make([]ir.Opcode, len(instrs))
	for i, in := range instrs {
		out[i] = in.Op
	}
	return out
}

func TestDeadVariableEliminationDropsUnusedComputation(t *testing.T) {
	prog := generate(t, `module m {
		void main() {
			int dead = 1 + 2;
			int x = 3;
		}
	}`)
	proc := prog.FindByName("main")
	require.NotNil(t, proc)

	pass := &optimize.DeadVariableEliminationPass{}
	changed := pass.Apply(prog)
	assert.True(t, changed)

	ops := opSequence(allInstructions(proc))
	assert.NotContains(t, ops, ir.OpAdd, "the dead addition should be removed")
}

func TestConstantFoldingPassFoldsArithmetic(t *testing.T) {
	prog := generate(t, `module m {
		int main() {
			int x = 1 + 2;
			return x;
		}
	}`)
	proc := prog.FindByName("main")
	require.NotNil(t, proc)

	pass := &optimize.ConstantFoldingPass{}
	pass.Apply(prog)

	for _, instr := range allInstructions(proc) {
		assert.NotEqual(t, ir.OpAdd, instr.Op, "the constant addition should fold away")
	}
}

func TestRemoveUnreachableBlocksPassKeepsEveryLiveBlock(t *testing.T) {
	prog := generate(t, `module m {
		int main() {
			if (true) {
				return 1;
			} else {
				return 0;
			}
		}
	}`)
	proc := prog.FindByName("main")
	require.NotNil(t, proc)
	before := 0
	for _, b := range proc.Blocks {
		if b.Reachable {
			before++
		}
	}

	pass := &optimize.RemoveUnreachableBlocksPass{}
	pass.Apply(prog)

	// Codegen's jump past the else arm, emitted after the then arm's
	// RETURN, sits in a block no edge reaches; the pass drops it (and what
	// only it leads to) and keeps every block LinkProgram marked reachable.
	assert.Equal(t, before, len(proc.Blocks))
	for _, b := range proc.Blocks {
		assert.True(t, b.Reachable)
	}
}

func TestPipelineRunsPassesToFixedPoint(t *testing.T) {
	prog := generate(t, `module m {
		void main() {
			int a = 1 + 2;
			int b = a;
		}
	}`)

	pipeline := optimize.NewPipeline()
	pipeline.Run(prog)

	proc := prog.FindByName("main")
	require.NotNil(t, proc)
	assert.Equal(t, []ir.Opcode{ir.OpReturn}, opSequence(allInstructions(proc)), "every instruction but the closing RETURN is dead once folded and copy-eliminated")
}

func TestPipelineIsIdempotentOnASecondRun(t *testing.T) {
	prog := generate(t, `module m {
		int add(int x, int y) {
			int z = x + y;
			return z;
		}
		int main() {
			return add(1, 2);
		}
	}`)

	pipeline := optimize.NewPipeline()
	pipeline.Run(prog)
	proc := prog.FindByName("add")
	require.NotNil(t, proc, "add still has a caller in main, so it must survive RemoveEmptyProceduresPass")
	first := opSequence(allInstructions(proc))

	changed := pipeline.Run(prog)
	assert.False(t, changed, "a second run over an already-fixed-point program should do nothing")
	assert.Equal(t, first, opSequence(allInstructions(proc)))
}

func TestRemoveEmptyProceduresPassDropsAnUncalledProcedure(t *testing.T) {
	prog := generate(t, `module m {
		int unused(int x) {
			return x;
		}
		void main() {
			int x = 1;
		}
	}`)
	require.NotNil(t, prog.FindByName("unused"))

	pass := &optimize.RemoveEmptyProceduresPass{}
	changed := pass.Apply(prog)
	assert.True(t, changed)
	assert.Nil(t, prog.FindByName("unused"), "nothing calls unused, so it should be dropped")
	assert.NotNil(t, prog.FindByName("main"), "main is reached through prog.Init's own call edge")
}
