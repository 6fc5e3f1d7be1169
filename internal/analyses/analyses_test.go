package analyses_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secrecc/internal/analyses"
	"secrecc/internal/checker"
	"secrecc/internal/codegen"
	"secrecc/internal/dataflow"
	"secrecc/internal/errors"
	"secrecc/internal/instantiate"
	"secrecc/internal/ir"
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

func TestLiveVariablesMarksReturnedValueLiveThroughoutItsProcedure(t *testing.T) {
	prog := generate(t, `module m {
		int add(int a, int b) {
			int c = a + b;
			return c;
		}
	}`)
	proc := prog.FindByName("add")
	require.NotNil(t, proc)

	lv := analyses.NewLiveVariables()
	dataflow.RunBackward(lv, prog)

	require.NotEmpty(t, proc.Blocks)
	entry := lv.LiveOnEntry(proc.Entry)
	hasParam := false
	for sym := range entry {
		if sym.SymbolName() == "a" || sym.SymbolName() == "b" {
			hasParam = true
		}
	}
	assert.True(t, hasParam, "a and b must be live on entry since they're used by the addition")
}

func TestLiveVariablesHasNothingLiveAfterAProcedureWithNoUses(t *testing.T) {
	prog := generate(t, `module m {
		void main() {
			int dead = 1;
		}
	}`)
	proc := prog.FindByName("main")
	require.NotNil(t, proc)

	lv := analyses.NewLiveVariables()
	dataflow.RunBackward(lv, prog)

	for _, b := range proc.Blocks {
		if !b.Reachable {
			continue
		}
		assert.Empty(t, lv.LiveOnExit(b), "dead's value is never used, so nothing should be live past its block")
	}
}

func TestCopyPropagationTracksACopyAcrossASingleStraightLineBlock(t *testing.T) {
	prog := generate(t, `module m {
		int main() {
			int a = 1;
			int b = a;
			return b;
		}
	}`)
	proc := prog.FindByName("main")
	require.NotNil(t, proc)

	cp := analyses.NewCopyPropagation()
	dataflow.RunForward(cp, prog)

	require.NotEmpty(t, proc.Blocks)
	lastBlock := proc.Blocks[len(proc.Blocks)-1]
	copies := cp.CopiesInto(lastBlock)
	assert.NotNil(t, copies)
}

func TestReachableUsesFindsTheUseFollowingADefinition(t *testing.T) {
	prog := generate(t, `module m {
		int main() {
			int a = 1;
			int b = a + 2;
			return b;
		}
	}`)
	proc := prog.FindByName("main")
	require.NotNil(t, proc)

	ru := analyses.NewReachableUses()
	dataflow.RunBackward(ru, prog)

	var defA *ir.Instruction
	for _, b := range proc.Blocks {
		for _, instr := range b.Instructions {
			for _, d := range instr.Def() {
				if d.SymbolName() == "a" {
					defA = instr
				}
			}
		}
	}
	require.NotNil(t, defA, "expected to find a's defining instruction")

	onExit := ru.ReachableOnExit(proc.Entry)
	assert.NotNil(t, onExit)
}

func TestConstantFoldingResolvesChainedAssignment(t *testing.T) {
	prog := generate(t, `module m {
		int main() {
			int a = 5;
			int b = a;
			return b;
		}
	}`)
	require.NotNil(t, prog.FindByName("main"))

	cf := analyses.NewConstantFolding()
	dataflow.RunForward(cf, prog)

	proc := prog.FindByName("main")
	found := false
	for _, b := range proc.Blocks {
		vals := cf.ValuesInto(b).Clone()
		for _, instr := range b.Instructions {
			analyses.Transfer(instr, vals)
			for _, d := range instr.Def() {
				if d.SymbolName() == "b" {
					if v, ok := vals[d]; ok && v.IsConst() {
						assert.Equal(t, int64(5), v.Const)
						found = true
					}
				}
			}
		}
	}
	assert.True(t, found, "b should be proven constant-5 once a's value propagates through the copy")
}
