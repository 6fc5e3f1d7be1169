package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secrecc/internal/ast"
	"secrecc/internal/checker"
	"secrecc/internal/codegen"
	"secrecc/internal/errors"
	"secrecc/internal/instantiate"
	"secrecc/internal/ir"
	"secrecc/internal/parser"
	"secrecc/internal/types"
)

func newPipeline(t *testing.T) (*checker.Checker, *instantiate.Worklist, *errors.CompileLog, *types.Context) {
	t.Helper()
	ctx := types.NewContext()
	log := errors.NewCompileLog("")
	w := instantiate.New(ctx)
	c := checker.New(ctx, log, w)
	w.Attach(c)
	return c, w, log, ctx
}

func parse(t *testing.T, src string) *ast.Module {
	t.Helper()
	m, err := parser.ParseString("test.sc", src)
	require.NoError(t, err)
	return m
}

// generate runs a source module through the full parse/check/instantiate
// pipeline and returns its lowered program, failing the test on any
// compile error.
func generate(t *testing.T, src string) *ir.Program {
	t.Helper()
	c, w, log, ctx := newPipeline(t)
	m := parse(t, src)

	status := c.CheckModule(m)
	status = worse(status, w.Drain())
	require.False(t, log.HasErrors(), "unexpected errors: %v", log.Messages())
	require.Equal(t, checker.OK, status)

	return codegen.Generate(m, w.Generated(), ctx, c.RootScope())
}

func worse(a, b checker.Status) checker.Status {
	if b > a {
		return b
	}
	return a
}

// allInstructions flattens a procedure's basic blocks back into its
// original emission order, for assertions that don't care about block
// boundaries.
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

func TestGenerateIncludesInitAndEveryTopLevelProcedure(t *testing.T) {
	prog := generate(t, `module m {
		void main() {
			int x = 1 + 2;
		}
	}`)

	require.NotNil(t, prog.Init)
	assert.Equal(t, "$init", prog.Init.Name)
	require.NotNil(t, prog.FindByName("main"))
}

func TestGenerateArithmeticProcedureLowersToThreeAddressCode(t *testing.T) {
	prog := generate(t, `module m {
		int add(int a, int b) {
			int c = a + b;
			return c;
		}
	}`)

	proc := prog.FindByName("add")
	require.NotNil(t, proc)
	require.NotEmpty(t, proc.Blocks)
	require.NotNil(t, proc.Entry)

	ops := opSequence(allInstructions(proc))
	assert.Contains(t, ops, ir.OpParam, "parameters a and b should each emit a PARAM")
	assert.Contains(t, ops, ir.OpAdd)
	assert.Contains(t, ops, ir.OpReturn)
}

func TestGenerateIfStatementProducesConditionalJump(t *testing.T) {
	prog := generate(t, `module m {
		int choose(bool cond) {
			if (cond) {
				return 1;
			} else {
				return 0;
			}
		}
	}`)

	proc := prog.FindByName("choose")
	require.NotNil(t, proc)
	ops := opSequence(allInstructions(proc))
	assert.Contains(t, ops, ir.OpJf, "an if/else lowers to a jump-if-false over the then branch")

	// Both branches return, so the procedure has at least two RETURN
	// instructions and (per ir.BuildProcedure's leader detection) more
	// than one basic block.
	returns := 0
	for _, op := range ops {
		if op == ir.OpReturn {
			returns++
		}
	}
	assert.GreaterOrEqual(t, returns, 2)
	assert.Greater(t, len(proc.Blocks), 1)
}

func TestGenerateWhileLoopJumpsBackToItsCondition(t *testing.T) {
	prog := generate(t, `module m {
		void count(int n) {
			int i = 0;
			while (i < n) {
				i = i + 1;
			}
		}
	}`)

	proc := prog.FindByName("count")
	require.NotNil(t, proc)
	ops := opSequence(allInstructions(proc))
	assert.Contains(t, ops, ir.OpLt)
	assert.Contains(t, ops, ir.OpJf, "loop exit is a jump-if-false on the condition")
	assert.Contains(t, ops, ir.OpJump, "the loop body falls through to a jump back to the condition")
}

func TestGenerateCallEmitsCallAndPairedRetClean(t *testing.T) {
	prog := generate(t, `module m {
		int inc(int x) {
			return x + 1;
		}
		int main() {
			int y = inc(3);
			return y;
		}
	}`)

	proc := prog.FindByName("main")
	require.NotNil(t, proc)
	instrs := allInstructions(proc)

	var callIdx = -1
	for i, in := range instrs {
		if in.Op == ir.OpCall {
			callIdx = i
			break
		}
	}
	require.GreaterOrEqual(t, callIdx, 0, "main should lower its call to inc into an OpCall")
	require.Less(t, callIdx+1, len(instrs))
	retClean := instrs[callIdx+1]
	assert.Equal(t, ir.OpRetClean, retClean.Op)
	require.NotNil(t, retClean.Label)
	assert.Same(t, instrs[callIdx], retClean.Label.Target, "RETCLEAN's label should bind back to its CALL")

	inc := prog.FindByName("inc")
	require.NotNil(t, inc)
	assert.Same(t, inc.Symbol.Entry, instrs[callIdx].Label, "the CALL's label should be the callee's entry")
}

func TestGenerateClassifiesPublicLiteralAssignedToPrivateVariable(t *testing.T) {
	prog := generate(t, `module m {
		kind additive3pp { type int32; }
		domain priv additive3pp;
		void main() {
			priv int y;
			y = 5;
		}
	}`)

	proc := prog.FindByName("main")
	require.NotNil(t, proc)
	ops := opSequence(allInstructions(proc))
	assert.Contains(t, ops, ir.OpClassify, "the checker's synthetic classify should lower to a CLASSIFY instruction")
}

func TestGenerateTemplateInstantiationIsLoweredAlongsidePlainProcedures(t *testing.T) {
	prog := generate(t, `module m {
		template<domain D, type T>
		D T identity(D T x) {
			return x;
		}
		void main() {
			int y = identity(3);
		}
	}`)

	// The instantiated clone's mangled name carries its substitution, so
	// assert by prefix rather than the template's own unmangled name.
	found := false
	for _, p := range prog.Procedures {
		if len(p.Name) >= len("identity$") && p.Name[:len("identity$")] == "identity$" {
			found = true
			break
		}
	}
	assert.True(t, found, "the template instantiation generated for identity(3) should be among the lowered procedures")
}

func TestLowerProcedureAppendsReturnWhenBodyFallsThrough(t *testing.T) {
	prog := generate(t, `module m {
		void noop() {
			int x = 1;
		}
	}`)

	proc := prog.FindByName("noop")
	require.NotNil(t, proc)
	instrs := allInstructions(proc)
	require.NotEmpty(t, instrs)
	assert.Equal(t, ir.OpReturn, instrs[len(instrs)-1].Op, "a void body with no explicit return should still end in RETURN")
}
