package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secrecc/internal/symbols"
	"secrecc/internal/types"
)

func publicInt(ctx *types.Context) *types.Type { return ctx.DefaultInt() }

func privateInt(ctx *types.Context) *types.Type {
	kind := ctx.DeclareKind("additive3pp")
	dom := ctx.DeclareDomain("pD", kind)
	return ctx.Private(dom, &types.Builtin{Kind: types.PrimInt64}, 0)
}

func TestInstructionUseDefBasic(t *testing.T) {
	ctx := types.NewContext()
	x := &symbols.Variable{Name_: "x", Type: publicInt(ctx)}
	y := &symbols.Variable{Name_: "y", Type: publicInt(ctx)}
	add := &Instruction{Op: OpAdd, Dests: []symbols.Symbol{x}, Args: []symbols.Symbol{y, y}}

	assert.Equal(t, []symbols.Symbol{y, y}, add.Use())
	assert.Equal(t, []symbols.Symbol{x}, add.Def())
}

func TestPrivateDestinationReclassifiedAsUse(t *testing.T) {
	ctx := types.NewContext()
	d := &symbols.Variable{Name_: "d", Type: privateInt(ctx)}
	arg := &symbols.Variable{Name_: "a", Type: privateInt(ctx)}
	assign := &Instruction{Op: OpAssign, Dests: []symbols.Symbol{d}, Args: []symbols.Symbol{arg}}

	assert.Nil(t, assign.Def(), "non-fresh opcode must not define a private destination")
	assert.Contains(t, assign.Use(), symbols.Symbol(d))
	assert.Contains(t, assign.Use(), symbols.Symbol(arg))
}

func TestPrivateClassifyStillDefines(t *testing.T) {
	ctx := types.NewContext()
	d := &symbols.Variable{Name_: "d", Type: privateInt(ctx)}
	arg := &symbols.Variable{Name_: "a", Type: publicInt(ctx)}
	classify := &Instruction{Op: OpClassify, Dests: []symbols.Symbol{d}, Args: []symbols.Symbol{arg}}

	assert.Equal(t, []symbols.Symbol{d}, classify.Def())
	assert.NotContains(t, classify.Use(), symbols.Symbol(d))
}

func TestPrivateStoreReadsAndDoesNotDefine(t *testing.T) {
	ctx := types.NewContext()
	arr := &symbols.Variable{Name_: "arr", Type: privateInt(ctx)}
	idx := &symbols.Variable{Name_: "i", Type: publicInt(ctx)}
	val := &symbols.Variable{Name_: "v", Type: privateInt(ctx)}
	store := &Instruction{Op: OpStore, Dests: []symbols.Symbol{arr}, Args: []symbols.Symbol{idx, val}}

	assert.Nil(t, store.Def())
	assert.Contains(t, store.Use(), symbols.Symbol(arr))
	assert.Contains(t, store.Use(), symbols.Symbol(idx))
	assert.Contains(t, store.Use(), symbols.Symbol(val))
}

// buildLinear builds: i0 declare x; i1 jt then -> i3; i2 jump join -> i5;
// i3 comment "then"; i4 jump join -> i5; i5 comment "join"; i6 end. Two
// conditional paths
// converging at a join block, no calls.
func buildLinear(t *testing.T) *Procedure {
	t.Helper()
	ctx := types.NewContext()
	x := &symbols.Variable{Name_: "x", Type: publicInt(ctx)}

	joinLabel := &symbols.Label{Name_: "join"}
	thenLabel := &symbols.Label{Name_: "then"}

	i0 := &Instruction{ID: 0, Op: OpDeclare, Dests: []symbols.Symbol{x}}
	i1 := &Instruction{ID: 1, Op: OpJt, Label: thenLabel}
	i2 := &Instruction{ID: 2, Op: OpJump, Label: joinLabel}
	i3 := &Instruction{ID: 3, Op: OpComment, Message: "then"}
	i4 := &Instruction{ID: 4, Op: OpJump, Label: joinLabel}
	i5 := &Instruction{ID: 5, Op: OpComment, Message: "join"}
	i6 := &Instruction{ID: 6, Op: OpEnd}

	thenLabel.BindTo(i3)
	joinLabel.BindTo(i5)

	sym := &symbols.Procedure{Name_: "main"}
	return BuildProcedure(sym, "main", []*Instruction{i0, i1, i2, i3, i4, i5, i6})
}

func TestBuildProcedureBlockSplitAndEdges(t *testing.T) {
	p := buildLinear(t)
	require.Len(t, p.Blocks, 4, "declare+jt | jump | then+jump | join+end")

	b0 := p.Blocks[0]
	require.Len(t, b0.Succs, 2)
	kinds := map[EdgeKind]bool{}
	for _, e := range b0.Succs {
		kinds[e.Kind] = true
	}
	assert.True(t, kinds[EdgeTrue])
	assert.True(t, kinds[EdgeFalse])

	joinBlock := p.Blocks[len(p.Blocks)-1]
	assert.Equal(t, OpEnd, joinBlock.Terminator().Op)
	require.Len(t, p.Exits, 1)
	assert.Same(t, joinBlock, p.Exits[0])
}

func TestLinkProgramAddsCallAndRetEdges(t *testing.T) {
	ctx := types.NewContext()
	_ = ctx

	calleeEntryLabel := &symbols.Label{Name_: "callee"}
	calleeSym := &symbols.Procedure{Name_: "callee", Entry: calleeEntryLabel}
	cBody := &Instruction{ID: 0, Op: OpReturn}
	calleeEntryLabel.BindTo(cBody)
	callee := BuildProcedure(calleeSym, "callee", []*Instruction{cBody})

	callLabel := &symbols.Label{Name_: "callee"}
	callLabel.BindTo(callee.Entry.Instructions[0])
	call := &Instruction{ID: 0, Op: OpCall, Label: callLabel}
	after := &Instruction{ID: 1, Op: OpRetClean}
	endI := &Instruction{ID: 2, Op: OpEnd}
	mainSym := &symbols.Procedure{Name_: "main"}
	main := BuildProcedure(mainSym, "main", []*Instruction{call, after, endI})

	prog := &Program{Init: main, Procedures: []*Procedure{callee}}
	LinkProgram(prog)

	callBlock := main.Blocks[0]
	require.Len(t, callBlock.SuccsOfKind(EdgeCall), 1)
	assert.Same(t, callee.Entry, callBlock.SuccsOfKind(EdgeCall)[0])

	passBlocks := callBlock.SuccsOfKind(EdgeCallPass)
	require.Len(t, passBlocks, 1)

	calleeExit := callee.Exits[0]
	retTargets := calleeExit.SuccsOfKind(EdgeRet)
	require.Len(t, retTargets, 1)
	assert.Same(t, passBlocks[0], retTargets[0])

	assert.True(t, main.Entry.Reachable)
	assert.True(t, callee.Entry.Reachable)
}

func TestPrintProcedure(t *testing.T) {
	p := buildLinear(t)
	out := Print(p)
	assert.Contains(t, out, "proc main:")
	assert.Contains(t, out, "block 0:")
}
