package symbols

// Label anchors a jump/call target. It is bound either to a specific
// instruction (set directly by the code generator as it emits) or to a
// specific block (set by the CFG builder once blocks exist); looking up a
// label's target always resolves to the first instruction of its block
// when bound that way. The concrete instruction/block types live in
// package ir, which imports symbols — so Target is kept opaque here and
// resolved by ir.ResolveLabel.
type Label struct {
	Name_  string
	Target any // either an ir.Instruction or an ir.BasicBlock, set by ir/codegen
}

func (l *Label) SymbolName() string { return l.Name_ }
func (l *Label) Category() Category { return CatLabel }

func (l *Label) BindTo(target any) { l.Target = target }
