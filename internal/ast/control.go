package ast

import (
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/internal/types"
	"github.com/Yaossg/porkchop/vm"
)

// StoreLocal is both `let name = value` (first assignment to a fresh slot)
// and a later `name = value`: LOAD/STORE addresses don't distinguish
// declaration from reassignment, only the resolver does, so one node shape
// covers both. STORE is non-destructive, which is exactly the semantics
// an expression-oriented `x = v` needs: the assignment's own value is `v`.
type StoreLocal struct {
	base
	Index int
	Value Node
}

func NewStoreLocal(seg source.Segment, index int, value Node) *StoreLocal {
	return &StoreLocal{base: base{seg: seg, typ: value.Type()}, Index: index, Value: value}
}

func (n *StoreLocal) Emit(em *Emitter) {
	n.Value.Emit(em)
	em.Asm.EmitIndex(vm.OpStore, n.Index)
}

// Block is `{ s0; s1; ...; sn }`: every statement but the last is emitted
// then discarded (POP); the block's value and type are the last statement's
// (NONE for an empty block).
type Block struct {
	base
	Statements []Node
}

func NewBlock(seg source.Segment, stmts []Node) *Block {
	t := types.Type(types.None)
	if len(stmts) > 0 {
		t = stmts[len(stmts)-1].Type()
	}
	return &Block{base: base{seg: seg, typ: t}, Statements: stmts}
}

func (n *Block) Emit(em *Emitter) {
	if len(n.Statements) == 0 {
		em.Asm.PushConstBool(false) // NONE stand-in
		return
	}
	for _, s := range n.Statements[:len(n.Statements)-1] {
		s.Emit(em)
		em.Asm.Emit(vm.OpPop)
	}
	n.Statements[len(n.Statements)-1].Emit(em)
}

// If is `if cond { then } else { els }` (els may be nil, treated as an
// empty NONE block per the if/else eitherOf rule).
type If struct {
	base
	Cond, Then, Else Node
}

func NewIf(seg source.Segment, t types.Type, cond, then, els Node) *If {
	return &If{base: base{seg: seg, typ: t}, Cond: cond, Then: then, Else: els}
}

func (n *If) Emit(em *Emitter) {
	elseLabel := em.Asm.NewLabel()
	endLabel := em.Asm.NewLabel()
	n.Cond.Emit(em)
	em.Asm.EmitLabel(vm.OpJmp0, elseLabel)
	n.Then.Emit(em)
	em.Asm.EmitLabel(vm.OpJmp, endLabel)
	em.Asm.PlaceLabel(elseLabel)
	if n.Else != nil {
		n.Else.Emit(em)
	} else {
		em.Asm.PushConstBool(false)
	}
	em.Asm.PlaceLabel(endLabel)
}

// While is `while cond { body }`: typed NEVER when the condition is a
// constant truthy with no break, otherwise NONE.
type While struct {
	base
	Cond, Body Node
	Hook       *Hook
}

func NewWhile(seg source.Segment, t types.Type, cond, body Node, hook *Hook) *While {
	return &While{base: base{seg: seg, typ: t}, Cond: cond, Body: body, Hook: hook}
}

func (n *While) Emit(em *Emitter) {
	em.PushLoop(n.Hook)
	top := em.ContinueLabel()
	brk := em.BreakLabel()
	em.Asm.PlaceLabel(top)
	n.Cond.Emit(em)
	em.Asm.EmitLabel(vm.OpJmp0, brk)
	n.Body.Emit(em)
	em.Asm.Emit(vm.OpPop)
	em.Asm.EmitLabel(vm.OpJmp, top)
	em.Asm.PlaceLabel(brk)
	if n.typ != types.Never {
		em.Asm.PushConstBool(false) // NONE stand-in: natural exit
	}
	em.PopLoop()
}

// For is `for pat in it { body }`: pat is restricted here to a simple
// identifier declarator (nested-tuple declarators are a documented
// simplification, see DESIGN.md) bound to a fresh local slot; IterLocal
// holds the live iterator object across MOVE/GET calls.
type For struct {
	base
	IterLocal    int
	PatternLocal int
	Iterable     Node
	Body         Node
	Hook         *Hook
}

func NewFor(seg source.Segment, iterLocal, patternLocal int, iterable, body Node, hook *Hook) *For {
	return &For{base: base{seg: seg, typ: types.None}, IterLocal: iterLocal, PatternLocal: patternLocal, Iterable: iterable, Body: body, Hook: hook}
}

func (n *For) Emit(em *Emitter) {
	n.Iterable.Emit(em)
	em.Asm.Emit(vm.OpIter)
	em.Asm.EmitIndex(vm.OpStore, n.IterLocal)
	em.Asm.Emit(vm.OpPop)

	em.PushLoop(n.Hook)
	top := em.ContinueLabel()
	brk := em.BreakLabel()
	em.Asm.PlaceLabel(top)
	em.Asm.EmitIndex(vm.OpLoad, n.IterLocal)
	em.Asm.Emit(vm.OpMove)
	em.Asm.EmitLabel(vm.OpJmp0, brk)
	em.Asm.EmitIndex(vm.OpLoad, n.IterLocal)
	em.Asm.Emit(vm.OpGet)
	em.Asm.EmitIndex(vm.OpStore, n.PatternLocal)
	em.Asm.Emit(vm.OpPop)
	n.Body.Emit(em)
	em.Asm.Emit(vm.OpPop)
	em.Asm.EmitLabel(vm.OpJmp, top)
	em.Asm.PlaceLabel(brk)
	em.Asm.PushConstBool(false) // NONE stand-in: iterator exhausted
	em.PopLoop()
}

// Return is `return expr`; the expression itself is typed NEVER.
type Return struct {
	base
	Value Node
}

func NewReturn(seg source.Segment, value Node) *Return {
	return &Return{base: base{seg: seg, typ: types.Never}, Value: value}
}

func (n *Return) Emit(em *Emitter) {
	n.Value.Emit(em)
	em.Asm.Emit(vm.OpReturn)
}

// Break is the bare `break` keyword (the grammar gives it no
// operand); since both While and For always type as NONE on their natural
// exit (eitherOf collapses to NONE whenever NONE is one of the
// compared arms), break does not need to carry a value to unify with.
type Break struct {
	base
}

func NewBreak(seg source.Segment) *Break {
	return &Break{base: base{seg: seg, typ: types.Never}}
}

func (n *Break) Emit(em *Emitter) {
	// The loop's own epilogue at the break label pushes the NONE both exit
	// paths share; break just transfers there.
	em.Asm.EmitLabel(vm.OpJmp, em.BreakLabel())
}

// Yield is `yield expr` inside a coroutine body: YIELD pops the value
// and suspends the frame.
type Yield struct {
	base
	Value Node
}

func NewYield(seg source.Segment, value Node) *Yield {
	return &Yield{base: base{seg: seg, typ: types.None}, Value: value}
}

func (n *Yield) Emit(em *Emitter) {
	n.Value.Emit(em)
	em.Asm.Emit(vm.OpYield)
}

// YieldBreak is the compound `yield break` idiom: ends the coroutine for
// good, rather than suspending it to be resumed.
// There is no dedicated opcode for this; it lowers to a plain RETURN,
// since a coroutine whose frame has run to completion is indistinguishable,
// from its iterator's MOVE, from one that explicitly said it is done.
type YieldBreak struct {
	base
}

func NewYieldBreak(seg source.Segment) *YieldBreak {
	return &YieldBreak{base: base{seg: seg, typ: types.Never}}
}

func (n *YieldBreak) Emit(em *Emitter) {
	em.Asm.PushConstBool(false)
	em.Asm.Emit(vm.OpReturn)
}
