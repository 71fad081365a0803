package ast

import (
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/internal/types"
	"github.com/Yaossg/porkchop/vm"
)

// Unary is prefix `- ! ~`: negation, logical not, bitwise invert, each a
// single opcode over its operand.
type Unary struct {
	base
	Operand Node
	Op      vm.Op
}

func NewUnary(seg source.Segment, t types.Type, op vm.Op, operand Node) *Unary {
	n := &Unary{base: base{seg: seg, typ: t}, Operand: operand, Op: op}
	if c, ok := operand.ConstValue(); ok {
		if folded, ok2 := foldUnary(op, c); ok2 {
			n.setConst(folded)
		}
	}
	return n
}

func (n *Unary) Emit(em *Emitter) {
	if c, ok := n.ConstValue(); ok {
		pushConst(em, c, n.typ)
		return
	}
	n.Operand.Emit(em)
	em.Asm.Emit(n.Op)
}

// Step is prefix `++x`/`--x` on an int local: INC/DEC adjust the slot in
// place without touching the operand stack, so the expression's own value
// is a reload of the slot.
type Step struct {
	base
	Index int
	Op    vm.Op
}

func NewStep(seg source.Segment, op vm.Op, index int) *Step {
	return &Step{base: base{seg: seg, typ: types.Int}, Index: index, Op: op}
}

func (n *Step) Emit(em *Emitter) {
	em.Asm.EmitIndex(n.Op, n.Index)
	em.Asm.EmitIndex(vm.OpLoad, n.Index)
}

func foldUnary(op vm.Op, c Const) (Const, bool) {
	switch op {
	case vm.OpINeg:
		if c.Kind == ConstInt {
			return Const{Kind: ConstInt, Int: -c.Int}, true
		}
	case vm.OpFNeg:
		if c.Kind == ConstFloat {
			return Const{Kind: ConstFloat, Float: -c.Float}, true
		}
	case vm.OpNot:
		if c.Kind == ConstBool {
			return Const{Kind: ConstBool, Bool: !c.Bool}, true
		}
	case vm.OpInv:
		if c.Kind == ConstInt {
			return Const{Kind: ConstInt, Int: ^c.Int}, true
		}
		if c.Kind == ConstByte {
			return Const{Kind: ConstByte, Byte: ^c.Byte}, true
		}
	}
	return Const{}, false
}
