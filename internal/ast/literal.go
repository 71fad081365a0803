package ast

import (
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/internal/types"
)

// BoolLiteral, IntLiteral, ... are the leaves of the tree: every one but
// StringLiteral (Const has no string arm) is trivially its own constant
// fold.

type BoolLiteral struct {
	base
	Value bool
}

func NewBoolLiteral(seg source.Segment, v bool) *BoolLiteral {
	n := &BoolLiteral{base: base{seg: seg, typ: types.Bool}, Value: v}
	n.setConst(Const{Kind: ConstBool, Bool: v})
	return n
}

func (n *BoolLiteral) Emit(em *Emitter) { em.Asm.PushConstBool(n.Value) }

type ByteLiteral struct {
	base
	Value byte
}

func NewByteLiteral(seg source.Segment, v byte) *ByteLiteral {
	n := &ByteLiteral{base: base{seg: seg, typ: types.Byte}, Value: v}
	n.setConst(Const{Kind: ConstByte, Byte: v})
	return n
}

func (n *ByteLiteral) Emit(em *Emitter) { em.Asm.PushConstInt(int64(n.Value)) }

type IntLiteral struct {
	base
	Value int64
}

func NewIntLiteral(seg source.Segment, v int64) *IntLiteral {
	n := &IntLiteral{base: base{seg: seg, typ: types.Int}, Value: v}
	n.setConst(Const{Kind: ConstInt, Int: v})
	return n
}

func (n *IntLiteral) Emit(em *Emitter) { em.Asm.PushConstInt(n.Value) }

type FloatLiteral struct {
	base
	Value float64
}

func NewFloatLiteral(seg source.Segment, v float64) *FloatLiteral {
	n := &FloatLiteral{base: base{seg: seg, typ: types.Float}, Value: v}
	n.setConst(Const{Kind: ConstFloat, Float: v})
	return n
}

func (n *FloatLiteral) Emit(em *Emitter) { em.Asm.PushConstFloat(n.Value) }

type CharLiteral struct {
	base
	Value rune
}

func NewCharLiteral(seg source.Segment, v rune) *CharLiteral {
	n := &CharLiteral{base: base{seg: seg, typ: types.Char}, Value: v}
	n.setConst(Const{Kind: ConstChar, Char: v})
	return n
}

func (n *CharLiteral) Emit(em *Emitter) { em.Asm.PushConstInt(int64(n.Value)) }

type StringLiteral struct {
	base
	Value string
}

func NewStringLiteral(seg source.Segment, v string) *StringLiteral {
	return &StringLiteral{base: base{seg: seg, typ: types.String}, Value: v}
}

func (n *StringLiteral) Emit(em *Emitter) { em.Asm.PushString(n.Value) }
