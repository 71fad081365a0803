package ast

import (
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/internal/types"
	"github.com/Yaossg/porkchop/vm"
)

// IsExpr is `left is T`: left must be ANY; constant-folds to
// a BoolLiteral by the compiler whenever left's static type already
// determines the answer (handled by the compiler, not here, since it needs
// the pre-erasure static type which this node's operand no longer carries
// once boxed).
type IsExpr struct {
	base
	Operand Node
	Target  types.Type
}

func NewIsExpr(seg source.Segment, operand Node, target types.Type) *IsExpr {
	return &IsExpr{base: base{seg: seg, typ: types.Bool}, Operand: operand, Target: target}
}

func (n *IsExpr) Emit(em *Emitter) {
	n.Operand.Emit(em)
	em.Asm.EmitType(vm.OpIs, n.Target)
}

// AsExpr is `left as T`: a checked cast, raising a runtime
// fault if the dynamic value can't convert.
type AsExpr struct {
	base
	Operand Node
	Target  types.Type
}

func NewAsExpr(seg source.Segment, operand Node, target types.Type) *AsExpr {
	return &AsExpr{base: base{seg: seg, typ: target}, Operand: operand, Target: target}
}

func (n *AsExpr) Emit(em *Emitter) {
	n.Operand.Emit(em)
	em.Asm.EmitType(vm.OpAs, n.Target)
}

// AnyBox wraps a concrete value into ANY, used wherever the type rule
// inserts an implicit coercion (assigning a concrete value where ANY is
// expected).
type AnyBox struct {
	base
	Operand Node
}

func NewAnyBox(seg source.Segment, operand Node) *AnyBox {
	return &AnyBox{base: base{seg: seg, typ: types.Any}, Operand: operand}
}

func (n *AnyBox) Emit(em *Emitter) {
	n.Operand.Emit(em)
	em.Asm.EmitType(vm.OpAny, n.Operand.Type())
}

// Retype is a cast between two scalar kinds that share a stack
// representation (byte as int, char as int): the static type changes, the
// bits do not, so nothing is emitted beyond the operand itself.
type Retype struct {
	base
	Operand Node
}

func NewRetype(seg source.Segment, t types.Type, operand Node) *Retype {
	n := &Retype{base: base{seg: seg, typ: t}, Operand: operand}
	if c, ok := operand.ConstValue(); ok {
		n.setConst(c)
	}
	return n
}

func (n *Retype) Emit(em *Emitter) { n.Operand.Emit(em) }

// IsFold is `left is T` where left's static type is not ANY: the answer
// is already decided at compile time, but the operand is still evaluated
// for its effects.
type IsFold struct {
	base
	Operand Node
	Answer  bool
}

func NewIsFold(seg source.Segment, operand Node, answer bool) *IsFold {
	n := &IsFold{base: base{seg: seg, typ: types.Bool}, Operand: operand, Answer: answer}
	n.setConst(Const{Kind: ConstBool, Bool: answer})
	return n
}

func (n *IsFold) Emit(em *Emitter) {
	n.Operand.Emit(em)
	em.Asm.Emit(vm.OpPop)
	em.Asm.PushConstBool(n.Answer)
}

// Convert is a numeric narrowing/widening (`I2B I2C I2F F2I`) or a
// string-producing conversion (`I2S F2S B2S Z2S C2S O2S`), inserted by the
// compiler's type rule wherever an arithmetic mix or a `+`-with-STRING
// operand needs one.
type Convert struct {
	base
	Operand Node
	Op      vm.Op
}

func NewConvert(seg source.Segment, t types.Type, op vm.Op, operand Node) *Convert {
	return &Convert{base: base{seg: seg, typ: t}, Operand: operand, Op: op}
}

func (n *Convert) Emit(em *Emitter) {
	n.Operand.Emit(em)
	em.Asm.Emit(n.Op)
}
