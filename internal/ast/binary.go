package ast

import (
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/internal/types"
	"github.com/Yaossg/porkchop/vm"
)

// Arith is `+ - * / %` and the bitwise/shift family: a single shape whose
// Op is chosen by the compiler's type rule once operand types are known,
// at construction rather than at emission.
type Arith struct {
	base
	Left, Right Node
	Op          vm.Op
}

func NewArith(seg source.Segment, t types.Type, op vm.Op, l, r Node) *Arith {
	n := &Arith{base: base{seg: seg, typ: t}, Left: l, Right: r, Op: op}
	if lc, ok := l.ConstValue(); ok {
		if rc, ok2 := r.ConstValue(); ok2 {
			if folded, ok3 := foldArith(op, lc, rc); ok3 {
				n.setConst(folded)
			}
		}
	}
	return n
}

func (n *Arith) Emit(em *Emitter) {
	if c, ok := n.ConstValue(); ok {
		pushConst(em, c, n.typ)
		return
	}
	n.Left.Emit(em)
	n.Right.Emit(em)
	em.Asm.Emit(n.Op)
}

// foldArith implements the constant-folding soundness property for
// the integer/float arms; it is deliberately conservative (returns ok=false
// rather than guess) for anything not a plain scalar arithmetic op.
func foldArith(op vm.Op, l, r Const) (Const, bool) {
	switch op {
	case vm.OpIAdd:
		return Const{Kind: ConstInt, Int: l.Int + r.Int}, l.Kind == ConstInt && r.Kind == ConstInt
	case vm.OpISub:
		return Const{Kind: ConstInt, Int: l.Int - r.Int}, l.Kind == ConstInt && r.Kind == ConstInt
	case vm.OpIMul:
		return Const{Kind: ConstInt, Int: l.Int * r.Int}, l.Kind == ConstInt && r.Kind == ConstInt
	case vm.OpFAdd:
		return Const{Kind: ConstFloat, Float: l.Float + r.Float}, l.Kind == ConstFloat && r.Kind == ConstFloat
	case vm.OpFSub:
		return Const{Kind: ConstFloat, Float: l.Float - r.Float}, l.Kind == ConstFloat && r.Kind == ConstFloat
	case vm.OpFMul:
		return Const{Kind: ConstFloat, Float: l.Float * r.Float}, l.Kind == ConstFloat && r.Kind == ConstFloat
	default:
		return Const{}, false
	}
}

// Compare is every `== != === !== < > <= >=`, emitted as the
// matching *CMP opcode with its CmpMode sub-opcode.
type Compare struct {
	base
	Left, Right Node
	Op          vm.Op
	Mode        vm.CmpMode
}

func NewCompare(seg source.Segment, op vm.Op, mode vm.CmpMode, l, r Node) *Compare {
	return &Compare{base: base{seg: seg, typ: types.Bool}, Left: l, Right: r, Op: op, Mode: mode}
}

func (n *Compare) Emit(em *Emitter) {
	n.Left.Emit(em)
	n.Right.Emit(em)
	em.Asm.EmitCmp(n.Op, n.Mode)
}

// LogicalAnd/LogicalOr are `&&`/`||`: short-circuiting, lowered with
// DUP/JMP0/JMP/POP rather than a dedicated opcode (the VM's opcode
// table has no boolean-connective opcode; OR/AND/XOR there are the
// integral bitwise family only).
type LogicalAnd struct {
	base
	Left, Right Node
}

func NewLogicalAnd(seg source.Segment, l, r Node) *LogicalAnd {
	return &LogicalAnd{base: base{seg: seg, typ: types.Bool}, Left: l, Right: r}
}

func (n *LogicalAnd) Emit(em *Emitter) {
	end := em.Asm.NewLabel()
	n.Left.Emit(em)
	em.Asm.Emit(vm.OpDup)
	em.Asm.EmitLabel(vm.OpJmp0, end)
	em.Asm.Emit(vm.OpPop)
	n.Right.Emit(em)
	em.Asm.PlaceLabel(end)
}

type LogicalOr struct {
	base
	Left, Right Node
}

func NewLogicalOr(seg source.Segment, l, r Node) *LogicalOr {
	return &LogicalOr{base: base{seg: seg, typ: types.Bool}, Left: l, Right: r}
}

func (n *LogicalOr) Emit(em *Emitter) {
	els := em.Asm.NewLabel()
	end := em.Asm.NewLabel()
	n.Left.Emit(em)
	em.Asm.Emit(vm.OpDup)
	em.Asm.EmitLabel(vm.OpJmp0, els)
	em.Asm.EmitLabel(vm.OpJmp, end)
	em.Asm.PlaceLabel(els)
	em.Asm.Emit(vm.OpPop)
	n.Right.Emit(em)
	em.Asm.PlaceLabel(end)
}

// In is `left in right`: right must be iterable (or Dict,
// keyed), left the element/key type.
type In struct {
	base
	Left, Right Node
}

func NewIn(seg source.Segment, l, r Node) *In {
	return &In{base: base{seg: seg, typ: types.Bool}, Left: l, Right: r}
}

func (n *In) Emit(em *Emitter) {
	n.Left.Emit(em)
	n.Right.Emit(em)
	em.Asm.Emit(vm.OpIn)
}
