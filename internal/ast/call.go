package ast

import (
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/internal/types"
	"github.com/Yaossg/porkchop/vm"
)

// Call is `f(a0, a1, ...)`: arguments are pushed first, the callable
// last, so CALL always finds the Func object on top regardless of its
// arity.
type Call struct {
	base
	Callee Node
	Args   []Node
}

func NewCall(seg source.Segment, t types.Type, callee Node, args []Node) *Call {
	return &Call{base: base{seg: seg, typ: t}, Callee: callee, Args: args}
}

func (n *Call) Emit(em *Emitter) {
	for _, a := range n.Args {
		a.Emit(em)
	}
	n.Callee.Emit(em)
	em.Asm.Emit(vm.OpCall)
}

// Bind is `value.f`, partial application of the first parameter: binds
// value as f's leading captured argument, producing a new Func value with
// one fewer visible parameter.
type Bind struct {
	base
	Callee Node
	Values []Node
}

func NewBind(seg source.Segment, t types.Type, callee Node, values []Node) *Bind {
	return &Bind{base: base{seg: seg, typ: t}, Callee: callee, Values: values}
}

func (n *Bind) Emit(em *Emitter) {
	for _, v := range n.Values {
		v.Emit(em)
	}
	n.Callee.Emit(em)
	em.Asm.EmitIndex(vm.OpBind, len(n.Values))
}
