package ast

import (
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/internal/types"
	"github.com/Yaossg/porkchop/vm"
)

// FunctionDecl is `fn name(params...): R = body` (or its forward-declared
// form) appearing as a statement: the function's own code is emitted
// separately (via EmitFunction, once per continuum entry), so this node
// contributes nothing at its use site beyond the NONE value every
// statement position expects.
type FunctionDecl struct {
	base
	Ref *FunctionReference
}

func NewFunctionDecl(seg source.Segment, ref *FunctionReference) *FunctionDecl {
	return &FunctionDecl{base: base{seg: seg, typ: types.None}, Ref: ref}
}

func (n *FunctionDecl) Emit(em *Emitter) {
	em.Asm.PushConstBool(false)
}

// Lambda is `$captures(params...): R = body` at its use site: the
// underlying function (registered in the continuum like any other) takes
// the captures as leading parameters; evaluating the lambda expression
// pushes those captured values, references the underlying function, and
// BINDs them together, leaving a Func value whose visible
// type has only the declared parameters.
type Lambda struct {
	base
	Ref      *FunctionReference
	Captures []Node // capture values, resolved in the enclosing context
}

func NewLambda(seg source.Segment, t types.Type, ref *FunctionReference, captures []Node) *Lambda {
	return &Lambda{base: base{seg: seg, typ: t}, Ref: ref, Captures: captures}
}

func (n *Lambda) Emit(em *Emitter) {
	if len(n.Captures) == 0 {
		em.Asm.EmitIndex(vm.OpFConst, n.Ref.Index)
		return
	}
	for _, c := range n.Captures {
		c.Emit(em)
	}
	em.Asm.EmitIndex(vm.OpFConst, n.Ref.Index)
	em.Asm.EmitIndex(vm.OpBind, len(n.Captures))
}
