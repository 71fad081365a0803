package ast

import (
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/internal/types"
	"github.com/Yaossg/porkchop/vm"
)

// LocalRef reads a local variable slot: `x` where x is a `let`-bound name
// or a parameter.
type LocalRef struct {
	base
	Index int
	Name  string
}

func NewLocalRef(seg source.Segment, index int, t types.Type, name string) *LocalRef {
	return &LocalRef{base: base{seg: seg, typ: t}, Index: index, Name: name}
}

func (n *LocalRef) Emit(em *Emitter) { em.Asm.EmitIndex(vm.OpLoad, n.Index) }

// FuncRef reads a continuum entry as a first-class value: `name` where
// name resolved to a declared or defined function rather than a local.
// FCONST i pushes the i-th function object.
type FuncRef struct {
	base
	Index int
	Name  string
}

func NewFuncRef(seg source.Segment, index int, t types.Type, name string) *FuncRef {
	return &FuncRef{base: base{seg: seg, typ: t}, Index: index, Name: name}
}

func (n *FuncRef) Emit(em *Emitter) { em.Asm.EmitIndex(vm.OpFConst, n.Index) }

// Discard is the `_` identifier: non-binding, typed NONE, emits nothing
// useful to load.
type Discard struct {
	base
}

func NewDiscard(seg source.Segment) *Discard {
	return &Discard{base: base{seg: seg, typ: types.None}}
}

func (n *Discard) Emit(em *Emitter) { em.Asm.PushConstBool(false) }
