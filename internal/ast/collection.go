package ast

import (
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/internal/types"
	"github.com/Yaossg/porkchop/vm"
)

// TupleLit, ListLit, SetLit, DictLit are the container constructor
// literals: TUPLE assembles a tuple of its type's arity, while LIST, SET
// and DICT pop n (or 2n) elements and construct.

type TupleLit struct {
	base
	Elements []Node
}

func NewTupleLit(seg source.Segment, t types.TupleType, elems []Node) *TupleLit {
	return &TupleLit{base: base{seg: seg, typ: t}, Elements: elems}
}

func (n *TupleLit) Emit(em *Emitter) {
	for _, e := range n.Elements {
		e.Emit(em)
	}
	em.Asm.EmitType(vm.OpTuple, n.typ)
}

type ListLit struct {
	base
	Elements []Node
}

func NewListLit(seg source.Segment, t types.ListType, elems []Node) *ListLit {
	return &ListLit{base: base{seg: seg, typ: t}, Elements: elems}
}

func (n *ListLit) Emit(em *Emitter) {
	for _, e := range n.Elements {
		e.Emit(em)
	}
	em.Asm.EmitTypeSize(vm.OpList, n.typ, len(n.Elements))
}

type SetLit struct {
	base
	Elements []Node
}

func NewSetLit(seg source.Segment, t types.SetType, elems []Node) *SetLit {
	return &SetLit{base: base{seg: seg, typ: t}, Elements: elems}
}

func (n *SetLit) Emit(em *Emitter) {
	for _, e := range n.Elements {
		e.Emit(em)
	}
	em.Asm.EmitTypeSize(vm.OpSet, n.typ, len(n.Elements))
}

type DictEntry struct {
	Key, Value Node
}

type DictLit struct {
	base
	Entries []DictEntry
}

func NewDictLit(seg source.Segment, t types.DictType, entries []DictEntry) *DictLit {
	return &DictLit{base: base{seg: seg, typ: t}, Entries: entries}
}

func (n *DictLit) Emit(em *Emitter) {
	for _, e := range n.Entries {
		e.Key.Emit(em)
		e.Value.Emit(em)
	}
	em.Asm.EmitTypeSize(vm.OpDict, n.typ, len(n.Entries))
}

// TupleIndex is `t[i]` with i a compile-time constant INT, checked
// in-range at construction.
type TupleIndex struct {
	base
	Operand Node
	Index   int
}

func NewTupleIndex(seg source.Segment, t types.Type, operand Node, index int) *TupleIndex {
	return &TupleIndex{base: base{seg: seg, typ: t}, Operand: operand, Index: index}
}

func (n *TupleIndex) Emit(em *Emitter) {
	n.Operand.Emit(em)
	em.Asm.EmitIndex(vm.OpTLoad, n.Index)
}

// ListIndex is `l[i]` with i an INT-typed expression.
type ListIndex struct {
	base
	Operand, IndexExpr Node
}

func NewListIndex(seg source.Segment, t types.Type, operand, index Node) *ListIndex {
	return &ListIndex{base: base{seg: seg, typ: t}, Operand: operand, IndexExpr: index}
}

func (n *ListIndex) Emit(em *Emitter) {
	n.Operand.Emit(em)
	n.IndexExpr.Emit(em)
	em.Asm.Emit(vm.OpLLoad)
}

// DictIndex is `d[k]` with k the dict's key type.
type DictIndex struct {
	base
	Operand, KeyExpr Node
}

func NewDictIndex(seg source.Segment, t types.Type, operand, key Node) *DictIndex {
	return &DictIndex{base: base{seg: seg, typ: t}, Operand: operand, KeyExpr: key}
}

func (n *DictIndex) Emit(em *Emitter) {
	n.Operand.Emit(em)
	n.KeyExpr.Emit(em)
	em.Asm.Emit(vm.OpDLoad)
}

// ListStore is `l[i] = v`; LSTORE is non-destructive like STORE, leaving
// v on the stack as the assignment expression's value.
type ListStore struct {
	base
	Operand, IndexExpr, Value Node
}

func NewListStore(seg source.Segment, operand, index, value Node) *ListStore {
	return &ListStore{base: base{seg: operand.Segment(), typ: value.Type()}, Operand: operand, IndexExpr: index, Value: value}
}

func (n *ListStore) Emit(em *Emitter) {
	n.Operand.Emit(em)
	n.IndexExpr.Emit(em)
	n.Value.Emit(em)
	em.Asm.Emit(vm.OpLStore)
}

// DictStore is `d[k] = v`.
type DictStore struct {
	base
	Operand, KeyExpr, Value Node
}

func NewDictStore(seg source.Segment, operand, key, value Node) *DictStore {
	return &DictStore{base: base{seg: operand.Segment(), typ: value.Type()}, Operand: operand, KeyExpr: key, Value: value}
}

func (n *DictStore) Emit(em *Emitter) {
	n.Operand.Emit(em)
	n.KeyExpr.Emit(em)
	n.Value.Emit(em)
	em.Asm.Emit(vm.OpDStore)
}

// CollectionAdd/CollectionRemove/Sizeof wrap the corresponding mutate/query
// opcodes: `xs += v` and `xs -= v` on a collection receiver
// lower to ADD/REMOVE (leaving the receiver as the expression's value,
// which is what the opcodes push back), and prefix `sizeof xs` lowers to
// SIZEOF.
type CollectionAdd struct {
	base
	Operand, Value Node
}

func NewCollectionAdd(seg source.Segment, operand, value Node) *CollectionAdd {
	return &CollectionAdd{base: base{seg: seg, typ: operand.Type()}, Operand: operand, Value: value}
}

func (n *CollectionAdd) Emit(em *Emitter) {
	n.Operand.Emit(em)
	n.Value.Emit(em)
	em.Asm.Emit(vm.OpAdd)
}

type CollectionRemove struct {
	base
	Operand, Value Node
}

func NewCollectionRemove(seg source.Segment, operand, value Node) *CollectionRemove {
	return &CollectionRemove{base: base{seg: seg, typ: operand.Type()}, Operand: operand, Value: value}
}

func (n *CollectionRemove) Emit(em *Emitter) {
	n.Operand.Emit(em)
	n.Value.Emit(em)
	em.Asm.Emit(vm.OpRemove)
}

type Sizeof struct {
	base
	Operand Node
}

func NewSizeof(seg source.Segment, operand Node) *Sizeof {
	return &Sizeof{base: base{seg: seg, typ: types.Int}, Operand: operand}
}

func (n *Sizeof) Emit(em *Emitter) {
	n.Operand.Emit(em)
	em.Asm.Emit(vm.OpSizeof)
}
