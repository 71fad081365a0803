package vm

import (
	"math"

	"github.com/Yaossg/porkchop/internal/types"
)

// Value is one stack slot, local slot, or struct field: a 64-bit payload
// plus an optional Ref. Value-based scalars (bool/byte/int/float/char)
// carry their payload in Bits and leave Ref nil; string/any/tuple/list/
// set/dict/iter/func values carry it in Ref and leave Bits unused. The
// word-plus-optional-pointer pair is the minimum a tracing collector needs
// to tell "this slot is a root" apart from "this slot is an unboxed
// scalar" without a side bitmap.
type Value struct {
	Bits uint64
	Ref  Object
}

func boolVal(b bool) Value {
	if b {
		return Value{Bits: 1}
	}
	return Value{Bits: 0}
}

func intVal(i int64) Value    { return Value{Bits: uint64(i)} }
func byteVal(b byte) Value    { return Value{Bits: uint64(b)} }
func charVal(c rune) Value    { return Value{Bits: uint64(c)} }
func floatVal(f float64) Value { return Value{Bits: math.Float64bits(f)} }
func refVal(o Object) Value   { return Value{Ref: o} }

func (v Value) Bool() bool      { return v.Bits != 0 }
func (v Value) Int() int64      { return int64(v.Bits) }
func (v Value) Byte() byte      { return byte(v.Bits) }
func (v Value) Char() rune      { return rune(v.Bits) }
func (v Value) Float() float64  { return math.Float64frombits(v.Bits) }

// Object is any heap-allocated value the garbage collector manages:
// strings, tuples, lists, sets, dicts, functions, iterators and any-boxes.
// header returns the embedded gcHeader every concrete type carries, giving
// the collector one place to flip the mark bit and walk the intrusive
// all-objects list.
type Object interface {
	header() *gcHeader
	// children appends this object's own Value fields (the ones the
	// collector must trace into) to out and returns the result.
	children(out []Value) []Value
}

type gcHeader struct {
	marked bool
	next   Object
}

func (h *gcHeader) header() *gcHeader { return h }

// StringObj is Porkchop's reference-based STRING.
type StringObj struct {
	gcHeader
	S string
}

func newString(s string) *StringObj { return &StringObj{S: s} }

func (o *StringObj) children(out []Value) []Value { return out }

// AnyBox is what an ANY-typed slot actually is: the erased static type
// plus the boxed value, so AS/IS can check the tag later.
type AnyBox struct {
	gcHeader
	Static types.Type
	Value  Value
}

func (o *AnyBox) children(out []Value) []Value { return append(out, o.Value) }

// TupleObj is a fixed-arity heterogeneous product.
type TupleObj struct {
	gcHeader
	Elem []Value
}

func (o *TupleObj) children(out []Value) []Value { return append(out, o.Elem...) }

// ListObj is a growable homogeneous sequence.
type ListObj struct {
	gcHeader
	Elem  types.Type
	Items []Value
}

func (o *ListObj) children(out []Value) []Value { return append(out, o.Items...) }

// SetObj is an unordered collection with no duplicate elements by value
// equality. Backed by a plain slice with linear membership
// checks rather than a Go map, since composite element types (tuples,
// lists...) have no natural comparable Go key and deep-hashing every kind
// is more machinery than this collector's scale needs.
type SetObj struct {
	gcHeader
	Elem  types.Type
	Items []Value
}

func (o *SetObj) children(out []Value) []Value { return append(out, o.Items...) }

// DictObj is a key/value mapping, same linear-scan rationale as SetObj.
type DictObj struct {
	gcHeader
	Key, Val types.Type
	Keys     []Value
	Vals     []Value
}

func (o *DictObj) children(out []Value) []Value {
	out = append(out, o.Keys...)
	return append(out, o.Vals...)
}

// FuncObj is a callable continuum entry plus whatever leading arguments
// have already been bound to it (BIND "partially applies one more leading
// argument, returning a new Func value"). ContIndex addresses
// internal/ast.Continuum / the prototype table, kept 1:1 by compiler/
// compile.go's registration order.
type FuncObj struct {
	gcHeader
	ContIndex int
	Bound     []Value
}

func (o *FuncObj) children(out []Value) []Value { return append(out, o.Bound...) }

// IterObj wraps anything that can be driven by MOVE/GET: a snapshot
// position into a List/Set/Dict, or a suspended Coroutine.
type IterObj struct {
	gcHeader
	it      iterState
	current Value
	ok      bool
}

// iterState is the polymorphic part of IterObj: move advances and reports
// whether a new current value is available.
type iterState interface {
	move(in *Instance) (Value, bool, error)
	roots(out []Value) []Value
}

func (o *IterObj) children(out []Value) []Value {
	if o.ok {
		out = append(out, o.current)
	}
	return o.it.roots(out)
}

type sliceIter struct {
	items []Value
	pos   int
}

func (s *sliceIter) move(in *Instance) (Value, bool, error) {
	if s.pos >= len(s.items) {
		return Value{}, false, nil
	}
	v := s.items[s.pos]
	s.pos++
	return v, true, nil
}

func (s *sliceIter) roots(out []Value) []Value { return append(out, s.items...) }

// dictPairIter iterates a DictObj's (key, value) pairs as Tuple(K,V)
// values: iterating a dict hands the loop 2-tuples.
type dictPairIter struct {
	d   *DictObj
	pos int
}

func (it *dictPairIter) move(in *Instance) (Value, bool, error) {
	if it.pos >= len(it.d.Keys) {
		return Value{}, false, nil
	}
	pair := &TupleObj{Elem: []Value{it.d.Keys[it.pos], it.d.Vals[it.pos]}}
	in.heap.register(pair)
	it.pos++
	return refVal(pair), true, nil
}

func (it *dictPairIter) roots(out []Value) []Value {
	out = append(out, it.d.Keys...)
	return append(out, it.d.Vals...)
}
