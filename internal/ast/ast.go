// Package ast holds the typed expression tree produced by internal/compiler:
// one tagged-variant Node per production of the grammar, each caching its
// type (and, where constant, its value) at construction time rather than on
// a later pass. Dispatch is a flat type switch per operation, not a visitor
// hierarchy.
package ast

import (
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/internal/types"
)

// ConstKind tags which arm of Const is populated.
type ConstKind int

const (
	ConstNone ConstKind = iota
	ConstBool
	ConstByte
	ConstInt
	ConstFloat
	ConstChar
	ConstSize
)

// Const is the compile-time constant value a node may cache: a tagged
// union over bool/int/float/char/byte/size.
type Const struct {
	Kind  ConstKind
	Bool  bool
	Byte  byte
	Int   int64
	Float float64
	Char  rune
	Size  int
}

// Node is every expression tree arm's capability set: its source location,
// its cached static type, and its cached constant (if evalConst folded one).
// Emit is called by the compiler's code generator once the whole tree is
// type-checked; it is free to assume every descendant's Type()/ConstValue()
// is already populated.
type Node interface {
	Segment() source.Segment
	Type() types.Type
	ConstValue() (Const, bool)
	Emit(em *Emitter)
}

// base is embedded by every concrete node to supply the common fields.
type base struct {
	seg   source.Segment
	typ   types.Type
	konst Const
	isK   bool
}

func (b *base) Segment() source.Segment { return b.seg }
func (b *base) Type() types.Type        { return b.typ }
func (b *base) ConstValue() (Const, bool) {
	return b.konst, b.isK
}

func (b *base) setConst(c Const) {
	b.konst = c
	b.isK = true
}

// FunctionKind distinguishes the four FunctionReference flavours.
type FunctionKind int

const (
	FuncExternal FunctionKind = iota
	FuncNamed
	FuncLambda
	FuncMain
)

// FunctionReference is a continuum entry: one callable, addressed by its
// stable Index.
type FunctionReference struct {
	Kind  FunctionKind
	Name  string // empty for lambdas and main
	Index int
	Def   *FunctionDefinition // nil for FuncExternal
}

func (r *FunctionReference) Type() types.FuncType {
	return r.Def.Prototype()
}

// FunctionDefinition is one compiled function body: parameter
// names/types, return type, the flat local-variable type vector (indices
// into it are what LOAD/STORE/LOCAL operands reference), the body
// expression, and the loop/return back-references collected while parsing
// it.
type FunctionDefinition struct {
	Name        string
	ParamNames  []string
	ParamTypes  []types.Type
	CaptureTypes []types.Type // lambda leading captures, prepended to ParamTypes at call time
	Return      types.Type
	LocalTypes  []types.Type
	Body        Node
	Returns     []*Return // every `return` node inside this function
}

// Prototype is this function's externally visible Func type: captures are
// bound as extra leading parameters of the underlying function.
func (f *FunctionDefinition) Prototype() types.FuncType {
	params := make([]types.Type, 0, len(f.CaptureTypes)+len(f.ParamTypes))
	params = append(params, f.CaptureTypes...)
	params = append(params, f.ParamTypes...)
	return types.FuncType{Params: params, Return: f.Return}
}

// VisibleType is the lambda's type as seen by callers: captures are bound
// already, so only the remaining parameters are visible.
func (f *FunctionDefinition) VisibleType() types.FuncType {
	return types.FuncType{Params: f.ParamTypes, Return: f.Return}
}

// Hook is a loop's runtime rendezvous: every `break` inside the loop
// registers against it (a `yield` does not). A `while` whose condition is a
// constant true and which has no break is typed NEVER; every other loop is
// typed NONE.
type Hook struct {
	Breaks      []Node
	ResultType  types.Type
	HasConstTrue bool // condition is a constant true (result is NEVER only if Breaks is also empty)
}

// Continuum is the whole-program function table: every FunctionReference,
// addressed by the small integer index assigned when it was registered.
// An arena plus integer indices, so nothing holds a cyclic pointer.
type Continuum struct {
	Refs []*FunctionReference
}

// NewContinuum creates an empty function table.
func NewContinuum() *Continuum {
	return &Continuum{}
}

// Register appends ref, stamping its Index, and returns that index.
func (c *Continuum) Register(ref *FunctionReference) int {
	idx := len(c.Refs)
	ref.Index = idx
	c.Refs = append(c.Refs, ref)
	return idx
}
