// Package types implements Porkchop's static type lattice: a sum-of-variants
// Type with structural equality, assignability, and a compact descriptor
// serialisation. Variants are a tagged union dispatched by type switch
// rather than interface-method polymorphism per callee.
package types

import (
	"strings"
)

// Scalar is one of the nine built-in value kinds.
type Scalar int

const (
	ANY Scalar = iota
	NONE
	NEVER
	BOOL
	BYTE
	INT
	FLOAT
	CHAR
	STRING
)

var scalarNames = [...]string{"any", "none", "never", "bool", "byte", "int", "float", "char", "string"}
var scalarLetters = [...]byte{'a', 'v', 'n', 'b', 'y', 'i', 'f', 'c', 's'}

func (s Scalar) String() string { return scalarNames[s] }

// IsValueBased reports whether s is represented as an unboxed word in the
// VM. STRING and ANY are reference-based; every other scalar is
// value-based.
func (s Scalar) IsValueBased() bool {
	switch s {
	case STRING, ANY:
		return false
	default:
		return true
	}
}

// IsArithmetic reports whether s participates in +,-,*,/,% directly.
func (s Scalar) IsArithmetic() bool {
	return s == BYTE || s == INT || s == FLOAT
}

// IsIntegral reports whether s is a whole-number scalar usable with the
// bitwise/shift operators.
func (s Scalar) IsIntegral() bool {
	return s == BYTE || s == INT
}

// Type is the sum over scalars, containers and function types. Every
// concrete variant below implements it.
type Type interface {
	// isType is unexported so Type has a closed set of implementations.
	isType()
	// Equals is structural equality (deep).
	Equals(other Type) bool
	// Serialize appends this type's compact descriptor to sb.
	Serialize(sb *strings.Builder)
	// String renders a human-readable type name.
	String() string
	// IsValueBased mirrors Scalar.IsValueBased for composite types: every
	// composite (Tuple/List/Set/Dict/Iter/Func) is reference-based.
	IsValueBased() bool
}

// ScalarType wraps a Scalar as a Type.
type ScalarType struct{ Kind Scalar }

func (ScalarType) isType() {}
func (t ScalarType) Equals(other Type) bool {
	o, ok := other.(ScalarType)
	return ok && o.Kind == t.Kind
}
func (t ScalarType) Serialize(sb *strings.Builder) { sb.WriteByte(scalarLetters[t.Kind]) }
func (t ScalarType) String() string                { return t.Kind.String() }
func (t ScalarType) IsValueBased() bool            { return t.Kind.IsValueBased() }

var (
	Any    Type = ScalarType{ANY}
	None   Type = ScalarType{NONE}
	Never  Type = ScalarType{NEVER}
	Bool   Type = ScalarType{BOOL}
	Byte   Type = ScalarType{BYTE}
	Int    Type = ScalarType{INT}
	Float  Type = ScalarType{FLOAT}
	Char   Type = ScalarType{CHAR}
	String Type = ScalarType{STRING}
)

// TupleType is Tuple(E0...En-1), n >= 2.
type TupleType struct{ Elements []Type }

func (TupleType) isType() {}
func (t TupleType) Equals(other Type) bool {
	o, ok := other.(TupleType)
	if !ok || len(o.Elements) != len(t.Elements) {
		return false
	}
	for i := range t.Elements {
		if !t.Elements[i].Equals(o.Elements[i]) {
			return false
		}
	}
	return true
}
func (t TupleType) Serialize(sb *strings.Builder) {
	sb.WriteByte('(')
	for _, e := range t.Elements {
		e.Serialize(sb)
	}
	sb.WriteByte(')')
}
func (t TupleType) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (TupleType) IsValueBased() bool { return false }

// ListType is List(E).
type ListType struct{ Element Type }

func (ListType) isType() {}
func (t ListType) Equals(other Type) bool {
	o, ok := other.(ListType)
	return ok && t.Element.Equals(o.Element)
}
func (t ListType) Serialize(sb *strings.Builder) { sb.WriteByte('['); t.Element.Serialize(sb) }
func (t ListType) String() string                { return "[" + t.Element.String() + "]" }
func (ListType) IsValueBased() bool              { return false }

// SetType is Set(E).
type SetType struct{ Element Type }

func (SetType) isType() {}
func (t SetType) Equals(other Type) bool {
	o, ok := other.(SetType)
	return ok && t.Element.Equals(o.Element)
}
func (t SetType) Serialize(sb *strings.Builder) { sb.WriteByte('%'); t.Element.Serialize(sb) }
func (t SetType) String() string                { return "{" + t.Element.String() + "}" }
func (SetType) IsValueBased() bool              { return false }

// DictType is Dict(K,V).
type DictType struct{ Key, Value Type }

func (DictType) isType() {}
func (t DictType) Equals(other Type) bool {
	o, ok := other.(DictType)
	return ok && t.Key.Equals(o.Key) && t.Value.Equals(o.Value)
}
func (t DictType) Serialize(sb *strings.Builder) {
	sb.WriteByte('@')
	t.Key.Serialize(sb)
	t.Value.Serialize(sb)
}
func (t DictType) String() string   { return "{" + t.Key.String() + ": " + t.Value.String() + "}" }
func (DictType) IsValueBased() bool { return false }

// IterType is Iter(E).
type IterType struct{ Element Type }

func (IterType) isType() {}
func (t IterType) Equals(other Type) bool {
	o, ok := other.(IterType)
	return ok && t.Element.Equals(o.Element)
}
func (t IterType) Serialize(sb *strings.Builder) { sb.WriteByte('*'); t.Element.Serialize(sb) }
func (t IterType) String() string                { return "*" + t.Element.String() }
func (IterType) IsValueBased() bool              { return false }

// FuncType is Func(P0...Pm-1, R).
type FuncType struct {
	Params []Type
	Return Type
}

func (FuncType) isType() {}
func (t FuncType) Equals(other Type) bool {
	o, ok := other.(FuncType)
	if !ok || len(o.Params) != len(t.Params) || !t.Return.Equals(o.Return) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equals(o.Params[i]) {
			return false
		}
	}
	return true
}
func (t FuncType) Serialize(sb *strings.Builder) {
	sb.WriteByte('$')
	for _, p := range t.Params {
		p.Serialize(sb)
	}
	sb.WriteByte(':')
	t.Return.Serialize(sb)
}
func (t FuncType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + "): " + t.Return.String()
}
func (FuncType) IsValueBased() bool { return false }
