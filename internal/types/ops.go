package types

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
)

// Equals is structural equality, deep.
func Equals(a, b Type) bool { return a.Equals(b) }

// Assignable reports whether a value of type src may be assigned/passed
// where dst is expected:
//
//	NONE accepts any non-NEVER; NEVER accepts nothing and is assignable
//	into anything; ANY accepts any non-NEVER and is assigned only back
//	through an explicit cast; Func is covariant in return and invariant in
//	parameters (except a NEVER-returning Func assigns into any Func of
//	matching parameters).
func Assignable(dst, src Type) bool {
	if src.Equals(ScalarType{NEVER}) {
		return true
	}
	if dst.Equals(src) {
		return true
	}
	if dst.Equals(ScalarType{NONE}) {
		return true
	}
	if dst.Equals(ScalarType{NEVER}) {
		return false
	}
	if dst.Equals(ScalarType{ANY}) {
		return true
	}
	df, dok := dst.(FuncType)
	sf, sok := src.(FuncType)
	if dok && sok && len(df.Params) == len(sf.Params) {
		for i := range df.Params {
			if !df.Params[i].Equals(sf.Params[i]) {
				return false
			}
		}
		if sf.Return.Equals(ScalarType{NEVER}) {
			return true
		}
		return Assignable(df.Return, sf.Return)
	}
	return false
}

// ElementOf returns the element type of List/Set/Iter, or Tuple(K,V) for a
// Dict, and ok=false for any other type.
func ElementOf(t Type) (Type, bool) {
	switch v := t.(type) {
	case ListType:
		return v.Element, true
	case SetType:
		return v.Element, true
	case IterType:
		return v.Element, true
	case DictType:
		return TupleType{Elements: []Type{v.Key, v.Value}}, true
	default:
		return nil, false
	}
}

// EitherOf returns the common supertype of a and b: equal types unify to
// themselves; NEVER unifies to the other operand; if either is NONE the
// result is NONE; otherwise unification fails.
func EitherOf(a, b Type) (Type, error) {
	if a.Equals(b) {
		return a, nil
	}
	if a.Equals(ScalarType{NEVER}) {
		return b, nil
	}
	if b.Equals(ScalarType{NEVER}) {
		return a, nil
	}
	if a.Equals(ScalarType{NONE}) || b.Equals(ScalarType{NONE}) {
		return ScalarType{NONE}, nil
	}
	return nil, fmt.Errorf("cannot unify %s and %s", a, b)
}

// Serialize renders t to its compact descriptor string.
func Serialize(t Type) string {
	var sb strings.Builder
	t.Serialize(&sb)
	return sb.String()
}

var letterToScalar = func() map[byte]Scalar {
	m := make(map[byte]Scalar, len(scalarLetters))
	for s, l := range scalarLetters {
		m[l] = Scalar(s)
	}
	return m
}()

// Deserialize parses a descriptor string back into a Type. It is the
// strict inverse of Serialize: Deserialize(Serialize(t)) == t for every
// well-formed t.
func Deserialize(s string) (Type, error) {
	t, rest, err := deserializeOne(s)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, fmt.Errorf("trailing descriptor bytes: %q", rest)
	}
	return t, nil
}

func deserializeOne(s string) (Type, string, error) {
	if s == "" {
		return nil, "", fmt.Errorf("empty type descriptor")
	}
	switch s[0] {
	case '[':
		e, rest, err := deserializeOne(s[1:])
		if err != nil {
			return nil, "", err
		}
		return ListType{Element: e}, rest, nil
	case '%':
		e, rest, err := deserializeOne(s[1:])
		if err != nil {
			return nil, "", err
		}
		return SetType{Element: e}, rest, nil
	case '*':
		e, rest, err := deserializeOne(s[1:])
		if err != nil {
			return nil, "", err
		}
		return IterType{Element: e}, rest, nil
	case '@':
		k, rest, err := deserializeOne(s[1:])
		if err != nil {
			return nil, "", err
		}
		v, rest, err := deserializeOne(rest)
		if err != nil {
			return nil, "", err
		}
		return DictType{Key: k, Value: v}, rest, nil
	case '(':
		rest := s[1:]
		var elems []Type
		for {
			if rest == "" {
				return nil, "", fmt.Errorf("unterminated tuple descriptor")
			}
			if rest[0] == ')' {
				rest = rest[1:]
				break
			}
			var e Type
			var err error
			e, rest, err = deserializeOne(rest)
			if err != nil {
				return nil, "", err
			}
			elems = append(elems, e)
		}
		if len(elems) < 2 {
			return nil, "", fmt.Errorf("tuple descriptor needs >= 2 elements")
		}
		return TupleType{Elements: elems}, rest, nil
	case '$':
		rest := s[1:]
		var params []Type
		for rest != "" && rest[0] != ':' {
			var p Type
			var err error
			p, rest, err = deserializeOne(rest)
			if err != nil {
				return nil, "", err
			}
			params = append(params, p)
		}
		if rest == "" || rest[0] != ':' {
			return nil, "", fmt.Errorf("function descriptor missing ':'")
		}
		ret, rest, err := deserializeOne(rest[1:])
		if err != nil {
			return nil, "", err
		}
		return FuncType{Params: params, Return: ret}, rest, nil
	default:
		if sc, ok := letterToScalar[s[0]]; ok {
			return ScalarType{Kind: sc}, s[1:], nil
		}
		return nil, "", fmt.Errorf("invalid type descriptor byte %q", s[0])
	}
}

// Numeric is a constraint covering the Go integer and float types that
// represent Porkchop's arithmetic scalars.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// ArithmeticKinds enumerates the scalar kinds whose Go representations
// Numeric covers. The vm's arithmetic opcodes are written per type and do
// not use it.
var ArithmeticKinds = [...]Scalar{BYTE, INT, FLOAT}
