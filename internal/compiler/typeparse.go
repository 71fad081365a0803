package compiler

import (
	"github.com/Yaossg/porkchop/internal/token"
	"github.com/Yaossg/porkchop/internal/types"
)

// parseType parses a type annotation, mirroring the surface syntax to each
// Type variant's own String() rendering: `[T]` list, `{T}` set, `{K: V}`
// dict, `*T` iter, `(T0, T1, ...)` tuple (or a plain grouped type for a
// single element), `(P0, ...): R` func.
func (p *Parser) parseType() types.Type {
	switch {
	case p.atPunct("["):
		p.advance()
		e := p.parseType()
		p.expectPunct("]")
		return types.ListType{Element: e}
	case p.atPunct("*"):
		p.advance()
		return types.IterType{Element: p.parseType()}
	case p.atPunct("{"):
		p.advance()
		k := p.parseType()
		if p.atPunct(":") {
			p.advance()
			v := p.parseType()
			p.expectPunct("}")
			return types.DictType{Key: k, Value: v}
		}
		p.expectPunct("}")
		return types.SetType{Element: k}
	case p.atPunct("("):
		p.advance()
		var elems []types.Type
		for !p.atPunct(")") {
			elems = append(elems, p.parseType())
			if p.atPunct(",") {
				p.advance()
			} else {
				break
			}
		}
		p.expectPunct(")")
		if p.atPunct(":") {
			p.advance()
			ret := p.parseType()
			return types.FuncType{Params: elems, Return: ret}
		}
		if len(elems) == 1 {
			return elems[0]
		}
		return types.TupleType{Elements: elems}
	default:
		return p.parseScalarType()
	}
}

func (p *Parser) parseScalarType() types.Type {
	t := p.cur()
	switch t.Kind {
	case token.KwAny:
		p.advance()
		return types.Any
	case token.KwNone:
		p.advance()
		return types.None
	case token.KwNever:
		p.advance()
		return types.Never
	case token.KwBool:
		p.advance()
		return types.Bool
	case token.KwByte:
		p.advance()
		return types.Byte
	case token.KwInt:
		p.advance()
		return types.Int
	case token.KwFloat:
		p.advance()
		return types.Float
	case token.KwChar:
		p.advance()
		return types.Char
	case token.KwString:
		p.advance()
		return types.String
	default:
		p.errorf("expected a type, got %s", t.Kind)
		p.advance()
		return types.None
	}
}
