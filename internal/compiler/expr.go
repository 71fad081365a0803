package compiler

import (
	"github.com/Yaossg/porkchop/internal/ast"
	"github.com/Yaossg/porkchop/internal/diagnostic"
	"github.com/Yaossg/porkchop/internal/resolve"
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/internal/token"
	"github.com/Yaossg/porkchop/internal/types"
	"github.com/Yaossg/porkchop/vm"
)

func (p *Parser) typeErrorf(seg source.Segment, format string, args ...interface{}) {
	p.diags.Errorf(diagnostic.SemanticType, &seg, format, args...)
}

// ParseExpr parses one full expression starting at ASSIGNMENT, the bottom
// of the precedence ladder.
func (p *Parser) ParseExpr() ast.Node {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Node {
	left := p.parseLor()
	if p.atPunct("=") {
		p.advance()
		value := p.parseAssignment()
		return p.storeTo(left, value)
	}
	if p.at(token.Punct) {
		if base, ok := compoundOps[p.cur().Value.Lexeme]; ok {
			seg := p.advance().Segment
			rhs := p.parseAssignment()
			if n, ok := p.collectionStep(left, rhs, base, seg); ok {
				return n
			}
			// `x op= v` desugars to `x = x op v`; an indexed target
			// re-evaluates its operand and index expressions.
			return p.storeTo(left, p.binaryFor(base, left, rhs, seg))
		}
	}
	return left
}

// collectionStep lowers `xs += v` / `xs -= v` on a collection receiver to
// the ADD/REMOVE opcodes instead of arithmetic desugaring: += inserts into
// a List or Set, -= removes from a Set by element or a Dict by key.
func (p *Parser) collectionStep(left, rhs ast.Node, base string, seg source.Segment) (ast.Node, bool) {
	full := cover(left.Segment(), rhs.Segment())
	switch t := left.Type().(type) {
	case types.ListType:
		if base == "+" {
			if !types.Assignable(t.Element, rhs.Type()) {
				p.typeErrorf(seg, "cannot add %s to %s", rhs.Type(), left.Type())
			}
			return ast.NewCollectionAdd(full, left, coerce(rhs, t.Element)), true
		}
	case types.SetType:
		switch base {
		case "+":
			if !types.Assignable(t.Element, rhs.Type()) {
				p.typeErrorf(seg, "cannot add %s to %s", rhs.Type(), left.Type())
			}
			return ast.NewCollectionAdd(full, left, coerce(rhs, t.Element)), true
		case "-":
			if !types.Assignable(t.Element, rhs.Type()) {
				p.typeErrorf(seg, "cannot remove %s from %s", rhs.Type(), left.Type())
			}
			return ast.NewCollectionRemove(full, left, coerce(rhs, t.Element)), true
		}
	case types.DictType:
		if base == "-" {
			if !types.Assignable(t.Key, rhs.Type()) {
				p.typeErrorf(seg, "cannot remove key %s from %s", rhs.Type(), left.Type())
			}
			return ast.NewCollectionRemove(full, left, coerce(rhs, t.Key)), true
		}
	}
	return nil, false
}

// storeTo checks and builds the store for `target = value`, shared by plain
// and compound assignment.
func (p *Parser) storeTo(left, value ast.Node) ast.Node {
	switch target := left.(type) {
	case *ast.LocalRef:
		if !types.Assignable(target.Type(), value.Type()) {
			p.typeErrorf(target.Segment(), "cannot assign %s to %s", value.Type(), target.Type())
		}
		return ast.NewStoreLocal(cover(target.Segment(), value.Segment()), target.Index, coerce(value, target.Type()))
	case *ast.ListIndex:
		if !types.Assignable(target.Type(), value.Type()) {
			p.typeErrorf(value.Segment(), "cannot assign %s to %s", value.Type(), target.Type())
		}
		return ast.NewListStore(cover(target.Segment(), value.Segment()), target.Operand, target.IndexExpr, coerce(value, target.Type()))
	case *ast.DictIndex:
		if !types.Assignable(target.Type(), value.Type()) {
			p.typeErrorf(value.Segment(), "cannot assign %s to %s", value.Type(), target.Type())
		}
		return ast.NewDictStore(cover(target.Segment(), value.Segment()), target.Operand, target.KeyExpr, coerce(value, target.Type()))
	default:
		p.typeErrorf(left.Segment(), "invalid assignment target")
		return left
	}
}

// binaryFor builds the binary node for lexeme at the matching rung of the
// precedence ladder, used by compound assignment's desugaring.
func (p *Parser) binaryFor(lexeme string, left, right ast.Node, opSeg source.Segment) ast.Node {
	switch lexeme {
	case "&", "|", "^":
		return p.bitwise(left, right, lexeme, opSeg)
	case "<<", ">>", ">>>":
		return p.shift(left, right, lexeme, opSeg)
	default:
		return p.arith(left, right, lexeme, opSeg)
	}
}

// coerce inserts an implicit ANY-box wherever the target type is ANY and
// the value isn't already: an ANY slot always holds a box carrying the
// erased static type, whether the boxed value is an unboxed scalar or
// itself a reference.
func coerce(value ast.Node, target types.Type) ast.Node {
	if target.Equals(types.Any) && !value.Type().Equals(types.Any) && !value.Type().Equals(types.Never) {
		return ast.NewAnyBox(value.Segment(), value)
	}
	return value
}

func (p *Parser) parseLor() ast.Node {
	left := p.parseLand()
	for p.atPunct("||") {
		seg := p.advance().Segment
		right := p.parseLand()
		p.requireBool(left)
		p.requireBool(right)
		left = ast.NewLogicalOr(cover(cover(left.Segment(), seg), right.Segment()), left, right)
	}
	return left
}

func (p *Parser) parseLand() ast.Node {
	left := p.parseBitOr()
	for p.atPunct("&&") {
		seg := p.advance().Segment
		right := p.parseBitOr()
		p.requireBool(left)
		p.requireBool(right)
		left = ast.NewLogicalAnd(cover(cover(left.Segment(), seg), right.Segment()), left, right)
	}
	return left
}

func (p *Parser) requireBool(n ast.Node) {
	if !n.Type().Equals(types.Bool) {
		p.typeErrorf(n.Segment(), "expected bool, got %s", n.Type())
	}
}

func (p *Parser) parseBitOr() ast.Node {
	left := p.parseBitXor()
	for p.atPunct("|") {
		seg := p.advance().Segment
		right := p.parseBitXor()
		left = p.bitwise(left, right, "|", seg)
	}
	return left
}

func (p *Parser) parseBitXor() ast.Node {
	left := p.parseBitAnd()
	for p.atPunct("^") {
		seg := p.advance().Segment
		right := p.parseBitAnd()
		left = p.bitwise(left, right, "^", seg)
	}
	return left
}

func (p *Parser) parseBitAnd() ast.Node {
	left := p.parseEquality()
	for p.atPunct("&") {
		seg := p.advance().Segment
		right := p.parseEquality()
		left = p.bitwise(left, right, "&", seg)
	}
	return left
}

func (p *Parser) bitwise(left, right ast.Node, lexeme string, opSeg source.Segment) ast.Node {
	op, _ := bitwiseOp(lexeme)
	if !left.Type().Equals(right.Type()) || !isIntegral(left.Type()) {
		p.typeErrorf(opSeg, "operator %q requires matched integral operands, got %s and %s", lexeme, left.Type(), right.Type())
	}
	return ast.NewArith(cover(left.Segment(), right.Segment()), left.Type(), op, left, right)
}

func isIntegral(t types.Type) bool {
	sc, ok := t.(types.ScalarType)
	return ok && sc.Kind.IsIntegral()
}

func (p *Parser) parseEquality() ast.Node {
	left := p.parseComparison()
	for p.atPunct("==") || p.atPunct("!=") || p.atPunct("===") || p.atPunct("!==") {
		lexeme := p.cur().Value.Lexeme
		seg := p.advance().Segment
		right := p.parseComparison()
		p.requireValue(left)
		p.requireValue(right)
		if !left.Type().Equals(right.Type()) {
			p.typeErrorf(seg, "equality operands must match, got %s and %s", left.Type(), right.Type())
		}
		identity := lexeme == "===" || lexeme == "!=="
		op := cmpOpcode(left.Type(), identity)
		mode := cmpModeFor(lexeme)
		left = ast.NewCompare(cover(cover(left.Segment(), seg), right.Segment()), op, mode, left, right)
	}
	return left
}

func (p *Parser) parseComparison() ast.Node {
	left := p.parseShift()
	for p.atPunct("<") || p.atPunct(">") || p.atPunct("<=") || p.atPunct(">=") {
		lexeme := p.cur().Value.Lexeme
		seg := p.advance().Segment
		right := p.parseShift()
		if !left.Type().Equals(right.Type()) {
			p.typeErrorf(seg, "comparison operands must match, got %s and %s", left.Type(), right.Type())
		} else if !orderable(left.Type()) {
			p.typeErrorf(seg, "operator %q is not defined for %s", lexeme, left.Type())
		}
		op := cmpOpcode(left.Type(), false)
		left = ast.NewCompare(cover(cover(left.Segment(), seg), right.Segment()), op, cmpModeFor(lexeme), left, right)
	}
	return left
}

func (p *Parser) parseShift() ast.Node {
	left := p.parseAddition()
	for p.atPunct("<<") || p.atPunct(">>") || p.atPunct(">>>") {
		lexeme := p.cur().Value.Lexeme
		seg := p.advance().Segment
		right := p.parseAddition()
		left = p.shift(left, right, lexeme, seg)
	}
	return left
}

func (p *Parser) shift(left, right ast.Node, lexeme string, opSeg source.Segment) ast.Node {
	if !isIntegral(left.Type()) || !right.Type().Equals(types.Int) {
		p.typeErrorf(opSeg, "shift requires an integral left operand and int right operand")
	}
	op, _ := shiftOp(lexeme)
	return ast.NewArith(cover(left.Segment(), right.Segment()), left.Type(), op, left, right)
}

// requireValue rejects a NEVER-typed subexpression in a position
// expecting a value; never is never allowed.
func (p *Parser) requireValue(n ast.Node) {
	if n.Type().Equals(types.Never) {
		p.typeErrorf(n.Segment(), "expression of type never cannot be used as a value")
	}
}

func (p *Parser) parseAddition() ast.Node {
	left := p.parseMultiplication()
	for p.atPunct("+") || p.atPunct("-") {
		lexeme := p.cur().Value.Lexeme
		seg := p.advance().Segment
		right := p.parseMultiplication()
		left = p.arith(left, right, lexeme, seg)
	}
	return left
}

func (p *Parser) arith(left, right ast.Node, lexeme string, opSeg source.Segment) ast.Node {
	if lexeme == "+" && (left.Type().Equals(types.String) || right.Type().Equals(types.String)) {
		left = stringify(left)
		right = stringify(right)
		return ast.NewArith(cover(left.Segment(), right.Segment()), types.String, vm.OpSAdd, left, right)
	}
	if !left.Type().Equals(right.Type()) {
		p.typeErrorf(opSeg, "operator %q requires matched operands, got %s and %s", lexeme, left.Type(), right.Type())
		return ast.NewArith(cover(left.Segment(), right.Segment()), left.Type(), 0, left, right)
	}
	op, ok := arithOp(lexeme, left.Type())
	if !ok {
		p.typeErrorf(opSeg, "operator %q is not defined for %s", lexeme, left.Type())
	}
	return ast.NewArith(cover(left.Segment(), right.Segment()), left.Type(), op, left, right)
}

func stringify(n ast.Node) ast.Node {
	if n.Type().Equals(types.String) {
		return n
	}
	if op, ok := stringConvertOp(n.Type()); ok {
		return ast.NewConvert(n.Segment(), types.String, op, n)
	}
	return n
}

func (p *Parser) parseMultiplication() ast.Node {
	left := p.parsePrefix()
	for p.atPunct("*") || p.atPunct("/") || p.atPunct("%") || p.at(token.KwIn) {
		if p.at(token.KwIn) {
			seg := p.advance().Segment
			right := p.parsePrefix()
			// Membership against a Dict is keyed, not element-wise.
			if dt, isDict := right.Type().(types.DictType); isDict {
				if !left.Type().Equals(dt.Key) {
					p.typeErrorf(seg, "'in' left operand must be %s, got %s", dt.Key, left.Type())
				}
			} else if elem, ok := types.ElementOf(right.Type()); !ok {
				p.typeErrorf(seg, "'in' right operand must be iterable, got %s", right.Type())
			} else if !left.Type().Equals(elem) {
				p.typeErrorf(seg, "'in' left operand must be %s, got %s", elem, left.Type())
			}
			left = ast.NewIn(cover(cover(left.Segment(), seg), right.Segment()), left, right)
			continue
		}
		lexeme := p.cur().Value.Lexeme
		seg := p.advance().Segment
		right := p.parsePrefix()
		left = p.arith(left, right, lexeme, seg)
	}
	return left
}

func (p *Parser) parsePrefix() ast.Node {
	if p.at(token.KwSizeof) {
		seg := p.advance().Segment
		operand := p.parsePrefix()
		// Tuple arity is statically known; everything else asks the
		// collection at runtime.
		if tt, ok := operand.Type().(types.TupleType); ok {
			return ast.NewIntLiteral(cover(seg, operand.Segment()), int64(len(tt.Elements)))
		}
		switch operand.Type().(type) {
		case types.ListType, types.SetType, types.DictType:
		default:
			if !operand.Type().Equals(types.String) {
				p.typeErrorf(operand.Segment(), "'sizeof' is not defined for %s", operand.Type())
			}
		}
		return ast.NewSizeof(cover(seg, operand.Segment()), operand)
	}
	if p.atPunct("++") || p.atPunct("--") {
		lexeme := p.cur().Value.Lexeme
		seg := p.advance().Segment
		operand := p.parsePrefix()
		ref, ok := operand.(*ast.LocalRef)
		if !ok || !operand.Type().Equals(types.Int) {
			p.typeErrorf(operand.Segment(), "%q requires an int variable", lexeme)
			return operand
		}
		op := vm.OpInc
		if lexeme == "--" {
			op = vm.OpDec
		}
		return ast.NewStep(cover(seg, operand.Segment()), op, ref.Index)
	}
	if p.atPunct("-") || p.atPunct("!") || p.atPunct("~") {
		lexeme := p.cur().Value.Lexeme
		seg := p.advance().Segment
		operand := p.parsePrefix()
		switch lexeme {
		case "-":
			op, ok := negOp(operand.Type())
			if !ok {
				p.typeErrorf(seg, "unary '-' is not defined for %s", operand.Type())
			}
			return ast.NewUnary(cover(seg, operand.Segment()), operand.Type(), op, operand)
		case "!":
			p.requireBool(operand)
			return ast.NewUnary(cover(seg, operand.Segment()), types.Bool, vm.OpNot, operand)
		case "~":
			if !isIntegral(operand.Type()) {
				p.typeErrorf(seg, "'~' requires an integral operand, got %s", operand.Type())
			}
			return ast.NewUnary(cover(seg, operand.Segment()), operand.Type(), vm.OpInv, operand)
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Node {
	left := p.parsePrimary()
	for {
		switch {
		case p.atPunct("("):
			left = p.parseCall(left)
		case p.atPunct("["):
			left = p.parseIndex(left)
		case p.at(token.KwAs):
			seg := p.advance().Segment
			target := p.parseType()
			left = p.castNode(left, target, seg)
		case p.at(token.KwIs):
			seg := p.advance().Segment
			target := p.parseType()
			left = p.isNode(left, target, seg)
		case p.atPunct("."):
			p.advance()
			callee := p.parsePrimary()
			ft, ok := callee.Type().(types.FuncType)
			var resultType types.Type = types.Never
			if ok && len(ft.Params) >= 1 {
				resultType = types.FuncType{Params: ft.Params[1:], Return: ft.Return}
			} else {
				p.typeErrorf(callee.Segment(), "bind target must be callable with at least one parameter")
			}
			left = ast.NewBind(cover(left.Segment(), callee.Segment()), resultType, callee, []ast.Node{left})
		default:
			return left
		}
	}
}

// castNode applies the `as T` rule: permitted when assignable, between
// ANY and a concrete type, or between convertible scalar kinds. STRING
// never converts to or from a numeric scalar.
func (p *Parser) castNode(operand ast.Node, target types.Type, opSeg source.Segment) ast.Node {
	p.requireValue(operand)
	from := operand.Type()
	seg := cover(operand.Segment(), opSeg)
	if from.Equals(target) {
		return operand
	}
	if from.Equals(types.Any) {
		return ast.NewAsExpr(seg, operand, target)
	}
	if target.Equals(types.Any) {
		return ast.NewAnyBox(seg, operand)
	}
	fs, fok := from.(types.ScalarType)
	ts, tok := target.(types.ScalarType)
	if fok && tok {
		if ops, ok := convertOps(fs.Kind, ts.Kind); ok {
			n := operand
			for _, op := range ops {
				n = ast.NewConvert(seg, target, op, n)
			}
			if len(ops) == 0 {
				n = ast.NewRetype(seg, target, n)
			}
			return n
		}
	}
	if types.Assignable(target, from) {
		return ast.NewAsExpr(seg, operand, target)
	}
	p.typeErrorf(seg, "cannot cast %s to %s", from, target)
	return operand
}

// isNode applies the `is T` rule: a real dynamic check only for an ANY
// operand; anywhere else the answer is statically known and folds.
func (p *Parser) isNode(operand ast.Node, target types.Type, opSeg source.Segment) ast.Node {
	p.requireValue(operand)
	seg := cover(operand.Segment(), opSeg)
	if operand.Type().Equals(types.Any) {
		return ast.NewIsExpr(seg, operand, target)
	}
	return ast.NewIsFold(seg, operand, operand.Type().Equals(target))
}

func (p *Parser) parseCall(callee ast.Node) ast.Node {
	p.advance() // '('
	var args []ast.Node
	for !p.atPunct(")") {
		args = append(args, p.ParseExpr())
		if p.atPunct(",") {
			p.advance()
		} else {
			break
		}
	}
	end := p.expectPunct(")")
	ft, ok := callee.Type().(types.FuncType)
	result := types.Type(types.Never)
	if ok {
		result = ft.Return
		if len(ft.Params) != len(args) {
			p.typeErrorf(callee.Segment(), "expected %d argument(s), got %d", len(ft.Params), len(args))
		} else {
			for i, a := range args {
				if !types.Assignable(ft.Params[i], a.Type()) {
					p.typeErrorf(a.Segment(), "argument %d: cannot assign %s to %s", i, a.Type(), ft.Params[i])
				}
				args[i] = coerce(a, ft.Params[i])
			}
		}
	} else {
		p.typeErrorf(callee.Segment(), "not callable: %s", callee.Type())
	}
	return ast.NewCall(cover(callee.Segment(), end.Segment), result, callee, args)
}

func (p *Parser) parseIndex(operand ast.Node) ast.Node {
	p.advance() // '['
	idx := p.ParseExpr()
	end := p.expectPunct("]")
	seg := cover(operand.Segment(), end.Segment)
	switch t := operand.Type().(type) {
	case types.TupleType:
		c, ok := idx.ConstValue()
		if !ok || c.Kind != ast.ConstInt {
			p.typeErrorf(idx.Segment(), "tuple index must be a constant int")
			return ast.NewTupleIndex(seg, types.None, operand, 0)
		}
		if c.Int < 0 || int(c.Int) >= len(t.Elements) {
			p.typeErrorf(idx.Segment(), "tuple index %d out of range", c.Int)
			return ast.NewTupleIndex(seg, types.None, operand, 0)
		}
		return ast.NewTupleIndex(seg, t.Elements[c.Int], operand, int(c.Int))
	case types.ListType:
		if !idx.Type().Equals(types.Int) {
			p.typeErrorf(idx.Segment(), "list index must be int, got %s", idx.Type())
		}
		return ast.NewListIndex(seg, t.Element, operand, idx)
	case types.DictType:
		if !idx.Type().Equals(t.Key) {
			p.typeErrorf(idx.Segment(), "dict key must be %s, got %s", t.Key, idx.Type())
		}
		return ast.NewDictIndex(seg, t.Value, operand, idx)
	default:
		p.typeErrorf(operand.Segment(), "type %s is not indexable", operand.Type())
		return ast.NewListIndex(seg, types.None, operand, idx)
	}
}

func (p *Parser) parsePrimary() ast.Node {
	t := p.cur()
	switch t.Kind {
	case token.IntLiteral:
		p.advance()
		return ast.NewIntLiteral(t.Segment, t.Value.Int)
	case token.FloatLiteral:
		p.advance()
		return ast.NewFloatLiteral(t.Segment, t.Value.Float)
	case token.CharLiteral:
		p.advance()
		return ast.NewCharLiteral(t.Segment, t.Value.Char)
	case token.StringLiteral:
		p.advance()
		return ast.NewStringLiteral(t.Segment, t.Value.String)
	case token.KwTrue:
		p.advance()
		return ast.NewBoolLiteral(t.Segment, true)
	case token.KwFalse:
		p.advance()
		return ast.NewBoolLiteral(t.Segment, false)
	case token.Identifier:
		p.advance()
		return p.resolveIdent(t)
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwLet:
		return p.parseLet()
	case token.KwFn:
		return p.parseFnDecl()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwBreak:
		p.advance()
		if len(p.loopHooks) == 0 {
			p.errorf("'break' outside a loop")
		} else {
			h := p.loopHooks[len(p.loopHooks)-1]
			h.Breaks = append(h.Breaks, ast.NewDiscard(t.Segment))
		}
		return ast.NewBreak(t.Segment)
	case token.KwYield:
		return p.parseYield()
	case token.Punct:
		switch t.Value.Lexeme {
		case "{":
			return p.parseBlock()
		case "(":
			return p.parseParenOrTuple()
		case "[":
			return p.parseListLit()
		case "@":
			return p.parseDictLit()
		case "%":
			return p.parseSetLit()
		case "$":
			return p.parseLambda()
		}
	}
	p.errorf("unexpected token %s", t.Kind)
	p.advance()
	return ast.NewDiscard(t.Segment)
}

func (p *Parser) resolveIdent(t token.Token) ast.Node {
	name := t.Value.Lexeme
	if name == "_" {
		return ast.NewDiscard(t.Segment)
	}
	res := p.ctx().Lookup(name)
	switch res.Kind {
	case resolve.LocalVar:
		return ast.NewLocalRef(t.Segment, res.Index, res.Type, name)
	case resolve.DeclaredFunc, resolve.DefinedFunc:
		return ast.NewFuncRef(t.Segment, res.Index, res.Type, name)
	default:
		p.diags.Errorf(diagnostic.SemanticResolution, &t.Segment, "undefined name %q", name)
		return ast.NewDiscard(t.Segment)
	}
}

func (p *Parser) parseParenOrTuple() ast.Node {
	start := p.advance() // '('
	var elems []ast.Node
	for !p.atPunct(")") {
		elems = append(elems, p.ParseExpr())
		if p.atPunct(",") {
			p.advance()
		} else {
			break
		}
	}
	end := p.expectPunct(")")
	seg := cover(start.Segment, end.Segment)
	if len(elems) == 1 {
		return elems[0]
	}
	elemTypes := make([]types.Type, len(elems))
	for i, e := range elems {
		elemTypes[i] = e.Type()
	}
	return ast.NewTupleLit(seg, types.TupleType{Elements: elemTypes}, elems)
}

func (p *Parser) parseListLit() ast.Node {
	start := p.advance() // '['
	var elems []ast.Node
	for !p.atPunct("]") {
		elems = append(elems, p.ParseExpr())
		if p.atPunct(",") {
			p.advance()
		} else {
			break
		}
	}
	end := p.expectPunct("]")
	seg := cover(start.Segment, end.Segment)
	elemType := elementTypeOf(p, elems, seg)
	return ast.NewListLit(seg, types.ListType{Element: elemType}, elems)
}

func (p *Parser) parseSetLit() ast.Node {
	start := p.advance() // '%'
	p.expectPunct("[")
	var elems []ast.Node
	for !p.atPunct("]") {
		elems = append(elems, p.ParseExpr())
		if p.atPunct(",") {
			p.advance()
		} else {
			break
		}
	}
	end := p.expectPunct("]")
	seg := cover(start.Segment, end.Segment)
	elemType := elementTypeOf(p, elems, seg)
	return ast.NewSetLit(seg, types.SetType{Element: elemType}, elems)
}

func elementTypeOf(p *Parser, elems []ast.Node, seg source.Segment) types.Type {
	if len(elems) == 0 {
		return types.Any
	}
	t := elems[0].Type()
	for _, e := range elems[1:] {
		u, err := types.EitherOf(t, e.Type())
		if err != nil {
			p.typeErrorf(seg, "mismatched element types: %v", err)
			continue
		}
		t = u
	}
	return t
}

func (p *Parser) parseDictLit() ast.Node {
	start := p.advance() // '@'
	p.expectPunct("[")
	var entries []ast.DictEntry
	for !p.atPunct("]") {
		k := p.ParseExpr()
		p.expectPunct(":")
		v := p.ParseExpr()
		entries = append(entries, ast.DictEntry{Key: k, Value: v})
		if p.atPunct(",") {
			p.advance()
		} else {
			break
		}
	}
	end := p.expectPunct("]")
	seg := cover(start.Segment, end.Segment)
	var keyType, valType types.Type = types.Any, types.Any
	if len(entries) > 0 {
		keyType, valType = entries[0].Key.Type(), entries[0].Value.Type()
		for _, e := range entries[1:] {
			if ku, err := types.EitherOf(keyType, e.Key.Type()); err == nil {
				keyType = ku
			}
			if vu, err := types.EitherOf(valType, e.Value.Type()); err == nil {
				valType = vu
			}
		}
	}
	return ast.NewDictLit(seg, types.DictType{Key: keyType, Value: valType}, entries)
}
