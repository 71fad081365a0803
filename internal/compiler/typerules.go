package compiler

import (
	"github.com/Yaossg/porkchop/internal/types"
	"github.com/Yaossg/porkchop/vm"
)

// arithOp picks the type-specific opcode for `+ - * / %`: matched
// arithmetic operands, or `+` with either side STRING producing a
// string-concatenation result (SADD) after stringifying the other operand.
func arithOp(lexeme string, t types.Type) (vm.Op, bool) {
	sc, ok := t.(types.ScalarType)
	if !ok {
		return 0, false
	}
	switch sc.Kind {
	case types.INT, types.BYTE:
		switch lexeme {
		case "+":
			return vm.OpIAdd, true
		case "-":
			return vm.OpISub, true
		case "*":
			return vm.OpIMul, true
		case "/":
			return vm.OpIDiv, true
		case "%":
			return vm.OpIRem, true
		}
	case types.FLOAT:
		switch lexeme {
		case "+":
			return vm.OpFAdd, true
		case "-":
			return vm.OpFSub, true
		case "*":
			return vm.OpFMul, true
		case "/":
			return vm.OpFDiv, true
		case "%":
			return vm.OpFRem, true
		}
	case types.STRING:
		if lexeme == "+" {
			return vm.OpSAdd, true
		}
	}
	return 0, false
}

// bitwiseOp picks `& | ^`'s opcode: integral (INT or BYTE) only.
func bitwiseOp(lexeme string) (vm.Op, bool) {
	switch lexeme {
	case "&":
		return vm.OpAnd, true
	case "|":
		return vm.OpOr, true
	case "^":
		return vm.OpXor, true
	}
	return 0, false
}

// shiftOp picks `<< >> >>>`'s opcode.
func shiftOp(lexeme string) (vm.Op, bool) {
	switch lexeme {
	case "<<":
		return vm.OpShl, true
	case ">>":
		return vm.OpShr, true
	case ">>>":
		return vm.OpUshr, true
	}
	return 0, false
}

// cmpOpcode picks the *CMP family opcode for ordering/equality
// comparisons depending on the compared operands' type. identity is the
// `===`/`!==` family: indistinguishable from `==`/`!=` on value scalars,
// but forced to pointer identity (UCMP on the raw slots) for reference
// operands.
func cmpOpcode(t types.Type, identity bool) vm.Op {
	if sc, ok := t.(types.ScalarType); ok {
		switch sc.Kind {
		case types.BOOL:
			return vm.OpUCmp
		case types.BYTE, types.INT, types.CHAR:
			return vm.OpICmp
		case types.FLOAT:
			return vm.OpFCmp
		case types.STRING:
			if identity {
				return vm.OpUCmp
			}
			return vm.OpSCmp
		case types.ANY, types.NONE, types.NEVER:
			// fall through to the reference rule below
		}
	}
	if identity {
		return vm.OpUCmp
	}
	return vm.OpOCmp
}

// orderable reports whether t supports `< > <= >=` (matched arithmetic /
// char / byte / string only).
func orderable(t types.Type) bool {
	sc, ok := t.(types.ScalarType)
	if !ok {
		return false
	}
	switch sc.Kind {
	case types.BYTE, types.INT, types.FLOAT, types.CHAR, types.STRING:
		return true
	}
	return false
}

func cmpModeFor(lexeme string) vm.CmpMode {
	switch lexeme {
	case "==", "===":
		return vm.CmpEQ
	case "!=", "!==":
		return vm.CmpNE
	case "<":
		return vm.CmpLT
	case ">":
		return vm.CmpGT
	case "<=":
		return vm.CmpLE
	case ">=":
		return vm.CmpGE
	default:
		return vm.CmpEQ
	}
}

// negOp picks prefix `-`'s opcode: INT/BYTE negate via INEG, FLOAT via FNEG.
func negOp(t types.Type) (vm.Op, bool) {
	sc, ok := t.(types.ScalarType)
	if !ok {
		return 0, false
	}
	switch sc.Kind {
	case types.INT, types.BYTE:
		return vm.OpINeg, true
	case types.FLOAT:
		return vm.OpFNeg, true
	}
	return 0, false
}

// compoundOps maps each compound-assignment lexeme to the plain operator it
// desugars through: `x op= v` parses as `x = x op v`.
var compoundOps = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "%=": "%",
	"&=": "&", "|=": "|", "^=": "^",
	"<<=": "<<", ">>=": ">>", ">>>=": ">>>",
}

// convertOps is the opcode chain that converts a value-scalar from one
// kind to another under an explicit `as`. An empty
// chain with ok=true means the two kinds share a representation and the
// cast is a pure retype. ok=false rejects the cast (notably everything
// involving STRING or BOOL, and FLOAT<->CHAR, which no rule covers).
func convertOps(from, to types.Scalar) ([]vm.Op, bool) {
	switch from {
	case types.INT:
		switch to {
		case types.FLOAT:
			return []vm.Op{vm.OpI2F}, true
		case types.BYTE:
			return []vm.Op{vm.OpI2B}, true
		case types.CHAR:
			return []vm.Op{vm.OpI2C}, true
		}
	case types.BYTE:
		switch to {
		case types.INT:
			return nil, true
		case types.FLOAT:
			return []vm.Op{vm.OpI2F}, true
		case types.CHAR:
			return []vm.Op{vm.OpI2C}, true
		}
	case types.CHAR:
		switch to {
		case types.INT:
			return nil, true
		case types.BYTE:
			return []vm.Op{vm.OpI2B}, true
		}
	case types.FLOAT:
		switch to {
		case types.INT:
			return []vm.Op{vm.OpF2I}, true
		case types.BYTE:
			return []vm.Op{vm.OpF2I, vm.OpI2B}, true
		}
	}
	return nil, false
}

// stringConvertOp picks the S-conversion opcode t needs to participate
// in a STRING `+`. STRING itself needs none.
func stringConvertOp(t types.Type) (vm.Op, bool) {
	sc, ok := t.(types.ScalarType)
	if !ok {
		return vm.OpO2S, true
	}
	switch sc.Kind {
	case types.INT:
		return vm.OpI2S, true
	case types.FLOAT:
		return vm.OpF2S, true
	case types.BYTE:
		return vm.OpB2S, true
	case types.BOOL:
		return vm.OpZ2S, true
	case types.CHAR:
		return vm.OpC2S, true
	case types.STRING:
		return 0, false
	default:
		return vm.OpO2S, true
	}
}
