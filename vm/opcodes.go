package vm

// Op is a bytecode opcode, one entry of Porkchop's ~80-mnemonic table.
type Op byte

const (
	OpNop Op = iota
	OpDup
	OpPop
	OpJmp
	OpJmp0
	OpReturn
	OpYield

	OpConst
	OpSConst
	OpFConst

	OpLoad
	OpStore
	OpTLoad
	OpLLoad
	OpLStore
	OpDLoad
	OpDStore

	OpCall
	OpBind

	OpLocal

	OpAs
	OpIs
	OpAny

	OpI2B
	OpI2C
	OpI2F
	OpF2I

	OpTuple
	OpList
	OpSet
	OpDict

	OpINeg
	OpFNeg
	OpNot
	OpInv

	OpOr
	OpXor
	OpAnd
	OpShl
	OpShr
	OpUshr

	OpSAdd
	OpIAdd
	OpFAdd
	OpISub
	OpFSub
	OpIMul
	OpFMul
	OpIDiv
	OpFDiv
	OpIRem
	OpFRem

	OpInc
	OpDec

	OpUCmp
	OpICmp
	OpFCmp
	OpSCmp
	OpOCmp

	OpIter
	OpMove
	OpGet

	OpI2S
	OpF2S
	OpB2S
	OpZ2S
	OpC2S
	OpO2S

	OpAdd
	OpRemove
	OpIn
	OpSizeof

	OpFHash
	OpOHash

	OpSjoin

	// Fused superinstructions produced only by the in-memory sink's
	// optional peephole; rewrites that preserve the unfused semantics.
	// They carry no mnemonic and are never serialized to the binary or
	// text forms.
	OpFusedCmpJmp0
	OpFusedCall

	opCount // sentinel, not a real opcode
)

// CmpMode is the 0..5 sub-opcode carried by every *CMP instruction,
// encoding {EQ,NE,LT,GT,LE,GE}.
type CmpMode byte

const (
	CmpEQ CmpMode = iota
	CmpNE
	CmpLT
	CmpGT
	CmpLE
	CmpGE
)

func (m CmpMode) String() string {
	return [...]string{"eq", "ne", "lt", "gt", "le", "ge"}[m]
}

var mnemonics = [opCount]string{
	OpNop: "nop", OpDup: "dup", OpPop: "pop", OpJmp: "jmp", OpJmp0: "jmp0",
	OpReturn: "return", OpYield: "yield",
	OpConst: "const", OpSConst: "sconst", OpFConst: "fconst",
	OpLoad: "load", OpStore: "store", OpTLoad: "tload", OpLLoad: "lload",
	OpLStore: "lstore", OpDLoad: "dload", OpDStore: "dstore",
	OpCall: "call", OpBind: "bind",
	OpLocal: "local",
	OpAs:    "as", OpIs: "is", OpAny: "any",
	OpI2B: "i2b", OpI2C: "i2c", OpI2F: "i2f", OpF2I: "f2i",
	OpTuple: "tuple", OpList: "list", OpSet: "set", OpDict: "dict",
	OpINeg: "ineg", OpFNeg: "fneg", OpNot: "not", OpInv: "inv",
	OpOr: "or", OpXor: "xor", OpAnd: "and", OpShl: "shl", OpShr: "shr", OpUshr: "ushr",
	OpSAdd: "sadd", OpIAdd: "iadd", OpFAdd: "fadd", OpISub: "isub", OpFSub: "fsub",
	OpIMul: "imul", OpFMul: "fmul", OpIDiv: "idiv", OpFDiv: "fdiv", OpIRem: "irem", OpFRem: "frem",
	OpInc: "inc", OpDec: "dec",
	OpUCmp: "ucmp", OpICmp: "icmp", OpFCmp: "fcmp", OpSCmp: "scmp", OpOCmp: "ocmp",
	OpIter: "iter", OpMove: "move", OpGet: "get",
	OpI2S: "i2s", OpF2S: "f2s", OpB2S: "b2s", OpZ2S: "z2s", OpC2S: "c2s", OpO2S: "o2s",
	OpAdd: "add", OpRemove: "remove", OpIn: "in", OpSizeof: "sizeof",
	OpFHash: "fhash", OpOHash: "ohash",
	OpSjoin: "sjoin",
}

func (op Op) String() string {
	if int(op) < len(mnemonics) && mnemonics[op] != "" {
		return mnemonics[op]
	}
	return "???"
}

var mnemonicIndex = func() map[string]Op {
	m := make(map[string]Op, len(mnemonics))
	for op, name := range mnemonics {
		if name != "" {
			m[name] = Op(op)
		}
	}
	return m
}()

// LookupMnemonic returns the Op for a textual mnemonic, used by the text
// assembly reader (internal/emit).
func LookupMnemonic(name string) (Op, bool) {
	op, ok := mnemonicIndex[name]
	return op, ok
}

// OperandKind classifies how many cells/bytes follow an opcode. The
// encoder and decoder in internal/emit share this single classification.
type OperandKind int

const (
	OperandNone     OperandKind = iota
	OperandIndex                // varint / size_t
	OperandLabel                // varint label, rewritten to an instruction offset
	OperandType                 // a serialized Type
	OperandTypeSize             // a serialized Type followed by a varint size
	OperandConst                // CONST's raw 64-bit payload
	OperandCmpMode              // one CmpMode byte
)

func (op Op) OperandKind() OperandKind {
	switch op {
	case OpLoad, OpStore, OpTLoad, OpInc, OpDec, OpSConst, OpFConst, OpBind, OpSjoin:
		return OperandIndex
	case OpJmp, OpJmp0:
		return OperandLabel
	case OpAs, OpIs, OpAny, OpLocal, OpTuple:
		return OperandType
	case OpList, OpSet, OpDict:
		return OperandTypeSize
	case OpConst:
		return OperandConst
	case OpUCmp, OpICmp, OpFCmp, OpSCmp, OpOCmp:
		return OperandCmpMode
	default:
		return OperandNone
	}
}
