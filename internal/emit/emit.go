// Package emit implements the bytecode Assembler:
// an abstract sink realised by three concrete forms (in-memory instruction
// list, compact binary file, human-readable text), sharing a deduplicated
// string pool and function-prototype table.
package emit

import (
	"github.com/Yaossg/porkchop/internal/types"
	"github.com/Yaossg/porkchop/vm"
)

// Assembler is the capability set every sink realises: emit-opcode,
// emit-label, register-type/prototype, begin/end function. One interface,
// three realisations.
type Assembler interface {
	// PushConstBool/Int/Float push the immediate value with an implicit
	// CONST opcode (bool/int bit-pattern, float via bitcast to its 64-bit
	// representation).
	PushConstBool(v bool)
	PushConstInt(v int64)
	PushConstFloat(v float64)
	// PushString emits SCONST after interning s in the shared string pool.
	PushString(s string)
	// Emit writes an opcode with no operand.
	Emit(op vm.Op)
	// EmitIndex writes an opcode with a size_t operand (LOAD/STORE/...).
	EmitIndex(op vm.Op, index int)
	// EmitLabel writes an opcode referencing a label allocated by NewLabel.
	EmitLabel(op vm.Op, label int)
	// EmitType writes an opcode with a serialised-type operand.
	EmitType(op vm.Op, t types.Type)
	// EmitTypeSize writes an opcode with a (type, size) operand pair, used
	// by the LIST/SET/DICT constructors.
	EmitTypeSize(op vm.Op, t types.Type, size int)
	// EmitCmp writes one of the *CMP opcodes with its 0..5 sub-opcode.
	EmitCmp(op vm.Op, mode vm.CmpMode)

	// NewLabel allocates a fresh label index, not yet bound to a position.
	NewLabel() int
	// PlaceLabel marks the current emission position as label's target.
	PlaceLabel(label int)

	// RegisterPrototype interns a function prototype in the shared table
	// and returns its stable continuum index.
	RegisterPrototype(t types.FuncType) int
	// BeginFunction starts emitting the body of the function registered as
	// proto (the index returned by RegisterPrototype).
	BeginFunction(proto int)
	// EndFunction closes the function started by the last BeginFunction,
	// resolving any labels placed within it.
	EndFunction()
}

// Pool is the string and function-prototype table shared across every
// function compiled in one unit; strings dedup on insertion.
type Pool struct {
	Strings      []string
	stringIndex  map[string]int
	Prototypes   []types.FuncType
}

// NewPool creates an empty shared pool.
func NewPool() *Pool {
	return &Pool{stringIndex: make(map[string]int)}
}

// InternString returns the stable index of s in the pool, inserting it if
// this is the first time it's seen.
func (p *Pool) InternString(s string) int {
	if idx, ok := p.stringIndex[s]; ok {
		return idx
	}
	idx := len(p.Strings)
	p.Strings = append(p.Strings, s)
	p.stringIndex[s] = idx
	return idx
}

// InternPrototype appends t to the prototype table and returns its index.
// Prototypes are not deduplicated by type (two distinct functions may share
// an identical signature); the index is the continuum index itself.
func (p *Pool) InternPrototype(t types.FuncType) int {
	idx := len(p.Prototypes)
	p.Prototypes = append(p.Prototypes, t)
	return idx
}
