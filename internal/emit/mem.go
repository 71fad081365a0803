package emit

import (
	"fmt"
	"math"

	"github.com/Yaossg/porkchop/internal/types"
	"github.com/Yaossg/porkchop/vm"
)

// Instruction is one bytecode instruction as held by the in-memory sink,
// the form the VM actually executes. Only the fields relevant to op's
// OperandKind are meaningful.
type Instruction struct {
	Op    vm.Op
	Index int // size_t operand, or a resolved jump target (instruction offset)
	Const uint64
	Type  types.Type
	Size  int
	Cmp   vm.CmpMode
}

// Function is one compiled function body: its prototype plus the resolved
// instruction stream.
type Function struct {
	Prototype types.FuncType
	Code      []Instruction
}

type fixup struct {
	instrIdx int
	label    int
}

// MemSink is the in-memory Assembler realisation consumed directly by the
// interpreter. It is also the engine BinarySink reuses
// internally to get label-fixup for free.
type MemSink struct {
	Pool *Pool

	// Fuse enables the optional peephole rewrites (FCONST+CALL and
	// *CMP+JMP0 become one superinstruction each). Only
	// this sink ever fuses: the binary and text forms stay canonical so
	// their decoders never see a fused opcode.
	Fuse bool

	Funcs []Function

	cur       []Instruction
	curProto  int
	labelPos  map[int]int
	fixups    []fixup
	nextLabel int
}

// NewMemSink creates a MemSink sharing pool (or a fresh one if nil).
func NewMemSink(pool *Pool) *MemSink {
	if pool == nil {
		pool = NewPool()
	}
	return &MemSink{Pool: pool}
}

func (m *MemSink) PushConstBool(v bool) {
	var c uint64
	if v {
		c = 1
	}
	m.cur = append(m.cur, Instruction{Op: vm.OpConst, Const: c})
}

func (m *MemSink) PushConstInt(v int64) {
	m.cur = append(m.cur, Instruction{Op: vm.OpConst, Const: uint64(v)})
}

func (m *MemSink) PushConstFloat(v float64) {
	m.cur = append(m.cur, Instruction{Op: vm.OpConst, Const: floatBits(v)})
}

func (m *MemSink) PushString(s string) {
	idx := m.Pool.InternString(s)
	m.cur = append(m.cur, Instruction{Op: vm.OpSConst, Index: idx})
}

func (m *MemSink) Emit(op vm.Op) {
	m.cur = append(m.cur, Instruction{Op: op})
}

func (m *MemSink) EmitIndex(op vm.Op, index int) {
	m.cur = append(m.cur, Instruction{Op: op, Index: index})
}

func (m *MemSink) EmitLabel(op vm.Op, label int) {
	m.fixups = append(m.fixups, fixup{instrIdx: len(m.cur), label: label})
	m.cur = append(m.cur, Instruction{Op: op})
}

func (m *MemSink) EmitType(op vm.Op, t types.Type) {
	m.cur = append(m.cur, Instruction{Op: op, Type: t})
}

func (m *MemSink) EmitTypeSize(op vm.Op, t types.Type, size int) {
	m.cur = append(m.cur, Instruction{Op: op, Type: t, Size: size})
}

func (m *MemSink) EmitCmp(op vm.Op, mode vm.CmpMode) {
	m.cur = append(m.cur, Instruction{Op: op, Cmp: mode})
}

func (m *MemSink) NewLabel() int {
	m.nextLabel++
	return m.nextLabel
}

func (m *MemSink) PlaceLabel(label int) {
	if m.labelPos == nil {
		m.labelPos = make(map[int]int)
	}
	m.labelPos[label] = len(m.cur)
}

func (m *MemSink) RegisterPrototype(t types.FuncType) int {
	return m.Pool.InternPrototype(t)
}

func (m *MemSink) BeginFunction(proto int) {
	m.cur = nil
	m.curProto = proto
	m.labelPos = make(map[int]int)
	m.fixups = nil
	m.nextLabel = 0
}

func (m *MemSink) EndFunction() {
	if m.Fuse {
		m.fusePeephole()
	}
	for _, fx := range m.fixups {
		target, ok := m.labelPos[fx.label]
		if !ok {
			panic(fmt.Sprintf("internal error: unresolved label %d", fx.label))
		}
		m.cur[fx.instrIdx].Index = target
	}
	for len(m.Funcs) <= m.curProto {
		m.Funcs = append(m.Funcs, Function{})
	}
	m.Funcs[m.curProto] = Function{Prototype: m.Pool.Prototypes[m.curProto], Code: m.cur}
	m.cur = nil
}

func floatBits(f float64) uint64 {
	return math.Float64bits(f)
}

func fusableCmp(op vm.Op) bool {
	switch op {
	case vm.OpUCmp, vm.OpICmp, vm.OpFCmp, vm.OpSCmp, vm.OpOCmp:
		return true
	}
	return false
}

// fusePeephole rewrites adjacent instruction pairs into the fused
// superinstructions the VM dispatches directly: a comparison whose boolean
// is consumed by the very next JMP0 branches without materialising it, and
// FCONST immediately followed by CALL invokes the continuum entry without
// allocating a Func object. Runs before label resolution, so it must keep
// labelPos and the fixup list consistent as instructions are removed; a
// pair is skipped whenever a label lands between its two halves.
func (m *MemSink) fusePeephole() {
	for k := 0; k+1 < len(m.cur); k++ {
		a, b := m.cur[k], m.cur[k+1]
		var fused Instruction
		switch {
		case fusableCmp(a.Op) && b.Op == vm.OpJmp0:
			fused = Instruction{Op: vm.OpFusedCmpJmp0, Const: uint64(a.Op), Cmp: a.Cmp}
		case a.Op == vm.OpFConst && b.Op == vm.OpCall:
			fused = Instruction{Op: vm.OpFusedCall, Index: a.Index}
		default:
			continue
		}
		if m.labelTargets(k + 1) {
			continue
		}
		m.cur[k] = fused
		m.cur = append(m.cur[:k+1], m.cur[k+2:]...)
		for label, pos := range m.labelPos {
			if pos > k+1 {
				m.labelPos[label] = pos - 1
			}
		}
		for i := range m.fixups {
			switch {
			case m.fixups[i].instrIdx == k+1:
				m.fixups[i].instrIdx = k // the JMP0's pending label now belongs to the fused instruction
			case m.fixups[i].instrIdx > k+1:
				m.fixups[i].instrIdx--
			}
		}
	}
}

// labelTargets reports whether any label resolves to instruction position
// pos, which would make removing the instruction at pos unsound.
func (m *MemSink) labelTargets(pos int) bool {
	for _, p := range m.labelPos {
		if p == pos {
			return true
		}
	}
	return false
}
