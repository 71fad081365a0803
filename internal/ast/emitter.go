package ast

import (
	"github.com/Yaossg/porkchop/internal/emit"
	"github.com/Yaossg/porkchop/internal/types"
	"github.com/Yaossg/porkchop/vm"
)

// loopFrame is the bookkeeping an Emitter keeps for one nested loop: where a
// `break` should jump to, and where a `for`'s MOVE-and-loop-back should jump
// to for the next iteration.
type loopFrame struct {
	breakLabel    int
	continueLabel int
	hook          *Hook
}

// Emitter drives one emit.Assembler through a function body, threading
// the loop-hook stack a `break`-shaped node needs to find its target
// without carrying a pointer back to its loop; the back reference is
// simply "top of this stack".
type Emitter struct {
	Asm  emit.Assembler
	Cont *Continuum

	loops []loopFrame
}

// NewEmitter creates an Emitter over asm for the functions registered in
// cont.
func NewEmitter(asm emit.Assembler, cont *Continuum) *Emitter {
	return &Emitter{Asm: asm, Cont: cont}
}

func (e *Emitter) PushLoop(hook *Hook) {
	e.loops = append(e.loops, loopFrame{
		breakLabel:    e.Asm.NewLabel(),
		continueLabel: e.Asm.NewLabel(),
		hook:          hook,
	})
}

func (e *Emitter) PopLoop() {
	e.loops = e.loops[:len(e.loops)-1]
}

func (e *Emitter) currentLoop() *loopFrame {
	if len(e.loops) == 0 {
		return nil
	}
	return &e.loops[len(e.loops)-1]
}

// BreakLabel returns the label a `break` in the innermost loop should jump
// to (its end).
func (e *Emitter) BreakLabel() int { return e.currentLoop().breakLabel }

// ContinueLabel returns the label a loop's own back-edge jumps to.
func (e *Emitter) ContinueLabel() int { return e.currentLoop().continueLabel }

// EmitFunction compiles one function body into the assembler: registers
// its prototype, opens the body, emits a LOCAL opcode per local slot
// beyond its parameters (each starts as a zero slot), emits the body, then
// an implicit RETURN (always emitted, even after a body that already
// returns).
func EmitFunction(em *Emitter, def *FunctionDefinition, proto int) {
	em.Asm.BeginFunction(proto)
	paramCount := len(def.ParamTypes) + len(def.CaptureTypes)
	for i := paramCount; i < len(def.LocalTypes); i++ {
		em.Asm.EmitType(vm.OpLocal, def.LocalTypes[i])
	}
	def.Body.Emit(em)
	em.Asm.Emit(vm.OpReturn)
	em.Asm.EndFunction()
}

// pushConst emits the bytecode that pushes a folded constant, used by any
// node whose ConstValue() is populated and that chooses to emit the fold
// directly rather than re-walking its children.
func pushConst(em *Emitter, c Const, t types.Type) {
	switch c.Kind {
	case ConstBool:
		em.Asm.PushConstBool(c.Bool)
	case ConstByte:
		em.Asm.PushConstInt(int64(c.Byte))
	case ConstInt:
		em.Asm.PushConstInt(c.Int)
	case ConstFloat:
		em.Asm.PushConstFloat(c.Float)
	case ConstChar:
		em.Asm.PushConstInt(int64(c.Char))
	case ConstSize:
		em.Asm.PushConstInt(int64(c.Size))
	}
}
