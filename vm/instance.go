package vm

import (
	"fmt"

	"github.com/Yaossg/porkchop/internal/types"
)

// Instruction is one decoded bytecode instruction, shaped exactly like
// internal/emit.Instruction (that package owns the encoder/decoder side;
// this one is the runtime's own copy so vm never has to import emit, which
// would cycle back through emit's own "vm.Op" import).
type Instruction struct {
	Op    Op
	Index int
	Const uint64
	Type  types.Type
	Size  int
	Cmp   CmpMode
}

// Function is one callable's prototype plus its instruction stream. A nil
// Code means this continuum entry is an external: its call is dispatched
// through Instance.Externals instead of runFrame.
type Function struct {
	Prototype types.FuncType
	Code      []Instruction
}

// Program is everything Run needs: every function in continuum-index
// order and the shared string pool.
type Program struct {
	Funcs   []Function
	Strings []string
}

// External is a builtin implemented in Go rather than Porkchop bytecode.
// args is already bound+call args concatenated in parameter order.
type External func(in *Instance, args []Value) (Value, error)

// Instance is one running program: its compiled code, heap, external
// table, and the live coroutine registry the collector needs to find
// roots parked off the main call stack.
type Instance struct {
	Program    *Program
	Externals  map[int]External
	heap       *Heap
	coroutines []*CoroutineObj
	callStack  []*Frame // every frame currently active on this goroutine, innermost last
	Args       []string // argv, surfaced through the `getargs` external
	out        ioStreams

	// coroutineFlag[i] reports whether Program.Funcs[i]'s body contains a
	// YIELD instruction, the one purely-structural signal that calling it
	// must spawn a suspended coroutine rather than run inline. Computed
	// once at load time rather than re-scanned per call.
	coroutineFlag []bool
}

// gcRoots collects every Value slot a mark pass starts from: every live
// frame's locals and operand stack, plus the suspended state of every
// coroutine not yet run to completion. Finished coroutines are pruned from
// the registry here, the one place the whole list is walked anyway.
func (in *Instance) gcRoots() []Value {
	var roots []Value
	for _, fr := range in.callStack {
		roots = fr.roots(roots)
	}
	live := in.coroutines[:0]
	for _, co := range in.coroutines {
		if co.done {
			continue
		}
		live = append(live, co)
		roots = co.roots(roots)
	}
	in.coroutines = live
	return roots
}

// NewInstance creates a ready-to-run Instance over prog. externals maps
// continuum index -> Go implementation for every entry whose Code is nil.
func NewInstance(prog *Program, externals map[int]External) *Instance {
	in := &Instance{
		Program:   prog,
		Externals: externals,
		heap:      newHeap(),
		out:       newIOStreams(),
	}
	in.coroutineFlag = make([]bool, len(prog.Funcs))
	for i, fn := range prog.Funcs {
		for _, instr := range fn.Code {
			if instr.Op == OpYield {
				in.coroutineFlag[i] = true
				break
			}
		}
	}
	return in
}

// RuntimeError is a Porkchop-level fault surfaced to the host: failed
// AS-cast, division by zero, index out of range, and friends.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string { return e.Msg }

func runtimeErrorf(format string, args ...interface{}) error {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...)}
}

// ExitError is the `exit(n)` external's way of unwinding the whole VM with
// a caller-chosen process status. It is not a runtime fault:
// call-boundary context is never accreted onto it.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit(%d)", e.Code) }

// Run calls the function at mainIndex with no arguments (the whole source
// file's top level is implicitly `main`'s body) and flushes any buffered
// output before returning.
func (in *Instance) Run(mainIndex int) (Value, error) {
	defer in.out.flush()
	f := newFrame(nil)
	return in.runFrame(mainIndex, f, nil)
}

// runFrame executes one function's bytecode in f until RETURN (or, for a
// coroutine body, a YIELD hands control back to co). f.locals must already
// hold the bound+call arguments in parameter order.
func (in *Instance) runFrame(contIndex int, f *Frame, co *CoroutineObj) (Value, error) {
	in.callStack = append(in.callStack, f)
	// Remove this frame by identity rather than popping the last element:
	// a coroutine suspended mid-body leaves its own frame parked on the
	// stack while its caller keeps running, so the last element is not
	// necessarily ours by the time we return.
	defer func() {
		for i := len(in.callStack) - 1; i >= 0; i-- {
			if in.callStack[i] == f {
				in.callStack = append(in.callStack[:i], in.callStack[i+1:]...)
				break
			}
		}
	}()

	fn := in.Program.Funcs[contIndex]
	code := fn.Code
	for f.ip = 0; f.ip < len(code); f.ip++ {
		instr := code[f.ip]
		switch instr.Op {
		case OpNop:
		case OpDup:
			f.push(f.peek())
		case OpPop:
			f.pop()
		case OpJmp:
			f.ip = instr.Index - 1
		case OpJmp0:
			if !f.pop().Bool() {
				f.ip = instr.Index - 1
			}
		case OpReturn:
			return f.pop(), nil
		case OpYield:
			v := f.pop()
			if co == nil {
				return Value{}, runtimeErrorf("yield outside a coroutine")
			}
			co.yield(v)
			f.push(boolVal(false)) // NONE stand-in, the value of the `yield` expression itself

		case OpConst:
			f.push(Value{Bits: instr.Const})
		case OpSConst:
			f.push(refVal(in.internString(in.Program.Strings[instr.Index])))
		case OpFConst:
			fo := &FuncObj{ContIndex: instr.Index}
			in.heap.register(fo)
			f.push(refVal(fo))

		case OpLoad:
			f.push(f.locals[instr.Index])
		case OpStore:
			f.locals[instr.Index] = f.peek()
		case OpTLoad:
			tup := f.pop().Ref.(*TupleObj)
			f.push(tup.Elem[instr.Index])
		case OpLLoad:
			idx := f.pop().Int()
			lst := f.pop().Ref.(*ListObj)
			if idx < 0 || int(idx) >= len(lst.Items) {
				return Value{}, runtimeErrorf("list index %d out of range [0,%d)", idx, len(lst.Items))
			}
			f.push(lst.Items[idx])
		case OpLStore:
			val := f.pop()
			idx := f.pop().Int()
			lst := f.pop().Ref.(*ListObj)
			if idx < 0 || int(idx) >= len(lst.Items) {
				return Value{}, runtimeErrorf("list index %d out of range [0,%d)", idx, len(lst.Items))
			}
			lst.Items[idx] = val
			f.push(val)
		case OpDLoad:
			key := f.pop()
			dict := f.pop().Ref.(*DictObj)
			i, ok := dictFind(dict, key)
			if !ok {
				return Value{}, runtimeErrorf("key not found in dict")
			}
			f.push(dict.Vals[i])
		case OpDStore:
			val := f.pop()
			key := f.pop()
			dict := f.pop().Ref.(*DictObj)
			if i, ok := dictFind(dict, key); ok {
				dict.Vals[i] = val
			} else {
				dict.Keys = append(dict.Keys, key)
				dict.Vals = append(dict.Vals, val)
			}
			f.push(val)

		case OpCall:
			v, err := in.execCall(f)
			if err != nil {
				return Value{}, err
			}
			f.push(v)
		case OpBind:
			in.execBind(f, instr.Index)

		case OpLocal:
			f.locals = append(f.locals, in.zeroValue(instr.Type))

		case OpAs:
			v := f.pop()
			r, err := in.castAs(v, instr.Type)
			if err != nil {
				return Value{}, err
			}
			f.push(r)
		case OpIs:
			v := f.pop()
			f.push(boolVal(in.isInstance(v, instr.Type)))
		case OpAny:
			v := f.pop()
			box := &AnyBox{Static: instr.Type, Value: v}
			in.heap.register(box)
			f.push(refVal(box))

		case OpI2B:
			f.push(byteVal(byte(f.pop().Int())))
		case OpI2C:
			v := f.pop().Int()
			if v < 0 || v > 0x10FFFF || (v >= 0xD800 && v <= 0xDFFF) {
				return Value{}, runtimeErrorf("cannot cast %d to char: not a unicode scalar value", v)
			}
			f.push(charVal(rune(v)))
		case OpI2F:
			f.push(floatVal(float64(f.pop().Int())))
		case OpF2I:
			f.push(intVal(int64(f.pop().Float())))

		case OpTuple:
			tt := instr.Type.(types.TupleType)
			n := len(tt.Elements)
			elems := make([]Value, n)
			for i := n - 1; i >= 0; i-- {
				elems[i] = f.pop()
			}
			t := &TupleObj{Elem: elems}
			in.heap.register(t)
			f.push(refVal(t))
		case OpList:
			lt := instr.Type.(types.ListType)
			items := make([]Value, instr.Size)
			for i := instr.Size - 1; i >= 0; i-- {
				items[i] = f.pop()
			}
			l := &ListObj{Elem: lt.Element, Items: items}
			in.heap.register(l)
			f.push(refVal(l))
		case OpSet:
			st := instr.Type.(types.SetType)
			s := &SetObj{Elem: st.Element}
			vals := make([]Value, instr.Size)
			for i := instr.Size - 1; i >= 0; i-- {
				vals[i] = f.pop()
			}
			for _, v := range vals {
				setAdd(s, v)
			}
			in.heap.register(s)
			f.push(refVal(s))
		case OpDict:
			dt := instr.Type.(types.DictType)
			d := &DictObj{Key: dt.Key, Val: dt.Value}
			pairs := make([]Value, instr.Size*2)
			for i := len(pairs) - 1; i >= 0; i-- {
				pairs[i] = f.pop()
			}
			for i := 0; i < len(pairs); i += 2 {
				if j, ok := dictFind(d, pairs[i]); ok {
					d.Vals[j] = pairs[i+1]
				} else {
					d.Keys = append(d.Keys, pairs[i])
					d.Vals = append(d.Vals, pairs[i+1])
				}
			}
			in.heap.register(d)
			f.push(refVal(d))

		case OpINeg:
			f.push(intVal(-f.pop().Int()))
		case OpFNeg:
			f.push(floatVal(-f.pop().Float()))
		case OpNot:
			f.push(boolVal(!f.pop().Bool()))
		case OpInv:
			f.push(intVal(^f.pop().Int()))

		case OpOr:
			b, a := f.pop().Int(), f.pop().Int()
			f.push(intVal(a | b))
		case OpXor:
			b, a := f.pop().Int(), f.pop().Int()
			f.push(intVal(a ^ b))
		case OpAnd:
			b, a := f.pop().Int(), f.pop().Int()
			f.push(intVal(a & b))
		case OpShl:
			b, a := f.pop().Int(), f.pop().Int()
			f.push(intVal(a << uint(b)))
		case OpShr:
			b, a := f.pop().Int(), f.pop().Int()
			f.push(intVal(a >> uint(b)))
		case OpUshr:
			b, a := f.pop().Int(), f.pop().Int()
			f.push(intVal(int64(uint64(a) >> uint(b))))

		case OpSAdd:
			b, a := f.pop().Ref.(*StringObj), f.pop().Ref.(*StringObj)
			f.push(refVal(in.internString(a.S + b.S)))
		case OpIAdd:
			b, a := f.pop().Int(), f.pop().Int()
			f.push(intVal(a + b))
		case OpFAdd:
			b, a := f.pop().Float(), f.pop().Float()
			f.push(floatVal(a + b))
		case OpISub:
			b, a := f.pop().Int(), f.pop().Int()
			f.push(intVal(a - b))
		case OpFSub:
			b, a := f.pop().Float(), f.pop().Float()
			f.push(floatVal(a - b))
		case OpIMul:
			b, a := f.pop().Int(), f.pop().Int()
			f.push(intVal(a * b))
		case OpFMul:
			b, a := f.pop().Float(), f.pop().Float()
			f.push(floatVal(a * b))
		case OpIDiv:
			b, a := f.pop().Int(), f.pop().Int()
			if b == 0 {
				return Value{}, runtimeErrorf("division by zero")
			}
			f.push(intVal(a / b))
		case OpFDiv:
			b, a := f.pop().Float(), f.pop().Float()
			f.push(floatVal(a / b))
		case OpIRem:
			b, a := f.pop().Int(), f.pop().Int()
			if b == 0 {
				return Value{}, runtimeErrorf("division by zero")
			}
			f.push(intVal(a % b))
		case OpFRem:
			b, a := f.pop().Float(), f.pop().Float()
			f.push(floatVal(fmod(a, b)))

		case OpInc:
			f.locals[instr.Index] = intVal(f.locals[instr.Index].Int() + 1)
		case OpDec:
			f.locals[instr.Index] = intVal(f.locals[instr.Index].Int() - 1)

		case OpUCmp:
			b, a := f.pop(), f.pop()
			eq, err := slotsIdentical(a, b, instr.Cmp)
			if err != nil {
				return Value{}, err
			}
			f.push(boolVal(eq))
		case OpICmp:
			b, a := f.pop().Int(), f.pop().Int()
			f.push(boolVal(cmpOrdered(int64cmp(a, b), instr.Cmp)))
		case OpFCmp:
			b, a := f.pop().Float(), f.pop().Float()
			f.push(boolVal(cmpOrdered(float64cmp(a, b), instr.Cmp)))
		case OpSCmp:
			b, a := f.pop().Ref.(*StringObj), f.pop().Ref.(*StringObj)
			f.push(boolVal(cmpOrdered(stringcmp(a.S, b.S), instr.Cmp)))
		case OpOCmp:
			b, a := f.pop(), f.pop()
			eq := valuesEqual(a, b)
			switch instr.Cmp {
			case CmpEQ:
				f.push(boolVal(eq))
			case CmpNE:
				f.push(boolVal(!eq))
			default:
				return Value{}, runtimeErrorf("object values only support == and !=")
			}

		case OpIter:
			v := f.pop()
			it, err := in.toIter(v)
			if err != nil {
				return Value{}, err
			}
			f.push(refVal(it))
		case OpMove:
			it := f.pop().Ref.(*IterObj)
			val, ok, err := it.it.move(in)
			if err != nil {
				return Value{}, err
			}
			it.current, it.ok = val, ok
			f.push(boolVal(ok))
		case OpGet:
			it := f.pop().Ref.(*IterObj)
			if !it.ok {
				return Value{}, runtimeErrorf("get called on an exhausted iterator")
			}
			f.push(it.current)

		case OpI2S:
			f.push(refVal(in.internString(fmt.Sprintf("%d", f.pop().Int()))))
		case OpF2S:
			f.push(refVal(in.internString(formatFloat(f.pop().Float()))))
		case OpB2S:
			f.push(refVal(in.internString(fmt.Sprintf("%d", f.pop().Byte()))))
		case OpZ2S:
			f.push(refVal(in.internString(fmt.Sprintf("%t", f.pop().Bool()))))
		case OpC2S:
			f.push(refVal(in.internString(string(f.pop().Char()))))
		case OpO2S:
			f.push(refVal(in.internString(in.stringify(f.pop()))))

		case OpAdd:
			v := f.pop()
			recv := f.pop()
			switch r := recv.Ref.(type) {
			case *ListObj:
				r.Items = append(r.Items, v)
			case *SetObj:
				setAdd(r, v)
			default:
				return Value{}, runtimeErrorf("add: unsupported receiver")
			}
			f.push(recv)
		case OpRemove:
			v := f.pop()
			recv := f.pop()
			switch r := recv.Ref.(type) {
			case *SetObj:
				setRemove(r, v)
			case *DictObj:
				if i, ok := dictFind(r, v); ok {
					r.Keys = append(r.Keys[:i], r.Keys[i+1:]...)
					r.Vals = append(r.Vals[:i], r.Vals[i+1:]...)
				}
			default:
				return Value{}, runtimeErrorf("remove: unsupported receiver")
			}
			f.push(recv)
		case OpIn:
			recv := f.pop() // the collection is pushed last
			v := f.pop()
			f.push(boolVal(in.contains(recv, v)))
		case OpSizeof:
			f.push(intVal(int64(in.sizeOf(f.pop()))))

		case OpFHash:
			f.push(intVal(int64(floatHash(f.pop().Float()))))
		case OpOHash:
			f.push(intVal(int64(objectHash(f.pop()))))

		case OpSjoin:
			n := instr.Index
			parts := make([]string, n)
			for i := n - 1; i >= 0; i-- {
				parts[i] = f.pop().Ref.(*StringObj).S
			}
			joined := ""
			for _, p := range parts {
				joined += p
			}
			f.push(refVal(in.internString(joined)))

		case OpFusedCmpJmp0:
			b, a := f.pop(), f.pop()
			var taken bool
			switch Op(instr.Const) {
			case OpUCmp:
				eq, err := slotsIdentical(a, b, instr.Cmp)
				if err != nil {
					return Value{}, err
				}
				taken = eq
			case OpICmp:
				taken = cmpOrdered(int64cmp(a.Int(), b.Int()), instr.Cmp)
			case OpFCmp:
				taken = cmpOrdered(float64cmp(a.Float(), b.Float()), instr.Cmp)
			case OpSCmp:
				taken = cmpOrdered(stringcmp(a.Ref.(*StringObj).S, b.Ref.(*StringObj).S), instr.Cmp)
			case OpOCmp:
				eq := valuesEqual(a, b)
				switch instr.Cmp {
				case CmpEQ:
					taken = eq
				case CmpNE:
					taken = !eq
				default:
					return Value{}, runtimeErrorf("object values only support == and !=")
				}
			default:
				return Value{}, runtimeErrorf("corrupt fused comparison")
			}
			if !taken {
				f.ip = instr.Index - 1
			}
		case OpFusedCall:
			v, err := in.callFunc(f, instr.Index, nil)
			if err != nil {
				return Value{}, err
			}
			f.push(v)

		default:
			return Value{}, runtimeErrorf("unimplemented opcode %s", instr.Op)
		}

		in.heap.maybeCollect(in.gcRoots)
	}
	return boolVal(false), nil // fell off the end: NONE
}

func (in *Instance) internString(s string) *StringObj {
	o := newString(s)
	in.heap.register(o)
	return o
}
