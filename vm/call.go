package vm

import (
	"github.com/pkg/errors"

	"github.com/Yaossg/porkchop/internal/types"
)

// execCall implements the CALL opcode: pop the callee,
// then hand off to callFunc with whatever BIND had already bound.
func (in *Instance) execCall(f *Frame) (Value, error) {
	callee := f.pop()
	fn, ok := callee.Ref.(*FuncObj)
	if !ok {
		return Value{}, runtimeErrorf("call on a non-function value")
	}
	return in.callFunc(f, fn.ContIndex, fn.Bound)
}

// callFunc pops the remaining arguments for continuum entry contIndex off f,
// prepends bound, then either invokes a Go external, spawns a coroutine
// (the callee's body contains yield), or runs the body inline. Runtime
// faults propagating out of the callee accrete an "at func N" entry per
// crossed boundary; exit and internal errors pass through
// untouched.
func (in *Instance) callFunc(f *Frame, contIndex int, bound []Value) (Value, error) {
	proto := in.Program.Funcs[contIndex].Prototype
	argCount := len(proto.Params) - len(bound)
	if argCount < 0 {
		return Value{}, runtimeErrorf("internal error: function bound with more values than it takes")
	}
	args := make([]Value, argCount)
	for i := argCount - 1; i >= 0; i-- {
		args[i] = f.pop()
	}
	locals := make([]Value, 0, len(bound)+len(args))
	locals = append(locals, bound...)
	locals = append(locals, args...)

	if ext, ok := in.Externals[contIndex]; ok {
		return ext(in, locals)
	}
	if in.coroutineFlag[contIndex] {
		co := newCoroutine(in, contIndex, locals)
		in.coroutines = append(in.coroutines, co)
		it := &IterObj{it: co}
		in.heap.register(it)
		return refVal(it), nil
	}
	v, err := in.runFrame(contIndex, newFrame(locals), nil)
	if err != nil && IsRuntimeFault(err) {
		return Value{}, errors.Wrapf(err, "at func %d", contIndex)
	}
	return v, err
}

// IsRuntimeFault reports whether err is (or wraps) a Porkchop-level
// RuntimeError, as opposed to an ExitError or a host failure.
func IsRuntimeFault(err error) bool {
	_, ok := errors.Cause(err).(*RuntimeError)
	return ok
}

// execBind implements the BIND opcode: pop the callee then n argument
// values (in reverse push order), and produce a new Func with those values
// appended to whatever was already bound: captures and `.` partial
// application are both "bind one more leading argument".
func (in *Instance) execBind(f *Frame, n int) {
	callee := f.pop()
	fn := callee.Ref.(*FuncObj)
	newly := make([]Value, n)
	for i := n - 1; i >= 0; i-- {
		newly[i] = f.pop()
	}
	bound := make([]Value, 0, len(fn.Bound)+n)
	bound = append(bound, fn.Bound...)
	bound = append(bound, newly...)
	nf := &FuncObj{ContIndex: fn.ContIndex, Bound: bound}
	in.heap.register(nf)
	f.push(refVal(nf))
}

// zeroValue is what OpLocal initialises a fresh slot to: the type's
// natural zero for bool/byte/int/float/char, an empty string, list, set or
// dict, or a NONE-tagged box for ANY. Tuple, func and iter slots start as a
// Value with no object.
func (in *Instance) zeroValue(t types.Type) Value {
	sc, ok := t.(types.ScalarType)
	if ok {
		switch sc.Kind {
		case types.STRING:
			return refVal(in.internString(""))
		case types.ANY:
			box := &AnyBox{Static: types.None, Value: boolVal(false)}
			in.heap.register(box)
			return refVal(box)
		default:
			return Value{}
		}
	}
	switch ct := t.(type) {
	case types.ListType:
		l := &ListObj{Elem: ct.Element}
		in.heap.register(l)
		return refVal(l)
	case types.SetType:
		s := &SetObj{Elem: ct.Element}
		in.heap.register(s)
		return refVal(s)
	case types.DictType:
		d := &DictObj{Key: ct.Key, Val: ct.Value}
		in.heap.register(d)
		return refVal(d)
	}
	return Value{}
}

// toIter implements the ITER opcode: an Iter value passes through
// unchanged, while List/Set/Dict values are wrapped in a fresh position
// snapshot; `for x in collection` desugars through an explicit iterator.
func (in *Instance) toIter(v Value) (*IterObj, error) {
	switch o := v.Ref.(type) {
	case *IterObj:
		return o, nil
	case *ListObj:
		it := &IterObj{it: &sliceIter{items: o.Items}}
		in.heap.register(it)
		return it, nil
	case *SetObj:
		it := &IterObj{it: &sliceIter{items: o.Items}}
		in.heap.register(it)
		return it, nil
	case *DictObj:
		it := &IterObj{it: &dictPairIter{d: o}}
		in.heap.register(it)
		return it, nil
	default:
		return nil, runtimeErrorf("value is not iterable")
	}
}

// castAs implements the AS opcode: check the runtime tag, fault if it
// doesn't match. Only ANY-boxed values need a real runtime check; every
// other static conversion was already proven safe by the type checker and
// AS on it is a no-op passthrough.
func (in *Instance) castAs(v Value, target types.Type) (Value, error) {
	box, ok := v.Ref.(*AnyBox)
	if !ok || target.Equals(types.Any) {
		return v, nil
	}
	if !types.Assignable(target, box.Static) && !box.Static.Equals(target) {
		return Value{}, runtimeErrorf("cannot cast %s to %s: dynamic type mismatch", box.Static, target)
	}
	return box.Value, nil
}

// isInstance implements the IS opcode: always true for a non-ANY value
// (the check was already proven at compile time), and a real dynamic tag
// comparison for a boxed ANY.
func (in *Instance) isInstance(v Value, target types.Type) bool {
	box, ok := v.Ref.(*AnyBox)
	if !ok {
		return true
	}
	return box.Static.Equals(target)
}

func (in *Instance) contains(recv, v Value) bool {
	switch r := recv.Ref.(type) {
	case *SetObj:
		_, ok := setFind(r, v)
		return ok
	case *DictObj:
		_, ok := dictFind(r, v)
		return ok
	case *ListObj:
		for _, item := range r.Items {
			if valuesEqual(item, v) {
				return true
			}
		}
		return false
	case *StringObj:
		return indexOfRune(r.S, v.Char()) >= 0
	default:
		return false
	}
}

func (in *Instance) sizeOf(v Value) int {
	switch r := v.Ref.(type) {
	case *StringObj:
		return len([]rune(r.S))
	case *ListObj:
		return len(r.Items)
	case *SetObj:
		return len(r.Items)
	case *DictObj:
		return len(r.Keys)
	case *TupleObj:
		return len(r.Elem)
	default:
		return 0
	}
}
