package vm

import (
	"testing"

	"github.com/Yaossg/porkchop/internal/types"
)

func newTestInstance() *Instance {
	return NewInstance(&Program{}, nil)
}

func TestValuesEqual(t *testing.T) {
	in := newTestInstance()
	s1 := in.internString("abc")
	s2 := in.internString("abc")
	s3 := in.internString("xyz")
	if !valuesEqual(refVal(s1), refVal(s2)) {
		t.Error("equal strings compare unequal")
	}
	if valuesEqual(refVal(s1), refVal(s3)) {
		t.Error("distinct strings compare equal")
	}
	if !valuesEqual(intVal(42), intVal(42)) || valuesEqual(intVal(1), intVal(2)) {
		t.Error("int comparison broken")
	}

	l1 := &ListObj{Elem: types.Int, Items: []Value{intVal(1), intVal(2)}}
	l2 := &ListObj{Elem: types.Int, Items: []Value{intVal(1), intVal(2)}}
	l3 := &ListObj{Elem: types.Int, Items: []Value{intVal(2), intVal(1)}}
	if !valuesEqual(refVal(l1), refVal(l2)) || valuesEqual(refVal(l1), refVal(l3)) {
		t.Error("list equality broken")
	}

	// sets compare without regard to insertion order
	sA := &SetObj{Elem: types.Int, Items: []Value{intVal(1), intVal(2)}}
	sB := &SetObj{Elem: types.Int, Items: []Value{intVal(2), intVal(1)}}
	if !valuesEqual(refVal(sA), refVal(sB)) {
		t.Error("set equality is order-sensitive")
	}

	// funcs and iterators compare by identity
	f1 := &FuncObj{ContIndex: 0}
	f2 := &FuncObj{ContIndex: 0}
	if valuesEqual(refVal(f1), refVal(f2)) || !valuesEqual(refVal(f1), refVal(f1)) {
		t.Error("func identity comparison broken")
	}
}

func TestSlotsIdentical(t *testing.T) {
	in := newTestInstance()
	s1 := in.internString("abc")
	s2 := in.internString("abc")
	if eq, _ := slotsIdentical(refVal(s1), refVal(s2), CmpEQ); eq {
		t.Error("distinct objects reported identical")
	}
	if eq, _ := slotsIdentical(refVal(s1), refVal(s1), CmpEQ); !eq {
		t.Error("object not identical to itself")
	}
	if eq, _ := slotsIdentical(intVal(7), intVal(7), CmpEQ); !eq {
		t.Error("equal scalars not identical")
	}
	if _, err := slotsIdentical(intVal(1), intVal(2), CmpLT); err == nil {
		t.Error("ordering mode accepted by identity comparison")
	}
}

func TestSetAndDictOps(t *testing.T) {
	s := &SetObj{Elem: types.Int}
	setAdd(s, intVal(1))
	setAdd(s, intVal(2))
	setAdd(s, intVal(1))
	if len(s.Items) != 2 {
		t.Errorf("set has %d items, want 2", len(s.Items))
	}
	setRemove(s, intVal(1))
	if _, found := setFind(s, intVal(1)); found {
		t.Error("removed element still present")
	}

	d := &DictObj{Key: types.Int, Val: types.String}
	in := newTestInstance()
	d.Keys = append(d.Keys, intVal(1))
	d.Vals = append(d.Vals, refVal(in.internString("a")))
	if i, ok := dictFind(d, intVal(1)); !ok || i != 0 {
		t.Errorf("dictFind = %d, %v", i, ok)
	}
	if _, ok := dictFind(d, intVal(9)); ok {
		t.Error("found a missing key")
	}
}

// heapCount walks the intrusive object list.
func heapCount(h *Heap) int {
	n := 0
	for o := h.all; o != nil; o = o.header().next {
		n++
	}
	return n
}

func TestGCCollectsUnreachable(t *testing.T) {
	h := newHeap()
	var live []Value
	keep := newString("keep")
	h.register(keep)
	live = append(live, refVal(keep))
	for i := 0; i < 100; i++ {
		h.register(newString("junk"))
	}
	if heapCount(h) != 101 {
		t.Fatalf("heap has %d objects before collection", heapCount(h))
	}
	h.collect(live)
	if heapCount(h) != 1 {
		t.Errorf("heap has %d objects after collection, want 1", heapCount(h))
	}
	if h.count != 1 {
		t.Errorf("live counter = %d, want 1", h.count)
	}
	if keep.marked {
		t.Error("survivor's mark bit was not reset")
	}
}

func TestGCTracesChildren(t *testing.T) {
	h := newHeap()
	leaf := newString("leaf")
	h.register(leaf)
	tup := &TupleObj{Elem: []Value{refVal(leaf), intVal(1)}}
	h.register(tup)
	lst := &ListObj{Elem: types.Any, Items: []Value{refVal(tup)}}
	h.register(lst)
	h.register(newString("garbage"))

	h.collect([]Value{refVal(lst)})
	if heapCount(h) != 3 {
		t.Errorf("heap has %d objects, want the root chain of 3", heapCount(h))
	}
	// everything reachable survived
	for _, o := range []Object{leaf, tup, lst} {
		found := false
		for cur := h.all; cur != nil; cur = cur.header().next {
			if cur == o {
				found = true
			}
		}
		if !found {
			t.Errorf("reachable object %T was collected", o)
		}
	}
}

func TestGCAnyBoxAndFuncCaptures(t *testing.T) {
	h := newHeap()
	inner := newString("boxed")
	h.register(inner)
	box := &AnyBox{Static: types.String, Value: refVal(inner)}
	h.register(box)
	capture := newString("captured")
	h.register(capture)
	fn := &FuncObj{ContIndex: 0, Bound: []Value{refVal(capture)}}
	h.register(fn)

	h.collect([]Value{refVal(box), refVal(fn)})
	if heapCount(h) != 4 {
		t.Errorf("heap has %d objects, want 4", heapCount(h))
	}
}

func TestGCAdaptiveThreshold(t *testing.T) {
	h := newHeap()
	if h.threshold != initialGCThreshold {
		t.Fatalf("initial threshold = %d", h.threshold)
	}
	var live []Value
	for i := 0; i < initialGCThreshold; i++ {
		s := newString("live")
		h.register(s)
		live = append(live, refVal(s))
	}
	h.collect(live)
	if h.threshold != 2*initialGCThreshold {
		t.Errorf("threshold after full-survival collection = %d, want %d", h.threshold, 2*initialGCThreshold)
	}
	// a collection that frees everything never drops the threshold below
	// the initial floor
	h2 := newHeap()
	for i := 0; i < 10; i++ {
		h2.register(newString("junk"))
	}
	h2.collect(nil)
	if h2.threshold < initialGCThreshold {
		t.Errorf("threshold fell to %d", h2.threshold)
	}
}

func TestGCDisableGuard(t *testing.T) {
	h := newHeap()
	h.threshold = 1
	h.register(newString("junk"))
	h.register(newString("junk"))
	g := h.disable()
	h.maybeCollect(func() []Value { return nil })
	if heapCount(h) != 2 {
		t.Error("collection ran while disabled")
	}
	g.release()
	h.maybeCollect(func() []Value { return nil })
	if heapCount(h) != 0 {
		t.Error("collection did not run after release")
	}
}

func TestStringify(t *testing.T) {
	in := newTestInstance()
	l := &ListObj{Elem: types.Int, Items: []Value{intVal(1), intVal(2)}}
	in.heap.register(l)
	if got := in.stringify(refVal(l)); got != "[1, 2]" {
		t.Errorf("stringify(list) = %q", got)
	}
	tup := &TupleObj{Elem: []Value{intVal(1), refVal(in.internString("x"))}}
	in.heap.register(tup)
	if got := in.stringify(refVal(tup)); got != "(1, x)" {
		t.Errorf("stringify(tuple) = %q", got)
	}
}

func TestZeroValue(t *testing.T) {
	in := newTestInstance()
	if v := in.zeroValue(types.Int); v.Bits != 0 || v.Ref != nil {
		t.Errorf("zero int = %+v", v)
	}
	if v := in.zeroValue(types.String); v.Ref == nil || v.Ref.(*StringObj).S != "" {
		t.Errorf("zero string = %+v", v)
	}
	if v := in.zeroValue(types.ListType{Element: types.Int}); v.Ref == nil {
		t.Error("zero list is nil")
	}
	if v := in.zeroValue(types.Any); v.Ref == nil {
		t.Error("zero any is nil")
	}
}

func TestMnemonicTable(t *testing.T) {
	// every real opcode has a distinct mnemonic and looks itself up; the
	// fused superinstructions stay out of the table
	seen := map[string]Op{}
	for op := OpNop; op < opCount; op++ {
		name := mnemonics[op]
		if op == OpFusedCmpJmp0 || op == OpFusedCall {
			if name != "" {
				t.Errorf("fused op %d has mnemonic %q", op, name)
			}
			continue
		}
		if name == "" {
			t.Errorf("opcode %d has no mnemonic", op)
			continue
		}
		if prev, dup := seen[name]; dup {
			t.Errorf("mnemonic %q shared by %d and %d", name, prev, op)
		}
		seen[name] = op
		if got, ok := LookupMnemonic(name); !ok || got != op {
			t.Errorf("LookupMnemonic(%q) = %v, %v", name, got, ok)
		}
	}
}
