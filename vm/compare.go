package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func int64cmp(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func float64cmp(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func stringcmp(a, b string) int {
	return strings.Compare(a, b)
}

// cmpOrdered interprets a three-way comparison result (-1/0/1) against one
// of the six CmpMode relations, UCMP excepted (that one is identity-only,
// handled by slotsIdentical).
func cmpOrdered(c int, mode CmpMode) bool {
	switch mode {
	case CmpEQ:
		return c == 0
	case CmpNE:
		return c != 0
	case CmpLT:
		return c < 0
	case CmpGT:
		return c > 0
	case CmpLE:
		return c <= 0
	case CmpGE:
		return c >= 0
	}
	return false
}

// slotsIdentical implements UCMP: raw-slot comparison, which is plain bit
// equality for value scalars and pointer identity for references; the
// `===`/`!==` family lowers here for reference operands.
func slotsIdentical(a, b Value, mode CmpMode) (bool, error) {
	var eq bool
	if a.Ref != nil || b.Ref != nil {
		eq = a.Ref == b.Ref
	} else {
		eq = a.Bits == b.Bits
	}
	switch mode {
	case CmpEQ:
		return eq, nil
	case CmpNE:
		return !eq, nil
	default:
		return false, runtimeErrorf("identity comparison only supports == and !=")
	}
}

// valuesEqual implements OCMP's EQ/NE: deep structural equality, except
// Func and Iter which compare by identity.
func valuesEqual(a, b Value) bool {
	if a.Ref == nil && b.Ref == nil {
		return a.Bits == b.Bits
	}
	if a.Ref == nil || b.Ref == nil {
		return false
	}
	switch x := a.Ref.(type) {
	case *StringObj:
		y, ok := b.Ref.(*StringObj)
		return ok && x.S == y.S
	case *TupleObj:
		y, ok := b.Ref.(*TupleObj)
		if !ok || len(x.Elem) != len(y.Elem) {
			return false
		}
		for i := range x.Elem {
			if !valuesEqual(x.Elem[i], y.Elem[i]) {
				return false
			}
		}
		return true
	case *ListObj:
		y, ok := b.Ref.(*ListObj)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !valuesEqual(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *SetObj:
		y, ok := b.Ref.(*SetObj)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for _, v := range x.Items {
			if _, found := setFind(y, v); !found {
				return false
			}
		}
		return true
	case *DictObj:
		y, ok := b.Ref.(*DictObj)
		if !ok || len(x.Keys) != len(y.Keys) {
			return false
		}
		for i, k := range x.Keys {
			j, found := dictFind(y, k)
			if !found || !valuesEqual(x.Vals[i], y.Vals[j]) {
				return false
			}
		}
		return true
	case *AnyBox:
		y, ok := b.Ref.(*AnyBox)
		return ok && x.Static.Equals(y.Static) && valuesEqual(x.Value, y.Value)
	case *FuncObj, *IterObj:
		return a.Ref == b.Ref
	default:
		return a.Ref == b.Ref
	}
}

func setFind(s *SetObj, v Value) (int, bool) {
	for i, item := range s.Items {
		if valuesEqual(item, v) {
			return i, true
		}
	}
	return 0, false
}

func setAdd(s *SetObj, v Value) {
	if _, ok := setFind(s, v); !ok {
		s.Items = append(s.Items, v)
	}
}

func setRemove(s *SetObj, v Value) {
	if i, ok := setFind(s, v); ok {
		s.Items = append(s.Items[:i], s.Items[i+1:]...)
	}
}

func dictFind(d *DictObj, key Value) (int, bool) {
	for i, k := range d.Keys {
		if valuesEqual(k, key) {
			return i, true
		}
	}
	return 0, false
}

func indexOfRune(s string, r rune) int {
	for i, c := range s {
		if c == r {
			return i
		}
	}
	return -1
}

func fmod(a, b float64) float64 {
	return math.Mod(a, b)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func floatHash(f float64) uint64 {
	return math.Float64bits(f)
}

// objectHash is a best-effort structural hash for OHASH: it need not be
// cryptographic, only consistent with valuesEqual.
func objectHash(v Value) uint64 {
	if v.Ref == nil {
		return v.Bits
	}
	switch x := v.Ref.(type) {
	case *StringObj:
		return fnv1a(x.S)
	case *TupleObj:
		var h uint64 = 14695981039346656037
		for _, e := range x.Elem {
			h ^= objectHash(e)
			h *= 1099511628211
		}
		return h
	case *ListObj:
		var h uint64 = 14695981039346656037
		for _, e := range x.Items {
			h ^= objectHash(e)
			h *= 1099511628211
		}
		return h
	case *SetObj:
		var h uint64 // order-independent, as set equality is
		for _, e := range x.Items {
			h += objectHash(e)
		}
		return h
	case *DictObj:
		var h uint64
		for i := range x.Keys {
			h += objectHash(x.Keys[i])*1099511628211 ^ objectHash(x.Vals[i])
		}
		return h
	case *AnyBox:
		return objectHash(x.Value)
	default:
		return fnv1a(fmt.Sprintf("%p", x))
	}
}

func fnv1a(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

// stringify implements O2S: a readable rendering of any value, used when
// `+` against a string stringifies its other operand.
func (in *Instance) stringify(v Value) string {
	if v.Ref == nil {
		return fmt.Sprintf("%d", v.Bits)
	}
	switch x := v.Ref.(type) {
	case *StringObj:
		return x.S
	case *TupleObj:
		parts := make([]string, len(x.Elem))
		for i, e := range x.Elem {
			parts[i] = in.stringify(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *ListObj:
		parts := make([]string, len(x.Items))
		for i, e := range x.Items {
			parts[i] = in.stringify(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *SetObj:
		parts := make([]string, len(x.Items))
		for i, e := range x.Items {
			parts[i] = in.stringify(e)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *DictObj:
		parts := make([]string, len(x.Keys))
		for i := range x.Keys {
			parts[i] = in.stringify(x.Keys[i]) + ": " + in.stringify(x.Vals[i])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *AnyBox:
		return in.stringify(x.Value)
	case *FuncObj:
		return "<func>"
	case *IterObj:
		return "<iter>"
	default:
		return "<object>"
	}
}
