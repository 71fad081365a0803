package types

import (
	"testing"
)

// a representative slab of the lattice, nested enough to exercise every
// descriptor production.
func sampleTypes() []Type {
	return []Type{
		Any, None, Never, Bool, Byte, Int, Float, Char, String,
		ListType{Element: Int},
		ListType{Element: ListType{Element: String}},
		SetType{Element: Char},
		DictType{Key: Int, Value: String},
		DictType{Key: String, Value: ListType{Element: Float}},
		IterType{Element: Int},
		TupleType{Elements: []Type{Int, Int}},
		TupleType{Elements: []Type{Int, String, TupleType{Elements: []Type{Bool, Byte}}}},
		FuncType{Params: nil, Return: None},
		FuncType{Params: []Type{Int, Int}, Return: None},
		FuncType{Params: []Type{ListType{Element: Int}}, Return: IterType{Element: Int}},
		FuncType{Params: []Type{FuncType{Params: []Type{Int}, Return: Bool}}, Return: Int},
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	for _, typ := range sampleTypes() {
		desc := Serialize(typ)
		back, err := Deserialize(desc)
		if err != nil {
			t.Errorf("Deserialize(%q): %v", desc, err)
			continue
		}
		if !typ.Equals(back) {
			t.Errorf("round trip of %s via %q: got %s", typ, desc, back)
		}
	}
}

func TestSerializeDescriptors(t *testing.T) {
	for _, tc := range []struct {
		typ  Type
		want string
	}{
		{Int, "i"},
		{ListType{Element: Int}, "[i"},
		{DictType{Key: Int, Value: Int}, "@ii"},
		{TupleType{Elements: []Type{Int, Int}}, "(ii)"},
		{FuncType{Params: []Type{Int, Int}, Return: None}, "$ii:v"},
		{IterType{Element: Int}, "*i"},
	} {
		if got := Serialize(tc.typ); got != tc.want {
			t.Errorf("Serialize(%s) = %q, want %q", tc.typ, got, tc.want)
		}
	}
}

func TestDeserializeErrors(t *testing.T) {
	for _, desc := range []string{
		"", "q", "[", "(", "(i)", "$ii", "@i", "ii", "(i",
	} {
		if typ, err := Deserialize(desc); err == nil {
			t.Errorf("Deserialize(%q) = %s, want error", desc, typ)
		}
	}
}

func TestAssignableProperties(t *testing.T) {
	all := sampleTypes()
	// reflexivity
	for _, typ := range all {
		if !Assignable(typ, typ) {
			t.Errorf("Assignable(%s, %s) = false, want true", typ, typ)
		}
	}
	for _, typ := range all {
		// NEVER is assignable into anything
		if !Assignable(typ, Never) {
			t.Errorf("Assignable(%s, never) = false, want true", typ)
		}
		// NEVER accepts nothing but itself
		if !typ.Equals(Never) && Assignable(Never, typ) {
			t.Errorf("Assignable(never, %s) = true, want false", typ)
		}
		// ANY and NONE accept everything
		if !Assignable(Any, typ) {
			t.Errorf("Assignable(any, %s) = false, want true", typ)
		}
		if !Assignable(None, typ) {
			t.Errorf("Assignable(none, %s) = false, want true", typ)
		}
		// ANY only flows back out through an explicit cast
		if !typ.Equals(Any) && !typ.Equals(None) && Assignable(typ, Any) {
			t.Errorf("Assignable(%s, any) = true, want false", typ)
		}
	}
}

func TestAssignableFunc(t *testing.T) {
	intToInt := FuncType{Params: []Type{Int}, Return: Int}
	intToNone := FuncType{Params: []Type{Int}, Return: None}
	intToNever := FuncType{Params: []Type{Int}, Return: Never}
	floatToInt := FuncType{Params: []Type{Float}, Return: Int}

	// covariant return: a () -> int serves where () -> none is wanted
	if !Assignable(intToNone, intToInt) {
		t.Error("func covariance in return rejected")
	}
	if Assignable(intToInt, intToNone) {
		t.Error("func return covariance accepted the wrong way around")
	}
	// invariant parameters
	if Assignable(intToInt, floatToInt) {
		t.Error("func parameter variance accepted")
	}
	// a NEVER-returning func assigns anywhere the parameters match
	if !Assignable(intToInt, intToNever) {
		t.Error("never-returning func rejected")
	}
}

func TestElementOf(t *testing.T) {
	if e, ok := ElementOf(ListType{Element: Int}); !ok || !e.Equals(Int) {
		t.Errorf("ElementOf([int]) = %v, %v", e, ok)
	}
	if e, ok := ElementOf(IterType{Element: Char}); !ok || !e.Equals(Char) {
		t.Errorf("ElementOf(*char) = %v, %v", e, ok)
	}
	e, ok := ElementOf(DictType{Key: Int, Value: String})
	if !ok || !e.Equals(TupleType{Elements: []Type{Int, String}}) {
		t.Errorf("ElementOf(dict) = %v, %v, want (int, string)", e, ok)
	}
	if _, ok := ElementOf(Int); ok {
		t.Error("ElementOf(int) succeeded")
	}
	if _, ok := ElementOf(TupleType{Elements: []Type{Int, Int}}); ok {
		t.Error("ElementOf(tuple) succeeded")
	}
}

func TestEitherOf(t *testing.T) {
	if got, err := EitherOf(Int, Int); err != nil || !got.Equals(Int) {
		t.Errorf("EitherOf(int, int) = %v, %v", got, err)
	}
	if got, err := EitherOf(Never, Int); err != nil || !got.Equals(Int) {
		t.Errorf("EitherOf(never, int) = %v, %v", got, err)
	}
	if got, err := EitherOf(Int, Never); err != nil || !got.Equals(Int) {
		t.Errorf("EitherOf(int, never) = %v, %v", got, err)
	}
	if got, err := EitherOf(Int, None); err != nil || !got.Equals(None) {
		t.Errorf("EitherOf(int, none) = %v, %v", got, err)
	}
	if _, err := EitherOf(Int, String); err == nil {
		t.Error("EitherOf(int, string) succeeded")
	}
}

func TestIsValueBased(t *testing.T) {
	for _, typ := range []Type{None, Bool, Byte, Int, Float, Char} {
		if !typ.IsValueBased() {
			t.Errorf("%s should be value-based", typ)
		}
	}
	composite := []Type{
		Any, String,
		ListType{Element: Int}, SetType{Element: Int},
		DictType{Key: Int, Value: Int}, IterType{Element: Int},
		TupleType{Elements: []Type{Int, Int}},
		FuncType{Params: nil, Return: None},
	}
	for _, typ := range composite {
		if typ.IsValueBased() {
			t.Errorf("%s should be reference-based", typ)
		}
	}
}
