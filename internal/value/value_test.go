package value

import (
	"testing"

	"github.com/tritvm/tervm/internal/ternary"
)

func TestAsIntCoercions(t *testing.T) {
	cases := []struct {
		v    Value
		want int64
		ok   bool
	}{
		{Int(5), 5, true},
		{Float(3.9), 3, true},
		{Float(-3.9), -3, true},
		{TritValue(ternary.P), 1, true},
		{Bool(true), 1, true},
		{Bool(false), 0, true},
		{Addr(42), 42, true},
		{Str("5"), 0, false},
		{Nil(), 0, false},
	}
	for _, c := range cases {
		got, ok := c.v.AsInt()
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("AsInt(%v) = %d,%v; want %d,%v", c.v, got, ok, c.want, c.ok)
		}
	}
}

func TestAsFloatCoercions(t *testing.T) {
	if f, ok := Int(4).AsFloat(); !ok || f != 4.0 {
		t.Errorf("AsFloat(Int(4)) = %v,%v", f, ok)
	}
	if f, ok := TritValue(ternary.N).AsFloat(); !ok || f != -1.0 {
		t.Errorf("AsFloat(Trit N) = %v,%v", f, ok)
	}
	if _, ok := Str("x").AsFloat(); ok {
		t.Error("Str should not coerce to Float")
	}
}

func TestAsStrOnlyForStr(t *testing.T) {
	if s, ok := Str("hi").AsStr(); !ok || s != "hi" {
		t.Errorf("AsStr(Str) = %v,%v", s, ok)
	}
	if _, ok := Int(1).AsStr(); ok {
		t.Error("Int should not coerce to Str")
	}
}

func TestAsBoolTotal(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Bool(true), true},
		{Bool(false), false},
		{Int(0), false},
		{Int(1), true},
		{Float(0), false},
		{TritValue(ternary.P), true},
		{TritValue(ternary.N), false},
		{TritValue(ternary.Z), false},
		{Str(""), false},
		{Str("x"), true},
		{Array(nil), false},
		{Array([]Value{Int(1)}), true},
		{Nil(), false},
		{Addr(0), true},
	}
	for _, c := range cases {
		if got := c.v.AsBool(); got != c.want {
			t.Errorf("AsBool(%v) = %v; want %v", c.v, got, c.want)
		}
	}
}

func TestToTritProjection(t *testing.T) {
	cases := []struct {
		v    Value
		want ternary.Trit
	}{
		{Int(5), ternary.P},
		{Int(-5), ternary.N},
		{Int(0), ternary.Z},
		{Float(-0.1), ternary.N},
		{Bool(true), ternary.P},
		{Bool(false), ternary.N},
		{Str(""), ternary.Z},
		{Str("x"), ternary.P},
		{Nil(), ternary.N},
		{TritValue(ternary.P), ternary.P},
	}
	for _, c := range cases {
		if got := c.v.ToTrit(); got != c.want {
			t.Errorf("ToTrit(%v) = %v; want %v", c.v, got, c.want)
		}
	}
}

func TestDisplay(t *testing.T) {
	if got := Int(42).Display(); got != "42" {
		t.Errorf("Display(Int(42)) = %q", got)
	}
	if got := Bool(true).Display(); got != "true" {
		t.Errorf("Display(Bool(true)) = %q", got)
	}
	if got := Str("hi").Display(); got != `"hi"` {
		t.Errorf("Display(Str) = %q", got)
	}
	if got := TritValue(ternary.Z).Display(); got != "Z" {
		t.Errorf("Display(Trit Z) = %q", got)
	}
}

func TestCompareStrings(t *testing.T) {
	r, ok := Str("apple").Compare(Str("banana"))
	if !ok || r >= 0 {
		t.Errorf("Compare(apple,banana) = %d,%v; want <0,true", r, ok)
	}
	r, ok = Str("same").Compare(Str("same"))
	if !ok || r != 0 {
		t.Errorf("Compare(same,same) = %d,%v; want 0,true", r, ok)
	}
}

func TestCompareNumbers(t *testing.T) {
	r, ok := Int(1).Compare(Float(2.0))
	if !ok || r >= 0 {
		t.Errorf("Compare(1,2.0) = %d,%v; want <0,true", r, ok)
	}
}

func TestCompareIncomparable(t *testing.T) {
	if _, ok := Str("x").Compare(Int(1)); ok {
		t.Error("Str vs Int should not be comparable")
	}
	if _, ok := Nil().Compare(Nil()); ok {
		t.Error("Nil vs Nil should not be comparable")
	}
}
