// Package value implements the VM's tagged runtime value: a closed sum
// over Int, Float, Bool, Trit, Addr, Str, Array, Object and Nil, with
// total coercion rules between the scalar variants.
package value

import "github.com/tritvm/tervm/internal/ternary"

// Type is the tag discriminating a Value's variant.
type Type byte

const (
	TypeNil Type = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeTrit
	TypeAddr
	TypeStr
	TypeArray
	TypeObject
)

var typeNames = [...]string{
	TypeNil:    "nil",
	TypeInt:    "int",
	TypeFloat:  "float",
	TypeBool:   "bool",
	TypeTrit:   "trit",
	TypeAddr:   "addr",
	TypeStr:    "str",
	TypeArray:  "array",
	TypeObject: "object",
}

// String renders the type's name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Value is a tagged runtime value. The zero Value is Nil.
type Value struct {
	data interface{}
	typ  Type
}

// Nil constructs the Nil value.
func Nil() Value { return Value{typ: TypeNil} }

// Int constructs an Int value.
func Int(i int64) Value { return Value{typ: TypeInt, data: i} }

// Float constructs a Float value.
func Float(f float64) Value { return Value{typ: TypeFloat, data: f} }

// Bool constructs a Bool value.
func Bool(b bool) Value { return Value{typ: TypeBool, data: b} }

// TritValue constructs a Trit value.
func TritValue(t ternary.Trit) Value { return Value{typ: TypeTrit, data: t} }

// Addr constructs an Addr value from an unsigned heap or program index.
func Addr(a uint64) Value { return Value{typ: TypeAddr, data: a} }

// Str constructs a Str value.
func Str(s string) Value { return Value{typ: TypeStr, data: s} }

// Array constructs an Array value. The slice is copied so later mutation
// of the caller's slice does not alias the Value.
func Array(elems []Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{typ: TypeArray, data: cp}
}

// Object constructs an Object value from a string-keyed map. The map is
// copied to avoid aliasing.
func Object(fields map[string]Value) Value {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Value{typ: TypeObject, data: cp}
}

// Type returns the value's type tag.
func (v Value) Type() Type { return v.typ }

func (v Value) IsNil() bool    { return v.typ == TypeNil }
func (v Value) IsInt() bool    { return v.typ == TypeInt }
func (v Value) IsFloat() bool  { return v.typ == TypeFloat }
func (v Value) IsBool() bool   { return v.typ == TypeBool }
func (v Value) IsTrit() bool   { return v.typ == TypeTrit }
func (v Value) IsAddr() bool   { return v.typ == TypeAddr }
func (v Value) IsStr() bool    { return v.typ == TypeStr }
func (v Value) IsArray() bool  { return v.typ == TypeArray }
func (v Value) IsObject() bool { return v.typ == TypeObject }
func (v Value) IsNumber() bool { return v.typ == TypeInt || v.typ == TypeFloat }

// RawInt returns the underlying int64 for an Int value, 0 otherwise.
func (v Value) RawInt() int64 {
	if v.typ == TypeInt {
		return v.data.(int64)
	}
	return 0
}

// RawFloat returns the underlying float64 for a Float value, 0 otherwise.
func (v Value) RawFloat() float64 {
	if v.typ == TypeFloat {
		return v.data.(float64)
	}
	return 0
}

// RawBool returns the underlying bool for a Bool value, false otherwise.
func (v Value) RawBool() bool {
	if v.typ == TypeBool {
		return v.data.(bool)
	}
	return false
}

// RawTrit returns the underlying Trit for a Trit value, Z otherwise.
func (v Value) RawTrit() ternary.Trit {
	if v.typ == TypeTrit {
		return v.data.(ternary.Trit)
	}
	return ternary.Z
}

// RawAddr returns the underlying address for an Addr value, 0 otherwise.
func (v Value) RawAddr() uint64 {
	if v.typ == TypeAddr {
		return v.data.(uint64)
	}
	return 0
}

// RawStr returns the underlying string for a Str value, "" otherwise.
func (v Value) RawStr() string {
	if v.typ == TypeStr {
		return v.data.(string)
	}
	return ""
}

// RawArray returns the underlying element slice for an Array value, nil
// otherwise. The returned slice shares storage with the Value and must
// not be mutated by callers that don't own it.
func (v Value) RawArray() []Value {
	if v.typ == TypeArray {
		return v.data.([]Value)
	}
	return nil
}

// RawObject returns the underlying field map for an Object value, nil
// otherwise.
func (v Value) RawObject() map[string]Value {
	if v.typ == TypeObject {
		return v.data.(map[string]Value)
	}
	return nil
}

// AsInt performs the total-where-defined coercion to int64: Int is
// itself; Float truncates toward zero; Trit widens to {-1,0,1}; Bool
// widens to {0,1}; Addr widens as a signed value. Other variants have no
// integer coercion and report ok=false.
func (v Value) AsInt() (int64, bool) {
	switch v.typ {
	case TypeInt:
		return v.data.(int64), true
	case TypeFloat:
		return int64(v.data.(float64)), true
	case TypeTrit:
		return int64(v.data.(ternary.Trit).ToI8()), true
	case TypeBool:
		if v.data.(bool) {
			return 1, true
		}
		return 0, true
	case TypeAddr:
		return int64(v.data.(uint64)), true
	default:
		return 0, false
	}
}

// AsFloat coerces Int, Float, and Trit to float64 numerically. Other
// variants report ok=false.
func (v Value) AsFloat() (float64, bool) {
	switch v.typ {
	case TypeInt:
		return float64(v.data.(int64)), true
	case TypeFloat:
		return v.data.(float64), true
	case TypeTrit:
		return float64(v.data.(ternary.Trit).ToI8()), true
	default:
		return 0, false
	}
}

// AsStr is defined only for Str.
func (v Value) AsStr() (string, bool) {
	if v.typ == TypeStr {
		return v.data.(string), true
	}
	return "", false
}

// AsBool is total over every variant: Bool is itself; Int/Float are
// truthy when nonzero; Trit is truthy only for P; Str/Array are truthy
// when nonempty; Nil is always false; Addr and Object are always true.
func (v Value) AsBool() bool {
	switch v.typ {
	case TypeBool:
		return v.data.(bool)
	case TypeInt:
		return v.data.(int64) != 0
	case TypeFloat:
		return v.data.(float64) != 0
	case TypeTrit:
		return v.data.(ternary.Trit) == ternary.P
	case TypeStr:
		return v.data.(string) != ""
	case TypeArray:
		return len(v.data.([]Value)) != 0
	case TypeNil:
		return false
	default:
		return true
	}
}

// ToTrit is the trit projection: numbers project their sign, a boolean
// projects P for true and N for false, an empty string or empty
// collection projects Z, Nil projects N, and a Trit projects itself.
func (v Value) ToTrit() ternary.Trit {
	switch v.typ {
	case TypeTrit:
		return v.data.(ternary.Trit)
	case TypeInt:
		return signTrit(v.data.(int64))
	case TypeFloat:
		return signTritF(v.data.(float64))
	case TypeBool:
		if v.data.(bool) {
			return ternary.P
		}
		return ternary.N
	case TypeStr:
		if v.data.(string) == "" {
			return ternary.Z
		}
		return ternary.P
	case TypeArray:
		if len(v.data.([]Value)) == 0 {
			return ternary.Z
		}
		return ternary.P
	case TypeObject:
		if len(v.data.(map[string]Value)) == 0 {
			return ternary.Z
		}
		return ternary.P
	case TypeAddr:
		if v.data.(uint64) == 0 {
			return ternary.Z
		}
		return ternary.P
	case TypeNil:
		return ternary.N
	default:
		return ternary.Z
	}
}

func signTrit(i int64) ternary.Trit {
	switch {
	case i > 0:
		return ternary.P
	case i < 0:
		return ternary.N
	default:
		return ternary.Z
	}
}

func signTritF(f float64) ternary.Trit {
	switch {
	case f > 0:
		return ternary.P
	case f < 0:
		return ternary.N
	default:
		return ternary.Z
	}
}
