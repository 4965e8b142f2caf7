// Package ternary implements the balanced-ternary scalar (Trit) and the
// six-trit word (Word6) used throughout the VM as the carrier for opcode
// addresses and decimal values.
package ternary

import "fmt"

// Trit is a single balanced-ternary digit: one of N (-1), Z (0), P (+1).
type Trit int8

const (
	N Trit = -1
	Z Trit = 0
	P Trit = 1
)

// FromI8 constructs a Trit from a raw value in [-1, 1]. It panics outside
// that range since a Trit is closed over exactly three values.
func FromI8(v int8) Trit {
	if v < -1 || v > 1 {
		panic(fmt.Sprintf("ternary: value %d out of trit range [-1,1]", v))
	}
	return Trit(v)
}

// ToI8 returns the trit's raw value.
func (t Trit) ToI8() int8 {
	return int8(t)
}

// Negate returns the ternary negation: N<->P, Z<->Z.
func (t Trit) Negate() Trit {
	return -t
}

// And returns the ternary minimum (logical AND) of two trits.
func (t Trit) And(other Trit) Trit {
	if t < other {
		return t
	}
	return other
}

// Or returns the ternary maximum (logical OR) of two trits.
func (t Trit) Or(other Trit) Trit {
	if t > other {
		return t
	}
	return other
}

// String renders the trit's single-letter symbol.
func (t Trit) String() string {
	switch t {
	case N:
		return "N"
	case Z:
		return "Z"
	case P:
		return "P"
	default:
		return "?"
	}
}

// Majority returns P if strictly more trits in seq are P than N, N if
// strictly more are N than P, and Z on a tie (regardless of how many Z
// trits are present).
func Majority(seq []Trit) Trit {
	var pCount, nCount int
	for _, t := range seq {
		switch t {
		case P:
			pCount++
		case N:
			nCount++
		}
	}
	switch {
	case pCount > nCount:
		return P
	case nCount > pCount:
		return N
	default:
		return Z
	}
}

// ParseTrit parses a single character into a Trit, accepting the symbol
// aliases {T,t,타,N} -> N, {O,o,0,옴,Z} -> Z, {P,p,1,티} -> P.
func ParseTrit(s string) (Trit, bool) {
	switch s {
	case "T", "t", "타", "N":
		return N, true
	case "O", "o", "0", "옴", "Z":
		return Z, true
	case "P", "p", "1", "티":
		return P, true
	default:
		return Z, false
	}
}
