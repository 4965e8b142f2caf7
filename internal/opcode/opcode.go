// Package opcode defines the 729-entry opcode address space, its static
// metadata table, and the reverse mnemonic index the assembler resolves
// source tokens against.
package opcode

import "fmt"

// OpcodeAddress is a (sector,group,command) triple, each in [0,8].
type OpcodeAddress struct {
	Sector  int
	Group   int
	Command int
}

// Index returns the linear table index sector*81 + group*9 + command.
func (a OpcodeAddress) Index() int {
	return a.Sector*81 + a.Group*9 + a.Command
}

// FromIndex recovers an OpcodeAddress from a linear index in [0,728].
func FromIndex(i int) OpcodeAddress {
	return OpcodeAddress{
		Sector:  i / 81,
		Group:   (i % 81) / 9,
		Command: i % 9,
	}
}

// String renders the address as "(s,g,c)".
func (a OpcodeAddress) String() string {
	return fmt.Sprintf("(%d,%d,%d)", a.Sector, a.Group, a.Command)
}

// Effect tags the category of side effect an opcode has. It is catalog
// metadata only; the VM's own switch dispatch is the authority on actual
// behavior.
type Effect byte

const (
	EffectNone Effect = iota
	EffectStack
	EffectControl
	EffectHeap
	EffectIO
	EffectMeta
)

var effectNames = [...]string{
	EffectNone:    "none",
	EffectStack:   "stack",
	EffectControl: "control",
	EffectHeap:    "heap",
	EffectIO:      "io",
	EffectMeta:    "meta",
}

// String renders the effect tag's name.
func (e Effect) String() string {
	if int(e) < len(effectNames) {
		return effectNames[e]
	}
	return "none"
}

// OpMeta is the static metadata the catalog carries for one address.
type OpMeta struct {
	Address    OpcodeAddress
	Korean     string
	English    string
	Pop        int
	Push       int
	Immediates int
	Effect     Effect
}

// Catalog is the immutable, process-wide table of all 729 addresses.
// Only sector 0 (groups G0-G8) is populated with real metadata; every
// other sector is reserved and carries a zero-arity "RESERVED" entry.
var Catalog [729]OpMeta

// NameIndex maps every Korean mnemonic, English mnemonic, and lowercased
// English mnemonic to its address.
var NameIndex map[string]OpcodeAddress

// Lookup returns the metadata for addr.
func Lookup(addr OpcodeAddress) OpMeta {
	return Catalog[addr.Index()]
}

// Resolve looks up an address by mnemonic (Korean, English as listed, or
// all-lowercase English), returning ok=false if no mnemonic matches.
// Mixed-case spellings such as "Add" do not resolve.
func Resolve(name string) (OpcodeAddress, bool) {
	addr, ok := NameIndex[name]
	return addr, ok
}
