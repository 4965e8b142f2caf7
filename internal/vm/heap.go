package vm

import (
	"github.com/tritvm/tervm/internal/asmerr"
	"github.com/tritvm/tervm/internal/value"
)

// Heap is an arena of indexed slots with a liveness bitmap: allocation
// returns an index (never a pointer), freeing marks the slot dead, and
// a dead slot's index is reused by a later Allocate. This sidesteps
// pointer graphs and cycles entirely.
type Heap struct {
	slots []value.Value
	alive []bool
	free  []int // indices of dead slots available for reuse
}

// NewHeap builds an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// Allocate reserves n contiguous slots (n=1 if n<1) and returns the
// index of the first one. A freed single-slot region is reused in
// preference to growing the arena.
func (h *Heap) Allocate(n int) uint64 {
	if n < 1 {
		n = 1
	}
	if n == 1 && len(h.free) > 0 {
		idx := h.free[len(h.free)-1]
		h.free = h.free[:len(h.free)-1]
		h.alive[idx] = true
		h.slots[idx] = value.Nil()
		return uint64(idx)
	}

	base := len(h.slots)
	for i := 0; i < n; i++ {
		h.slots = append(h.slots, value.Nil())
		h.alive = append(h.alive, true)
	}
	return uint64(base)
}

// Free marks addr dead and makes it eligible for reuse.
func (h *Heap) Free(addr uint64) error {
	i := int(addr)
	if i < 0 || i >= len(h.slots) {
		return asmerr.NewVmError(asmerr.InvalidAddress, 0, 0, 0, 0, "free: address %d out of range", addr)
	}
	if !h.alive[i] {
		return nil
	}
	h.alive[i] = false
	h.slots[i] = value.Nil()
	h.free = append(h.free, i)
	return nil
}

// Read returns the value stored at addr.
func (h *Heap) Read(addr uint64) (value.Value, error) {
	i := int(addr)
	if i < 0 || i >= len(h.slots) || !h.alive[i] {
		return value.Nil(), asmerr.NewVmError(asmerr.InvalidAddress, 0, 0, 0, 0, "read: address %d not live", addr)
	}
	return h.slots[i], nil
}

// Write stores v at addr.
func (h *Heap) Write(addr uint64, v value.Value) error {
	i := int(addr)
	if i < 0 || i >= len(h.slots) || !h.alive[i] {
		return asmerr.NewVmError(asmerr.InvalidAddress, 0, 0, 0, 0, "write: address %d not live", addr)
	}
	h.slots[i] = v
	return nil
}

// WriteGlobal stores v at addr, growing the arena if addr is beyond the
// current arena size; only addr itself is marked alive, and any newly
// created intermediate slots stay dead and Nil. This is the STORE opcode's address mode: a
// global slot always exists once written, unlike an ALLOC'd region
// which must be explicitly freed.
func (h *Heap) WriteGlobal(addr uint64, v value.Value) {
	i := int(addr)
	for i >= len(h.slots) {
		h.slots = append(h.slots, value.Nil())
		h.alive = append(h.alive, false)
	}
	h.alive[i] = true
	h.slots[i] = v
}

// ReadGlobal returns the value at addr, or Nil if addr has never been
// written (rather than erroring, matching LOAD's use as a global slot
// reader that may run before the corresponding STORE).
func (h *Heap) ReadGlobal(addr uint64) value.Value {
	i := int(addr)
	if i < 0 || i >= len(h.slots) || !h.alive[i] {
		return value.Nil()
	}
	return h.slots[i]
}

// AliveCount returns the number of currently live slots.
func (h *Heap) AliveCount() int {
	n := 0
	for _, a := range h.alive {
		if a {
			n++
		}
	}
	return n
}
