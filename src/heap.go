package pscal

import "slices"

// heapCell is one allocation made by New
type heapCell struct {
	Value    Value
	TypeName string
}

// Heap owns every value allocated through New. Pointer values only carry
// its addresses; a cell lives until Release is called on it.
type Heap struct {
	cells    map[Address]*heapCell
	nextAddr Address
	logger   *Logger
}

// NewHeap creates an empty heap
func NewHeap(logger *Logger) *Heap {
	return &Heap{
		cells:    make(map[Address]*heapCell),
		nextAddr: 1,
		logger:   logger,
	}
}

// Alloc stores a value in a fresh cell and returns its address.
// Addresses are never reused, so a stale pointer can always be detected.
func (h *Heap) Alloc(v Value, typeName string) (Address, error) {
	if h.nextAddr == 0 {
		return 0, runtimeErrorf(ErrAllocation, "heap address space exhausted")
	}
	addr := h.nextAddr
	h.nextAddr++

	h.cells[addr] = &heapCell{Value: v, TypeName: typeName}
	h.logger.DebugCat(CatMemory, "Allocated heap cell @%d (type: %s)", addr, typeName)
	return addr, nil
}

// Get returns the value stored at addr
func (h *Heap) Get(addr Address) (*Value, bool) {
	if addr == 0 {
		return nil, false
	}
	cell, ok := h.cells[addr]
	if !ok {
		return nil, false
	}
	return &cell.Value, true
}

// TypeName returns the type name recorded when addr was allocated
func (h *Heap) TypeName(addr Address) string {
	if cell, ok := h.cells[addr]; ok {
		return cell.TypeName
	}
	return ""
}

// Release tears down the value at addr and forgets the cell
func (h *Heap) Release(addr Address) bool {
	cell, ok := h.cells[addr]
	if !ok {
		h.logger.WarnCat(CatMemory, "Attempted to release unknown heap cell @%d", addr)
		return false
	}
	FreeValue(&cell.Value)
	delete(h.cells, addr)
	h.logger.DebugCat(CatMemory, "Released heap cell @%d (type: %s)", addr, cell.TypeName)
	return true
}

// Live returns the number of outstanding allocations
func (h *Heap) Live() int {
	return len(h.cells)
}

// Addresses returns the outstanding addresses in allocation order
func (h *Heap) Addresses() []Address {
	out := make([]Address, 0, len(h.cells))
	for addr := range h.cells {
		out = append(out, addr)
	}
	slices.Sort(out)
	return out
}
