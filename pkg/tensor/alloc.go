package tensor

import (
    "fmt"
    "sync"
)

// DefaultAlignment is the alignment of every allocation.
const DefaultAlignment = 64

// Region is one named allocation.
type Region struct {
    Name    string
    Address Address
    Size    int
    Group   MemoryGroup
}

// Allocator is a bump allocator over an abstract address space. It hands out
// addresses only; the kernels decide what actually backs them. Nothing is
// ever freed individually: a layer's buffers live until the allocator does.
type Allocator struct {
    mu      sync.Mutex
    base    Address
    next    Address
    align   int
    regions []Region
}

// NewAllocator returns an allocator starting at base. align <= 0 selects
// DefaultAlignment.
func NewAllocator(base Address, align int) *Allocator {
    if align <= 0 { align = DefaultAlignment }
    return &Allocator{base: base, next: alignUp(base, align), align: align}
}

// Alloc reserves size bytes in group g and returns the base address.
func (a *Allocator) Alloc(name string, size int, g MemoryGroup) (Address, error) {
    if size < 0 {
        return 0, fmt.Errorf("tensor: negative allocation %q: %d", name, size)
    }
    a.mu.Lock()
    defer a.mu.Unlock()
    addr := a.next
    a.next = alignUp(addr+Address(size), a.align)
    a.regions = append(a.regions, Region{Name: name, Address: addr, Size: size, Group: g})
    return addr, nil
}

// Activation allocates and places a BCHW tensor.
func (a *Allocator) Activation(name string, g MemoryGroup, batch, channels, height, width int) (Activation, error) {
    t := NewActivation(batch, channels, height, width)
    addr, err := a.Alloc(name, batch*t.BatchStride, g)
    if err != nil { return Activation{}, err }
    t.Address, t.Group = addr, g
    return t, nil
}

// Filter allocates and places an IOHW weight tensor.
func (a *Allocator) Filter(name string, g MemoryGroup, inChannels, outChannels, filterHeight, filterWidth int) (Filter, error) {
    f := NewFilter(inChannels, outChannels, filterHeight, filterWidth)
    addr, err := a.Alloc(name, f.Bytes(), g)
    if err != nil { return Filter{}, err }
    f.Address, f.Group = addr, g
    return f, nil
}

// Regions returns a copy of all allocations in address order.
func (a *Allocator) Regions() []Region {
    a.mu.Lock()
    defer a.mu.Unlock()
    return append([]Region(nil), a.regions...)
}

// Used returns the number of bytes reserved including alignment padding.
func (a *Allocator) Used() int {
    a.mu.Lock()
    defer a.mu.Unlock()
    return int(a.next - alignUp(a.base, a.align))
}

func alignUp(v Address, align int) Address {
    m := Address(align)
    return (v + m - 1) / m * m
}
