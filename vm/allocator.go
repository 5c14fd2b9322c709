package vm

import "sort"

// AllocAlign is both the rounding granularity for requested sizes and the
// alignment guarantee on every address the allocator returns.
const AllocAlign = 8

// freeBlock is one entry of the free list: a run of bytes not currently
// handed out, identified by its start address.
type freeBlock struct {
	start uint32
	size  uint32
}

// Allocator is a first-fit, coalescing free-list heap manager. It owns
// [base, base+size) of the VM's address space and shares that space with
// no one else - the VM is responsible for never placing code, static
// data or the stack inside the allocator's region.
type Allocator struct {
	base uint32
	size uint32

	free  []freeBlock      // sorted ascending by start, never adjacent
	liveB map[uint32]uint32 // start -> size, for every outstanding allocation
}

// NewAllocator creates an allocator owning [base, base+size).
func NewAllocator(base, size uint32) *Allocator {
	a := &Allocator{base: base, size: size}
	a.Reset()
	return a
}

// Reset discards all allocations and restores the single whole-region
// free block.
func (a *Allocator) Reset() {
	a.free = []freeBlock{{start: a.base, size: a.size}}
	a.liveB = make(map[uint32]uint32)
}

func roundUp(n, align uint32) uint32 {
	if n == 0 {
		return align
	}
	rem := n % align
	if rem == 0 {
		return n
	}
	return n + (align - rem)
}

// Alloc reserves at least size bytes and returns the start address, or 0
// if no free block is large enough. Exhaustion is not an error - callers
// (and guest programs) must check for a zero return.
func (a *Allocator) Alloc(size uint32) uint32 {
	if size == 0 {
		return 0
	}
	need := roundUp(size, AllocAlign)

	for i, blk := range a.free {
		if blk.size < need {
			continue
		}
		addr := blk.start
		if blk.size == need {
			a.free = append(a.free[:i], a.free[i+1:]...)
		} else {
			a.free[i] = freeBlock{start: blk.start + need, size: blk.size - need}
		}
		a.liveB[addr] = need
		return addr
	}
	return 0
}

// Free returns the allocation at addr to the free list, coalescing with
// neighbouring free blocks. Unknown addresses are a no-op and report false.
func (a *Allocator) Free(addr uint32) bool {
	size, ok := a.liveB[addr]
	if !ok {
		return false
	}
	delete(a.liveB, addr)
	a.insertFree(addr, size)
	return true
}

// insertFree inserts a block in address order and merges it with an
// immediately preceding and/or following free block.
func (a *Allocator) insertFree(start, size uint32) {
	idx := sort.Search(len(a.free), func(i int) bool { return a.free[i].start >= start })

	blk := freeBlock{start: start, size: size}
	merged := []freeBlock{}
	merged = append(merged, a.free[:idx]...)
	merged = append(merged, blk)
	merged = append(merged, a.free[idx:]...)

	// Coalesce left-to-right in a single pass.
	out := merged[:0:0]
	for _, b := range merged {
		if len(out) > 0 {
			last := out[len(out)-1]
			if last.start+last.size == b.start {
				out[len(out)-1].size = last.size + b.size
				continue
			}
		}
		out = append(out, b)
	}
	a.free = out
}

// Realloc resizes the allocation at addr. Shrinking happens in place with
// the tail returned to the free list. Growing tries to extend in place
// into an immediately following free block; if that fails, it allocates a
// fresh block, copies the old contents, and frees the old block. Returns
// 0 only when growth needs a fresh block and none is available large
// enough - the original allocation is left untouched in that case.
// Reallocating an unknown address returns 0.
func (a *Allocator) Realloc(mem *Memory, addr, newSize uint32) uint32 {
	oldSize, ok := a.liveB[addr]
	if !ok {
		return 0
	}
	need := roundUp(newSize, AllocAlign)

	if need <= oldSize {
		if need < oldSize {
			a.liveB[addr] = need
			a.insertFree(addr+need, oldSize-need)
		}
		return addr
	}

	extra := need - oldSize
	for i, blk := range a.free {
		if blk.start != addr+oldSize {
			continue
		}
		if blk.size < extra {
			break
		}
		if blk.size == extra {
			a.free = append(a.free[:i], a.free[i+1:]...)
		} else {
			a.free[i] = freeBlock{start: blk.start + extra, size: blk.size - extra}
		}
		a.liveB[addr] = need
		return addr
	}

	fresh := a.Alloc(newSize)
	if fresh == 0 {
		return 0
	}
	if mem != nil {
		copy(mem.Data[fresh:fresh+oldSize], mem.Data[addr:addr+oldSize])
	}
	a.Free(addr)
	return fresh
}

// Stats reports the free list and live allocation map for diagnostics and
// invariant checking; callers must not mutate the returned slices/maps.
type AllocatorStats struct {
	Free []struct{ Start, Size uint32 }
	Live map[uint32]uint32
}

func (a *Allocator) Stats() AllocatorStats {
	s := AllocatorStats{Live: make(map[uint32]uint32, len(a.liveB))}
	for _, b := range a.free {
		s.Free = append(s.Free, struct{ Start, Size uint32 }{b.start, b.size})
	}
	for k, v := range a.liveB {
		s.Live[k] = v
	}
	return s
}
