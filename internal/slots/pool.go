// Package slots hands out contiguous ranges of numbered storage slots with
// strict stack discipline.
package slots

import "fmt"

// Pool is a stack allocator over slot numbers. Slots are released in the
// reverse order of allocation.
type Pool struct {
	count     int
	highWater int
}

func New() *Pool {
	return &Pool{}
}

// Scope is a block of slots returned by Allocate. Slot i of the scope is
// Start+i.
type Scope struct {
	pool     *Pool
	Start    int
	Size     int
	released bool
}

// Allocate reserves n consecutive slots.
func (p *Pool) Allocate(n int) *Scope {
	if n < 0 {
		panic(fmt.Sprintf("slots: negative allocation %d", n))
	}
	s := &Scope{pool: p, Start: p.count, Size: n}
	p.count += n
	if p.count > p.highWater {
		p.highWater = p.count
	}
	return s
}

// AllocateSingle reserves one slot and returns its number. It is released
// with Deallocate(1).
func (p *Pool) AllocateSingle() int {
	return p.Allocate(1).Start
}

// Deallocate releases the n most recently allocated slots.
func (p *Pool) Deallocate(n int) {
	if n < 0 || n > p.count {
		panic(fmt.Sprintf("slots: cannot release %d of %d slots", n, p.count))
	}
	p.count -= n
}

// Count returns the number of live slots.
func (p *Pool) Count() int { return p.count }

// HighWater returns the largest number of slots ever live at once.
func (p *Pool) HighWater() int { return p.highWater }

// Slot returns the number of the i-th slot of the scope.
func (s *Scope) Slot(i int) int {
	if i < 0 || i >= s.Size {
		panic(fmt.Sprintf("slots: index %d outside scope of %d", i, s.Size))
	}
	return s.Start + i
}

// Release returns the scope's slots to the pool. Scopes must be released in
// reverse allocation order.
func (s *Scope) Release() {
	if s.released {
		return
	}
	if s.Start+s.Size != s.pool.count {
		panic(fmt.Sprintf("slots: out of order release of [%d, %d) with %d live",
			s.Start, s.Start+s.Size, s.pool.count))
	}
	s.released = true
	s.pool.Deallocate(s.Size)
}
