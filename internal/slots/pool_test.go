package slots

import (
	"fmt"
	"math/rand"
	"testing"
)

func TestAllocateIsContiguous(t *testing.T) {
	p := New()
	a := p.Allocate(2)
	b := p.Allocate(3)
	if a.Start != 0 || b.Start != 2 {
		t.Fatalf("starts = %d, %d; want 0, 2", a.Start, b.Start)
	}
	if got := b.Slot(2); got != 4 {
		t.Errorf("b.Slot(2) = %d, want 4", got)
	}
	b.Release()
	a.Release()
	if p.Count() != 0 {
		t.Errorf("count = %d after releasing everything", p.Count())
	}
	if p.HighWater() != 5 {
		t.Errorf("high water = %d, want 5", p.HighWater())
	}
}

func TestReuseAfterRelease(t *testing.T) {
	p := New()
	a := p.Allocate(2)
	a.Release()
	b := p.Allocate(1)
	if b.Start != 0 {
		t.Errorf("released slots not reused: start = %d", b.Start)
	}
	if p.HighWater() != 2 {
		t.Errorf("high water = %d, want 2", p.HighWater())
	}
}

func TestSingleAndDeallocate(t *testing.T) {
	p := New()
	x := p.AllocateSingle()
	y := p.AllocateSingle()
	if x != 0 || y != 1 {
		t.Fatalf("singles = %d, %d", x, y)
	}
	p.Deallocate(2)
	if p.Count() != 0 {
		t.Errorf("count = %d", p.Count())
	}
}

func TestReleaseTwiceIsNoop(t *testing.T) {
	p := New()
	a := p.Allocate(1)
	a.Release()
	a.Release()
	if p.Count() != 0 {
		t.Errorf("count = %d", p.Count())
	}
}

func TestOutOfOrderReleasePanics(t *testing.T) {
	p := New()
	a := p.Allocate(1)
	p.Allocate(1)
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on out of order release")
		}
	}()
	a.Release()
}

func TestOverReleasePanics(t *testing.T) {
	p := New()
	p.Allocate(1)
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic when releasing more than allocated")
		}
	}()
	p.Deallocate(2)
}

// TestRandomTrace drives the pool with a seeded sequence of allocations and
// releases and checks it against a model stack of live scopes.
func TestRandomTrace(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 2024} {
		t.Run(fmt.Sprint(seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			p := New()
			var live []*Scope
			high := 0
			for step := 0; step < 500; step++ {
				if len(live) == 0 || rng.Intn(3) > 0 {
					n := rng.Intn(4)
					s := p.Allocate(n)
					want := 0
					if k := len(live); k > 0 {
						want = live[k-1].Start + live[k-1].Size
					}
					if s.Start != want || s.Size != n {
						t.Fatalf("step %d: got [%d, %d), want [%d, %d)", step, s.Start, s.Start+s.Size, want, want+n)
					}
					for i := 0; i < n; i++ {
						if s.Slot(i) != want+i {
							t.Fatalf("step %d: slot %d = %d", step, i, s.Slot(i))
						}
					}
					live = append(live, s)
				} else {
					last := live[len(live)-1]
					live = live[:len(live)-1]
					last.Release()
				}

				count := 0
				if k := len(live); k > 0 {
					count = live[k-1].Start + live[k-1].Size
				}
				if p.Count() != count || p.Count() < 0 {
					t.Fatalf("step %d: count = %d, want %d", step, p.Count(), count)
				}
				if count > high {
					high = count
				}
				if p.HighWater() != high {
					t.Fatalf("step %d: high water = %d, want %d", step, p.HighWater(), high)
				}
			}
			for i := len(live) - 1; i >= 0; i-- {
				live[i].Release()
			}
			if p.Count() != 0 {
				t.Errorf("count = %d after releasing everything", p.Count())
			}
		})
	}
}
