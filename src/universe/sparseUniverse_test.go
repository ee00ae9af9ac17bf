package universe

import (
	"math/rand"
	"testing"
)

func newSparse(t *testing.T, rule Rule, bounds Bounds, cells ...Cell) *SparseUniverse {
	t.Helper()
	u := NewSparseUniverse()
	if err := u.Initialize(NewLiveSet(cells...), rule, bounds); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return u
}

func assertCells(t *testing.T, got LiveSet, want ...Cell) {
	t.Helper()
	if !got.Equal(NewLiveSet(want...)) {
		t.Fatalf("live cells %v, expected %v", got.Cells(), NewLiveSet(want...).Cells())
	}
}

func TestNeighborsOrder(t *testing.T) {
	for _, c := range []Cell{{0, 0}, {5, -3}, {-7, 12}} {
		got := Neighbors(c)
		expected := [8]Cell{
			{c.X - 1, c.Y - 1}, {c.X, c.Y - 1}, {c.X + 1, c.Y - 1},
			{c.X - 1, c.Y}, {c.X + 1, c.Y},
			{c.X - 1, c.Y + 1}, {c.X, c.Y + 1}, {c.X + 1, c.Y + 1},
		}
		if got != expected {
			t.Fatalf("neighbors of %v: %v, expected %v", c, got, expected)
		}
		seen := map[Cell]bool{}
		for _, n := range got {
			dx, dy := n.X-c.X, n.Y-c.Y
			if dx < -1 || dx > 1 || dy < -1 || dy > 1 || (dx == 0 && dy == 0) {
				t.Fatalf("neighbor %v is not at distance 1 from %v", n, c)
			}
			seen[n] = true
		}
		if len(seen) != 8 {
			t.Fatalf("expected 8 distinct neighbors, got %d", len(seen))
		}
	}
}

func TestLiveNeighborCount(t *testing.T) {
	set := NewLiveSet(Cell{0, 0}, Cell{1, 0}, Cell{2, 0}, Cell{0, 1}, Cell{2, 1})
	center := Cell{1, 1}
	if n := LiveNeighborCount(center, set, 9); n != 5 {
		t.Fatalf("exact count %d, expected 5", n)
	}
	if n := LiveNeighborCount(center, set, 4); n != 4 {
		t.Fatalf("capped count %d, expected 4", n)
	}
	if n := LiveNeighborCount(Cell{10, 10}, set, 4); n != 0 {
		t.Fatalf("isolated count %d, expected 0", n)
	}
}

func TestStillLife(t *testing.T) {
	block := []Cell{{1, 1}, {1, 2}, {2, 1}, {2, 2}}
	u := newSparse(t, DefaultRule, UnboundedGrid, block...)
	u.Tick()
	assertCells(t, u.LiveCells(), block...)
	if u.Generation() != 1 {
		t.Fatalf("generation %d, expected 1", u.Generation())
	}
	if u.Status().Changed {
		t.Fatalf("block should not be reported as changed")
	}
}

func TestBlinkerOscillation(t *testing.T) {
	horizontal := []Cell{{1, 2}, {2, 2}, {3, 2}}
	vertical := []Cell{{2, 1}, {2, 2}, {2, 3}}
	u := newSparse(t, DefaultRule, UnboundedGrid, horizontal...)

	u.Tick()
	assertCells(t, u.LiveCells(), vertical...)
	if st := u.Status(); st.Born != 2 || st.Died != 2 {
		t.Fatalf("born %d died %d, expected 2 and 2", st.Born, st.Died)
	}

	u.Tick()
	assertCells(t, u.LiveCells(), horizontal...)
	if u.Generation() != 2 {
		t.Fatalf("generation %d, expected 2", u.Generation())
	}
}

func TestExtinction(t *testing.T) {
	u := newSparse(t, DefaultRule, UnboundedGrid, Cell{4, 4})
	u.Tick()
	assertCells(t, u.LiveCells())
	if st := u.Status(); st.LiveCells != 0 || st.Died != 1 {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestBirth(t *testing.T) {
	target := Cell{5, 5}
	around := Neighbors(target)
	for _, tc := range []struct {
		neighbors int
		born      bool
	}{
		{2, false},
		{3, true},
		{4, false},
	} {
		//pick neighbors far enough from each other to keep the check on the target only
		cells := []Cell{around[0], around[2], around[5], around[7]}[:tc.neighbors]
		u := newSparse(t, DefaultRule, UnboundedGrid, cells...)
		u.Tick()
		if got := u.LiveCells().Has(target); got != tc.born {
			t.Fatalf("%d neighbors: born=%v, expected %v", tc.neighbors, got, tc.born)
		}
	}
}

func TestBoundaryExclusion(t *testing.T) {
	bounds := Bounds{Width: 5, Height: 5}
	//both cells have three live neighbors and would be born without clipping
	outside := []Cell{{6, 2}, {-1, 2}}
	for _, c := range outside {
		if !bounds.Excludes(c) {
			t.Fatalf("%v should be excluded", c)
		}
	}
	u := newSparse(t, DefaultRule, bounds,
		Cell{6, 1}, Cell{6, 3}, Cell{7, 2},
		Cell{-1, 1}, Cell{-1, 3}, Cell{-2, 2},
		Cell{6, 2}, Cell{-1, 2},
	)
	u.Tick()
	for _, c := range u.LiveCells().Cells() {
		if bounds.Excludes(c) {
			t.Fatalf("%v is outside the bounds", c)
		}
	}
	for _, c := range outside {
		if u.LiveCells().Has(c) {
			t.Fatalf("%v survived outside the bounds", c)
		}
	}
}

func TestBoundsUpperLimitInclusive(t *testing.T) {
	bounds := Bounds{Width: 5, Height: 5}
	for _, tc := range []struct {
		cell     Cell
		excluded bool
	}{
		{Cell{5, 5}, false},
		{Cell{0, 0}, false},
		{Cell{6, 0}, true},
		{Cell{0, 6}, true},
		{Cell{0, -1}, true},
	} {
		if got := bounds.Excludes(tc.cell); got != tc.excluded {
			t.Fatalf("%v excluded=%v, expected %v", tc.cell, got, tc.excluded)
		}
	}
	//unbounded axes keep the hard lower limit
	if !UnboundedGrid.Excludes(Cell{-1, 0}) || UnboundedGrid.Excludes(Cell{1000, 1000}) {
		t.Fatalf("unexpected unbounded clipping")
	}
}

func TestCustomRule(t *testing.T) {
	line := []Cell{{1, 2}, {2, 2}, {3, 2}}
	custom, err := NewRule([]int{3, 6}, []int{1, 2})
	if err != nil {
		t.Fatal(err)
	}

	conway := newSparse(t, DefaultRule, UnboundedGrid, line...)
	other := newSparse(t, custom, UnboundedGrid, line...)
	conway.Tick()
	other.Tick()

	if conway.LiveCells().Equal(other.LiveCells()) {
		t.Fatalf("custom rule produced the same generation as the default rule")
	}
	//the ends have one neighbor and survive under S12, the middle has two
	assertCells(t, other.LiveCells(), Cell{1, 2}, Cell{2, 2}, Cell{3, 2}, Cell{2, 1}, Cell{2, 3})
}

func TestInitializeRejectsInvalidRule(t *testing.T) {
	u := NewSparseUniverse()
	if err := u.Initialize(NewLiveSet(), Rule{born: 1 << 3}, UnboundedGrid); err == nil {
		t.Fatalf("expected error for empty survives set")
	}
}

func TestLiveCellsSnapshotIsStable(t *testing.T) {
	u := newSparse(t, DefaultRule, UnboundedGrid, Cell{1, 2}, Cell{2, 2}, Cell{3, 2})
	before := u.LiveCells()
	u.Tick()
	assertCells(t, before, Cell{1, 2}, Cell{2, 2}, Cell{3, 2})
}

func TestEnginesAgree(t *testing.T) {
	bounds := Bounds{Width: 20, Height: 12}
	rules := []Rule{DefaultRule, MustParseRule("B36/S23"), MustParseRule("B3/S12"), MustParseRule("B03/S23"), MustParseRule("B1/S0")}
	rnd := rand.New(rand.NewSource(7))
	cells := make([]Cell, 0, 80)
	for i := 0; i < 80; i++ {
		cells = append(cells, Cell{rnd.Intn(bounds.Width + 1), rnd.Intn(bounds.Height + 1)})
	}
	for _, r := range rules {
		t.Run(r.String(), func(t *testing.T) {
			sparse := NewSparseUniverse()
			dense := NewDenseUniverse()
			for _, u := range []Universe{sparse, dense} {
				if err := u.Initialize(NewLiveSet(cells...), r, bounds); err != nil {
					t.Fatal(err)
				}
			}
			for i := 0; i < 30; i++ {
				sparse.Tick()
				dense.Tick()
				if !sparse.LiveCells().Equal(dense.LiveCells()) {
					t.Fatalf("generation %d: engines diverged", i+1)
				}
				if sparse.Status().LiveCells != dense.Status().LiveCells {
					t.Fatalf("generation %d: live counts %d vs %d", i+1, sparse.Status().LiveCells, dense.Status().LiveCells)
				}
			}
		})
	}
}

func TestDenseRequiresBounds(t *testing.T) {
	u := NewDenseUniverse()
	if err := u.Initialize(NewLiveSet(), DefaultRule, Bounds{Width: 10, Height: Unbounded}); err != ErrUnboundedDense {
		t.Fatalf("expected ErrUnboundedDense, got %v", err)
	}
}

func TestBirthWithoutNeighboursIgnored(t *testing.T) {
	rule := MustParseRule("B03/S23")
	bounds := Bounds{Width: 6, Height: 6}
	for _, name := range EngineNames() {
		t.Run(name, func(t *testing.T) {
			u := Engines[name]()
			if err := u.Initialize(NewLiveSet(Cell{3, 3}), rule, bounds); err != nil {
				t.Fatal(err)
			}
			u.Tick()
			//the lone cell dies and its neighbours have one live neighbour each
			if n := u.LiveCells().Len(); n != 0 || u.Status().LiveCells != 0 {
				t.Fatalf("%d live cells, expected 0", n)
			}
		})
	}
}

func TestSettleKeepsGeneration(t *testing.T) {
	for _, name := range EngineNames() {
		t.Run(name, func(t *testing.T) {
			u := Engines[name]()
			if err := u.Initialize(NewLiveSet(Cell{1, 2}, Cell{2, 2}, Cell{3, 2}), DefaultRule, Bounds{Width: 8, Height: 8}); err != nil {
				t.Fatal(err)
			}
			u.Tick()
			u.Settle(NewLiveSet(Cell{1, 1}, Cell{1, 2}, Cell{2, 1}, Cell{2, 2}, Cell{20, 1}))
			if u.Generation() != 1 {
				t.Fatalf("generation %d, expected 1", u.Generation())
			}
			u.Tick()
			assertCells(t, u.LiveCells(), Cell{1, 1}, Cell{1, 2}, Cell{2, 1}, Cell{2, 2})
			if st := u.Status(); st.Generation != 2 || st.LiveCells != 4 {
				t.Fatalf("unexpected status %+v", st)
			}
		})
	}
}
