package universe

import "sort"

//Cell is the x,y coordinate of the grid position
//negative coordinates are valid, they are used by the bounds check
type Cell struct {
	X int
	Y int
}

//neighborOffsets is the fixed Moore neighborhood order
var neighborOffsets = [8]Cell{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

//LiveSet is the set of currently alive cells
type LiveSet struct {
	cells map[Cell]struct{}
}

//NewLiveSet creates the set populated with cells, duplicates are collapsed
func NewLiveSet(cells ...Cell) LiveSet {
	s := LiveSet{cells: make(map[Cell]struct{}, len(cells))}
	for _, c := range cells {
		s.cells[c] = struct{}{}
	}
	return s
}

//Add marks the cell as alive
func (s *LiveSet) Add(c Cell) {
	if s.cells == nil {
		s.cells = make(map[Cell]struct{})
	}
	s.cells[c] = struct{}{}
}

//Remove marks the cell as dead
func (s *LiveSet) Remove(c Cell) {
	delete(s.cells, c)
}

//Has reports whether the cell is alive
func (s LiveSet) Has(c Cell) bool {
	_, ok := s.cells[c]
	return ok
}

//Len returns the number of live cells
func (s LiveSet) Len() int {
	return len(s.cells)
}

//Cells returns the live cells ordered by row then column
func (s LiveSet) Cells() []Cell {
	res := make([]Cell, 0, len(s.cells))
	for c := range s.cells {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Y != res[j].Y {
			return res[i].Y < res[j].Y
		}
		return res[i].X < res[j].X
	})
	return res
}

//Equal reports whether both sets hold the same cells
func (s LiveSet) Equal(o LiveSet) bool {
	if len(s.cells) != len(o.cells) {
		return false
	}
	for c := range s.cells {
		if !o.Has(c) {
			return false
		}
	}
	return true
}

//Clone returns an independent copy of the set
func (s LiveSet) Clone() LiveSet {
	res := LiveSet{cells: make(map[Cell]struct{}, len(s.cells))}
	for c := range s.cells {
		res.cells[c] = struct{}{}
	}
	return res
}

//Neighbors returns the eight Moore neighbors of c in the fixed order:
//(-1,-1),(0,-1),(1,-1),(-1,0),(1,0),(-1,1),(0,1),(1,1)
func Neighbors(c Cell) (res [8]Cell) {
	for i, o := range neighborOffsets {
		res[i] = Cell{c.X + o.X, c.Y + o.Y}
	}
	return
}

//LiveNeighborCount counts the neighbors of c present in set
//counting stops as soon as the running count reaches limit,
//so the result is exact only for counts below limit
func LiveNeighborCount(c Cell, set LiveSet, limit int) int {
	count := 0
	for _, n := range Neighbors(c) {
		if set.Has(n) {
			count++
		}
		if count >= limit {
			break
		}
	}
	return count
}
