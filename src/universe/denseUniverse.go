package universe

import (
	"errors"
	"time"
)

//ErrUnboundedDense is returned when the dense engine is initialized without bounds on both axes
var ErrUnboundedDense = errors.New("dense engine requires bounded width and height")

/*
	Dense Universe implementation with two buffers
	All cells state is calculated to the new buffer and then the buffers are swapped
	The area covers [0,Width]x[0,Height] inclusive, the same cells the sparse engine keeps,
	so both engines agree for seeds placed inside the bounds
	Seed cells outside the area are dropped on Initialize
*/
type DenseUniverse struct {
	area    Area
	tmpBuff Area
	rule    Rule
	bounds  Bounds
	status  Status
}

//Area is the row-major grid of cell states
type Area struct {
	Width    int
	Height   int
	Entities [][]bool
}

func NewDenseUniverse() *DenseUniverse {
	return &DenseUniverse{rule: DefaultRule, bounds: UnboundedGrid}
}

func (u *DenseUniverse) Name() string { return "dense" }

func (u *DenseUniverse) Initialize(cells LiveSet, rule Rule, bounds Bounds) error {
	if !bounds.Bounded() {
		return ErrUnboundedDense
	}
	if rule.IsZero() {
		rule = DefaultRule
	}
	if _, err := NewRule(rule.Born(), rule.Survives()); err != nil {
		return err
	}
	u.rule = rule
	u.bounds = bounds
	u.area = createArea(bounds.Width+1, bounds.Height+1)
	u.tmpBuff = createArea(bounds.Width+1, bounds.Height+1)
	u.status = Status{LiveCells: u.settle(cells)}
	return nil
}

func (u *DenseUniverse) Settle(cells LiveSet) {
	for y := range u.area.Entities {
		clear(u.area.Entities[y])
	}
	u.status.LiveCells = u.settle(cells)
}

//settle marks the cells inside the area alive, returns the number of them
func (u *DenseUniverse) settle(cells LiveSet) int {
	live := 0
	for c := range cells.cells {
		if u.bounds.Excludes(c) {
			continue
		}
		u.area.Entities[c.Y][c.X] = true
		live++
	}
	return live
}

func (u *DenseUniverse) Tick() {
	start := time.Now()
	live, born, died := 0, 0, 0
	for y := range u.area.Entities {
		for x := range u.area.Entities[y] {
			alive := u.area.Entities[y][x]
			nextState := u.cellNextState(x, y, alive)
			if nextState {
				live++
			}
			if nextState && !alive {
				born++
			} else if !nextState && alive {
				died++
			}
			u.tmpBuff.Entities[y][x] = nextState
		}
	}
	u.area, u.tmpBuff = u.tmpBuff, u.area

	u.status = Status{
		Generation:    u.status.Generation + 1,
		LiveCells:     live,
		Born:          born,
		Died:          died,
		Changed:       born > 0 || died > 0,
		IterationTime: time.Since(start),
	}
}

//cellNextState calculates the next state for the cell
func (u *DenseUniverse) cellNextState(x int, y int, alive bool) bool {
	liveNeighbours := 0
	for _, n := range Neighbors(Cell{x, y}) {
		//coordinates outside the area are dead
		if n.X < 0 || n.Y < 0 || n.X >= u.area.Width || n.Y >= u.area.Height {
			continue
		}
		if u.area.Entities[n.Y][n.X] {
			liveNeighbours++
		}
	}
	if alive {
		return u.rule.Keeps(liveNeighbours)
	}
	//births happen on the dead frontier only, a cell without live neighbours stays dead even for B0 rules
	return liveNeighbours > 0 && u.rule.IsBorn(liveNeighbours)
}

//LiveCells builds the live set from the area
func (u *DenseUniverse) LiveCells() LiveSet {
	s := NewLiveSet()
	for y := range u.area.Entities {
		for x, e := range u.area.Entities[y] {
			if e {
				s.Add(Cell{x, y})
			}
		}
	}
	return s
}

func (u *DenseUniverse) Generation() int { return u.status.Generation }

func (u *DenseUniverse) Status() Status { return u.status }

func (u *DenseUniverse) Rule() Rule { return u.rule }

func (u *DenseUniverse) Bounds() Bounds { return u.bounds }

//createArea allocates the area backed by a single slice
func createArea(width int, height int) Area {
	area := Area{Width: width, Height: height, Entities: make([][]bool, height)}
	b := make([]bool, width*height)
	for i := range area.Entities {
		start := width * i
		area.Entities[i] = b[start : start+width : start+width]
	}
	return area
}
