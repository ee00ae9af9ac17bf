package universe

import (
	"sort"
	"time"
)

//Unbounded marks the axis without the upper limit
const Unbounded = -1

//Bounds is the optional clipping rectangle of the universe
//any value <= 0 means the axis is unbounded
type Bounds struct {
	Width  int
	Height int
}

//UnboundedGrid has no upper limit on both axes
var UnboundedGrid = Bounds{Width: Unbounded, Height: Unbounded}

//Excludes reports whether the cell is clipped from the next generation
//the upper limits are inclusive (x == Width is still inside) while the lower limit is always 0
func (b Bounds) Excludes(c Cell) bool {
	return (b.Width > 0 && c.X > b.Width) ||
		(b.Height > 0 && c.Y > b.Height) ||
		c.Y < 0 ||
		c.X < 0
}

//Bounded reports whether both axes are limited
func (b Bounds) Bounded() bool {
	return b.Width > 0 && b.Height > 0
}

//Status represents the status of the Universe after the last tick
type Status struct {
	Generation    int
	LiveCells     int
	Born          int
	Died          int
	Changed       bool
	IterationTime time.Duration
}

//Universe is the automaton engine driven by the runner
//implementations are not safe for concurrent use
type Universe interface {
	Name() string
	Initialize(cells LiveSet, rule Rule, bounds Bounds) error
	//Settle replaces the live cells keeping the generation counter
	Settle(cells LiveSet)
	Tick()
	LiveCells() LiveSet
	Generation() int
	Status() Status
	Rule() Rule
	Bounds() Bounds
}

//Engines is the registry of the available engines
var Engines = map[string]func() Universe{
	"sparse": func() Universe { return NewSparseUniverse() },
	"dense":  func() Universe { return NewDenseUniverse() },
}

//DefaultEngine is used when no engine is configured
const DefaultEngine = "sparse"

//EngineNames returns sorted names of the registered engines
func EngineNames() []string {
	names := make([]string, 0, len(Engines))
	for k := range Engines {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
