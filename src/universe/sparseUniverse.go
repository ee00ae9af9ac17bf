package universe

import "time"

//SparseUniverse is the engine storing only the live cells
//the grid can be unbounded, the dead frontier around the live cells is the only area evaluated
type SparseUniverse struct {
	live   LiveSet
	rule   Rule
	bounds Bounds
	status Status
}

//NewSparseUniverse creates the empty universe with the default rule and no bounds
func NewSparseUniverse() *SparseUniverse {
	return &SparseUniverse{
		live:   NewLiveSet(),
		rule:   DefaultRule,
		bounds: UnboundedGrid,
	}
}

func (u *SparseUniverse) Name() string { return "sparse" }

//Initialize replaces the live set, the rule and the bounds, resets the generation counter
func (u *SparseUniverse) Initialize(cells LiveSet, rule Rule, bounds Bounds) error {
	if rule.IsZero() {
		rule = DefaultRule
	}
	if _, err := NewRule(rule.Born(), rule.Survives()); err != nil {
		return err
	}
	u.live = cells.Clone()
	u.rule = rule
	u.bounds = bounds
	u.status = Status{LiveCells: u.live.Len()}
	return nil
}

func (u *SparseUniverse) Settle(cells LiveSet) {
	u.live = cells.Clone()
	u.status.LiveCells = u.live.Len()
}

//Tick advances the universe by one generation
func (u *SparseUniverse) Tick() {
	start := time.Now()
	current := u.live
	next := NewLiveSet()

	//dead cells adjacent to at least one live cell, the only candidates for birth
	frontier := make(map[Cell]struct{}, current.Len()*2)
	for c := range current.cells {
		for _, n := range Neighbors(c) {
			if !current.Has(n) {
				frontier[n] = struct{}{}
			}
		}
	}

	survived := 0
	surviveCap := u.rule.SurviveCap()
	for c := range current.cells {
		if u.bounds.Excludes(c) {
			continue
		}
		if u.rule.Keeps(LiveNeighborCount(c, current, surviveCap)) {
			next.Add(c)
			survived++
		}
	}

	born := 0
	bornCap := u.rule.BornCap()
	for c := range frontier {
		if u.bounds.Excludes(c) {
			continue
		}
		if u.rule.IsBorn(LiveNeighborCount(c, current, bornCap)) {
			next.Add(c)
			born++
		}
	}

	u.live = next
	u.status = Status{
		Generation:    u.status.Generation + 1,
		LiveCells:     next.Len(),
		Born:          born,
		Died:          current.Len() - survived,
		Changed:       born > 0 || survived != current.Len(),
		IterationTime: time.Since(start),
	}
}

//LiveCells returns the current live set
//the set is replaced on every tick and never modified afterwards, so it can be read after the next tick
func (u *SparseUniverse) LiveCells() LiveSet { return u.live }

func (u *SparseUniverse) Generation() int { return u.status.Generation }

func (u *SparseUniverse) Status() Status { return u.status }

func (u *SparseUniverse) Rule() Rule { return u.rule }

func (u *SparseUniverse) Bounds() Bounds { return u.bounds }
