package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"lifegrid/src/universe"
)

//Summary accumulates the population over the run
type Summary struct {
	population []float64
	born       int
	died       int
	last       universe.Status
}

//Report is the aggregated population statistics
type Report struct {
	Generations    int
	FinalLive      int
	TotalBorn      int
	TotalDied      int
	MeanPopulation float64
	StdPopulation  float64
	MinPopulation  float64
	MaxPopulation  float64
}

//Add accumulates the status of one generation
func (s *Summary) Add(st universe.Status) {
	s.population = append(s.population, float64(st.LiveCells))
	s.born += st.Born
	s.died += st.Died
	s.last = st
}

//Report computes the statistics, the zero Report is returned before the first Add
func (s *Summary) Report() Report {
	if len(s.population) == 0 {
		return Report{}
	}
	mean, std := stat.MeanStdDev(s.population, nil)
	if len(s.population) < 2 {
		std = 0
	}
	return Report{
		Generations:    s.last.Generation,
		FinalLive:      s.last.LiveCells,
		TotalBorn:      s.born,
		TotalDied:      s.died,
		MeanPopulation: mean,
		StdPopulation:  std,
		MinPopulation:  floats.Min(s.population),
		MaxPopulation:  floats.Max(s.population),
	}
}

//KeyVals flattens the report for structured logging
func (r Report) KeyVals() []interface{} {
	return []interface{}{
		"generations", r.Generations,
		"final_live", r.FinalLive,
		"born", r.TotalBorn,
		"died", r.TotalDied,
		"mean_population", r.MeanPopulation,
		"std_population", r.StdPopulation,
		"min_population", r.MinPopulation,
		"max_population", r.MaxPopulation,
	}
}
