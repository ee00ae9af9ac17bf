package universe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

//ErrInvalidRule is returned for rules with empty or out of range count sets
var ErrInvalidRule = errors.New("invalid rule")

//MaxNeighbors is the size of the Moore neighborhood
const MaxNeighbors = 8

//countSet is a bitmask of neighbor counts in [0,8]
type countSet uint16

func (s countSet) has(n int) bool {
	return n >= 0 && n <= MaxNeighbors && s&(1<<uint(n)) != 0
}

func (s countSet) max() int {
	for n := MaxNeighbors; n >= 0; n-- {
		if s.has(n) {
			return n
		}
	}
	return -1
}

func (s countSet) values() []int {
	res := make([]int, 0, MaxNeighbors+1)
	for n := 0; n <= MaxNeighbors; n++ {
		if s.has(n) {
			res = append(res, n)
		}
	}
	return res
}

func (s countSet) String() string {
	var b strings.Builder
	for _, n := range s.values() {
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

//Rule is the birth/survival rule of the automaton
type Rule struct {
	born     countSet
	survives countSet
}

//DefaultRule is the Conway's rule B3/S23
var DefaultRule = Rule{born: 1 << 3, survives: 1<<2 | 1<<3}

//NewRule creates the rule from the neighbor counts
//both sets must be non-empty and every value must be in [0,8]
func NewRule(born []int, survives []int) (Rule, error) {
	var r Rule
	var err error
	if r.born, err = newCountSet("born", born); err != nil {
		return Rule{}, err
	}
	if r.survives, err = newCountSet("survives", survives); err != nil {
		return Rule{}, err
	}
	return r, nil
}

func newCountSet(name string, counts []int) (countSet, error) {
	if len(counts) == 0 {
		return 0, fmt.Errorf("%w: %s set is empty", ErrInvalidRule, name)
	}
	var s countSet
	for _, n := range counts {
		if n < 0 || n > MaxNeighbors {
			return 0, fmt.Errorf("%w: %s count %d is out of [0,%d]", ErrInvalidRule, name, n, MaxNeighbors)
		}
		s |= 1 << uint(n)
	}
	return s, nil
}

//ParseRule parses the rule in the B/S notation, for example "B3/S23" or "b36/s23"
func ParseRule(text string) (Rule, error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(text)), "/")
	if len(parts) != 2 {
		return Rule{}, fmt.Errorf("%w: %q is not in B<counts>/S<counts> form", ErrInvalidRule, text)
	}
	var born, survives []int
	for _, p := range parts {
		if p == "" {
			return Rule{}, fmt.Errorf("%w: %q has an empty part", ErrInvalidRule, text)
		}
		counts := make([]int, 0, len(p)-1)
		for _, r := range p[1:] {
			if r < '0' || r > '9' {
				return Rule{}, fmt.Errorf("%w: %q has unexpected char %q", ErrInvalidRule, text, r)
			}
			counts = append(counts, int(r-'0'))
		}
		switch p[0] {
		case 'B':
			born = counts
		case 'S':
			survives = counts
		default:
			return Rule{}, fmt.Errorf("%w: %q has unknown part %q", ErrInvalidRule, text, p)
		}
	}
	return NewRule(born, survives)
}

//MustParseRule is like ParseRule but panics on error
func MustParseRule(text string) Rule {
	r, err := ParseRule(text)
	if err != nil {
		panic(err)
	}
	return r
}

//Born returns the neighbor counts at which a dead cell becomes alive
func (r Rule) Born() []int { return r.born.values() }

//Survives returns the neighbor counts at which a live cell stays alive
func (r Rule) Survives() []int { return r.survives.values() }

//IsBorn reports whether a dead cell with n live neighbors becomes alive
func (r Rule) IsBorn(n int) bool { return r.born.has(n) }

//Keeps reports whether a live cell with n live neighbors stays alive
func (r Rule) Keeps(n int) bool { return r.survives.has(n) }

//BornCap is the counting limit for dead cells, counts above max(born) are never distinguished
func (r Rule) BornCap() int { return r.born.max() + 1 }

//SurviveCap is the counting limit for live cells
func (r Rule) SurviveCap() int { return r.survives.max() + 1 }

//IsZero reports whether the rule was never initialized
func (r Rule) IsZero() bool { return r.born == 0 && r.survives == 0 }

//String formats the rule in the B/S notation
func (r Rule) String() string {
	return "B" + r.born.String() + "/S" + r.survives.String()
}
