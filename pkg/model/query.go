package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Query returns the token tuples of every statement whose keyword starts with prefix.
func (m *Model) Query(prefix string) ([][]string, error) {
	var out [][]string
	for _, s := range m.statements {
		if strings.HasPrefix(s.Keyword, prefix) {
			out = append(out, s.Tokens())
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrStatementNotFound, prefix)
	}
	return out, nil
}

// Stringify is Query with each tuple joined by single spaces.
func (m *Model) Stringify(prefix string) ([]string, error) {
	rows, err := m.Query(prefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = strings.Join(r, " ")
	}
	return out, nil
}

// Definitions returns every define NAME VALUE pair as a float.
func (m *Model) Definitions() (map[string]float64, error) {
	defs := map[string]float64{}
	for _, s := range m.statements {
		if s.Keyword != "define" {
			continue
		}
		if len(s.Args) < 2 {
			return nil, fmt.Errorf("line %d: definition %q is improperly formatted", s.Line, s.String())
		}
		v, err := strconv.ParseFloat(s.Args[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: definition %s: %w", s.Line, s.Args[0], err)
		}
		defs[s.Args[0]] = v
	}
	return defs, nil
}

// Species returns the declared species names in declaration order.
func (m *Model) Species() []string {
	var out []string
	for _, s := range m.statements {
		if s.Keyword == "species" {
			out = append(out, s.Args...)
		}
	}
	return out
}

// Dim returns the declared dimensionality.
func (m *Model) Dim() int {
	for _, s := range m.statements {
		if s.Keyword == "dim" && len(s.Args) == 1 {
			d, _ := strconv.Atoi(s.Args[0])
			return d
		}
	}
	return 0
}

// Bounds returns the low and high corner of the simulation box.
// boundaries statements take precedence over walls on the same axis.
func (m *Model) Bounds() (low, high []float64) {
	dim := m.Dim()
	low = make([]float64, dim)
	high = make([]float64, dim)
	fromBoundaries := make([]bool, dim)
	for _, s := range m.statements {
		switch s.Keyword {
		case "boundaries":
			a, _ := strconv.Atoi(s.Args[0])
			low[a], _ = strconv.ParseFloat(s.Args[1], 64)
			high[a], _ = strconv.ParseFloat(s.Args[2], 64)
			fromBoundaries[a] = true
		case "low_wall", "high_wall":
			a, _ := strconv.Atoi(s.Args[0])
			if fromBoundaries[a] {
				continue
			}
			pos, _ := strconv.ParseFloat(s.Args[1], 64)
			if s.Keyword == "low_wall" {
				low[a] = pos
			} else {
				high[a] = pos
			}
		}
	}
	return low, high
}

// Scalar returns the numeric argument of a single-valued statement such as time_step.
func (m *Model) Scalar(keyword string) (float64, bool) {
	for _, s := range m.statements {
		if s.Keyword == keyword && len(s.Args) == 1 {
			v, err := strconv.ParseFloat(s.Args[0], 64)
			return v, err == nil
		}
	}
	return 0, false
}

// Diffusion returns the diffusion coefficient declared for each species.
// A difc on "all" applies to every species without its own statement.
func (m *Model) Diffusion() map[string]float64 {
	out := map[string]float64{}
	var all *float64
	for _, s := range m.statements {
		if s.Keyword != "difc" {
			continue
		}
		d, _ := strconv.ParseFloat(s.Args[1], 64)
		name := baseSpecies(s.Args[0])
		if name == "all" {
			all = &d
			continue
		}
		out[name] = d
	}
	if all != nil {
		for _, sp := range m.Species() {
			if _, ok := out[sp]; !ok {
				out[sp] = *all
			}
		}
	}
	return out
}

// Placement is a mol statement: count molecules of a species at a position,
// where nil coordinates are drawn uniformly.
type Placement struct {
	Count    int
	Species  string
	Position []*float64
}

// Placements returns the initial molecules declared with mol.
func (m *Model) Placements() []Placement {
	var out []Placement
	for _, s := range m.statements {
		if s.Keyword != "mol" {
			continue
		}
		n, _ := strconv.Atoi(s.Args[0])
		p := Placement{Count: n, Species: baseSpecies(s.Args[1])}
		for _, tok := range s.Args[2:] {
			if tok == "u" {
				p.Position = append(p.Position, nil)
				continue
			}
			v, _ := strconv.ParseFloat(tok, 64)
			p.Position = append(p.Position, &v)
		}
		out = append(out, p)
	}
	return out
}
