package model

import (
	"fmt"
	"strconv"
)

// Reaction is a reaction statement: reactants -> products at a rate constant.
// The token "0" denotes no species on either side.
type Reaction struct {
	Name      string   `json:"name" yaml:"name"`
	Reactants []string `json:"subs" yaml:"subs"`
	Products  []string `json:"prds" yaml:"prds"`
	Rate      float64  `json:"rate" yaml:"rate"`
}

// Order is the number of reactants.
func (r Reaction) Order() int { return len(r.Reactants) }

// Reactions returns the reaction statements in declaration order.
func (m *Model) Reactions() ([]Reaction, error) {
	var out []Reaction
	for _, s := range m.statements {
		if s.Keyword != "reaction" {
			continue
		}
		r, err := parseReaction(s)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", s.Line, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func parseReaction(s Statement) (Reaction, error) {
	// reaction name a [+ b] -> c [+ d] rate
	if len(s.Args) < 4 {
		return Reaction{}, fmt.Errorf("reaction needs a name, an equation and a rate")
	}
	r := Reaction{Name: s.Args[0]}
	eq := s.Args[1 : len(s.Args)-1]
	rate, err := strconv.ParseFloat(s.Args[len(s.Args)-1], 64)
	if err != nil {
		return Reaction{}, fmt.Errorf("rate %q is not a number", s.Args[len(s.Args)-1])
	}
	if rate < 0 {
		return Reaction{}, fmt.Errorf("rate %g is negative", rate)
	}
	r.Rate = rate

	arrow := -1
	for i, tok := range eq {
		if tok == "->" {
			if arrow >= 0 {
				return Reaction{}, fmt.Errorf("equation has more than one arrow")
			}
			arrow = i
		}
	}
	if arrow < 0 {
		return Reaction{}, fmt.Errorf("equation is missing ->")
	}
	if r.Reactants, err = side(eq[:arrow]); err != nil {
		return Reaction{}, err
	}
	if r.Products, err = side(eq[arrow+1:]); err != nil {
		return Reaction{}, err
	}
	if len(r.Reactants) > 2 {
		return Reaction{}, fmt.Errorf("at most two reactants are supported, got %d", len(r.Reactants))
	}
	return r, nil
}

// side parses "a + b" into its species, treating a lone "0" as empty.
func side(toks []string) ([]string, error) {
	if len(toks) == 0 {
		return nil, fmt.Errorf("equation side is empty")
	}
	if len(toks) == 1 && toks[0] == "0" {
		return []string{}, nil
	}
	var out []string
	for i, tok := range toks {
		if i%2 == 1 {
			if tok != "+" {
				return nil, fmt.Errorf("expected + between species, got %q", tok)
			}
			continue
		}
		out = append(out, baseSpecies(tok))
	}
	if len(toks)%2 == 0 {
		return nil, fmt.Errorf("equation side ends with +")
	}
	return out, nil
}
