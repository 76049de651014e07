package memory

import (
	"fmt"
	"strings"

	"github.com/aretw0/brownian/pkg/domain"
)

// command is a parsed recording or editing command.
type command interface {
	exec(s *Simulator)
}

type executionTime struct{ out string }

func (c executionTime) exec(s *Simulator) {
	s.record(c.out, domain.Row{s.t})
}

// molCount records [time, n_1..n_k] for every species after the index-0 placeholder, so column i is species i.
type molCount struct{ out string }

func (c molCount) exec(s *Simulator) {
	counts := make([]int, len(s.species))
	for _, m := range s.mols {
		counts[m.species]++
	}
	row := make(domain.Row, 0, len(s.species))
	row = append(row, s.t)
	for i := 1; i < len(counts); i++ {
		row = append(row, float64(counts[i]))
	}
	s.record(c.out, row)
}

// listMols records one [species, state, x, y, z, serial] row per molecule.
type listMols struct{ out string }

func (c listMols) exec(s *Simulator) {
	for _, m := range s.mols {
		row := make(domain.Row, domain.LocWidth)
		row[domain.LocSpecies] = float64(m.species)
		row[domain.LocX] = m.pos[0]
		row[domain.LocY] = m.pos[1]
		row[domain.LocZ] = m.pos[2]
		row[domain.LocSerial] = float64(m.serial)
		s.record(c.out, row)
	}
}

// killMol removes a species, or every molecule for "all".
type killMol struct{ species int }

func (c killMol) exec(s *Simulator) {
	if c.species < 0 {
		s.mols = s.mols[:0]
		return
	}
	s.kill(c.species)
}

func (s *Simulator) record(out string, row domain.Row) {
	// Commands only write to declared buffers; a missing buffer drops the row.
	if rows, ok := s.outputs[out]; ok {
		s.outputs[out] = append(rows, row)
	}
}

func (s *Simulator) parseCommand(raw string) (command, error) {
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return nil, fmt.Errorf("command %q: expected a keyword and one argument", raw)
	}
	kw, arg := fields[0], fields[1]

	switch kw {
	case "executiontime", "molcount", "listmols":
		if _, ok := s.outputs[arg]; !ok {
			return nil, fmt.Errorf("command %q: output %q was not declared", raw, arg)
		}
		switch kw {
		case "executiontime":
			return executionTime{out: arg}, nil
		case "molcount":
			return molCount{out: arg}, nil
		default:
			return listMols{out: arg}, nil
		}
	case "killmol":
		if arg == "all" {
			return killMol{species: -1}, nil
		}
		idx, err := s.lookup(arg)
		if err != nil {
			return nil, fmt.Errorf("command %q: %w", raw, err)
		}
		return killMol{species: idx}, nil
	default:
		return nil, fmt.Errorf("command %q: unsupported command %q", raw, kw)
	}
}
