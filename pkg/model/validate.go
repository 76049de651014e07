package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Report lists validation findings. Either list being non-empty makes Load fail.
type Report struct {
	Errors   []string `json:"errors" yaml:"errors"`
	Warnings []string `json:"warnings" yaml:"warnings"`
}

// OK reports whether the description produced no findings.
func (r Report) OK() bool { return len(r.Errors) == 0 && len(r.Warnings) == 0 }

type validator struct {
	report  Report
	dim     int
	species map[string]bool
	bounded map[int]bool
}

func (v *validator) errorf(s Statement, format string, args ...any) {
	v.report.Errors = append(v.report.Errors, fmt.Sprintf("line %d (%s): %s", s.Line, s.Keyword, fmt.Sprintf(format, args...)))
}

func (v *validator) warnf(s Statement, format string, args ...any) {
	v.report.Warnings = append(v.report.Warnings, fmt.Sprintf("line %d (%s): %s", s.Line, s.Keyword, fmt.Sprintf(format, args...)))
}

func validate(stmts []Statement) Report {
	v := &validator{species: map[string]bool{}, bounded: map[int]bool{}}
	timeStep := false

	for _, s := range stmts {
		switch s.Keyword {
		case "dim":
			v.checkDim(s)
		case "boundaries":
			v.checkBoundaries(s)
		case "low_wall", "high_wall":
			v.checkWall(s)
		case "species":
			v.checkSpecies(s)
		case "difc":
			if v.arity(s, 2, 2) {
				v.knownSpecies(s, s.Args[0])
				if d, ok := v.number(s, s.Args[1]); ok && d < 0 {
					v.errorf(s, "diffusion coefficient %g is negative", d)
				}
			}
		case "color", "display_size":
			if v.arity(s, 2, 4) {
				v.knownSpecies(s, s.Args[0])
			}
		case "mol":
			v.checkMol(s)
		case "time_start", "time_stop":
			if v.arity(s, 1, 1) {
				v.number(s, s.Args[0])
			}
		case "time_step":
			if v.arity(s, 1, 1) {
				if dt, ok := v.number(s, s.Args[0]); ok && dt <= 0 {
					v.errorf(s, "time step must be positive, got %g", dt)
				}
				timeStep = true
			}
		case "define":
			v.arity(s, 2, 2)
		case "reaction":
			v.checkReaction(s)
		case "random_seed":
			if v.arity(s, 1, 1) {
				if _, err := strconv.ParseInt(s.Args[0], 10, 64); err != nil {
					v.errorf(s, "seed %q is not an integer", s.Args[0])
				}
			}
		case "cmd":
			v.warnf(s, "recording commands are bound by the adapter; remove cmd statements from the model")
		case "output_files", "graphics", "graphic_iter", "frame_thickness", "text_display", "end_file":
			// accepted, no checks
		default:
			v.warnf(s, "unrecognised statement")
		}
	}

	if v.dim == 0 {
		v.report.Errors = append(v.report.Errors, "model does not declare dim")
	} else {
		for axis := 0; axis < v.dim; axis++ {
			if !v.bounded[axis] {
				v.report.Errors = append(v.report.Errors, fmt.Sprintf("axis %d has no boundaries", axis))
			}
		}
	}
	if !timeStep {
		v.report.Errors = append(v.report.Errors, "model does not declare time_step")
	}
	return v.report
}

func (v *validator) arity(s Statement, min, max int) bool {
	if len(s.Args) < min || len(s.Args) > max {
		if min == max {
			v.errorf(s, "expected %d argument(s), got %d", min, len(s.Args))
		} else {
			v.errorf(s, "expected %d to %d arguments, got %d", min, max, len(s.Args))
		}
		return false
	}
	return true
}

func (v *validator) number(s Statement, tok string) (float64, bool) {
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		v.errorf(s, "%q is not a number", tok)
		return 0, false
	}
	return f, true
}

func (v *validator) knownSpecies(s Statement, tok string) {
	name := baseSpecies(tok)
	if name == "all" {
		return
	}
	if !v.species[name] {
		v.errorf(s, "species %q is not declared", name)
	}
}

func (v *validator) checkDim(s Statement) {
	if !v.arity(s, 1, 1) {
		return
	}
	d, err := strconv.Atoi(s.Args[0])
	if err != nil || d < 1 || d > 3 {
		v.errorf(s, "dimension must be 1, 2 or 3, got %q", s.Args[0])
		return
	}
	if v.dim != 0 {
		v.errorf(s, "dim declared twice")
		return
	}
	v.dim = d
}

func (v *validator) axis(s Statement, tok string) (int, bool) {
	if v.dim == 0 {
		v.errorf(s, "dim must be declared first")
		return 0, false
	}
	a, err := strconv.Atoi(tok)
	if err != nil || a < 0 || a >= v.dim {
		v.errorf(s, "axis %q out of range for dim %d", tok, v.dim)
		return 0, false
	}
	return a, true
}

func (v *validator) checkBoundaries(s Statement) {
	if !v.arity(s, 3, 4) {
		return
	}
	a, ok := v.axis(s, s.Args[0])
	if !ok {
		return
	}
	lo, ok1 := v.number(s, s.Args[1])
	hi, ok2 := v.number(s, s.Args[2])
	if ok1 && ok2 && lo > hi {
		v.errorf(s, "low %g exceeds high %g", lo, hi)
	}
	v.bounded[a] = true
}

func (v *validator) checkWall(s Statement) {
	if !v.arity(s, 2, 3) {
		return
	}
	a, ok := v.axis(s, s.Args[0])
	if !ok {
		return
	}
	v.number(s, s.Args[1])
	if len(s.Args) == 3 && !strings.Contains("rpat", s.Args[2]) {
		v.errorf(s, "wall type %q must be one of r, p, a, t", s.Args[2])
	}
	v.bounded[a] = true
}

func (v *validator) checkSpecies(s Statement) {
	if len(s.Args) == 0 {
		v.errorf(s, "no species named")
		return
	}
	for _, name := range s.Args {
		if v.species[name] {
			v.errorf(s, "species %q declared twice", name)
			continue
		}
		v.species[name] = true
	}
}

func (v *validator) checkMol(s Statement) {
	if len(s.Args) < 2 {
		v.errorf(s, "expected count and species")
		return
	}
	if n, err := strconv.Atoi(s.Args[0]); err != nil || n < 0 {
		v.errorf(s, "count %q is not a non-negative integer", s.Args[0])
	}
	v.knownSpecies(s, s.Args[1])
	pos := s.Args[2:]
	if v.dim != 0 && len(pos) != v.dim {
		v.errorf(s, "expected %d position(s), got %d", v.dim, len(pos))
		return
	}
	for _, p := range pos {
		if p == "u" {
			continue
		}
		v.number(s, p)
	}
}

func (v *validator) checkReaction(s Statement) {
	r, err := parseReaction(s)
	if err != nil {
		v.errorf(s, "%v", err)
		return
	}
	for _, sp := range append(append([]string(nil), r.Reactants...), r.Products...) {
		v.knownSpecies(s, sp)
	}
}

// baseSpecies drops a state suffix such as "red(all)".
func baseSpecies(tok string) string {
	if i := strings.IndexByte(tok, '('); i > 0 {
		return tok[:i]
	}
	return tok
}
