package model

import "strings"

// Statement is one tokenized line of a description.
type Statement struct {
	Line    int // 1-based
	Keyword string
	Args    []string
}

// Tokens returns the keyword followed by its arguments.
func (s Statement) Tokens() []string {
	return append([]string{s.Keyword}, s.Args...)
}

// String joins the tokens with single spaces.
func (s Statement) String() string {
	return strings.Join(s.Tokens(), " ")
}

// tokenize strips comments and blank lines, substitutes defined names and
// stops at end_file.
func tokenize(lines []string) []Statement {
	var out []Statement
	defs := map[string]string{}
	inBlock := false

	for i, raw := range lines {
		line := raw
		if inBlock {
			end := strings.Index(line, "*/")
			if end < 0 {
				continue
			}
			line = line[end+2:]
			inBlock = false
		}
		if start := strings.Index(line, "/*"); start >= 0 {
			rest := line[start+2:]
			if end := strings.Index(rest, "*/"); end >= 0 {
				line = line[:start] + rest[end+2:]
			} else {
				line = line[:start]
				inBlock = true
			}
		}
		if hash := strings.IndexByte(line, '#'); hash >= 0 {
			line = line[:hash]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		kw := fields[0]
		args := fields[1:]
		if kw == "define" && len(args) >= 2 {
			defs[args[0]] = args[1]
		} else {
			for j, a := range args {
				if v, ok := defs[a]; ok {
					args[j] = v
				}
			}
		}

		out = append(out, Statement{Line: i + 1, Keyword: kw, Args: args})
		if kw == "end_file" {
			break
		}
	}
	return out
}
