package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/runner"
)

// Summary describes a finished run as markdown: header facts and a table of
// the first and last molecule counts per species.
func Summary(res *runner.Result, snaps []*domain.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Run `%s`\n\n", res.RunID)

	status := "completed"
	if !res.Completed {
		status = "interrupted"
	}
	fmt.Fprintf(&b, "- **Status:** %s\n", status)
	fmt.Fprintf(&b, "- **Intervals:** %d\n", res.Steps)
	fmt.Fprintf(&b, "- **Simulated time:** %g\n", res.Time)
	fmt.Fprintf(&b, "- **Wall time:** %s\n\n", res.Elapsed.Round(time.Millisecond))

	final := Counts(res.State)
	if len(final) == 0 {
		return b.String()
	}
	var initial map[string]int
	if len(snaps) > 0 {
		initial = Counts(snaps[0].State)
	}

	names := make([]string, 0, len(final))
	for name := range final {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("| Species | Initial | Final | Change |\n")
	b.WriteString("|---|---:|---:|---:|\n")
	for _, name := range names {
		start, ok := initial[name]
		if !ok {
			fmt.Fprintf(&b, "| %s | - | %d | - |\n", name, final[name])
			continue
		}
		fmt.Fprintf(&b, "| %s | %d | %d | %+d |\n", name, start, final[name], final[name]-start)
	}
	return b.String()
}

// Counts reads the molecules port of a state tree, tolerating JSON-decoded numbers.
func Counts(state map[string]any) map[string]int {
	mols, ok := state[domain.PortMolecules].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]int, len(mols))
	for name, v := range mols {
		rec, ok := v.(map[string]any)
		if !ok {
			continue
		}
		switch n := rec[domain.FieldCount].(type) {
		case int:
			out[name] = n
		case int64:
			out[name] = int(n)
		case float64:
			out[name] = int(n)
		}
	}
	return out
}
