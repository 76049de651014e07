package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/brownian/pkg/dsl"
)

// Overlay highlights processes on the wiring diagram.
type Overlay struct {
	// Active marks processes that have produced at least one update.
	Active []string
	// Failed marks processes whose last update returned an error.
	Failed []string
}

// GenerateMermaid produces a Mermaid flowchart of process wiring.
// Processes are drawn as [[Subroutine]], stores as [(Cylinder)]; input wires
// point from store to process and output wires from process to store.
func GenerateMermaid(procs []dsl.ProcessSpec, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	stores := map[string]bool{}
	for _, p := range procs {
		for _, w := range []map[string][]string{p.Inputs, p.Outputs} {
			for _, target := range w {
				stores[strings.Join(target, ".")] = true
			}
		}
	}
	for _, s := range sortedSet(stores) {
		fmt.Fprintf(&sb, "    %s[(\"%s\")]\n", storeID(s), s)
	}

	for _, p := range procs {
		id := sanitizeMermaidID(p.ID())
		fmt.Fprintf(&sb, "    %s[[\"%s <br/> %s\"]]\n", id, p.ID(), p.Address)
		for _, port := range sortedKeys(p.Inputs) {
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", storeID(strings.Join(p.Inputs[port], ".")), port, id)
		}
		for _, port := range sortedKeys(p.Outputs) {
			fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", id, port, storeID(strings.Join(p.Outputs[port], ".")))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef active fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:4px,color:#000;\n")
		for _, id := range overlay.Active {
			fmt.Fprintf(&sb, "    class %s active;\n", sanitizeMermaidID(id))
		}
		for _, id := range overlay.Failed {
			fmt.Fprintf(&sb, "    class %s failed;\n", sanitizeMermaidID(id))
		}
	}

	return sb.String()
}

func storeID(path string) string {
	return "store_" + sanitizeMermaidID(path)
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSet(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
