package mcts

import (
	"fmt"
	"io"
	"strings"
)

// WriteDOT dumps the arena as a GraphViz digraph for offline
// inspection. Each node records its direction, cumulative score and
// visit count; opponent-turn nodes are shaded so a glance shows whose
// choice each layer is.
func (t *Tree) WriteDOT(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph G {\n\t0 [shape=record,label=\"root|{si: %d}\",style=filled,fillcolor=\".7 .3 1.0\"];\n",
		t.nodes[0].sims)

	for i := range t.nodes {
		for _, c := range t.nodes[i].children {
			if c < 0 {
				break
			}
			n := &t.nodes[c]
			style := ""
			if !n.selfTurn {
				style = ",style=filled,fillcolor=\"0.1 0.0 0.8\""
			}
			fmt.Fprintf(&b, "\t%d [shape=record,label=\"%s|{sc: %d|si: %d}\"%s];\n\t%d -> %d;\n",
				c, n.outcome.Dir, n.score, n.sims, style, i, c)
		}
	}
	b.WriteString("}\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("mcts: write dot: %w", err)
	}
	return nil
}
