package callgraph

import (
	"fmt"
	"io"
	"strings"

	"venir/internal/ir"
)

// FromUnit builds the function call graph of u. Nodes are function paths;
// an edge f -> g means some clause or the body of f calls g, or f delegates
// to g through autospec.
func FromUnit(u *ir.Unit) *Graph {
	b := NewBuilder()
	for _, f := range u.Functions {
		from := f.Name.String()
		b.AddNode(from)
		for _, e := range f.Exprs() {
			for _, callee := range ir.Calls(e) {
				b.AddEdge(from, callee.String())
			}
		}
		if f.Attrs.Autospec != nil {
			b.AddEdge(from, f.Attrs.Autospec.String())
		}
	}
	return b.Build()
}

// Write dumps the graph, one "from -> to, to" line per node, followed by the
// Kahn batches and any cycles.
func Write(w io.Writer, g *Graph) error {
	var sb strings.Builder
	for id, tos := range g.Edges {
		names := make([]string, len(tos))
		for i, to := range tos {
			names[i] = g.Name(to)
		}
		fmt.Fprintf(&sb, "%s -> %s\n", g.Index.IDToName[id], strings.Join(names, ", "))
	}
	topo := ToposortKahn(g)
	for i, batch := range topo.Batches {
		fmt.Fprintf(&sb, "batch %d: %s\n", i, strings.Join(namesOf(g, batch), ", "))
	}
	if topo.Cyclic {
		fmt.Fprintf(&sb, "cyclic: %s\n", strings.Join(namesOf(g, topo.Cycles), ", "))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func namesOf(g *Graph, ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.Name(id)
	}
	return out
}
